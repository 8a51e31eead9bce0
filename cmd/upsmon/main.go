package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mirrwin/upsmon/internal/api"
	"codeberg.org/mirrwin/upsmon/internal/config"
	"codeberg.org/mirrwin/upsmon/internal/feed"
	"codeberg.org/mirrwin/upsmon/internal/logger"
	"codeberg.org/mirrwin/upsmon/internal/pid"
	"codeberg.org/mirrwin/upsmon/internal/source"
	"codeberg.org/mirrwin/upsmon/internal/store"
	"codeberg.org/mirrwin/upsmon/internal/synth"
)

const shutdownTimeout = 5 * time.Second

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.LogLevel, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Error().Err(err).Msg("failed to remove PID file")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	if err := run(ctx); err != nil {
		logger.Error().Err(err).Msg("error in main loop")
	}

	logger.Info().Msg("Exiting...")
}

func run(ctx context.Context) error {
	baselines, err := openStore()
	if err != nil {
		return err
	}
	defer baselines.Close()

	f, err := feed.New(feedConfig(), baselines, synth.NewGenerator(), nil)
	if err != nil {
		return err
	}
	defer f.Stop()

	f.Seed(ctx)

	src, err := openSource()
	if err != nil {
		return err
	}
	if src != nil {
		defer src.Close()
		go pump(src, f)
	}

	server := api.NewServer(cfg.Listen, f)
	go func() {
		logger.Info().Str("listen", cfg.Listen).Msg("HTTP server started")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("HTTP server shutdown failed")
		}
	}()

	logger.Info().
		Int("interval_ms", cfg.Interval).
		Str("source", cfg.Source).
		Msg("Telemetry feed started")

	return f.Run(ctx)
}

func openStore() (store.BaselineStore, error) {
	if cfg.Database == "" {
		logger.Info().Msg("No database configured, baselines will not survive restarts")
		return store.NewMemory(), nil
	}

	return store.NewSQLite(store.Config{DBPath: cfg.Database})
}

func openSource() (source.Source, error) {
	switch cfg.Source {
	case "kafka":
		return source.NewKafka(source.KafkaConfig{
			Brokers: cfg.KafkaBrokers,
			Topic:   cfg.KafkaTopic,
			GroupID: cfg.KafkaGroup,
		})
	default:
		// http ingest is served by the API, none means synthetic only
		return nil, nil
	}
}

func feedConfig() feed.Config {
	return feed.Config{
		Interval:    time.Duration(cfg.Interval) * time.Millisecond,
		WindowSize:  cfg.BufferSize,
		WeightBase:  cfg.SmoothingBase,
		MaxPoints:   cfg.MaxPoints,
		SeedCount:   cfg.SeedCount,
		SeedSpacing: time.Duration(cfg.SeedSpacing) * time.Millisecond,
		RevertAfter: time.Duration(cfg.RevertAfter) * time.Second,
	}
}

// pump forwards inbound readings into the feed. Each reading only replaces
// the feed's latest values; the tick loop does the rest.
func pump(src source.Source, f *feed.Feed) {
	for reading := range src.Readings() {
		f.Offer(reading)
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
