package source

import (
	"context"
	"sync"

	"codeberg.org/mirrwin/upsmon/internal/errors"
	"codeberg.org/mirrwin/upsmon/internal/logger"
	"codeberg.org/mirrwin/upsmon/internal/telemetry"
	"github.com/segmentio/kafka-go"
)

const readingsBuffer = 16

type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

func (c KafkaConfig) Validate() error {
	errFactory := errors.New()
	if len(c.Brokers) == 0 || c.Topic == "" {
		return errFactory.WithData(ErrInvalidConfig, "kafka source requires brokers and a topic")
	}
	return nil
}

type kafkaSource struct {
	reader   *kafka.Reader
	readings chan telemetry.Reading
	cancel   context.CancelFunc
	done     chan struct{}

	closeOnce sync.Once
	closeErr  error
}

// NewKafka consumes JSON telemetry messages from a topic and forwards them
// as readings. Messages that fail to decode are logged and skipped.
func NewKafka(cfg KafkaConfig) (Source, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 1 << 20,
	})

	ctx, cancel := context.WithCancel(context.Background())
	s := &kafkaSource{
		reader:   reader,
		readings: make(chan telemetry.Reading, readingsBuffer),
		cancel:   cancel,
		done:     make(chan struct{}),
	}

	go s.consume(ctx)

	return s, nil
}

func (s *kafkaSource) consume(ctx context.Context) {
	defer close(s.done)
	defer close(s.readings)

	for {
		message, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Warn().Err(err).Msg("Failed to read telemetry message")
			continue
		}

		reading, err := telemetry.ParseReading(message.Value, message.Time)
		if err != nil {
			logger.Warn().Err(err).Str("topic", message.Topic).Msg("Skipping undecodable telemetry message")
			continue
		}
		if len(reading.Values) == 0 {
			continue
		}

		// Drop rather than block: the feed only ever wants the most
		// recent reading anyway.
		select {
		case s.readings <- reading:
		default:
			logger.Debug().Msg("Reading buffer full, dropping message")
		}
	}
}

func (s *kafkaSource) Readings() <-chan telemetry.Reading {
	return s.readings
}

func (s *kafkaSource) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		if err := s.reader.Close(); err != nil {
			s.closeErr = errors.New().Wrap(ErrCloseFailed, err)
		}
	})

	return s.closeErr
}
