package feed

import (
	"context"
	"math"
	"sync"
	"time"

	"codeberg.org/mirrwin/upsmon/internal/errors"
	"codeberg.org/mirrwin/upsmon/internal/logger"
	"codeberg.org/mirrwin/upsmon/internal/smoothing"
	"codeberg.org/mirrwin/upsmon/internal/store"
	"codeberg.org/mirrwin/upsmon/internal/synth"
	"codeberg.org/mirrwin/upsmon/internal/telemetry"
)

const (
	// Live power samples are clamped to at least one watt so a glitching
	// sensor never drags the smoothed curve to zero.
	minLivePower = 1

	minLiveLoad = 0
	maxLiveLoad = 100
)

type Config struct {
	Interval    time.Duration
	WindowSize  int
	WeightBase  float64
	MaxPoints   int
	SeedCount   int
	SeedSpacing time.Duration

	// RevertAfter is how long the feed tolerates a silent source before
	// falling back to synthetic points. Zero keeps the feed on the last
	// received values forever once live data has been seen.
	RevertAfter time.Duration
}

func DefaultConfig() Config {
	return Config{
		Interval:    time.Second,
		WindowSize:  smoothing.DefaultWindowSize,
		WeightBase:  smoothing.DefaultWeightBase,
		MaxPoints:   100,
		SeedCount:   20,
		SeedSpacing: time.Second,
	}
}

func (c Config) Validate() error {
	errFactory := errors.New()

	if c.Interval < time.Millisecond {
		return errFactory.WithData(ErrInvalidConfig, "interval too small")
	}
	if c.MaxPoints < 1 {
		return errFactory.WithData(ErrInvalidConfig, "max points must be at least 1")
	}
	if c.SeedCount > 0 && c.SeedSpacing < time.Millisecond {
		return errFactory.WithData(ErrInvalidConfig, "seed spacing too small")
	}
	if c.RevertAfter < 0 {
		return errFactory.WithData(ErrInvalidConfig, "revert window must not be negative")
	}

	return nil
}

// Feed drives the dashboard chart: one point per tracked metric per tick,
// smoothed for power, raw for load, synthetic when no live reading exists.
// Series are bounded so memory and render cost stay constant over uptime.
type Feed struct {
	cfg       Config
	baselines store.BaselineStore
	generator *synth.Generator
	smoother  *smoothing.Smoother
	surface   Surface

	mu           sync.RWMutex
	series       map[telemetry.Metric][]telemetry.Point
	latest       map[telemetry.Metric]float64
	live         bool
	lastReceived time.Time
	lastEmitted  time.Time

	stopOnce sync.Once
	stopCh   chan struct{}
}

func New(cfg Config, baselines store.BaselineStore, generator *synth.Generator, surface Surface) (*Feed, error) {
	errFactory := errors.New()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baselines == nil {
		return nil, errFactory.New(ErrMissingStore)
	}
	if generator == nil {
		generator = synth.NewGenerator()
	}

	smoother, err := smoothing.NewSmoother(cfg.WindowSize, cfg.WeightBase)
	if err != nil {
		return nil, err
	}

	f := &Feed{
		cfg:       cfg,
		baselines: baselines,
		generator: generator,
		smoother:  smoother,
		surface:   surface,
		series:    make(map[telemetry.Metric][]telemetry.Point),
		latest:    make(map[telemetry.Metric]float64),
		stopCh:    make(chan struct{}),
	}

	return f, nil
}

// Seed pre-populates every series with backdated synthetic points anchored
// to the persisted baselines, so a cold start never shows an empty chart.
func (f *Feed) Seed(ctx context.Context) {
	if f.cfg.SeedCount <= 0 {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, metric := range telemetry.Tracked() {
		baseline := f.baseline(ctx, metric)
		for _, sample := range f.generator.SeedSeries(metric, baseline, f.cfg.SeedCount, f.cfg.SeedSpacing) {
			f.append(metric, telemetry.Point{T: sample.Timestamp.UnixMilli(), Y: sample.Value})
			if sample.Timestamp.After(f.lastEmitted) {
				f.lastEmitted = sample.Timestamp
			}
		}
	}

	f.redraw()
}

// Offer stores an inbound reading for the next tick. Only the fields the
// reading carries are updated; when two readings arrive between ticks the
// later one wins. Non-finite values are dropped field-wise.
func (f *Feed) Offer(reading telemetry.Reading) {
	f.mu.Lock()
	defer f.mu.Unlock()

	accepted := false
	for _, metric := range telemetry.Tracked() {
		value, ok := reading.Values[metric]
		if !ok || math.IsNaN(value) || math.IsInf(value, 0) {
			continue
		}
		f.latest[metric] = value
		accepted = true
	}

	if !accepted {
		return
	}

	f.live = true
	if reading.Timestamp.IsZero() {
		f.lastReceived = time.Now()
	} else {
		f.lastReceived = reading.Timestamp
	}
}

// Tick emits exactly one point per tracked metric, then signals a redraw.
// Per-metric failures never stop the feed.
func (f *Feed) Tick(ctx context.Context, now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Strictly increasing timestamps per series, even if the clock stalls.
	if !now.After(f.lastEmitted) {
		now = f.lastEmitted.Add(time.Millisecond)
	}
	f.lastEmitted = now

	live := f.live
	if live && f.cfg.RevertAfter > 0 && now.Sub(f.lastReceived) > f.cfg.RevertAfter {
		live = false
	}

	for _, metric := range telemetry.Tracked() {
		value, ok := f.latest[metric]
		if live && ok {
			f.emitLive(ctx, metric, value, now)
		} else {
			f.emitSynthetic(ctx, metric, now)
		}
	}

	f.redraw()
}

func (f *Feed) emitLive(ctx context.Context, metric telemetry.Metric, raw float64, now time.Time) {
	switch metric {
	case telemetry.MetricPower:
		clamped := math.Max(raw, minLivePower)
		f.smoother.Push(telemetry.Sample{Timestamp: now, Value: clamped})
		f.append(metric, telemetry.Point{T: now.UnixMilli(), Y: f.smoother.SmoothedValue()})

		// The raw clamped value, not the smoothed one, anchors future
		// synthetic samples.
		if err := f.baselines.Set(ctx, metric, clamped); err != nil {
			logger.Warn().Err(err).Str("metric", string(metric)).Msg("Failed to persist baseline")
		}
	case telemetry.MetricLoad:
		clamped := math.Min(math.Max(raw, minLiveLoad), maxLiveLoad)
		f.append(metric, telemetry.Point{T: now.UnixMilli(), Y: clamped})
	default:
		f.append(metric, telemetry.Point{T: now.UnixMilli(), Y: raw})
	}
}

func (f *Feed) emitSynthetic(ctx context.Context, metric telemetry.Metric, now time.Time) {
	value := f.generator.NextFallback(metric, f.baseline(ctx, metric))
	f.append(metric, telemetry.Point{T: now.UnixMilli(), Y: value})
}

// baseline returns the persisted anchor for a metric, falling back to the
// documented default when nothing was ever stored.
func (f *Feed) baseline(ctx context.Context, metric telemetry.Metric) float64 {
	value, ok, err := f.baselines.Get(ctx, metric)
	if err != nil {
		logger.Warn().Err(err).Str("metric", string(metric)).Msg("Failed to read baseline")
		return synth.DefaultBaseline(metric)
	}
	if !ok {
		return synth.DefaultBaseline(metric)
	}

	return value
}

// append adds a point to the metric's bounded series and forwards it to the
// surface. Callers hold f.mu.
func (f *Feed) append(metric telemetry.Metric, point telemetry.Point) {
	series := append(f.series[metric], point)
	if len(series) > f.cfg.MaxPoints {
		series = series[1:]
	}
	f.series[metric] = series

	if f.surface != nil {
		f.surface.Append(metric, point)
	}
}

// redraw signals the surface, swallowing failures. Callers hold f.mu.
func (f *Feed) redraw() {
	if f.surface == nil {
		return
	}
	if err := f.surface.Redraw(); err != nil {
		logger.Warn().Err(err).Msg("Redraw failed")
	}
}

// Run ticks the feed until the context is cancelled or Stop is called.
func (f *Feed) Run(ctx context.Context) error {
	ticker := time.NewTicker(f.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-f.stopCh:
			return nil
		case now := <-ticker.C:
			f.Tick(ctx, now)
		}
	}
}

// Stop terminates Run. Safe to call more than once.
func (f *Feed) Stop() {
	f.stopOnce.Do(func() {
		close(f.stopCh)
	})
}

// State reports whether the feed currently emits live or synthetic points.
func (f *Feed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.live {
		return StateSynthetic
	}
	if f.cfg.RevertAfter > 0 && time.Since(f.lastReceived) > f.cfg.RevertAfter {
		return StateSynthetic
	}

	return StateLive
}

// Snapshot returns a copy of one metric's series, oldest first. The caller
// may mutate the result freely.
func (f *Feed) Snapshot(metric telemetry.Metric) []telemetry.Point {
	f.mu.RLock()
	defer f.mu.RUnlock()

	series := make([]telemetry.Point, len(f.series[metric]))
	copy(series, f.series[metric])

	return series
}

// LastReceived returns when the most recent live reading arrived.
func (f *Feed) LastReceived() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.lastReceived
}

// WindowFill returns how many live samples the smoothing window holds.
func (f *Feed) WindowFill() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.smoother.Len()
}
