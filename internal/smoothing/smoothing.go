package smoothing

import (
	"math"

	"codeberg.org/mirrwin/upsmon/internal/errors"
	"codeberg.org/mirrwin/upsmon/internal/telemetry"
)

const (
	DefaultWindowSize = 15
	DefaultWeightBase = 1.2
)

// Smoother keeps the most recent samples of one metric in a fixed-size
// window and computes a recency-weighted average over them.
type Smoother struct {
	window     []telemetry.Sample
	windowSize int
	weightBase float64
}

func NewSmoother(windowSize int, weightBase float64) (*Smoother, error) {
	errFactory := errors.New()

	if windowSize < 1 {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "window size must be at least 1")
	}
	if weightBase <= 1 || math.IsNaN(weightBase) || math.IsInf(weightBase, 0) {
		return nil, errFactory.WithData(errors.ErrInvalidArgument, "weight base must be greater than 1")
	}

	return &Smoother{
		window:     make([]telemetry.Sample, 0, windowSize),
		windowSize: windowSize,
		weightBase: weightBase,
	}, nil
}

// Push appends a sample, evicting the oldest one when the window is full.
func (s *Smoother) Push(sample telemetry.Sample) {
	s.window = append(s.window, sample)
	if len(s.window) > s.windowSize {
		s.window = s.window[1:]
	}
}

// SmoothedValue returns the weighted average of the current window, with
// weight base^i for index i (0 = oldest), so newer samples dominate.
// Recomputed from scratch on every call to keep the result deterministic
// for a given window. Returns 0 on an empty window.
func (s *Smoother) SmoothedValue() float64 {
	if len(s.window) == 0 {
		return 0
	}

	var weightedSum, weightSum float64
	weight := 1.0
	for _, sample := range s.window {
		weightedSum += sample.Value * weight
		weightSum += weight
		weight *= s.weightBase
	}

	return weightedSum / weightSum
}

// Len returns the number of samples currently held.
func (s *Smoother) Len() int {
	return len(s.window)
}

// Cap returns the window capacity.
func (s *Smoother) Cap() int {
	return s.windowSize
}

// Window returns a copy of the current window, oldest first.
func (s *Smoother) Window() []telemetry.Sample {
	window := make([]telemetry.Sample, len(s.window))
	copy(window, s.window)

	return window
}
