package store

import (
	"context"
	"sync"

	"codeberg.org/mirrwin/upsmon/internal/telemetry"
)

// memoryStore is a volatile BaselineStore for tests and for running
// without a database. Values do not survive restarts.
type memoryStore struct {
	mu     sync.RWMutex
	values map[telemetry.Metric]float64
}

func NewMemory() BaselineStore {
	return &memoryStore{
		values: make(map[telemetry.Metric]float64),
	}
}

func (s *memoryStore) Get(_ context.Context, metric telemetry.Metric) (float64, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[metric]

	return value, ok, nil
}

func (s *memoryStore) Set(_ context.Context, metric telemetry.Metric, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[metric] = value

	return nil
}

func (*memoryStore) Close() error {
	return nil
}
