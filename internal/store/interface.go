package store

import (
	"context"

	"codeberg.org/mirrwin/upsmon/internal/telemetry"
)

// BaselineStore is a durable single-value cache per metric: the last known
// real value, used to anchor synthetic samples across restarts. Every write
// is a full replace.
type BaselineStore interface {
	// Get returns the stored value for a metric. ok is false when the
	// metric was never set.
	Get(ctx context.Context, metric telemetry.Metric) (value float64, ok bool, err error)

	// Set overwrites the stored value for a metric.
	Set(ctx context.Context, metric telemetry.Metric, value float64) error

	Close() error
}
