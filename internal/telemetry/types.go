package telemetry

import "time"

// Metric names one tracked telemetry series.
type Metric string

const (
	// MetricPower is the UPS output power draw in watts. Noisy at one-second
	// resolution, so it is smoothed before display.
	MetricPower Metric = "power"

	// MetricLoad is the UPS load percentage. Already coarse, displayed raw.
	MetricLoad Metric = "load"
)

// Tracked returns all metrics the feed emits, in display order.
func Tracked() []Metric {
	return []Metric{MetricPower, MetricLoad}
}

// Sample is a single timestamped measurement. Immutable once created.
type Sample struct {
	Timestamp time.Time
	Value     float64
}

// Reading is one inbound push message: a timestamp plus the metric values
// it carries. A metric absent from Values means "no update", not zero.
type Reading struct {
	Timestamp time.Time
	Values    map[Metric]float64
}

// Point is one chart point as consumed by the rendering surface.
type Point struct {
	T int64   `json:"t"` // epoch milliseconds
	Y float64 `json:"y"`
}
