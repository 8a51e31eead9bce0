package feed

import "codeberg.org/mirrwin/upsmon/internal/telemetry"

// Surface is the rendering side of the feed: it receives one appended point
// per metric per tick and a redraw signal once all metrics of the tick have
// been appended. Redraw is best-effort; a failing surface never stops the
// feed.
type Surface interface {
	Append(metric telemetry.Metric, point telemetry.Point)
	Redraw() error
}

// State reports where the feed's points currently come from.
type State string

const (
	// StateSynthetic means no usable live reading: points are fabricated
	// around the persisted baseline.
	StateSynthetic State = "synthetic"

	// StateLive means points are derived from inbound readings. The state is
	// sticky: a silent source keeps the feed live on stale values unless a
	// reversion window is configured.
	StateLive State = "live"
)
