package source

import "codeberg.org/mirrwin/upsmon/internal/telemetry"

// Source is an asynchronous inbound telemetry feed. Readings arrive at
// irregular intervals; the channel is closed when the source shuts down.
type Source interface {
	Readings() <-chan telemetry.Reading
	Close() error
}
