package telemetry_test

import (
	"testing"
	"time"

	"codeberg.org/mirrwin/upsmon/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReading(t *testing.T) {
	fallback := time.Now()

	reading, err := telemetry.ParseReading([]byte(`{"power": 420.5, "load": 55}`), fallback)
	require.NoError(t, err)

	assert.Equal(t, fallback, reading.Timestamp)
	assert.InDelta(t, 420.5, reading.Values[telemetry.MetricPower], 1e-9)
	assert.InDelta(t, 55, reading.Values[telemetry.MetricLoad], 1e-9)
}

func TestParseReadingEpochSeconds(t *testing.T) {
	reading, err := telemetry.ParseReading([]byte(`{"timestamp": 1700000000, "power": 300}`), time.Now())
	require.NoError(t, err)

	assert.Equal(t, time.Unix(1700000000, 0), reading.Timestamp)
}

func TestParseReadingEpochMillis(t *testing.T) {
	reading, err := telemetry.ParseReading([]byte(`{"timestamp": 1700000000000, "power": 300}`), time.Now())
	require.NoError(t, err)

	assert.Equal(t, time.UnixMilli(1700000000000), reading.Timestamp)
}

func TestParseReadingRFC3339(t *testing.T) {
	reading, err := telemetry.ParseReading([]byte(`{"timestamp": "2024-05-01T10:30:00Z", "load": 40}`), time.Now())
	require.NoError(t, err)

	expected, _ := time.Parse(time.RFC3339, "2024-05-01T10:30:00Z")
	assert.True(t, reading.Timestamp.Equal(expected))
}

func TestParseReadingMalformedFields(t *testing.T) {
	// A non-numeric metric value means "no update", not an error.
	reading, err := telemetry.ParseReading([]byte(`{"power": "glitch", "load": 42}`), time.Now())
	require.NoError(t, err)

	_, ok := reading.Values[telemetry.MetricPower]
	assert.False(t, ok, "non-numeric power must be dropped field-wise")
	assert.InDelta(t, 42, reading.Values[telemetry.MetricLoad], 1e-9)
}

func TestParseReadingUnknownFieldsIgnored(t *testing.T) {
	reading, err := telemetry.ParseReading([]byte(`{"power": 100, "battery": 88, "status": "online"}`), time.Now())
	require.NoError(t, err)

	assert.Len(t, reading.Values, 1, "unknown fields must be ignored")
}

func TestParseReadingInvalidJSON(t *testing.T) {
	_, err := telemetry.ParseReading([]byte(`not json`), time.Now())
	assert.Error(t, err)
}
