package telemetry

import (
	"encoding/json"
	"time"
)

// Timestamps above this are taken as epoch milliseconds rather than seconds.
const epochMillisCutoff = 1e12

// ParseReading decodes one inbound telemetry message. Unknown fields are
// ignored and non-numeric values for tracked metrics are dropped field-wise,
// so a malformed field means "no update" rather than an error. fallback is
// used when the message carries no usable timestamp.
func ParseReading(data []byte, fallback time.Time) (Reading, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Reading{}, err
	}

	reading := Reading{
		Timestamp: fallback,
		Values:    make(map[Metric]float64),
	}

	if ts, ok := raw["timestamp"]; ok {
		switch v := ts.(type) {
		case float64:
			if v > epochMillisCutoff {
				reading.Timestamp = time.UnixMilli(int64(v))
			} else {
				reading.Timestamp = time.Unix(int64(v), 0)
			}
		case string:
			if t, err := time.Parse(time.RFC3339, v); err == nil {
				reading.Timestamp = t
			}
		}
	}

	for _, metric := range Tracked() {
		if value, ok := raw[string(metric)].(float64); ok {
			reading.Values[metric] = value
		}
	}

	return reading, nil
}
