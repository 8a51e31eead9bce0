package source_test

import (
	"testing"

	"codeberg.org/mirrwin/upsmon/internal/source"
	"github.com/stretchr/testify/assert"
)

func TestKafkaConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     source.KafkaConfig
		wantErr bool
	}{
		{"valid", source.KafkaConfig{Brokers: []string{"broker:9092"}, Topic: "ups.telemetry"}, false},
		{"no brokers", source.KafkaConfig{Topic: "ups.telemetry"}, true},
		{"no topic", source.KafkaConfig{Brokers: []string{"broker:9092"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewKafkaInvalidConfig(t *testing.T) {
	_, err := source.NewKafka(source.KafkaConfig{})
	assert.Error(t, err)
}
