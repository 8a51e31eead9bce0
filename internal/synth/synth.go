package synth

import (
	"math"
	"math/rand"
	"time"

	"codeberg.org/mirrwin/upsmon/internal/telemetry"
)

// Rule bounds the synthetic values of one metric.
type Rule struct {
	Delta    float64 // maximum perturbation around the baseline
	Floor    float64
	Ceiling  float64 // +Inf when unbounded
	Baseline float64 // default anchor when no value was ever persisted
}

var rules = map[telemetry.Metric]Rule{
	telemetry.MetricPower: {Delta: 5, Floor: 10, Ceiling: math.Inf(1), Baseline: 100},
	telemetry.MetricLoad:  {Delta: 5, Floor: 0, Ceiling: 100, Baseline: 50},
}

// RuleFor returns the variation rule of a metric. Unknown metrics get an
// unbounded zero-baseline rule.
func RuleFor(metric telemetry.Metric) Rule {
	if rule, ok := rules[metric]; ok {
		return rule
	}

	return Rule{Delta: 5, Floor: 0, Ceiling: math.Inf(1)}
}

// DefaultBaseline returns the documented anchor value of a metric.
func DefaultBaseline(metric telemetry.Metric) float64 {
	return RuleFor(metric).Baseline
}

// Generator fabricates plausible values around a last known baseline for
// ticks with no live sample.
type Generator struct {
	rng *rand.Rand
}

func NewGenerator() *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewGeneratorWithSeed creates a generator with a fixed seed.
func NewGeneratorWithSeed(seed int64) *Generator {
	return &Generator{
		rng: rand.New(rand.NewSource(seed)),
	}
}

// NextFallback returns lastKnown perturbed by a uniform value in
// [-delta, +delta], clamped to the metric's bounds.
func (g *Generator) NextFallback(metric telemetry.Metric, lastKnown float64) float64 {
	rule := RuleFor(metric)
	value := lastKnown + g.perturbation(rule.Delta)

	return clamp(value, rule.Floor, rule.Ceiling)
}

// SeedSeries fabricates count backward-dated samples ending at now, each
// independently perturbed from the baseline. Used once at cold start to
// pre-populate an empty chart.
func (g *Generator) SeedSeries(metric telemetry.Metric, baseline float64, count int, spacing time.Duration) []telemetry.Sample {
	if count <= 0 {
		return nil
	}

	rule := RuleFor(metric)
	now := time.Now()
	samples := make([]telemetry.Sample, 0, count)
	for i := 0; i < count; i++ {
		samples = append(samples, telemetry.Sample{
			Timestamp: now.Add(-time.Duration(count-1-i) * spacing),
			Value:     clamp(baseline+g.perturbation(rule.Delta), rule.Floor, rule.Ceiling),
		})
	}

	return samples
}

func (g *Generator) perturbation(delta float64) float64 {
	return (g.rng.Float64()*2 - 1) * delta
}

func clamp(value, floor, ceiling float64) float64 {
	if value < floor {
		return floor
	}
	if value > ceiling {
		return ceiling
	}

	return value
}
