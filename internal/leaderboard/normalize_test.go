package leaderboard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize_HigherIsBetter(t *testing.T) {
	cfg := ScoringConfig{HigherIsBetter: true, MetricMin: 0, MetricMax: 1, PerfectPoints: 100}

	assert.Equal(t, 0.0, Normalize(0, cfg), "Minimum score maps to zero points")
	assert.Equal(t, 50.0, Normalize(0.5, cfg), "Midpoint maps to half the points")
	assert.Equal(t, 100.0, Normalize(1, cfg), "Maximum score maps to full points")
}

func TestNormalize_LowerIsBetter(t *testing.T) {
	// Error metrics like RMSE: smaller raw values earn more points.
	cfg := ScoringConfig{HigherIsBetter: false, MetricMin: 0, MetricMax: 10, PerfectPoints: 100}

	assert.Equal(t, 100.0, Normalize(0, cfg), "Zero error is a perfect score")
	assert.Equal(t, 50.0, Normalize(5, cfg))
	assert.Equal(t, 0.0, Normalize(10, cfg), "Worst bound maps to zero points")
}

func TestNormalize_ClampsOutOfRange(t *testing.T) {
	cfg := ScoringConfig{HigherIsBetter: true, MetricMin: 0, MetricMax: 1, PerfectPoints: 100}

	assert.Equal(t, 100.0, Normalize(1.5, cfg), "Scores above the ceiling saturate")
	assert.Equal(t, 0.0, Normalize(-0.5, cfg), "Scores below the floor saturate")
}

func TestNormalize_DegenerateRange(t *testing.T) {
	cfg := ScoringConfig{HigherIsBetter: true, MetricMin: 0.7, MetricMax: 0.7, PerfectPoints: 100}
	assert.Equal(t, 0.0, Normalize(0.7, cfg), "Equal bounds yield zero instead of dividing by zero")
}

func TestNormalize_MalformedConfig(t *testing.T) {
	cfg := ScoringConfig{
		HigherIsBetter: true,
		MetricMin:      math.NaN(),
		MetricMax:      math.Inf(1),
		PerfectPoints:  -5,
	}

	// Falls back to min=0, max=1, points=100.
	assert.Equal(t, 50.0, Normalize(0.5, cfg), "Malformed bounds fall back to defaults")
	assert.Equal(t, 0.0, Normalize(math.NaN(), cfg), "NaN raw score yields zero")
}

func TestNormalize_CustomPointScale(t *testing.T) {
	cfg := ScoringConfig{HigherIsBetter: true, MetricMin: 0, MetricMax: 100, PerfectPoints: 10}

	assert.Equal(t, 2.5, Normalize(25, cfg))
	assert.Equal(t, 10.0, Normalize(200, cfg), "Clamp respects the configured point ceiling")
}
