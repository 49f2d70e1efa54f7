package leaderboard

import "math"

// ScoringConfig is a competition's per-metric scoring configuration.
type ScoringConfig struct {
	HigherIsBetter bool
	MetricMin      float64
	MetricMax      float64
	PerfectPoints  float64
}

// Normalize maps a raw metric value onto [0, PerfectPoints] by linear
// interpolation between MetricMin and MetricMax, inverted when lower scores
// are better. The result is clamped: external metrics frequently have no
// fixed ceiling, and out-of-range scores saturate rather than overflow the
// visible scale. Malformed configuration yields 0, never an error, because
// normalization failure must not abort the sync of an otherwise-valid row.
func Normalize(raw float64, cfg ScoringConfig) float64 {
	min, max, points := cfg.MetricMin, cfg.MetricMax, cfg.PerfectPoints
	if math.IsNaN(min) || math.IsInf(min, 0) {
		min = 0
	}
	if math.IsNaN(max) || math.IsInf(max, 0) {
		max = 1
	}
	if math.IsNaN(points) || math.IsInf(points, 0) || points <= 0 {
		points = 100
	}

	// Degenerate range, avoid division by zero.
	if max == min {
		return 0
	}

	var normalized float64
	if cfg.HigherIsBetter {
		normalized = (raw - min) / (max - min) * points
	} else {
		normalized = (max - raw) / (max - min) * points
	}

	if math.IsNaN(normalized) || normalized < 0 {
		return 0
	}
	if normalized > points {
		return points
	}
	return normalized
}
