package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// EV percent is reported within this band.
const (
	MinEVPercent = -50.0
	MaxEVPercent = 50.0
)

// ImpliedProbability converts American odds to the book's implied
// probability. It returns false for zero odds and degenerate results.
func ImpliedProbability(odds int) (float64, bool) {
	var p float64
	switch {
	case odds > 0:
		p = 100 / float64(odds+100)
	case odds < 0:
		p = float64(-odds) / float64(-odds+100)
	default:
		return 0, false
	}
	if p <= 0 || p >= 1 {
		return 0, false
	}
	return p, true
}

// HitRate is the share of values that met or exceeded line. Non-finite
// values are not evidence and are skipped.
func HitRate(values []float64, line float64) (float64, bool) {
	if !isFinite(line) {
		return 0, false
	}
	target := decimal.NewFromFloat(line)
	hits, games := 0, 0
	for _, v := range values {
		if !isFinite(v) {
			continue
		}
		games++
		if decimal.NewFromFloat(v).GreaterThanOrEqual(target) {
			hits++
		}
	}
	if games == 0 {
		return 0, false
	}
	return float64(hits) / float64(games), true
}

// ExpectedValue compares the empirical over hit rate with the implied
// probability of the over price. It returns nil when the odds, the line or
// the history is missing, or when the price is degenerate.
func ExpectedValue(overOdds *int, line *float64, values []float64) *float64 {
	if overOdds == nil || line == nil {
		return nil
	}
	implied, ok := ImpliedProbability(*overOdds)
	if !ok {
		return nil
	}
	hitRate, ok := HitRate(values, *line)
	if !ok {
		return nil
	}

	ev := round1((hitRate - implied) * 100)
	if ev < MinEVPercent {
		ev = MinEVPercent
	}
	if ev > MaxEVPercent {
		ev = MaxEVPercent
	}
	return &ev
}

func round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
