package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Streak directions.
const (
	DirectionHit  = "hit"
	DirectionMiss = "miss"
)

// Streak tiers.
const (
	TierNone        = "No History"
	TierSingleGame  = "Single Game"
	TierBuilding    = "Building"
	TierHot         = "Hot"
	TierCold        = "Cold"
	TierVeryHot     = "Very Hot"
	TierVeryCold    = "Very Cold"
	TierExtremeHot  = "Extreme Hot"
	TierExtremeCold = "Extreme Cold"
)

// Betting signals.
const (
	SignalFade       = "Fade Candidate"
	SignalBounceBack = "Bounce-Back Candidate"
	SignalRide       = "Ride the Streak"
	SignalAvoid      = "Avoid"
	SignalNeutral    = "Neutral"
)

// HitRateWindow is the number of recent games behind the signal hit rate.
const HitRateWindow = 20

// HistoryPoint is one past observed value for a player at a prop type.
type HistoryPoint struct {
	Date     time.Time
	Value    float64
	Opponent string
}

type StreakSummary struct {
	Last5      string
	Last10     string
	Last20     string
	HeadToHead string
	Length     int
	Direction  string
	Tier       string
	Signal     string
	HitRate    float64
	Games      int
}

// Streaks summarizes history strictly before queryDate against line. The
// current run is counted from the most recent game. Non-finite values are
// not counted as games.
func Streaks(history []HistoryPoint, queryDate time.Time, line float64, opponent string) StreakSummary {
	points := make([]HistoryPoint, 0, len(history))
	for _, p := range history {
		if isFinite(line) && isFinite(p.Value) && p.Date.Before(queryDate) {
			points = append(points, p)
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date.After(points[j].Date)
	})

	hits := make([]bool, len(points))
	if len(points) > 0 {
		target := decimal.NewFromFloat(line)
		for i, p := range points {
			hits[i] = decimal.NewFromFloat(p.Value).GreaterThanOrEqual(target)
		}
	}

	out := StreakSummary{
		Last5:  hitsString(hits, 5),
		Last10: hitsString(hits, 10),
		Last20: hitsString(hits, 20),
		Games:  len(points),
	}

	h2h := make([]bool, 0)
	opponent = strings.TrimSpace(opponent)
	for i, p := range points {
		if opponent != "" && strings.EqualFold(strings.TrimSpace(p.Opponent), opponent) {
			h2h = append(h2h, hits[i])
		}
	}
	out.HeadToHead = hitsString(h2h, len(h2h))

	if len(hits) > 0 {
		out.Direction = DirectionMiss
		if hits[0] {
			out.Direction = DirectionHit
		}
		for _, h := range hits {
			if h != hits[0] {
				break
			}
			out.Length++
		}
		window := hits
		if len(window) > HitRateWindow {
			window = window[:HitRateWindow]
		}
		out.HitRate = float64(countHits(window)) / float64(len(window))
	}

	out.Tier = ClassifyStreak(out.Length, out.Direction)
	out.Signal = Signal(out.Length, out.Direction, out.HitRate)
	return out
}

// ClassifyStreak buckets a run by length and direction.
func ClassifyStreak(length int, direction string) string {
	hot := direction == DirectionHit
	switch {
	case length <= 0:
		return TierNone
	case length == 1:
		return TierSingleGame
	case length == 2:
		return TierBuilding
	case length <= 4:
		return pick(hot, TierHot, TierCold)
	case length <= 6:
		return pick(hot, TierVeryHot, TierVeryCold)
	default:
		return pick(hot, TierExtremeHot, TierExtremeCold)
	}
}

type signalInput struct {
	length    int
	direction string
	hitRate   float64
}

type signalRule struct {
	signal string
	when   func(in signalInput) bool
}

// signalRules is evaluated top to bottom; the first matching rule wins.
var signalRules = []signalRule{
	{SignalFade, func(in signalInput) bool {
		return in.direction == DirectionHit && in.length >= 5 && in.hitRate > 0.6
	}},
	{SignalBounceBack, func(in signalInput) bool {
		return in.direction == DirectionMiss && in.length >= 5 && in.hitRate < 0.4
	}},
	{SignalRide, func(in signalInput) bool {
		return in.direction == DirectionHit && in.length >= 3
	}},
	{SignalAvoid, func(in signalInput) bool {
		return in.direction == DirectionMiss && in.length >= 3
	}},
}

// Signal derives the betting signal for a run and its recent hit rate.
func Signal(length int, direction string, hitRate float64) string {
	in := signalInput{length: length, direction: direction, hitRate: hitRate}
	for _, rule := range signalRules {
		if rule.when(in) {
			return rule.signal
		}
	}
	return SignalNeutral
}

func hitsString(hits []bool, n int) string {
	if n > len(hits) {
		n = len(hits)
	}
	return strconv.Itoa(countHits(hits[:n])) + "/" + strconv.Itoa(n)
}

func countHits(hits []bool) int {
	n := 0
	for _, h := range hits {
		if h {
			n++
		}
	}
	return n
}

func pick(cond bool, a, b string) string {
	if cond {
		return a
	}
	return b
}
