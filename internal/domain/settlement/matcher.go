package settlement

import (
	"math"
	"strings"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/player"
	"github.com/riskibarqy/propline/internal/domain/prop"
	"github.com/riskibarqy/propline/internal/domain/proptype"
	"github.com/shopspring/decimal"
)

// Match rules, in evaluation order.
const (
	TierPlayerID       = "player_id"
	TierNameTeam       = "name_team"
	TierNormalizedName = "normalized_name_team"
)

const (
	ResultOver  = "OVER"
	ResultUnder = "UNDER"
)

// Matched pairs a performance with the prop line it settles.
type Matched struct {
	Performance gamelog.Performance
	Prop        *prop.Prop
	HitResult   int
	Result      string
	Difference  float64
	Tier        string
}

// GameLog returns the settled row to persist. A settled row carries the
// prop line's player id so history reads keyed by the line find it; the
// conflict key stays the performance's own.
func (m Matched) GameLog() gamelog.GameLog {
	out := gamelog.FromPerformance(m.Performance)
	if m.Prop == nil {
		return out
	}
	if id := strings.TrimSpace(m.Prop.PlayerID); id != "" {
		out.PlayerID = id
	}
	line := m.Prop.Line
	hit := m.HitResult
	diff := m.Difference
	out.Line = &line
	out.OverOdds = m.Prop.OverOdds
	out.UnderOdds = m.Prop.UnderOdds
	out.HitResult = &hit
	out.Result = m.Result
	out.Difference = &diff
	out.PropConflictKey = m.Prop.ConflictKey
	if out.Opponent == "" {
		out.Opponent = m.Prop.Opponent
	}
	return out
}

type Result struct {
	Matched               []Matched
	UnmatchedPerformances []gamelog.Performance
	UnmatchedProps        []prop.Prop
	MatchRate             float64
}

type matchRule struct {
	tier    string
	matches func(perf gamelog.Performance, line prop.Prop) bool
}

var matchRules = []matchRule{
	{
		tier: TierPlayerID,
		matches: func(perf gamelog.Performance, line prop.Prop) bool {
			id := strings.TrimSpace(perf.PlayerID)
			return id != "" && id == strings.TrimSpace(line.PlayerID)
		},
	},
	{
		tier: TierNameTeam,
		matches: func(perf gamelog.Performance, line prop.Prop) bool {
			return perf.PlayerName != "" && perf.PlayerName == line.PlayerName && perf.Team == line.Team
		},
	},
	{
		tier: TierNormalizedName,
		matches: func(perf gamelog.Performance, line prop.Prop) bool {
			name := player.NormalizeName(perf.PlayerName)
			return name != "" &&
				name == player.NormalizeName(line.PlayerName) &&
				strings.EqualFold(strings.TrimSpace(perf.Team), strings.TrimSpace(line.Team))
		},
	},
}

// Match settles performances against prop lines greedily: performances are
// visited in input order, rules are tried in order and the first unconsumed
// line of the same prop type wins. A line is consumed at most once.
// Performances without a finite value and lines without a finite line are
// never matched.
func Match(perfs []gamelog.Performance, lines []prop.Prop) Result {
	byType := make(map[string][]int, len(lines))
	for i, line := range lines {
		if !isFinite(line.Line) {
			continue
		}
		key := proptype.NormalizeKey(line.PropType)
		byType[key] = append(byType[key], i)
	}

	consumed := make([]bool, len(lines))
	out := Result{}

	for _, perf := range perfs {
		if !perf.HasValue() {
			out.UnmatchedPerformances = append(out.UnmatchedPerformances, perf)
			continue
		}
		candidates := byType[proptype.NormalizeKey(perf.PropType)]
		idx, tier := -1, ""
		for _, rule := range matchRules {
			for _, i := range candidates {
				if consumed[i] || !rule.matches(perf, lines[i]) {
					continue
				}
				idx, tier = i, rule.tier
				break
			}
			if idx >= 0 {
				break
			}
		}
		if idx < 0 {
			out.UnmatchedPerformances = append(out.UnmatchedPerformances, perf)
			continue
		}

		consumed[idx] = true
		line := lines[idx]
		out.Matched = append(out.Matched, settle(perf, &line, tier))
	}

	for i, line := range lines {
		if !consumed[i] {
			out.UnmatchedProps = append(out.UnmatchedProps, line)
		}
	}
	if len(perfs) > 0 {
		out.MatchRate = float64(len(out.Matched)) / float64(len(perfs))
	}
	return out
}

func settle(perf gamelog.Performance, line *prop.Prop, tier string) Matched {
	value := decimal.NewFromFloat(perf.Value)
	target := decimal.NewFromFloat(line.Line)

	m := Matched{
		Performance: perf,
		Prop:        line,
		Difference:  value.Sub(target).InexactFloat64(),
		Tier:        tier,
		Result:      ResultUnder,
	}
	if value.GreaterThanOrEqual(target) {
		m.HitResult = 1
		m.Result = ResultOver
	}
	return m
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
