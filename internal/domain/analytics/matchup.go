package analytics

import (
	"sort"
	"strings"

	"github.com/riskibarqy/propline/internal/domain/gamelog"
	"github.com/riskibarqy/propline/internal/domain/proptype"
	"github.com/riskibarqy/propline/internal/domain/team"
)

// Matchup labels by percentile.
const (
	LabelSoft    = "Soft Matchup"
	LabelNeutral = "Neutral Matchup"
	LabelTough   = "Tough Matchup"

	SoftPercentile  = 67.0
	ToughPercentile = 33.0
)

// RankMatchups aggregates settled logs per (league, season, prop type,
// opponent) and ranks opponents within each prop type by how often players
// cleared their lines against them. Rank 1 is the softest opponent.
func RankMatchups(logs []gamelog.GameLog, minGames int) []MatchupRanking {
	if minGames < 1 {
		minGames = 1
	}

	type groupKey struct {
		league   string
		season   int
		propType string
		opponent string
	}
	groups := make(map[groupKey]*MatchupRanking)
	for _, log := range logs {
		opponent := strings.ToUpper(strings.TrimSpace(log.Opponent))
		if !log.Settled() || opponent == "" || opponent == team.Unknown {
			continue
		}
		key := groupKey{
			league:   strings.ToLower(strings.TrimSpace(log.League)),
			season:   log.Season,
			propType: proptype.NormalizeKey(log.PropType),
			opponent: opponent,
		}
		g, ok := groups[key]
		if !ok {
			g = &MatchupRanking{League: key.league, Season: key.season, PropType: key.propType, Opponent: key.opponent}
			groups[key] = g
		}
		g.Games++
		if log.Hit() {
			g.Hits++
		}
	}

	type bucketKey struct {
		league   string
		season   int
		propType string
	}
	buckets := make(map[bucketKey][]*MatchupRanking)
	for key, g := range groups {
		if g.Games < minGames {
			continue
		}
		g.HitRate = float64(g.Hits) / float64(g.Games)
		bk := bucketKey{league: key.league, season: key.season, propType: key.propType}
		buckets[bk] = append(buckets[bk], g)
	}

	out := make([]MatchupRanking, 0, len(groups))
	for _, bucket := range buckets {
		rankBucket(bucket)
		for _, g := range bucket {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.League != b.League {
			return a.League < b.League
		}
		if a.Season != b.Season {
			return a.Season < b.Season
		}
		if a.PropType != b.PropType {
			return a.PropType < b.PropType
		}
		if a.Rank != b.Rank {
			return a.Rank < b.Rank
		}
		return a.Opponent < b.Opponent
	})
	return out
}

func rankBucket(bucket []*MatchupRanking) {
	n := len(bucket)
	for _, g := range bucket {
		below, equal, above := 0, 0, 0
		for _, other := range bucket {
			switch {
			case other.HitRate < g.HitRate:
				below++
			case other.HitRate == g.HitRate:
				equal++
			default:
				above++
			}
		}
		g.Rank = above + 1
		g.Percentile = round1((float64(below) + 0.5*float64(equal)) / float64(n) * 100)
		g.Label = MatchupLabel(g.Percentile)
	}
}

// MatchupLabel maps a percentile to its matchup label.
func MatchupLabel(percentile float64) string {
	switch {
	case percentile >= SoftPercentile:
		return LabelSoft
	case percentile <= ToughPercentile:
		return LabelTough
	default:
		return LabelNeutral
	}
}

// MatchupIndex looks up rankings by prop type and opponent.
type MatchupIndex struct {
	byKey map[string]MatchupRanking
}

func NewMatchupIndex(rankings []MatchupRanking) *MatchupIndex {
	idx := &MatchupIndex{byKey: make(map[string]MatchupRanking, len(rankings))}
	for _, r := range rankings {
		idx.byKey[matchupKey(r.League, r.PropType, r.Opponent)] = r
	}
	return idx
}

func (i *MatchupIndex) Lookup(league, propType, opponent string) (MatchupRanking, bool) {
	if i == nil {
		return MatchupRanking{}, false
	}
	r, ok := i.byKey[matchupKey(league, propType, opponent)]
	return r, ok
}

func matchupKey(league, propType, opponent string) string {
	return strings.ToLower(strings.TrimSpace(league)) + "|" +
		proptype.NormalizeKey(propType) + "|" +
		strings.ToUpper(strings.TrimSpace(opponent))
}
