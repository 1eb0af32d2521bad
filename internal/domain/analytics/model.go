package analytics

import (
	"context"
	"time"
)

// PropAnalytics is the derived view of one prop line.
type PropAnalytics struct {
	ConflictKey       string
	PlayerID          string
	PropType          string
	League            string
	Date              time.Time
	EVPercent         *float64
	Last5             string
	Last10            string
	Last20            string
	HeadToHead        string
	StreakLength      int
	StreakDirection   string
	StreakTier        string
	Signal            string
	MatchupPercentile *float64
	MatchupLabel      string
	ComputedAt        time.Time
}

// MatchupRanking is one opponent's standing for a prop type in a season.
type MatchupRanking struct {
	League     string
	Season     int
	PropType   string
	Opponent   string
	Games      int
	Hits       int
	HitRate    float64
	Rank       int
	Percentile float64
	Label      string
}

type Repository interface {
	UpsertPropAnalytics(ctx context.Context, items []PropAnalytics) error
	ReplaceMatchupRankings(ctx context.Context, league string, season int, items []MatchupRanking) error
}
