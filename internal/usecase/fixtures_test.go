package usecase

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/riskibarqy/propline/internal/domain/rawodds"
)

var (
	chiefsRef = rawodds.TeamRef{ID: "KANSAS_CITY_CHIEFS_NFL", Name: "Kansas City Chiefs", Abbreviation: "KC"}
	billsRef  = rawodds.TeamRef{ID: "BUFFALO_BILLS_NFL", Name: "Buffalo Bills", Abbreviation: "BUF"}
)

// kickoff is Sunday evening in New York, already Monday in UTC.
var kickoff = time.Date(2025, 9, 8, 0, 20, 0, 0, time.UTC)

func newYorkLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EDT", -4*60*60)
	}
	return loc
}

func chiefsBillsEvent() rawodds.Event {
	return rawodds.Event{
		ID:       "evt-kc-buf",
		League:   "NFL",
		StartsAt: kickoff,
		Home:     chiefsRef,
		Away:     billsRef,
		Players: map[string]rawodds.PlayerMeta{
			"PATRICK_MAHOMES_1_NFL": {ID: "PATRICK_MAHOMES_1_NFL", Name: "Patrick Mahomes", TeamID: chiefsRef.ID},
			"XAVIER_WORTHY_1_NFL":   {ID: "XAVIER_WORTHY_1_NFL", Name: "Xavier Worthy", TeamID: chiefsRef.ID},
		},
		Odds: map[string]rawodds.Odd{
			"passing_yards-PATRICK_MAHOMES_1_NFL-game-ou-over": {
				PlayerID: "PATRICK_MAHOMES_1_NFL",
				StatID:   "passing_yards",
				Side:     "over",
				FairLine: "265.5",
				BookLine: "260.5",
				ByBookmaker: map[string]rawodds.BookPrice{
					"fanduel":    {Odds: "-115", Available: true},
					"draftkings": {Odds: "-110", Available: true},
				},
			},
			"passing_yards-PATRICK_MAHOMES_1_NFL-game-ou-under": {
				PlayerID: "PATRICK_MAHOMES_1_NFL",
				StatID:   "passing_yards",
				Side:     "under",
				FairLine: "265.5",
				ByBookmaker: map[string]rawodds.BookPrice{
					"draftkings": {Odds: "-110", Available: true},
					"fanduel":    {Odds: "-105", Available: true},
				},
			},
			"rushing_yards-PATRICK_MAHOMES_1_NFL-game-ou-over": {
				PlayerID: "PATRICK_MAHOMES_1_NFL",
				StatID:   "rushing_yards",
				Side:     "over",
				FairLine: "abc",
			},
			"points-all-game-ou-over": {
				StatID:   "points",
				Side:     "over",
				FairLine: "47.5",
			},
			"receptions-TBD-game-ou-over": {
				PlayerID: "TBD",
				StatID:   "receptions",
				Side:     "over",
				FairLine: "3.5",
			},
			"weird-PATRICK_MAHOMES_1_NFL-game-ou-over": {
				PlayerID: "PATRICK_MAHOMES_1_NFL",
				StatID:   "!!!",
				Side:     "over",
				FairLine: "1.5",
			},
			"passing_touchdowns-PATRICK_MAHOMES_1_NFL-game-ou-push": {
				PlayerID: "PATRICK_MAHOMES_1_NFL",
				StatID:   "passing_touchdowns",
				Side:     "push",
				FairLine: "1.5",
			},
			"rushing_yards-JAMES_COOK_1_NFL-game-ou-over": {
				PlayerID: "JAMES_COOK_1_NFL",
				StatID:   "rushing_yards",
				Side:     "over",
				BookLine: "55.5",
				BookOdds: "+105",
			},
			"receptions-XAVIER_WORTHY_1_NFL-game-ou-over": {
				PlayerID: "XAVIER_WORTHY_1_NFL",
				StatID:   "receptions",
				Side:     "over",
				FairLine: "4.5",
				FairOdds: "EVEN",
			},
		},
	}
}

type recordedMetrics struct {
	mu        sync.Mutex
	tiers     map[string]int
	rejected  map[string]int
	stored    map[string]int
	matchRate map[string]float64
}

func newRecordedMetrics() *recordedMetrics {
	return &recordedMetrics{
		tiers:     make(map[string]int),
		rejected:  make(map[string]int),
		stored:    make(map[string]int),
		matchRate: make(map[string]float64),
	}
}

func (m *recordedMetrics) RecordFetchTier(_ context.Context, league string, tier int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tiers[league] = tier
}

func (m *recordedMetrics) RecordRejected(_ context.Context, league, reason string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rejected[league+"/"+reason] += count
}

func (m *recordedMetrics) RecordStored(_ context.Context, table string, stored, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stored[table] += stored
}

func (m *recordedMetrics) RecordMatchRate(_ context.Context, league string, rate float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.matchRate[league] = rate
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return "run-" + strconv.Itoa(g.n), nil
}
