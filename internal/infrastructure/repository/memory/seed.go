package memory

import "github.com/riskibarqy/propline/internal/domain/player"

// SeedPlayers is a small registry used when the memory driver runs without
// a database.
func SeedPlayers() []player.Player {
	return []player.Player{
		{ID: "PATRICK_MAHOMES_1_NFL", League: "nfl", Name: "Patrick Mahomes", Team: "KC", Position: "QB"},
		{ID: "TRAVIS_KELCE_1_NFL", League: "nfl", Name: "Travis Kelce", Team: "KC", Position: "TE"},
		{ID: "JOSH_ALLEN_1_NFL", League: "nfl", Name: "Josh Allen", Team: "BUF", Position: "QB"},
		{ID: "JAMES_COOK_1_NFL", League: "nfl", Name: "James Cook", Team: "BUF", Position: "RB"},
		{ID: "JAYSON_TATUM_1_NBA", League: "nba", Name: "Jayson Tatum", Team: "BOS", Position: "F"},
		{ID: "JALEN_BRUNSON_1_NBA", League: "nba", Name: "Jalen Brunson", Team: "NYK", Position: "G"},
		{ID: "NIKOLA_JOKIC_1_NBA", League: "nba", Name: "Nikola Jokić", Team: "DEN", Position: "C", Aliases: []string{"Joker"}},
	}
}

// SeedPropTypeAliases mirrors the aliases operators usually add by hand.
func SeedPropTypeAliases() map[string]string {
	return map[string]string{
		"fantasy_pts":   "fantasy_score",
		"fantasy score": "fantasy_score",
	}
}
