package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/propline/internal/domain/player"
)

type PlayerRepository struct {
	mu              sync.RWMutex
	playersByLeague map[string][]player.Player
}

func NewPlayerRepository(players []player.Player) *PlayerRepository {
	playersByLeague := make(map[string][]player.Player)
	for _, p := range players {
		key := leagueKey(p.League)
		playersByLeague[key] = append(playersByLeague[key], p)
	}
	return &PlayerRepository{playersByLeague: playersByLeague}
}

func (r *PlayerRepository) ListByLeague(_ context.Context, league string) ([]player.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	players := r.playersByLeague[leagueKey(league)]
	out := make([]player.Player, 0, len(players))
	out = append(out, players...)
	return out, nil
}

// MissingPlayerRepository keeps the latest sighting per (league, normalized name).
type MissingPlayerRepository struct {
	mu    sync.RWMutex
	items map[string]player.MissingPlayer
}

func NewMissingPlayerRepository() *MissingPlayerRepository {
	return &MissingPlayerRepository{items: make(map[string]player.MissingPlayer)}
}

func (r *MissingPlayerRepository) Record(_ context.Context, item player.MissingPlayer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	item.League = leagueKey(item.League)
	r.items[item.League+"|"+item.NormalizedName] = item
	return nil
}

func (r *MissingPlayerRepository) Clear(_ context.Context, league, normalizedName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.items, leagueKey(league)+"|"+normalizedName)
	return nil
}

func (r *MissingPlayerRepository) List() []player.MissingPlayer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]player.MissingPlayer, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out
}
