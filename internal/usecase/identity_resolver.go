package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/domain/player"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/platform/cache"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

// minFuzzyKeyLen keeps short names out of the substring pass.
const minFuzzyKeyLen = 5

// IdentityQuery is one player-name lookup.
type IdentityQuery struct {
	Name   string
	Team   string
	League string
	// Source is a sample of the raw row, stored on diagnostics misses.
	Source string
}

type IdentityResolverConfig struct {
	TTL time.Duration
	Now func() time.Time
}

// IdentityResolver maps feed player names to canonical registry ids through
// a per-league variant index that is rebuilt after its TTL.
type IdentityResolver struct {
	players player.Repository
	missing player.MissingRepository
	indexes *cache.Store[*identityIndex]
	sinkLog *cache.Store[string]
	now     func() time.Time
	logger  *logging.Logger
}

func NewIdentityResolver(
	players player.Repository,
	missing player.MissingRepository,
	cfg IdentityResolverConfig,
	logger *logging.Logger,
) *IdentityResolver {
	if logger == nil {
		logger = logging.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &IdentityResolver{
		players: players,
		missing: missing,
		indexes: cache.NewStore[*identityIndex](cfg.TTL, cache.WithClock(now)),
		sinkLog: cache.NewStore[string](cfg.TTL, cache.WithClock(now)),
		now:     now,
		logger:  logger.Named("identity_resolver"),
	}
}

// Resolve never fails: unresolved names come back with Resolved=false and a
// deterministic fallback id.
func (r *IdentityResolver) Resolve(ctx context.Context, name, teamAbbr, league string) player.Identity {
	return r.ResolveQuery(ctx, IdentityQuery{Name: name, Team: teamAbbr, League: league})
}

func (r *IdentityResolver) ResolveQuery(ctx context.Context, q IdentityQuery) player.Identity {
	league := strings.ToLower(strings.TrimSpace(q.League))
	teamAbbr := strings.ToUpper(strings.TrimSpace(q.Team))
	if teamAbbr == "" {
		teamAbbr = team.Unknown
	}
	identity := player.Identity{
		Method: player.MethodFallback,
		Hint:   player.RawIdentityHint{Name: q.Name, Team: teamAbbr, League: league},
	}

	key := player.NormalizeName(q.Name)
	if key == "" {
		return identity
	}

	idx := r.index(ctx, league)
	if id, ok := idx.exact(q.Name); ok {
		identity.CanonicalID, identity.Resolved, identity.Method = id, true, player.MethodExact
	} else if id, ok := idx.fuzzy(key, teamAbbr); ok {
		identity.CanonicalID, identity.Resolved, identity.Method = id, true, player.MethodFuzzy
	}

	if identity.Resolved {
		r.clearMissing(ctx, league, key)
	} else {
		r.recordMissing(ctx, q, league, key, identity)
	}
	return identity
}

// TeamOf returns the registry team of a canonical player id.
func (r *IdentityResolver) TeamOf(ctx context.Context, league, playerID string) (string, bool) {
	idx := r.index(ctx, strings.ToLower(strings.TrimSpace(league)))
	t, ok := idx.teams[playerID]
	return t, ok && t != ""
}

// Invalidate drops the cached index of a league.
func (r *IdentityResolver) Invalidate(league string) {
	r.indexes.Invalidate(strings.ToLower(strings.TrimSpace(league)))
}

func (r *IdentityResolver) index(ctx context.Context, league string) *identityIndex {
	if r.players == nil {
		return emptyIdentityIndex
	}
	idx, err := r.indexes.GetOrLoad(ctx, league, func(ctx context.Context) (*identityIndex, error) {
		players, err := r.players.ListByLeague(ctx, league)
		if err != nil {
			return nil, err
		}
		built := buildIdentityIndex(players)
		r.logger.InfoContext(ctx, "player identity index built",
			"league", league,
			"players", len(players),
			"keys", len(built.full)+len(built.partial),
		)
		return built, nil
	})
	if err != nil {
		r.logger.WarnContext(ctx, "load player registry failed, resolving by fallback only",
			"league", league,
			"error", err,
		)
		return emptyIdentityIndex
	}
	return idx
}

func (r *IdentityResolver) clearMissing(ctx context.Context, league, key string) {
	if r.missing == nil {
		return
	}
	sinkKey := league + "|" + key
	if state, ok := r.sinkLog.Get(sinkKey); ok && state == "cleared" {
		return
	}
	if err := r.missing.Clear(ctx, league, key); err != nil {
		r.logger.WarnContext(ctx, "clear missing player failed", "league", league, "name", key, "error", err)
		return
	}
	r.sinkLog.Set(sinkKey, "cleared")
}

func (r *IdentityResolver) recordMissing(ctx context.Context, q IdentityQuery, league, key string, identity player.Identity) {
	if r.missing == nil {
		return
	}
	sinkKey := league + "|" + key
	if state, ok := r.sinkLog.Get(sinkKey); ok && state == "recorded" {
		return
	}
	item := player.MissingPlayer{
		League:         league,
		Name:           strings.TrimSpace(q.Name),
		NormalizedName: key,
		Team:           identity.Hint.Team,
		GeneratedID:    identity.ID(),
		SampleSource:   q.Source,
		RunID:          RunIDFromContext(ctx),
		SeenAt:         r.now().UTC(),
	}
	if err := r.missing.Record(ctx, item); err != nil {
		r.logger.WarnContext(ctx, "record missing player failed", "league", league, "name", key, "error", err)
		return
	}
	r.sinkLog.Set(sinkKey, "recorded")
}

type identityIndex struct {
	full    map[string]string
	partial map[string]string
	teams   map[string]string
	keys    []string
}

var emptyIdentityIndex = &identityIndex{
	full:    map[string]string{},
	partial: map[string]string{},
	teams:   map[string]string{},
}

// buildIdentityIndex indexes every spelling of each player. Full variants
// are first-come by player id; first-only or last-only variants are kept
// only when exactly one player produces them.
func buildIdentityIndex(players []player.Player) *identityIndex {
	sorted := make([]player.Player, 0, len(players))
	for _, p := range players {
		if p.Validate() == nil {
			sorted = append(sorted, p)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	idx := &identityIndex{
		full:    make(map[string]string, len(sorted)*4),
		partial: make(map[string]string, len(sorted)),
		teams:   make(map[string]string, len(sorted)),
	}
	partialOwners := make(map[string]map[string]struct{})

	for _, p := range sorted {
		idx.teams[p.ID] = strings.ToUpper(strings.TrimSpace(p.Team))
		names := append([]string{p.Name}, p.Aliases...)
		for _, name := range names {
			v := player.IndexVariations(name)
			for _, key := range v.Full {
				if _, taken := idx.full[key]; !taken {
					idx.full[key] = p.ID
				}
			}
			for _, key := range v.Partial {
				owners, ok := partialOwners[key]
				if !ok {
					owners = make(map[string]struct{})
					partialOwners[key] = owners
				}
				owners[p.ID] = struct{}{}
			}
		}
	}
	for key, owners := range partialOwners {
		if len(owners) != 1 {
			continue
		}
		if _, taken := idx.full[key]; taken {
			continue
		}
		for id := range owners {
			idx.partial[key] = id
		}
	}

	idx.keys = make([]string, 0, len(idx.full))
	for key := range idx.full {
		if len(key) >= minFuzzyKeyLen {
			idx.keys = append(idx.keys, key)
		}
	}
	sort.Strings(idx.keys)
	return idx
}

func (idx *identityIndex) exact(name string) (string, bool) {
	v := player.IndexVariations(name)
	for _, key := range v.Full {
		if id, ok := idx.full[key]; ok {
			return id, true
		}
	}
	for _, key := range v.Full {
		if id, ok := idx.partial[key]; ok {
			return id, true
		}
	}
	return "", false
}

// fuzzy scans index keys in sorted order for substring containment either
// way, preferring a candidate on the same team.
func (idx *identityIndex) fuzzy(key, teamAbbr string) (string, bool) {
	if len(key) < minFuzzyKeyLen {
		return "", false
	}
	first := ""
	for _, candidate := range idx.keys {
		if !strings.Contains(candidate, key) && !strings.Contains(key, candidate) {
			continue
		}
		id := idx.full[candidate]
		if teamAbbr != team.Unknown && idx.teams[id] == teamAbbr {
			return id, true
		}
		if first == "" {
			first = id
		}
	}
	return first, first != ""
}
