package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/propline/internal/domain/proptype"
	"github.com/riskibarqy/propline/internal/platform/cache"
	"github.com/riskibarqy/propline/internal/platform/logging"
)

const propTypeAliasCacheKey = "aliases"

// PropTypeResolver canonicalizes market labels with the static vocabulary
// plus store-backed aliases. A store failure degrades to the static table.
type PropTypeResolver struct {
	vocab   *proptype.Vocabulary
	aliases proptype.AliasRepository
	cache   *cache.Store[map[string]string]
	logger  *logging.Logger
}

func NewPropTypeResolver(
	vocab *proptype.Vocabulary,
	aliases proptype.AliasRepository,
	ttl time.Duration,
	logger *logging.Logger,
) *PropTypeResolver {
	if vocab == nil {
		vocab = proptype.Default()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PropTypeResolver{
		vocab:   vocab,
		aliases: aliases,
		cache:   cache.NewStore[map[string]string](ttl),
		logger:  logger.Named("prop_type_resolver"),
	}
}

// Resolve is total and idempotent: the result is never empty and resolving
// it again returns it unchanged.
func (r *PropTypeResolver) Resolve(ctx context.Context, raw string) string {
	return r.vocab.Resolve(raw, r.dynamic(ctx))
}

// Refresh reloads the alias table and returns the number of aliases.
func (r *PropTypeResolver) Refresh(ctx context.Context) (int, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PropTypeResolver.Refresh")
	defer span.End()

	if r.aliases == nil {
		return 0, fmt.Errorf("%w: prop type alias repository is not configured", ErrDependencyUnavailable)
	}
	r.cache.Invalidate(propTypeAliasCacheKey)
	aliases, err := r.cache.GetOrLoad(ctx, propTypeAliasCacheKey, r.load)
	if err != nil {
		return 0, fmt.Errorf("%w: load prop type aliases: %v", ErrDependencyUnavailable, err)
	}
	return len(aliases), nil
}

func (r *PropTypeResolver) dynamic(ctx context.Context) map[string]string {
	if r.aliases == nil {
		return nil
	}
	aliases, err := r.cache.GetOrLoad(ctx, propTypeAliasCacheKey, r.load)
	if err != nil {
		r.logger.WarnContext(ctx, "load prop type aliases failed, using static vocabulary", "error", err)
		return nil
	}
	return aliases
}

func (r *PropTypeResolver) load(ctx context.Context) (map[string]string, error) {
	raw, err := r.aliases.ListAliases(ctx)
	if err != nil {
		return nil, err
	}
	closed := r.vocab.CloseAliases(raw)
	r.logger.InfoContext(ctx, "prop type aliases loaded", "raw", len(raw), "closed", len(closed))
	return closed, nil
}
