package memory

import (
	"context"
	"sync"
)

// PropTypeAliasRepository serves a fixed alias table.
type PropTypeAliasRepository struct {
	mu      sync.RWMutex
	aliases map[string]string
}

func NewPropTypeAliasRepository(aliases map[string]string) *PropTypeAliasRepository {
	cp := make(map[string]string, len(aliases))
	for k, v := range aliases {
		cp[k] = v
	}
	return &PropTypeAliasRepository{aliases: cp}
}

func (r *PropTypeAliasRepository) ListAliases(_ context.Context) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]string, len(r.aliases))
	for k, v := range r.aliases {
		out[k] = v
	}
	return out, nil
}

func (r *PropTypeAliasRepository) Set(raw, target string) {
	r.mu.Lock()
	r.aliases[raw] = target
	r.mu.Unlock()
}
