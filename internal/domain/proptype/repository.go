package proptype

import "context"

// AliasRepository loads store-backed prop type aliases as raw -> target.
type AliasRepository interface {
	ListAliases(ctx context.Context) (map[string]string, error)
}
