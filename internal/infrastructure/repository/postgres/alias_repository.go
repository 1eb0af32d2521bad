package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	qb "github.com/riskibarqy/propline/internal/platform/querybuilder"
)

type propTypeAliasRow struct {
	RawValue string `db:"raw_value"`
	PropType string `db:"prop_type"`
}

type propTypeAliasUpsertModel struct {
	RawValue string `db:"raw_value"`
	PropType string `db:"prop_type"`
}

type PropTypeAliasRepository struct {
	db *sqlx.DB
}

func NewPropTypeAliasRepository(db *sqlx.DB) *PropTypeAliasRepository {
	return &PropTypeAliasRepository{db: db}
}

func (r *PropTypeAliasRepository) ListAliases(ctx context.Context) (map[string]string, error) {
	query, args, err := qb.Select("raw_value", "prop_type").From("prop_type_aliases").
		OrderBy("raw_value").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list prop type aliases query: %w", err)
	}

	var rows []propTypeAliasRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list prop type aliases: %w", err)
	}

	out := make(map[string]string, len(rows))
	for _, row := range rows {
		out[row.RawValue] = row.PropType
	}
	return out, nil
}

func (r *PropTypeAliasRepository) UpsertMany(ctx context.Context, aliases map[string]string) error {
	if len(aliases) == 0 {
		return nil
	}

	models := make([]propTypeAliasUpsertModel, 0, len(aliases))
	for raw, target := range aliases {
		raw = strings.TrimSpace(raw)
		target = strings.TrimSpace(target)
		if raw == "" || target == "" {
			continue
		}
		models = append(models, propTypeAliasUpsertModel{RawValue: raw, PropType: target})
	}
	if len(models) == 0 {
		return nil
	}

	query, args, err := qb.UpsertModels("prop_type_aliases", models, "raw_value")
	if err != nil {
		return fmt.Errorf("build upsert prop type aliases query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert prop type aliases: %w", err)
	}
	return nil
}
