package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/propline/internal/domain/team"
	"github.com/riskibarqy/propline/internal/infrastructure/repository/memory"
)

// BootstrapSeed fills empty registry tables from the built-in team tables, the
// sample player registry and the default prop type aliases. Tables that
// already hold rows are left alone.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, leagues []string) error {
	empty, err := tableIsEmpty(ctx, db, "teams")
	if err != nil {
		return err
	}
	if empty {
		var teams []team.Team
		for _, league := range leagues {
			teams = append(teams, team.StaticTeams(league)...)
		}
		if err := NewTeamRepository(db).UpsertMany(ctx, teams); err != nil {
			return fmt.Errorf("seed teams: %w", err)
		}
	}

	empty, err = tableIsEmpty(ctx, db, "players")
	if err != nil {
		return err
	}
	if empty {
		if err := NewPlayerRepository(db).UpsertMany(ctx, memory.SeedPlayers()); err != nil {
			return fmt.Errorf("seed players: %w", err)
		}
	}

	empty, err = tableIsEmpty(ctx, db, "prop_type_aliases")
	if err != nil {
		return err
	}
	if empty {
		if err := NewPropTypeAliasRepository(db).UpsertMany(ctx, memory.SeedPropTypeAliases()); err != nil {
			return fmt.Errorf("seed prop type aliases: %w", err)
		}
	}
	return nil
}

func tableIsEmpty(ctx context.Context, db *sqlx.DB, table string) (bool, error) {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM `+table); err != nil {
		return false, fmt.Errorf("count %s for bootstrap seed: %w", table, err)
	}
	return count == 0, nil
}
