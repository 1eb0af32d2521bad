package postgres

import (
	"time"

	"github.com/lib/pq"
)

type playerTableModel struct {
	ID        string         `db:"id"`
	League    string         `db:"league"`
	Name      string         `db:"name"`
	Team      string         `db:"team"`
	Position  string         `db:"position"`
	Aliases   pq.StringArray `db:"aliases"`
	UpdatedAt time.Time      `db:"updated_at"`
}

type playerUpsertModel struct {
	ID        string    `db:"id"`
	League    string    `db:"league"`
	Name      string    `db:"name"`
	Team      string    `db:"team"`
	Position  string    `db:"position"`
	Aliases   any       `db:"aliases"`
	UpdatedAt time.Time `db:"updated_at"`
}

type missingPlayerUpsertModel struct {
	League         string    `db:"league"`
	NormalizedName string    `db:"normalized_name"`
	Name           string    `db:"name"`
	Team           string    `db:"team"`
	GeneratedID    string    `db:"generated_id"`
	SampleSource   string    `db:"sample_source"`
	RunID          string    `db:"run_id"`
	FirstSeenAt    time.Time `db:"first_seen_at,keep"`
	LastSeenAt     time.Time `db:"last_seen_at"`
}
