package postgres

import (
	"time"

	"github.com/lib/pq"
)

type teamTableModel struct {
	League       string         `db:"league"`
	Abbreviation string         `db:"abbreviation"`
	Name         string         `db:"name"`
	Aliases      pq.StringArray `db:"aliases"`
	LogoURL      string         `db:"logo_url"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

type teamUpsertModel struct {
	League       string    `db:"league"`
	Abbreviation string    `db:"abbreviation"`
	Name         string    `db:"name"`
	Aliases      any       `db:"aliases"`
	LogoURL      string    `db:"logo_url"`
	UpdatedAt    time.Time `db:"updated_at"`
}
