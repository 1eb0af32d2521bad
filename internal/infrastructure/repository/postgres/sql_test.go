package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	t.Run("matches wrapped no rows", func(t *testing.T) {
		if !isNotFound(fmt.Errorf("get player: %w", sql.ErrNoRows)) {
			t.Fatalf("expected true for wrapped sql.ErrNoRows")
		}
	})

	t.Run("ignores unrelated error", func(t *testing.T) {
		if isNotFound(fakeErr("pq: relation prop_lines does not exist")) {
			t.Fatalf("expected false for unrelated error")
		}
	})
}

func TestGameDate(t *testing.T) {
	got := gameDate(time.Date(2025, 9, 7, 23, 59, 0, 0, time.UTC))
	if got != "2025-09-07" {
		t.Fatalf("unexpected game date: %s", got)
	}
}

func TestNullableConversions(t *testing.T) {
	t.Run("float round trip", func(t *testing.T) {
		v := 265.5
		got := nullFloatPtr(floatPtrToNull(&v))
		if got == nil || *got != 265.5 {
			t.Fatalf("expected 265.5, got %v", got)
		}
		if nullFloatPtr(floatPtrToNull(nil)) != nil {
			t.Fatalf("expected nil for null float")
		}
	})

	t.Run("int round trip", func(t *testing.T) {
		v := -110
		got := nullIntPtr(intPtrToNull(&v))
		if got == nil || *got != -110 {
			t.Fatalf("expected -110, got %v", got)
		}
		if nullIntPtr(sql.NullInt64{}) != nil {
			t.Fatalf("expected nil for null int")
		}
	})
}

func TestLeagueKey(t *testing.T) {
	if got := leagueKey("  NFL "); got != "nfl" {
		t.Fatalf("unexpected league key: %q", got)
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
