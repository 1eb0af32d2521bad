package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riskibarqy/propline/internal/usecase"
)

var today = time.Date(2025, 9, 8, 10, 30, 0, 0, time.UTC)

func TestParseIngest(t *testing.T) {
	t.Parallel()

	got, err := parseIngest([]string{"-date", "2025-09-07", "-leagues", "NFL, nba", "-aggressive", "-dry-run"}, today)
	if err != nil {
		t.Fatalf("parse ingest: %v", err)
	}
	want := time.Date(2025, 9, 7, 0, 0, 0, 0, time.UTC)
	if !got.Date.Equal(want) || !got.Aggressive || !got.DryRun {
		t.Fatalf("unexpected ingest input: %+v", got)
	}
	if len(got.Leagues) != 2 || got.Leagues[0] != "nfl" || got.Leagues[1] != "nba" {
		t.Fatalf("unexpected leagues: %v", got.Leagues)
	}
}

func TestParseIngest_DefaultsToToday(t *testing.T) {
	t.Parallel()

	got, err := parseIngest(nil, today)
	if err != nil {
		t.Fatalf("parse ingest: %v", err)
	}
	if got.Date.Format(dateLayout) != "2025-09-08" || got.Leagues != nil {
		t.Fatalf("unexpected defaults: %+v", got)
	}
}

func TestParseSettle_DefaultsToYesterday(t *testing.T) {
	t.Parallel()

	got, err := parseSettle(nil, today)
	if err != nil {
		t.Fatalf("parse settle: %v", err)
	}
	if got.Date.Format(dateLayout) != "2025-09-07" {
		t.Fatalf("expected previous day, got=%s", got.Date.Format(dateLayout))
	}
}

func TestParseBackfill(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		args    []string
		wantErr bool
	}{
		{name: "valid range", args: []string{"-from", "2025-09-01", "-to", "2025-09-07", "-workers", "3"}},
		{name: "single day", args: []string{"-from", "2025-09-01", "-to", "2025-09-01"}},
		{name: "missing from", args: []string{"-to", "2025-09-07"}, wantErr: true},
		{name: "reversed", args: []string{"-from", "2025-09-07", "-to", "2025-09-01"}, wantErr: true},
		{name: "negative workers", args: []string{"-from", "2025-09-01", "-to", "2025-09-02", "-workers", "-1"}, wantErr: true},
		{name: "bad date", args: []string{"-from", "09/01/2025", "-to", "2025-09-02"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := parseBackfill(tc.args)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %v", tc.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse backfill: %v", err)
			}
			if got.To.Before(got.From) {
				t.Fatalf("range reversed: %+v", got)
			}
		})
	}
}

func TestParsePipelineAndAnalytics(t *testing.T) {
	t.Parallel()

	pipeline, err := parsePipeline([]string{"-date", "2025-09-07", "-aggressive"}, today)
	if err != nil {
		t.Fatalf("parse run: %v", err)
	}
	if pipeline.Date.Format(dateLayout) != "2025-09-07" || !pipeline.Aggressive {
		t.Fatalf("unexpected pipeline input: %+v", pipeline)
	}

	analytics, err := parseAnalytics([]string{"-leagues", "nba"}, today)
	if err != nil {
		t.Fatalf("parse analytics: %v", err)
	}
	if analytics.Date.Format(dateLayout) != "2025-09-08" || len(analytics.Leagues) != 1 {
		t.Fatalf("unexpected analytics input: %+v", analytics)
	}
}

func TestParseFlags_RejectsStrayArguments(t *testing.T) {
	t.Parallel()

	if _, err := parseSettle([]string{"-date", "2025-09-07", "extra"}, today); err == nil {
		t.Fatalf("expected error for stray argument")
	}
	if _, err := parseAnalytics([]string{"-h"}, today); !errors.Is(err, errHelp) {
		t.Fatalf("expected help error, got %v", err)
	}
}

func TestLookupCommand(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"ingest", "settle", "backfill", "analytics", "run", "Refresh-Aliases"} {
		if _, ok := lookupCommand(name); !ok {
			t.Fatalf("command %q should exist", name)
		}
	}
	if _, ok := lookupCommand("serve"); ok {
		t.Fatalf("unexpected command serve")
	}

	var buf bytes.Buffer
	printUsage(&buf)
	if !strings.Contains(buf.String(), "backfill -from") {
		t.Fatalf("usage should list backfill, got %q", buf.String())
	}
}

func TestWriteReport(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	report := usecase.SettlementReport{RunID: "run-1", From: "2025-09-07", To: "2025-09-07", SuccessCount: 1}
	if err := writeReport(&buf, report); err != nil {
		t.Fatalf("write report: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, `"run_id": "run-1"`) || !strings.Contains(out, `"success_count": 1`) {
		t.Fatalf("unexpected report json: %s", out)
	}
}
