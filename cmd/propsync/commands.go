package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/riskibarqy/propline/internal/app"
	"github.com/riskibarqy/propline/internal/usecase"
)

const dateLayout = "2006-01-02"

var errHelp = errors.New("help requested")

type command struct {
	name  string
	usage string
	parse func(args []string, today time.Time) (any, error)
	run   func(ctx context.Context, rt *app.Runtime, input any) (any, error)
}

type aliasReport struct {
	Aliases int `json:"aliases"`
}

var commands = []command{
	{
		name:  "ingest",
		usage: "ingest -date YYYY-MM-DD [-leagues nfl,nba] [-aggressive] [-dry-run]",
		parse: func(args []string, today time.Time) (any, error) { return parseIngest(args, today) },
		run: func(ctx context.Context, rt *app.Runtime, input any) (any, error) {
			return rt.Ingestion.Ingest(ctx, input.(usecase.IngestInput))
		},
	},
	{
		name:  "settle",
		usage: "settle -date YYYY-MM-DD [-leagues nfl,nba]",
		parse: func(args []string, today time.Time) (any, error) { return parseSettle(args, today) },
		run: func(ctx context.Context, rt *app.Runtime, input any) (any, error) {
			return rt.Settlement.Settle(ctx, input.(usecase.SettleInput))
		},
	},
	{
		name:  "backfill",
		usage: "backfill -from YYYY-MM-DD -to YYYY-MM-DD [-leagues nfl,nba] [-workers N]",
		parse: func(args []string, _ time.Time) (any, error) { return parseBackfill(args) },
		run: func(ctx context.Context, rt *app.Runtime, input any) (any, error) {
			return rt.Settlement.Backfill(ctx, input.(usecase.BackfillInput))
		},
	},
	{
		name:  "analytics",
		usage: "analytics -date YYYY-MM-DD [-leagues nfl,nba]",
		parse: func(args []string, today time.Time) (any, error) { return parseAnalytics(args, today) },
		run: func(ctx context.Context, rt *app.Runtime, input any) (any, error) {
			return rt.Analytics.Compute(ctx, input.(usecase.AnalyticsInput))
		},
	},
	{
		name:  "run",
		usage: "run -date YYYY-MM-DD [-leagues nfl,nba] [-aggressive]",
		parse: func(args []string, today time.Time) (any, error) { return parsePipeline(args, today) },
		run: func(ctx context.Context, rt *app.Runtime, input any) (any, error) {
			return rt.Pipeline.Run(ctx, input.(usecase.PipelineInput))
		},
	},
	{
		name:  "refresh-aliases",
		usage: "refresh-aliases",
		parse: func(args []string, _ time.Time) (any, error) {
			fs := newFlagSet("refresh-aliases")
			if err := parseFlags(fs, args); err != nil {
				return nil, err
			}
			return nil, nil
		},
		run: func(ctx context.Context, rt *app.Runtime, _ any) (any, error) {
			n, err := rt.PropTypes.Refresh(ctx)
			if err != nil {
				return nil, err
			}
			return aliasReport{Aliases: n}, nil
		},
	},
}

func lookupCommand(name string) (command, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: propsync <command> [flags]")
	fmt.Fprintln(w, "commands:")
	for _, c := range commands {
		fmt.Fprintf(w, "  %s\n", c.usage)
	}
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	return nil
}

func parseIngest(args []string, today time.Time) (usecase.IngestInput, error) {
	fs := newFlagSet("ingest")
	date := fs.String("date", today.Format(dateLayout), "game date")
	leagues := fs.String("leagues", "", "comma separated leagues")
	aggressive := fs.Bool("aggressive", false, "walk every fetch tier even after one returns events")
	dryRun := fs.Bool("dry-run", false, "extract without writing")
	if err := parseFlags(fs, args); err != nil {
		return usecase.IngestInput{}, err
	}

	day, err := parseDate("date", *date)
	if err != nil {
		return usecase.IngestInput{}, err
	}
	return usecase.IngestInput{
		Date:       day,
		Leagues:    splitLeagues(*leagues),
		Aggressive: *aggressive,
		DryRun:     *dryRun,
	}, nil
}

func parseSettle(args []string, today time.Time) (usecase.SettleInput, error) {
	fs := newFlagSet("settle")
	date := fs.String("date", today.AddDate(0, 0, -1).Format(dateLayout), "game date to settle")
	leagues := fs.String("leagues", "", "comma separated leagues")
	if err := parseFlags(fs, args); err != nil {
		return usecase.SettleInput{}, err
	}

	day, err := parseDate("date", *date)
	if err != nil {
		return usecase.SettleInput{}, err
	}
	return usecase.SettleInput{Date: day, Leagues: splitLeagues(*leagues)}, nil
}

func parseBackfill(args []string) (usecase.BackfillInput, error) {
	fs := newFlagSet("backfill")
	from := fs.String("from", "", "first game date")
	to := fs.String("to", "", "last game date")
	leagues := fs.String("leagues", "", "comma separated leagues")
	workers := fs.Int("workers", 0, "concurrent dates, defaults to BACKFILL_MAX_WORKERS")
	if err := parseFlags(fs, args); err != nil {
		return usecase.BackfillInput{}, err
	}

	fromDay, err := parseDate("from", *from)
	if err != nil {
		return usecase.BackfillInput{}, err
	}
	toDay, err := parseDate("to", *to)
	if err != nil {
		return usecase.BackfillInput{}, err
	}
	if toDay.Before(fromDay) {
		return usecase.BackfillInput{}, fmt.Errorf("-to must not be before -from")
	}
	if *workers < 0 {
		return usecase.BackfillInput{}, fmt.Errorf("-workers must be >= 0")
	}
	return usecase.BackfillInput{
		From:       fromDay,
		To:         toDay,
		Leagues:    splitLeagues(*leagues),
		MaxWorkers: *workers,
	}, nil
}

func parseAnalytics(args []string, today time.Time) (usecase.AnalyticsInput, error) {
	fs := newFlagSet("analytics")
	date := fs.String("date", today.Format(dateLayout), "game date")
	leagues := fs.String("leagues", "", "comma separated leagues")
	if err := parseFlags(fs, args); err != nil {
		return usecase.AnalyticsInput{}, err
	}

	day, err := parseDate("date", *date)
	if err != nil {
		return usecase.AnalyticsInput{}, err
	}
	return usecase.AnalyticsInput{Date: day, Leagues: splitLeagues(*leagues)}, nil
}

func parsePipeline(args []string, today time.Time) (usecase.PipelineInput, error) {
	fs := newFlagSet("run")
	date := fs.String("date", today.Format(dateLayout), "game date")
	leagues := fs.String("leagues", "", "comma separated leagues")
	aggressive := fs.Bool("aggressive", false, "walk every fetch tier even after one returns events")
	if err := parseFlags(fs, args); err != nil {
		return usecase.PipelineInput{}, err
	}

	day, err := parseDate("date", *date)
	if err != nil {
		return usecase.PipelineInput{}, err
	}
	return usecase.PipelineInput{Date: day, Leagues: splitLeagues(*leagues), Aggressive: *aggressive}, nil
}

func parseDate(name, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("-%s is required", name)
	}
	day, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse -%s: %w", name, err)
	}
	return day, nil
}

func splitLeagues(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if v := strings.ToLower(strings.TrimSpace(part)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
