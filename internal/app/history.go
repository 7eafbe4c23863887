package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"horse.fit/uebersetzer/internal/cli"
	"horse.fit/uebersetzer/internal/db"
	"horse.fit/uebersetzer/internal/globaltime"
	"horse.fit/uebersetzer/internal/language"
)

func runHistory(args []string) int {
	if len(args) == 0 {
		printHistoryUsage()
		return 2
	}

	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "list":
		return runHistoryList(args[1:])
	case "stats":
		return runHistoryStats(args[1:])
	case "prune":
		return runHistoryPrune(args[1:])
	case "help", "--help", "-h":
		printHistoryUsage()
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n\n", args[0])
		printHistoryUsage()
		return 2
	}
}

func runHistoryList(args []string) int {
	fs := flag.NewFlagSet("history list", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	limit := fs.Int("limit", 20, "Maximum records to return")
	sourceLang := fs.String("from", "", "Only records with this source language")
	targetLang := fs.String("to", "", "Only records with this target language")
	backend := fs.String("backend", "", "Only records produced by this backend")
	failedOnly := fs.Bool("failed", false, "Only calls where every backend failed")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if *limit <= 0 {
		fmt.Fprintln(os.Stderr, "--limit must be > 0")
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{requireHistory: true, dbTimeout: *timeout})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	items, err := rt.recorder.List(ctx, db.HistoryListOptions{
		Limit:      *limit,
		SourceLang: language.NormalizeCode(*sourceLang),
		TargetLang: language.NormalizeCode(*targetLang),
		Backend:    strings.ToLower(strings.TrimSpace(*backend)),
		FailedOnly: *failedOnly,
	})
	if err != nil {
		rt.logger.Error().Err(err).Msg("history list failed")
		fmt.Fprintf(os.Stderr, "Failed to query history: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(map[string]any{"items": items}); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		backendName := pointerStringOrEmpty(item.Backend)
		if backendName == "" {
			backendName = "-"
		}
		rows = append(rows, []string{
			formatUTCTimestamp(item.CreatedAt),
			item.SourceLang + "→" + item.TargetLang,
			backendName,
			strconv.FormatInt(item.LatencyMS, 10),
			truncateForTable(item.OriginalText, 40),
			truncateForTable(firstNonEmpty(item.TranslatedText, pointerStringOrEmpty(item.ErrorMessage)), 40),
		})
	}
	if err := writeTable([]string{"CREATED_AT", "PAIR", "BACKEND", "MS", "ORIGINAL", "RESULT"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

func runHistoryStats(args []string) int {
	fs := flag.NewFlagSet("history stats", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	dayRaw := fs.String("day", defaultUTCDayString(), "UTC day (YYYY-MM-DD)")
	format := fs.String("format", outputFormatTable, "Output format: table or json")
	timeout := fs.Duration("timeout", 30*time.Second, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	outputFormat, err := parseOutputFormat(*format, outputFormatTable)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}
	day, err := parseUTCDate(*dayRaw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid --day: %v\n", err)
		return 2
	}
	dayStart, dayEnd := utcDayBounds(day)

	rt, err := loadRuntime(envLoader, runtimeOptions{requireHistory: true, dbTimeout: *timeout})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	stats, err := rt.pool.QueryHistoryStats(ctx, dayStart, dayEnd)
	if err != nil {
		rt.logger.Error().Err(err).Msg("history stats failed")
		fmt.Fprintf(os.Stderr, "Failed to query history stats: %v\n", err)
		return 1
	}

	if outputFormat == outputFormatJSON {
		if err := printJSON(stats); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode JSON output: %v\n", err)
			return 1
		}
		return 0
	}

	fmt.Fprintf(os.Stdout, "day: %s\n", stats.Day)
	fmt.Fprintf(os.Stdout, "calls: %d (succeeded %d, failed %d)\n\n", stats.Totals.Calls, stats.Totals.Succeeded, stats.Totals.Failed)

	rows := make([][]string, 0, len(stats.Backends))
	for _, row := range stats.Backends {
		rows = append(rows, []string{
			row.Backend,
			strconv.FormatInt(row.Calls, 10),
			strconv.FormatInt(row.AvgLatencyMS, 10),
		})
	}
	if err := writeTable([]string{"BACKEND", "CALLS", "AVG_MS"}, rows); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to render table: %v\n", err)
		return 1
	}
	return 0
}

func runHistoryPrune(args []string) int {
	fs := flag.NewFlagSet("history prune", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	envLoader := cli.AddEnvFlag(fs, ".env", "Path to the .env file")
	olderThan := fs.Duration("older-than", 0, "Delete records older than this duration (for example: 720h)")
	beforeRaw := fs.String("before", "", "Delete records created before this UTC day (YYYY-MM-DD)")
	timeout := fs.Duration("timeout", 2*time.Minute, "Command timeout")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	cutoff, err := resolvePruneCutoff(*olderThan, *beforeRaw, globaltime.UTC())
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 2
	}

	rt, err := loadRuntime(envLoader, runtimeOptions{requireHistory: true, dbTimeout: *timeout})
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	deleted, err := rt.pool.DeleteHistoryBefore(ctx, cutoff)
	if err != nil {
		rt.logger.Error().Err(err).Time("cutoff", cutoff).Msg("history prune failed")
		fmt.Fprintf(os.Stderr, "Failed to prune history: %v\n", err)
		return 1
	}

	rt.logger.Info().Time("cutoff", cutoff).Int64("deleted", deleted).Msg("history pruned")
	fmt.Fprintf(os.Stdout, "deleted %d record(s) created before %s\n", deleted, formatUTCTimestamp(cutoff))
	return 0
}

// resolvePruneCutoff requires exactly one of olderThan and beforeRaw.
func resolvePruneCutoff(olderThan time.Duration, beforeRaw string, now time.Time) (time.Time, error) {
	hasBefore := strings.TrimSpace(beforeRaw) != ""
	switch {
	case olderThan > 0 && hasBefore:
		return time.Time{}, fmt.Errorf("use either --older-than or --before, not both")
	case olderThan > 0:
		return now.UTC().Add(-olderThan), nil
	case hasBefore:
		day, err := parseUTCDate(beforeRaw)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid --before: %w", err)
		}
		return day, nil
	case olderThan < 0:
		return time.Time{}, fmt.Errorf("--older-than must be > 0")
	default:
		return time.Time{}, fmt.Errorf("history prune requires --older-than or --before")
	}
}

func printHistoryUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  translator history list [flags]")
	fmt.Fprintln(os.Stderr, "  translator history stats [flags]")
	fmt.Fprintln(os.Stderr, "  translator history prune (--older-than <duration> | --before <YYYY-MM-DD>)")
}
