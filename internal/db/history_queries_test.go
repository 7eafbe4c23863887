package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm/logger"

	"horse.fit/uebersetzer/internal/config"
	"horse.fit/uebersetzer/internal/globaltime"
)

func TestNormalizeHistoryLimit(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		-1:   defaultHistoryLimit,
		0:    defaultHistoryLimit,
		10:   10,
		5000: maxHistoryLimit,
	}
	for in, want := range cases {
		if got := normalizeHistoryLimit(in); got != want {
			t.Fatalf("normalizeHistoryLimit(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestNewPoolWithoutDatabaseURL(t *testing.T) {
	t.Parallel()

	_, err := NewPool(context.Background(), &config.Config{})
	if !errors.Is(err, ErrNoDatabaseURL) {
		t.Fatalf("expected ErrNoDatabaseURL, got %v", err)
	}
}

func TestNilPoolIsSafe(t *testing.T) {
	t.Parallel()

	var pool *Pool
	if err := pool.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := pool.Ping(context.Background()); err == nil {
		t.Fatalf("expected error for nil pool")
	}
	if _, err := pool.Exec(context.Background(), "SELECT 1"); err == nil {
		t.Fatalf("expected error for nil pool")
	}
	if err := pool.QueryRow(context.Background(), "SELECT 1").Scan(); !IsNoRows(err) {
		t.Fatalf("expected no rows, got %v", err)
	}
	if _, err := pool.DeleteHistoryBefore(context.Background(), time.Now()); err == nil || !strings.Contains(err.Error(), "not initialized") {
		t.Fatalf("expected uninitialized pool error, got %v", err)
	}
}

func TestResolveGormLogLevel(t *testing.T) {
	t.Parallel()

	if got := resolveGormLogLevel("debug", "production"); got != logger.Info {
		t.Fatalf("expected info level for debug, got %d", got)
	}
	if got := resolveGormLogLevel("silent", "local"); got != logger.Silent {
		t.Fatalf("expected silent level, got %d", got)
	}
}

func TestPrepareHistoryRow_DefaultsCreatedAt(t *testing.T) {
	fixed := time.Date(2026, 10, 16, 9, 30, 0, 0, time.FixedZone("CEST", 2*60*60))
	globaltime.SetMockTime(fixed)
	t.Cleanup(globaltime.ResetTime)

	record, err := prepareHistoryRow(InsertHistoryParams{
		SourceLang:   " de ",
		TargetLang:   "en",
		OriginalText: "Hallo",
		Mode:         "fallback",
		Backend:      "  ",
		ErrorMessage: "Translation failed",
		LatencyMS:    -5,
	})
	if err != nil {
		t.Fatalf("prepareHistoryRow returned error: %v", err)
	}
	if !record.CreatedAt.Equal(fixed) || record.CreatedAt.Location() != time.UTC {
		t.Fatalf("expected created_at %s in UTC, got %s", fixed.UTC(), record.CreatedAt)
	}
	if _, err := uuid.Parse(record.RecordUUID); err != nil {
		t.Fatalf("expected a UUID, got %q: %v", record.RecordUUID, err)
	}
	if record.SourceLang != "de" || record.Backend != nil || record.LatencyMS != 0 {
		t.Fatalf("unexpected record: %+v", record)
	}
	if record.ErrorMessage == nil || *record.ErrorMessage != "Translation failed" {
		t.Fatalf("unexpected error message: %v", record.ErrorMessage)
	}

	explicit := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	record, err = prepareHistoryRow(InsertHistoryParams{SourceLang: "de", TargetLang: "en", Mode: "native", CreatedAt: explicit})
	if err != nil || !record.CreatedAt.Equal(explicit) {
		t.Fatalf("expected explicit created_at, got %s err=%v", record.CreatedAt, err)
	}

	if _, err := prepareHistoryRow(InsertHistoryParams{SourceLang: "de", TargetLang: "en"}); err == nil {
		t.Fatalf("expected missing mode to fail")
	}
}
