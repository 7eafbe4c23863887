package history

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"horse.fit/uebersetzer/internal/db"
	"horse.fit/uebersetzer/internal/translation"
)

type stubStore struct {
	inserted  []db.InsertHistoryParams
	ctxErr    error
	insertErr error
	listOpts  db.HistoryListOptions
	items     []db.HistoryItem
}

func (s *stubStore) InsertHistory(ctx context.Context, row db.InsertHistoryParams) (string, error) {
	s.ctxErr = ctx.Err()
	if s.insertErr != nil {
		return "", s.insertErr
	}
	s.inserted = append(s.inserted, row)
	return "5f0c7d3e-8a51-4c55-9f0a-6c3b7f0e2a11", nil
}

func (s *stubStore) ListHistory(_ context.Context, opts db.HistoryListOptions) ([]db.HistoryItem, error) {
	s.listOpts = opts
	return s.items, nil
}

func TestRecorderRecord(t *testing.T) {
	t.Parallel()

	store := &stubStore{}
	recorder := NewRecorder(store, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := recorder.Record(ctx, translation.Record{
		SourceLang:     "de",
		TargetLang:     "en",
		OriginalText:   "Hallo",
		TranslatedText: "Hello",
		Backend:        translation.BackendLibreTranslate,
		Mode:           translation.ModeFallback,
		LatencyMS:      42,
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if store.ctxErr != nil {
		t.Fatalf("expected write context to survive cancellation, got %v", store.ctxErr)
	}
	if len(store.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(store.inserted))
	}
	row := store.inserted[0]
	if row.SourceLang != "de" || row.TargetLang != "en" || row.Backend != "libretranslate" || row.LatencyMS != 42 {
		t.Fatalf("unexpected row: %+v", row)
	}
}

func TestRecorderRecordError(t *testing.T) {
	t.Parallel()

	recorder := NewRecorder(&stubStore{insertErr: errors.New("connection refused")}, zerolog.Nop())
	err := recorder.Record(context.Background(), translation.Record{SourceLang: "de", TargetLang: "en", Mode: "native"})
	if err == nil || !strings.Contains(err.Error(), "connection refused") {
		t.Fatalf("expected wrapped store error, got %v", err)
	}

	var unset *Recorder
	if err := unset.Record(context.Background(), translation.Record{}); err == nil {
		t.Fatalf("expected error for nil recorder")
	}
}

func TestRecorderList(t *testing.T) {
	t.Parallel()

	store := &stubStore{items: []db.HistoryItem{{RecordUUID: "a"}, {RecordUUID: "b"}}}
	recorder := NewRecorder(store, zerolog.Nop())

	items, err := recorder.List(context.Background(), db.HistoryListOptions{Limit: 2, FailedOnly: true})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(items) != 2 || store.listOpts.Limit != 2 || !store.listOpts.FailedOnly {
		t.Fatalf("unexpected list result %+v opts %+v", items, store.listOpts)
	}
}
