package history

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"horse.fit/uebersetzer/internal/db"
	"horse.fit/uebersetzer/internal/translation"
)

const writeTimeout = 5 * time.Second

var _ translation.Recorder = (*Recorder)(nil)

// Store is the subset of db.Pool the recorder needs.
type Store interface {
	InsertHistory(ctx context.Context, row db.InsertHistoryParams) (string, error)
	ListHistory(ctx context.Context, opts db.HistoryListOptions) ([]db.HistoryItem, error)
}

// Recorder persists settled translation calls. It implements
// translation.Recorder.
type Recorder struct {
	store  Store
	logger zerolog.Logger
}

func NewRecorder(store Store, logger zerolog.Logger) *Recorder {
	return &Recorder{store: store, logger: logger}
}

// Record writes entry. The write outlives a cancelled request context so a
// client hanging up does not drop the record.
func (r *Recorder) Record(ctx context.Context, entry translation.Record) error {
	if r == nil || r.store == nil {
		return fmt.Errorf("history store is not configured")
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	recordUUID, err := r.store.InsertHistory(writeCtx, db.InsertHistoryParams{
		SourceLang:     entry.SourceLang,
		TargetLang:     entry.TargetLang,
		OriginalText:   entry.OriginalText,
		TranslatedText: entry.TranslatedText,
		Backend:        entry.Backend,
		Mode:           entry.Mode,
		ErrorMessage:   entry.ErrorMessage,
		LatencyMS:      entry.LatencyMS,
	})
	if err != nil {
		return fmt.Errorf("record translation: %w", err)
	}

	r.logger.Debug().
		Str("record_uuid", recordUUID).
		Str("backend", entry.Backend).
		Int64("latency_ms", entry.LatencyMS).
		Msg("translation recorded")
	return nil
}

// List returns recent records, newest first.
func (r *Recorder) List(ctx context.Context, opts db.HistoryListOptions) ([]db.HistoryItem, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("history store is not configured")
	}
	return r.store.ListHistory(ctx, opts)
}
