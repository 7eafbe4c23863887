package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"horse.fit/uebersetzer/internal/globaltime"
)

// InsertHistoryParams is one settled translation call.
type InsertHistoryParams struct {
	SourceLang     string
	TargetLang     string
	OriginalText   string
	TranslatedText string
	Backend        string
	Mode           string
	ErrorMessage   string
	LatencyMS      int64
	CreatedAt      time.Time
}

// HistoryListOptions filters history listings.
type HistoryListOptions struct {
	Limit      int
	SourceLang string
	TargetLang string
	Backend    string
	FailedOnly bool
}

// HistoryItem is one row of translator.translation_history.
type HistoryItem struct {
	RecordUUID     string    `json:"record_uuid"`
	SourceLang     string    `json:"source_lang"`
	TargetLang     string    `json:"target_lang"`
	OriginalText   string    `json:"original_text"`
	TranslatedText string    `json:"translated_text"`
	Backend        *string   `json:"backend,omitempty"`
	Mode           string    `json:"mode"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	LatencyMS      int64     `json:"latency_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// prepareHistoryRow validates params and fills the record UUID and the
// creation time, which defaults to now.
func prepareHistoryRow(row InsertHistoryParams) (TranslationRecord, error) {
	sourceLang := strings.TrimSpace(row.SourceLang)
	targetLang := strings.TrimSpace(row.TargetLang)
	if sourceLang == "" || targetLang == "" {
		return TranslationRecord{}, fmt.Errorf("source and target language are required")
	}
	mode := strings.TrimSpace(row.Mode)
	if mode == "" {
		return TranslationRecord{}, fmt.Errorf("mode is required")
	}
	createdAt := row.CreatedAt
	if createdAt.IsZero() {
		createdAt = globaltime.Now()
	}

	return TranslationRecord{
		RecordUUID:     uuid.NewString(),
		SourceLang:     sourceLang,
		TargetLang:     targetLang,
		OriginalText:   row.OriginalText,
		TranslatedText: row.TranslatedText,
		Backend:        optionalString(row.Backend),
		Mode:           mode,
		ErrorMessage:   optionalString(row.ErrorMessage),
		LatencyMS:      max(row.LatencyMS, 0),
		CreatedAt:      createdAt.UTC(),
	}, nil
}

// InsertHistory stores one record and returns its UUID.
func (p *Pool) InsertHistory(ctx context.Context, params InsertHistoryParams) (string, error) {
	record, err := prepareHistoryRow(params)
	if err != nil {
		return "", err
	}

	const q = `
INSERT INTO translator.translation_history (
	record_uuid,
	source_lang,
	target_lang,
	original_text,
	translated_text,
	backend,
	mode,
	error_message,
	latency_ms,
	created_at
)
VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`
	if _, err := p.Exec(
		ctx,
		q,
		record.RecordUUID,
		record.SourceLang,
		record.TargetLang,
		record.OriginalText,
		record.TranslatedText,
		record.Backend,
		record.Mode,
		record.ErrorMessage,
		record.LatencyMS,
		record.CreatedAt,
	); err != nil {
		return "", fmt.Errorf("insert translation history: %w", err)
	}
	return record.RecordUUID, nil
}

func optionalString(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListHistory returns the newest records first.
func (p *Pool) ListHistory(ctx context.Context, opts HistoryListOptions) ([]HistoryItem, error) {
	const q = `
SELECT
	h.record_uuid::text,
	h.source_lang,
	h.target_lang,
	h.original_text,
	h.translated_text,
	h.backend,
	h.mode,
	h.error_message,
	h.latency_ms,
	h.created_at
FROM translator.translation_history h
WHERE ($1 = '' OR h.source_lang = $1)
  AND ($2 = '' OR h.target_lang = $2)
  AND ($3 = '' OR h.backend = $3)
  AND (NOT $4 OR h.error_message IS NOT NULL)
ORDER BY h.created_at DESC, h.history_id DESC
LIMIT $5
`

	rows, err := p.Query(
		ctx,
		q,
		strings.ToLower(strings.TrimSpace(opts.SourceLang)),
		strings.ToLower(strings.TrimSpace(opts.TargetLang)),
		strings.ToLower(strings.TrimSpace(opts.Backend)),
		opts.FailedOnly,
		normalizeHistoryLimit(opts.Limit),
	)
	if err != nil {
		return nil, fmt.Errorf("query translation history: %w", err)
	}
	defer rows.Close()

	items := make([]HistoryItem, 0, 32)
	for rows.Next() {
		var item HistoryItem
		if err := rows.Scan(
			&item.RecordUUID,
			&item.SourceLang,
			&item.TargetLang,
			&item.OriginalText,
			&item.TranslatedText,
			&item.Backend,
			&item.Mode,
			&item.ErrorMessage,
			&item.LatencyMS,
			&item.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan translation history row: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate translation history rows: %w", err)
	}
	return items, nil
}

// DeleteHistoryBefore removes records created before the cutoff.
func (p *Pool) DeleteHistoryBefore(ctx context.Context, before time.Time) (int64, error) {
	if before.IsZero() {
		return 0, fmt.Errorf("cutoff time is required")
	}

	const q = `
DELETE FROM translator.translation_history
WHERE created_at < $1
`
	var deleted int64
	err := p.withTx(ctx, func(tx Tx) error {
		tag, err := tx.Exec(ctx, q, before.UTC())
		if err != nil {
			return fmt.Errorf("delete translation history: %w", err)
		}
		deleted = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}

func normalizeHistoryLimit(limit int) int {
	if limit <= 0 {
		return defaultHistoryLimit
	}
	return min(limit, maxHistoryLimit)
}
