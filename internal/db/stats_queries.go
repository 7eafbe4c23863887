package db

import (
	"context"
	"fmt"
	"time"
)

// BackendCount stores per-backend call counts for one window.
type BackendCount struct {
	Backend      string `json:"backend"`
	Calls        int64  `json:"calls"`
	AvgLatencyMS int64  `json:"avg_latency_ms"`
}

// HistoryTotals stores totals for one window.
type HistoryTotals struct {
	Calls     int64 `json:"calls"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
}

// HistoryStats is the read model returned by the history stats command.
type HistoryStats struct {
	Day      string         `json:"day"`
	Backends []BackendCount `json:"backends"`
	Totals   HistoryTotals  `json:"totals"`
}

// QueryHistoryStats returns per-backend counts and totals for [dayStart, dayEnd).
// Calls that exhausted every backend are grouped under "none".
func (p *Pool) QueryHistoryStats(ctx context.Context, dayStart, dayEnd time.Time) (*HistoryStats, error) {
	startUTC := dayStart.UTC()
	endUTC := dayEnd.UTC()
	if !startUTC.Before(endUTC) {
		return nil, fmt.Errorf("dayStart must be before dayEnd")
	}

	stats := &HistoryStats{
		Day:      startUTC.Format("2006-01-02"),
		Backends: make([]BackendCount, 0, 8),
	}

	const countsQuery = `
SELECT
	COALESCE(h.backend, 'none') AS backend,
	COUNT(*)::BIGINT AS calls,
	COALESCE(AVG(h.latency_ms), 0)::BIGINT AS avg_latency_ms
FROM translator.translation_history h
WHERE h.created_at >= $1
  AND h.created_at < $2
GROUP BY COALESCE(h.backend, 'none')
ORDER BY calls DESC, backend ASC
`

	rows, err := p.Query(ctx, countsQuery, startUTC, endUTC)
	if err != nil {
		return nil, fmt.Errorf("query backend counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var row BackendCount
		if err := rows.Scan(&row.Backend, &row.Calls, &row.AvgLatencyMS); err != nil {
			return nil, fmt.Errorf("scan backend count row: %w", err)
		}
		stats.Backends = append(stats.Backends, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate backend count rows: %w", err)
	}

	const totalsQuery = `
SELECT
	COUNT(*)::BIGINT AS calls,
	COUNT(*) FILTER (WHERE h.error_message IS NULL)::BIGINT AS succeeded,
	COUNT(*) FILTER (WHERE h.error_message IS NOT NULL)::BIGINT AS failed
FROM translator.translation_history h
WHERE h.created_at >= $1
  AND h.created_at < $2
`
	if err := p.QueryRow(ctx, totalsQuery, startUTC, endUTC).Scan(
		&stats.Totals.Calls,
		&stats.Totals.Succeeded,
		&stats.Totals.Failed,
	); err != nil {
		return nil, fmt.Errorf("query history totals: %w", err)
	}

	return stats, nil
}
