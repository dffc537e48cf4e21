package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// GetJournalSummary returns the summary row for an entry, or nil when absent.
func (d *DB) GetJournalSummary(ctx context.Context, entryID int32) (*store.JournalSummary, error) {
	query := `SELECT id, entry_id, summary, insights, sentiment, status, error_message, created_ts, updated_ts
		FROM journal_summary
		WHERE entry_id = $1`

	var summary store.JournalSummary
	var insightsRaw []byte
	err := d.db.QueryRowContext(ctx, query, entryID).Scan(
		&summary.ID,
		&summary.EntryID,
		&summary.Summary,
		&insightsRaw,
		&summary.Sentiment,
		&summary.Status,
		&summary.ErrorMessage,
		&summary.CreatedTs,
		&summary.UpdatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get journal summary")
	}
	if summary.Insights, err = unmarshalStringList(insightsRaw); err != nil {
		return nil, err
	}
	return &summary, nil
}

// UpsertJournalSummary inserts or updates an entry summary.
func (d *DB) UpsertJournalSummary(ctx context.Context, upsert *store.UpsertJournalSummary) (*store.JournalSummary, error) {
	insights, err := marshalStringList(upsert.Insights)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO journal_summary (entry_id, summary, insights, sentiment, status, error_message, updated_ts)
		VALUES ($1, $2, $3, $4, $5, $6, EXTRACT(EPOCH FROM NOW())::BIGINT)
		ON CONFLICT (entry_id)
		DO UPDATE SET
			summary = EXCLUDED.summary,
			insights = EXCLUDED.insights,
			sentiment = EXCLUDED.sentiment,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`

	summary := &store.JournalSummary{
		EntryID:      upsert.EntryID,
		Summary:      upsert.Summary,
		Insights:     upsert.Insights,
		Sentiment:    upsert.Sentiment,
		Status:       upsert.Status,
		ErrorMessage: upsert.ErrorMessage,
	}
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.EntryID,
		upsert.Summary,
		insights,
		upsert.Sentiment,
		upsert.Status,
		upsert.ErrorMessage,
	).Scan(&summary.ID, &summary.CreatedTs, &summary.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to upsert journal summary")
	}
	return summary, nil
}

// DeleteJournalSummary deletes an entry summary. Idempotent.
func (d *DB) DeleteJournalSummary(ctx context.Context, entryID int32) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM journal_summary WHERE entry_id = $1`, entryID); err != nil {
		return errors.Wrap(err, "failed to delete journal summary")
	}
	return nil
}
