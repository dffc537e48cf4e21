package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// GetStreakState returns the streak row for an owner, or nil when absent.
func (d *DB) GetStreakState(ctx context.Context, creatorID int32) (*store.StreakState, error) {
	query := `SELECT creator_id, current_streak, longest_streak, total_entries,
			last_entry_date, streak_start_date, updated_ts
		FROM streak_state
		WHERE creator_id = $1`

	var state store.StreakState
	err := d.db.QueryRowContext(ctx, query, creatorID).Scan(
		&state.CreatorID,
		&state.CurrentStreak,
		&state.LongestStreak,
		&state.TotalEntries,
		&state.LastEntryDate,
		&state.StreakStartDate,
		&state.UpdatedTs,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get streak state")
	}
	return &state, nil
}

// UpsertStreakState replaces the per-owner streak row.
func (d *DB) UpsertStreakState(ctx context.Context, upsert *store.StreakState) (*store.StreakState, error) {
	stmt := `
		INSERT INTO streak_state (
			creator_id, current_streak, longest_streak, total_entries,
			last_entry_date, streak_start_date, updated_ts
		)
		VALUES (` + placeholders(7) + `)
		ON CONFLICT (creator_id)
		DO UPDATE SET
			current_streak = EXCLUDED.current_streak,
			longest_streak = EXCLUDED.longest_streak,
			total_entries = EXCLUDED.total_entries,
			last_entry_date = EXCLUDED.last_entry_date,
			streak_start_date = EXCLUDED.streak_start_date,
			updated_ts = EXCLUDED.updated_ts
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.CreatorID,
		upsert.CurrentStreak,
		upsert.LongestStreak,
		upsert.TotalEntries,
		upsert.LastEntryDate,
		upsert.StreakStartDate,
		upsert.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert streak state")
	}
	return upsert, nil
}
