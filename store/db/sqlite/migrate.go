package sqlite

import (
	"context"

	"github.com/pkg/errors"
)

var latestSchema = []string{
	`CREATE TABLE IF NOT EXISTS journal_entry (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		uid TEXT NOT NULL UNIQUE,
		creator_id INTEGER NOT NULL,
		created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		entry_ts BIGINT NOT NULL,
		row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
		title TEXT NOT NULL DEFAULT '',
		content TEXT NOT NULL DEFAULT '',
		entry_type TEXT NOT NULL DEFAULT 'journal',
		mood TEXT,
		mood_intensity INTEGER,
		emotion_tags TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_journal_entry_creator_entry_ts ON journal_entry (creator_id, entry_ts DESC)`,
	`CREATE TABLE IF NOT EXISTS journal_embedding (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_id INTEGER NOT NULL,
		embedding BLOB NOT NULL,
		model TEXT NOT NULL,
		created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		UNIQUE(entry_id, model)
	)`,
	`CREATE TABLE IF NOT EXISTS streak_state (
		creator_id INTEGER PRIMARY KEY,
		current_streak INTEGER NOT NULL DEFAULT 0,
		longest_streak INTEGER NOT NULL DEFAULT 0,
		total_entries INTEGER NOT NULL DEFAULT 0,
		last_entry_date TEXT NOT NULL DEFAULT '',
		streak_start_date TEXT NOT NULL DEFAULT '',
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
	)`,
	`CREATE TABLE IF NOT EXISTS daily_analytics (
		creator_id INTEGER NOT NULL,
		day TEXT NOT NULL,
		entry_count INTEGER NOT NULL DEFAULT 0,
		word_count INTEGER NOT NULL DEFAULT 0,
		mood_sum REAL NOT NULL DEFAULT 0,
		mood_entry_count INTEGER NOT NULL DEFAULT 0,
		emotions TEXT NOT NULL DEFAULT '[]',
		tags TEXT NOT NULL DEFAULT '[]',
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		PRIMARY KEY (creator_id, day)
	)`,
	`CREATE TABLE IF NOT EXISTS journal_summary (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		entry_id INTEGER NOT NULL UNIQUE,
		summary TEXT NOT NULL DEFAULT '',
		insights TEXT NOT NULL DEFAULT '[]',
		sentiment TEXT,
		status TEXT NOT NULL CHECK (status IN ('PENDING', 'GENERATING', 'COMPLETED', 'FAILED')) DEFAULT 'PENDING',
		error_message TEXT,
		created_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now')),
		updated_ts BIGINT NOT NULL DEFAULT (strftime('%s', 'now'))
	)`,
}

// Migrate applies the latest schema. Statements are idempotent
// (CREATE ... IF NOT EXISTS) so this is safe to run on every boot.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range latestSchema {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema statement")
		}
	}
	return nil
}
