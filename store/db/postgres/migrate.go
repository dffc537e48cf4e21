package postgres

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

func (d *DB) schemaStatements() []string {
	dimensions := d.profile.EmbeddingDimensions
	if dimensions <= 0 {
		dimensions = 1024
	}
	return []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS journal_entry (
			id SERIAL PRIMARY KEY,
			uid TEXT NOT NULL UNIQUE,
			creator_id INTEGER NOT NULL,
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			entry_ts BIGINT NOT NULL,
			row_status TEXT NOT NULL CHECK (row_status IN ('NORMAL', 'ARCHIVED')) DEFAULT 'NORMAL',
			title TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL DEFAULT '',
			entry_type TEXT NOT NULL DEFAULT 'journal',
			mood TEXT,
			mood_intensity INTEGER,
			emotion_tags JSONB NOT NULL DEFAULT '[]',
			tags JSONB NOT NULL DEFAULT '[]'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entry_creator_entry_ts ON journal_entry (creator_id, entry_ts DESC)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS journal_embedding (
			id SERIAL PRIMARY KEY,
			entry_id INTEGER NOT NULL,
			embedding vector(%d) NOT NULL,
			model TEXT NOT NULL,
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			UNIQUE(entry_id, model)
		)`, dimensions),
		`CREATE INDEX IF NOT EXISTS idx_journal_embedding_cosine
			ON journal_embedding USING ivfflat (embedding vector_cosine_ops) WITH (lists = 100)`,
		`CREATE TABLE IF NOT EXISTS streak_state (
			creator_id INTEGER PRIMARY KEY,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			total_entries INTEGER NOT NULL DEFAULT 0,
			last_entry_date TEXT NOT NULL DEFAULT '',
			streak_start_date TEXT NOT NULL DEFAULT '',
			updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS daily_analytics (
			creator_id INTEGER NOT NULL,
			day TEXT NOT NULL,
			entry_count INTEGER NOT NULL DEFAULT 0,
			word_count INTEGER NOT NULL DEFAULT 0,
			mood_sum DOUBLE PRECISION NOT NULL DEFAULT 0,
			mood_entry_count INTEGER NOT NULL DEFAULT 0,
			emotions JSONB NOT NULL DEFAULT '[]',
			tags JSONB NOT NULL DEFAULT '[]',
			updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			PRIMARY KEY (creator_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS journal_summary (
			id SERIAL PRIMARY KEY,
			entry_id INTEGER NOT NULL UNIQUE,
			summary TEXT NOT NULL DEFAULT '',
			insights JSONB NOT NULL DEFAULT '[]',
			sentiment TEXT,
			status TEXT NOT NULL CHECK (status IN ('PENDING', 'GENERATING', 'COMPLETED', 'FAILED')) DEFAULT 'PENDING',
			error_message TEXT,
			created_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT,
			updated_ts BIGINT NOT NULL DEFAULT EXTRACT(EPOCH FROM NOW())::BIGINT
		)`,
	}
}

// Migrate applies the latest schema. Statements are idempotent so this
// is safe to run on every boot.
func (d *DB) Migrate(ctx context.Context) error {
	for _, stmt := range d.schemaStatements() {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to apply schema statement")
		}
	}
	return nil
}
