package postgres

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// GetDailyAnalytics returns the rollup for (creatorID, day), or nil when absent.
func (d *DB) GetDailyAnalytics(ctx context.Context, creatorID int32, day string) (*store.DailyAnalytics, error) {
	query := `SELECT creator_id, day, entry_count, word_count, mood_sum, mood_entry_count,
			emotions, tags, updated_ts
		FROM daily_analytics
		WHERE creator_id = $1 AND day = $2`

	row, err := scanDailyAnalytics(d.db.QueryRowContext(ctx, query, creatorID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}

// UpsertDailyAnalytics replaces the (creator, day) rollup row.
func (d *DB) UpsertDailyAnalytics(ctx context.Context, upsert *store.DailyAnalytics) (*store.DailyAnalytics, error) {
	emotions, err := marshalStringList(upsert.Emotions)
	if err != nil {
		return nil, err
	}
	tags, err := marshalStringList(upsert.Tags)
	if err != nil {
		return nil, err
	}

	stmt := `
		INSERT INTO daily_analytics (
			creator_id, day, entry_count, word_count, mood_sum, mood_entry_count,
			emotions, tags, updated_ts
		)
		VALUES (` + placeholders(9) + `)
		ON CONFLICT (creator_id, day)
		DO UPDATE SET
			entry_count = EXCLUDED.entry_count,
			word_count = EXCLUDED.word_count,
			mood_sum = EXCLUDED.mood_sum,
			mood_entry_count = EXCLUDED.mood_entry_count,
			emotions = EXCLUDED.emotions,
			tags = EXCLUDED.tags,
			updated_ts = EXCLUDED.updated_ts
	`

	if _, err := d.db.ExecContext(ctx, stmt,
		upsert.CreatorID,
		upsert.Day,
		upsert.EntryCount,
		upsert.WordCount,
		upsert.MoodSum,
		upsert.MoodEntryCount,
		emotions,
		tags,
		upsert.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to upsert daily analytics")
	}
	return upsert, nil
}

// ListDailyAnalytics lists rollup rows ordered by day ascending.
func (d *DB) ListDailyAnalytics(ctx context.Context, find *store.FindDailyAnalytics) ([]*store.DailyAnalytics, error) {
	where, args := []string{"creator_id = $1"}, []any{find.CreatorID}

	if find.DayAfter != nil {
		where, args = append(where, "day >= "+placeholder(len(args)+1)), append(args, *find.DayAfter)
	}
	if find.DayBefore != nil {
		where, args = append(where, "day <= "+placeholder(len(args)+1)), append(args, *find.DayBefore)
	}

	query := `SELECT creator_id, day, entry_count, word_count, mood_sum, mood_entry_count,
			emotions, tags, updated_ts
		FROM daily_analytics
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY day ASC`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list daily analytics")
	}
	defer rows.Close()

	list := []*store.DailyAnalytics{}
	for rows.Next() {
		row, err := scanDailyAnalytics(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, row)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func scanDailyAnalytics(scanner rowScanner) (*store.DailyAnalytics, error) {
	var row store.DailyAnalytics
	var emotionsRaw, tagsRaw []byte
	if err := scanner.Scan(
		&row.CreatorID,
		&row.Day,
		&row.EntryCount,
		&row.WordCount,
		&row.MoodSum,
		&row.MoodEntryCount,
		&emotionsRaw,
		&tagsRaw,
		&row.UpdatedTs,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, errors.Wrap(err, "failed to scan daily analytics")
	}

	var err error
	if row.Emotions, err = unmarshalStringList(emotionsRaw); err != nil {
		return nil, err
	}
	if row.Tags, err = unmarshalStringList(tagsRaw); err != nil {
		return nil, err
	}
	return &row, nil
}
