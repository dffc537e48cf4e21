package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// marshalStringList encodes a tag/emotion list as a JSONB column value.
func marshalStringList(list []string) ([]byte, error) {
	if list == nil {
		list = []string{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal string list")
	}
	return raw, nil
}

func unmarshalStringList(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal string list")
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (d *DB) CreateJournalEntry(ctx context.Context, create *store.JournalEntry) (*store.JournalEntry, error) {
	emotionTags, err := marshalStringList(create.EmotionTags)
	if err != nil {
		return nil, err
	}
	tags, err := marshalStringList(create.Tags)
	if err != nil {
		return nil, err
	}

	stmt := `INSERT INTO journal_entry (
			uid, creator_id, created_ts, updated_ts, entry_ts, row_status,
			title, content, entry_type, mood, mood_intensity, emotion_tags, tags
		)
		VALUES (` + placeholders(13) + `)
		RETURNING id, created_ts, updated_ts`
	if err := d.db.QueryRowContext(ctx, stmt,
		create.UID,
		create.CreatorID,
		create.CreatedTs,
		create.UpdatedTs,
		create.EntryTs,
		create.RowStatus,
		create.Title,
		create.Content,
		create.EntryType,
		create.Mood,
		create.MoodIntensity,
		emotionTags,
		tags,
	).Scan(&create.ID, &create.CreatedTs, &create.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to create journal entry")
	}

	return create, nil
}

func buildEntryWhere(find *store.FindJournalEntry) ([]string, []any) {
	where, args := []string{"TRUE"}, []any{}

	if find.ID != nil {
		where, args = append(where, "id = "+placeholder(len(args)+1)), append(args, *find.ID)
	}
	if find.UID != nil {
		where, args = append(where, "uid = "+placeholder(len(args)+1)), append(args, *find.UID)
	}
	if find.CreatorID != nil {
		where, args = append(where, "creator_id = "+placeholder(len(args)+1)), append(args, *find.CreatorID)
	}
	if find.RowStatus != nil {
		where, args = append(where, "row_status = "+placeholder(len(args)+1)), append(args, string(*find.RowStatus))
	}
	if find.EntryType != nil {
		where, args = append(where, "entry_type = "+placeholder(len(args)+1)), append(args, *find.EntryType)
	}
	if find.Mood != nil {
		where, args = append(where, "mood = "+placeholder(len(args)+1)), append(args, *find.Mood)
	}
	if find.EntryTsAfter != nil {
		where, args = append(where, "entry_ts >= "+placeholder(len(args)+1)), append(args, *find.EntryTsAfter)
	}
	if find.EntryTsBefore != nil {
		where, args = append(where, "entry_ts < "+placeholder(len(args)+1)), append(args, *find.EntryTsBefore)
	}

	return where, args
}

func (d *DB) ListJournalEntries(ctx context.Context, find *store.FindJournalEntry) ([]*store.JournalEntry, error) {
	where, args := buildEntryWhere(find)

	query := `SELECT id, uid, creator_id, created_ts, updated_ts, entry_ts, row_status,
			title, content, entry_type, mood, mood_intensity, emotion_tags, tags
		FROM journal_entry
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY entry_ts DESC, id DESC`
	if find.Limit != nil {
		query += " LIMIT " + placeholder(len(args)+1)
		args = append(args, *find.Limit)
		if find.Offset != nil {
			query += " OFFSET " + placeholder(len(args)+1)
			args = append(args, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list journal entries")
	}
	defer rows.Close()

	list := []*store.JournalEntry{}
	for rows.Next() {
		entry, err := scanJournalEntry(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

func (d *DB) CountJournalEntries(ctx context.Context, find *store.FindJournalEntry) (int64, error) {
	where, args := buildEntryWhere(find)

	query := `SELECT COUNT(*) FROM journal_entry WHERE ` + strings.Join(where, " AND ")
	var count int64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count journal entries")
	}
	return count, nil
}

func (d *DB) UpdateJournalEntry(ctx context.Context, update *store.UpdateJournalEntry) (*store.JournalEntry, error) {
	set, args := []string{}, []any{}

	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *update.UpdatedTs)
	}
	if update.Title != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *update.Title)
	}
	if update.Content != nil {
		set, args = append(set, "content = "+placeholder(len(args)+1)), append(args, *update.Content)
	}
	if update.EntryType != nil {
		set, args = append(set, "entry_type = "+placeholder(len(args)+1)), append(args, *update.EntryType)
	}
	if update.Mood != nil {
		set, args = append(set, "mood = "+placeholder(len(args)+1)), append(args, *update.Mood)
	}
	if update.MoodIntensity != nil {
		set, args = append(set, "mood_intensity = "+placeholder(len(args)+1)), append(args, *update.MoodIntensity)
	}
	if update.EmotionTags != nil {
		raw, err := marshalStringList(*update.EmotionTags)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "emotion_tags = "+placeholder(len(args)+1)), append(args, raw)
	}
	if update.Tags != nil {
		raw, err := marshalStringList(*update.Tags)
		if err != nil {
			return nil, err
		}
		set, args = append(set, "tags = "+placeholder(len(args)+1)), append(args, raw)
	}
	if update.RowStatus != nil {
		set, args = append(set, "row_status = "+placeholder(len(args)+1)), append(args, string(*update.RowStatus))
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `UPDATE journal_entry SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, uid, creator_id, created_ts, updated_ts, entry_ts, row_status,
			title, content, entry_type, mood, mood_intensity, emotion_tags, tags`

	entry, err := scanJournalEntry(d.db.QueryRowContext(ctx, stmt, args...))
	if err != nil {
		return nil, errors.Wrap(err, "failed to update journal entry")
	}
	return entry, nil
}

func (d *DB) DeleteJournalEntry(ctx context.Context, delete *store.DeleteJournalEntry) error {
	result, err := d.db.ExecContext(ctx, `DELETE FROM journal_entry WHERE id = $1`, delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete journal entry")
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJournalEntry(scanner rowScanner) (*store.JournalEntry, error) {
	var entry store.JournalEntry
	var emotionTagsRaw, tagsRaw []byte
	if err := scanner.Scan(
		&entry.ID,
		&entry.UID,
		&entry.CreatorID,
		&entry.CreatedTs,
		&entry.UpdatedTs,
		&entry.EntryTs,
		&entry.RowStatus,
		&entry.Title,
		&entry.Content,
		&entry.EntryType,
		&entry.Mood,
		&entry.MoodIntensity,
		&emotionTagsRaw,
		&tagsRaw,
	); err != nil {
		return nil, errors.Wrap(err, "failed to scan journal entry")
	}

	var err error
	if entry.EmotionTags, err = unmarshalStringList(emotionTagsRaw); err != nil {
		return nil, err
	}
	if entry.Tags, err = unmarshalStringList(tagsRaw); err != nil {
		return nil, err
	}
	return &entry, nil
}
