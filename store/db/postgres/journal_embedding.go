package postgres

import (
	"context"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// UpsertJournalEmbedding inserts or updates an entry embedding.
// The (entry_id, model) upsert is last-write-wins.
func (d *DB) UpsertJournalEmbedding(ctx context.Context, upsert *store.JournalEmbedding) (*store.JournalEmbedding, error) {
	if len(upsert.Embedding) == 0 {
		return nil, errors.New("embedding vector cannot be empty")
	}

	stmt := `
		INSERT INTO journal_embedding (entry_id, embedding, model, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (entry_id, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`

	vector := pgvector.NewVector(upsert.Embedding)
	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.EntryID,
		vector,
		upsert.Model,
		upsert.CreatedTs,
		upsert.UpdatedTs,
	).Scan(&upsert.ID, &upsert.CreatedTs, &upsert.UpdatedTs); err != nil {
		return nil, errors.Wrap(err, "failed to upsert journal embedding")
	}

	return upsert, nil
}

// ListJournalEmbeddings lists entry embeddings.
func (d *DB) ListJournalEmbeddings(ctx context.Context, find *store.FindJournalEmbedding) ([]*store.JournalEmbedding, error) {
	where, args := []string{"TRUE"}, []any{}

	if find.EntryID != nil {
		where, args = append(where, "entry_id = "+placeholder(len(args)+1)), append(args, *find.EntryID)
	}
	if find.Model != nil {
		where, args = append(where, "model = "+placeholder(len(args)+1)), append(args, *find.Model)
	}

	query := `
		SELECT id, entry_id, embedding, model, created_ts, updated_ts
		FROM journal_embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC
	`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list journal embeddings")
	}
	defer rows.Close()

	list := []*store.JournalEmbedding{}
	for rows.Next() {
		var embedding store.JournalEmbedding
		var vector pgvector.Vector
		if err := rows.Scan(
			&embedding.ID,
			&embedding.EntryID,
			&vector,
			&embedding.Model,
			&embedding.CreatedTs,
			&embedding.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan journal embedding")
		}
		embedding.Embedding = vector.Slice()
		list = append(list, &embedding)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return list, nil
}

// DeleteJournalEmbedding deletes the embedding rows for an entry.
// Deleting a non-existent row is not an error.
func (d *DB) DeleteJournalEmbedding(ctx context.Context, entryID int32) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM journal_embedding WHERE entry_id = $1`, entryID); err != nil {
		return errors.Wrap(err, "failed to delete journal embedding")
	}
	return nil
}

// VectorSearch performs similarity search with pgvector's cosine distance
// operator. similarity = 1 - cosine distance.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.EntryWithScore, error) {
	queryVector := pgvector.NewVector(opts.Vector)

	query := `SELECT
			e.id, e.uid, e.creator_id, e.created_ts, e.updated_ts, e.entry_ts, e.row_status,
			e.title, e.content, e.entry_type, e.mood, e.mood_intensity, e.emotion_tags, e.tags,
			(1 - (emb.embedding <=> $1)) AS similarity
		FROM journal_entry e
		INNER JOIN journal_embedding emb ON e.id = emb.entry_id
		WHERE e.creator_id = $2
			AND e.row_status = 'NORMAL'
			AND emb.model = $3`

	args := []any{queryVector, opts.CreatorID, opts.Model}
	if opts.EntryType != nil {
		query += " AND e.entry_type = " + placeholder(len(args)+1)
		args = append(args, *opts.EntryType)
	}
	if opts.Mood != nil {
		query += " AND e.mood = " + placeholder(len(args)+1)
		args = append(args, *opts.Mood)
	}
	if opts.EntryTsAfter != nil {
		query += " AND e.entry_ts >= " + placeholder(len(args)+1)
		args = append(args, *opts.EntryTsAfter)
	}
	if opts.EntryTsBefore != nil {
		query += " AND e.entry_ts < " + placeholder(len(args)+1)
		args = append(args, *opts.EntryTsBefore)
	}

	// Similarity descending; ties broken by most recent entry timestamp.
	query += " ORDER BY similarity DESC, e.entry_ts DESC LIMIT " + placeholder(len(args)+1)
	args = append(args, opts.Limit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	results := []*store.EntryWithScore{}
	for rows.Next() {
		var entry store.JournalEntry
		var emotionTagsRaw, tagsRaw []byte
		var similarity float32
		if err := rows.Scan(
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
			&similarity,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		if entry.EmotionTags, err = unmarshalStringList(emotionTagsRaw); err != nil {
			return nil, err
		}
		if entry.Tags, err = unmarshalStringList(tagsRaw); err != nil {
			return nil, err
		}
		results = append(results, &store.EntryWithScore{Entry: &entry, Score: similarity})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}

// FindEntriesWithoutEmbedding finds entries that don't have embeddings for the specified model.
func (d *DB) FindEntriesWithoutEmbedding(ctx context.Context, find *store.FindEntriesWithoutEmbedding) ([]*store.JournalEntry, error) {
	limit := find.Limit
	if limit <= 0 {
		limit = 100
	}

	query := `SELECT
			e.id, e.uid, e.creator_id, e.created_ts, e.updated_ts, e.entry_ts, e.row_status,
			e.title, e.content, e.entry_type, e.mood, e.mood_intensity, e.emotion_tags, e.tags
		FROM journal_entry e
		LEFT JOIN journal_embedding emb ON e.id = emb.entry_id AND emb.model = $1
		WHERE emb.entry_id IS NULL
			AND e.row_status = 'NORMAL'
			AND LENGTH(e.content) > 0
		ORDER BY e.created_ts DESC
		LIMIT $2`

	rows, err := d.db.QueryContext(ctx, query, find.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find entries without embedding")
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
