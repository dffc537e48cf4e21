package sqlite

import (
	"context"
	"encoding/binary"
	"math"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// Vectors are stored as BLOBs of little-endian float32 values. Similarity
// search is computed in the Go application layer: candidates are loaded
// most-recent-first with all relational filters applied in SQL, then
// ranked by cosine similarity. This is O(n) over the candidate window and
// fine for a personal journal; PostgreSQL/pgvector is the indexed path.

// float32ArrayToBLOB converts a []float32 to a BLOB column value.
func float32ArrayToBLOB(vec []float32) []byte {
	buf := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(buf[i*4:i*4+4], math.Float32bits(v))
	}
	return buf
}

// blobToFloat32Array converts a BLOB column value back to a float32 array.
// This is the inverse of float32ArrayToBLOB.
func blobToFloat32Array(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, errors.Errorf("invalid BLOB length: %d is not a multiple of 4", len(blob))
	}
	vec := make([]float32, len(blob)/4)
	for i := range vec {
		bits := binary.LittleEndian.Uint32(blob[i*4 : i*4+4])
		vec[i] = math.Float32frombits(bits)
	}
	return vec, nil
}

// UpsertJournalEmbedding inserts or updates an entry embedding.
// PRIMARY KEY is (entry_id, model); the upsert is last-write-wins.
func (d *DB) UpsertJournalEmbedding(ctx context.Context, upsert *store.JournalEmbedding) (*store.JournalEmbedding, error) {
	if len(upsert.Embedding) == 0 {
		return nil, errors.New("embedding vector cannot be empty")
	}

	stmt := `INSERT INTO journal_embedding (entry_id, embedding, model, created_ts, updated_ts)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (entry_id, model) DO UPDATE SET
			embedding = excluded.embedding,
			updated_ts = excluded.updated_ts
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt,
		upsert.EntryID,
		float32ArrayToBLOB(upsert.Embedding),
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
	where, args := []string{"1 = 1"}, []any{}

	if find.EntryID != nil {
		where, args = append(where, "entry_id = ?"), append(args, *find.EntryID)
	}
	if find.Model != nil {
		where, args = append(where, "model = ?"), append(args, *find.Model)
	}

	query := `SELECT id, entry_id, embedding, model, created_ts, updated_ts
		FROM journal_embedding
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts DESC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list journal embeddings")
	}
	defer rows.Close()

	list := []*store.JournalEmbedding{}
	for rows.Next() {
		var embedding store.JournalEmbedding
		var blob []byte
		if err := rows.Scan(
			&embedding.ID,
			&embedding.EntryID,
			&blob,
			&embedding.Model,
			&embedding.CreatedTs,
			&embedding.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan journal embedding")
		}
		if embedding.Embedding, err = blobToFloat32Array(blob); err != nil {
			return nil, err
		}
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
	if _, err := d.db.ExecContext(ctx, `DELETE FROM journal_embedding WHERE entry_id = ?`, entryID); err != nil {
		return errors.Wrap(err, "failed to delete journal embedding")
	}
	return nil
}

// VectorSearch performs similarity search using application-layer cosine
// similarity over a SQL-filtered candidate window.
func (d *DB) VectorSearch(ctx context.Context, opts *store.VectorSearchOptions) ([]*store.EntryWithScore, error) {
	query := `SELECT
			e.id, e.uid, e.creator_id, e.created_ts, e.updated_ts, e.entry_ts, e.row_status,
			e.title, e.content, e.entry_type, e.mood, e.mood_intensity, e.emotion_tags, e.tags,
			emb.embedding
		FROM journal_entry e
		INNER JOIN journal_embedding emb ON e.id = emb.entry_id
		WHERE e.creator_id = ?
			AND e.row_status = 'NORMAL'
			AND emb.model = ?`

	args := []any{opts.CreatorID, opts.Model}
	if opts.EntryType != nil {
		query += " AND e.entry_type = ?"
		args = append(args, *opts.EntryType)
	}
	if opts.Mood != nil {
		query += " AND e.mood = ?"
		args = append(args, *opts.Mood)
	}
	if opts.EntryTsAfter != nil {
		query += " AND e.entry_ts >= ?"
		args = append(args, *opts.EntryTsAfter)
	}
	if opts.EntryTsBefore != nil {
		query += " AND e.entry_ts < ?"
		args = append(args, *opts.EntryTsBefore)
	}

	// Most recent first, bounded candidate window for memory efficiency.
	candidateLimit := opts.MaxCandidates
	if candidateLimit <= 0 {
		candidateLimit = opts.Limit * 5
	}
	if candidateLimit > 500 {
		candidateLimit = 500
	}
	query += " ORDER BY e.entry_ts DESC LIMIT ?"
	args = append(args, candidateLimit)

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to vector search")
	}
	defer rows.Close()

	type candidate struct {
		entry     *store.JournalEntry
		embedding []float32
	}
	candidates := []candidate{}
	for rows.Next() {
		var entry store.JournalEntry
		var emotionTagsRaw, tagsRaw string
		var blob []byte
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
			&blob,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan vector search result")
		}
		if entry.EmotionTags, err = unmarshalStringList(emotionTagsRaw); err != nil {
			return nil, err
		}
		if entry.Tags, err = unmarshalStringList(tagsRaw); err != nil {
			return nil, err
		}
		embedding, err := blobToFloat32Array(blob)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate{entry: &entry, embedding: embedding})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	results := make([]*store.EntryWithScore, 0, len(candidates))
	for _, cand := range candidates {
		results = append(results, &store.EntryWithScore{
			Entry: cand.entry,
			Score: cosineSimilarity(opts.Vector, cand.embedding),
		})
	}

	// Similarity descending; ties broken by most recent entry timestamp.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Entry.EntryTs > results[j].Entry.EntryTs
	})

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// cosineSimilarity computes cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct float32
	var normA float32
	var normB float32

	for i := 0; i < len(a); i++ {
		dotProduct += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB))))
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
		LEFT JOIN journal_embedding emb ON e.id = emb.entry_id AND emb.model = ?
		WHERE emb.entry_id IS NULL
			AND e.row_status = 'NORMAL'
			AND LENGTH(e.content) > 0
		ORDER BY e.created_ts DESC
		LIMIT ?`

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
