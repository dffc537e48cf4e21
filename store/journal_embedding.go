package store

import (
	"context"

	"github.com/pkg/errors"
)

// JournalEmbedding is the vector-index record for one entry.
// A row exists if and only if embedding generation for the entry's current
// content has completed successfully.
type JournalEmbedding struct {
	ID        int32
	EntryID   int32
	Embedding []float32
	Model     string
	CreatedTs int64
	UpdatedTs int64
}

// FindJournalEmbedding is the find condition for journal embeddings.
type FindJournalEmbedding struct {
	EntryID *int32
	Model   *string
}

// VectorSearchOptions configures a similarity search over the vector index.
// CreatorID is mandatory: every index query is scoped to a single owner.
type VectorSearchOptions struct {
	CreatorID int32
	Vector    []float32
	Limit     int
	Model     string

	// Optional conjunctive filters, applied alongside the ranking.
	EntryType     *string
	Mood          *string
	EntryTsAfter  *int64
	EntryTsBefore *int64

	// MaxCandidates bounds how many rows the Go cosine fallback loads.
	MaxCandidates int
}

// Validate checks and normalizes search options.
func (o *VectorSearchOptions) Validate() error {
	if o.CreatorID <= 0 {
		return errors.New("invalid CreatorID")
	}
	if len(o.Vector) == 0 {
		return errors.New("vector cannot be empty")
	}
	if o.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	if o.Limit == 0 {
		o.Limit = 10
	}
	if o.Limit > 1000 {
		return errors.New("limit too large")
	}
	return nil
}

// EntryWithScore pairs an entry with its similarity score.
type EntryWithScore struct {
	Entry *JournalEntry
	Score float32
}

// FindEntriesWithoutEmbedding is the find condition for the backfill scan.
type FindEntriesWithoutEmbedding struct {
	Model string
	Limit int
}

func (s *Store) UpsertJournalEmbedding(ctx context.Context, upsert *JournalEmbedding) (*JournalEmbedding, error) {
	return s.driver.UpsertJournalEmbedding(ctx, upsert)
}

func (s *Store) ListJournalEmbeddings(ctx context.Context, find *FindJournalEmbedding) ([]*JournalEmbedding, error) {
	return s.driver.ListJournalEmbeddings(ctx, find)
}

// DeleteJournalEmbedding removes the index record for an entry.
// Deleting a non-existent record is not an error.
func (s *Store) DeleteJournalEmbedding(ctx context.Context, entryID int32) error {
	return s.driver.DeleteJournalEmbedding(ctx, entryID)
}

// VectorSearch returns entries ranked by cosine similarity, descending,
// ties broken by most recent EntryTs. Only rows owned by
// opts.CreatorID are ever returned.
func (s *Store) VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*EntryWithScore, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return s.driver.VectorSearch(ctx, opts)
}

// FindEntriesWithoutEmbedding finds entries lacking an index record for
// the given model, most recent first. Used by the backfill loop.
func (s *Store) FindEntriesWithoutEmbedding(ctx context.Context, find *FindEntriesWithoutEmbedding) ([]*JournalEntry, error) {
	return s.driver.FindEntriesWithoutEmbedding(ctx, find)
}
