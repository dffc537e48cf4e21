package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/store"
)

// SearchRequest describes one entry retrieval request. Query empty
// means pure filtered listing ordered by attribution timestamp.
type SearchRequest struct {
	CreatorID int32
	Query     string

	EntryType     *string
	Mood          *string
	EntryTsAfter  *int64
	EntryTsBefore *int64

	Limit  int
	Offset int
}

// ScoredEntry is one search hit. Score is zero for listing results.
type ScoredEntry struct {
	Entry *store.JournalEntry
	Score float32
}

// SearchResult is a page of ranked entries.
//
// On the listing path Total is the exact number of matching entries.
// On the semantic path it counts the retrieved candidate window (one
// past the requested page), so it is a lower bound, good enough to
// drive HasMore but not a full result count.
type SearchResult struct {
	Entries []*ScoredEntry
	Total   int64
	HasMore bool

	// Degraded is set when a text query could not be embedded in time
	// and the result fell back to filtered listing order.
	Degraded bool
}

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

func (r *SearchRequest) normalize() error {
	if r.CreatorID <= 0 {
		return errors.New("invalid creator ID")
	}
	if r.Limit <= 0 {
		r.Limit = defaultSearchLimit
	}
	if r.Limit > maxSearchLimit {
		r.Limit = maxSearchLimit
	}
	if r.Offset < 0 {
		r.Offset = 0
	}
	return nil
}

// Search answers "entries relevant to query, filtered" for one owner.
//
// A non-empty query is embedded under a short timeout and ranked by
// vector similarity; pagination applies after ranking, so the index is
// asked for offset+limit candidates. Embedding or index failure
// degrades to the listing path instead of failing the request. Every
// path is scoped to the requesting owner.
func (s *Service) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	start := time.Now()
	mode := "listing"
	defer func() {
		if s.Metrics != nil {
			s.Metrics.RecordSearch(mode, time.Since(start))
		}
	}()

	if req.Query == "" || s.Embedder == nil {
		return s.listEntries(ctx, req, false)
	}

	vector, err := s.embedQuery(ctx, req.Query)
	if err != nil {
		slog.Warn("query embedding failed, falling back to listing", "error", err)
		mode = "fallback"
		return s.listEntries(ctx, req, true)
	}

	// One candidate past the page so HasMore is accurate.
	ranked, err := s.Store.VectorSearch(ctx, &store.VectorSearchOptions{
		CreatorID:     req.CreatorID,
		Vector:        vector,
		Limit:         req.Offset + req.Limit + 1,
		Model:         s.Embedder.Model(),
		EntryType:     req.EntryType,
		Mood:          req.Mood,
		EntryTsAfter:  req.EntryTsAfter,
		EntryTsBefore: req.EntryTsBefore,
	})
	if err != nil {
		slog.Warn("vector search failed, falling back to listing", "error", err)
		mode = "fallback"
		return s.listEntries(ctx, req, true)
	}
	mode = "semantic"

	// Re-check filters against the hydrated rows. The index is only
	// eventually consistent with the primary store.
	hits := make([]*ScoredEntry, 0, len(ranked))
	for _, r := range ranked {
		if !matchesFilters(r.Entry, req) {
			continue
		}
		hits = append(hits, &ScoredEntry{Entry: r.Entry, Score: r.Score})
	}

	total := int64(len(hits))
	if req.Offset >= len(hits) {
		hits = nil
	} else {
		hits = hits[req.Offset:]
	}
	if len(hits) > req.Limit {
		hits = hits[:req.Limit]
	}
	return &SearchResult{
		Entries: hits,
		Total:   total,
		HasMore: int64(req.Offset+len(hits)) < total,
	}, nil
}

func (s *Service) embedQuery(ctx context.Context, query string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Profile.SearchCallTimeout())
	defer cancel()

	start := time.Now()
	vector, err := s.Embedder.Embed(ctx, query)
	if s.Metrics != nil {
		s.Metrics.RecordEmbedding(s.Embedder.Model(), time.Since(start), err == nil)
	}
	return vector, err
}

func (s *Service) listEntries(ctx context.Context, req *SearchRequest, degraded bool) (*SearchResult, error) {
	normal := store.Normal
	find := &store.FindJournalEntry{
		CreatorID:     &req.CreatorID,
		RowStatus:     &normal,
		EntryType:     req.EntryType,
		Mood:          req.Mood,
		EntryTsAfter:  req.EntryTsAfter,
		EntryTsBefore: req.EntryTsBefore,
	}

	total, err := s.Store.CountJournalEntries(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to count entries")
	}

	find.Limit = &req.Limit
	find.Offset = &req.Offset
	entries, err := s.Store.ListJournalEntries(ctx, find)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list entries")
	}

	hits := make([]*ScoredEntry, len(entries))
	for i, e := range entries {
		hits[i] = &ScoredEntry{Entry: e}
	}
	return &SearchResult{
		Entries:  hits,
		Total:    total,
		HasMore:  int64(req.Offset+len(hits)) < total,
		Degraded: degraded,
	}, nil
}

func matchesFilters(entry *store.JournalEntry, req *SearchRequest) bool {
	if entry.CreatorID != req.CreatorID {
		return false
	}
	if entry.RowStatus != store.Normal {
		return false
	}
	if req.EntryType != nil && entry.EntryType != *req.EntryType {
		return false
	}
	if req.Mood != nil && (entry.Mood == nil || *entry.Mood != *req.Mood) {
		return false
	}
	if req.EntryTsAfter != nil && entry.EntryTs < *req.EntryTsAfter {
		return false
	}
	if req.EntryTsBefore != nil && entry.EntryTs >= *req.EntryTsBefore {
		return false
	}
	return true
}
