// Package journal implements the ingestion pipeline core: persisting
// entries, maintaining per-owner streak and daily analytics rollups,
// indexing content for semantic search, and querying the index.
package journal

import (
	"github.com/hrygo/lifelog/ai"
	"github.com/hrygo/lifelog/internal/profile"
	"github.com/hrygo/lifelog/server/metrics"
	"github.com/hrygo/lifelog/store"
)

// Service orchestrates journal entry ingestion and retrieval.
type Service struct {
	Profile *profile.Profile
	Store   *store.Store

	// Embedder and Summarizer are optional. When nil the corresponding
	// side effect is skipped and entries simply stay out of the vector
	// index or go without summaries.
	Embedder   ai.EmbeddingService
	Summarizer ai.Summarizer

	// Metrics is optional.
	Metrics *metrics.Exporter

	locks *ownerLocks
}

// NewService creates a journal service.
func NewService(p *profile.Profile, s *store.Store, embedder ai.EmbeddingService, summarizer ai.Summarizer, exporter *metrics.Exporter) *Service {
	return &Service{
		Profile:    p,
		Store:      s,
		Embedder:   embedder,
		Summarizer: summarizer,
		Metrics:    exporter,
		locks:      newOwnerLocks(),
	}
}
