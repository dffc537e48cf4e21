package journal

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/lifelog/store"
)

const (
	defaultBackfillBatch = 20
	backfillConcurrency  = 4
)

// BackfillOnce indexes up to batchSize entries that have no vector
// record for the active model, most recent first. It returns how many
// entries were indexed. Per-entry failures are counted and logged but
// do not stop the batch.
func (s *Service) BackfillOnce(ctx context.Context, batchSize int) (int, error) {
	if s.Embedder == nil {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = defaultBackfillBatch
	}

	entries, err := s.Store.FindEntriesWithoutEmbedding(ctx, &store.FindEntriesWithoutEmbedding{
		Model: s.Embedder.Model(),
		Limit: batchSize,
	})
	if err != nil {
		return 0, err
	}

	var (
		mu      sync.Mutex
		indexed int
		failed  int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if err := s.indexEntry(gctx, entry); err != nil {
				slog.Warn("backfill indexing failed", "entry", entry.ID, "error", err)
				mu.Lock()
				failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			indexed++
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	if s.Metrics != nil {
		s.Metrics.RecordBackfill(indexed, failed)
	}
	return indexed, nil
}

// StartBackfillLoop periodically retries indexing for entries whose
// embedding generation failed at write time. Runs until ctx is done.
func (s *Service) StartBackfillLoop(ctx context.Context, interval time.Duration) {
	if s.Embedder == nil {
		return
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := s.BackfillOnce(ctx, defaultBackfillBatch); err != nil {
				slog.Error("embedding backfill pass failed", "error", err)
			} else if n > 0 {
				slog.Info("embedding backfill indexed entries", "count", n)
			}
		}
	}
}
