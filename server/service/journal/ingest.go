package journal

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/ai"
	"github.com/hrygo/lifelog/plugin/markdown"
	"github.com/hrygo/lifelog/store"
)

// Warning strings surfaced to callers on degraded ingestion.
const (
	WarnIndexingDelayed = "semantic indexing delayed"
	WarnStreakFailed    = "streak update failed"
	WarnAnalyticsFailed = "analytics update failed"
	WarnSummaryFailed   = "summary generation failed"
)

// IngestRequest describes one entry write.
type IngestRequest struct {
	CreatorID     int32
	Title         string
	Content       string
	EntryType     string
	Mood          *string
	MoodIntensity *int32
	EmotionTags   []string
	Tags          []string

	// EntryTs is the attribution timestamp. Zero means now. Backdated
	// values are honored for analytics and leave the streak untouched.
	EntryTs int64

	// SyncSummary makes summarization block the response. Default is
	// fire-and-forget.
	SyncSummary bool
}

// IngestResult is the outcome of one entry write. Warnings lists the
// side effects that failed; the entry itself is always persisted when
// the error return is nil.
type IngestResult struct {
	Entry    *store.JournalEntry
	Summary  *store.JournalSummary
	Warnings []string
}

// Ingest persists an entry and runs the dependent side effects.
//
// The primary-store write happens first and is the only fatal step.
// Embedding, streak and analytics then run in parallel; each failure
// is recorded as a warning and never rolls the entry back. Streak and
// analytics failures additionally log at error level since they point
// at the local storage layer, while embedding failures are routine
// (provider timeouts, rate limits) and log at warn level.
func (s *Service) Ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	start := time.Now()
	result, err := s.ingest(ctx, req)
	if s.Metrics != nil {
		status := "success"
		switch {
		case err != nil:
			status = "error"
		case len(result.Warnings) > 0:
			status = "degraded"
		}
		s.Metrics.RecordIngest(status, time.Since(start))
	}
	return result, err
}

func (s *Service) ingest(ctx context.Context, req *IngestRequest) (*IngestResult, error) {
	now := time.Now().Unix()
	entryTs := req.EntryTs
	if entryTs == 0 {
		entryTs = now
	}
	entry := &store.JournalEntry{
		UID:           shortuuid.New(),
		CreatorID:     req.CreatorID,
		CreatedTs:     now,
		UpdatedTs:     now,
		EntryTs:       entryTs,
		RowStatus:     store.Normal,
		Title:         req.Title,
		Content:       req.Content,
		EntryType:     req.EntryType,
		Mood:          req.Mood,
		MoodIntensity: req.MoodIntensity,
		EmotionTags:   req.EmotionTags,
		Tags:          req.Tags,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	entry, err := s.Store.CreateJournalEntry(ctx, entry)
	if err != nil {
		return nil, errors.Wrap(err, "failed to persist entry")
	}

	result := &IngestResult{Entry: entry}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	warn := func(effect, warning string, err error, routine bool) {
		if routine {
			slog.Warn("ingest side effect failed", "effect", effect, "entry", entry.ID, "error", err)
		} else {
			slog.Error("ingest side effect failed", "effect", effect, "entry", entry.ID, "error", err)
		}
		if s.Metrics != nil {
			s.Metrics.RecordSideEffectError(effect)
		}
		mu.Lock()
		result.Warnings = append(result.Warnings, warning)
		mu.Unlock()
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := s.indexEntry(ctx, entry); err != nil {
			warn("embedding", WarnIndexingDelayed, err, true)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := s.RecordEntryDay(ctx, entry.CreatorID, entry.EntryTs); err != nil {
			warn("streak", WarnStreakFailed, err, false)
		}
	}()
	go func() {
		defer wg.Done()
		if _, err := s.RecordEntryAnalytics(ctx, entry); err != nil {
			warn("analytics", WarnAnalyticsFailed, err, false)
		}
	}()
	wg.Wait()

	if s.Summarizer != nil {
		if req.SyncSummary {
			summary, err := s.summarizeEntry(ctx, entry)
			if err != nil {
				warn("summary", WarnSummaryFailed, err, true)
			} else {
				result.Summary = summary
			}
		} else {
			go func() {
				ctx := context.WithoutCancel(ctx)
				if _, err := s.summarizeEntry(ctx, entry); err != nil {
					slog.Warn("async summary failed", "entry", entry.ID, "error", err)
				}
			}()
		}
	}
	return result, nil
}

// embeddingText is what the vector index sees for an entry: the title
// plus the plain-text rendering of the content.
func embeddingText(entry *store.JournalEntry) string {
	plain := markdown.PlainText(entry.Content)
	if entry.Title == "" {
		return plain
	}
	if plain == "" {
		return entry.Title
	}
	return entry.Title + "\n" + plain
}

// indexEntry embeds the entry text and upserts its vector-index record.
// A nil Embedder means indexing is disabled and is not an error.
func (s *Service) indexEntry(ctx context.Context, entry *store.JournalEntry) error {
	if s.Embedder == nil {
		return nil
	}
	text := embeddingText(entry)
	if text == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.Profile.EmbeddingCallTimeout())
	defer cancel()

	start := time.Now()
	vector, err := s.Embedder.Embed(ctx, text)
	if s.Metrics != nil {
		s.Metrics.RecordEmbedding(s.Embedder.Model(), time.Since(start), err == nil)
	}
	if err != nil {
		return errors.Wrap(err, "failed to embed entry")
	}

	now := time.Now().Unix()
	if _, err := s.Store.UpsertJournalEmbedding(ctx, &store.JournalEmbedding{
		EntryID:   entry.ID,
		Embedding: vector,
		Model:     s.Embedder.Model(),
		CreatedTs: now,
		UpdatedTs: now,
	}); err != nil {
		return errors.Wrap(err, "failed to upsert embedding")
	}
	return nil
}

func (s *Service) summarizeEntry(ctx context.Context, entry *store.JournalEntry) (*store.JournalSummary, error) {
	moodContext := ""
	if entry.Mood != nil {
		moodContext = *entry.Mood
		if entry.MoodIntensity != nil {
			moodContext = fmt.Sprintf("%s (%d/10)", moodContext, *entry.MoodIntensity)
		}
	}
	resp, err := s.Summarizer.Summarize(ctx, &ai.SummarizeRequest{
		Title:       entry.Title,
		Content:     markdown.PlainText(entry.Content),
		MoodContext: moodContext,
	})
	if err != nil {
		msg := err.Error()
		failed := store.JournalSummaryStatusFailed
		if _, upsertErr := s.Store.UpsertJournalSummary(ctx, &store.UpsertJournalSummary{
			EntryID:      entry.ID,
			Status:       failed,
			ErrorMessage: &msg,
		}); upsertErr != nil {
			slog.Error("failed to record summary failure", "entry", entry.ID, "error", upsertErr)
		}
		return nil, err
	}
	return s.Store.UpsertJournalSummary(ctx, &store.UpsertJournalSummary{
		EntryID:   entry.ID,
		Summary:   resp.Summary,
		Insights:  resp.Insights,
		Sentiment: &resp.Sentiment,
		Status:    store.JournalSummaryStatusCompleted,
	})
}

// UpdateEntry applies a partial update. When the title or content
// changes the stale vector-index record is replaced; if re-embedding
// fails the stale record is dropped so search never serves the old
// vector for new text, and the caller gets a warning.
func (s *Service) UpdateEntry(ctx context.Context, update *store.UpdateJournalEntry) (*IngestResult, error) {
	if update.MoodIntensity != nil &&
		(*update.MoodIntensity < store.MinMoodIntensity || *update.MoodIntensity > store.MaxMoodIntensity) {
		return nil, errors.Errorf("mood intensity must be between %d and %d", store.MinMoodIntensity, store.MaxMoodIntensity)
	}
	now := time.Now().Unix()
	update.UpdatedTs = &now

	contentChanged := update.Title != nil || update.Content != nil
	entry, err := s.Store.UpdateJournalEntry(ctx, update)
	if err != nil {
		return nil, errors.Wrap(err, "failed to update entry")
	}

	result := &IngestResult{Entry: entry}
	if contentChanged {
		if err := s.indexEntry(ctx, entry); err != nil {
			slog.Warn("re-indexing after edit failed", "entry", entry.ID, "error", err)
			if s.Metrics != nil {
				s.Metrics.RecordSideEffectError("embedding")
			}
			if delErr := s.Store.DeleteJournalEmbedding(ctx, entry.ID); delErr != nil {
				slog.Error("failed to drop stale embedding", "entry", entry.ID, "error", delErr)
			}
			result.Warnings = append(result.Warnings, WarnIndexingDelayed)
		}
	}
	return result, nil
}

// DeleteEntry removes an entry from the primary store together with
// its vector-index record and summary.
func (s *Service) DeleteEntry(ctx context.Context, creatorID int32, id int32) error {
	entry, err := s.Store.GetJournalEntry(ctx, &store.FindJournalEntry{ID: &id, CreatorID: &creatorID})
	if err != nil {
		return err
	}
	if entry == nil {
		return errors.Errorf("entry %d not found", id)
	}
	return s.Store.DeleteJournalEntry(ctx, &store.DeleteJournalEntry{ID: id})
}
