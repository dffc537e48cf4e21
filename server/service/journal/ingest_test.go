package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lifelog/store"
)

func TestIngestHappyPath(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	embedder := newFakeEmbedder()
	svc := newTestService(driver, embedder)

	mood := "calm"
	result, err := svc.Ingest(ctx, &IngestRequest{
		CreatorID:     1,
		Title:         "Evening review",
		Content:       "wrapped up the week, feeling settled",
		Mood:          &mood,
		MoodIntensity: intensity(6),
		EmotionTags:   []string{"calm"},
		Tags:          []string{"weekly"},
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)
	require.NotZero(t, result.Entry.ID)

	// Entry persisted.
	require.Len(t, driver.entries, 1)

	// Vector index record written.
	embs, err := driver.ListJournalEmbeddings(ctx, &store.FindJournalEmbedding{EntryID: &result.Entry.ID})
	require.NoError(t, err)
	require.Len(t, embs, 1)
	require.Equal(t, "test-embedder", embs[0].Model)

	// Streak and analytics moved.
	state, err := svc.GetStreak(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), state.TotalEntries)

	day := DayOf(result.Entry.EntryTs, time.UTC)
	row, err := svc.Store.GetDailyAnalytics(ctx, 1, day)
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int32(1), row.EntryCount)
	require.InDelta(t, 6.0, *row.AverageMood(), 1e-9)
}

func TestIngestStampsTimestamps(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	embedder := newFakeEmbedder()
	svc := newTestService(driver, embedder)

	before := time.Now().Unix()
	result, err := svc.Ingest(ctx, &IngestRequest{
		CreatorID: 1,
		Content:   "first entry of the day",
	})
	require.NoError(t, err)
	require.Empty(t, result.Warnings)

	require.NotZero(t, result.Entry.CreatedTs)
	require.GreaterOrEqual(t, result.Entry.CreatedTs, before)
	require.Equal(t, result.Entry.CreatedTs, result.Entry.UpdatedTs)

	// The vector index record is stamped as well.
	embs, err := driver.ListJournalEmbeddings(ctx, &store.FindJournalEmbedding{EntryID: &result.Entry.ID})
	require.NoError(t, err)
	require.Len(t, embs, 1)
	require.NotZero(t, embs[0].CreatedTs)
	require.NotZero(t, embs[0].UpdatedTs)
}

func TestIngestValidation(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	svc := newTestService(driver, nil)

	_, err := svc.Ingest(ctx, &IngestRequest{CreatorID: 1})
	require.Error(t, err)

	_, err = svc.Ingest(ctx, &IngestRequest{
		CreatorID:     1,
		Content:       "fine",
		MoodIntensity: intensity(11),
	})
	require.Error(t, err)

	// Fatal validation means no side effects at all.
	require.Empty(t, driver.entries)
	require.Empty(t, driver.streaks)
	require.Empty(t, driver.analytics)
}

func TestIngestDegradedOnEmbeddingFailure(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	embedder := newFakeEmbedder()
	embedder.setFail(true)
	svc := newTestService(driver, embedder)

	result, err := svc.Ingest(ctx, &IngestRequest{
		CreatorID: 1,
		Content:   "provider is down today",
	})
	require.NoError(t, err)
	require.Equal(t, []string{WarnIndexingDelayed}, result.Warnings)

	// Entry persisted without an index record.
	require.Len(t, driver.entries, 1)
	require.Empty(t, driver.embeddings)

	// Streak and analytics still applied.
	state, err := svc.GetStreak(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), state.TotalEntries)

	// Semantic search misses the entry, filtered listing finds it.
	embedder.setFail(false)
	searched, err := svc.Search(ctx, &SearchRequest{CreatorID: 1, Query: "provider"})
	require.NoError(t, err)
	require.Empty(t, searched.Entries)

	listed, err := svc.Search(ctx, &SearchRequest{CreatorID: 1})
	require.NoError(t, err)
	require.Len(t, listed.Entries, 1)
}

func TestIngestStreakFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	driver.failStreakUpsert = true
	svc := newTestService(driver, newFakeEmbedder())

	result, err := svc.Ingest(ctx, &IngestRequest{
		CreatorID: 1,
		Content:   "still worth keeping",
	})
	require.NoError(t, err)
	require.Contains(t, result.Warnings, WarnStreakFailed)
	require.Len(t, driver.entries, 1)

	// Analytics proceeded independently.
	require.Len(t, driver.analytics, 1)
}

func TestIngestAnalyticsFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	driver.failAnalyticsUpsert = true
	svc := newTestService(driver, newFakeEmbedder())

	result, err := svc.Ingest(ctx, &IngestRequest{
		CreatorID: 1,
		Content:   "still worth keeping",
	})
	require.NoError(t, err)
	require.Contains(t, result.Warnings, WarnAnalyticsFailed)
	require.Len(t, driver.entries, 1)
	require.Len(t, driver.streaks, 1)
}

func TestIngestBackdatedEntry(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemDriver(), nil)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	_, err := svc.Ingest(ctx, &IngestRequest{
		CreatorID: 1,
		Content:   "today",
		EntryTs:   now.Unix(),
	})
	require.NoError(t, err)

	// Backfilled entry a week earlier must not rewrite the streak.
	_, err = svc.Ingest(ctx, &IngestRequest{
		CreatorID: 1,
		Content:   "catching up on last week",
		EntryTs:   now.AddDate(0, 0, -7).Unix(),
	})
	require.NoError(t, err)

	state, err := svc.GetStreak(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, int32(1), state.CurrentStreak)
	require.Equal(t, int32(2), state.TotalEntries)
	require.Equal(t, "2024-05-10", state.LastEntryDate)

	// Analytics attributed the entry to its own day.
	row, err := svc.Store.GetDailyAnalytics(ctx, 1, "2024-05-03")
	require.NoError(t, err)
	require.NotNil(t, row)
	require.Equal(t, int32(1), row.EntryCount)
}

func TestUpdateEntryReindexes(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	embedder := newFakeEmbedder()
	svc := newTestService(driver, embedder)

	result, err := svc.Ingest(ctx, &IngestRequest{CreatorID: 1, Content: "first draft"})
	require.NoError(t, err)
	before := embedder.calls

	content := "second draft, completely rewritten"
	updated, err := svc.UpdateEntry(ctx, &store.UpdateJournalEntry{
		ID:      result.Entry.ID,
		Content: &content,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Warnings)
	require.Equal(t, content, updated.Entry.Content)
	require.Greater(t, embedder.calls, before)
}

func TestUpdateEntryDropsStaleEmbeddingOnFailure(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	embedder := newFakeEmbedder()
	svc := newTestService(driver, embedder)

	result, err := svc.Ingest(ctx, &IngestRequest{CreatorID: 1, Content: "first draft"})
	require.NoError(t, err)
	require.Len(t, driver.embeddings, 1)

	embedder.setFail(true)
	content := "new text the index never saw"
	updated, err := svc.UpdateEntry(ctx, &store.UpdateJournalEntry{
		ID:      result.Entry.ID,
		Content: &content,
	})
	require.NoError(t, err)
	require.Equal(t, []string{WarnIndexingDelayed}, updated.Warnings)

	// The stale vector must not survive the edit.
	require.Empty(t, driver.embeddings)
}

func TestUpdateEntryMoodOnlySkipsReindex(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	embedder := newFakeEmbedder()
	svc := newTestService(driver, embedder)

	result, err := svc.Ingest(ctx, &IngestRequest{CreatorID: 1, Content: "stable text"})
	require.NoError(t, err)
	before := embedder.calls

	mood := "tired"
	_, err = svc.UpdateEntry(ctx, &store.UpdateJournalEntry{
		ID:   result.Entry.ID,
		Mood: &mood,
	})
	require.NoError(t, err)
	require.Equal(t, before, embedder.calls)
}

func TestDeleteEntryCascades(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	svc := newTestService(driver, newFakeEmbedder())

	result, err := svc.Ingest(ctx, &IngestRequest{CreatorID: 1, Content: "to be removed"})
	require.NoError(t, err)
	require.Len(t, driver.embeddings, 1)

	require.NoError(t, svc.DeleteEntry(ctx, 1, result.Entry.ID))
	require.Empty(t, driver.entries)
	require.Empty(t, driver.embeddings)

	// Deleting again, or as another owner, fails cleanly.
	require.Error(t, svc.DeleteEntry(ctx, 1, result.Entry.ID))
}

func TestDeleteEntryOwnerScoped(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	svc := newTestService(driver, nil)

	result, err := svc.Ingest(ctx, &IngestRequest{CreatorID: 1, Content: "mine"})
	require.NoError(t, err)

	require.Error(t, svc.DeleteEntry(ctx, 2, result.Entry.ID))
	require.Len(t, driver.entries, 1)
}
