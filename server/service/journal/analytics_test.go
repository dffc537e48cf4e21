package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lifelog/store"
)

func intensity(v int32) *int32 { return &v }

func TestFoldEntryAnalyticsMoodAveraging(t *testing.T) {
	day := "2024-05-01"
	var row *store.DailyAnalytics

	for _, mood := range []int32{4, 6, 8} {
		row = foldEntryAnalytics(row, &store.JournalEntry{
			CreatorID:     1,
			Content:       "went for a walk",
			MoodIntensity: intensity(mood),
		}, day, 0)
	}
	require.Equal(t, int32(3), row.EntryCount)
	require.NotNil(t, row.AverageMood())
	require.InDelta(t, 6.0, *row.AverageMood(), 1e-9)

	// A mood-less entry counts toward the total but not the average.
	row = foldEntryAnalytics(row, &store.JournalEntry{
		CreatorID: 1,
		Content:   "quick note",
	}, day, 0)
	require.Equal(t, int32(4), row.EntryCount)
	require.InDelta(t, 6.0, *row.AverageMood(), 1e-9)
	require.Equal(t, int32(3), row.MoodEntryCount)
}

func TestFoldEntryAnalyticsWordsAndMultisets(t *testing.T) {
	day := "2024-05-01"
	row := foldEntryAnalytics(nil, &store.JournalEntry{
		CreatorID:   1,
		Title:       "Morning pages",
		Content:     "slept well, feeling rested",
		EmotionTags: []string{"calm", "grateful"},
		Tags:        []string{"sleep"},
	}, day, 0)
	require.Equal(t, int32(1), row.EntryCount)
	require.Equal(t, int32(6), row.WordCount)
	require.Nil(t, row.AverageMood())

	row = foldEntryAnalytics(row, &store.JournalEntry{
		CreatorID:   1,
		Content:     "long day",
		EmotionTags: []string{"calm"},
		Tags:        []string{"work", "sleep"},
	}, day, 0)
	require.Equal(t, int32(8), row.WordCount)
	require.Equal(t, []string{"calm", "grateful", "calm"}, row.Emotions)
	require.Equal(t, []string{"sleep", "work", "sleep"}, row.Tags)
}

func TestTopK(t *testing.T) {
	items := []string{"calm", "tired", "calm", "happy", "tired", "calm"}

	ranked := TopK(items, 2)
	require.Equal(t, []RankedItem{
		{Value: "calm", Count: 3},
		{Value: "tired", Count: 2},
	}, ranked)

	// Ties rank by first appearance.
	ranked = TopK([]string{"b", "a", "b", "a"}, 2)
	require.Equal(t, []RankedItem{
		{Value: "b", Count: 2},
		{Value: "a", Count: 2},
	}, ranked)

	require.Nil(t, TopK(nil, 3))
	require.Nil(t, TopK(items, 0))
	require.Len(t, TopK(items, 10), 3)
}

func TestListDailyReports(t *testing.T) {
	ctx := context.Background()
	driver := newMemDriver()
	svc := newTestService(driver, nil)

	entryAt := func(day int, mood *int32, emotions []string) *store.JournalEntry {
		return &store.JournalEntry{
			CreatorID:     1,
			Content:       "entry body text",
			EntryTs:       time.Date(2024, 5, day, 9, 0, 0, 0, time.UTC).Unix(),
			MoodIntensity: mood,
			EmotionTags:   emotions,
		}
	}

	_, err := svc.RecordEntryAnalytics(ctx, entryAt(1, intensity(5), []string{"calm"}))
	require.NoError(t, err)
	_, err = svc.RecordEntryAnalytics(ctx, entryAt(1, intensity(7), []string{"calm", "hopeful"}))
	require.NoError(t, err)
	_, err = svc.RecordEntryAnalytics(ctx, entryAt(3, nil, nil))
	require.NoError(t, err)

	reports, err := svc.ListDailyReports(ctx, &store.FindDailyAnalytics{CreatorID: 1})
	require.NoError(t, err)
	require.Len(t, reports, 2)

	require.Equal(t, "2024-05-01", reports[0].Day)
	require.Equal(t, int32(2), reports[0].EntryCount)
	require.NotNil(t, reports[0].AverageMood)
	require.InDelta(t, 6.0, *reports[0].AverageMood, 1e-9)
	require.Equal(t, []RankedItem{
		{Value: "calm", Count: 2},
		{Value: "hopeful", Count: 1},
	}, reports[0].DominantEmotions)

	require.Equal(t, "2024-05-03", reports[1].Day)
	require.Nil(t, reports[1].AverageMood)
}
