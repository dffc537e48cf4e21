package journal

import (
	"context"
	"sort"
	"time"

	"github.com/hrygo/lifelog/plugin/markdown"
	"github.com/hrygo/lifelog/store"
)

// DefaultTopK bounds the dominant emotion/tag lists returned from the
// analytics read path.
const DefaultTopK = 5

// foldEntryAnalytics applies one entry to the day rollup and returns
// the updated row. prev may be nil when no entry has landed on the day
// yet. Word counts split plain text on whitespace, which approximates
// but does not match any tokenizer.
func foldEntryAnalytics(prev *store.DailyAnalytics, entry *store.JournalEntry, day string, now int64) *store.DailyAnalytics {
	words := int32(markdown.WordCount(entry.Title + "\n" + entry.Content))

	next := &store.DailyAnalytics{
		CreatorID: entry.CreatorID,
		Day:       day,
		UpdatedTs: now,
	}
	if prev != nil {
		next.EntryCount = prev.EntryCount
		next.WordCount = prev.WordCount
		next.MoodSum = prev.MoodSum
		next.MoodEntryCount = prev.MoodEntryCount
		next.Emotions = append(next.Emotions, prev.Emotions...)
		next.Tags = append(next.Tags, prev.Tags...)
	}

	next.EntryCount++
	next.WordCount += words
	if entry.MoodIntensity != nil {
		next.MoodSum += float64(*entry.MoodIntensity)
		next.MoodEntryCount++
	}
	// Append, not dedup. The multisets feed top-K reduction at read time.
	next.Emotions = append(next.Emotions, entry.EmotionTags...)
	next.Tags = append(next.Tags, entry.Tags...)
	return next
}

// RecordEntryAnalytics folds one entry into its day rollup under the
// per-owner lock and persists the result.
func (s *Service) RecordEntryAnalytics(ctx context.Context, entry *store.JournalEntry) (*store.DailyAnalytics, error) {
	unlock := s.locks.Lock(entry.CreatorID)
	defer unlock()
	return s.recordEntryAnalyticsLocked(ctx, entry)
}

func (s *Service) recordEntryAnalyticsLocked(ctx context.Context, entry *store.JournalEntry) (*store.DailyAnalytics, error) {
	day := DayOf(entry.EntryTs, s.Profile.Location())
	prev, err := s.Store.GetDailyAnalytics(ctx, entry.CreatorID, day)
	if err != nil {
		return nil, err
	}
	next := foldEntryAnalytics(prev, entry, day, time.Now().Unix())
	return s.Store.UpsertDailyAnalytics(ctx, next)
}

// RankedItem is one reduced multiset entry.
type RankedItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// TopK reduces a multiset to its k most frequent values. Ties rank by
// first appearance in the multiset so output is deterministic.
func TopK(items []string, k int) []RankedItem {
	if k <= 0 || len(items) == 0 {
		return nil
	}
	counts := make(map[string]int, len(items))
	firstSeen := make(map[string]int, len(items))
	order := make([]string, 0, len(items))
	for i, item := range items {
		if _, ok := counts[item]; !ok {
			firstSeen[item] = i
			order = append(order, item)
		}
		counts[item]++
	}
	sort.SliceStable(order, func(a, b int) bool {
		if counts[order[a]] != counts[order[b]] {
			return counts[order[a]] > counts[order[b]]
		}
		return firstSeen[order[a]] < firstSeen[order[b]]
	})
	if len(order) > k {
		order = order[:k]
	}
	ranked := make([]RankedItem, len(order))
	for i, v := range order {
		ranked[i] = RankedItem{Value: v, Count: counts[v]}
	}
	return ranked
}

// DailyReport is the read-side projection of a rollup row: the mood
// average materialized and the multisets reduced to top-K.
type DailyReport struct {
	Day              string       `json:"day"`
	EntryCount       int32        `json:"entryCount"`
	WordCount        int32        `json:"wordCount"`
	AverageMood      *float64     `json:"averageMood"`
	DominantEmotions []RankedItem `json:"dominantEmotions"`
	TopTags          []RankedItem `json:"topTags"`
}

// ListDailyReports returns reduced rollups for a day range, ordered by
// day ascending.
func (s *Service) ListDailyReports(ctx context.Context, find *store.FindDailyAnalytics) ([]*DailyReport, error) {
	rows, err := s.Store.ListDailyAnalytics(ctx, find)
	if err != nil {
		return nil, err
	}
	reports := make([]*DailyReport, len(rows))
	for i, row := range rows {
		reports[i] = &DailyReport{
			Day:              row.Day,
			EntryCount:       row.EntryCount,
			WordCount:        row.WordCount,
			AverageMood:      row.AverageMood(),
			DominantEmotions: TopK(row.Emotions, DefaultTopK),
			TopTags:          TopK(row.Tags, DefaultTopK),
		}
	}
	return reports, nil
}
