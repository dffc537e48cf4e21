package journal

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/lifelog/internal/profile"
	"github.com/hrygo/lifelog/store"
)

// memDriver is an in-memory store.Driver for exercising the pipeline
// without a database.
type memDriver struct {
	mu     sync.Mutex
	nextID int32

	entries    map[int32]*store.JournalEntry
	embeddings map[int32]*store.JournalEmbedding
	streaks    map[int32]*store.StreakState
	analytics  map[string]*store.DailyAnalytics
	summaries  map[int32]*store.JournalSummary

	failStreakUpsert    bool
	failAnalyticsUpsert bool
	failVectorSearch    bool
}

func newMemDriver() *memDriver {
	return &memDriver{
		entries:    make(map[int32]*store.JournalEntry),
		embeddings: make(map[int32]*store.JournalEmbedding),
		streaks:    make(map[int32]*store.StreakState),
		analytics:  make(map[string]*store.DailyAnalytics),
		summaries:  make(map[int32]*store.JournalSummary),
	}
}

func (d *memDriver) GetDB() any { return nil }

func (d *memDriver) Close() error { return nil }

func (d *memDriver) IsInitialized(context.Context) (bool, error) { return true, nil }

func (d *memDriver) Migrate(context.Context) error { return nil }

func (d *memDriver) CreateJournalEntry(_ context.Context, create *store.JournalEntry) (*store.JournalEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	cloned := *create
	cloned.ID = d.nextID
	// Timestamps are stored exactly as supplied, like the SQL drivers do.
	d.entries[cloned.ID] = &cloned
	return &cloned, nil
}

func entryMatches(e *store.JournalEntry, find *store.FindJournalEntry) bool {
	if find.ID != nil && e.ID != *find.ID {
		return false
	}
	if find.UID != nil && e.UID != *find.UID {
		return false
	}
	if find.CreatorID != nil && e.CreatorID != *find.CreatorID {
		return false
	}
	if find.RowStatus != nil && e.RowStatus != *find.RowStatus {
		return false
	}
	if find.EntryType != nil && e.EntryType != *find.EntryType {
		return false
	}
	if find.Mood != nil && (e.Mood == nil || *e.Mood != *find.Mood) {
		return false
	}
	if find.EntryTsAfter != nil && e.EntryTs < *find.EntryTsAfter {
		return false
	}
	if find.EntryTsBefore != nil && e.EntryTs >= *find.EntryTsBefore {
		return false
	}
	return true
}

func (d *memDriver) listEntriesLocked(find *store.FindJournalEntry) []*store.JournalEntry {
	var list []*store.JournalEntry
	for _, e := range d.entries {
		if entryMatches(e, find) {
			cloned := *e
			list = append(list, &cloned)
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].EntryTs != list[j].EntryTs {
			return list[i].EntryTs > list[j].EntryTs
		}
		return list[i].ID > list[j].ID
	})
	return list
}

func (d *memDriver) ListJournalEntries(_ context.Context, find *store.FindJournalEntry) ([]*store.JournalEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.listEntriesLocked(find)
	if find.Offset != nil {
		if *find.Offset >= len(list) {
			return nil, nil
		}
		list = list[*find.Offset:]
	}
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *memDriver) CountJournalEntries(_ context.Context, find *store.FindJournalEntry) (int64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return int64(len(d.listEntriesLocked(find))), nil
}

func (d *memDriver) UpdateJournalEntry(_ context.Context, update *store.UpdateJournalEntry) (*store.JournalEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.entries[update.ID]
	if !ok {
		return nil, errors.Errorf("entry %d not found", update.ID)
	}
	if update.UpdatedTs != nil {
		e.UpdatedTs = *update.UpdatedTs
	}
	if update.Title != nil {
		e.Title = *update.Title
	}
	if update.Content != nil {
		e.Content = *update.Content
	}
	if update.EntryType != nil {
		e.EntryType = *update.EntryType
	}
	if update.Mood != nil {
		e.Mood = update.Mood
	}
	if update.MoodIntensity != nil {
		e.MoodIntensity = update.MoodIntensity
	}
	if update.EmotionTags != nil {
		e.EmotionTags = *update.EmotionTags
	}
	if update.Tags != nil {
		e.Tags = *update.Tags
	}
	if update.RowStatus != nil {
		e.RowStatus = *update.RowStatus
	}
	cloned := *e
	return &cloned, nil
}

func (d *memDriver) DeleteJournalEntry(_ context.Context, del *store.DeleteJournalEntry) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.entries[del.ID]; !ok {
		return errors.Errorf("entry %d not found", del.ID)
	}
	delete(d.entries, del.ID)
	return nil
}

func (d *memDriver) UpsertJournalEmbedding(_ context.Context, upsert *store.JournalEmbedding) (*store.JournalEmbedding, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	cloned := *upsert
	d.embeddings[upsert.EntryID] = &cloned
	return &cloned, nil
}

func (d *memDriver) ListJournalEmbeddings(_ context.Context, find *store.FindJournalEmbedding) ([]*store.JournalEmbedding, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var list []*store.JournalEmbedding
	for _, emb := range d.embeddings {
		if find.EntryID != nil && emb.EntryID != *find.EntryID {
			continue
		}
		if find.Model != nil && emb.Model != *find.Model {
			continue
		}
		cloned := *emb
		list = append(list, &cloned)
	}
	return list, nil
}

func (d *memDriver) DeleteJournalEmbedding(_ context.Context, entryID int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.embeddings, entryID)
	return nil
}

func (d *memDriver) VectorSearch(_ context.Context, opts *store.VectorSearchOptions) ([]*store.EntryWithScore, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failVectorSearch {
		return nil, errors.New("index timeout")
	}
	var results []*store.EntryWithScore
	for entryID, emb := range d.embeddings {
		if opts.Model != "" && emb.Model != opts.Model {
			continue
		}
		e, ok := d.entries[entryID]
		if !ok {
			continue
		}
		normal := store.Normal
		if !entryMatches(e, &store.FindJournalEntry{
			CreatorID:     &opts.CreatorID,
			RowStatus:     &normal,
			EntryType:     opts.EntryType,
			Mood:          opts.Mood,
			EntryTsAfter:  opts.EntryTsAfter,
			EntryTsBefore: opts.EntryTsBefore,
		}) {
			continue
		}
		cloned := *e
		results = append(results, &store.EntryWithScore{
			Entry: &cloned,
			Score: cosine(opts.Vector, emb.Embedding),
		})
	}
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

func (d *memDriver) FindEntriesWithoutEmbedding(_ context.Context, find *store.FindEntriesWithoutEmbedding) ([]*store.JournalEntry, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var list []*store.JournalEntry
	for id, e := range d.entries {
		if emb, ok := d.embeddings[id]; ok && emb.Model == find.Model {
			continue
		}
		cloned := *e
		list = append(list, &cloned)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EntryTs > list[j].EntryTs })
	if find.Limit > 0 && len(list) > find.Limit {
		list = list[:find.Limit]
	}
	return list, nil
}

func (d *memDriver) GetStreakState(_ context.Context, creatorID int32) (*store.StreakState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	state, ok := d.streaks[creatorID]
	if !ok {
		return nil, nil
	}
	cloned := *state
	return &cloned, nil
}

func (d *memDriver) UpsertStreakState(_ context.Context, upsert *store.StreakState) (*store.StreakState, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failStreakUpsert {
		return nil, errors.New("streak storage unavailable")
	}
	cloned := *upsert
	d.streaks[upsert.CreatorID] = &cloned
	return &cloned, nil
}

func analyticsKey(creatorID int32, day string) string {
	return fmt.Sprintf("%d/%s", creatorID, day)
}

func (d *memDriver) GetDailyAnalytics(_ context.Context, creatorID int32, day string) (*store.DailyAnalytics, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row, ok := d.analytics[analyticsKey(creatorID, day)]
	if !ok {
		return nil, nil
	}
	cloned := *row
	return &cloned, nil
}

func (d *memDriver) UpsertDailyAnalytics(_ context.Context, upsert *store.DailyAnalytics) (*store.DailyAnalytics, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failAnalyticsUpsert {
		return nil, errors.New("analytics storage unavailable")
	}
	cloned := *upsert
	d.analytics[analyticsKey(upsert.CreatorID, upsert.Day)] = &cloned
	return &cloned, nil
}

func (d *memDriver) ListDailyAnalytics(_ context.Context, find *store.FindDailyAnalytics) ([]*store.DailyAnalytics, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	var list []*store.DailyAnalytics
	for _, row := range d.analytics {
		if row.CreatorID != find.CreatorID {
			continue
		}
		if find.DayAfter != nil && row.Day < *find.DayAfter {
			continue
		}
		if find.DayBefore != nil && row.Day > *find.DayBefore {
			continue
		}
		cloned := *row
		list = append(list, &cloned)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Day < list[j].Day })
	if find.Limit != nil && len(list) > *find.Limit {
		list = list[:*find.Limit]
	}
	return list, nil
}

func (d *memDriver) GetJournalSummary(_ context.Context, entryID int32) (*store.JournalSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	summary, ok := d.summaries[entryID]
	if !ok {
		return nil, nil
	}
	cloned := *summary
	return &cloned, nil
}

func (d *memDriver) UpsertJournalSummary(_ context.Context, upsert *store.UpsertJournalSummary) (*store.JournalSummary, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	summary := &store.JournalSummary{
		EntryID:      upsert.EntryID,
		Summary:      upsert.Summary,
		Insights:     upsert.Insights,
		Sentiment:    upsert.Sentiment,
		Status:       upsert.Status,
		ErrorMessage: upsert.ErrorMessage,
		UpdatedTs:    time.Now().Unix(),
	}
	d.summaries[upsert.EntryID] = summary
	cloned := *summary
	return &cloned, nil
}

func (d *memDriver) DeleteJournalSummary(_ context.Context, entryID int32) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.summaries, entryID)
	return nil
}

func cosine(a, b []float32) float32 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

// fakeEmbedder returns canned vectors keyed by exact text and can be
// toggled to fail.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	fail    bool
	calls   int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) set(text string, vector []float32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.vectors[text] = vector
}

func (f *fakeEmbedder) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.fail {
		return nil, errors.New("embedding provider unavailable")
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	// Default vector keeps unknown texts searchable but dissimilar.
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return 3 }

func (f *fakeEmbedder) Model() string { return "test-embedder" }

func newTestService(driver *memDriver, embedder *fakeEmbedder) *Service {
	p := &profile.Profile{
		Timezone:      "UTC",
		SearchTimeout: 1,
	}
	st := store.New(driver, p)
	var svc *Service
	if embedder != nil {
		svc = NewService(p, st, embedder, nil, nil)
	} else {
		svc = NewService(p, st, nil, nil, nil)
	}
	return svc
}
