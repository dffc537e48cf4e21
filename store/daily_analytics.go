package store

import (
	"context"

	"github.com/pkg/errors"
)

// DailyAnalytics is the per-owner, per-calendar-day rollup row.
//
// MoodSum/MoodEntryCount track the mood average separately from
// EntryCount: mood-less entries increment EntryCount but must not skew
// the average. Emotions and Tags are append-only multisets (duplicates
// intended); top-K reduction happens at read time.
type DailyAnalytics struct {
	CreatorID      int32
	Day            string // normalized calendar day, "2006-01-02"
	EntryCount     int32
	WordCount      int32
	MoodSum        float64
	MoodEntryCount int32
	Emotions       []string
	Tags           []string
	UpdatedTs      int64
}

// AverageMood returns the running mood average, or nil when no entry of
// the day reported a mood.
func (a *DailyAnalytics) AverageMood() *float64 {
	if a.MoodEntryCount == 0 {
		return nil
	}
	avg := a.MoodSum / float64(a.MoodEntryCount)
	return &avg
}

// Validate checks the rollup row invariants before persisting.
func (a *DailyAnalytics) Validate() error {
	if a.CreatorID <= 0 {
		return errors.New("invalid creator ID")
	}
	if a.Day == "" {
		return errors.New("day required")
	}
	if a.EntryCount < 0 || a.WordCount < 0 || a.MoodEntryCount < 0 {
		return errors.New("analytics counters cannot be negative")
	}
	if a.MoodEntryCount > a.EntryCount {
		return errors.New("mood entry count cannot exceed entry count")
	}
	return nil
}

// FindDailyAnalytics is the find condition for analytics rows.
// DayAfter/DayBefore are inclusive bounds on the normalized day.
type FindDailyAnalytics struct {
	CreatorID int32
	DayAfter  *string
	DayBefore *string
	Limit     *int
}

// GetDailyAnalytics returns the rollup for (creatorID, day), or nil when
// no entry has been written on that day yet.
func (s *Store) GetDailyAnalytics(ctx context.Context, creatorID int32, day string) (*DailyAnalytics, error) {
	return s.driver.GetDailyAnalytics(ctx, creatorID, day)
}

// UpsertDailyAnalytics replaces the rollup row. Callers must hold the
// per-owner serialization lock.
func (s *Store) UpsertDailyAnalytics(ctx context.Context, upsert *DailyAnalytics) (*DailyAnalytics, error) {
	if err := upsert.Validate(); err != nil {
		return nil, err
	}
	return s.driver.UpsertDailyAnalytics(ctx, upsert)
}

// ListDailyAnalytics lists rollup rows ordered by day ascending.
func (s *Store) ListDailyAnalytics(ctx context.Context, find *FindDailyAnalytics) ([]*DailyAnalytics, error) {
	if find.CreatorID <= 0 {
		return nil, errors.New("invalid creator ID")
	}
	return s.driver.ListDailyAnalytics(ctx, find)
}
