package store

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// StreakState is the per-owner journaling streak row.
//
// LastEntryDate and StreakStartDate are normalized calendar days in
// "2006-01-02" form, produced by a single normalization utility so the
// tracker and the analytics aggregator always agree on day boundaries.
// Invariant: LongestStreak >= CurrentStreak.
type StreakState struct {
	CreatorID       int32
	CurrentStreak   int32
	LongestStreak   int32
	TotalEntries    int32
	LastEntryDate   string
	StreakStartDate string
	UpdatedTs       int64
}

// Validate checks the streak row invariants before persisting.
func (s *StreakState) Validate() error {
	if s.CreatorID <= 0 {
		return errors.New("invalid creator ID")
	}
	if s.CurrentStreak < 0 || s.LongestStreak < 0 || s.TotalEntries < 0 {
		return errors.New("streak counters cannot be negative")
	}
	if s.LongestStreak < s.CurrentStreak {
		return errors.Errorf("longest streak %d below current streak %d", s.LongestStreak, s.CurrentStreak)
	}
	return nil
}

func streakCacheKey(creatorID int32) string {
	return fmt.Sprintf("streak-%d", creatorID)
}

// GetStreakState returns the streak row for an owner, or nil when the
// owner has never journaled.
func (s *Store) GetStreakState(ctx context.Context, creatorID int32) (*StreakState, error) {
	if cached, ok := s.streakCache.Get(streakCacheKey(creatorID)); ok {
		if state, ok := cached.(*StreakState); ok {
			return state, nil
		}
	}
	state, err := s.driver.GetStreakState(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if state != nil {
		s.streakCache.Set(streakCacheKey(creatorID), state)
	}
	return state, nil
}

// UpsertStreakState replaces the streak row. Callers must hold the
// per-owner serialization lock; the store itself does not sequence
// concurrent read-modify-write cycles.
func (s *Store) UpsertStreakState(ctx context.Context, upsert *StreakState) (*StreakState, error) {
	if err := upsert.Validate(); err != nil {
		return nil, err
	}
	state, err := s.driver.UpsertStreakState(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.streakCache.Set(streakCacheKey(state.CreatorID), state)
	return state, nil
}
