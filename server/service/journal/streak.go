package journal

import (
	"context"
	"time"

	"github.com/hrygo/lifelog/store"
)

// advanceStreak applies one entry on entryDay to the streak state and
// returns the updated row. prev may be nil for a first-ever entry.
//
// Day comparisons are purely calendar based:
//   - same day: only the entry total moves
//   - next day: the current streak extends
//   - later day: the current streak restarts at 1, the longest survives
//   - earlier day (backdated): the streak fields stay untouched
//
// Every entry increments TotalEntries exactly once regardless of which
// branch it lands in.
func advanceStreak(prev *store.StreakState, creatorID int32, entryDay string, now int64) (*store.StreakState, error) {
	if prev == nil {
		return &store.StreakState{
			CreatorID:       creatorID,
			CurrentStreak:   1,
			LongestStreak:   1,
			TotalEntries:    1,
			LastEntryDate:   entryDay,
			StreakStartDate: entryDay,
			UpdatedTs:       now,
		}, nil
	}

	next := *prev
	next.TotalEntries++
	next.UpdatedTs = now

	gap, err := DayGap(prev.LastEntryDate, entryDay)
	if err != nil {
		return nil, err
	}
	switch {
	case gap == 0:
		// Another entry on the already-recorded day.
	case gap == 1:
		next.CurrentStreak++
		if next.CurrentStreak > next.LongestStreak {
			next.LongestStreak = next.CurrentStreak
		}
		next.LastEntryDate = entryDay
	case gap > 1:
		next.CurrentStreak = 1
		next.StreakStartDate = entryDay
		next.LastEntryDate = entryDay
	default:
		// Backdated entry. Rewriting streak history from it would make
		// the counters order-dependent, so only the total moves.
	}
	return &next, nil
}

// RecordEntryDay folds one entry into the owner's streak state under
// the per-owner lock and persists the result.
func (s *Service) RecordEntryDay(ctx context.Context, creatorID int32, entryTs int64) (*store.StreakState, error) {
	unlock := s.locks.Lock(creatorID)
	defer unlock()
	return s.recordEntryDayLocked(ctx, creatorID, entryTs)
}

func (s *Service) recordEntryDayLocked(ctx context.Context, creatorID int32, entryTs int64) (*store.StreakState, error) {
	prev, err := s.Store.GetStreakState(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	entryDay := DayOf(entryTs, s.Profile.Location())
	next, err := advanceStreak(prev, creatorID, entryDay, time.Now().Unix())
	if err != nil {
		return nil, err
	}
	return s.Store.UpsertStreakState(ctx, next)
}

// GetStreak returns the owner's streak state, materializing a zero row
// for owners who have never journaled.
func (s *Service) GetStreak(ctx context.Context, creatorID int32) (*store.StreakState, error) {
	state, err := s.Store.GetStreakState(ctx, creatorID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return &store.StreakState{CreatorID: creatorID}, nil
	}
	return state, nil
}
