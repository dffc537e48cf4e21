package journal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/lifelog/store"
)

func TestAdvanceStreak(t *testing.T) {
	base := &store.StreakState{
		CreatorID:       1,
		CurrentStreak:   3,
		LongestStreak:   5,
		TotalEntries:    10,
		LastEntryDate:   "2024-03-10",
		StreakStartDate: "2024-03-08",
	}

	tests := []struct {
		name string
		prev *store.StreakState
		day  string
		want store.StreakState
	}{
		{
			name: "first entry ever",
			prev: nil,
			day:  "2024-03-10",
			want: store.StreakState{
				CreatorID: 1, CurrentStreak: 1, LongestStreak: 1, TotalEntries: 1,
				LastEntryDate: "2024-03-10", StreakStartDate: "2024-03-10",
			},
		},
		{
			name: "same day only moves the total",
			prev: base,
			day:  "2024-03-10",
			want: store.StreakState{
				CreatorID: 1, CurrentStreak: 3, LongestStreak: 5, TotalEntries: 11,
				LastEntryDate: "2024-03-10", StreakStartDate: "2024-03-08",
			},
		},
		{
			name: "consecutive day extends",
			prev: base,
			day:  "2024-03-11",
			want: store.StreakState{
				CreatorID: 1, CurrentStreak: 4, LongestStreak: 5, TotalEntries: 11,
				LastEntryDate: "2024-03-11", StreakStartDate: "2024-03-08",
			},
		},
		{
			name: "extension can set a new longest",
			prev: &store.StreakState{
				CreatorID: 1, CurrentStreak: 5, LongestStreak: 5, TotalEntries: 10,
				LastEntryDate: "2024-03-10", StreakStartDate: "2024-03-06",
			},
			day: "2024-03-11",
			want: store.StreakState{
				CreatorID: 1, CurrentStreak: 6, LongestStreak: 6, TotalEntries: 11,
				LastEntryDate: "2024-03-11", StreakStartDate: "2024-03-06",
			},
		},
		{
			name: "gap resets current, keeps longest",
			prev: base,
			day:  "2024-03-13",
			want: store.StreakState{
				CreatorID: 1, CurrentStreak: 1, LongestStreak: 5, TotalEntries: 11,
				LastEntryDate: "2024-03-13", StreakStartDate: "2024-03-13",
			},
		},
		{
			name: "backdated entry leaves streak untouched",
			prev: base,
			day:  "2024-03-01",
			want: store.StreakState{
				CreatorID: 1, CurrentStreak: 3, LongestStreak: 5, TotalEntries: 11,
				LastEntryDate: "2024-03-10", StreakStartDate: "2024-03-08",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := advanceStreak(tt.prev, 1, tt.day, 1234)
			require.NoError(t, err)
			got.UpdatedTs = 0
			require.Equal(t, tt.want, *got)
			require.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak)
		})
	}
}

func TestAdvanceStreakMonotonicity(t *testing.T) {
	days := []string{
		"2024-01-01", "2024-01-02", "2024-01-03",
		"2024-01-07", "2024-01-08",
		"2024-02-01", "2024-02-02", "2024-02-03", "2024-02-04",
	}
	var state *store.StreakState
	prevLongest := int32(0)
	for _, day := range days {
		next, err := advanceStreak(state, 1, day, 0)
		require.NoError(t, err)
		require.GreaterOrEqual(t, next.LongestStreak, next.CurrentStreak)
		require.GreaterOrEqual(t, next.LongestStreak, prevLongest)
		prevLongest = next.LongestStreak
		state = next
	}
	require.Equal(t, int32(4), state.CurrentStreak)
	require.Equal(t, int32(4), state.LongestStreak)
	require.Equal(t, int32(len(days)), state.TotalEntries)
}

func TestRecordEntryDayEndToEnd(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(newMemDriver(), nil)

	day := func(d int) int64 {
		return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC).Unix()
	}

	state, err := svc.RecordEntryDay(ctx, 7, day(1))
	require.NoError(t, err)
	require.Equal(t, int32(1), state.CurrentStreak)
	require.Equal(t, int32(1), state.LongestStreak)

	state, err = svc.RecordEntryDay(ctx, 7, day(2))
	require.NoError(t, err)
	require.Equal(t, int32(2), state.CurrentStreak)
	require.Equal(t, int32(2), state.LongestStreak)

	// Day 3 skipped.
	state, err = svc.RecordEntryDay(ctx, 7, day(4))
	require.NoError(t, err)
	require.Equal(t, int32(1), state.CurrentStreak)
	require.Equal(t, int32(2), state.LongestStreak)
	require.Equal(t, int32(3), state.TotalEntries)
	require.Equal(t, "2024-05-04", state.LastEntryDate)
}

func TestGetStreakNoHistory(t *testing.T) {
	svc := newTestService(newMemDriver(), nil)
	state, err := svc.GetStreak(context.Background(), 42)
	require.NoError(t, err)
	require.Equal(t, int32(42), state.CreatorID)
	require.Zero(t, state.CurrentStreak)
	require.Zero(t, state.TotalEntries)
}
