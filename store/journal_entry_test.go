package store

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestJournalEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   JournalEntry
		wantErr bool
	}{
		{
			name:  "content only",
			entry: JournalEntry{CreatorID: 1, Content: "hello"},
		},
		{
			name:  "title only",
			entry: JournalEntry{CreatorID: 1, Title: "hello"},
		},
		{
			name:    "missing creator",
			entry:   JournalEntry{Content: "hello"},
			wantErr: true,
		},
		{
			name:    "no title and no content",
			entry:   JournalEntry{CreatorID: 1},
			wantErr: true,
		},
		{
			name:  "intensity in range",
			entry: JournalEntry{CreatorID: 1, Content: "x", MoodIntensity: ptr(int32(10))},
		},
		{
			name:    "intensity too high",
			entry:   JournalEntry{CreatorID: 1, Content: "x", MoodIntensity: ptr(int32(11))},
			wantErr: true,
		},
		{
			name:    "intensity too low",
			entry:   JournalEntry{CreatorID: 1, Content: "x", MoodIntensity: ptr(int32(0))},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestStreakStateValidate(t *testing.T) {
	require.NoError(t, (&StreakState{CreatorID: 1, CurrentStreak: 2, LongestStreak: 5}).Validate())
	require.Error(t, (&StreakState{CreatorID: 1, CurrentStreak: 5, LongestStreak: 2}).Validate())
	require.Error(t, (&StreakState{CurrentStreak: 1, LongestStreak: 1}).Validate())
	require.Error(t, (&StreakState{CreatorID: 1, CurrentStreak: -1, LongestStreak: 0}).Validate())
}

func TestDailyAnalyticsAverageMood(t *testing.T) {
	row := &DailyAnalytics{CreatorID: 1, Day: "2024-05-01", EntryCount: 4, MoodSum: 18, MoodEntryCount: 3}
	require.InDelta(t, 6.0, *row.AverageMood(), 1e-9)

	row.MoodEntryCount = 0
	require.Nil(t, row.AverageMood())
}

func TestDailyAnalyticsValidate(t *testing.T) {
	require.NoError(t, (&DailyAnalytics{CreatorID: 1, Day: "2024-05-01", EntryCount: 2, MoodEntryCount: 2}).Validate())
	require.Error(t, (&DailyAnalytics{CreatorID: 1, Day: "2024-05-01", EntryCount: 1, MoodEntryCount: 2}).Validate())
	require.Error(t, (&DailyAnalytics{CreatorID: 1}).Validate())
	require.Error(t, (&DailyAnalytics{Day: "2024-05-01"}).Validate())
}
