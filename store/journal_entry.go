package store

import (
	"context"

	"github.com/pkg/errors"
)

// RowStatus is the visibility lifecycle of a stored row.
type RowStatus string

const (
	// Normal is the status for a normal row.
	Normal RowStatus = "NORMAL"
	// Archived is the status for an archived row.
	Archived RowStatus = "ARCHIVED"
)

// Mood intensity bounds. Intensity is a 1-10 self-reported scale.
const (
	MinMoodIntensity = 1
	MaxMoodIntensity = 10
)

// JournalEntry is a single journal entry.
//
// EntryTs is the user-specified attribution timestamp and may be backdated;
// it, not CreatedTs, decides which calendar day the entry belongs to for
// streak and analytics purposes. The embedding lives in a separate
// journal_embedding row: its absence is a valid state meaning the entry is
// simply excluded from semantic search.
type JournalEntry struct {
	ID  int32
	UID string

	// Standard fields
	CreatorID int32
	CreatedTs int64
	UpdatedTs int64
	EntryTs   int64
	RowStatus RowStatus

	// Domain specific fields
	Title         string
	Content       string
	EntryType     string
	Mood          *string
	MoodIntensity *int32
	EmotionTags   []string
	Tags          []string
}

// Validate checks the required-field constraints for entry creation.
func (e *JournalEntry) Validate() error {
	if e.CreatorID <= 0 {
		return errors.New("invalid creator ID")
	}
	if e.Title == "" && e.Content == "" {
		return errors.New("entry must have a title or content")
	}
	if e.MoodIntensity != nil && (*e.MoodIntensity < MinMoodIntensity || *e.MoodIntensity > MaxMoodIntensity) {
		return errors.Errorf("mood intensity must be between %d and %d", MinMoodIntensity, MaxMoodIntensity)
	}
	return nil
}

// FindJournalEntry is the find condition for journal entries.
// All set fields are combined conjunctively.
type FindJournalEntry struct {
	ID        *int32
	UID       *string
	CreatorID *int32
	RowStatus *RowStatus
	EntryType *string
	Mood      *string

	// EntryTsAfter/EntryTsBefore bound the attribution timestamp
	// (inclusive lower, exclusive upper).
	EntryTsAfter  *int64
	EntryTsBefore *int64

	Limit  *int
	Offset *int
}

// UpdateJournalEntry is the update condition for a journal entry.
// Nil fields are left untouched.
type UpdateJournalEntry struct {
	ID            int32
	UpdatedTs     *int64
	Title         *string
	Content       *string
	EntryType     *string
	Mood          *string
	MoodIntensity *int32
	EmotionTags   *[]string
	Tags          *[]string
	RowStatus     *RowStatus
}

// DeleteJournalEntry is the delete condition for a journal entry.
type DeleteJournalEntry struct {
	ID int32
}

func (s *Store) CreateJournalEntry(ctx context.Context, create *JournalEntry) (*JournalEntry, error) {
	return s.driver.CreateJournalEntry(ctx, create)
}

// GetJournalEntry gets a single entry matching find, or nil when absent.
func (s *Store) GetJournalEntry(ctx context.Context, find *FindJournalEntry) (*JournalEntry, error) {
	limit := 1
	cloned := *find
	cloned.Limit = &limit
	list, err := s.driver.ListJournalEntries(ctx, &cloned)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) ListJournalEntries(ctx context.Context, find *FindJournalEntry) ([]*JournalEntry, error) {
	return s.driver.ListJournalEntries(ctx, find)
}

func (s *Store) CountJournalEntries(ctx context.Context, find *FindJournalEntry) (int64, error) {
	return s.driver.CountJournalEntries(ctx, find)
}

func (s *Store) UpdateJournalEntry(ctx context.Context, update *UpdateJournalEntry) (*JournalEntry, error) {
	return s.driver.UpdateJournalEntry(ctx, update)
}

// DeleteJournalEntry deletes an entry and its dependent rows (embedding,
// summary). The dependent deletes are idempotent.
func (s *Store) DeleteJournalEntry(ctx context.Context, delete *DeleteJournalEntry) error {
	if err := s.driver.DeleteJournalEntry(ctx, delete); err != nil {
		return err
	}
	if err := s.driver.DeleteJournalEmbedding(ctx, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete journal embedding")
	}
	if err := s.driver.DeleteJournalSummary(ctx, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete journal summary")
	}
	return nil
}
