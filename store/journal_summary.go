package store

import "context"

// JournalSummaryStatus represents the generation status of an entry summary.
type JournalSummaryStatus string

const (
	// JournalSummaryStatusPending means the summary has not been generated yet.
	JournalSummaryStatusPending JournalSummaryStatus = "PENDING"
	// JournalSummaryStatusGenerating means the summary is being generated.
	JournalSummaryStatusGenerating JournalSummaryStatus = "GENERATING"
	// JournalSummaryStatusCompleted means the summary has been generated successfully.
	JournalSummaryStatusCompleted JournalSummaryStatus = "COMPLETED"
	// JournalSummaryStatusFailed means the summary generation failed.
	JournalSummaryStatusFailed JournalSummaryStatus = "FAILED"
)

// JournalSummary is the AI-generated summary of an entry. Generation is
// best-effort; a missing or FAILED row never blocks the entry itself.
type JournalSummary struct {
	ID           int32
	EntryID      int32
	Summary      string
	Insights     []string
	Sentiment    *string
	Status       JournalSummaryStatus
	ErrorMessage *string
	CreatedTs    int64
	UpdatedTs    int64
}

// UpsertJournalSummary is the upsert condition for an entry summary.
type UpsertJournalSummary struct {
	EntryID      int32
	Summary      string
	Insights     []string
	Sentiment    *string
	Status       JournalSummaryStatus
	ErrorMessage *string
}

// GetJournalSummary gets the summary of a specific entry, or nil when absent.
func (s *Store) GetJournalSummary(ctx context.Context, entryID int32) (*JournalSummary, error) {
	return s.driver.GetJournalSummary(ctx, entryID)
}

// UpsertJournalSummary inserts or updates an entry summary.
func (s *Store) UpsertJournalSummary(ctx context.Context, upsert *UpsertJournalSummary) (*JournalSummary, error) {
	return s.driver.UpsertJournalSummary(ctx, upsert)
}

// DeleteJournalSummary deletes an entry summary. Idempotent.
func (s *Store) DeleteJournalSummary(ctx context.Context, entryID int32) error {
	return s.driver.DeleteJournalSummary(ctx, entryID)
}
