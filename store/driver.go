package store

import "context"

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() any
	Close() error

	IsInitialized(ctx context.Context) (bool, error)
	Migrate(ctx context.Context) error

	// JournalEntry model related methods.
	CreateJournalEntry(ctx context.Context, create *JournalEntry) (*JournalEntry, error)
	ListJournalEntries(ctx context.Context, find *FindJournalEntry) ([]*JournalEntry, error)
	CountJournalEntries(ctx context.Context, find *FindJournalEntry) (int64, error)
	UpdateJournalEntry(ctx context.Context, update *UpdateJournalEntry) (*JournalEntry, error)
	DeleteJournalEntry(ctx context.Context, delete *DeleteJournalEntry) error

	// JournalEmbedding model related methods.
	UpsertJournalEmbedding(ctx context.Context, upsert *JournalEmbedding) (*JournalEmbedding, error)
	ListJournalEmbeddings(ctx context.Context, find *FindJournalEmbedding) ([]*JournalEmbedding, error)
	DeleteJournalEmbedding(ctx context.Context, entryID int32) error
	VectorSearch(ctx context.Context, opts *VectorSearchOptions) ([]*EntryWithScore, error)
	FindEntriesWithoutEmbedding(ctx context.Context, find *FindEntriesWithoutEmbedding) ([]*JournalEntry, error)

	// StreakState model related methods.
	GetStreakState(ctx context.Context, creatorID int32) (*StreakState, error)
	UpsertStreakState(ctx context.Context, upsert *StreakState) (*StreakState, error)

	// DailyAnalytics model related methods.
	GetDailyAnalytics(ctx context.Context, creatorID int32, day string) (*DailyAnalytics, error)
	UpsertDailyAnalytics(ctx context.Context, upsert *DailyAnalytics) (*DailyAnalytics, error)
	ListDailyAnalytics(ctx context.Context, find *FindDailyAnalytics) ([]*DailyAnalytics, error)

	// JournalSummary model related methods.
	GetJournalSummary(ctx context.Context, entryID int32) (*JournalSummary, error)
	UpsertJournalSummary(ctx context.Context, upsert *UpsertJournalSummary) (*JournalSummary, error)
	DeleteJournalSummary(ctx context.Context, entryID int32) error
}
