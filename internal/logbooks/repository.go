package logbooks

import (
	"context"
	"time"
)

// RepositoryPort is the persistence contract for logbook entries.
type RepositoryPort interface {
	// CreateEntry inserts an entry, returning ErrEntryExists when the
	// account already has one for that day.
	CreateEntry(ctx context.Context, entry Entry) (int64, error)
	// ListEntries returns the account's entries inside [from, to], newest
	// first. Zero bounds mean unbounded.
	ListEntries(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error)
	FindEntry(ctx context.Context, entryID int64) (Entry, error)
	// DeleteEntry removes the entry and cascades its items. Returns the
	// number of entries deleted.
	DeleteEntry(ctx context.Context, entryID int64) (int64, error)
}
