package logbooks

import (
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Entry is a dated logbook collection. An account gets at most one entry per
// calendar day; TotalSpent is denormalized and maintained by the item layer.
type Entry struct {
	ID         int64
	AccountID  int64
	EntryDate  time.Time
	TotalSpent money.Cents
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

var (
	// ErrEntryNotFound indicates the entry is absent or owned by someone else.
	ErrEntryNotFound = fmt.Errorf("logbooks: entry %w", shared.ErrNotFound)
	// ErrEntryExists indicates the account already has an entry for that day.
	ErrEntryExists = fmt.Errorf("logbooks: an entry for that day already exists: %w", shared.ErrConflict)
	// ErrInvalidDate indicates the supplied date could not be parsed.
	ErrInvalidDate = fmt.Errorf("logbooks: date must be formatted YYYY-MM-DD: %w", shared.ErrInvalidArgument)
)
