package overviews

import (
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Group is a named overview collection owned by one account. TotalSpent is
// denormalized and maintained by the item layer on every mutation.
type Group struct {
	ID         int64
	AccountID  int64
	Name       string
	TotalSpent money.Cents
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CategoryBreakdown is one summary row: how many items a category holds and
// what they add up to.
type CategoryBreakdown struct {
	Category string
	Count    int
	Total    money.Cents
}

// Summary is the aggregated view of one group.
type Summary struct {
	GroupID    int64
	Name       string
	TotalSpent money.Cents
	ItemCount  int
	Categories []CategoryBreakdown
}

// ErrGroupNotFound indicates the group is absent or owned by someone else.
var ErrGroupNotFound = fmt.Errorf("overviews: group %w", shared.ErrNotFound)
