package ledger

import (
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// ParentKind distinguishes the two collection types that own items.
type ParentKind string

const (
	// ParentOverview is a budget overview group.
	ParentOverview ParentKind = "overview"
	// ParentLogbook is a dated logbook entry.
	ParentLogbook ParentKind = "logbook"
)

// ParentRef points at exactly one parent collection.
type ParentRef struct {
	Kind ParentKind
	ID   int64
}

// Category enumerates the closed set of item categories. Overview items are
// recurring or incoming; logbook items are need, planned, or impulse.
type Category string

const (
	// CategoryRecurring marks a recurring overview cost.
	CategoryRecurring Category = "recurring"
	// CategoryIncoming marks expected incoming money on an overview; it is
	// informational and does not count toward the parent total.
	CategoryIncoming Category = "incoming"
	// CategoryNeed marks a necessary logbook purchase.
	CategoryNeed Category = "need"
	// CategoryPlanned marks a planned logbook purchase.
	CategoryPlanned Category = "planned"
	// CategoryImpulse marks an impulse logbook purchase.
	CategoryImpulse Category = "impulse"
)

// AllowedFor reports whether the category is valid under the parent kind.
func (c Category) AllowedFor(kind ParentKind) bool {
	switch kind {
	case ParentOverview:
		return c == CategoryRecurring || c == CategoryIncoming
	case ParentLogbook:
		return c == CategoryNeed || c == CategoryPlanned || c == CategoryImpulse
	default:
		return false
	}
}

// CostBearing reports whether the category's cost counts toward the parent's
// running total.
func (c Category) CostBearing() bool {
	return c != CategoryIncoming
}

// Item is a purchase-like record ranked within its parent collection.
type Item struct {
	ID          int64
	Parent      ParentRef
	Category    Category
	Description string
	Cost        *money.Cents
	Placement   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewItemInput describes an item to append to a parent.
type NewItemInput struct {
	Category    Category
	Description string
	Cost        *money.Cents
}

// UpdateItemInput is a partial update of cost, category, and description.
// Placement changes are a separate operation because they ripple across
// siblings.
type UpdateItemInput struct {
	Category    *Category
	Description *string
	Cost        *money.Cents
	ClearCost   bool
}

// PlacementUpdate assigns a placement to one item during resequencing.
type PlacementUpdate struct {
	ItemID    int64
	Placement int
}

var (
	// ErrParentNotFound indicates the referenced parent collection is absent.
	ErrParentNotFound = fmt.Errorf("ledger: parent collection %w", shared.ErrNotFound)
	// ErrItemNotFound indicates the referenced item is absent.
	ErrItemNotFound = fmt.Errorf("ledger: item %w", shared.ErrNotFound)
	// ErrPlacementOutOfRange indicates a target placement outside 1..count.
	ErrPlacementOutOfRange = fmt.Errorf("ledger: placement out of range: %w", shared.ErrInvalidArgument)
	// ErrReorderSetMismatch indicates a reorder list that does not cover the
	// parent's items exactly. Rejecting beats a silent partial reorder, which
	// would corrupt the placement sequence.
	ErrReorderSetMismatch = fmt.Errorf("ledger: reorder list does not match the parent's items: %w", shared.ErrInvalidArgument)
	// ErrInvalidCategory indicates a category outside the parent kind's set.
	ErrInvalidCategory = fmt.Errorf("ledger: category not valid for this collection: %w", shared.ErrInvalidArgument)
)
