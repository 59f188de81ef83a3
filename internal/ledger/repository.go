package ledger

import (
	"context"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
)

// RepositoryPort abstracts repository usage for the service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	FindItem(ctx context.Context, itemID int64) (Item, error)
	ListByParent(ctx context.Context, parent ParentRef) ([]Item, error)
	ParentOwner(ctx context.Context, parent ParentRef) (int64, error)
}

// TxRepository exposes the transactional operations the service composes.
// LockParent must be called first inside every transaction: it serializes all
// mutations of one parent's collection against each other.
type TxRepository interface {
	LockParent(ctx context.Context, parent ParentRef) error
	ListForUpdate(ctx context.Context, parent ParentRef) ([]Item, error)
	InsertItem(ctx context.Context, item Item) (int64, error)
	UpdateItem(ctx context.Context, item Item) error
	UpdatePlacements(ctx context.Context, updates []PlacementUpdate) error
	DeleteItems(ctx context.Context, parent ParentRef, ids []int64) (int64, error)
	DeleteAll(ctx context.Context, parent ParentRef) error
	SetParentTotal(ctx context.Context, parent ParentRef, total money.Cents) error
}
