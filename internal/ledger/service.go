package ledger

import (
	"context"
	"time"
)

// ChangeNotifier observes committed mutations that alter a parent's total or
// item count. Used to invalidate cached summaries.
type ChangeNotifier interface {
	ParentChanged(ctx context.Context, parent ParentRef)
}

// Service orchestrates the item lifecycle: every mutation runs inside one
// repository transaction that locks the parent row, so placement density and
// the running total are consistent the moment the call returns. Nothing is
// deferred past the response.
type Service struct {
	repo     RepositoryPort
	notifier ChangeNotifier
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// SetNotifier registers the observer for committed mutations.
func (s *Service) SetNotifier(n ChangeNotifier) {
	s.notifier = n
}

func (s *Service) notify(ctx context.Context, parent ParentRef) {
	if s.notifier != nil {
		s.notifier.ParentChanged(ctx, parent)
	}
}

// AddItem appends an item to the parent collection at placement count+1.
func (s *Service) AddItem(ctx context.Context, parent ParentRef, input NewItemInput) (Item, error) {
	if !input.Category.AllowedFor(parent.Kind) {
		return Item{}, ErrInvalidCategory
	}
	now := time.Now().UTC()
	created := Item{
		Parent:      parent,
		Category:    input.Category,
		Description: input.Description,
		Cost:        input.Cost,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, parent); err != nil {
			return err
		}
		siblings, err := tx.ListForUpdate(ctx, parent)
		if err != nil {
			return err
		}
		created.Placement = appendPlacement(len(siblings))
		id, err := tx.InsertItem(ctx, created)
		if err != nil {
			return err
		}
		created.ID = id
		return tx.SetParentTotal(ctx, parent, totalOf(append(siblings, created)))
	})
	if err != nil {
		return Item{}, err
	}
	s.notify(ctx, parent)
	return created, nil
}

// GetItem fetches a single item.
func (s *Service) GetItem(ctx context.Context, itemID int64) (Item, error) {
	return s.repo.FindItem(ctx, itemID)
}

// ListItems returns the parent's items ordered by placement.
func (s *Service) ListItems(ctx context.Context, parent ParentRef) ([]Item, error) {
	return s.repo.ListByParent(ctx, parent)
}

// ParentOwner resolves the account owning the parent collection.
func (s *Service) ParentOwner(ctx context.Context, parent ParentRef) (int64, error) {
	return s.repo.ParentOwner(ctx, parent)
}

// UpdateItem applies a partial update of cost, category, and description,
// then recomputes the parent total.
func (s *Service) UpdateItem(ctx context.Context, itemID int64, input UpdateItemInput) (Item, error) {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return Item{}, err
	}
	if input.Category != nil {
		if !input.Category.AllowedFor(item.Parent.Kind) {
			return Item{}, ErrInvalidCategory
		}
		item.Category = *input.Category
	}
	if input.Description != nil {
		item.Description = *input.Description
	}
	if input.ClearCost {
		item.Cost = nil
	} else if input.Cost != nil {
		item.Cost = input.Cost
	}
	item.UpdatedAt = time.Now().UTC()

	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, item.Parent); err != nil {
			return err
		}
		if err := tx.UpdateItem(ctx, item); err != nil {
			return err
		}
		siblings, err := tx.ListForUpdate(ctx, item.Parent)
		if err != nil {
			return err
		}
		return tx.SetParentTotal(ctx, item.Parent, totalOf(siblings))
	})
	if err != nil {
		return Item{}, err
	}
	s.notify(ctx, item.Parent)
	return item, nil
}

// UpdatePlacement moves one item to the target placement and resequences its
// siblings so placements stay dense.
func (s *Service) UpdatePlacement(ctx context.Context, itemID int64, newPlacement int) error {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return err
	}
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, item.Parent); err != nil {
			return err
		}
		siblings, err := tx.ListForUpdate(ctx, item.Parent)
		if err != nil {
			return err
		}
		if newPlacement < 1 || newPlacement > len(siblings) {
			return ErrPlacementOutOfRange
		}
		return tx.UpdatePlacements(ctx, resequence(moveWithin(siblings, itemID, newPlacement)))
	})
}

// ReorderItems rewrites the whole ordering to match ids. The list must cover
// the parent's items exactly.
func (s *Service) ReorderItems(ctx context.Context, parent ParentRef, ids []int64) error {
	return s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, parent); err != nil {
			return err
		}
		items, err := tx.ListForUpdate(ctx, parent)
		if err != nil {
			return err
		}
		ordered, err := orderByIDs(items, ids)
		if err != nil {
			return err
		}
		return tx.UpdatePlacements(ctx, resequence(ordered))
	})
}

// DeleteItem removes one item, closes the placement gap, and recomputes the
// parent total, all in one transaction.
func (s *Service) DeleteItem(ctx context.Context, itemID int64) error {
	item, err := s.repo.FindItem(ctx, itemID)
	if err != nil {
		return err
	}
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, item.Parent); err != nil {
			return err
		}
		deleted, err := tx.DeleteItems(ctx, item.Parent, []int64{itemID})
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrItemNotFound
		}
		return s.restoreInvariants(ctx, tx, item.Parent)
	})
	if err != nil {
		return err
	}
	s.notify(ctx, item.Parent)
	return nil
}

// BulkDelete removes the given items from the parent. Ids that are absent or
// belong elsewhere are skipped rather than failing the batch; the survivors
// are renumbered once and the total recomputed once.
func (s *Service) BulkDelete(ctx context.Context, parent ParentRef, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, parent); err != nil {
			return err
		}
		if _, err := tx.DeleteItems(ctx, parent, ids); err != nil {
			return err
		}
		return s.restoreInvariants(ctx, tx, parent)
	})
	if err != nil {
		return err
	}
	s.notify(ctx, parent)
	return nil
}

// DeleteAllForParent empties the collection and resets the total to zero.
func (s *Service) DeleteAllForParent(ctx context.Context, parent ParentRef) error {
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		if err := tx.LockParent(ctx, parent); err != nil {
			return err
		}
		if err := tx.DeleteAll(ctx, parent); err != nil {
			return err
		}
		return tx.SetParentTotal(ctx, parent, 0)
	})
	if err != nil {
		return err
	}
	s.notify(ctx, parent)
	return nil
}

// restoreInvariants resequences the surviving items and rewrites the parent
// total from summation.
func (s *Service) restoreInvariants(ctx context.Context, tx TxRepository, parent ParentRef) error {
	survivors, err := tx.ListForUpdate(ctx, parent)
	if err != nil {
		return err
	}
	if err := tx.UpdatePlacements(ctx, resequence(survivors)); err != nil {
		return err
	}
	return tx.SetParentTotal(ctx, parent, totalOf(survivors))
}
