package ledger

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
)

type memoryParent struct {
	ownerID int64
	total   money.Cents
	items   []Item
}

type memoryRepo struct {
	parents map[ParentRef]*memoryParent
	nextID  int64
}

type memoryTx struct {
	repo *memoryRepo
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{parents: make(map[ParentRef]*memoryParent)}
}

func (r *memoryRepo) addParent(parent ParentRef, ownerID int64) {
	r.parents[parent] = &memoryParent{ownerID: ownerID}
}

func (r *memoryRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return fn(ctx, &memoryTx{repo: r})
}

func (r *memoryRepo) FindItem(ctx context.Context, itemID int64) (Item, error) {
	for _, parent := range r.parents {
		for _, item := range parent.items {
			if item.ID == itemID {
				return item, nil
			}
		}
	}
	return Item{}, ErrItemNotFound
}

func (r *memoryRepo) ListByParent(ctx context.Context, parent ParentRef) ([]Item, error) {
	p, ok := r.parents[parent]
	if !ok {
		return nil, ErrParentNotFound
	}
	return sortedCopy(p.items), nil
}

func (r *memoryRepo) ParentOwner(ctx context.Context, parent ParentRef) (int64, error) {
	p, ok := r.parents[parent]
	if !ok {
		return 0, ErrParentNotFound
	}
	return p.ownerID, nil
}

func (tx *memoryTx) LockParent(ctx context.Context, parent ParentRef) error {
	if _, ok := tx.repo.parents[parent]; !ok {
		return ErrParentNotFound
	}
	return nil
}

func (tx *memoryTx) ListForUpdate(ctx context.Context, parent ParentRef) ([]Item, error) {
	return tx.repo.ListByParent(ctx, parent)
}

func (tx *memoryTx) InsertItem(ctx context.Context, item Item) (int64, error) {
	tx.repo.nextID++
	item.ID = tx.repo.nextID
	tx.repo.parents[item.Parent].items = append(tx.repo.parents[item.Parent].items, item)
	return item.ID, nil
}

func (tx *memoryTx) UpdateItem(ctx context.Context, item Item) error {
	p := tx.repo.parents[item.Parent]
	for i := range p.items {
		if p.items[i].ID == item.ID {
			item.Placement = p.items[i].Placement
			p.items[i] = item
			return nil
		}
	}
	return ErrItemNotFound
}

func (tx *memoryTx) UpdatePlacements(ctx context.Context, updates []PlacementUpdate) error {
	for _, update := range updates {
		for _, p := range tx.repo.parents {
			for i := range p.items {
				if p.items[i].ID == update.ItemID {
					p.items[i].Placement = update.Placement
				}
			}
		}
	}
	return nil
}

func (tx *memoryTx) DeleteItems(ctx context.Context, parent ParentRef, ids []int64) (int64, error) {
	p := tx.repo.parents[parent]
	drop := make(map[int64]bool, len(ids))
	for _, id := range ids {
		drop[id] = true
	}
	var kept []Item
	var deleted int64
	for _, item := range p.items {
		if drop[item.ID] {
			deleted++
			continue
		}
		kept = append(kept, item)
	}
	p.items = kept
	return deleted, nil
}

func (tx *memoryTx) DeleteAll(ctx context.Context, parent ParentRef) error {
	tx.repo.parents[parent].items = nil
	return nil
}

func (tx *memoryTx) SetParentTotal(ctx context.Context, parent ParentRef, total money.Cents) error {
	tx.repo.parents[parent].total = total
	return nil
}

func sortedCopy(items []Item) []Item {
	out := make([]Item, len(items))
	copy(out, items)
	sort.Slice(out, func(i, j int) bool { return out[i].Placement < out[j].Placement })
	return out
}

func cents(v int64) *money.Cents {
	c := money.Cents(v)
	return &c
}

// requireDense asserts the placement invariant: placements are exactly 1..count.
func requireDense(t *testing.T, items []Item) {
	t.Helper()
	seen := make(map[int]bool, len(items))
	for _, item := range items {
		require.GreaterOrEqual(t, item.Placement, 1)
		require.LessOrEqual(t, item.Placement, len(items))
		require.False(t, seen[item.Placement], "duplicate placement %d", item.Placement)
		seen[item.Placement] = true
	}
}

func newTestService() (*Service, *memoryRepo, ParentRef) {
	repo := newMemoryRepo()
	parent := ParentRef{Kind: ParentLogbook, ID: 1}
	repo.addParent(parent, 7)
	return NewService(repo), repo, parent
}

func TestAppendAssignsDensePlacements(t *testing.T) {
	svc, repo, parent := newTestService()
	ctx := context.Background()

	for i, desc := range []string{"coffee", "lunch", "book"} {
		item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: desc, Cost: cents(1000)})
		require.NoError(t, err)
		require.Equal(t, i+1, item.Placement)
	}
	require.Equal(t, money.Cents(3000), repo.parents[parent].total)
}

func TestDeleteMiddleItemClosesGapAndAdjustsTotal(t *testing.T) {
	svc, repo, parent := newTestService()
	ctx := context.Background()

	a, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "A", Cost: cents(1000)})
	require.NoError(t, err)
	b, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "B", Cost: cents(2000)})
	require.NoError(t, err)
	c, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "C", Cost: cents(3000)})
	require.NoError(t, err)
	require.Equal(t, money.Cents(6000), repo.parents[parent].total)

	require.NoError(t, svc.DeleteItem(ctx, b.ID))

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, a.ID, items[0].ID)
	require.Equal(t, 1, items[0].Placement)
	require.Equal(t, c.ID, items[1].ID)
	require.Equal(t, 2, items[1].Placement)
	require.Equal(t, money.Cents(4000), repo.parents[parent].total)
}

func TestBulkDeleteRenumbersOnce(t *testing.T) {
	svc, repo, parent := newTestService()
	ctx := context.Background()

	var ids []int64
	for _, desc := range []string{"one", "two", "three", "four", "five"} {
		item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryPlanned, Description: desc, Cost: cents(500)})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}
	require.Equal(t, money.Cents(2500), repo.parents[parent].total)

	// Remove the items at original placements 2 and 4.
	require.NoError(t, svc.BulkDelete(ctx, parent, []int64{ids[1], ids[3]}))

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, []int64{ids[0], ids[2], ids[4]}, []int64{items[0].ID, items[1].ID, items[2].ID})
	requireDense(t, items)
	require.Equal(t, money.Cents(1500), repo.parents[parent].total)
}

func TestBulkDeleteToleratesAbsentIDs(t *testing.T) {
	svc, repo, parent := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "keep", Cost: cents(500)})
	require.NoError(t, err)
	gone, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "gone", Cost: cents(700)})
	require.NoError(t, err)

	require.NoError(t, svc.BulkDelete(ctx, parent, []int64{gone.ID, 9999}))

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, item.ID, items[0].ID)
	require.Equal(t, money.Cents(500), repo.parents[parent].total)
}

func TestUpdatePlacementMovesItem(t *testing.T) {
	svc, _, parent := newTestService()
	ctx := context.Background()

	var ids []int64
	for _, desc := range []string{"a", "b", "c", "d"} {
		item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryImpulse, Description: desc})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	require.NoError(t, svc.UpdatePlacement(ctx, ids[3], 1))

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Equal(t, []int64{ids[3], ids[0], ids[1], ids[2]}, []int64{items[0].ID, items[1].ID, items[2].ID, items[3].ID})
	requireDense(t, items)
}

func TestUpdatePlacementOutOfRange(t *testing.T) {
	svc, _, parent := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "only"})
	require.NoError(t, err)

	require.ErrorIs(t, svc.UpdatePlacement(ctx, item.ID, 0), ErrPlacementOutOfRange)
	require.ErrorIs(t, svc.UpdatePlacement(ctx, item.ID, 2), ErrPlacementOutOfRange)
}

func TestReorderItems(t *testing.T) {
	svc, _, parent := newTestService()
	ctx := context.Background()

	var ids []int64
	for _, desc := range []string{"a", "b", "c"} {
		item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: desc})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	require.NoError(t, svc.ReorderItems(ctx, parent, []int64{ids[2], ids[0], ids[1]}))

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Equal(t, []int64{ids[2], ids[0], ids[1]}, []int64{items[0].ID, items[1].ID, items[2].ID})
	requireDense(t, items)
}

func TestReorderRejectsForeignAndPartialLists(t *testing.T) {
	svc, _, parent := newTestService()
	ctx := context.Background()

	var ids []int64
	for _, desc := range []string{"a", "b"} {
		item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: desc})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	require.ErrorIs(t, svc.ReorderItems(ctx, parent, []int64{ids[0], 555}), ErrReorderSetMismatch)
	require.ErrorIs(t, svc.ReorderItems(ctx, parent, []int64{ids[0]}), ErrReorderSetMismatch)
	require.ErrorIs(t, svc.ReorderItems(ctx, parent, []int64{ids[0], ids[0]}), ErrReorderSetMismatch)
}

func TestUpdateItemRecomputesTotal(t *testing.T) {
	svc, repo, parent := newTestService()
	ctx := context.Background()

	item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "groceries", Cost: cents(2500)})
	require.NoError(t, err)
	require.Equal(t, money.Cents(2500), repo.parents[parent].total)

	_, err = svc.UpdateItem(ctx, item.ID, UpdateItemInput{Cost: cents(1500)})
	require.NoError(t, err)
	require.Equal(t, money.Cents(1500), repo.parents[parent].total)

	_, err = svc.UpdateItem(ctx, item.ID, UpdateItemInput{ClearCost: true})
	require.NoError(t, err)
	require.Equal(t, money.Cents(0), repo.parents[parent].total)
}

func TestIncomingCategoryDoesNotCount(t *testing.T) {
	repo := newMemoryRepo()
	parent := ParentRef{Kind: ParentOverview, ID: 3}
	repo.addParent(parent, 7)
	svc := NewService(repo)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryRecurring, Description: "rent", Cost: cents(90000)})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, parent, NewItemInput{Category: CategoryIncoming, Description: "salary", Cost: cents(250000)})
	require.NoError(t, err)

	require.Equal(t, money.Cents(90000), repo.parents[parent].total)
}

func TestAddItemRejectsForeignCategory(t *testing.T) {
	svc, _, parent := newTestService()
	ctx := context.Background()

	_, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryRecurring, Description: "wrong kind"})
	require.ErrorIs(t, err, ErrInvalidCategory)
}

func TestDeleteAllResetsTotal(t *testing.T) {
	svc, repo, parent := newTestService()
	ctx := context.Background()

	for _, desc := range []string{"a", "b"} {
		_, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: desc, Cost: cents(300)})
		require.NoError(t, err)
	}

	require.NoError(t, svc.DeleteAllForParent(ctx, parent))

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Empty(t, items)
	require.Equal(t, money.Cents(0), repo.parents[parent].total)
}

func TestParentNotFound(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	missing := ParentRef{Kind: ParentLogbook, ID: 42}

	_, err := svc.AddItem(ctx, missing, NewItemInput{Category: CategoryNeed, Description: "x"})
	require.ErrorIs(t, err, ErrParentNotFound)

	_, err = svc.ListItems(ctx, missing)
	require.ErrorIs(t, err, ErrParentNotFound)

	require.ErrorIs(t, svc.DeleteAllForParent(ctx, missing), ErrParentNotFound)
}

func TestPlacementDensityUnderMixedOperations(t *testing.T) {
	svc, _, parent := newTestService()
	ctx := context.Background()

	var ids []int64
	for _, desc := range []string{"a", "b", "c", "d", "e", "f"} {
		item, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: desc, Cost: cents(100)})
		require.NoError(t, err)
		ids = append(ids, item.ID)
	}

	require.NoError(t, svc.DeleteItem(ctx, ids[2]))
	require.NoError(t, svc.UpdatePlacement(ctx, ids[5], 2))
	require.NoError(t, svc.BulkDelete(ctx, parent, []int64{ids[0], ids[4]}))

	added, err := svc.AddItem(ctx, parent, NewItemInput{Category: CategoryNeed, Description: "g", Cost: cents(100)})
	require.NoError(t, err)
	require.Equal(t, 4, added.Placement)

	items, err := svc.ListItems(ctx, parent)
	require.NoError(t, err)
	require.Len(t, items, 4)
	requireDense(t, items)
}
