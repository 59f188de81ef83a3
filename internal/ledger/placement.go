package ledger

// Placement sequencing. Items under one parent always carry the dense ranks
// 1..count; every mutation runs a full resequence over the surviving order
// rather than patching neighbours incrementally.

// appendPlacement returns the placement for an item appended to a parent that
// currently holds count items.
func appendPlacement(count int) int {
	return count + 1
}

// resequence assigns index+1 placements over items in their given order and
// returns the updates for items whose placement actually changes.
func resequence(items []Item) []PlacementUpdate {
	var updates []PlacementUpdate
	for i, item := range items {
		if want := i + 1; item.Placement != want {
			updates = append(updates, PlacementUpdate{ItemID: item.ID, Placement: want})
		}
	}
	return updates
}

// moveWithin returns items reordered so the item with itemID sits at target
// placement (1-based), with the relative order of the rest preserved.
func moveWithin(items []Item, itemID int64, target int) []Item {
	moved := make([]Item, 0, len(items))
	var subject *Item
	for i := range items {
		if items[i].ID == itemID {
			subject = &items[i]
			continue
		}
		moved = append(moved, items[i])
	}
	if subject == nil {
		return items
	}
	idx := target - 1
	moved = append(moved, Item{})
	copy(moved[idx+1:], moved[idx:])
	moved[idx] = *subject
	return moved
}

// orderByIDs reorders items to match ids. The list must cover the parent's
// items exactly; foreign, duplicate, or missing ids are rejected.
func orderByIDs(items []Item, ids []int64) ([]Item, error) {
	if len(ids) != len(items) {
		return nil, ErrReorderSetMismatch
	}
	byID := make(map[int64]Item, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	ordered := make([]Item, 0, len(items))
	for _, id := range ids {
		item, ok := byID[id]
		if !ok {
			return nil, ErrReorderSetMismatch
		}
		delete(byID, id)
		ordered = append(ordered, item)
	}
	return ordered, nil
}
