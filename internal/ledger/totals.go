package ledger

import "github.com/ledgerkeep/ledgerkeep/internal/money"

// totalOf recomputes a parent's running total from its current items: the sum
// of costs over cost-bearing categories. Items without a cost contribute
// nothing. Recomputing by summation after every mutation is the single chosen
// strategy; it cannot drift the way incremental adjustment can.
func totalOf(items []Item) money.Cents {
	var total money.Cents
	for _, item := range items {
		if item.Cost == nil || !item.Category.CostBearing() {
			continue
		}
		total += *item.Cost
	}
	if total < 0 {
		return 0
	}
	return total
}
