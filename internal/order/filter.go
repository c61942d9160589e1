// =============================================================================
// eBay Order Export - Cancellation Filter
// =============================================================================
//
// Canceled orders must never reach the ledger. The filter is a pure predicate
// over the normalized record list: no side effects, element order preserved.
//
// =============================================================================

package order

// FilterCanceled returns the records whose cancel state is not "CANCELED",
// in their original relative order. The input slice is not modified.
func FilterCanceled(orders []Order) []Order {
	kept := make([]Order, 0, len(orders))
	for _, o := range orders {
		if o.CancelStatus != CancelStateCanceled {
			kept = append(kept, o)
		}
	}
	return kept
}
