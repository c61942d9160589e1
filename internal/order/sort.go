// =============================================================================
// eBay Order Export - Chronological Sorter
// =============================================================================
//
// Orders are written to the ledger oldest first. The sort must happen on the
// full ISO-8601 timestamp BEFORE the date truncation: two orders placed on
// the same calendar day still have to come out in time-of-day order, and the
// truncated date no longer carries that information.
//
// ISO-8601 strings compare correctly as plain strings, so no time parsing is
// needed for the ordering itself.
//
// =============================================================================

package order

import "sort"

// dateLength is the length of the YYYY-MM-DD portion of an ISO-8601 instant.
const dateLength = 10

// SortChronological returns a new slice sorted by creation timestamp
// ascending (stable, ties keep their original relative order), with every
// record's CreationDate truncated to the calendar date afterwards.
//
// The truncation happens here rather than in the ledger writer because the
// date string is the record's value from this stage on: every later stage,
// including the deduplication logs, sees the day-precision form.
func SortChronological(orders []Order) []Order {
	sorted := make([]Order, len(orders))
	copy(sorted, orders)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreationDate < sorted[j].CreationDate
	})

	// Truncate only after the ordering is fixed.
	for i := range sorted {
		if len(sorted[i].CreationDate) > dateLength {
			sorted[i].CreationDate = sorted[i].CreationDate[:dateLength]
		}
	}

	return sorted
}
