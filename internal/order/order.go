// =============================================================================
// eBay Order Export - Order Model and Normalizer
// =============================================================================
//
// This package defines the flat Order record that flows through the export
// pipeline, and the normalizer that produces it from the nested payload
// returned by the eBay Fulfillment API.
//
// NORMALIZATION:
//   One API order detail contains an order header, a nested shipping/buyer
//   block, and a list of line items. The normalizer emits one Order record
//   per line item: the line-item fields (SKU, quantity, price) differ per
//   record, all order-level fields are duplicated across the order's records.
//
// DEFAULTS:
//   The source omits nested fields it has no data for. Missing fields resolve
//   to the "Nicht angegeben" sentinel rather than failing, so a record is
//   always complete enough to write to the ledger. The SKU is the one
//   exception: a missing SKU stays empty, which the transformer treats as
//   "pass through unchanged".
//
// =============================================================================

package order

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ebaytools/order-export/internal/ebay"
)

// NotProvided is the sentinel written for order fields the source did not
// supply. The wording is kept as it appears in the existing ledger.
const NotProvided = "Nicht angegeben"

// CancelStateCanceled is the cancel state reported for canceled orders.
const CancelStateCanceled = "CANCELED"

// =============================================================================
// ORDER RECORD
// =============================================================================

// Order is one (order, line item) pair in flat form. It is created by the
// normalizer, filtered and sorted read-only, rewritten by the SKU transformer
// and finally consumed by the ledger writer.
type Order struct {
	// OrderID is the opaque marketplace order identifier. It is carried
	// unchanged through the whole pipeline; ledger deduplication keys on it.
	OrderID string

	// CreationDate is the ISO-8601 creation instant. The chronological
	// sorter truncates it to the date portion (YYYY-MM-DD) after sorting.
	CreationDate string

	// FulfillmentStatus is informational only.
	FulfillmentStatus string

	// CancelStatus is the cancel state ("CANCELED" or anything else).
	CancelStatus string

	// Recipient and address fields from the shipping block.
	FullName   string
	Street     string
	City       string
	PostalCode string
	Phone      string
	Email      string

	// BuyerUsername is the marketplace account name of the buyer.
	BuyerUsername string

	// Line-item fields.
	SKU      string
	Quantity int
	Price    decimal.Decimal
}

// =============================================================================
// NORMALIZER
// =============================================================================

// Flatten converts one raw order detail into one Order record per line item.
//
// PARAMETERS:
//   - detail: The raw order detail payload from the Fulfillment API.
//
// RETURNS:
//   - One Order per line item, in the order the line items were returned.
//   - An error if a line item's monetary value cannot be parsed. The error is
//     propagated, not swallowed: a non-numeric price means the upstream data
//     is structurally broken and the run must not silently drop the record.
func Flatten(detail *ebay.OrderDetail) ([]Order, error) {
	shipTo := detail.ShipTo()
	address := shipTo.ContactAddress

	base := Order{
		OrderID:           detail.OrderID,
		CreationDate:      orDefault(detail.CreationDate),
		FulfillmentStatus: orDefault(detail.OrderFulfillmentStatus),
		CancelStatus:      orDefault(detail.CancelStatus.CancelState),
		FullName:          orDefault(shipTo.FullName),
		Street:            combineStreet(address.AddressLine1, address.AddressLine2),
		City:              orDefault(address.City),
		PostalCode:        orDefault(address.PostalCode),
		Phone:             orDefault(shipTo.PrimaryPhone.PhoneNumber),
		Email:             orDefault(shipTo.Email),
		BuyerUsername:     orDefault(detail.Buyer.Username),
	}

	orders := make([]Order, 0, len(detail.LineItems))
	for _, item := range detail.LineItems {
		// The API reports the discounted total as a string; it must parse as
		// a decimal or the record cannot be priced.
		price, err := decimal.NewFromString(item.Total.Value)
		if err != nil {
			return nil, fmt.Errorf("order %s: invalid price %q: %w", detail.OrderID, item.Total.Value, err)
		}

		record := base
		record.SKU = item.SKU
		record.Quantity = item.Quantity
		record.Price = price
		orders = append(orders, record)
	}

	return orders, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// orDefault substitutes the sentinel for values the source did not supply.
func orDefault(value string) string {
	if value == "" {
		return NotProvided
	}
	return value
}

// combineStreet merges the primary and secondary address lines.
//
// EXAMPLE:
//   "Hauptstr. 1", ""        -> "Hauptstr. 1"
//   "Hauptstr. 1", "Apt. 4b" -> "Hauptstr. 1 (Apt. 4b)"
//   "", ""                   -> "Nicht angegeben"
func combineStreet(line1, line2 string) string {
	if line2 == "" {
		return orDefault(line1)
	}
	return orDefault(line1) + " (" + line2 + ")"
}
