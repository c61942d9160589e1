// =============================================================================
// eBay Order Export - Fulfillment API Client
// =============================================================================
//
// This package is the order source boundary: a thin client for the eBay Sell
// Fulfillment API. The pipeline consumes it through two calls:
//
//   ListOrders(from, to, limit) - bulk listing of order summaries in a
//                                 creation-date window
//   GetOrder(orderID)           - full detail for one order (shipping block,
//                                 buyer, line items)
//
// Both calls require a caller-supplied OAuth bearer token. Non-success
// responses are surfaced as *APIError carrying the HTTP status code; the
// caller reports them but never retries.
//
// CONCURRENCY:
//   None. Detail fetches are issued strictly one at a time, in the order the
//   bulk listing returned the orders. A stalled call blocks the run; the only
//   guard is the HTTP client timeout.
//
// =============================================================================

package ebay

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the production Fulfillment API host.
const DefaultBaseURL = "https://api.ebay.com"

// fulfillmentOrderPath is the getOrders / getOrder resource path.
const fulfillmentOrderPath = "/sell/fulfillment/v1/order"

// TimeFormat is the ISO-8601 layout the creationdate filter expects.
const TimeFormat = "2006-01-02T15:04:05.000Z"

// =============================================================================
// API ERROR
// =============================================================================

// APIError is a non-success HTTP response from the Fulfillment API.
type APIError struct {
	// Op names the failed call ("getOrders" or "getOrder").
	Op string

	// OrderID is set for getOrder failures.
	OrderID string

	// StatusCode is the HTTP status code of the response.
	StatusCode int
}

// Error renders the failure as plain status text.
func (e *APIError) Error() string {
	if e.OrderID != "" {
		return fmt.Sprintf("%s %s: status code %d", e.Op, e.OrderID, e.StatusCode)
	}
	return fmt.Sprintf("%s: status code %d", e.Op, e.StatusCode)
}

// =============================================================================
// RAW PAYLOAD TYPES
// =============================================================================
// These mirror the JSON shapes of the Fulfillment API responses. Only the
// fields the export needs are declared; everything else is ignored by the
// JSON decoder.

// OrderSummary is one entry of the bulk getOrders listing.
type OrderSummary struct {
	OrderID string `json:"orderId"`
}

// ordersResponse is the envelope of the bulk getOrders listing.
type ordersResponse struct {
	Orders []OrderSummary `json:"orders"`
}

// OrderDetail is the full getOrder payload for one order.
type OrderDetail struct {
	OrderID                      string                        `json:"orderId"`
	CreationDate                 string                        `json:"creationDate"`
	OrderFulfillmentStatus       string                        `json:"orderFulfillmentStatus"`
	CancelStatus                 CancelStatus                  `json:"cancelStatus"`
	Buyer                        Buyer                         `json:"buyer"`
	FulfillmentStartInstructions []FulfillmentStartInstruction `json:"fulfillmentStartInstructions"`
	LineItems                    []LineItem                    `json:"lineItems"`
}

// CancelStatus carries the cancel state of an order.
type CancelStatus struct {
	CancelState string `json:"cancelState"`
}

// Buyer identifies the purchasing account.
type Buyer struct {
	Username string `json:"username"`
}

// FulfillmentStartInstruction wraps the shipping step of an order.
type FulfillmentStartInstruction struct {
	ShippingStep ShippingStep `json:"shippingStep"`
}

// ShippingStep wraps the ship-to block.
type ShippingStep struct {
	ShipTo ShipTo `json:"shipTo"`
}

// ShipTo is the recipient and address block of an order.
type ShipTo struct {
	FullName       string         `json:"fullName"`
	ContactAddress ContactAddress `json:"contactAddress"`
	PrimaryPhone   Phone          `json:"primaryPhone"`
	Email          string         `json:"email"`
}

// ContactAddress is the postal address of the recipient.
type ContactAddress struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	PostalCode   string `json:"postalCode"`
}

// Phone is a phone number entry.
type Phone struct {
	PhoneNumber string `json:"phoneNumber"`
}

// LineItem is one purchased item of an order.
type LineItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`

	// Total is the discounted line total, i.e. the price actually paid.
	// The undiscounted unit price (lineItemCost) is deliberately not used.
	Total Amount `json:"total"`
}

// Amount is a textual monetary value with its currency.
type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

// ShipTo returns the recipient block of the first fulfillment start
// instruction, or a zero value when the order carries none.
func (d *OrderDetail) ShipTo() ShipTo {
	if len(d.FulfillmentStartInstructions) == 0 {
		return ShipTo{}
	}
	return d.FulfillmentStartInstructions[0].ShippingStep.ShipTo
}

// =============================================================================
// CLIENT
// =============================================================================

// Client calls the Fulfillment API with a fixed bearer token.
type Client struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewClient creates a Client for the given API host and access token.
//
// PARAMETERS:
//   - baseURL: API host, without trailing slash (DefaultBaseURL in production;
//     tests point this at a local server).
//   - token: The OAuth access token. Sent as "Authorization: Bearer <token>".
//   - timeout: Per-request timeout of the underlying HTTP client.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ListOrders fetches order summaries created inside [from, to].
//
// PARAMETERS:
//   - from, to: The creation-date window, inclusive on both ends.
//   - limit: Maximum number of orders the listing may return.
//
// RETURNS:
//   - The order summaries in API order.
//   - *APIError on a non-success status; other errors are transport or
//     decoding failures.
func (c *Client) ListOrders(from, to time.Time, limit int) ([]OrderSummary, error) {
	query := url.Values{}
	query.Set("filter", fmt.Sprintf("creationdate:[%s..%s]",
		from.UTC().Format(TimeFormat), to.UTC().Format(TimeFormat)))
	query.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := c.baseURL + fulfillmentOrderPath + "?" + query.Encode()

	body, err := c.get(endpoint, "getOrders", "")
	if err != nil {
		return nil, err
	}

	var response ordersResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("getOrders: decode response: %w", err)
	}

	return response.Orders, nil
}

// GetOrder fetches the full detail for one order.
//
// RETURNS:
//   - The decoded order detail.
//   - *APIError on a non-success status (carrying the order ID so the caller
//     can skip just this order); other errors are transport or decoding
//     failures.
func (c *Client) GetOrder(orderID string) (*OrderDetail, error) {
	endpoint := c.baseURL + fulfillmentOrderPath + "/" + url.PathEscape(orderID)

	body, err := c.get(endpoint, "getOrder", orderID)
	if err != nil {
		return nil, err
	}

	var detail OrderDetail
	if err := json.Unmarshal(body, &detail); err != nil {
		return nil, fmt.Errorf("getOrder %s: decode response: %w", orderID, err)
	}

	return &detail, nil
}

// get performs an authorized GET and returns the response body.
// A non-2xx status becomes an *APIError.
func (c *Client) get(endpoint, op, orderID string) ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		io.Copy(io.Discard, resp.Body)
		return nil, &APIError{Op: op, OrderID: orderID, StatusCode: resp.StatusCode}
	}

	return io.ReadAll(resp.Body)
}
