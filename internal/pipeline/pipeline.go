// =============================================================================
// eBay Order Export - Pipeline Module
// =============================================================================
//
// This module orchestrates the export pipeline for one run, from the remote
// order fetch to the ledger write.
//
// PIPELINE:
//   1. List orders in the requested creation-date window
//   2. Fetch each order's detail, strictly one at a time
//   3. Normalize the details into flat per-line-item records
//   4. Drop canceled orders
//   5. Sort chronologically, then truncate timestamps to calendar days
//   6. Apply the SKU transformation rules
//   7. Remove orders already recorded in the ledger
//   8. Append the remaining rows and save the workbook
//
// The run is a single forward pass with no resumption point: a fatal error
// aborts the remaining stages. Per-order detail failures are the exception;
// one bad order must not block the batch, so those are skipped with a
// reported message.
//
// CONCURRENCY:
//   None. Every stage fully consumes its input before the next begins.
//
// =============================================================================

package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebaytools/order-export/internal/ebay"
	"github.com/ebaytools/order-export/internal/ledger"
	"github.com/ebaytools/order-export/internal/order"
	"github.com/ebaytools/order-export/internal/sku"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one export run.
type Result struct {
	// Success indicates whether the run completed.
	Success bool

	// Error contains the fatal error if the run aborted.
	Error error

	// Stats contains per-stage counts.
	Stats Stats
}

// Stats contains statistics about one export run.
type Stats struct {
	// OrdersListed is the number of orders the bulk listing returned.
	OrdersListed int

	// DetailErrors is the number of orders skipped because their detail
	// fetch returned a non-success status.
	DetailErrors int

	// LineItems is the number of flat records after normalization.
	LineItems int

	// Canceled is the number of records dropped by the cancellation filter.
	Canceled int

	// RowsTransformed is the number of rows emitted by the SKU transformer.
	RowsTransformed int

	// Duplicates is the number of rows dropped because their order was
	// already recorded in the ledger.
	Duplicates int

	// RowsWritten is the number of rows appended to the ledger.
	RowsWritten int

	// ProcessingTime is the elapsed wall time of the run.
	ProcessingTime time.Duration
}

// =============================================================================
// COLLABORATORS
// =============================================================================

// OrderSource yields raw order data for a time window. *ebay.Client is the
// production implementation; tests substitute a fake.
type OrderSource interface {
	ListOrders(from, to time.Time, limit int) ([]ebay.OrderSummary, error)
	GetOrder(orderID string) (*ebay.OrderDetail, error)
}

// Logger is the logging surface the pipeline needs. *logrus.Logger
// satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// =============================================================================
// PIPELINE STRUCTURE
// =============================================================================

// Pipeline runs the export for one time window against one ledger.
type Pipeline struct {
	source      OrderSource
	ledger      *ledger.Ledger
	transformer *sku.Transformer
	logger      Logger

	// dryRun runs every stage except the ledger write.
	dryRun bool
}

// New creates a Pipeline.
//
// PARAMETERS:
//   - source: The order source (normally the Fulfillment API client).
//   - led: The open target ledger.
//   - transformer: The SKU transformer with the merchant rule table.
//   - logger: Destination for progress and error messages.
//   - dryRun: When true, the ledger is read for deduplication but not written.
func New(source OrderSource, led *ledger.Ledger, transformer *sku.Transformer, logger Logger, dryRun bool) *Pipeline {
	return &Pipeline{
		source:      source,
		ledger:      led,
		transformer: transformer,
		logger:      logger,
		dryRun:      dryRun,
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the export pipeline for the given window.
//
// RETURNS:
//   - A Result with per-stage statistics. Result.Error is set when the run
//     aborted; a failed bulk listing is NOT fatal, it is reported and the run
//     continues with zero orders.
func (p *Pipeline) Run(from, to time.Time, limit int) Result {
	startTime := time.Now()
	result := Result{}

	// =========================================================================
	// STEP 1: LIST ORDERS
	// =========================================================================

	p.logger.Infof("Fetching orders from %s to %s (limit %d)",
		from.UTC().Format(ebay.TimeFormat), to.UTC().Format(ebay.TimeFormat), limit)

	summaries, err := p.source.ListOrders(from, to, limit)
	if err != nil {
		var apiErr *ebay.APIError
		if !errors.As(err, &apiErr) {
			result.Error = fmt.Errorf("failed to list orders: %w", err)
			return result
		}
		// A non-success listing yields zero orders; the run itself goes on
		// and simply finds nothing to write.
		p.logger.Errorf("Error fetching order list, status code: %d", apiErr.StatusCode)
		summaries = nil
	}

	result.Stats.OrdersListed = len(summaries)
	p.logger.Infof("Order list returned %d order(s)", len(summaries))

	// =========================================================================
	// STEP 2 + 3: FETCH DETAILS AND NORMALIZE
	// =========================================================================
	// Details are fetched strictly one at a time, in listing order. An order
	// whose detail fetch fails with a non-success status is skipped with a
	// message; a broken price inside a detail aborts the run.

	var records []order.Order
	for _, summary := range summaries {
		detail, err := p.source.GetOrder(summary.OrderID)
		if err != nil {
			var apiErr *ebay.APIError
			if errors.As(err, &apiErr) {
				p.logger.Errorf("Error fetching order %s, status code: %d", summary.OrderID, apiErr.StatusCode)
				result.Stats.DetailErrors++
				continue
			}
			result.Error = fmt.Errorf("failed to fetch order %s: %w", summary.OrderID, err)
			return result
		}

		flat, err := order.Flatten(detail)
		if err != nil {
			result.Error = err
			return result
		}
		records = append(records, flat...)
	}

	result.Stats.LineItems = len(records)
	p.logger.Debugf("Normalized %d line item record(s)", len(records))

	// =========================================================================
	// STEP 4: DROP CANCELED ORDERS
	// =========================================================================

	uncanceled := order.FilterCanceled(records)
	result.Stats.Canceled = len(records) - len(uncanceled)
	p.logger.Debugf("Removed %d canceled record(s)", result.Stats.Canceled)

	// =========================================================================
	// STEP 5: SORT AND TRUNCATE
	// =========================================================================

	sorted := order.SortChronological(uncanceled)

	// =========================================================================
	// STEP 6: APPLY SKU RULES
	// =========================================================================

	transformed := p.transformer.Apply(sorted)
	result.Stats.RowsTransformed = len(transformed)
	p.logger.Debugf("SKU rules produced %d row(s)", len(transformed))

	// =========================================================================
	// STEP 7: REMOVE ALREADY-EXPORTED ORDERS
	// =========================================================================

	existing, err := p.ledger.OrderIDs()
	if err != nil {
		result.Error = err
		return result
	}

	remaining := ledger.Deduplicate(transformed, existing)
	result.Stats.Duplicates = len(transformed) - len(remaining)
	p.logger.Infof("%d row(s) to write, %d duplicate(s) skipped", len(remaining), result.Stats.Duplicates)

	// =========================================================================
	// STEP 8: WRITE AND SAVE
	// =========================================================================

	if p.dryRun {
		p.logger.Infof("Dry run, ledger not modified")
	} else {
		written, err := p.ledger.Append(remaining)
		if err != nil {
			result.Error = err
			return result
		}
		result.Stats.RowsWritten = written

		if err := p.ledger.Save(); err != nil {
			result.Error = err
			return result
		}
	}

	result.Success = true
	result.Stats.ProcessingTime = time.Since(startTime)
	return result
}
