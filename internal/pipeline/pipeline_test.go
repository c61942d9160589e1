package pipeline

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ebaytools/order-export/internal/ebay"
	"github.com/ebaytools/order-export/internal/ledger"
	"github.com/ebaytools/order-export/internal/sku"
)

const testSheet = "Bestellungen"

// =============================================================================
// TEST FIXTURES
// =============================================================================

// fakeSource is an in-memory OrderSource.
type fakeSource struct {
	summaries []ebay.OrderSummary
	details   map[string]*ebay.OrderDetail
	listErr   error
	detailErr map[string]error

	// fetched records the order of detail fetches.
	fetched []string
}

func (f *fakeSource) ListOrders(from, to time.Time, limit int) ([]ebay.OrderSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.summaries, nil
}

func (f *fakeSource) GetOrder(orderID string) (*ebay.OrderDetail, error) {
	f.fetched = append(f.fetched, orderID)
	if err := f.detailErr[orderID]; err != nil {
		return nil, err
	}
	return f.details[orderID], nil
}

// nopLogger discards all messages.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...interface{}) {}
func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}

// detail builds an order detail with a single line item.
func detail(orderID, created, cancelState, skuCode, price string) *ebay.OrderDetail {
	return &ebay.OrderDetail{
		OrderID:      orderID,
		CreationDate: created,
		CancelStatus: ebay.CancelStatus{CancelState: cancelState},
		Buyer:        ebay.Buyer{Username: "kaeufer42"},
		LineItems: []ebay.LineItem{
			{SKU: skuCode, Quantity: 1, Total: ebay.Amount{Value: price}},
		},
	}
}

// newTestLedger creates a workbook with a header row and the given
// identifiers in column H, and returns the open ledger plus its path.
func newTestLedger(t *testing.T, orderIDs ...string) (*ledger.Ledger, string) {
	t.Helper()

	f := excelize.NewFile()
	_, err := f.NewSheet(testSheet)
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue(testSheet, "A1", "Datum"))
	require.NoError(t, f.SetCellValue(testSheet, "H1", "Bestellnummer"))
	for i, id := range orderIDs {
		row := i + 2
		cellA, _ := excelize.CoordinatesToCellName(1, row)
		cellH, _ := excelize.CoordinatesToCellName(8, row)
		require.NoError(t, f.SetCellValue(testSheet, cellA, "2024-01-01"))
		require.NoError(t, f.SetCellValue(testSheet, cellH, id))
	}

	path := filepath.Join(t.TempDir(), "ledger.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	led, err := ledger.Open(path, testSheet)
	require.NoError(t, err)
	t.Cleanup(func() { led.Close() })
	return led, path
}

func newPipeline(source OrderSource, led *ledger.Ledger, dryRun bool) *Pipeline {
	return New(source, led, sku.NewTransformer(sku.DefaultRuleSet()), nopLogger{}, dryRun)
}

// run executes the pipeline over a fixed three-day window.
func run(p *Pipeline) Result {
	to := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	return p.Run(to.Add(-3*24*time.Hour), to, 100)
}

// =============================================================================
// TESTS
// =============================================================================

func TestRunFullPass(t *testing.T) {
	source := &fakeSource{
		summaries: []ebay.OrderSummary{
			{OrderID: "A"}, {OrderID: "B"}, {OrderID: "C"},
		},
		details: map[string]*ebay.OrderDetail{
			// Listed newest first; the ledger must receive oldest first.
			"A": detail("A", "2024-03-03T10:00:00.000Z", "NONE_REQUESTED", "HLMR0505", "49.90"),
			"B": detail("B", "2024-03-01T10:00:00.000Z", "NONE_REQUESTED", "DR0103", "9.99"),
			"C": detail("C", "2024-03-02T10:00:00.000Z", "CANCELED", "WB200", "5.00"),
		},
	}

	led, path := newTestLedger(t)
	result := run(newPipeline(source, led, false))

	require.NoError(t, result.Error)
	assert.True(t, result.Success)

	// Details are fetched strictly in listing order.
	assert.Equal(t, []string{"A", "B", "C"}, source.fetched)

	assert.Equal(t, 3, result.Stats.OrdersListed)
	assert.Equal(t, 3, result.Stats.LineItems)
	assert.Equal(t, 1, result.Stats.Canceled)
	// B splits into two rows, A collapses into one doubled row.
	assert.Equal(t, 3, result.Stats.RowsTransformed)
	assert.Equal(t, 0, result.Stats.Duplicates)
	assert.Equal(t, 3, result.Stats.RowsWritten)

	// Verify the written rows: order B (older) first, then A.
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, gerr := f.GetCellValue(testSheet, cell)
		require.NoError(t, gerr)
		return v
	}

	assert.Equal(t, "DR01", get("E2"))
	assert.Equal(t, "DR03", get("E3"))
	assert.Equal(t, "0", get("D3")) // second split row priced 0
	assert.Equal(t, "HLMR05", get("E4"))
	assert.Equal(t, "2", get("C4")) // doubled quantity
}

func TestRunSkipsOrdersAlreadyInLedger(t *testing.T) {
	source := &fakeSource{
		summaries: []ebay.OrderSummary{{OrderID: "known"}, {OrderID: "new"}},
		details: map[string]*ebay.OrderDetail{
			// The known order splits into two rows; both must be skipped.
			"known": detail("known", "2024-03-01T10:00:00.000Z", "NONE_REQUESTED", "ABC30NF", "19.99"),
			"new":   detail("new", "2024-03-02T10:00:00.000Z", "NONE_REQUESTED", "WB200", "5.00"),
		},
	}

	led, _ := newTestLedger(t, "known")
	result := run(newPipeline(source, led, false))

	require.NoError(t, result.Error)
	assert.Equal(t, 3, result.Stats.RowsTransformed)
	assert.Equal(t, 2, result.Stats.Duplicates)
	assert.Equal(t, 1, result.Stats.RowsWritten)
}

func TestRunListingFailureYieldsZeroOrders(t *testing.T) {
	source := &fakeSource{
		listErr: &ebay.APIError{Op: "getOrders", StatusCode: 500},
	}

	led, _ := newTestLedger(t)
	result := run(newPipeline(source, led, false))

	// Reported, not fatal: the run completes with nothing to write.
	require.NoError(t, result.Error)
	assert.True(t, result.Success)
	assert.Equal(t, 0, result.Stats.OrdersListed)
	assert.Equal(t, 0, result.Stats.RowsWritten)
}

func TestRunListingTransportFailureIsFatal(t *testing.T) {
	source := &fakeSource{
		listErr: assert.AnError,
	}

	led, _ := newTestLedger(t)
	result := run(newPipeline(source, led, false))

	require.Error(t, result.Error)
	assert.False(t, result.Success)
}

func TestRunSkipsOrderWhoseDetailFetchFails(t *testing.T) {
	source := &fakeSource{
		summaries: []ebay.OrderSummary{{OrderID: "bad"}, {OrderID: "good"}},
		details: map[string]*ebay.OrderDetail{
			"good": detail("good", "2024-03-02T10:00:00.000Z", "NONE_REQUESTED", "WB200", "5.00"),
		},
		detailErr: map[string]error{
			"bad": &ebay.APIError{Op: "getOrder", OrderID: "bad", StatusCode: 404},
		},
	}

	led, _ := newTestLedger(t)
	result := run(newPipeline(source, led, false))

	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.DetailErrors)
	assert.Equal(t, 1, result.Stats.RowsWritten)
}

func TestRunInvalidPriceAbortsRun(t *testing.T) {
	source := &fakeSource{
		summaries: []ebay.OrderSummary{{OrderID: "A"}},
		details: map[string]*ebay.OrderDetail{
			"A": detail("A", "2024-03-02T10:00:00.000Z", "NONE_REQUESTED", "WB200", "kaputt"),
		},
	}

	led, _ := newTestLedger(t)
	result := run(newPipeline(source, led, false))

	require.Error(t, result.Error)
	assert.False(t, result.Success)
	assert.Equal(t, 0, result.Stats.RowsWritten)
}

func TestRunDryRunLeavesLedgerUntouched(t *testing.T) {
	source := &fakeSource{
		summaries: []ebay.OrderSummary{{OrderID: "A"}},
		details: map[string]*ebay.OrderDetail{
			"A": detail("A", "2024-03-02T10:00:00.000Z", "NONE_REQUESTED", "WB200", "5.00"),
		},
	}

	led, path := newTestLedger(t)
	result := run(newPipeline(source, led, true))

	require.NoError(t, result.Error)
	assert.Equal(t, 1, result.Stats.RowsTransformed)
	assert.Equal(t, 0, result.Stats.RowsWritten)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	v, err := f.GetCellValue(testSheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "", v)
}
