package ledger

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/ebaytools/order-export/internal/order"
)

const testSheet = "Bestellungen"

// newTestLedger writes a workbook with a header row and the given order
// identifiers in column H, one per row from row 2 downward, and returns its
// path. Column A of those rows carries a date string so the append scan
// sees them as occupied.
func newTestLedger(t *testing.T, orderIDs ...string) string {
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
	return path
}

func testRow(orderID, skuCode string) order.Order {
	return order.Order{
		OrderID:       orderID,
		CreationDate:  "2024-03-01",
		FullName:      "Max Mustermann",
		Street:        "Hauptstr. 1",
		City:          "Wuppertal",
		PostalCode:    "42103",
		Phone:         "+49 202 123456",
		Email:         "max@example.org",
		BuyerUsername: "kaeufer42",
		SKU:           skuCode,
		Quantity:      2,
		Price:         decimal.RequireFromString("19.99"),
	}
}

func TestOpenMissingFileFails(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.xlsx"), testSheet)
	require.Error(t, err)
}

func TestOpenMissingSheetFails(t *testing.T) {
	path := newTestLedger(t)

	_, err := Open(path, "FalschesBlatt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FalschesBlatt")
}

func TestOrderIDsSkipsHeaderRow(t *testing.T) {
	path := newTestLedger(t, "11-11111-11111", "22-22222-22222")

	led, err := Open(path, testSheet)
	require.NoError(t, err)
	defer led.Close()

	ids, err := led.OrderIDs()
	require.NoError(t, err)

	assert.Len(t, ids, 2)
	assert.Contains(t, ids, "11-11111-11111")
	assert.Contains(t, ids, "22-22222-22222")
	assert.NotContains(t, ids, "Bestellnummer")
}

func TestDeduplicateIsSetDifferenceOnOrderID(t *testing.T) {
	existing := map[string]struct{}{
		"known": {},
	}

	rows := []order.Order{
		{OrderID: "known", SKU: "A"},
		{OrderID: "new", SKU: "B"},
		{OrderID: "known", SKU: "C"},
		{OrderID: "other", SKU: "D"},
	}

	out := Deduplicate(rows, existing)

	require.Len(t, out, 2)
	assert.Equal(t, "B", out[0].SKU)
	assert.Equal(t, "D", out[1].SKU)
}

// Rows sharing one identifier are dropped as a unit: a previously recorded
// order is skipped wholesale, regardless of how many rows the transformer
// emitted for it.
func TestDeduplicateWholeOrderGranularity(t *testing.T) {
	path := newTestLedger(t, "33-33333-33333")

	led, err := Open(path, testSheet)
	require.NoError(t, err)
	defer led.Close()

	existing, err := led.OrderIDs()
	require.NoError(t, err)

	rows := []order.Order{
		testRow("33-33333-33333", "DR01"),
		testRow("33-33333-33333", "DR03"),
	}
	assert.Empty(t, Deduplicate(rows, existing))
}

func TestAppendWritesFixedColumnLayout(t *testing.T) {
	path := newTestLedger(t, "11-11111-11111")

	led, err := Open(path, testSheet)
	require.NoError(t, err)
	defer led.Close()

	written, err := led.Append([]order.Order{testRow("44-44444-44444", "HLMR05")})
	require.NoError(t, err)
	assert.Equal(t, 1, written)
	require.NoError(t, led.Save())

	// Reopen and inspect the appended row (first free row was 3).
	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	get := func(cell string) string {
		v, err := f.GetCellValue(testSheet, cell)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "Ebay", get("B3"))
	assert.Equal(t, "2", get("C3"))
	assert.Equal(t, "19.99", get("D3"))
	assert.Equal(t, "HLMR05", get("E3"))
	assert.Equal(t, "Wuppertal", get("F3"))
	assert.Equal(t, "Ebay", get("G3"))
	assert.Equal(t, "44-44444-44444", get("H3"))
	assert.Equal(t, "", get("I3"))
	assert.Equal(t, "kaeufer42", get("J3"))
	assert.Equal(t, "max@example.org", get("K3"))
	assert.Equal(t, "+49 202 123456", get("L3"))
	assert.Equal(t, "Versand", get("M3"))
	assert.Equal(t, "Max Mustermann", get("N3"))
	assert.Equal(t, "Hauptstr. 1", get("O3"))
	assert.Equal(t, "42103", get("P3"))
	assert.Equal(t, "Wuppertal", get("Q3"))

	// The date cell is date-typed and displayed in the merchant format.
	assert.Equal(t, "01.03.24", get("A3"))
}

func TestAppendStartsAtFirstEmptyColumnARow(t *testing.T) {
	// Header only, no data rows: the first free row is 2.
	path := newTestLedger(t)

	led, err := Open(path, testSheet)
	require.NoError(t, err)
	defer led.Close()

	_, err = led.Append([]order.Order{
		testRow("55-55555-55555", "A"),
		testRow("66-66666-66666", "B"),
	})
	require.NoError(t, err)
	require.NoError(t, led.Save())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	id2, _ := f.GetCellValue(testSheet, "H2")
	id3, _ := f.GetCellValue(testSheet, "H3")
	assert.Equal(t, "55-55555-55555", id2)
	assert.Equal(t, "66-66666-66666", id3)
}

func TestAppendInvalidDateFails(t *testing.T) {
	path := newTestLedger(t)

	led, err := Open(path, testSheet)
	require.NoError(t, err)
	defer led.Close()

	row := testRow("77-77777-77777", "A")
	row.CreationDate = "Nicht ange"

	_, err = led.Append([]order.Order{row})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "77-77777-77777")
}
