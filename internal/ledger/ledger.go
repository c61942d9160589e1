// =============================================================================
// eBay Order Export - Ledger Workbook
// =============================================================================
//
// The ledger is an Excel workbook the merchant maintains by hand. This module
// reads the identifiers of already-exported orders from it, removes known
// orders from the pipeline output, appends the remaining rows and persists
// the workbook with a full rewrite.
//
// LEDGER LAYOUT (1-indexed columns, identifiers from row 2 downward):
//
//   | Col | Content          |   | Col | Content          |
//   |-----|------------------|---|-----|------------------|
//   |  1  | date (DD.MM.YY)  |   | 10  | buyer username   |
//   |  2  | "Ebay"           |   | 11  | email            |
//   |  3  | quantity         |   | 12  | phone            |
//   |  4  | price            |   | 13  | "Versand"        |
//   |  5  | sku              |   | 14  | recipient name   |
//   |  6  | "Wuppertal"      |   | 15  | street           |
//   |  7  | "Ebay"           |   | 16  | postal code      |
//   |  8  | order id         |   | 17  | city             |
//   |  9  | (blank)          |   |     |                  |
//
// APPEND STRATEGY:
//   New rows start at the first row whose column A is empty, found by a
//   top-down scan. The scan runs once; subsequent rows of the same run use
//   the cached counter. The whole workbook is held in memory between Open
//   and Save; nothing guards against another writer touching the file in
//   between.
//
// =============================================================================

package ledger

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ebaytools/order-export/internal/order"
)

// Fixed labels written into the constant columns.
const (
	// PlatformLabel goes into columns 2 and 7.
	PlatformLabel = "Ebay"

	// LocationLabel goes into column 6.
	LocationLabel = "Wuppertal"

	// ShippingLabel goes into column 13.
	ShippingLabel = "Versand"
)

// orderIDColumn is the 1-indexed column holding the order identifiers.
const orderIDColumn = 8

// dateNumberFormat is the display format of the date cells in column A.
const dateNumberFormat = "DD.MM.YY"

// storedDateLayout is the layout of the date string arriving from the
// pipeline (the truncated creation timestamp).
const storedDateLayout = "2006-01-02"

// =============================================================================
// LEDGER
// =============================================================================

// Ledger is an open ledger workbook.
type Ledger struct {
	file  *excelize.File
	path  string
	sheet string
}

// Open loads the workbook and verifies the target sheet exists.
//
// PARAMETERS:
//   - path: Path to the workbook file.
//   - sheet: Name of the worksheet holding the ledger.
//
// RETURNS:
//   - The open ledger.
//   - An error if the file cannot be opened or the sheet is missing. Both are
//     setup errors: the pipeline must not start on a broken ledger.
func Open(path, sheet string) (*Ledger, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ledger file: %w", err)
	}

	index, err := f.GetSheetIndex(sheet)
	if err != nil || index < 0 {
		f.Close()
		return nil, fmt.Errorf("worksheet %q not found in %s", sheet, path)
	}

	return &Ledger{file: f, path: path, sheet: sheet}, nil
}

// Close releases the workbook without saving.
func (l *Ledger) Close() error {
	return l.file.Close()
}

// Path returns the workbook path.
func (l *Ledger) Path() string {
	return l.path
}

// =============================================================================
// DEDUPLICATION
// =============================================================================

// OrderIDs scans the identifier column once (rows beyond the header) and
// returns the set of order identifiers already recorded in the ledger.
func (l *Ledger) OrderIDs() (map[string]struct{}, error) {
	rows, err := l.file.GetRows(l.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger rows: %w", err)
	}

	ids := make(map[string]struct{})
	for i, row := range rows {
		// Row 1 is the header.
		if i == 0 {
			continue
		}
		if len(row) >= orderIDColumn {
			if id := row[orderIDColumn-1]; id != "" {
				ids[id] = struct{}{}
			}
		}
	}

	return ids, nil
}

// Deduplicate returns the subsequence of rows whose order identifier is not
// in the existing set, order preserved.
//
// The granularity is the whole order, not the line item: rows sharing one
// identifier are kept or dropped as a unit, because a previously exported
// order is skipped wholesale even when the transformer emitted several rows
// for it.
func Deduplicate(rows []order.Order, existing map[string]struct{}) []order.Order {
	kept := make([]order.Order, 0, len(rows))
	for _, row := range rows {
		if _, found := existing[row.OrderID]; !found {
			kept = append(kept, row)
		}
	}
	return kept
}

// =============================================================================
// APPEND AND SAVE
// =============================================================================

// Append writes the rows into the ledger, one worksheet row per record,
// starting at the first row whose column A is empty.
//
// RETURNS:
//   - The number of rows written.
//   - An error if a stored date cannot be parsed or a cell write fails.
//
// The workbook is only modified in memory; call Save to persist.
func (l *Ledger) Append(rows []order.Order) (int, error) {
	next, err := l.firstEmptyRow()
	if err != nil {
		return 0, err
	}

	dateStyle, err := l.file.NewStyle(&excelize.Style{
		CustomNumFmt: stringPtr(dateNumberFormat),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create date style: %w", err)
	}

	for written, record := range rows {
		if err := l.writeRow(next, record, dateStyle); err != nil {
			return written, err
		}
		next++
	}

	return len(rows), nil
}

// Save persists the workbook with a full rewrite of the file.
func (l *Ledger) Save() error {
	if err := l.file.Save(); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}
	return nil
}

// firstEmptyRow scans column A top-down for the first empty cell.
func (l *Ledger) firstEmptyRow() (int, error) {
	row := 1
	for {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return 0, err
		}
		value, err := l.file.GetCellValue(l.sheet, cell)
		if err != nil {
			return 0, fmt.Errorf("failed to scan ledger column A: %w", err)
		}
		if value == "" {
			return row, nil
		}
		row++
	}
}

// writeRow fills one worksheet row with the record, in the fixed column
// layout. Column 9 is intentionally left blank.
func (l *Ledger) writeRow(row int, record order.Order, dateStyle int) error {
	// The stored date string becomes a real date-typed cell so the workbook
	// displays it in the merchant's DD.MM.YY format.
	date, err := time.Parse(storedDateLayout, record.CreationDate)
	if err != nil {
		return fmt.Errorf("order %s: invalid ledger date %q: %w", record.OrderID, record.CreationDate, err)
	}

	cells := []struct {
		column int
		value  interface{}
	}{
		{1, date},
		{2, PlatformLabel},
		{3, record.Quantity},
		{4, record.Price.InexactFloat64()},
		{5, record.SKU},
		{6, LocationLabel},
		{7, PlatformLabel},
		{8, record.OrderID},
		{10, record.BuyerUsername},
		{11, record.Email},
		{12, record.Phone},
		{13, ShippingLabel},
		{14, record.FullName},
		{15, record.Street},
		{16, record.PostalCode},
		{17, record.City},
	}

	for _, c := range cells {
		name, err := excelize.CoordinatesToCellName(c.column, row)
		if err != nil {
			return err
		}
		if err := l.file.SetCellValue(l.sheet, name, c.value); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", name, err)
		}
	}

	dateCell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := l.file.SetCellStyle(l.sheet, dateCell, dateCell, dateStyle); err != nil {
		return fmt.Errorf("failed to style date cell %s: %w", dateCell, err)
	}

	return nil
}

// stringPtr returns a pointer to s, for excelize style options.
func stringPtr(s string) *string {
	return &s
}
