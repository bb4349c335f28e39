package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

// WriteStockExcel writes the summary as a single-sheet workbook.
func WriteStockExcel(w io.Writer, s StockSummary, generatedAt time.Time) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Stock"
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheet); err != nil {
		return err
	}

	title := []interface{}{fmt.Sprintf("Stock summary %s", generatedAt.Format("2006-01-02 15:04"))}
	if err := f.SetSheetRow(sheet, "A1", &title); err != nil {
		return fmt.Errorf("title: %w", err)
	}

	header := []interface{}{"category", "size", "unit", "quantity"}
	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return fmt.Errorf("header: %w", err)
	}

	row := 4
	for _, r := range s.Rows {
		excelRow := []interface{}{string(r.Category), string(r.Size), string(r.Unit), r.Quantity}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &excelRow); err != nil {
			return fmt.Errorf("row %d: %w", row, err)
		}
		row++
	}

	row++
	totals := [][]interface{}{
		{"total sorted", "", "", s.TotalSorted},
		{"rejected", "", "", s.Rejected},
		{"unsorted remaining", "", "", s.UnsortedRemaining},
	}
	for _, t := range totals {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &t); err != nil {
			return fmt.Errorf("totals: %w", err)
		}
		row++
	}

	return f.Write(w)
}
