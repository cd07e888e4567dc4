// Package export renders daily records as a spreadsheet download.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"driverledger/internal/core"
)

const sheetName = "Daily Records"

var headers = []string{
	"Date", "Miles Driven", "Gallons Used", "Fuel Cost", "Wear & Tear",
	"Uber", "Lyft", "Cash Tips", "Other Income",
	"Food", "Misc", "Other Expenses",
	"Total Gross", "Total Expenses", "Net Profit", "Expense Ratio %", "Health",
}

// WriteXLSX writes the records as an xlsx workbook, one row per day plus a
// totals row. Records are written in the order given.
func WriteXLSX(w io.Writer, records []core.DailyRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, header); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	stats := core.Statistics(records)

	for rowIdx, rec := range records {
		row := []any{
			rec.Date.ISO(),
			rec.MilesDriven, rec.GallonsUsed, rec.FuelCost, rec.WearAndTear,
			rec.UberEarnings, rec.LyftEarnings, rec.CashTips, core.LineItemTotal(rec.AdditionalIncome),
			rec.FoodCost, rec.MiscCost, core.LineItemTotal(rec.AdditionalExpenses),
			rec.TotalGross, rec.TotalExpenses, rec.NetProfit, rec.ExpenseRatio,
			string(rec.Health()),
		}
		for colIdx, v := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", rowIdx+2, err)
			}
		}
	}

	totalsRow := len(records) + 2
	totals := map[int]any{
		1:  "Totals",
		2:  stats.TotalMiles,
		4:  stats.TotalFuelCost,
		13: stats.TotalIncome,
		14: stats.TotalExpenses,
		15: stats.TotalProfit,
	}
	for col, v := range totals {
		cell, _ := excelize.CoordinatesToCellName(col, totalsRow)
		if err := f.SetCellValue(sheetName, cell, v); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
