package google

import (
	"fmt"
	"strconv"
	"strings"

	"driverledger/internal/core"
)

// Records sheet column layout, one row per date:
//
//	A  date (YYYY-MM-DD, row key)
//	B  mpg               C  gas_price         D  daily_net_goal
//	E  uber_earnings     F  lyft_earnings     G  cash_tips
//	H  additional_income (JSON)
//	I  odometer_start    J  odometer_end
//	K  food_cost         L  misc_cost
//	M  additional_expenses (JSON)
//	N  miles_driven      O  gallons_used      P  fuel_cost
//	Q  wear_and_tear     R  total_gross       S  total_expenses
//	T  net_profit        U  expense_ratio
const lastRecordColumn = "U"

const recordRowLen = 21

// recordToRow converts a DailyRecord into one sheet row.
func recordToRow(rec core.DailyRecord) ([]any, error) {
	income, err := core.EncodeLineItems(rec.AdditionalIncome)
	if err != nil {
		return nil, fmt.Errorf("encode additional income: %w", err)
	}
	expenses, err := core.EncodeLineItems(rec.AdditionalExpenses)
	if err != nil {
		return nil, fmt.Errorf("encode additional expenses: %w", err)
	}
	return []any{
		rec.Date.ISO(),
		rec.MPG, rec.GasPrice, rec.DailyNetGoal,
		rec.UberEarnings, rec.LyftEarnings, rec.CashTips,
		income,
		rec.OdometerStart, rec.OdometerEnd,
		rec.FoodCost, rec.MiscCost,
		expenses,
		rec.MilesDriven, rec.GallonsUsed, rec.FuelCost,
		rec.WearAndTear, rec.TotalGross, rec.TotalExpenses,
		rec.NetProfit, rec.ExpenseRatio,
	}, nil
}

// rowToRecord parses one sheet row back into a DailyRecord. Rows whose first
// cell is not a parseable date (headers, cleared rows) report ok=false.
// Short rows and malformed numeric cells degrade to zero values; hand-edited
// spreadsheets must not break listing.
func rowToRecord(row []any) (core.DailyRecord, bool) {
	if len(row) == 0 {
		return core.DailyRecord{}, false
	}
	date, err := core.ParseDate(cellString(row, 0))
	if err != nil {
		return core.DailyRecord{}, false
	}

	rec := core.DailyRecord{
		Date:               date,
		MPG:                cellFloat(row, 1),
		GasPrice:           cellFloat(row, 2),
		DailyNetGoal:       cellFloat(row, 3),
		UberEarnings:       cellFloat(row, 4),
		LyftEarnings:       cellFloat(row, 5),
		CashTips:           cellFloat(row, 6),
		AdditionalIncome:   core.DecodeLineItems(cellString(row, 7)),
		OdometerStart:      cellInt(row, 8),
		OdometerEnd:        cellInt(row, 9),
		FoodCost:           cellFloat(row, 10),
		MiscCost:           cellFloat(row, 11),
		AdditionalExpenses: core.DecodeLineItems(cellString(row, 12)),
		MilesDriven:        cellFloat(row, 13),
		GallonsUsed:        cellFloat(row, 14),
		FuelCost:           cellFloat(row, 15),
		WearAndTear:        cellFloat(row, 16),
		TotalGross:         cellFloat(row, 17),
		TotalExpenses:      cellFloat(row, 18),
		NetProfit:          cellFloat(row, 19),
		ExpenseRatio:       cellFloat(row, 20),
	}
	return rec, true
}

func cellString(row []any, i int) string {
	if i >= len(row) || row[i] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

func cellFloat(row []any, i int) float64 {
	v, _ := parseFloatCell(cellString(row, i))
	return v
}

func cellInt(row []any, i int) int64 {
	return int64(cellFloat(row, i))
}

// parseFloatCell parses a numeric cell value. The Sheets API returns cells as
// strings or float64 depending on formatting, and hand-entered values may
// carry currency symbols or comma separators.
func parseFloatCell(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		s = strings.TrimPrefix(s, "$")
		s = strings.ReplaceAll(s, ",", "")
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		s := cellString([]any{v}, 0)
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}
