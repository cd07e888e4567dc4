package google

import (
	"math"
	"testing"

	"driverledger/internal/core"
)

func TestRecordRowRoundTrip(t *testing.T) {
	cfg := core.VehicleConfig{MPG: 30, GasPrice: 3.50, DailyNetGoal: 180}
	in := core.ShiftInputs{
		UberEarnings:       120.50,
		LyftEarnings:       45.25,
		CashTips:           12,
		AdditionalIncome:   []core.LineItem{{Name: "bonus", Amount: 25}},
		OdometerStart:      50_000,
		OdometerEnd:        50_150,
		FoodCost:           14.75,
		MiscCost:           3,
		AdditionalExpenses: []core.LineItem{{Name: "car wash", Amount: 10}},
	}
	want := core.ComputeRecord(core.NewDate(2025, 6, 4), in, cfg)

	row, err := recordToRow(want)
	if err != nil {
		t.Fatalf("recordToRow: %v", err)
	}
	if len(row) != recordRowLen {
		t.Fatalf("row length = %d, want %d", len(row), recordRowLen)
	}

	got, ok := rowToRecord(row)
	if !ok {
		t.Fatal("rowToRecord rejected its own output")
	}
	if !got.Date.Equal(want.Date.Time) {
		t.Errorf("date = %s, want %s", got.Date.ISO(), want.Date.ISO())
	}
	if got.OdometerStart != want.OdometerStart || got.OdometerEnd != want.OdometerEnd {
		t.Errorf("odometer = %d..%d, want %d..%d",
			got.OdometerStart, got.OdometerEnd, want.OdometerStart, want.OdometerEnd)
	}
	for _, c := range []struct {
		name      string
		got, want float64
	}{
		{"net profit", got.NetProfit, want.NetProfit},
		{"total gross", got.TotalGross, want.TotalGross},
		{"total expenses", got.TotalExpenses, want.TotalExpenses},
		{"expense ratio", got.ExpenseRatio, want.ExpenseRatio},
		{"miles driven", got.MilesDriven, want.MilesDriven},
	} {
		if math.Abs(c.got-c.want) > 1e-9 {
			t.Errorf("%s = %v, want %v", c.name, c.got, c.want)
		}
	}
	if len(got.AdditionalIncome) != 1 || got.AdditionalIncome[0].Name != "bonus" {
		t.Errorf("additional income = %+v", got.AdditionalIncome)
	}
	if len(got.AdditionalExpenses) != 1 || got.AdditionalExpenses[0].Amount != 10 {
		t.Errorf("additional expenses = %+v", got.AdditionalExpenses)
	}
}

func TestRowToRecordSkipsNonDataRows(t *testing.T) {
	cases := [][]any{
		nil,
		{},
		{"date", "mpg", "gas_price"},
		{"not-a-date", "35", "3.10"},
		{""},
	}
	for _, row := range cases {
		if _, ok := rowToRecord(row); ok {
			t.Errorf("rowToRecord(%v) accepted a non-data row", row)
		}
	}
}

func TestRowToRecordShortRow(t *testing.T) {
	rec, ok := rowToRecord([]any{"2025-06-04", "35", "3.10"})
	if !ok {
		t.Fatal("short row with valid date rejected")
	}
	if rec.MPG != 35 || rec.GasPrice != 3.10 {
		t.Errorf("parsed config = %v / %v", rec.MPG, rec.GasPrice)
	}
	if rec.NetProfit != 0 || rec.TotalGross != 0 {
		t.Errorf("missing cells should parse as zero, got %+v", rec)
	}
}

func TestParseFloatCell(t *testing.T) {
	cases := []struct {
		in     any
		want   float64
		wantOK bool
	}{
		{145.50, 145.50, true},
		{"145.50", 145.50, true},
		{"$1,234.56", 1234.56, true},
		{"  12 ", 12, true},
		{"", 0, false},
		{"abc", 0, false},
		{nil, 0, false},
	}
	for _, c := range cases {
		got, ok := parseFloatCell(c.in)
		if ok != c.wantOK || math.Abs(got-c.want) > 1e-9 {
			t.Errorf("parseFloatCell(%v) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.wantOK)
		}
	}
}
