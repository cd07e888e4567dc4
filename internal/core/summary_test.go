package core

import (
	"reflect"
	"testing"
)

func record(date Date, gross, expenses, miles float64) DailyRecord {
	return DailyRecord{
		Date:          date,
		TotalGross:    gross,
		TotalExpenses: expenses,
		NetProfit:     gross - expenses,
		MilesDriven:   miles,
	}
}

func TestWeekOf(t *testing.T) {
	// 2025-06-04 is a Wednesday; its week is Mon 2025-06-02 .. Sun 2025-06-08.
	p := WeekOf(NewDate(2025, 6, 4))
	if p.Start.ISO() != "2025-06-02" {
		t.Errorf("week start = %s, want 2025-06-02", p.Start.ISO())
	}
	if p.End.ISO() != "2025-06-08" {
		t.Errorf("week end = %s, want 2025-06-08", p.End.ISO())
	}
	if p.Days() != 7 {
		t.Errorf("week days = %d, want 7", p.Days())
	}

	// A Monday is its own week start; a Sunday belongs to the week that
	// started six days earlier.
	if got := WeekOf(NewDate(2025, 6, 2)).Start.ISO(); got != "2025-06-02" {
		t.Errorf("monday week start = %s", got)
	}
	if got := WeekOf(NewDate(2025, 6, 8)).Start.ISO(); got != "2025-06-02" {
		t.Errorf("sunday week start = %s", got)
	}
}

func TestMonthOf(t *testing.T) {
	tests := []struct {
		year, month int
		end         string
		days        int
	}{
		{2025, 1, "2025-01-31", 31},
		{2025, 2, "2025-02-28", 28},
		{2024, 2, "2024-02-29", 29}, // leap year
		{2025, 4, "2025-04-30", 30},
		{2025, 12, "2025-12-31", 31},
	}
	for _, tt := range tests {
		p := MonthOf(tt.year, tt.month)
		if p.End.ISO() != tt.end {
			t.Errorf("MonthOf(%d,%d) end = %s, want %s", tt.year, tt.month, p.End.ISO(), tt.end)
		}
		if p.Days() != tt.days {
			t.Errorf("MonthOf(%d,%d) days = %d, want %d", tt.year, tt.month, p.Days(), tt.days)
		}
	}
}

func TestSummarizeWeek(t *testing.T) {
	p := WeekOf(NewDate(2025, 6, 4))
	records := []DailyRecord{
		record(NewDate(2025, 6, 2), 150, 30, 40),
		record(NewDate(2025, 6, 4), 200, 50, 60),
		record(NewDate(2025, 6, 8), 100, 20, 25), // exactly on week end: included
		record(NewDate(2025, 6, 9), 999, 999, 99), // one day after: excluded
		record(NewDate(2025, 6, 1), 999, 999, 99), // day before week start: excluded
		{},                                        // zero date: skipped
	}

	s := Summarize(records, p, 50)

	if s.DaysWithData != 3 {
		t.Errorf("DaysWithData = %d, want 3", s.DaysWithData)
	}
	if !almostEqual(s.TotalIncome, 450) {
		t.Errorf("TotalIncome = %v, want 450", s.TotalIncome)
	}
	if !almostEqual(s.TotalExpenses, 100) {
		t.Errorf("TotalExpenses = %v, want 100", s.TotalExpenses)
	}
	if !almostEqual(s.TotalProfit, 350) {
		t.Errorf("TotalProfit = %v, want 350", s.TotalProfit)
	}
	if !almostEqual(s.TotalMiles, 125) {
		t.Errorf("TotalMiles = %v, want 125", s.TotalMiles)
	}
	if !almostEqual(s.GoalForPeriod, 350) {
		t.Errorf("GoalForPeriod = %v, want 350", s.GoalForPeriod)
	}
	if !almostEqual(s.DifferenceVsGoal, 0) {
		t.Errorf("DifferenceVsGoal = %v, want 0", s.DifferenceVsGoal)
	}
	if !almostEqual(s.PercentOfGoal, 100) {
		t.Errorf("PercentOfGoal = %v, want 100", s.PercentOfGoal)
	}
}

func TestSummarizeGoalScaling(t *testing.T) {
	// 31-day month at goal 10 -> 310; non-leap February -> 280.
	if s := Summarize(nil, MonthOf(2025, 1), 10); !almostEqual(s.GoalForPeriod, 310) {
		t.Errorf("January goal = %v, want 310", s.GoalForPeriod)
	}
	if s := Summarize(nil, MonthOf(2025, 2), 10); !almostEqual(s.GoalForPeriod, 280) {
		t.Errorf("February goal = %v, want 280", s.GoalForPeriod)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	p := MonthOf(2025, 4) // 30 days
	s := Summarize(nil, p, 200)

	if s.DaysWithData != 0 || s.TotalIncome != 0 || s.TotalProfit != 0 {
		t.Errorf("empty summary should be all zero sums: %+v", s)
	}
	if !almostEqual(s.DifferenceVsGoal, -6000) {
		t.Errorf("DifferenceVsGoal = %v, want -6000", s.DifferenceVsGoal)
	}
	if s.PercentOfGoal != 0 {
		t.Errorf("PercentOfGoal = %v, want 0", s.PercentOfGoal)
	}
}

func TestSummarizeZeroGoal(t *testing.T) {
	s := Summarize([]DailyRecord{record(NewDate(2025, 6, 3), 100, 10, 5)}, WeekOf(NewDate(2025, 6, 3)), 0)
	if s.PercentOfGoal != 0 {
		t.Errorf("PercentOfGoal = %v, want 0 when goal is 0", s.PercentOfGoal)
	}
	if !almostEqual(s.DifferenceVsGoal, 90) {
		t.Errorf("DifferenceVsGoal = %v, want 90", s.DifferenceVsGoal)
	}
}

func TestSummarizeIdempotent(t *testing.T) {
	records := []DailyRecord{
		record(NewDate(2025, 6, 2), 150.33, 30.11, 40.5),
		record(NewDate(2025, 6, 3), 87.2, 19.99, 22),
	}
	p := WeekOf(NewDate(2025, 6, 2))
	a := Summarize(records, p, 175.5)
	b := Summarize(records, p, 175.5)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("summaries differ across identical calls:\n%+v\n%+v", a, b)
	}
}

func TestStatistics(t *testing.T) {
	records := []DailyRecord{
		{Date: NewDate(2025, 6, 2), TotalGross: 100, TotalExpenses: 20, NetProfit: 80, MilesDriven: 50, FuelCost: 8},
		{Date: NewDate(2025, 6, 3), TotalGross: 200, TotalExpenses: 60, NetProfit: 140, MilesDriven: 70, FuelCost: 11},
	}
	st := Statistics(records)
	if st.TotalDays != 2 {
		t.Errorf("TotalDays = %d", st.TotalDays)
	}
	if !almostEqual(st.TotalProfit, 220) || !almostEqual(st.AvgDailyProfit, 110) {
		t.Errorf("profit = %v avg = %v", st.TotalProfit, st.AvgDailyProfit)
	}
	if !almostEqual(st.TotalMiles, 120) || !almostEqual(st.TotalFuelCost, 19) {
		t.Errorf("miles = %v fuel = %v", st.TotalMiles, st.TotalFuelCost)
	}

	empty := Statistics(nil)
	if empty.TotalDays != 0 || empty.AvgDailyProfit != 0 {
		t.Errorf("empty stats: %+v", empty)
	}
}
