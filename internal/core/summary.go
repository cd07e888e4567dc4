package core

// Period is an inclusive date range a summary is computed over.
type Period struct {
	Start Date
	End   Date
}

// Days returns the period length in calendar days, both ends inclusive.
func (p Period) Days() int {
	return int(p.End.Sub(p.Start.Time).Hours()/24) + 1
}

// Contains reports whether the date falls inside the period, inclusive on
// both ends.
func (p Period) Contains(d Date) bool {
	return !d.Before(p.Start.Time) && !d.After(p.End.Time)
}

// WeekOf resolves the Monday-to-Sunday week containing the reference date.
func WeekOf(ref Date) Period {
	offset := (int(ref.Weekday()) + 6) % 7 // Monday = 0
	start := ref.AddDays(-offset)
	return Period{Start: start, End: start.AddDays(6)}
}

// MonthOf resolves true calendar-month boundaries for a year and month, so a
// 28-day February and a 31-day January are compared fairly against the goal.
func MonthOf(year, month int) Period {
	start := NewDate(year, month, 1)
	end := Date{Time: start.AddDate(0, 1, -1)}
	return Period{Start: start, End: end}
}

// Summary aggregates the daily records of one period against the goal.
// It is never persisted; callers recompute it on demand.
type Summary struct {
	Period           Period
	DaysWithData     int
	TotalIncome      float64
	TotalExpenses    float64
	TotalProfit      float64
	TotalMiles       float64
	GoalForPeriod    float64
	DifferenceVsGoal float64
	PercentOfGoal    float64
}

// Summarize folds the records dated inside the period into a Summary.
// Records outside the period, or with a zero date, are skipped. Zero records
// is not an error: the sums stay at zero and the goal is fully missed.
func Summarize(records []DailyRecord, p Period, dailyGoal float64) Summary {
	s := Summary{Period: p}
	for _, r := range records {
		if r.Date.IsZero() || !p.Contains(r.Date) {
			continue
		}
		s.DaysWithData++
		s.TotalIncome += r.TotalGross
		s.TotalExpenses += r.TotalExpenses
		s.TotalProfit += r.NetProfit
		s.TotalMiles += r.MilesDriven
	}
	s.GoalForPeriod = dailyGoal * float64(p.Days())
	s.DifferenceVsGoal = s.TotalProfit - s.GoalForPeriod
	if s.GoalForPeriod > 0 {
		s.PercentOfGoal = s.TotalProfit / s.GoalForPeriod * 100
	}
	return s
}

// Stats are all-time aggregates over every saved record.
type Stats struct {
	TotalDays      int
	TotalIncome    float64
	TotalExpenses  float64
	TotalProfit    float64
	AvgDailyProfit float64
	TotalMiles     float64
	TotalFuelCost  float64
}

// Statistics sums every record regardless of date.
func Statistics(records []DailyRecord) Stats {
	var st Stats
	for _, r := range records {
		st.TotalDays++
		st.TotalIncome += r.TotalGross
		st.TotalExpenses += r.TotalExpenses
		st.TotalProfit += r.NetProfit
		st.TotalMiles += r.MilesDriven
		st.TotalFuelCost += r.FuelCost
	}
	if st.TotalDays > 0 {
		st.AvgDailyProfit = st.TotalProfit / float64(st.TotalDays)
	}
	return st
}
