package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"driverledger/internal/core"
	"driverledger/internal/log"
)

type summaryResponse struct {
	Start            string  `json:"start"`
	End              string  `json:"end"`
	Days             int     `json:"days"`
	DaysWithData     int     `json:"days_with_data"`
	TotalIncome      float64 `json:"total_income"`
	TotalExpenses    float64 `json:"total_expenses"`
	TotalProfit      float64 `json:"total_profit"`
	TotalMiles       float64 `json:"total_miles"`
	GoalForPeriod    float64 `json:"goal_for_period"`
	DifferenceVsGoal float64 `json:"difference_vs_goal"`
	PercentOfGoal    float64 `json:"percent_of_goal"`
}

type statsResponse struct {
	TotalDays      int     `json:"total_days"`
	TotalIncome    float64 `json:"total_income"`
	TotalExpenses  float64 `json:"total_expenses"`
	TotalProfit    float64 `json:"total_profit"`
	AvgDailyProfit float64 `json:"avg_daily_profit"`
	TotalMiles     float64 `json:"total_miles"`
	TotalFuelCost  float64 `json:"total_fuel_cost"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Start:            s.Period.Start.ISO(),
		End:              s.Period.End.ISO(),
		Days:             s.Period.Days(),
		DaysWithData:     s.DaysWithData,
		TotalIncome:      s.TotalIncome,
		TotalExpenses:    s.TotalExpenses,
		TotalProfit:      s.TotalProfit,
		TotalMiles:       s.TotalMiles,
		GoalForPeriod:    s.GoalForPeriod,
		DifferenceVsGoal: s.DifferenceVsGoal,
		PercentOfGoal:    s.PercentOfGoal,
	}
}

// summarize computes (or serves from cache) the summary for a period against
// the current daily goal.
func (s *Server) summarize(r *http.Request, p core.Period) (core.Summary, error) {
	key := "summary:" + p.Start.ISO() + ":" + p.End.ISO()
	if cached, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", log.FieldPeriod, key)
		return cached, nil
	}

	cfg, err := s.store.VehicleConfig(r.Context())
	if err != nil {
		return core.Summary{}, fmt.Errorf("load vehicle config: %w", err)
	}

	records, err := s.store.Records(r.Context(), 0)
	if err != nil {
		return core.Summary{}, fmt.Errorf("list records: %w", err)
	}

	sum := core.Summarize(records, p, cfg.DailyNetGoal)
	s.summaryCache.Set(key, sum)
	return sum, nil
}

// handleWeekSummary summarizes the Monday-to-Sunday week containing ?date=
// (today when absent).
func (s *Server) handleWeekSummary(w http.ResponseWriter, r *http.Request) {
	date, err := queryDate(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	sum, err := s.summarize(r, core.WeekOf(date))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSummaryResponse(sum))
}

// handleMonthSummary summarizes the calendar month given by ?year= and
// ?month= (the current month when absent).
func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	year, month, err := queryYearMonth(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	sum, err := s.summarize(r, core.MonthOf(year, month))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toSummaryResponse(sum))
}

// handleStatistics returns lifetime aggregates over every record.
func (s *Server) handleStatistics(w http.ResponseWriter, r *http.Request) {
	const key = "statistics"
	if cached, found := s.statsCache.Get(key); found {
		writeJSON(w, r, http.StatusOK, statsResponse(cached))
		return
	}

	records, err := s.store.Records(r.Context(), 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	stats := core.Statistics(records)
	s.statsCache.Set(key, stats)
	writeJSON(w, r, http.StatusOK, statsResponse(stats))
}
