package http

import (
	"log/slog"
	"net/http"

	"driverledger/internal/core"
	"driverledger/internal/log"
)

type lineItemPayload struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

type recordRequest struct {
	Date               string            `json:"date"`
	UberEarnings       float64           `json:"uber_earnings"`
	LyftEarnings       float64           `json:"lyft_earnings"`
	CashTips           float64           `json:"cash_tips"`
	AdditionalIncome   []lineItemPayload `json:"additional_income,omitempty"`
	OdometerStart      int64             `json:"odometer_start"`
	OdometerEnd        int64             `json:"odometer_end"`
	FoodCost           float64           `json:"food_cost"`
	MiscCost           float64           `json:"misc_cost"`
	AdditionalExpenses []lineItemPayload `json:"additional_expenses,omitempty"`
}

type recordResponse struct {
	Date string `json:"date"`

	MPG          float64 `json:"mpg"`
	GasPrice     float64 `json:"gas_price"`
	DailyNetGoal float64 `json:"daily_net_goal"`

	UberEarnings       float64           `json:"uber_earnings"`
	LyftEarnings       float64           `json:"lyft_earnings"`
	CashTips           float64           `json:"cash_tips"`
	AdditionalIncome   []lineItemPayload `json:"additional_income,omitempty"`
	OdometerStart      int64             `json:"odometer_start"`
	OdometerEnd        int64             `json:"odometer_end"`
	FoodCost           float64           `json:"food_cost"`
	MiscCost           float64           `json:"misc_cost"`
	AdditionalExpenses []lineItemPayload `json:"additional_expenses,omitempty"`

	MilesDriven   float64 `json:"miles_driven"`
	GallonsUsed   float64 `json:"gallons_used"`
	FuelCost      float64 `json:"fuel_cost"`
	WearAndTear   float64 `json:"wear_and_tear"`
	TotalGross    float64 `json:"total_gross"`
	TotalExpenses float64 `json:"total_expenses"`
	NetProfit     float64 `json:"net_profit"`
	ExpenseRatio  float64 `json:"expense_ratio"`
	Health        string  `json:"health"`
}

func toLineItems(in []lineItemPayload) []core.LineItem {
	if len(in) == 0 {
		return nil
	}
	out := make([]core.LineItem, len(in))
	for i, li := range in {
		out[i] = core.LineItem{Name: li.Name, Amount: li.Amount}
	}
	return out
}

func fromLineItems(in []core.LineItem) []lineItemPayload {
	if len(in) == 0 {
		return nil
	}
	out := make([]lineItemPayload, len(in))
	for i, li := range in {
		out[i] = lineItemPayload{Name: li.Name, Amount: li.Amount}
	}
	return out
}

func toRecordResponse(rec core.DailyRecord) recordResponse {
	return recordResponse{
		Date:               rec.Date.ISO(),
		MPG:                rec.MPG,
		GasPrice:           rec.GasPrice,
		DailyNetGoal:       rec.DailyNetGoal,
		UberEarnings:       rec.UberEarnings,
		LyftEarnings:       rec.LyftEarnings,
		CashTips:           rec.CashTips,
		AdditionalIncome:   fromLineItems(rec.AdditionalIncome),
		OdometerStart:      rec.OdometerStart,
		OdometerEnd:        rec.OdometerEnd,
		FoodCost:           rec.FoodCost,
		MiscCost:           rec.MiscCost,
		AdditionalExpenses: fromLineItems(rec.AdditionalExpenses),
		MilesDriven:        rec.MilesDriven,
		GallonsUsed:        rec.GallonsUsed,
		FuelCost:           rec.FuelCost,
		WearAndTear:        rec.WearAndTear,
		TotalGross:         rec.TotalGross,
		TotalExpenses:      rec.TotalExpenses,
		NetProfit:          rec.NetProfit,
		ExpenseRatio:       rec.ExpenseRatio,
		Health:             string(rec.Health()),
	}
}

// handleSaveRecord derives and upserts the record for the request's date.
// Posting twice for one date replaces the day, it never doubles it.
func (s *Server) handleSaveRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	in := core.ShiftInputs{
		UberEarnings:       req.UberEarnings,
		LyftEarnings:       req.LyftEarnings,
		CashTips:           req.CashTips,
		AdditionalIncome:   toLineItems(req.AdditionalIncome),
		OdometerStart:      req.OdometerStart,
		OdometerEnd:        req.OdometerEnd,
		FoodCost:           req.FoodCost,
		MiscCost:           req.MiscCost,
		AdditionalExpenses: toLineItems(req.AdditionalExpenses),
	}

	rec, err := s.store.SaveShift(r.Context(), date, in)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateAggregates()

	slog.InfoContext(r.Context(), "Record saved",
		log.FieldRecordDate, rec.Date.ISO(),
		log.FieldNetProfit, rec.NetProfit,
		log.FieldMiles, rec.MilesDriven)

	writeJSON(w, r, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit, err := queryLimit(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	records, err := s.store.Records(r.Context(), limit)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]recordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, toRecordResponse(rec))
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	rec, ok, err := s.store.RecordByDate(r.Context(), date)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "no record for "+date.ISO())
		return
	}
	writeJSON(w, r, http.StatusOK, toRecordResponse(rec))
}

// handleLastRecord returns the most recent record, used to pre-fill the next
// day's starting odometer.
func (s *Server) handleLastRecord(w http.ResponseWriter, r *http.Request) {
	rec, ok, err := s.store.LastRecord(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "no records yet")
		return
	}
	writeJSON(w, r, http.StatusOK, toRecordResponse(rec))
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	date, err := pathDate(r)
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, "invalid date, want YYYY-MM-DD")
		return
	}

	if err := s.store.DeleteRecord(r.Context(), date); err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateAggregates()

	slog.InfoContext(r.Context(), "Record deleted", log.FieldRecordDate, date.ISO())
	w.WriteHeader(http.StatusNoContent)
}
