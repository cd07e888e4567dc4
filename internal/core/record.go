package core

import (
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// WearReservePerMile is the advisory wear-and-tear accrual per mile driven.
// It is informational only and never part of TotalExpenses.
const WearReservePerMile = 0.10

type (
	// Date is a calendar day. Records are keyed by Date, one record per day.
	Date struct {
		time.Time
	}

	// VehicleConfig holds the per-vehicle parameters used when deriving a
	// record. It is a singleton mutated in place; each saved record snapshots
	// the values in effect at save time.
	VehicleConfig struct {
		MPG          float64 `json:"mpg"`
		GasPrice     float64 `json:"gas_price"`
		DailyNetGoal float64 `json:"daily_net_goal"`
	}

	// LineItem is a named ad-hoc income or expense entry supplementing the
	// fixed categories.
	LineItem struct {
		Name   string  `json:"name"`
		Amount float64 `json:"amount"`
	}

	// ShiftInputs are the raw values a driver enters for one day.
	ShiftInputs struct {
		UberEarnings       float64
		LyftEarnings       float64
		CashTips           float64
		AdditionalIncome   []LineItem
		OdometerStart      int64
		OdometerEnd        int64
		FoodCost           float64
		MiscCost           float64
		AdditionalExpenses []LineItem
	}

	// DailyRecord is the unit of persistence: the inputs for one date, the
	// vehicle config snapshotted at save time, and the derived metrics.
	// Every derived field is a pure function of the record's own inputs.
	DailyRecord struct {
		Date Date

		// Config snapshot
		MPG          float64
		GasPrice     float64
		DailyNetGoal float64

		// Inputs
		UberEarnings       float64
		LyftEarnings       float64
		CashTips           float64
		AdditionalIncome   []LineItem
		OdometerStart      int64
		OdometerEnd        int64
		FoodCost           float64
		MiscCost           float64
		AdditionalExpenses []LineItem

		// Derived
		MilesDriven   float64
		GallonsUsed   float64
		FuelCost      float64
		WearAndTear   float64
		TotalGross    float64
		TotalExpenses float64
		NetProfit     float64
		ExpenseRatio  float64
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrNegativeAmount    = errors.New("negative amount")
	ErrNegativeOdometer  = errors.New("negative odometer reading")
	ErrEmptyLineItemName = errors.New("empty line item name")
	ErrInvalidMPG        = errors.New("mpg must be positive")
	ErrNegativeGasPrice  = errors.New("negative gas price")
	ErrNegativeGoal      = errors.New("negative daily net goal")
)

// DefaultVehicleConfig returns the configuration used before the driver has
// saved their own settings.
func DefaultVehicleConfig() VehicleConfig {
	return VehicleConfig{MPG: 35.0, GasPrice: 3.10, DailyNetGoal: 200.0}
}

func (c VehicleConfig) Validate() error {
	if c.MPG <= 0 {
		return ErrInvalidMPG
	}
	if c.GasPrice < 0 {
		return ErrNegativeGasPrice
	}
	if c.DailyNetGoal < 0 {
		return ErrNegativeGoal
	}
	return nil
}

// NewDate creates a Date from year, month, day at UTC midnight.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ISO formats the date as YYYY-MM-DD, the persistence key format.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// AddDays returns the date n calendar days later (negative n goes back).
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (li LineItem) Validate() error {
	if strings.TrimSpace(li.Name) == "" {
		return ErrEmptyLineItemName
	}
	if li.Amount < 0 {
		return ErrNegativeAmount
	}
	return nil
}

// LineItemTotal sums the amounts of a line item collection.
func LineItemTotal(items []LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// EncodeLineItems serializes a line item collection for storage in a single
// text column. An empty collection encodes to the empty string.
func EncodeLineItems(items []LineItem) (string, error) {
	if len(items) == 0 {
		return "", nil
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeLineItems is the inverse of EncodeLineItems. Absent or unparseable
// JSON decodes to an empty collection rather than failing.
func DecodeLineItems(s string) []LineItem {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	var items []LineItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil
	}
	return items
}

// Validate rejects out-of-domain inputs at the boundary. ComputeRecord itself
// does not clamp; callers validate first.
func (in ShiftInputs) Validate() error {
	for _, v := range []float64{in.UberEarnings, in.LyftEarnings, in.CashTips, in.FoodCost, in.MiscCost} {
		if v < 0 {
			return ErrNegativeAmount
		}
	}
	if in.OdometerStart < 0 || in.OdometerEnd < 0 {
		return ErrNegativeOdometer
	}
	for _, it := range in.AdditionalIncome {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	for _, it := range in.AdditionalExpenses {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// ComputeRecord derives a full DailyRecord from one shift's raw inputs and
// the vehicle config in effect. It is a total function over validated inputs
// and raises no errors itself.
//
// Mileage policy: an end reading at or below the start, or a missing/zero
// start reading, yields zero miles. That is insufficient data, not an error.
func ComputeRecord(date Date, in ShiftInputs, cfg VehicleConfig) DailyRecord {
	r := DailyRecord{
		Date:               date,
		MPG:                cfg.MPG,
		GasPrice:           cfg.GasPrice,
		DailyNetGoal:       cfg.DailyNetGoal,
		UberEarnings:       in.UberEarnings,
		LyftEarnings:       in.LyftEarnings,
		CashTips:           in.CashTips,
		AdditionalIncome:   in.AdditionalIncome,
		OdometerStart:      in.OdometerStart,
		OdometerEnd:        in.OdometerEnd,
		FoodCost:           in.FoodCost,
		MiscCost:           in.MiscCost,
		AdditionalExpenses: in.AdditionalExpenses,
	}

	if in.OdometerEnd > in.OdometerStart && in.OdometerStart > 0 {
		r.MilesDriven = float64(in.OdometerEnd - in.OdometerStart)
	}

	// cfg.MPG <= 0 never passes config validation; a zero here means the
	// caller skipped it, and fuel use stays zero.
	if cfg.MPG > 0 {
		r.GallonsUsed = r.MilesDriven / cfg.MPG
	}
	r.FuelCost = r.GallonsUsed * cfg.GasPrice
	r.WearAndTear = r.MilesDriven * WearReservePerMile

	r.TotalGross = in.UberEarnings + in.LyftEarnings + in.CashTips + LineItemTotal(in.AdditionalIncome)
	r.TotalExpenses = r.FuelCost + in.FoodCost + in.MiscCost + LineItemTotal(in.AdditionalExpenses)
	r.NetProfit = r.TotalGross - r.TotalExpenses
	if r.TotalGross > 0 {
		r.ExpenseRatio = r.TotalExpenses / r.TotalGross * 100
	}

	return r
}

// Health grades the day's expense ratio for display.
type Health string

const (
	HealthExcellent Health = "excellent"
	HealthWatch     Health = "watch"
	HealthAlert     Health = "alert"
	HealthNoData    Health = "no_data"
)

// Health classifies the record's expense ratio. Not stored; derived on read.
func (r DailyRecord) Health() Health {
	switch {
	case r.TotalGross == 0:
		return HealthNoData
	case r.ExpenseRatio < 20:
		return HealthExcellent
	case r.ExpenseRatio <= 35:
		return HealthWatch
	default:
		return HealthAlert
	}
}
