package adapters

import (
	"context"
	"fmt"

	"driverledger/internal/core"
	"driverledger/internal/sheets"
)

// RecordStore is any store exposing all four sheets ports directly, like the
// Google Sheets client or the in-memory store.
type RecordStore interface {
	sheets.ConfigStore
	sheets.RecordWriter
	sheets.RecordReader
	sheets.RecordDeleter
}

// StoreAdapter lifts a plain RecordStore to the backend surface by deriving
// records itself before writing. Used by backends with no local service
// layer in front of them.
type StoreAdapter struct {
	RecordStore
}

func NewStoreAdapter(store RecordStore) *StoreAdapter {
	return &StoreAdapter{RecordStore: store}
}

// SaveShift implements backend.Backend
func (a *StoreAdapter) SaveShift(ctx context.Context, date core.Date, in core.ShiftInputs) (core.DailyRecord, error) {
	if err := date.Validate(); err != nil {
		return core.DailyRecord{}, err
	}
	if err := in.Validate(); err != nil {
		return core.DailyRecord{}, err
	}

	cfg, err := a.VehicleConfig(ctx)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("load vehicle config: %w", err)
	}

	rec := core.ComputeRecord(date, in, cfg)
	if err := a.SaveRecord(ctx, rec); err != nil {
		return core.DailyRecord{}, fmt.Errorf("save record: %w", err)
	}
	return rec, nil
}
