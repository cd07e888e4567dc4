package adapters

import (
	"context"

	"driverledger/internal/core"
	"driverledger/internal/services"
	"driverledger/internal/storage"
)

// SQLiteAdapter adapts SQLiteRepository and RecordService to the backend
// surface. Reads go straight to the repository; writes go through the service
// so they derive the record and queue the spreadsheet sync.
type SQLiteAdapter struct {
	storage *storage.SQLiteRepository
	service *services.RecordService
}

func NewSQLiteAdapter(storage *storage.SQLiteRepository, service *services.RecordService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

// SaveShift implements backend.Backend
func (a *SQLiteAdapter) SaveShift(ctx context.Context, date core.Date, in core.ShiftInputs) (core.DailyRecord, error) {
	return a.service.SaveRecord(ctx, date, in)
}

// DeleteRecord implements sheets.RecordDeleter
func (a *SQLiteAdapter) DeleteRecord(ctx context.Context, date core.Date) error {
	return a.service.DeleteRecord(ctx, date)
}

// VehicleConfig implements sheets.ConfigStore
func (a *SQLiteAdapter) VehicleConfig(ctx context.Context) (core.VehicleConfig, error) {
	return a.storage.VehicleConfig(ctx)
}

// UpdateVehicleConfig implements sheets.ConfigStore
func (a *SQLiteAdapter) UpdateVehicleConfig(ctx context.Context, cfg core.VehicleConfig) error {
	return a.storage.UpdateVehicleConfig(ctx, cfg)
}

// RecordByDate implements sheets.RecordReader
func (a *SQLiteAdapter) RecordByDate(ctx context.Context, date core.Date) (core.DailyRecord, bool, error) {
	return a.storage.RecordByDate(ctx, date)
}

// Records implements sheets.RecordReader
func (a *SQLiteAdapter) Records(ctx context.Context, limit int) ([]core.DailyRecord, error) {
	return a.storage.Records(ctx, limit)
}

// LastRecord implements sheets.RecordReader
func (a *SQLiteAdapter) LastRecord(ctx context.Context) (core.DailyRecord, bool, error) {
	return a.storage.LastRecord(ctx)
}
