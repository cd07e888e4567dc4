package backend

import (
	"context"

	"driverledger/internal/core"
	"driverledger/internal/sheets"
)

// Backend is the unified store the HTTP layer talks to. Reads, deletes, and
// config management come straight from the sheets ports; saving goes through
// SaveShift so every backend derives the record from raw inputs the same way.
type Backend interface {
	sheets.ConfigStore
	sheets.RecordReader
	sheets.RecordDeleter

	// SaveShift derives a record for the date from the shift inputs and the
	// current vehicle config, then persists it.
	SaveShift(ctx context.Context, date core.Date, in core.ShiftInputs) (core.DailyRecord, error)
}

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the backend instance and optional cleanup function
type BackendResult struct {
	Backend Backend
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// SQLite specific
	SQLiteDBPath string
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Google Sheets specific
	GoogleSpreadsheetID string
	RecordsSheetName    string
	ConfigSheetName     string
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	SheetsBackend BackendType = "sheets"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
