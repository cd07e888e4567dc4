package worker

import (
	"context"
	"fmt"
	"log/slog"

	"driverledger/internal/amqp"
	"driverledger/internal/core"
	"driverledger/internal/sheets"
	"driverledger/internal/storage"
)

// SyncWorker pushes daily records from SQLite to the remote spreadsheet.
// SQLite is authoritative: every handler re-reads the current local state
// for the message's date, so duplicate and out-of-order deliveries converge
// on the same remote row.
type SyncWorker struct {
	storage   *storage.SQLiteRepository
	remote    sheets.RecordWriter
	deleter   sheets.RecordDeleter
	batchSize int
}

func NewSyncWorker(storage *storage.SQLiteRepository, remote sheets.RecordWriter, deleter sheets.RecordDeleter, batchSize int) *SyncWorker {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &SyncWorker{
		storage:   storage,
		remote:    remote,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleMessage dispatches one AMQP message to the matching handler.
func (w *SyncWorker) HandleMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	switch msg.Kind {
	case amqp.KindRecordSync:
		return w.HandleSyncMessage(ctx, msg)
	case amqp.KindRecordDelete:
		return w.HandleDeleteMessage(ctx, msg)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

// HandleSyncMessage pushes the record for the message's date to the remote
// store. A record deleted locally between publish and delivery is treated as
// already handled, not an error.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("parse message date %q: %w", msg.Date, err)
	}

	rec, ok, err := w.storage.RecordByDate(ctx, date)
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}
	if !ok {
		slog.InfoContext(ctx, "Record gone locally, skipping sync", "date", msg.Date)
		return nil
	}

	return w.pushRecord(ctx, rec)
}

// HandleDeleteMessage removes the record's row from the remote store.
func (w *SyncWorker) HandleDeleteMessage(ctx context.Context, msg *amqp.SyncMessage) error {
	date, err := core.ParseDate(msg.Date)
	if err != nil {
		return fmt.Errorf("parse message date %q: %w", msg.Date, err)
	}

	if w.deleter == nil {
		slog.WarnContext(ctx, "No remote deleter configured, skipping spreadsheet deletion",
			"date", msg.Date)
		return nil
	}

	if err := w.deleter.DeleteRecord(ctx, date); err != nil {
		return fmt.Errorf("delete record from spreadsheet: %w", err)
	}

	slog.InfoContext(ctx, "Successfully deleted record from spreadsheet", "date", msg.Date)
	return nil
}

// ProcessPendingRecords pushes records still marked pending. This is a backup
// mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingRecords(ctx context.Context) error {
	pending, err := w.storage.PendingSyncRecords(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending records: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending records", "count", len(pending))

	for _, rec := range pending {
		if err := w.pushRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record",
				"date", rec.Date.ISO(), "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck pushes any backlog left over from missed AMQP messages or
// worker downtime. It scans a larger batch than the periodic pass.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.PendingSyncRecords(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending records for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending records on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, rec := range pending {
		if err := w.pushRecord(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to sync record during startup",
				"date", rec.Date.ISO(), "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

func (w *SyncWorker) pushRecord(ctx context.Context, rec core.DailyRecord) error {
	if err := w.remote.SaveRecord(ctx, rec); err != nil {
		// Mark as sync error
		if markErr := w.storage.MarkSyncError(ctx, rec.Date); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error",
				"date", rec.Date.ISO(), "error", markErr)
		}
		return fmt.Errorf("save record to spreadsheet: %w", err)
	}

	// Mark as successfully synced
	if err := w.storage.MarkSynced(ctx, rec.Date); err != nil {
		slog.ErrorContext(ctx, "Failed to mark as synced",
			"date", rec.Date.ISO(), "error", err)
		// Don't return error here - the sync actually worked
	}

	slog.InfoContext(ctx, "Successfully synced record",
		"date", rec.Date.ISO(),
		"net_profit", rec.NetProfit)

	return nil
}
