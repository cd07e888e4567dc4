package services

import (
	"context"
	"fmt"
	"log/slog"

	"driverledger/internal/core"
	"driverledger/internal/storage"
)

// SyncPublisher enqueues spreadsheet reconciliation work. *amqp.Client
// satisfies it; tests use a fake.
type SyncPublisher interface {
	PublishRecordSync(ctx context.Context, date string) error
	PublishRecordDelete(ctx context.Context, date string) error
	Close() error
}

// RecordService orchestrates record writes across SQLite and AMQP. SQLite is
// the source of truth: a save fails only if the local write fails, and a
// publish failure is logged but never surfaced, since the worker's pending
// scan retries anything left unsynced.
type RecordService struct {
	storage   *storage.SQLiteRepository
	publisher SyncPublisher
}

func NewRecordService(storage *storage.SQLiteRepository, publisher SyncPublisher) *RecordService {
	return &RecordService{
		storage:   storage,
		publisher: publisher,
	}
}

// SaveRecord validates the inputs, derives the record from the current
// vehicle config, writes it locally, and queues a sync message.
func (s *RecordService) SaveRecord(ctx context.Context, date core.Date, in core.ShiftInputs) (core.DailyRecord, error) {
	if err := date.Validate(); err != nil {
		return core.DailyRecord{}, err
	}
	if err := in.Validate(); err != nil {
		return core.DailyRecord{}, err
	}

	cfg, err := s.storage.VehicleConfig(ctx)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("load vehicle config: %w", err)
	}

	rec := core.ComputeRecord(date, in, cfg)

	// Save to SQLite first (fast, reliable)
	if err := s.storage.SaveRecord(ctx, rec); err != nil {
		return core.DailyRecord{}, fmt.Errorf("save record: %w", err)
	}

	// Publish async sync message (non-blocking)
	if err := s.publishSync(ctx, rec.Date.ISO()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"date", rec.Date.ISO(), "error", err)
		// Don't fail the request - record is saved locally
	}

	return rec, nil
}

// DeleteRecord removes the record locally and queues a remote delete.
func (s *RecordService) DeleteRecord(ctx context.Context, date core.Date) error {
	if err := date.Validate(); err != nil {
		return err
	}
	if err := s.storage.DeleteRecord(ctx, date); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if err := s.publishDelete(ctx, date.ISO()); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete message",
			"date", date.ISO(), "error", err)
		// Don't fail the request - record is deleted locally
	}

	return nil
}

func (s *RecordService) publishSync(ctx context.Context, date string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping sync message")
		return nil
	}
	return s.publisher.PublishRecordSync(ctx, date)
}

func (s *RecordService) publishDelete(ctx context.Context, date string) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Sync publisher not available, skipping delete message")
		return nil
	}
	return s.publisher.PublishRecordDelete(ctx, date)
}

// Close closes both storage and publisher connections.
func (s *RecordService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close record service: %v", errs)
	}

	return nil
}
