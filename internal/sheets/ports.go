package sheets

import (
	"context"

	"driverledger/internal/core"
)

// Ports for outbound record stores. The core never calls these; callers fetch
// records through them and hand already-loaded data to the pure functions.
type (
	ConfigStore interface {
		// VehicleConfig returns the singleton config, falling back to
		// defaults when none has been saved yet.
		VehicleConfig(ctx context.Context) (core.VehicleConfig, error)

		// UpdateVehicleConfig overwrites the singleton in place. Callers
		// validate before calling; implementations may re-validate.
		UpdateVehicleConfig(ctx context.Context, cfg core.VehicleConfig) error
	}

	RecordWriter interface {
		// SaveRecord upserts the record keyed by its date. Saving a second
		// time for the same date overwrites the first.
		SaveRecord(ctx context.Context, r core.DailyRecord) error
	}

	RecordReader interface {
		// RecordByDate returns the record for the date, or ok=false when no
		// record exists for it.
		RecordByDate(ctx context.Context, d core.Date) (core.DailyRecord, bool, error)

		// Records returns up to limit records, descending by date. A limit
		// of zero or less returns every record; aggregation and export rely
		// on that, so implementations must not clamp it.
		Records(ctx context.Context, limit int) ([]core.DailyRecord, error)

		// LastRecord returns the most recent record, used to pre-fill the
		// next day's starting odometer.
		LastRecord(ctx context.Context) (core.DailyRecord, bool, error)
	}

	RecordDeleter interface {
		DeleteRecord(ctx context.Context, d core.Date) error
	}
)
