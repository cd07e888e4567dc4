package memory

import (
	"context"
	"errors"
	"testing"

	"driverledger/internal/core"
)

func record(t *testing.T, iso string, uber float64) core.DailyRecord {
	t.Helper()
	d, err := core.ParseDate(iso)
	if err != nil {
		t.Fatalf("parse date %q: %v", iso, err)
	}
	return core.ComputeRecord(d, core.ShiftInputs{UberEarnings: uber}, core.DefaultVehicleConfig())
}

func TestStoreRecordLifecycle(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	if _, ok, _ := s.RecordByDate(ctx, core.NewDate(2025, 6, 4)); ok {
		t.Fatal("empty store reported a record")
	}

	for _, r := range []core.DailyRecord{
		record(t, "2025-06-02", 100),
		record(t, "2025-06-04", 150),
		record(t, "2025-06-03", 120),
	} {
		if err := s.SaveRecord(ctx, r); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}

	// Upsert: same date replaces.
	if err := s.SaveRecord(ctx, record(t, "2025-06-04", 200)); err != nil {
		t.Fatalf("SaveRecord overwrite: %v", err)
	}

	records, err := s.Records(ctx, 0)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len(records) = %d, want 3", len(records))
	}
	if got := records[0].Date.ISO(); got != "2025-06-04" {
		t.Errorf("newest first, got %s", got)
	}
	if records[0].TotalGross != 200 {
		t.Errorf("overwrite not applied, gross = %v", records[0].TotalGross)
	}

	last, ok, err := s.LastRecord(ctx)
	if err != nil || !ok {
		t.Fatalf("LastRecord: ok=%v err=%v", ok, err)
	}
	if last.Date.ISO() != "2025-06-04" {
		t.Errorf("last record = %s", last.Date.ISO())
	}

	if err := s.DeleteRecord(ctx, core.NewDate(2025, 6, 4)); err != nil {
		t.Fatalf("DeleteRecord: %v", err)
	}
	if _, ok, _ := s.RecordByDate(ctx, core.NewDate(2025, 6, 4)); ok {
		t.Error("record still present after delete")
	}
	// Deleting again is a no-op.
	if err := s.DeleteRecord(ctx, core.NewDate(2025, 6, 4)); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestStoreConfig(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	cfg, err := s.VehicleConfig(ctx)
	if err != nil {
		t.Fatalf("VehicleConfig: %v", err)
	}
	if cfg != core.DefaultVehicleConfig() {
		t.Errorf("fresh store config = %+v", cfg)
	}

	want := core.VehicleConfig{MPG: 28, GasPrice: 4.05, DailyNetGoal: 250}
	if err := s.UpdateVehicleConfig(ctx, want); err != nil {
		t.Fatalf("UpdateVehicleConfig: %v", err)
	}
	if got, _ := s.VehicleConfig(ctx); got != want {
		t.Errorf("config = %+v, want %+v", got, want)
	}

	if err := s.UpdateVehicleConfig(ctx, core.VehicleConfig{MPG: 0}); !errors.Is(err, core.ErrInvalidMPG) {
		t.Errorf("invalid config error = %v", err)
	}
	if got, _ := s.VehicleConfig(ctx); got != want {
		t.Error("rejected update mutated config")
	}
}

func TestStoreRecordsLimit(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	for day := 1; day <= 5; day++ {
		if err := s.SaveRecord(ctx, record(t, core.NewDate(2025, 6, day).ISO(), 10)); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}
	records, err := s.Records(ctx, 2)
	if err != nil {
		t.Fatalf("Records: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	if records[0].Date.ISO() != "2025-06-05" || records[1].Date.ISO() != "2025-06-04" {
		t.Errorf("order = %s, %s", records[0].Date.ISO(), records[1].Date.ISO())
	}
}
