package storage

import (
	"context"
	"math"
	"path/filepath"
	"testing"

	"driverledger/internal/core"
)

func newTestRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func testRecord(t *testing.T, iso string) core.DailyRecord {
	t.Helper()
	d, err := core.ParseDate(iso)
	if err != nil {
		t.Fatalf("parse %s: %v", iso, err)
	}
	return core.ComputeRecord(d, core.ShiftInputs{
		UberEarnings:  120,
		LyftEarnings:  35,
		CashTips:      10,
		OdometerStart: 5000,
		OdometerEnd:   5080,
		FoodCost:      12,
		AdditionalExpenses: []core.LineItem{
			{Name: "Parking", Amount: 4.5},
		},
	}, core.DefaultVehicleConfig())
}

func TestVehicleConfigDefaultsAndUpdate(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	cfg, err := repo.VehicleConfig(ctx)
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if cfg != core.DefaultVehicleConfig() {
		t.Errorf("fresh db config = %+v, want defaults", cfg)
	}

	want := core.VehicleConfig{MPG: 28.5, GasPrice: 3.89, DailyNetGoal: 250}
	if err := repo.UpdateVehicleConfig(ctx, want); err != nil {
		t.Fatalf("update config: %v", err)
	}
	got, err := repo.VehicleConfig(ctx)
	if err != nil {
		t.Fatalf("reread config: %v", err)
	}
	if got != want {
		t.Errorf("config after update = %+v, want %+v", got, want)
	}

	if err := repo.UpdateVehicleConfig(ctx, core.VehicleConfig{MPG: 0, GasPrice: 3}); err == nil {
		t.Error("expected validation error for mpg=0")
	}
}

func TestSaveRecordUpsert(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	rec := testRecord(t, "2025-06-02")
	if err := repo.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := repo.RecordByDate(ctx, rec.Date)
	if err != nil || !ok {
		t.Fatalf("read back: ok=%v err=%v", ok, err)
	}
	if math.Abs(got.NetProfit-rec.NetProfit) > 1e-9 {
		t.Errorf("NetProfit = %v, want %v", got.NetProfit, rec.NetProfit)
	}
	if len(got.AdditionalExpenses) != 1 || got.AdditionalExpenses[0].Name != "Parking" {
		t.Errorf("line items did not round trip: %+v", got.AdditionalExpenses)
	}

	// Second save for the same date overwrites, never duplicates.
	rec.UberEarnings = 500
	rec.TotalGross = 545
	if err := repo.SaveRecord(ctx, rec); err != nil {
		t.Fatalf("resave: %v", err)
	}
	all, err := repo.Records(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected 1 record after upsert, got %d", len(all))
	}
	if all[0].UberEarnings != 500 {
		t.Errorf("upsert did not overwrite: %v", all[0].UberEarnings)
	}
}

func TestRecordsOrderingAndLast(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for _, iso := range []string{"2025-06-03", "2025-06-01", "2025-06-05", "2025-06-02"} {
		if err := repo.SaveRecord(ctx, testRecord(t, iso)); err != nil {
			t.Fatalf("save %s: %v", iso, err)
		}
	}

	all, err := repo.Records(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("limit not applied, got %d", len(all))
	}
	want := []string{"2025-06-05", "2025-06-03", "2025-06-02"}
	for i, rec := range all {
		if rec.Date.ISO() != want[i] {
			t.Errorf("records[%d] = %s, want %s", i, rec.Date.ISO(), want[i])
		}
	}

	last, ok, err := repo.LastRecord(ctx)
	if err != nil || !ok {
		t.Fatalf("last record: ok=%v err=%v", ok, err)
	}
	if last.Date.ISO() != "2025-06-05" {
		t.Errorf("last record date = %s", last.Date.ISO())
	}
}

func TestMissingRecordAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	d := core.NewDate(2025, 6, 2)
	if _, ok, err := repo.RecordByDate(ctx, d); err != nil || ok {
		t.Fatalf("missing record should be ok=false: ok=%v err=%v", ok, err)
	}
	if _, ok, err := repo.LastRecord(ctx); err != nil || ok {
		t.Fatalf("empty db last record should be ok=false: ok=%v err=%v", ok, err)
	}

	// Deleting a missing date is not an error.
	if err := repo.DeleteRecord(ctx, d); err != nil {
		t.Fatalf("delete missing: %v", err)
	}

	if err := repo.SaveRecord(ctx, testRecord(t, "2025-06-02")); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := repo.DeleteRecord(ctx, d); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := repo.RecordByDate(ctx, d); ok {
		t.Error("record still present after delete")
	}
}

func TestSyncStateTransitions(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a := testRecord(t, "2025-06-01")
	b := testRecord(t, "2025-06-02")
	for _, rec := range []core.DailyRecord{a, b} {
		if err := repo.SaveRecord(ctx, rec); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	pending, err := repo.PendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 2 || pending[0].Date.ISO() != "2025-06-01" {
		t.Fatalf("pending = %d records, first %s; want 2 oldest-first", len(pending), pending[0].Date.ISO())
	}

	if err := repo.MarkSynced(ctx, a.Date); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	if err := repo.MarkSyncError(ctx, b.Date); err != nil {
		t.Fatalf("mark error: %v", err)
	}
	pending, err = repo.PendingSyncRecords(ctx, 10)
	if err != nil {
		t.Fatalf("pending after marks: %v", err)
	}
	if len(pending) != 0 {
		t.Errorf("expected no pending records, got %d", len(pending))
	}

	// Re-saving resets to pending.
	if err := repo.SaveRecord(ctx, b); err != nil {
		t.Fatalf("resave: %v", err)
	}
	pending, _ = repo.PendingSyncRecords(ctx, 10)
	if len(pending) != 1 || pending[0].Date.ISO() != "2025-06-02" {
		t.Errorf("resave should reset sync state, pending = %+v", pending)
	}
}

func TestRecordsZeroLimitReturnsEverything(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	const total = 35
	start := core.NewDate(2025, 1, 1)
	for i := 0; i < total; i++ {
		if err := repo.SaveRecord(ctx, testRecord(t, start.AddDays(i).ISO())); err != nil {
			t.Fatalf("save day %d: %v", i, err)
		}
	}

	all, err := repo.Records(ctx, 0)
	if err != nil {
		t.Fatalf("Records(0): %v", err)
	}
	if len(all) != total {
		t.Fatalf("Records(0) returned %d records, want %d", len(all), total)
	}
	if all[0].Date.ISO() != start.AddDays(total-1).ISO() {
		t.Errorf("first record = %s, want newest %s", all[0].Date.ISO(), start.AddDays(total-1).ISO())
	}

	// Lifetime aggregates must see the full history.
	stats := core.Statistics(all)
	if stats.TotalDays != total {
		t.Errorf("Statistics over Records(0) sees %d days, want %d", stats.TotalDays, total)
	}

	limited, err := repo.Records(ctx, 10)
	if err != nil {
		t.Fatalf("Records(10): %v", err)
	}
	if len(limited) != 10 {
		t.Errorf("Records(10) returned %d records, want 10", len(limited))
	}
}
