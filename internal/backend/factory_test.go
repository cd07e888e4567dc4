package backend

import (
	"context"
	"path/filepath"
	"testing"

	"driverledger/internal/config"
	"driverledger/internal/core"
)

func TestBackendTypeIsValid(t *testing.T) {
	for _, bt := range GetBackendTypes() {
		if !bt.IsValid() {
			t.Errorf("%s should be valid", bt)
		}
	}
	if BackendType("postgres").IsValid() {
		t.Error("unknown backend type should be invalid")
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{
		DataBackend:  "sqlite",
		SQLiteDBPath: "/tmp/x.db",
		AMQPURL:      "amqp://localhost:5672/",
		AMQPExchange: "driverledger",
		AMQPQueue:    "sync_records",
	})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "/tmp/x.db" {
		t.Errorf("converted config = %+v", cfg)
	}

	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil app config should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "bogus"}); err == nil {
		t.Error("bogus backend type should fail")
	}
}

func TestCreateMemoryBackend(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(ctx, Config{Type: MemoryBackend})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}

	rec, err := result.Backend.SaveShift(ctx, core.NewDate(2025, 6, 4), core.ShiftInputs{
		UberEarnings:  90,
		OdometerStart: 100,
		OdometerEnd:   170,
	})
	if err != nil {
		t.Fatalf("SaveShift: %v", err)
	}
	if rec.MilesDriven != 70 {
		t.Errorf("miles = %v, want 70", rec.MilesDriven)
	}

	got, ok, err := result.Backend.RecordByDate(ctx, core.NewDate(2025, 6, 4))
	if err != nil || !ok {
		t.Fatalf("RecordByDate: ok=%v err=%v", ok, err)
	}
	if got.TotalGross != 90 {
		t.Errorf("gross = %v, want 90", got.TotalGross)
	}
}

func TestCreateSQLiteBackendWithoutAMQP(t *testing.T) {
	ctx := context.Background()
	factory := NewFactory(nil)

	result, err := factory.CreateBackend(ctx, Config{
		Type:         SQLiteBackend,
		SQLiteDBPath: filepath.Join(t.TempDir(), "ledger.db"),
	})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer result.Cleanup()

	if _, err := result.Backend.SaveShift(ctx, core.NewDate(2025, 6, 4), core.ShiftInputs{CashTips: 15}); err != nil {
		t.Fatalf("SaveShift: %v", err)
	}
	last, ok, err := result.Backend.LastRecord(ctx)
	if err != nil || !ok {
		t.Fatalf("LastRecord: ok=%v err=%v", ok, err)
	}
	if last.TotalGross != 15 {
		t.Errorf("gross = %v, want 15", last.TotalGross)
	}
}

func TestCreateBackendRejectsInvalidConfig(t *testing.T) {
	factory := NewFactory(nil)
	if _, err := factory.CreateBackend(context.Background(), Config{Type: "bogus"}); err == nil {
		t.Error("invalid type should fail")
	}
	if _, err := factory.CreateBackend(context.Background(), Config{Type: SQLiteBackend}); err == nil {
		t.Error("sqlite backend without db path should fail")
	}
}
