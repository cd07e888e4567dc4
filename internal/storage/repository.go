package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"driverledger/internal/core"

	_ "modernc.org/sqlite"
)

// Sync states for the remote push queue.
const (
	SyncPending = "pending"
	SyncDone    = "synced"
	SyncError   = "error"
)

// SQLiteRepository is the embedded record store. It implements every
// sheets port plus the pending-sync queries the worker needs.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// VehicleConfig implements sheets.ConfigStore.
func (r *SQLiteRepository) VehicleConfig(ctx context.Context) (core.VehicleConfig, error) {
	var cfg core.VehicleConfig
	err := r.db.QueryRowContext(ctx,
		`SELECT mpg, gas_price, daily_net_goal FROM vehicle_config WHERE id = 1`).
		Scan(&cfg.MPG, &cfg.GasPrice, &cfg.DailyNetGoal)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultVehicleConfig(), nil
	}
	if err != nil {
		return core.VehicleConfig{}, fmt.Errorf("get vehicle config: %w", err)
	}
	return cfg, nil
}

// UpdateVehicleConfig implements sheets.ConfigStore. The singleton is
// overwritten in place; no history is kept.
func (r *SQLiteRepository) UpdateVehicleConfig(ctx context.Context, cfg core.VehicleConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE vehicle_config
		 SET mpg = ?, gas_price = ?, daily_net_goal = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = 1`,
		cfg.MPG, cfg.GasPrice, cfg.DailyNetGoal)
	if err != nil {
		return fmt.Errorf("update vehicle config: %w", err)
	}
	return nil
}

// SaveRecord implements sheets.RecordWriter with upsert-by-date semantics.
// A re-saved record goes back to pending so the worker pushes the new
// version to the remote sheet.
func (r *SQLiteRepository) SaveRecord(ctx context.Context, rec core.DailyRecord) error {
	if err := rec.Date.Validate(); err != nil {
		return err
	}

	income, err := core.EncodeLineItems(rec.AdditionalIncome)
	if err != nil {
		return fmt.Errorf("encode additional income: %w", err)
	}
	expenses, err := core.EncodeLineItems(rec.AdditionalExpenses)
	if err != nil {
		return fmt.Errorf("encode additional expenses: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_records (
			date, mpg, gas_price, daily_net_goal,
			uber_earnings, lyft_earnings, cash_tips, additional_income,
			odometer_start, odometer_end, food_cost, misc_cost, additional_expenses,
			miles_driven, gallons_used, fuel_cost, wear_and_tear,
			total_gross, total_expenses, net_profit, expense_ratio,
			sync_status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			mpg = excluded.mpg,
			gas_price = excluded.gas_price,
			daily_net_goal = excluded.daily_net_goal,
			uber_earnings = excluded.uber_earnings,
			lyft_earnings = excluded.lyft_earnings,
			cash_tips = excluded.cash_tips,
			additional_income = excluded.additional_income,
			odometer_start = excluded.odometer_start,
			odometer_end = excluded.odometer_end,
			food_cost = excluded.food_cost,
			misc_cost = excluded.misc_cost,
			additional_expenses = excluded.additional_expenses,
			miles_driven = excluded.miles_driven,
			gallons_used = excluded.gallons_used,
			fuel_cost = excluded.fuel_cost,
			wear_and_tear = excluded.wear_and_tear,
			total_gross = excluded.total_gross,
			total_expenses = excluded.total_expenses,
			net_profit = excluded.net_profit,
			expense_ratio = excluded.expense_ratio,
			sync_status = excluded.sync_status,
			updated_at = CURRENT_TIMESTAMP`,
		rec.Date.ISO(), rec.MPG, rec.GasPrice, rec.DailyNetGoal,
		rec.UberEarnings, rec.LyftEarnings, rec.CashTips, income,
		rec.OdometerStart, rec.OdometerEnd, rec.FoodCost, rec.MiscCost, expenses,
		rec.MilesDriven, rec.GallonsUsed, rec.FuelCost, rec.WearAndTear,
		rec.TotalGross, rec.TotalExpenses, rec.NetProfit, rec.ExpenseRatio,
		SyncPending)
	if err != nil {
		return fmt.Errorf("save daily record: %w", err)
	}

	slog.InfoContext(ctx, "Daily record saved to SQLite",
		"date", rec.Date.ISO(),
		"net_profit", rec.NetProfit,
		"total_gross", rec.TotalGross)

	return nil
}

const recordColumns = `date, mpg, gas_price, daily_net_goal,
	uber_earnings, lyft_earnings, cash_tips, additional_income,
	odometer_start, odometer_end, food_cost, misc_cost, additional_expenses,
	miles_driven, gallons_used, fuel_cost, wear_and_tear,
	total_gross, total_expenses, net_profit, expense_ratio`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.DailyRecord, error) {
	var (
		rec              core.DailyRecord
		dateStr          string
		income, expenses string
	)
	err := row.Scan(&dateStr, &rec.MPG, &rec.GasPrice, &rec.DailyNetGoal,
		&rec.UberEarnings, &rec.LyftEarnings, &rec.CashTips, &income,
		&rec.OdometerStart, &rec.OdometerEnd, &rec.FoodCost, &rec.MiscCost, &expenses,
		&rec.MilesDriven, &rec.GallonsUsed, &rec.FuelCost, &rec.WearAndTear,
		&rec.TotalGross, &rec.TotalExpenses, &rec.NetProfit, &rec.ExpenseRatio)
	if err != nil {
		return core.DailyRecord{}, err
	}
	d, err := core.ParseDate(dateStr)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("stored date %q: %w", dateStr, err)
	}
	rec.Date = d
	rec.AdditionalIncome = core.DecodeLineItems(income)
	rec.AdditionalExpenses = core.DecodeLineItems(expenses)
	return rec, nil
}

// RecordByDate implements sheets.RecordReader.
func (r *SQLiteRepository) RecordByDate(ctx context.Context, d core.Date) (core.DailyRecord, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records WHERE date = ?`, d.ISO())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyRecord{}, false, nil
	}
	if err != nil {
		return core.DailyRecord{}, false, fmt.Errorf("get record by date: %w", err)
	}
	return rec, true, nil
}

// Records implements sheets.RecordReader, descending by date. Statistics,
// summaries, and exports ask for everything with limit <= 0.
func (r *SQLiteRepository) Records(ctx context.Context, limit int) ([]core.DailyRecord, error) {
	query := `SELECT ` + recordColumns + ` FROM daily_records ORDER BY date DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// LastRecord implements sheets.RecordReader.
func (r *SQLiteRepository) LastRecord(ctx context.Context) (core.DailyRecord, bool, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records ORDER BY date DESC LIMIT 1`)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyRecord{}, false, nil
	}
	if err != nil {
		return core.DailyRecord{}, false, fmt.Errorf("get last record: %w", err)
	}
	return rec, true, nil
}

// DeleteRecord implements sheets.RecordDeleter. Deleting a missing date is
// not an error.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, d core.Date) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM daily_records WHERE date = ?`, d.ISO())
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	slog.InfoContext(ctx, "Daily record deleted", "date", d.ISO())
	return nil
}

// PendingSyncRecords returns records not yet pushed to the remote sheet,
// oldest first so the backlog drains in order.
func (r *SQLiteRepository) PendingSyncRecords(ctx context.Context, limit int) ([]core.DailyRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records
		 WHERE sync_status = ? ORDER BY date ASC LIMIT ?`, SyncPending, limit)
	if err != nil {
		return nil, fmt.Errorf("list pending records: %w", err)
	}
	defer rows.Close()

	var out []core.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pending record: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// MarkSynced records a successful remote push.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, d core.Date) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_records SET sync_status = ? WHERE date = ?`, SyncDone, d.ISO()); err != nil {
		return fmt.Errorf("mark record synced: %w", err)
	}
	return nil
}

// MarkSyncError flags a record whose remote push failed. The periodic scan
// does not retry errored records automatically; re-saving the record resets
// it to pending.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, d core.Date) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE daily_records SET sync_status = ? WHERE date = ?`, SyncError, d.ISO()); err != nil {
		return fmt.Errorf("mark record sync error: %w", err)
	}
	slog.WarnContext(ctx, "Record marked with sync error", "date", d.ISO())
	return nil
}
