package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"driverledger/internal/core"
	ports "driverledger/internal/sheets"

	"google.golang.org/api/googleapi"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// ErrQuotaExceeded is returned when the Sheets API rejects a call for rate
// limiting. Callers should back off and lean on their caches.
var ErrQuotaExceeded = errors.New("sheets quota exceeded")

// Client is the spreadsheet-backed record store. One row per record in the
// records sheet, keyed by ISO date in column A; the vehicle config lives on
// its own sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	recordsSheet  string
	configSheet   string
}

// Ensure interface conformance
var (
	_ ports.ConfigStore   = (*Client)(nil)
	_ ports.RecordWriter  = (*Client)(nil)
	_ ports.RecordReader  = (*Client)(nil)
	_ ports.RecordDeleter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client from environment variables.
// Required: GOOGLE_SPREADSHEET_ID.
// Optional sheet names: RECORDS_SHEET_NAME (default "Records"),
// CONFIG_SHEET_NAME (default "Config").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	records := strings.TrimSpace(os.Getenv("RECORDS_SHEET_NAME"))
	if records == "" {
		records = "Records"
	}
	config := strings.TrimSpace(os.Getenv("CONFIG_SHEET_NAME"))
	if config == "" {
		config = "Config"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		recordsSheet:  records,
		configSheet:   config,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

// wrapAPIError maps rate-limit responses onto ErrQuotaExceeded so callers
// can distinguish them from hard failures.
func wrapAPIError(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == 429 {
		return fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// VehicleConfig implements ports.ConfigStore by reading the config sheet.
// A missing or partially filled sheet falls back to defaults per field.
func (c *Client) VehicleConfig(ctx context.Context) (core.VehicleConfig, error) {
	if c.svc == nil {
		return core.VehicleConfig{}, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!B1:B3", c.configSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return core.VehicleConfig{}, wrapAPIError("read config sheet", err)
	}

	cfg := core.DefaultVehicleConfig()
	get := func(i int) (float64, bool) {
		if i >= len(resp.Values) || len(resp.Values[i]) == 0 {
			return 0, false
		}
		return parseFloatCell(resp.Values[i][0])
	}
	if v, ok := get(0); ok && v > 0 {
		cfg.MPG = v
	}
	if v, ok := get(1); ok && v >= 0 {
		cfg.GasPrice = v
	}
	if v, ok := get(2); ok && v >= 0 {
		cfg.DailyNetGoal = v
	}
	return cfg, nil
}

// UpdateVehicleConfig implements ports.ConfigStore.
func (c *Client) UpdateVehicleConfig(ctx context.Context, cfg core.VehicleConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A1:B3", c.configSheet)
	vr := &gsheet.ValueRange{Values: [][]any{
		{"mpg", cfg.MPG},
		{"gas_price", cfg.GasPrice},
		{"daily_net_goal", cfg.DailyNetGoal},
	}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return wrapAPIError("update config sheet", err)
	}
	return nil
}

// findRecordRow returns the 1-based sheet row holding the date, or 0.
func (c *Client) findRecordRow(ctx context.Context, d core.Date) (int, error) {
	rng := fmt.Sprintf("%s!A:A", c.recordsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, wrapAPIError("read date column", err)
	}
	iso := d.ISO()
	for i, row := range resp.Values {
		if len(row) > 0 && strings.TrimSpace(fmt.Sprint(row[0])) == iso {
			return i + 1, nil
		}
	}
	return 0, nil
}

// SaveRecord implements ports.RecordWriter with upsert semantics: the row for
// the date is updated in place when present, appended otherwise.
func (c *Client) SaveRecord(ctx context.Context, rec core.DailyRecord) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	if err := rec.Date.Validate(); err != nil {
		return err
	}

	row, err := recordToRow(rec)
	if err != nil {
		return fmt.Errorf("encode record row: %w", err)
	}

	existing, err := c.findRecordRow(ctx, rec.Date)
	if err != nil {
		return err
	}

	vr := &gsheet.ValueRange{Values: [][]any{row}}
	if existing > 0 {
		rng := fmt.Sprintf("%s!A%d:%s%d", c.recordsSheet, existing, lastRecordColumn, existing)
		_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").Context(ctx).Do()
		if err != nil {
			return wrapAPIError("update record row", err)
		}
	} else {
		rng := fmt.Sprintf("%s!A:%s", c.recordsSheet, lastRecordColumn)
		_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
			ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
		if err != nil {
			return wrapAPIError("append record row", err)
		}
	}

	slog.InfoContext(ctx, "Record saved to spreadsheet",
		"date", rec.Date.ISO(),
		"updated_existing", existing > 0)
	return nil
}

// readAllRecords scans the records sheet. Blank, header, and unparseable
// rows are skipped; listing is best-effort.
func (c *Client) readAllRecords(ctx context.Context) ([]core.DailyRecord, error) {
	rng := fmt.Sprintf("%s!A:%s", c.recordsSheet, lastRecordColumn)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError("read records sheet", err)
	}
	var out []core.DailyRecord
	for _, row := range resp.Values {
		rec, ok := rowToRecord(row)
		if !ok {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// RecordByDate implements ports.RecordReader.
func (c *Client) RecordByDate(ctx context.Context, d core.Date) (core.DailyRecord, bool, error) {
	if c.svc == nil {
		return core.DailyRecord{}, false, errors.New("sheets service not initialized")
	}
	records, err := c.readAllRecords(ctx)
	if err != nil {
		return core.DailyRecord{}, false, err
	}
	for _, rec := range records {
		if rec.Date.Equal(d.Time) {
			return rec, true, nil
		}
	}
	return core.DailyRecord{}, false, nil
}

// Records implements ports.RecordReader, descending by date.
func (c *Client) Records(ctx context.Context, limit int) ([]core.DailyRecord, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	records, err := c.readAllRecords(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Date.After(records[j].Date.Time)
	})
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// LastRecord implements ports.RecordReader.
func (c *Client) LastRecord(ctx context.Context) (core.DailyRecord, bool, error) {
	records, err := c.Records(ctx, 1)
	if err != nil {
		return core.DailyRecord{}, false, err
	}
	if len(records) == 0 {
		return core.DailyRecord{}, false, nil
	}
	return records[0], true, nil
}

// DeleteRecord implements ports.RecordDeleter by clearing the row in place.
// The blank row is skipped on read, so rows below keep their positions and
// concurrent row references stay valid.
func (c *Client) DeleteRecord(ctx context.Context, d core.Date) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	row, err := c.findRecordRow(ctx, d)
	if err != nil {
		return err
	}
	if row == 0 {
		return nil
	}
	rng := fmt.Sprintf("%s!A%d:%s%d", c.recordsSheet, row, lastRecordColumn, row)
	_, err = c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return wrapAPIError("clear record row", err)
	}
	slog.InfoContext(ctx, "Record cleared from spreadsheet", "date", d.ISO(), "row", row)
	return nil
}
