// Package memory provides a map-backed record store for tests and local
// development without SQLite or Google credentials.
package memory

import (
	"context"
	"sort"
	"sync"

	"driverledger/internal/core"
	ports "driverledger/internal/sheets"
)

type Store struct {
	mu      sync.RWMutex
	cfg     core.VehicleConfig
	records map[string]core.DailyRecord // keyed by ISO date
}

var (
	_ ports.ConfigStore   = (*Store)(nil)
	_ ports.RecordWriter  = (*Store)(nil)
	_ ports.RecordReader  = (*Store)(nil)
	_ ports.RecordDeleter = (*Store)(nil)
)

func NewStore() *Store {
	return &Store{
		cfg:     core.DefaultVehicleConfig(),
		records: make(map[string]core.DailyRecord),
	}
}

func (s *Store) VehicleConfig(_ context.Context) (core.VehicleConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg, nil
}

func (s *Store) UpdateVehicleConfig(_ context.Context, cfg core.VehicleConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	return nil
}

func (s *Store) SaveRecord(_ context.Context, rec core.DailyRecord) error {
	if err := rec.Date.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.Date.ISO()] = rec
	return nil
}

func (s *Store) RecordByDate(_ context.Context, d core.Date) (core.DailyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[d.ISO()]
	return rec, ok, nil
}

func (s *Store) Records(_ context.Context, limit int) ([]core.DailyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.DailyRecord, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) LastRecord(_ context.Context) (core.DailyRecord, bool, error) {
	records, err := s.Records(context.Background(), 1)
	if err != nil || len(records) == 0 {
		return core.DailyRecord{}, false, err
	}
	return records[0], true, nil
}

func (s *Store) DeleteRecord(_ context.Context, d core.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, d.ISO())
	return nil
}
