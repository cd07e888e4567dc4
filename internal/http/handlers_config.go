package http

import (
	"log/slog"
	"net/http"

	"driverledger/internal/core"
)

type configPayload struct {
	MPG          float64 `json:"mpg"`
	GasPrice     float64 `json:"gas_price"`
	DailyNetGoal float64 `json:"daily_net_goal"`
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.VehicleConfig(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, configPayload{
		MPG:          cfg.MPG,
		GasPrice:     cfg.GasPrice,
		DailyNetGoal: cfg.DailyNetGoal,
	})
}

// handleUpdateConfig replaces the vehicle config. Existing records keep their
// snapshots; only future saves pick up the new values.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req configPayload
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg := core.VehicleConfig{
		MPG:          req.MPG,
		GasPrice:     req.GasPrice,
		DailyNetGoal: req.DailyNetGoal,
	}
	if err := s.store.UpdateVehicleConfig(r.Context(), cfg); err != nil {
		writeDomainError(w, r, err)
		return
	}

	// Goal changes shift every cached summary's target.
	s.invalidateAggregates()

	slog.InfoContext(r.Context(), "Vehicle config updated",
		"mpg", cfg.MPG, "gas_price", cfg.GasPrice, "daily_net_goal", cfg.DailyNetGoal)

	writeJSON(w, r, http.StatusOK, req)
}
