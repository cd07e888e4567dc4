package http

import (
	"net/http"

	"driverledger/internal/export"
	"driverledger/internal/log"
)

// handleExport streams every stored record as an xlsx workbook.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.Records(r.Context(), 0)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="driverledger-export.xlsx"`)

	if err := export.WriteXLSX(w, records); err != nil {
		// Headers are already sent, so the best we can do is log.
		log.FromContext(r.Context()).Error("Failed to write xlsx export", log.FieldError, err)
	}
}
