package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/services"
)

type DashboardHandler struct {
	service services.ReportingService
}

func NewDashboardHandler(service services.ReportingService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// HandleSnapshot handles GET /api/desk/snapshot
// @Summary Get desk snapshot
// @Description Get balances, P&L totals and per-fund attribution for a reporting date
// @Tags desk
// @Produce json
// @Param date query string false "Reporting date (YYYYMMDD or YYYY-MM-DD, defaults to latest)"
// @Success 200 {object} models.DeskSnapshot
// @Failure 500 {string} string "Internal server error"
// @Router /desk/snapshot [get]
func (h *DashboardHandler) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var (
		snapshot *models.DeskSnapshot
		err      error
	)
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		snapshot, err = h.service.GetDeskSnapshotAt(r.Context(), models.ParseReportingDate(dateStr))
	} else {
		snapshot, err = h.service.GetDeskSnapshot(r.Context())
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		// Empty ledger is a normal state, not an error.
		w.Write([]byte("null"))
		return
	}

	json.NewEncoder(w).Encode(snapshot)
}
