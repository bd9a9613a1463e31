package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/services"
)

type StrucprdHandler struct {
	service services.StrucprdService
}

func NewStrucprdHandler(service services.StrucprdService) *StrucprdHandler {
	return &StrucprdHandler{service: service}
}

// HandleSummary handles GET /api/strucprd/summary
// @Summary Get structured-product holdings snapshot
// @Description Get the aggregated holdings dashboard: counts, notionals, distributions, FX-converted totals, carry and latest accrual rates
// @Tags strucprd
// @Produce json
// @Success 200 {object} models.HoldingsSnapshot
// @Failure 500 {string} string "Internal server error"
// @Router /strucprd/summary [get]
func (h *StrucprdHandler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	snapshot, err := h.service.GetHoldingsSnapshot(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if snapshot == nil {
		w.Write([]byte("null"))
		return
	}

	json.NewEncoder(w).Encode(snapshot)
}

// HandleProducts handles GET /api/strucprd/products
// @Summary List structured products
// @Description Paginated listing over all funds with text search and call-status filter
// @Tags strucprd
// @Produce json
// @Param query query string false "Case-insensitive substring match"
// @Param page query int false "1-based page number (default 1)"
// @Param call query string false "Call filter: N (alive, default), Y (called), ALL"
// @Success 200 {object} models.StrucprdPage
// @Failure 400 {string} string "Invalid call filter"
// @Failure 500 {string} string "Internal server error"
// @Router /strucprd/products [get]
func (h *StrucprdHandler) HandleProducts(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	page := 1
	if pageStr := r.URL.Query().Get("page"); pageStr != "" {
		if parsed, err := strconv.Atoi(pageStr); err == nil && parsed > 0 {
			page = parsed
		}
	}
	callFilter := models.CallFilter(r.URL.Query().Get("call"))
	if callFilter != "" && !callFilter.Valid() {
		http.Error(w, "Invalid call filter: "+string(callFilter), http.StatusBadRequest)
		return
	}

	result, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("query"), page, callFilter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(result)
}

// HandleHoldings handles GET /api/strucprd/holdings
// @Summary List holdings-fund products
// @Description Full filtered listing scoped to the designated holdings fund, no pagination
// @Tags strucprd
// @Produce json
// @Param query query string false "Case-insensitive substring match"
// @Param call query string false "Call filter: N (alive, default), Y (called), ALL"
// @Success 200 {array} models.Strucprd
// @Failure 400 {string} string "Invalid call filter"
// @Failure 500 {string} string "Internal server error"
// @Router /strucprd/holdings [get]
func (h *StrucprdHandler) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	callFilter := models.CallFilter(r.URL.Query().Get("call"))
	if callFilter != "" && !callFilter.Valid() {
		http.Error(w, "Invalid call filter: "+string(callFilter), http.StatusBadRequest)
		return
	}

	rows, err := h.service.ListHoldings(r.Context(), r.URL.Query().Get("query"), callFilter)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if rows == nil {
		rows = []*models.Strucprd{}
	}

	json.NewEncoder(w).Encode(rows)
}
