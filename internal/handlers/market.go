package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/ficcboard/backend/internal/models"
	"github.com/ficcboard/backend/internal/services"
)

type MarketHandler struct {
	service services.MarketService
}

func NewMarketHandler(service services.MarketService) *MarketHandler {
	return &MarketHandler{service: service}
}

// HandleDaily handles GET /api/market/daily
// @Summary Get daily market data
// @Description Get the reshaped market reference page for a date
// @Tags market
// @Produce json
// @Param date query string false "Base date (YYYYMMDD or YYYY-MM-DD, defaults to latest)"
// @Success 200 {object} models.MarketDailyData
// @Failure 500 {string} string "Internal server error"
// @Router /market/daily [get]
func (h *MarketHandler) HandleDaily(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var date models.ReportingDate
	if dateStr := r.URL.Query().Get("date"); dateStr != "" {
		date = models.ParseReportingDate(dateStr)
	}

	data, err := h.service.GetDailyData(r.Context(), date)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if data == nil {
		w.Write([]byte("null"))
		return
	}

	json.NewEncoder(w).Encode(data)
}

// HandleDates handles GET /api/market/dates
// @Summary List available market dates
// @Description Get the dates with market data, most recent first
// @Tags market
// @Produce json
// @Success 200 {array} string
// @Failure 500 {string} string "Internal server error"
// @Router /market/dates [get]
func (h *MarketHandler) HandleDates(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dates, err := h.service.AvailableDates(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if dates == nil {
		dates = []string{}
	}

	json.NewEncoder(w).Encode(dates)
}

// HandleSeries handles GET /api/market/series
// @Summary Get an indicator time series
// @Description Get the recent daily history of one indicator, oldest first
// @Tags market
// @Produce json
// @Param table query string true "Source table: macro, domestic or credit"
// @Param ticker query string true "Indicator key within the table"
// @Param days query int false "Number of observations (default 30)"
// @Success 200 {array} models.TimeSeriesPoint
// @Failure 400 {string} string "Missing or invalid parameters"
// @Failure 500 {string} string "Internal server error"
// @Router /market/series [get]
func (h *MarketHandler) HandleSeries(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method != "GET" {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	table := r.URL.Query().Get("table")
	ticker := r.URL.Query().Get("ticker")
	if table == "" || ticker == "" {
		http.Error(w, "table and ticker parameters are required", http.StatusBadRequest)
		return
	}
	days := 30
	if daysStr := r.URL.Query().Get("days"); daysStr != "" {
		if parsed, err := strconv.Atoi(daysStr); err == nil && parsed > 0 {
			days = parsed
		}
	}

	points, err := h.service.GetTimeSeries(r.Context(), table, ticker, days)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if points == nil {
		points = []*models.TimeSeriesPoint{}
	}

	json.NewEncoder(w).Encode(points)
}
