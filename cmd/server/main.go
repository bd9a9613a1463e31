package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"github.com/ficcboard/backend/internal/db"
	"github.com/ficcboard/backend/internal/handlers"
	"github.com/ficcboard/backend/internal/logger"
	"github.com/ficcboard/backend/internal/repositories"
	"github.com/ficcboard/backend/internal/services"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	zlog, err := logger.New()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer zlog.Sync()

	// Database connection
	config := db.NewConfig()
	database, err := db.Connect(config)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer database.Close()

	// Test database connection
	if err := database.Health(); err != nil {
		zlog.Fatal("Database health check failed", zap.Error(err))
	}
	zlog.Info("Database connection established",
		zap.String("host", config.Host),
		zap.String("database", config.Name))

	// Initialize repositories
	reportingRepo := repositories.NewReportingRepository(database)
	strucprdRepo := repositories.NewStrucprdRepository(database)
	marketRepo := repositories.NewMarketRepository(database)

	// Initialize services
	reportingService := services.NewReportingService(reportingRepo)
	strucprdService := services.NewStrucprdService(strucprdRepo, services.DefaultStrucprdConfig(), zlog)
	marketService := services.NewMarketService(marketRepo)

	// Initialize handlers
	dashboardHandler := handlers.NewDashboardHandler(reportingService)
	strucprdHandler := handlers.NewStrucprdHandler(strucprdService)
	marketHandler := handlers.NewMarketHandler(marketService)

	router := mux.NewRouter()

	// Health check endpoint
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"service": "ficcboard-backend",
		})
	}).Methods("GET")

	// API endpoints
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/desk/snapshot", dashboardHandler.HandleSnapshot).Methods("GET")
	api.HandleFunc("/strucprd/summary", strucprdHandler.HandleSummary).Methods("GET")
	api.HandleFunc("/strucprd/products", strucprdHandler.HandleProducts).Methods("GET")
	api.HandleFunc("/strucprd/holdings", strucprdHandler.HandleHoldings).Methods("GET")
	api.HandleFunc("/market/daily", marketHandler.HandleDaily).Methods("GET")
	api.HandleFunc("/market/dates", marketHandler.HandleDates).Methods("GET")
	api.HandleFunc("/market/series", marketHandler.HandleSeries).Methods("GET")

	// Swagger UI
	router.PathPrefix("/swagger/").Handler(httpSwagger.WrapHandler)

	handler := corsMiddleware(requestLogger(zlog)(router))

	// Get port from environment
	port := os.Getenv("SERVER_PORT")
	if port == "" {
		port = "8080"
	}

	// Start server
	zlog.Info("Server starting", zap.String("port", port))
	zlog.Fatal("Server stopped", zap.Error(http.ListenAndServe(":"+port, handler)))
}

// requestLogger tags every request with an id and logs it on completion.
func requestLogger(zlog *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.New().String()
			w.Header().Set("X-Request-Id", requestID)

			start := time.Now()
			next.ServeHTTP(w, r)

			zlog.Info("request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)))
		})
	}
}

// corsMiddleware allows browser clients from any origin; this is a read-only
// internal dashboard API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
