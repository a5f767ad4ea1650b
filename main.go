package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"runtime"
	"strings"
	"time"

	"dealpulse/analytics"
	"dealpulse/config"
	"dealpulse/database"
	"dealpulse/handlers"
	"dealpulse/middleware"
	"dealpulse/repository"
	"dealpulse/scheduler"
	"dealpulse/scraper"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

var startTime = time.Now()

// Metrics struct for basic monitoring
type Metrics struct {
	Timestamp    time.Time `json:"timestamp"`
	Uptime       string    `json:"uptime"`
	Goroutines   int       `json:"goroutines"`
	MemoryUsage  string    `json:"memory_usage"`
	Observations int       `json:"observations"`
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.CloseDatabase()

	// Create tables
	if err := database.CreateTables(); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	// Initialize repository
	obsRepo := repository.NewObservationRepository()

	// Initialize extraction pipeline
	parser := scraper.NewCandidateParser(cfg.Band(), cfg.CurrencySymbol)
	selector := scraper.NewSelector(config.AllOutOfStockMarkers(), scraper.MaxCandidate)
	extractor := scraper.NewExtractor(parser, selector)

	// Initialize browser fetcher
	fetcher, err := scraper.NewPageFetcher(cfg)
	if err != nil {
		log.Fatalf("Failed to create page fetcher: %v", err)
	}
	defer fetcher.Close()

	// Initialize analytics
	normalizer := analytics.NewNormalizer()
	analyzer := analytics.NewAnalyzer(normalizer)

	// Initialize and start the scan scheduler
	scanner := scheduler.NewScanScheduler(fetcher, extractor, obsRepo, cfg)
	scanner.Start()
	defer scanner.Stop()

	// Initialize the async task manager
	taskManager := scheduler.NewTaskManager(scanner.RunScan)
	defer taskManager.Stop()

	// Initialize handlers
	h := handlers.NewHandlers(obsRepo, analyzer, scanner, taskManager, cfg)

	// Setup router
	r := mux.NewRouter()

	// Apply global middleware
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.RateLimitMiddleware(cfg.RateLimitPerSecond))

	// Health and monitoring endpoints
	r.HandleFunc("/health", healthCheck).Methods("GET")
	r.HandleFunc("/metrics", getMetrics).Methods("GET")
	r.HandleFunc("/status", getStatus).Methods("GET")

	// API v1 routes
	apiV1 := r.PathPrefix("/api/v1").Subrouter()

	// Deal analytics
	apiV1.HandleFunc("/deals", h.GetDeals).Methods("GET")
	apiV1.HandleFunc("/deals/day-of-week", h.GetDayOfWeekStats).Methods("GET")
	apiV1.HandleFunc("/identities", h.GetIdentities).Methods("GET")

	// Raw observations
	apiV1.HandleFunc("/observations", h.GetObservations).Methods("GET")

	// Scan management
	apiV1.HandleFunc("/scan", h.TriggerScan).Methods("POST")
	apiV1.HandleFunc("/scan-async", h.TriggerScanAsync).Methods("POST")
	apiV1.HandleFunc("/tasks/stats", h.GetTaskStats).Methods("GET")
	apiV1.HandleFunc("/tasks/{taskId}", h.GetTaskStatus).Methods("GET")

	// Debug tooling
	apiV1.HandleFunc("/debug/backfill", h.Backfill).Methods("POST")

	// CORS configuration
	c := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.AllowedOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Printf("🌐 Server starting on port %s", cfg.Port)
	log.Printf("📋 API endpoints:")
	log.Printf("   GET  /health - Health check")
	log.Printf("   GET  /metrics - System metrics")
	log.Printf("   GET  /status - Detailed status")
	log.Printf("   GET  /api/v1/deals - Deal report (min_price, brand filters)")
	log.Printf("   GET  /api/v1/deals/day-of-week - Cheapest weekday stats")
	log.Printf("   GET  /api/v1/observations - Recent raw observations")
	log.Printf("   POST /api/v1/scan - Run a category scan now")

	// Start server
	log.Fatal(http.ListenAndServe(cfg.Host+":"+cfg.Port, c.Handler(r)))
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"service":     "dealpulse",
		"status":      "healthy",
		"timestamp":   time.Now(),
		"version":     "1.0.0",
		"api_version": "v1",
		"endpoints": map[string]string{
			"health":       "/health",
			"metrics":      "/metrics",
			"status":       "/status",
			"deals":        "/api/v1/deals",
			"day_of_week":  "/api/v1/deals/day-of-week",
			"observations": "/api/v1/observations",
			"scan":         "/api/v1/scan",
		},
	}
	writeJSON(w, http.StatusOK, response)
}

func getMetrics(w http.ResponseWriter, r *http.Request) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	obsRepo := repository.NewObservationRepository()
	count, err := obsRepo.CountObservations()
	if err != nil {
		count = 0
	}

	metricsData := Metrics{
		Timestamp:    time.Now(),
		Uptime:       time.Since(startTime).String(),
		Goroutines:   runtime.NumGoroutine(),
		MemoryUsage:  fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
		Observations: count,
	}

	writeJSON(w, http.StatusOK, metricsData)
}

func getStatus(w http.ResponseWriter, r *http.Request) {
	obsRepo := repository.NewObservationRepository()

	count, err := obsRepo.CountObservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to count observations")
		return
	}

	latest, err := obsRepo.GetLatestObservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get latest observations")
		return
	}

	status := map[string]interface{}{
		"timestamp":          time.Now(),
		"uptime":             time.Since(startTime).String(),
		"total_observations": count,
		"tracked_products":   len(latest),
		"system_health":      "healthy",
	}

	writeJSON(w, http.StatusOK, status)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
