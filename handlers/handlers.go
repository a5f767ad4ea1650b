package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"dealpulse/analytics"
	"dealpulse/config"
	"dealpulse/models"
	"dealpulse/repository"
	"dealpulse/scheduler"

	"github.com/gorilla/mux"
)

type Handlers struct {
	repo     *repository.ObservationRepository
	analyzer *analytics.Analyzer
	scanner  *scheduler.ScanScheduler
	tasks    *scheduler.TaskManager
	cfg      *config.Config
}

func NewHandlers(repo *repository.ObservationRepository, analyzer *analytics.Analyzer, scanner *scheduler.ScanScheduler, tasks *scheduler.TaskManager, cfg *config.Config) *Handlers {
	return &Handlers{
		repo:     repo,
		analyzer: analyzer,
		scanner:  scanner,
		tasks:    tasks,
		cfg:      cfg,
	}
}

// GetDeals returns the deal report: latest price per product page joined with
// the historical stats of its canonical identity. Supports the dashboard's
// min_price and brand filters.
func (h *Handlers) GetDeals(w http.ResponseWriter, r *http.Request) {
	observations, err := h.repo.GetAllObservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load observations")
		return
	}

	deals := h.analyzer.BuildDealReport(observations)

	minPrice := 0.0
	if v := r.URL.Query().Get("min_price"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			minPrice = parsed
		}
	}
	brand := r.URL.Query().Get("brand")

	deals = analytics.FilterDeals(deals, minPrice, brand)

	writeJSON(w, http.StatusOK, models.DealReportResponse{
		Deals:     deals,
		Total:     len(deals),
		Generated: time.Now(),
	})
}

// GetIdentities returns one metric per canonical identity computed over its
// full history
func (h *Handlers) GetIdentities(w http.ResponseWriter, r *http.Request) {
	observations, err := h.repo.GetAllObservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load observations")
		return
	}

	groups := h.analyzer.GroupByIdentity(observations)
	metrics := make([]models.DealMetric, 0, len(groups))
	for _, history := range groups {
		metrics = append(metrics, h.analyzer.Analyze(history))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"identities": metrics,
		"total":      len(metrics),
	})
}

// GetDayOfWeekStats returns the market-wide average price per weekday
func (h *Handlers) GetDayOfWeekStats(w http.ResponseWriter, r *http.Request) {
	observations, err := h.repo.GetAllObservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load observations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"days": analytics.DayOfWeekAverages(observations),
	})
}

// GetObservations returns recent raw observations
func (h *Handlers) GetObservations(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	observations, err := h.repo.GetRecentObservations(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load observations")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"observations": observations,
		"count":        len(observations),
	})
}

// TriggerScan runs a category scan synchronously and returns its summary
func (h *Handlers) TriggerScan(w http.ResponseWriter, r *http.Request) {
	summary := h.scanner.RunScan()
	if summary == nil {
		writeError(w, http.StatusConflict, "Scan already in progress")
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// TriggerScanAsync queues a scan and returns the task for polling
func (h *Handlers) TriggerScanAsync(w http.ResponseWriter, r *http.Request) {
	task := h.tasks.SubmitScan(h.cfg.CategoryURL)
	writeJSON(w, http.StatusAccepted, task)
}

// GetTaskStatus returns the status of an async scan task
func (h *Handlers) GetTaskStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]

	task, exists := h.tasks.GetTask(taskID)
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// GetTaskStats returns task manager statistics
func (h *Handlers) GetTaskStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.tasks.GetStats())
}

// Backfill generates synthetic history for every tracked product so trends
// are visible before weeks of real scans accumulate. Debug tooling.
func (h *Handlers) Backfill(w http.ResponseWriter, r *http.Request) {
	var req models.BackfillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err.Error() != "EOF" {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	latest, err := h.repo.GetLatestObservations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load observations")
		return
	}
	if len(latest) == 0 {
		writeError(w, http.StatusBadRequest, "No products to backfill, run a scan first")
		return
	}

	history := analytics.GenerateHistory(latest, req.Days, h.cfg.Band(), nil)

	inserted := 0
	for _, obs := range history {
		if err := h.repo.AddObservationAt(obs.Name, obs.Price, obs.URL, obs.CapturedAt); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to store backfill history")
			return
		}
		inserted++
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"products": len(latest),
		"inserted": inserted,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
