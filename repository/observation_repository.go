package repository

import (
	"fmt"
	"time"

	"dealpulse/database"
	"dealpulse/models"
)

type ObservationRepository struct{}

func NewObservationRepository() *ObservationRepository {
	return &ObservationRepository{}
}

// AddObservation appends a new price observation captured now
func (r *ObservationRepository) AddObservation(name string, price float64, url string) error {
	return r.AddObservationAt(name, price, url, time.Now())
}

// AddObservationAt appends a price observation with an explicit capture time.
// Used by the synthetic history backfill; observations are immutable once
// written.
func (r *ObservationRepository) AddObservationAt(name string, price float64, url string, capturedAt time.Time) error {
	query := `
		INSERT INTO observations (name, price, url, captured_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := database.DB.Exec(query, name, price, url, capturedAt)
	if err != nil {
		return fmt.Errorf("failed to add observation: %v", err)
	}

	return nil
}

// GetAllObservations returns the full observation history in capture order.
// The stable (captured_at, id) ordering is what the analyzer's tie-break
// relies on.
func (r *ObservationRepository) GetAllObservations() ([]models.Observation, error) {
	query := `
		SELECT id, name, price, url, captured_at
		FROM observations
		ORDER BY captured_at ASC, id ASC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get observations: %v", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		err := rows.Scan(&obs.ID, &obs.Name, &obs.Price, &obs.URL, &obs.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %v", err)
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

// GetRecentObservations returns the most recent observations, newest first
func (r *ObservationRepository) GetRecentObservations(limit int) ([]models.Observation, error) {
	if limit <= 0 {
		limit = 50 // default limit
	}

	query := `
		SELECT id, name, price, url, captured_at
		FROM observations
		ORDER BY captured_at DESC, id DESC
		LIMIT $1
	`

	rows, err := database.DB.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent observations: %v", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		err := rows.Scan(&obs.ID, &obs.Name, &obs.Price, &obs.URL, &obs.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %v", err)
		}
		observations = append(observations, obs)
	}

	return observations, nil
}

// CountObservations returns the total number of stored observations
func (r *ObservationRepository) CountObservations() (int, error) {
	var count int
	err := database.DB.QueryRow(`SELECT COUNT(*) FROM observations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count observations: %v", err)
	}
	return count, nil
}

// GetLatestObservations returns the newest observation for each distinct URL
func (r *ObservationRepository) GetLatestObservations() ([]models.Observation, error) {
	query := `
		SELECT DISTINCT ON (url) id, name, price, url, captured_at
		FROM observations
		ORDER BY url, captured_at DESC, id DESC
	`

	rows, err := database.DB.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest observations: %v", err)
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var obs models.Observation
		err := rows.Scan(&obs.ID, &obs.Name, &obs.Price, &obs.URL, &obs.CapturedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan observation: %v", err)
		}
		observations = append(observations, obs)
	}

	return observations, nil
}
