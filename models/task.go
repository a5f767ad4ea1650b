package models

import (
	"fmt"
	"math/rand"
	"time"
)

// TaskStatus represents the status of an async task
type TaskStatus string

const (
	TaskStatusQueued     TaskStatus = "queued"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// ScanTask represents an async category scan
type ScanTask struct {
	ID          string       `json:"id"`
	CategoryURL string       `json:"category_url"`
	Status      TaskStatus   `json:"status"`
	Message     string       `json:"message"`
	Result      *ScanSummary `json:"result,omitempty"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	StartedAt   *time.Time   `json:"started_at,omitempty"`
	CompletedAt *time.Time   `json:"completed_at,omitempty"`
}

// NewScanTask creates a new queued scan task
func NewScanTask(categoryURL string) *ScanTask {
	return &ScanTask{
		ID:          generateTaskID(),
		CategoryURL: categoryURL,
		Status:      TaskStatusQueued,
		Message:     "Scan queued",
		CreatedAt:   time.Now(),
	}
}

// Start marks the task as processing
func (t *ScanTask) Start() {
	t.Status = TaskStatusProcessing
	t.Message = "Scanning category..."
	now := time.Now()
	t.StartedAt = &now
}

// Complete marks the task as completed with the scan summary
func (t *ScanTask) Complete(result *ScanSummary) {
	t.Status = TaskStatusCompleted
	t.Message = fmt.Sprintf("Scan completed: %d observations stored", result.Stored)
	t.Result = result
	now := time.Now()
	t.CompletedAt = &now
}

// Fail marks the task as failed with an error message
func (t *ScanTask) Fail(errMsg string) {
	t.Status = TaskStatusFailed
	t.Message = "Scan failed"
	t.Error = errMsg
	now := time.Now()
	t.CompletedAt = &now
}

// IsCompleted returns true if the task is in a final state
func (t *ScanTask) IsCompleted() bool {
	return t.Status == TaskStatusCompleted || t.Status == TaskStatusFailed
}

// IsActive returns true if the task is still queued or running
func (t *ScanTask) IsActive() bool {
	return t.Status == TaskStatusQueued || t.Status == TaskStatusProcessing
}

// Duration returns how long the task has been running
func (t *ScanTask) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}

	endTime := time.Now()
	if t.CompletedAt != nil {
		endTime = *t.CompletedAt
	}

	return endTime.Sub(*t.StartedAt)
}

// generateTaskID generates a unique task ID
func generateTaskID() string {
	return "scan_" + time.Now().Format("20060102150405") + "_" + randomString(8)
}

// randomString generates a random string of the specified length
func randomString(length int) string {
	const charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}
