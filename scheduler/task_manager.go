package scheduler

import (
	"log"
	"sync"
	"time"

	"dealpulse/models"
)

// ScanFunc runs one category scan and returns its summary
type ScanFunc func() *models.ScanSummary

// TaskManager manages async scan tasks. A whole-category scan ties up the
// browser, so only one worker runs at a time; extra submissions queue up.
type TaskManager struct {
	tasks     map[string]*models.ScanTask
	taskQueue chan *models.ScanTask
	scanFunc  ScanFunc
	mutex     sync.RWMutex
	stopChan  chan bool
}

// NewTaskManager creates a task manager around the scan function
func NewTaskManager(scanFunc ScanFunc) *TaskManager {
	tm := &TaskManager{
		tasks:     make(map[string]*models.ScanTask),
		taskQueue: make(chan *models.ScanTask, 10),
		scanFunc:  scanFunc,
		stopChan:  make(chan bool),
	}

	go tm.processTasks()
	log.Println("🚀 Scan task manager started")
	return tm
}

// SubmitScan queues a new scan task
func (tm *TaskManager) SubmitScan(categoryURL string) *models.ScanTask {
	task := models.NewScanTask(categoryURL)

	tm.mutex.Lock()
	tm.tasks[task.ID] = task
	tm.mutex.Unlock()

	select {
	case tm.taskQueue <- task:
		log.Printf("📝 Scan task %s submitted", task.ID)
	default:
		task.Fail("Task queue is full")
		log.Printf("❌ Failed to submit scan task %s - queue full", task.ID)
	}

	return task
}

// GetTask returns a task by ID
func (tm *TaskManager) GetTask(taskID string) (*models.ScanTask, bool) {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	task, exists := tm.tasks[taskID]
	return task, exists
}

// CleanupOldTasks removes completed tasks older than maxAge
func (tm *TaskManager) CleanupOldTasks(maxAge time.Duration) {
	tm.mutex.Lock()
	defer tm.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for taskID, task := range tm.tasks {
		if task.IsCompleted() && task.CreatedAt.Before(cutoff) {
			delete(tm.tasks, taskID)
			log.Printf("🧹 Cleaned up old task: %s", taskID)
		}
	}
}

// processTasks runs queued scans one at a time
func (tm *TaskManager) processTasks() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case task := <-tm.taskQueue:
			tm.runTask(task)

		case <-ticker.C:
			tm.CleanupOldTasks(1 * time.Hour)

		case <-tm.stopChan:
			log.Println("🛑 Task manager stopped")
			return
		}
	}
}

// runTask executes a single scan task
func (tm *TaskManager) runTask(task *models.ScanTask) {
	log.Printf("👷 Running scan task %s", task.ID)
	task.Start()

	summary := tm.scanFunc()
	if summary == nil {
		task.Fail("Scan already in progress")
		return
	}

	task.Complete(summary)
	log.Printf("✅ Scan task %s completed in %v", task.ID, task.Duration())
}

// Stop stops the task manager
func (tm *TaskManager) Stop() {
	close(tm.stopChan)
	log.Println("🛑 Task manager stopping...")
}

// GetStats returns task manager statistics
func (tm *TaskManager) GetStats() map[string]interface{} {
	tm.mutex.RLock()
	defer tm.mutex.RUnlock()

	stats := map[string]interface{}{
		"total_tasks": len(tm.tasks),
		"queue_size":  len(tm.taskQueue),
	}

	active := 0
	statusCounts := make(map[string]int)
	for _, task := range tm.tasks {
		statusCounts[string(task.Status)]++
		if task.IsActive() {
			active++
		}
	}
	stats["active_tasks"] = active
	stats["tasks_by_status"] = statusCounts

	return stats
}
