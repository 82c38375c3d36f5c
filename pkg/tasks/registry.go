package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a background training task
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// Task tracks one background training run from submission to completion
type Task struct {
	ID            string     `json:"task_id"`
	ModelType     string     `json:"model_type"`
	DataSource    string     `json:"data_source"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Error         string     `json:"error,omitempty"`
	TrainAccuracy *float64   `json:"train_accuracy,omitempty"`
	TestAccuracy  *float64   `json:"test_accuracy,omitempty"`
}

// Registry provides in-memory training task tracking. Tasks are kept for
// the lifetime of the process; lookups return copies so callers never
// observe a half-applied transition.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

// NewRegistry creates an empty task registry
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
	}
}

// Create registers a new pending task and returns its snapshot
func (r *Registry) Create(modelType, dataSource string) Task {
	r.mu.Lock()
	defer r.mu.Unlock()

	task := &Task{
		ID:         uuid.New().String(),
		ModelType:  modelType,
		DataSource: dataSource,
		Status:     StatusPending,
		CreatedAt:  time.Now().UTC(),
	}
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)

	return *task
}

// Get returns a snapshot of a task by ID
func (r *Registry) Get(taskID string) (Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return Task{}, fmt.Errorf("training task not found: %s", taskID)
	}
	return *task, nil
}

// Start marks a task as running
func (r *Registry) Start(taskID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return fmt.Errorf("training task not found: %s", taskID)
	}

	now := time.Now().UTC()
	task.Status = StatusRunning
	task.StartedAt = &now
	return nil
}

// Complete marks a task as succeeded and records its accuracies
func (r *Registry) Complete(taskID string, trainAccuracy, testAccuracy float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return fmt.Errorf("training task not found: %s", taskID)
	}

	now := time.Now().UTC()
	task.Status = StatusSucceeded
	task.CompletedAt = &now
	task.TrainAccuracy = &trainAccuracy
	task.TestAccuracy = &testAccuracy
	return nil
}

// Fail marks a task as failed with its error message
func (r *Registry) Fail(taskID string, errMsg string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[taskID]
	if !ok {
		return fmt.Errorf("training task not found: %s", taskID)
	}

	now := time.Now().UTC()
	task.Status = StatusFailed
	task.CompletedAt = &now
	task.Error = errMsg
	return nil
}

// List returns task snapshots newest-first, at most limit entries.
// A non-positive limit returns every task.
func (r *Registry) List(limit int) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Task, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		if limit > 0 && len(result) >= limit {
			break
		}
		result = append(result, *r.tasks[r.order[i]])
	}
	return result
}
