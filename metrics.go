package main

import (
	"sync"
	"time"
)

// Training outcome labels recorded by the metrics collector.
const (
	trainingStarted   = "started"
	trainingCompleted = "completed"
	trainingFailed    = "failed"
)

// durationStats accumulates latency observations for one model type.
type durationStats struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Max   float64 `json:"max"`
}

// MetricsCollector keeps in-process service counters. All methods are
// safe for concurrent use; Snapshot returns copies, so the maps it
// hands out can be marshalled without holding the lock.
type MetricsCollector struct {
	mu          sync.Mutex
	startedAt   time.Time
	predictions map[string]map[string]int64
	durations   map[string]*durationStats
	training    map[string]map[string]int64
	errors      int64
}

// NewMetricsCollector creates an empty collector anchored at the
// current time
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		startedAt:   time.Now().UTC(),
		predictions: make(map[string]map[string]int64),
		durations:   make(map[string]*durationStats),
		training:    make(map[string]map[string]int64),
	}
}

// RecordPrediction counts one served prediction and its latency
func (m *MetricsCollector) RecordPrediction(modelType, riskLevel string, duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byLevel, ok := m.predictions[modelType]
	if !ok {
		byLevel = make(map[string]int64)
		m.predictions[modelType] = byLevel
	}
	byLevel[riskLevel]++

	stats, ok := m.durations[modelType]
	if !ok {
		stats = &durationStats{}
		m.durations[modelType] = stats
	}
	seconds := duration.Seconds()
	stats.Count++
	stats.Sum += seconds
	if seconds > stats.Max {
		stats.Max = seconds
	}
}

// RecordTraining counts one training lifecycle event for a model type
func (m *MetricsCollector) RecordTraining(modelType, status string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	byStatus, ok := m.training[modelType]
	if !ok {
		byStatus = make(map[string]int64)
		m.training[modelType] = byStatus
	}
	byStatus[status]++
}

// RecordError counts one failed request
func (m *MetricsCollector) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors++
}

// Snapshot returns the current counter values as a JSON-ready map.
// Counter names are stable; dashboards key on them.
func (m *MetricsCollector) Snapshot() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()

	predictions := make(map[string]map[string]int64, len(m.predictions))
	for modelType, byLevel := range m.predictions {
		levels := make(map[string]int64, len(byLevel))
		for level, count := range byLevel {
			levels[level] = count
		}
		predictions[modelType] = levels
	}

	durations := make(map[string]durationStats, len(m.durations))
	for modelType, stats := range m.durations {
		durations[modelType] = *stats
	}

	training := make(map[string]map[string]int64, len(m.training))
	for modelType, byStatus := range m.training {
		statuses := make(map[string]int64, len(byStatus))
		for status, count := range byStatus {
			statuses[status] = count
		}
		training[modelType] = statuses
	}

	return map[string]any{
		"outbreak_predictions_total":           predictions,
		"outbreak_prediction_duration_seconds": durations,
		"model_training_total":                 training,
		"errors_total":                         m.errors,
		"started_at":                           m.startedAt.Format(time.RFC3339),
	}
}
