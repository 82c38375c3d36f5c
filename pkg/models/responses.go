package models

import "time"

// PredictionResponse represents the outcome of a risk prediction
type PredictionResponse struct {
	RiskLevel           string             `json:"risk_level"`
	Confidence          float64            `json:"confidence"`
	ProbabilityScores   map[string]float64 `json:"probability_scores"`
	ContributingFactors []string           `json:"contributing_factors"`
	Recommendations     []string           `json:"recommendations"`
	ModelVersion        string             `json:"model_version"`
	Timestamp           time.Time          `json:"timestamp"`
}

// HealthResponse represents the service health check payload
type HealthResponse struct {
	Status        string            `json:"status"`
	Timestamp     time.Time         `json:"timestamp"`
	ModelsLoaded  bool              `json:"models_loaded"`
	ModelVersions map[string]string `json:"model_versions"`
	Uptime        float64           `json:"uptime"`
}

// ModelStatusInfo describes the readiness of a single predictor
type ModelStatusInfo struct {
	Loaded      bool       `json:"loaded"`
	State       string     `json:"state"`
	Version     string     `json:"version,omitempty"`
	LastTrained *time.Time `json:"last_trained,omitempty"`
	Error       string     `json:"error,omitempty"`
}

// EvaluationMetrics holds model performance metrics
type EvaluationMetrics struct {
	Accuracy  float64 `json:"accuracy"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
}

// TrainingStartedResponse acknowledges an accepted training request
type TrainingStartedResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
	TaskID  string `json:"task_id"`
}

// PredictionRecord is a persisted prediction outcome
type PredictionRecord struct {
	ID           string              `json:"id"`
	ModelType    string              `json:"model_type"`
	RiskLevel    string              `json:"risk_level"`
	Confidence   float64             `json:"confidence"`
	ModelVersion string              `json:"model_version"`
	Response     *PredictionResponse `json:"response,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

// TrainingRun is a persisted record of one training execution
type TrainingRun struct {
	ID            string     `json:"id"`
	ModelType     string     `json:"model_type"`
	DataSource    string     `json:"data_source"`
	Status        string     `json:"status"`
	Error         string     `json:"error,omitempty"`
	TrainAccuracy float64    `json:"train_accuracy,omitempty"`
	TestAccuracy  float64    `json:"test_accuracy,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
