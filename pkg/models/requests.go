package models

import (
	"fmt"
	"time"
)

// ModelTypeOutbreak and ModelTypeHealthRisk identify the two predictors
// exposed by the service.
const (
	ModelTypeOutbreak   = "outbreak"
	ModelTypeHealthRisk = "health_risk"
)

// DataSourceSynthetic is the only training data source currently supported.
const DataSourceSynthetic = "synthetic"

// Location represents a geographic coordinate pair
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate checks if the Location is valid
func (l *Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// SensorData represents a single water quality reading from a field device
type SensorData struct {
	DeviceID    string    `json:"device_id"`
	Timestamp   time.Time `json:"timestamp"`
	PH          float64   `json:"ph"`
	Turbidity   float64   `json:"turbidity"`
	Temperature float64   `json:"temperature"`
	TDS         float64   `json:"tds"`
	Latitude    *float64  `json:"latitude,omitempty"`
	Longitude   *float64  `json:"longitude,omitempty"`
}

// Validate checks if the SensorData is valid
func (s *SensorData) Validate() error {
	if s.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if s.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if s.PH < 0 || s.PH > 14 {
		return fmt.Errorf("ph must be between 0 and 14")
	}
	if s.Turbidity < 0 || s.Turbidity > 100 {
		return fmt.Errorf("turbidity must be between 0 and 100")
	}
	if s.Temperature < -40 || s.Temperature > 125 {
		return fmt.Errorf("temperature must be between -40 and 125")
	}
	if s.TDS < 0 || s.TDS > 1000 {
		return fmt.Errorf("tds must be between 0 and 1000")
	}
	if s.Latitude != nil && (*s.Latitude < -90 || *s.Latitude > 90) {
		return fmt.Errorf("latitude must be between -90 and 90")
	}
	if s.Longitude != nil && (*s.Longitude < -180 || *s.Longitude > 180) {
		return fmt.Errorf("longitude must be between -180 and 180")
	}
	return nil
}

// HealthReport represents a symptom report submitted by a community member
type HealthReport struct {
	UserID          string    `json:"user_id"`
	Timestamp       time.Time `json:"timestamp"`
	Symptoms        []string  `json:"symptoms"`
	Severity        float64   `json:"severity"`
	OnsetDate       time.Time `json:"onset_date"`
	Location        *Location `json:"location,omitempty"`
	AdditionalNotes string    `json:"additional_notes,omitempty"`
}

// Validate checks if the HealthReport is valid
func (h *HealthReport) Validate() error {
	if h.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if h.Timestamp.IsZero() {
		return fmt.Errorf("timestamp is required")
	}
	if h.Severity < 1 || h.Severity > 10 {
		return fmt.Errorf("severity must be between 1 and 10")
	}
	if h.OnsetDate.IsZero() {
		return fmt.Errorf("onset_date is required")
	}
	if len(h.AdditionalNotes) > 500 {
		return fmt.Errorf("additional_notes must be at most 500 characters")
	}
	if h.Location != nil {
		if err := h.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TimeRange bounds the observation window of a prediction request
type TimeRange struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// PredictionRequest represents a request for a risk prediction
type PredictionRequest struct {
	SensorData    []SensorData   `json:"sensor_data"`
	HealthReports []HealthReport `json:"health_reports"`
	Location      *Location      `json:"location,omitempty"`
	TimeRange     *TimeRange     `json:"time_range,omitempty"`
}

// Validate checks if the PredictionRequest is valid
func (r *PredictionRequest) Validate() error {
	for i := range r.SensorData {
		if err := r.SensorData[i].Validate(); err != nil {
			return fmt.Errorf("sensor_data[%d]: %w", i, err)
		}
	}
	for i := range r.HealthReports {
		if err := r.HealthReports[i].Validate(); err != nil {
			return fmt.Errorf("health_reports[%d]: %w", i, err)
		}
	}
	if r.Location != nil {
		if err := r.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// TrainingRequest represents a request to retrain a model
type TrainingRequest struct {
	ModelType  string         `json:"model_type"`
	DataSource string         `json:"data_source,omitempty"`
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Validate checks if the TrainingRequest is valid
func (r *TrainingRequest) Validate() error {
	switch r.ModelType {
	case "", ModelTypeOutbreak, ModelTypeHealthRisk:
	default:
		return fmt.Errorf("unsupported model type: %s", r.ModelType)
	}
	switch r.DataSource {
	case "", DataSourceSynthetic:
	default:
		return fmt.Errorf("unsupported data source: %s", r.DataSource)
	}
	return nil
}
