package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
	"github.com/aquasentinel/aquasentinel-go/risk"
	"github.com/aquasentinel/aquasentinel-go/utils"
)

// handlePredictOutbreak predicts community outbreak risk from sensor
// data and health reports
func (s *Server) handlePredictOutbreak(w http.ResponseWriter, r *http.Request) {
	s.handlePredict(w, r, s.outbreak)
}

// handlePredictHealthRisk predicts individual health risk from symptoms
// and environmental data
func (s *Server) handlePredictHealthRisk(w http.ResponseWriter, r *http.Request) {
	s.handlePredict(w, r, s.healthRisk)
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request, predictor *risk.Predictor) {
	var req models.PredictionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequestResponse(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequestResponse(w, err.Error())
		return
	}

	start := time.Now()
	response, err := predictor.Predict(&req)
	if err != nil {
		if errors.Is(err, risk.ErrNotReady) {
			writeServiceUnavailableResponse(w, notAvailableMessage(predictor.Name()))
			return
		}
		s.metrics.RecordError()
		writeInternalServerErrorResponse(w, fmt.Sprintf("Prediction failed: %v", err))
		return
	}
	s.metrics.RecordPrediction(predictor.Name(), response.RiskLevel, time.Since(start))
	s.recordPrediction(predictor.Name(), response)

	utils.GetLogger().Info("prediction completed",
		utils.String("model_type", predictor.Name()),
		utils.String("risk_level", response.RiskLevel),
		utils.Float("confidence", response.Confidence),
		utils.Component("server"))

	writeJSONResponse(w, http.StatusOK, response)
}

// handleRecentPredictions lists persisted prediction records, newest
// first, optionally filtered by model_type
func (s *Server) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	modelType := r.URL.Query().Get("model_type")
	limit := parseLimit(r, 50)

	records, err := s.store.ListRecentPredictions(modelType, limit)
	if err != nil {
		s.metrics.RecordError()
		writeInternalServerErrorResponse(w, fmt.Sprintf("Failed to list predictions: %v", err))
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"predictions": records,
		"count":       len(records),
	})
}

// recordPrediction persists a served prediction. Store failures are
// logged, never surfaced to the client.
func (s *Server) recordPrediction(modelType string, response *models.PredictionResponse) {
	record := &models.PredictionRecord{
		ID:           uuid.New().String(),
		ModelType:    modelType,
		RiskLevel:    response.RiskLevel,
		Confidence:   response.Confidence,
		ModelVersion: response.ModelVersion,
		Response:     response,
		CreatedAt:    response.Timestamp,
	}
	if err := s.store.SavePrediction(record); err != nil {
		utils.GetLogger().Warn("failed to persist prediction",
			utils.Error(err),
			utils.String("model_type", modelType),
			utils.Component("server"))
	}
}

// notAvailableMessage is the 503 detail for a predictor that has no
// trained model yet
func notAvailableMessage(modelType string) string {
	if modelType == models.ModelTypeHealthRisk {
		return "Health risk assessor not available"
	}
	return "Outbreak predictor not available"
}
