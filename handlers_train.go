package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
	"github.com/aquasentinel/aquasentinel-go/risk"
	"github.com/aquasentinel/aquasentinel-go/utils"
)

// handleTrainOutbreakModel starts a background training run for the
// outbreak predictor
func (s *Server) handleTrainOutbreakModel(w http.ResponseWriter, r *http.Request) {
	s.handleTrain(w, r, models.ModelTypeOutbreak)
}

// handleTrainHealthRiskModel starts a background training run for the
// health risk assessor
func (s *Server) handleTrainHealthRiskModel(w http.ResponseWriter, r *http.Request) {
	s.handleTrain(w, r, models.ModelTypeHealthRisk)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request, modelType string) {
	// An empty body is a plain synthetic retrain request.
	var req models.TrainingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequestResponse(w, fmt.Sprintf("Invalid request body: %v", err))
		return
	}
	if err := req.Validate(); err != nil {
		writeBadRequestResponse(w, err.Error())
		return
	}
	if req.ModelType != "" && req.ModelType != modelType {
		writeBadRequestResponse(w, fmt.Sprintf("model_type %q does not match endpoint", req.ModelType))
		return
	}

	dataSource := req.DataSource
	if dataSource == "" {
		dataSource = models.DataSourceSynthetic
	}

	task := s.startTraining(modelType, dataSource, req.Parameters)

	utils.GetLogger().Info("model training started",
		utils.String("model_type", modelType),
		utils.String("data_source", dataSource),
		utils.String("task_id", task.ID),
		utils.Component("server"))

	writeJSONResponse(w, http.StatusAccepted, models.TrainingStartedResponse{
		Message: "Model training started",
		Status:  string(task.Status),
		TaskID:  task.ID,
	})
}

// handleTrainStatus returns the current snapshot of one training task
func (s *Server) handleTrainStatus(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["task_id"]

	task, err := s.tasks.Get(taskID)
	if err != nil {
		writeErrorResponse(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSONResponse(w, http.StatusOK, task)
}

// handleEvaluateOutbreakModel evaluates the outbreak predictor on a
// fresh held-out split
func (s *Server) handleEvaluateOutbreakModel(w http.ResponseWriter, r *http.Request) {
	s.handleEvaluate(w, s.outbreak)
}

// handleEvaluateHealthRiskModel evaluates the health risk assessor on a
// fresh held-out split
func (s *Server) handleEvaluateHealthRiskModel(w http.ResponseWriter, r *http.Request) {
	s.handleEvaluate(w, s.healthRisk)
}

func (s *Server) handleEvaluate(w http.ResponseWriter, predictor *risk.Predictor) {
	metrics, err := predictor.Evaluate()
	if err != nil {
		if errors.Is(err, risk.ErrNotReady) {
			writeServiceUnavailableResponse(w, notAvailableMessage(predictor.Name()))
			return
		}
		s.metrics.RecordError()
		writeInternalServerErrorResponse(w, fmt.Sprintf("Evaluation failed: %v", err))
		return
	}

	utils.GetLogger().Info("model evaluation completed",
		utils.String("model_type", predictor.Name()),
		utils.Float("accuracy", metrics.Accuracy),
		utils.Component("server"))

	writeJSONResponse(w, http.StatusOK, metrics)
}

// handleTrainingRuns lists persisted training run records, newest first
func (s *Server) handleTrainingRuns(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r, 50)

	runs, err := s.store.ListTrainingRuns(limit)
	if err != nil {
		s.metrics.RecordError()
		writeInternalServerErrorResponse(w, fmt.Sprintf("Failed to list training runs: %v", err))
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]any{
		"training_runs": runs,
		"count":         len(runs),
	})
}
