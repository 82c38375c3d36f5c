package main

import (
	"net/http"
	"time"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
	"github.com/aquasentinel/aquasentinel-go/utils"
)

// handleHealth reports service health: the status is healthy only when
// both predictors serve a trained model
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	outbreakStatus := s.outbreak.Status()
	healthRiskStatus := s.healthRisk.Status()
	modelsLoaded := outbreakStatus.Loaded && healthRiskStatus.Loaded

	status := "healthy"
	if !modelsLoaded {
		status = "unhealthy"
	}

	versions := make(map[string]string)
	if outbreakStatus.Version != "" {
		versions["outbreak_predictor"] = outbreakStatus.Version
	}
	if healthRiskStatus.Version != "" {
		versions["health_risk_assessor"] = healthRiskStatus.Version
	}

	writeJSONResponse(w, http.StatusOK, models.HealthResponse{
		Status:        status,
		Timestamp:     time.Now().UTC(),
		ModelsLoaded:  modelsLoaded,
		ModelVersions: versions,
		Uptime:        time.Since(s.startTime).Seconds(),
	})
}

// handleTest is a plain liveness probe
func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message": "AI Service working!",
	})
}

// handleMetrics returns the in-process counters as JSON
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, s.metrics.Snapshot())
}

// handleModelsStatus reports readiness metadata for both predictors
func (s *Server) handleModelsStatus(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]models.ModelStatusInfo{
		"outbreak_predictor":   s.outbreak.Status(),
		"health_risk_assessor": s.healthRisk.Status(),
	})
}

// handleReloadModels re-runs the load-or-train bootstrap on both
// predictors. The call blocks until both settle.
func (s *Server) handleReloadModels(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s.outbreak.LoadOrTrain(ctx)
	s.healthRisk.LoadOrTrain(ctx)

	if !s.outbreak.Ready() || !s.healthRisk.Ready() {
		s.metrics.RecordError()
		writeInternalServerErrorResponse(w, "Model reload failed")
		return
	}

	utils.GetLogger().Info("All models reloaded successfully", utils.Component("server"))

	writeJSONResponse(w, http.StatusOK, map[string]string{
		"message": "Models reloaded successfully",
	})
}
