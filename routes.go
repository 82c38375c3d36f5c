package main

// setupRoutes sets up the HTTP routes. Paths are part of the public
// API contract; platform clients depend on them verbatim.
func (s *Server) setupRoutes() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.errorRecoveryMiddleware)

	// Service endpoints
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/test", s.handleTest).Methods("GET")
	s.router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	// Prediction endpoints
	s.router.HandleFunc("/predict/outbreak", s.handlePredictOutbreak).Methods("POST")
	s.router.HandleFunc("/predict/health-risk", s.handlePredictHealthRisk).Methods("POST")

	// Model training endpoints
	s.router.HandleFunc("/train/outbreak-model", s.handleTrainOutbreakModel).Methods("POST")
	s.router.HandleFunc("/train/health-risk-model", s.handleTrainHealthRiskModel).Methods("POST")
	s.router.HandleFunc("/train/status/{task_id}", s.handleTrainStatus).Methods("GET")

	// Model evaluation endpoints
	s.router.HandleFunc("/evaluate/outbreak-model", s.handleEvaluateOutbreakModel).Methods("GET")
	s.router.HandleFunc("/evaluate/health-risk-model", s.handleEvaluateHealthRiskModel).Methods("GET")

	// Model management endpoints
	s.router.HandleFunc("/models/status", s.handleModelsStatus).Methods("GET")
	s.router.HandleFunc("/models/reload", s.handleReloadModels).Methods("POST")

	// History endpoints
	s.router.HandleFunc("/predictions/recent", s.handleRecentPredictions).Methods("GET")
	s.router.HandleFunc("/training/runs", s.handleTrainingRuns).Methods("GET")
}
