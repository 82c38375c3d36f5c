package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/aquasentinel/aquasentinel-go/pkg/config"
	"github.com/aquasentinel/aquasentinel-go/pkg/models"
	"github.com/aquasentinel/aquasentinel-go/pkg/scheduler"
	"github.com/aquasentinel/aquasentinel-go/pkg/store"
	"github.com/aquasentinel/aquasentinel-go/pkg/tasks"
	"github.com/aquasentinel/aquasentinel-go/risk"
	"github.com/aquasentinel/aquasentinel-go/utils"
)

// retrainJobName identifies the periodic retraining job in the scheduler.
const retrainJobName = "model-retrain"

// Server represents the AquaSentinel AI service
type Server struct {
	router     *mux.Router
	config     *config.Config
	outbreak   *risk.Predictor
	healthRisk *risk.Predictor
	tasks      *tasks.Registry
	store      *store.Store
	metrics    *MetricsCollector
	scheduler  *scheduler.Service
	startTime  time.Time
}

// NewServer creates the service with both predictors in their
// uninitialized state. Call Initialize to make them ready. An invalid
// RETRAIN_SCHEDULE is a startup error.
func NewServer(cfg *config.Config, st *store.Store) (*Server, error) {
	s := &Server{
		router:     mux.NewRouter(),
		config:     cfg,
		outbreak:   risk.NewOutbreakPredictor(cfg.ModelDir),
		healthRisk: risk.NewHealthRiskPredictor(cfg.ModelDir),
		tasks:      tasks.NewRegistry(),
		store:      st,
		metrics:    NewMetricsCollector(),
		scheduler:  scheduler.NewService(),
		startTime:  time.Now(),
	}

	if cfg.RetrainSchedule != "" {
		if err := s.scheduler.AddJob(retrainJobName, cfg.RetrainSchedule, s.runScheduledRetrain); err != nil {
			return nil, err
		}
	}

	s.setupRoutes()
	return s, nil
}

// Initialize makes both predictors ready, loading persisted artifacts
// or bootstrap-training from synthetic data, then starts the retraining
// schedule if one is configured. Blocks until both predictors settle.
func (s *Server) Initialize(ctx context.Context) {
	logger := utils.GetLogger()
	logger.Info("initializing predictors", utils.Component("server"))

	s.outbreak.LoadOrTrain(ctx)
	s.healthRisk.LoadOrTrain(ctx)

	logger.Info("predictors initialized",
		utils.String("outbreak_state", s.outbreak.State()),
		utils.String("health_risk_state", s.healthRisk.State()),
		utils.Component("server"))

	if s.config.RetrainSchedule != "" {
		s.scheduler.Start()
		if next, ok := s.scheduler.NextRun(retrainJobName); ok {
			logger.Info("retraining scheduled",
				utils.String("schedule", s.config.RetrainSchedule),
				utils.String("next_run", next.Format(time.RFC3339)),
				utils.Component("server"))
		}
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// predictorFor returns the predictor serving the given model type
func (s *Server) predictorFor(modelType string) *risk.Predictor {
	if modelType == models.ModelTypeHealthRisk {
		return s.healthRisk
	}
	return s.outbreak
}

// startTraining registers a training task and launches the run in the
// background. The returned snapshot carries the task id the caller
// hands back to the client.
func (s *Server) startTraining(modelType, dataSource string, parameters map[string]any) tasks.Task {
	task := s.tasks.Create(modelType, dataSource)
	go s.runTraining(task.ID, modelType, dataSource, parameters)
	return task
}

// runTraining executes one training cycle and records its outcome in
// the task registry, the metrics collector and the history store.
func (s *Server) runTraining(taskID, modelType, dataSource string, parameters map[string]any) {
	logger := utils.GetLogger()

	if err := s.tasks.Start(taskID); err != nil {
		logger.Error("failed to start training task", err, utils.Component("server"))
		return
	}
	s.metrics.RecordTraining(modelType, trainingStarted)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(s.config.TrainTimeout)*time.Second)
	defer cancel()

	predictor := s.predictorFor(modelType)
	metrics, err := predictor.Train(ctx, dataSource, parameters)
	if err != nil {
		s.tasks.Fail(taskID, err.Error())
		s.metrics.RecordTraining(modelType, trainingFailed)
		logger.Error("model training failed", err,
			utils.String("model_type", modelType),
			utils.String("task_id", taskID),
			utils.Component("server"))
	} else {
		s.tasks.Complete(taskID, metrics.TrainAccuracy, metrics.TestAccuracy)
		s.metrics.RecordTraining(modelType, trainingCompleted)
		logger.Info("model training completed",
			utils.String("model_type", modelType),
			utils.String("task_id", taskID),
			utils.Float("test_accuracy", metrics.TestAccuracy),
			utils.Component("server"))
	}

	task, getErr := s.tasks.Get(taskID)
	if getErr != nil {
		logger.Error("failed to read finished training task", getErr, utils.Component("server"))
		return
	}
	if saveErr := s.store.SaveTrainingRun(trainingRunFromTask(task)); saveErr != nil {
		logger.Warn("failed to persist training run",
			utils.Error(saveErr),
			utils.String("task_id", taskID),
			utils.Component("server"))
	}
}

// runScheduledRetrain retrains both models through the same task path
// as the HTTP endpoints
func (s *Server) runScheduledRetrain() {
	utils.GetLogger().Info("scheduled retraining triggered", utils.Component("server"))
	for _, modelType := range []string{models.ModelTypeOutbreak, models.ModelTypeHealthRisk} {
		task := s.tasks.Create(modelType, models.DataSourceSynthetic)
		s.runTraining(task.ID, modelType, models.DataSourceSynthetic, nil)
	}
}

// trainingRunFromTask converts a finished task snapshot into its
// persisted form
func trainingRunFromTask(task tasks.Task) *models.TrainingRun {
	run := &models.TrainingRun{
		ID:          task.ID,
		ModelType:   task.ModelType,
		DataSource:  task.DataSource,
		Status:      string(task.Status),
		Error:       task.Error,
		CompletedAt: task.CompletedAt,
		CreatedAt:   task.CreatedAt,
	}
	if task.StartedAt != nil {
		run.StartedAt = *task.StartedAt
	}
	if task.TrainAccuracy != nil {
		run.TrainAccuracy = *task.TrainAccuracy
	}
	if task.TestAccuracy != nil {
		run.TestAccuracy = *task.TestAccuracy
	}
	return run
}

// Shutdown stops background components, waiting for in-flight
// scheduled work to finish or the context to expire
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.scheduler.Stop()
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
