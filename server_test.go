package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aquasentinel/aquasentinel-go/pkg/config"
	"github.com/aquasentinel/aquasentinel-go/pkg/models"
	"github.com/aquasentinel/aquasentinel-go/pkg/store"
	"github.com/aquasentinel/aquasentinel-go/pkg/tasks"
)

func TestNewServerInvalidRetrainSchedule(t *testing.T) {
	cfg := &config.Config{
		ModelDir:        t.TempDir(),
		DBPath:          filepath.Join(t.TempDir(), "history.db"),
		RetrainSchedule: "not a cron",
		TrainTimeout:    60,
	}

	st, err := store.NewStore(cfg.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	_, err = NewServer(cfg, st)
	require.Error(t, err, "Invalid retrain schedule should fail startup")
	assert.Contains(t, err.Error(), "invalid cron expression")
}

func TestPredictorFor(t *testing.T) {
	server := newTestServer(t)

	assert.Same(t, server.outbreak, server.predictorFor(models.ModelTypeOutbreak))
	assert.Same(t, server.healthRisk, server.predictorFor(models.ModelTypeHealthRisk))
}

func TestTrainingRunFromTask(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	started := created.Add(time.Second)
	completed := created.Add(time.Minute)
	trainAcc := 0.95
	testAcc := 0.88

	task := tasks.Task{
		ID:            "task-1",
		ModelType:     models.ModelTypeOutbreak,
		DataSource:    models.DataSourceSynthetic,
		Status:        tasks.StatusSucceeded,
		CreatedAt:     created,
		StartedAt:     &started,
		CompletedAt:   &completed,
		TrainAccuracy: &trainAcc,
		TestAccuracy:  &testAcc,
	}

	run := trainingRunFromTask(task)

	assert.Equal(t, "task-1", run.ID)
	assert.Equal(t, string(tasks.StatusSucceeded), run.Status)
	assert.Equal(t, started, run.StartedAt)
	assert.Equal(t, &completed, run.CompletedAt)
	assert.Equal(t, 0.95, run.TrainAccuracy)
	assert.Equal(t, 0.88, run.TestAccuracy)
}

func TestTrainingRunFromTaskFailed(t *testing.T) {
	task := tasks.Task{
		ID:        "task-2",
		ModelType: models.ModelTypeHealthRisk,
		Status:    tasks.StatusFailed,
		Error:     "empty training data",
		CreatedAt: time.Now().UTC(),
	}

	run := trainingRunFromTask(task)

	assert.Equal(t, string(tasks.StatusFailed), run.Status)
	assert.Equal(t, "empty training data", run.Error)
	assert.Zero(t, run.TrainAccuracy)
	assert.Nil(t, run.CompletedAt)
}

func TestScheduledRetrainRunsBothModels(t *testing.T) {
	server := newTestServer(t)

	server.runScheduledRetrain()

	runs, err := server.store.ListTrainingRuns(10)
	require.NoError(t, err)
	require.Len(t, runs, 2, "One run per model should be persisted")

	trained := make(map[string]string)
	for _, run := range runs {
		trained[run.ModelType] = run.Status
	}
	assert.Equal(t, string(tasks.StatusSucceeded), trained[models.ModelTypeOutbreak])
	assert.Equal(t, string(tasks.StatusSucceeded), trained[models.ModelTypeHealthRisk])

	assert.True(t, server.outbreak.Ready())
	assert.True(t, server.healthRisk.Ready())
}
