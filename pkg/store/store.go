package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
)

// Store provides SQLite-based persistence for prediction history and
// training run records
type Store struct {
	db *sql.DB
}

// NewStore creates a new SQLite-backed store instance
func NewStore(dbPath string) (*Store, error) {
	// Open database with connection pooling parameters
	// Format: file:path?param=value
	dsn := fmt.Sprintf("file:%s?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writes, so the pool stays small.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// initSchema creates the database schema if it doesn't exist
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS predictions (
		id TEXT PRIMARY KEY,
		model_type TEXT NOT NULL,
		risk_level TEXT NOT NULL,
		confidence REAL NOT NULL,
		model_version TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_predictions_model_type ON predictions(model_type);
	CREATE INDEX IF NOT EXISTS idx_predictions_created_at ON predictions(created_at);

	CREATE TABLE IF NOT EXISTS training_runs (
		id TEXT PRIMARY KEY,
		model_type TEXT NOT NULL,
		data_source TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		data TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_training_runs_model_type ON training_runs(model_type);
	CREATE INDEX IF NOT EXISTS idx_training_runs_created_at ON training_runs(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// SavePrediction saves a served prediction to the database
func (s *Store) SavePrediction(record *models.PredictionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO predictions (id, model_type, risk_level, confidence, model_version, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		record.ID,
		record.ModelType,
		record.RiskLevel,
		record.Confidence,
		record.ModelVersion,
		record.CreatedAt,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction: %w", err)
	}

	return nil
}

// GetPrediction retrieves a prediction record by ID
func (s *Store) GetPrediction(id string) (*models.PredictionRecord, error) {
	var data string
	query := `SELECT data FROM predictions WHERE id = ?`

	err := s.db.QueryRow(query, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("prediction not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get prediction: %w", err)
	}

	var record models.PredictionRecord
	if err := json.Unmarshal([]byte(data), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}

	return &record, nil
}

// ListRecentPredictions lists prediction records newest-first. An empty
// modelType matches every model; a non-positive limit falls back to 50.
func (s *Store) ListRecentPredictions(modelType string, limit int) ([]*models.PredictionRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT data FROM predictions ORDER BY created_at DESC LIMIT ?`
	args := []any{limit}
	if modelType != "" {
		query = `SELECT data FROM predictions WHERE model_type = ? ORDER BY created_at DESC LIMIT ?`
		args = []any{modelType, limit}
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list predictions: %w", err)
	}
	defer rows.Close()

	records := make([]*models.PredictionRecord, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			continue
		}

		var record models.PredictionRecord
		if err := json.Unmarshal([]byte(data), &record); err != nil {
			continue
		}

		records = append(records, &record)
	}

	return records, nil
}

// SaveTrainingRun saves a training run record to the database
func (s *Store) SaveTrainingRun(run *models.TrainingRun) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("failed to marshal training run: %w", err)
	}

	query := `
		INSERT OR REPLACE INTO training_runs (id, model_type, data_source, status, created_at, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		run.ID,
		run.ModelType,
		run.DataSource,
		run.Status,
		run.CreatedAt,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("failed to save training run: %w", err)
	}

	return nil
}

// GetTrainingRun retrieves a training run record by ID
func (s *Store) GetTrainingRun(id string) (*models.TrainingRun, error) {
	var data string
	query := `SELECT data FROM training_runs WHERE id = ?`

	err := s.db.QueryRow(query, id).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("training run not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get training run: %w", err)
	}

	var run models.TrainingRun
	if err := json.Unmarshal([]byte(data), &run); err != nil {
		return nil, fmt.Errorf("failed to unmarshal training run: %w", err)
	}

	return &run, nil
}

// ListTrainingRuns lists training run records newest-first. A
// non-positive limit falls back to 50.
func (s *Store) ListTrainingRuns(limit int) ([]*models.TrainingRun, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT data FROM training_runs ORDER BY created_at DESC LIMIT ?`

	rows, err := s.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list training runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*models.TrainingRun, 0)
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			continue
		}

		var run models.TrainingRun
		if err := json.Unmarshal([]byte(data), &run); err != nil {
			continue
		}

		runs = append(runs, &run)
	}

	return runs, nil
}
