package risk

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
	"github.com/aquasentinel/aquasentinel-go/utils"
)

// Predictor lifecycle states.
const (
	StateUninitialized  = "uninitialized"
	StateLoading        = "loading"
	StateTrained        = "trained"
	StateTrainingFailed = "training_failed"
)

// Artifact file names under the model directory.
const (
	outbreakArtifactFile   = "outbreak_predictor.json"
	healthRiskArtifactFile = "health_risk_assessor.json"
)

// Predictor composes feature extraction, model lifecycle and explanation
// for one risk domain. Predictions run concurrently against a read-only
// model pointer; training is serialized and replaces the pointer
// wholesale, so readers observe either the old or the new model, never a
// mix.
type Predictor struct {
	// Samples and Seed control the synthetic bootstrap corpus.
	Samples int
	Seed    uint64

	// Extractor supplies feature records; its clock is injectable.
	Extractor *FeatureExtractor

	name          string
	artifactPath  string
	newClassifier func() Classifier
	explainer     *Explainer
	log           *utils.FieldLogger

	mu        sync.RWMutex
	model     *RiskModel
	state     string
	lastError string

	trainMu sync.Mutex
}

// NewOutbreakPredictor creates the outbreak risk predictor: a random
// forest bootstrapped from the large synthetic corpus.
func NewOutbreakPredictor(modelDir string) *Predictor {
	return newPredictor(models.ModelTypeOutbreak,
		filepath.Join(modelDir, outbreakArtifactFile),
		OutbreakSyntheticSamples,
		func() Classifier { return NewRandomForest() })
}

// NewHealthRiskPredictor creates the individual health risk predictor: a
// gradient-boosting classifier bootstrapped from the small synthetic
// corpus.
func NewHealthRiskPredictor(modelDir string) *Predictor {
	return newPredictor(models.ModelTypeHealthRisk,
		filepath.Join(modelDir, healthRiskArtifactFile),
		HealthRiskSyntheticSamples,
		func() Classifier { return NewGradientBoost() })
}

func newPredictor(name, artifactPath string, samples int, newClassifier func() Classifier) *Predictor {
	return &Predictor{
		Samples:       samples,
		Seed:          DefaultSyntheticSeed,
		Extractor:     NewFeatureExtractor(),
		name:          name,
		artifactPath:  artifactPath,
		newClassifier: newClassifier,
		explainer:     NewExplainer(),
		log: utils.GetLogger().WithFields(
			utils.Component("predictor"),
			utils.String("model_type", name),
		),
		state: StateUninitialized,
	}
}

// Name returns the predictor's model-type identifier
func (p *Predictor) Name() string {
	return p.name
}

// State returns the current lifecycle state
func (p *Predictor) State() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// Ready reports whether predictions can be served
func (p *Predictor) Ready() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state == StateTrained && p.model != nil
}

// Version returns the active model version, or "" when no model is active
func (p *Predictor) Version() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.model == nil {
		return ""
	}
	return p.model.Version
}

// LoadOrTrain makes the predictor ready: it tries the persisted artifact
// first and falls back to synthetic training on any load failure. It
// never returns an error; the outcome is observable through State.
func (p *Predictor) LoadOrTrain(ctx context.Context) {
	p.mu.Lock()
	p.state = StateLoading
	p.mu.Unlock()

	model, err := LoadRiskModel(p.artifactPath)
	if err == nil {
		p.mu.Lock()
		p.model = model
		p.state = StateTrained
		p.lastError = ""
		p.mu.Unlock()

		p.log.Info("model loaded from artifact",
			utils.String("path", p.artifactPath),
			utils.String("version", model.Version))
		return
	}

	p.log.Warn("model load failed, training from synthetic data", utils.Error(err))
	if _, trainErr := p.Train(ctx, models.DataSourceSynthetic, nil); trainErr != nil {
		p.log.Error("bootstrap training failed", trainErr)
	}
}

// Train runs one full training cycle: synthetic corpus generation,
// stratified split, preprocessing fit, classifier fit, model swap,
// artifact persist. Concurrent calls serialize. A failed run leaves the
// previous model in service; the state degrades to training_failed only
// when no model was ever active. Supported override keys: "samples",
// "seed".
func (p *Predictor) Train(ctx context.Context, dataSource string, overrides map[string]any) (*TrainingMetrics, error) {
	p.trainMu.Lock()
	defer p.trainMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if dataSource != "" && dataSource != models.DataSourceSynthetic {
		// Synthetic is the only implemented source; others degrade to it.
		p.log.Warn("unsupported data source, using synthetic data",
			utils.String("data_source", dataSource))
	}

	samples := p.Samples
	seed := p.Seed
	if v, ok := overrideInt(overrides, "samples"); ok && v > 0 {
		samples = v
	}
	if v, ok := overrideInt(overrides, "seed"); ok && v >= 0 {
		seed = uint64(v)
	}

	p.log.Info("training started", utils.Int("samples", samples))

	generator := NewSyntheticDataGenerator(seed, samples)
	records, labels := generator.Generate()

	model := NewRiskModel(p.newClassifier())
	metrics, err := model.Train(records, labels)
	if err != nil {
		p.mu.Lock()
		if p.model == nil {
			p.state = StateTrainingFailed
		}
		p.lastError = err.Error()
		p.mu.Unlock()
		return nil, err
	}

	p.mu.Lock()
	p.model = model
	p.state = StateTrained
	p.lastError = ""
	p.mu.Unlock()

	if err := model.Save(p.artifactPath); err != nil {
		// The trained model still serves; only persistence is degraded.
		p.log.Warn("failed to persist model artifact", utils.Error(err))
	}

	p.log.Info("training completed",
		utils.Float("train_accuracy", metrics.TrainAccuracy),
		utils.Float("test_accuracy", metrics.TestAccuracy),
		utils.Float("duration_seconds", metrics.DurationSeconds))

	return metrics, nil
}

// Predict classifies a prediction request against the active model
func (p *Predictor) Predict(req *models.PredictionRequest) (*models.PredictionResponse, error) {
	p.mu.RLock()
	model := p.model
	state := p.state
	p.mu.RUnlock()

	if state != StateTrained || model == nil {
		return nil, ErrNotReady
	}

	record := p.Extractor.Extract(req.SensorData, req.HealthReports, req.Location)
	prediction, err := model.Predict(record)
	if err != nil {
		return nil, err
	}

	// Every canonical level is present in the response scores.
	scores := make(map[string]float64, len(RiskLevels))
	for _, level := range RiskLevels {
		scores[level] = prediction.Probability[level]
	}

	return &models.PredictionResponse{
		RiskLevel:           prediction.RiskLevel,
		Confidence:          prediction.Confidence,
		ProbabilityScores:   scores,
		ContributingFactors: p.explainer.ContributingFactors(record),
		Recommendations:     p.explainer.Recommendations(prediction.RiskLevel, record),
		ModelVersion:        model.Version,
		Timestamp:           time.Now().UTC(),
	}, nil
}

// Evaluate recomputes held-out metrics for the active model on a fresh
// synthetic split
func (p *Predictor) Evaluate() (*models.EvaluationMetrics, error) {
	p.mu.RLock()
	model := p.model
	state := p.state
	p.mu.RUnlock()

	if state != StateTrained || model == nil {
		return nil, ErrNotReady
	}

	generator := NewSyntheticDataGenerator(p.Seed, p.Samples)
	records, labels := generator.Generate()

	_, _, testRecords, testLabels, err := SplitDataset(records, labels, testFraction, trainTestSeed)
	if err != nil {
		return nil, err
	}

	testX, err := model.Preprocessor.TransformAll(testRecords)
	if err != nil {
		return nil, err
	}
	return EvaluateClassifier(model.Classifier, testX, testLabels)
}

// Status reports readiness metadata for the predictor
func (p *Predictor) Status() models.ModelStatusInfo {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info := models.ModelStatusInfo{
		Loaded: p.state == StateTrained && p.model != nil,
		State:  p.state,
		Error:  p.lastError,
	}
	if p.model != nil {
		info.Version = p.model.Version
		lastTrained := p.model.LastTrained
		info.LastTrained = &lastTrained
	}
	return info
}

// overrideInt reads an integer-valued override, tolerating the float64
// values produced by JSON decoding
func overrideInt(overrides map[string]any, key string) (int, bool) {
	if overrides == nil {
		return 0, false
	}
	switch v := overrides[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
