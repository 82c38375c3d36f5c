package risk

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// ModelVersion is the semantic version persisted with every artifact.
// Artifacts written by a different version are rejected at load time.
const ModelVersion = "1.0.0"

// Sentinel errors for the prediction path.
var (
	// ErrModelUnavailable reports prediction against an untrained model.
	ErrModelUnavailable = errors.New("model unavailable")
	// ErrNotReady reports prediction against a predictor that has not
	// finished loading or training.
	ErrNotReady = errors.New("predictor not ready")
)

// Classifier is the contract shared by the ensemble implementations
type Classifier interface {
	Fit(X [][]float64, y []string, featureNames []string) error
	Predict(features []float64) (string, error)
	PredictProba(features []float64) (map[string]float64, error)
	Classes() []string
	Algorithm() string
}

// Prediction is the model-layer classification outcome
type Prediction struct {
	RiskLevel   string
	Confidence  float64
	Probability map[string]float64
}

// TrainingMetrics summarizes one completed training run
type TrainingMetrics struct {
	TrainAccuracy   float64 `json:"train_accuracy"`
	TestAccuracy    float64 `json:"test_accuracy"`
	TrainSamples    int     `json:"train_samples"`
	TestSamples     int     `json:"test_samples"`
	NumFeatures     int     `json:"num_features"`
	DurationSeconds float64 `json:"duration_seconds"`
	ModelVersion    string  `json:"model_version"`
}

// RiskModel wraps a classifier with its fitted preprocessing state and
// versioning metadata. A model is immutable once trained; retraining
// produces a replacement instance.
type RiskModel struct {
	Classifier   Classifier
	Preprocessor *Preprocessor
	Version      string
	LastTrained  time.Time
}

// NewRiskModel creates an untrained model around the given classifier
func NewRiskModel(clf Classifier) *RiskModel {
	return &RiskModel{
		Classifier:   clf,
		Preprocessor: NewPreprocessor(),
		Version:      ModelVersion,
	}
}

// Train fits preprocessing and classifier on a stratified 80/20 split of
// the provided dataset. Scaling moments and category vocabularies come
// from the training subset only.
func (m *RiskModel) Train(records []FeatureRecord, labels []string) (*TrainingMetrics, error) {
	start := time.Now()

	trainRecords, trainLabels, testRecords, testLabels, err := SplitDataset(records, labels, testFraction, trainTestSeed)
	if err != nil {
		return nil, err
	}

	if err := m.Preprocessor.Fit(trainRecords); err != nil {
		return nil, err
	}

	trainX, err := m.Preprocessor.TransformAll(trainRecords)
	if err != nil {
		return nil, err
	}
	testX, err := m.Preprocessor.TransformAll(testRecords)
	if err != nil {
		return nil, err
	}

	if err := m.Classifier.Fit(trainX, trainLabels, m.Preprocessor.EncodedColumns); err != nil {
		return nil, fmt.Errorf("classifier training failed: %w", err)
	}

	trainAccuracy, err := accuracyScore(m.Classifier, trainX, trainLabels)
	if err != nil {
		return nil, err
	}
	testAccuracy := trainAccuracy
	if len(testX) > 0 {
		testAccuracy, err = accuracyScore(m.Classifier, testX, testLabels)
		if err != nil {
			return nil, err
		}
	}

	m.LastTrained = time.Now().UTC()

	return &TrainingMetrics{
		TrainAccuracy:   trainAccuracy,
		TestAccuracy:    testAccuracy,
		TrainSamples:    len(trainRecords),
		TestSamples:     len(testRecords),
		NumFeatures:     len(m.Preprocessor.EncodedColumns),
		DurationSeconds: time.Since(start).Seconds(),
		ModelVersion:    m.Version,
	}, nil
}

// Predict classifies one feature record. The record is aligned to the
// trained schema first; predicting before training or loading returns
// ErrModelUnavailable.
func (m *RiskModel) Predict(record FeatureRecord) (*Prediction, error) {
	if m == nil || m.Classifier == nil || m.Preprocessor == nil || !m.Preprocessor.Fitted {
		return nil, ErrModelUnavailable
	}
	if len(m.Classifier.Classes()) == 0 {
		return nil, ErrModelUnavailable
	}

	encoded, err := m.Preprocessor.Transform(record)
	if err != nil {
		return nil, err
	}

	proba, err := m.Classifier.PredictProba(encoded)
	if err != nil {
		return nil, err
	}

	level := ""
	confidence := -1.0
	for _, class := range m.Classifier.Classes() {
		if proba[class] > confidence {
			level = class
			confidence = proba[class]
		}
	}

	return &Prediction{
		RiskLevel:   level,
		Confidence:  confidence,
		Probability: proba,
	}, nil
}

// modelArtifact is the JSON persistence payload for one trained model
type modelArtifact struct {
	Algorithm      string         `json:"algorithm"`
	RandomForest   *RandomForest  `json:"random_forest,omitempty"`
	GradientBoost  *GradientBoost `json:"gradient_boost,omitempty"`
	Preprocessor   *Preprocessor  `json:"preprocessor"`
	FeatureColumns []string       `json:"feature_columns"`
	EncodedColumns []string       `json:"encoded_columns"`
	Version        string         `json:"version"`
	LastTrained    time.Time      `json:"last_trained"`
}

// Save writes the trained model to a JSON artifact file
func (m *RiskModel) Save(path string) error {
	if m.Classifier == nil || m.Preprocessor == nil || !m.Preprocessor.Fitted {
		return fmt.Errorf("cannot save untrained model")
	}

	featureColumns := make([]string, 0, len(m.Preprocessor.NumericColumns)+len(m.Preprocessor.CategoricalColumns))
	featureColumns = append(featureColumns, m.Preprocessor.NumericColumns...)
	featureColumns = append(featureColumns, m.Preprocessor.CategoricalColumns...)

	artifact := modelArtifact{
		Algorithm:      m.Classifier.Algorithm(),
		Preprocessor:   m.Preprocessor,
		FeatureColumns: featureColumns,
		EncodedColumns: m.Preprocessor.EncodedColumns,
		Version:        m.Version,
		LastTrained:    m.LastTrained,
	}

	switch clf := m.Classifier.(type) {
	case *RandomForest:
		artifact.RandomForest = clf
	case *GradientBoost:
		artifact.GradientBoost = clf
	default:
		return fmt.Errorf("unsupported classifier algorithm: %s", m.Classifier.Algorithm())
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize model: %w", err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create model directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write model file: %w", err)
	}
	return nil
}

// LoadRiskModel restores a trained model from a JSON artifact file. All
// parts are validated before any state is returned; a partial or
// mismatched artifact yields an error and no model.
func LoadRiskModel(path string) (*RiskModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read model file: %w", err)
	}

	var artifact modelArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse model file: %w", err)
	}

	if artifact.Version != ModelVersion {
		return nil, fmt.Errorf("invalid model artifact: version %q does not match %q", artifact.Version, ModelVersion)
	}
	if artifact.Preprocessor == nil || !artifact.Preprocessor.Fitted {
		return nil, fmt.Errorf("invalid model artifact: missing fitted preprocessor")
	}
	if len(artifact.EncodedColumns) == 0 {
		return nil, fmt.Errorf("invalid model artifact: missing encoded columns")
	}

	var clf Classifier
	switch artifact.Algorithm {
	case AlgorithmRandomForest:
		if artifact.RandomForest == nil || len(artifact.RandomForest.Trees) == 0 {
			return nil, fmt.Errorf("invalid model artifact: missing random forest payload")
		}
		clf = artifact.RandomForest
	case AlgorithmGradientBoost:
		if artifact.GradientBoost == nil || len(artifact.GradientBoost.Trees) == 0 {
			return nil, fmt.Errorf("invalid model artifact: missing gradient boost payload")
		}
		clf = artifact.GradientBoost
	default:
		return nil, fmt.Errorf("invalid model artifact: unknown algorithm %q", artifact.Algorithm)
	}

	if len(clf.Classes()) == 0 {
		return nil, fmt.Errorf("invalid model artifact: classifier has no classes")
	}

	return &RiskModel{
		Classifier:   clf,
		Preprocessor: artifact.Preprocessor,
		Version:      artifact.Version,
		LastTrained:  artifact.LastTrained,
	}, nil
}
