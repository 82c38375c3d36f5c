package risk

import (
	"fmt"
	"math"
	"sync"
)

// AlgorithmGradientBoost tags gradient-boosting artifacts.
const AlgorithmGradientBoost = "gradient_boost"

// GradientBoost implements multiclass gradient boosting: each round fits
// one variance-reduction regression tree per class to the softmax
// pseudo-residuals and adds its scaled output to the raw class scores.
// Initial scores are the class-prior log frequencies. Training is fully
// deterministic; no subsampling is applied.
type GradientBoost struct {
	Trees           [][]*DecisionTree `json:"trees"`
	InitScores      []float64         `json:"init_scores"`
	NumRounds       int               `json:"num_rounds"`
	LearningRate    float64           `json:"learning_rate"`
	MaxDepth        int               `json:"max_depth"`
	MinSamplesSplit int               `json:"min_samples_split"`
	MinSamplesLeaf  int               `json:"min_samples_leaf"`
	MaxThresholds   int               `json:"max_thresholds"`
	FeatureNames    []string          `json:"feature_names"`
	ClassLabels     []string          `json:"classes"`
	NumFeatures     int               `json:"num_features"`
}

// NewGradientBoost creates a gradient-boosting classifier with default
// hyperparameters
func NewGradientBoost() *GradientBoost {
	return &GradientBoost{
		NumRounds:       100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		MaxThresholds:   32,
	}
}

// Algorithm returns the persistence tag for this classifier
func (gb *GradientBoost) Algorithm() string {
	return AlgorithmGradientBoost
}

// Classes returns the fitted class labels
func (gb *GradientBoost) Classes() []string {
	return gb.ClassLabels
}

// Fit trains the boosted ensemble. The per-class trees of one round are
// independent given the round's probabilities and train in parallel.
func (gb *GradientBoost) Fit(X [][]float64, y []string, featureNames []string) error {
	if len(X) == 0 || len(y) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("X and y must have same number of samples")
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features")
	}

	gb.FeatureNames = featureNames
	gb.NumFeatures = len(featureNames)
	gb.ClassLabels = uniqueStrings(y)

	numClasses := len(gb.ClassLabels)
	numSamples := len(X)

	classIndex := make(map[string]int, numClasses)
	for k, class := range gb.ClassLabels {
		classIndex[class] = k
	}

	counts := countClasses(y)
	gb.InitScores = make([]float64, numClasses)
	for k, class := range gb.ClassLabels {
		gb.InitScores[k] = math.Log(float64(counts[class]) / float64(numSamples))
	}

	raw := make([][]float64, numSamples)
	for i := range raw {
		raw[i] = append([]float64(nil), gb.InitScores...)
	}

	gb.Trees = make([][]*DecisionTree, gb.NumRounds)
	for round := 0; round < gb.NumRounds; round++ {
		probs := make([][]float64, numSamples)
		for i := range probs {
			probs[i] = softmax(raw[i])
		}

		gb.Trees[round] = make([]*DecisionTree, numClasses)

		var wg sync.WaitGroup
		errs := make(chan error, numClasses)

		for k := 0; k < numClasses; k++ {
			wg.Add(1)
			go func(k int) {
				defer wg.Done()

				residuals := make([]float64, numSamples)
				for i := 0; i < numSamples; i++ {
					target := 0.0
					if classIndex[y[i]] == k {
						target = 1.0
					}
					residuals[i] = target - probs[i][k]
				}

				tree := &DecisionTree{
					MaxDepth:        gb.MaxDepth,
					MinSamplesSplit: gb.MinSamplesSplit,
					MinSamplesLeaf:  gb.MinSamplesLeaf,
					MaxThresholds:   gb.MaxThresholds,
				}
				if err := tree.FitRegression(X, residuals, featureNames); err != nil {
					errs <- fmt.Errorf("round %d class %s: %w", round, gb.ClassLabels[k], err)
					return
				}

				// Each goroutine owns one raw-score column.
				gb.Trees[round][k] = tree
				for i := 0; i < numSamples; i++ {
					value, err := tree.PredictValue(X[i])
					if err != nil {
						errs <- err
						return
					}
					raw[i][k] += gb.LearningRate * value
				}
			}(k)
		}

		wg.Wait()
		close(errs)
		if err := <-errs; err != nil {
			gb.Trees = nil
			return err
		}
	}

	return nil
}

// Predict returns the class with the highest probability
func (gb *GradientBoost) Predict(features []float64) (string, error) {
	proba, err := gb.PredictProba(features)
	if err != nil {
		return "", err
	}

	best := ""
	bestProba := -1.0
	for _, class := range gb.ClassLabels {
		if proba[class] > bestProba {
			best = class
			bestProba = proba[class]
		}
	}
	return best, nil
}

// PredictProba returns softmax class probabilities for a feature vector
func (gb *GradientBoost) PredictProba(features []float64) (map[string]float64, error) {
	if len(gb.Trees) == 0 {
		return nil, fmt.Errorf("model not trained")
	}
	if len(features) != gb.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", gb.NumFeatures, len(features))
	}

	raw := append([]float64(nil), gb.InitScores...)
	for _, round := range gb.Trees {
		for k, tree := range round {
			value, err := tree.PredictValue(features)
			if err != nil {
				return nil, err
			}
			raw[k] += gb.LearningRate * value
		}
	}

	probs := softmax(raw)
	result := make(map[string]float64, len(gb.ClassLabels))
	for k, class := range gb.ClassLabels {
		result[class] = probs[k]
	}
	return result, nil
}

// softmax converts raw scores to probabilities, shifted for stability
func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores[1:] {
		if s > max {
			max = s
		}
	}

	out := make([]float64, len(scores))
	sum := 0.0
	for i, s := range scores {
		out[i] = math.Exp(s - max)
		sum += out[i]
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}
