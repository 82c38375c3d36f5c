package risk

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"
	"sync"
)

// AlgorithmRandomForest tags random-forest artifacts.
const AlgorithmRandomForest = "random_forest"

// RandomForest implements a bootstrap-aggregated ensemble of Gini decision
// trees. Each tree trains on a bootstrap sample restricted to a random
// feature subspace of sqrt(d) columns. Class probabilities are the mean of
// the per-tree leaf distributions.
type RandomForest struct {
	Trees           []*DecisionTree `json:"trees"`
	TreeFeatures    [][]int         `json:"tree_features"`
	NumTrees        int             `json:"num_trees"`
	MaxDepth        int             `json:"max_depth"`
	MinSamplesSplit int             `json:"min_samples_split"`
	MinSamplesLeaf  int             `json:"min_samples_leaf"`
	MaxThresholds   int             `json:"max_thresholds"`
	FeatureNames    []string        `json:"feature_names"`
	ClassLabels     []string        `json:"classes"`
	NumFeatures     int             `json:"num_features"`
	Seed            uint64          `json:"seed"`
}

// NewRandomForest creates a random forest with default hyperparameters
func NewRandomForest() *RandomForest {
	return &RandomForest{
		NumTrees:        100,
		MaxDepth:        10,
		MinSamplesSplit: 5,
		MinSamplesLeaf:  2,
		MaxThresholds:   32,
		Seed:            42,
	}
}

// Algorithm returns the persistence tag for this classifier
func (rf *RandomForest) Algorithm() string {
	return AlgorithmRandomForest
}

// Classes returns the fitted class labels
func (rf *RandomForest) Classes() []string {
	return rf.ClassLabels
}

// Fit trains the ensemble. Trees train in parallel; each tree derives its
// own random source from the forest seed and its index, so results are
// reproducible regardless of goroutine scheduling.
func (rf *RandomForest) Fit(X [][]float64, y []string, featureNames []string) error {
	if len(X) == 0 || len(y) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("X and y must have same number of samples")
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features")
	}

	rf.FeatureNames = featureNames
	rf.NumFeatures = len(featureNames)
	rf.ClassLabels = uniqueStrings(y)
	rf.Trees = make([]*DecisionTree, rf.NumTrees)
	rf.TreeFeatures = make([][]int, rf.NumTrees)

	maxFeatures := int(math.Sqrt(float64(rf.NumFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	var wg sync.WaitGroup
	errs := make(chan error, rf.NumTrees)

	for treeIdx := 0; treeIdx < rf.NumTrees; treeIdx++ {
		wg.Add(1)
		go func(treeIdx int) {
			defer wg.Done()

			treeSeed := rf.Seed + uint64(treeIdx)
			rng := rand.New(rand.NewPCG(treeSeed, treeSeed))

			featureIndices := sampleFeatureIndices(rng, rf.NumFeatures, maxFeatures)
			sampleX, sampleY := bootstrapSample(rng, X, y)

			subX := extractFeatureColumns(sampleX, featureIndices)
			subNames := make([]string, len(featureIndices))
			for i, idx := range featureIndices {
				subNames[i] = featureNames[idx]
			}

			tree := &DecisionTree{
				MaxDepth:        rf.MaxDepth,
				MinSamplesSplit: rf.MinSamplesSplit,
				MinSamplesLeaf:  rf.MinSamplesLeaf,
				MaxThresholds:   rf.MaxThresholds,
			}
			if err := tree.Fit(subX, sampleY, subNames); err != nil {
				errs <- fmt.Errorf("tree %d: %w", treeIdx, err)
				return
			}

			// Each goroutine writes a distinct index.
			rf.Trees[treeIdx] = tree
			rf.TreeFeatures[treeIdx] = featureIndices
		}(treeIdx)
	}

	wg.Wait()
	close(errs)
	if err := <-errs; err != nil {
		rf.Trees = nil
		rf.TreeFeatures = nil
		return err
	}
	return nil
}

// Predict returns the class with the highest averaged probability
func (rf *RandomForest) Predict(features []float64) (string, error) {
	proba, err := rf.PredictProba(features)
	if err != nil {
		return "", err
	}

	best := ""
	bestProba := -1.0
	for _, class := range rf.ClassLabels {
		if proba[class] > bestProba {
			best = class
			bestProba = proba[class]
		}
	}
	return best, nil
}

// PredictProba returns class probabilities averaged over the ensemble.
// The result covers every fitted class and sums to 1.
func (rf *RandomForest) PredictProba(features []float64) (map[string]float64, error) {
	if len(rf.Trees) == 0 {
		return nil, fmt.Errorf("model not trained")
	}
	if len(features) != rf.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", rf.NumFeatures, len(features))
	}

	sums := make(map[string]float64, len(rf.ClassLabels))
	for i, tree := range rf.Trees {
		subFeatures := extractFeatureVector(features, rf.TreeFeatures[i])
		proba, err := tree.PredictProba(subFeatures)
		if err != nil {
			return nil, err
		}
		for class, p := range proba {
			sums[class] += p
		}
	}

	result := make(map[string]float64, len(rf.ClassLabels))
	for _, class := range rf.ClassLabels {
		result[class] = sums[class] / float64(len(rf.Trees))
	}
	return result, nil
}

// bootstrapSample draws len(X) samples with replacement
func bootstrapSample(rng *rand.Rand, X [][]float64, y []string) ([][]float64, []string) {
	n := len(X)
	sampleX := make([][]float64, n)
	sampleY := make([]string, n)
	for i := 0; i < n; i++ {
		idx := rng.IntN(n)
		sampleX[i] = X[idx]
		sampleY[i] = y[idx]
	}
	return sampleX, sampleY
}

// sampleFeatureIndices picks count distinct feature indices, sorted
func sampleFeatureIndices(rng *rand.Rand, numFeatures, count int) []int {
	indices := make([]int, numFeatures)
	for i := range indices {
		indices[i] = i
	}
	rng.Shuffle(len(indices), func(i, j int) {
		indices[i], indices[j] = indices[j], indices[i]
	})

	selected := append([]int(nil), indices[:count]...)
	sort.Ints(selected)
	return selected
}

// extractFeatureColumns projects rows onto the selected feature indices
func extractFeatureColumns(X [][]float64, featureIndices []int) [][]float64 {
	result := make([][]float64, len(X))
	for i, row := range X {
		result[i] = extractFeatureVector(row, featureIndices)
	}
	return result
}

// extractFeatureVector projects one row onto the selected feature indices
func extractFeatureVector(features []float64, featureIndices []int) []float64 {
	result := make([]float64, len(featureIndices))
	for i, idx := range featureIndices {
		result[i] = features[idx]
	}
	return result
}
