package risk

import (
	"fmt"
	"sort"
)

// TreeNode represents a node in a fitted decision tree
type TreeNode struct {
	IsLeaf       bool           `json:"is_leaf"`
	Class        string         `json:"class,omitempty"`
	ClassCounts  map[string]int `json:"class_counts,omitempty"`
	Confidence   float64        `json:"confidence,omitempty"`
	Value        float64        `json:"value,omitempty"`
	Feature      string         `json:"feature,omitempty"`
	FeatureIndex int            `json:"feature_index,omitempty"`
	Threshold    float64        `json:"threshold,omitempty"`
	Left         *TreeNode      `json:"left,omitempty"`
	Right        *TreeNode      `json:"right,omitempty"`
	SamplesCount int            `json:"samples_count"`
	Depth        int            `json:"depth"`
}

// DecisionTree implements a CART-style decision tree. Fit grows a
// classification tree on Gini impurity; FitRegression grows a regression
// tree on variance reduction. A fitted tree serves exactly one of the two
// modes.
type DecisionTree struct {
	Root            *TreeNode `json:"root,omitempty"`
	MaxDepth        int       `json:"max_depth"`
	MinSamplesSplit int       `json:"min_samples_split"`
	MinSamplesLeaf  int       `json:"min_samples_leaf"`
	MaxThresholds   int       `json:"max_thresholds"`
	FeatureNames    []string  `json:"feature_names"`
	Classes         []string  `json:"classes,omitempty"`
	NumFeatures     int       `json:"num_features"`
}

// NewDecisionTree creates a decision tree with default hyperparameters
func NewDecisionTree() *DecisionTree {
	return &DecisionTree{
		MaxDepth:        10,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		MaxThresholds:   32,
	}
}

// Fit trains a classification tree on the provided dataset
func (dt *DecisionTree) Fit(X [][]float64, y []string, featureNames []string) error {
	if len(X) == 0 || len(y) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(y) {
		return fmt.Errorf("X and y must have same number of samples")
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features")
	}

	dt.FeatureNames = featureNames
	dt.NumFeatures = len(featureNames)
	dt.Classes = uniqueStrings(y)
	dt.Root = dt.buildTree(X, y, 0)
	return nil
}

// FitRegression trains a regression tree on the provided dataset
func (dt *DecisionTree) FitRegression(X [][]float64, targets []float64, featureNames []string) error {
	if len(X) == 0 || len(targets) == 0 {
		return fmt.Errorf("empty training data")
	}
	if len(X) != len(targets) {
		return fmt.Errorf("X and y must have same number of samples")
	}
	if len(featureNames) != len(X[0]) {
		return fmt.Errorf("feature names must match number of features")
	}

	dt.FeatureNames = featureNames
	dt.NumFeatures = len(featureNames)
	dt.Root = dt.buildRegressionTree(X, targets, 0)
	return nil
}

// Predict returns the predicted class for a feature vector
func (dt *DecisionTree) Predict(features []float64) (string, error) {
	leaf, err := dt.findLeaf(features)
	if err != nil {
		return "", err
	}
	return leaf.Class, nil
}

// PredictProba returns the leaf class distribution for a feature vector.
// Every fitted class is present in the result, absent counts as 0.
func (dt *DecisionTree) PredictProba(features []float64) (map[string]float64, error) {
	leaf, err := dt.findLeaf(features)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, count := range leaf.ClassCounts {
		total += count
	}

	proba := make(map[string]float64, len(dt.Classes))
	for _, class := range dt.Classes {
		proba[class] = float64(leaf.ClassCounts[class]) / float64(total)
	}
	return proba, nil
}

// PredictValue returns the regression output for a feature vector
func (dt *DecisionTree) PredictValue(features []float64) (float64, error) {
	leaf, err := dt.findLeaf(features)
	if err != nil {
		return 0, err
	}
	return leaf.Value, nil
}

// findLeaf walks a feature vector down to its leaf node
func (dt *DecisionTree) findLeaf(features []float64) (*TreeNode, error) {
	if dt.Root == nil {
		return nil, fmt.Errorf("model not trained")
	}
	if len(features) != dt.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", dt.NumFeatures, len(features))
	}

	node := dt.Root
	for !node.IsLeaf {
		if features[node.FeatureIndex] <= node.Threshold {
			node = node.Left
		} else {
			node = node.Right
		}
	}
	return node, nil
}

// buildTree recursively grows a classification tree
func (dt *DecisionTree) buildTree(X [][]float64, y []string, depth int) *TreeNode {
	node := &TreeNode{SamplesCount: len(y), Depth: depth}
	classCounts := countClasses(y)

	if depth >= dt.MaxDepth || len(y) < dt.MinSamplesSplit || len(classCounts) == 1 {
		return dt.makeLeaf(node, classCounts)
	}

	featureIdx, threshold, gain := dt.findBestSplit(X, y)
	if featureIdx < 0 || gain <= 0 {
		return dt.makeLeaf(node, classCounts)
	}

	leftX, leftY, rightX, rightY := splitSamples(X, y, featureIdx, threshold)
	if len(leftY) < dt.MinSamplesLeaf || len(rightY) < dt.MinSamplesLeaf {
		return dt.makeLeaf(node, classCounts)
	}

	node.FeatureIndex = featureIdx
	node.Feature = dt.FeatureNames[featureIdx]
	node.Threshold = threshold
	node.Left = dt.buildTree(leftX, leftY, depth+1)
	node.Right = dt.buildTree(rightX, rightY, depth+1)
	return node
}

// makeLeaf finalizes a node as a classification leaf
func (dt *DecisionTree) makeLeaf(node *TreeNode, classCounts map[string]int) *TreeNode {
	node.IsLeaf = true
	node.Class = majorityClass(classCounts)
	node.ClassCounts = classCounts
	node.Confidence = float64(classCounts[node.Class]) / float64(node.SamplesCount)
	return node
}

// findBestSplit searches all features and candidate thresholds for the
// split with the highest Gini gain
func (dt *DecisionTree) findBestSplit(X [][]float64, y []string) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestGain := 0.0
	parentGini := calculateGini(y)

	numFeatures := len(X[0])
	values := make([]float64, len(X))

	for featureIdx := 0; featureIdx < numFeatures; featureIdx++ {
		for i, row := range X {
			values[i] = row[featureIdx]
		}

		for _, threshold := range dt.candidateThresholds(values) {
			leftY, rightY := splitLabels(X, y, featureIdx, threshold)
			if len(leftY) == 0 || len(rightY) == 0 {
				continue
			}

			weighted := (float64(len(leftY))*calculateGini(leftY) +
				float64(len(rightY))*calculateGini(rightY)) / float64(len(y))
			gain := parentGini - weighted
			if gain > bestGain {
				bestFeature = featureIdx
				bestThreshold = threshold
				bestGain = gain
			}
		}
	}

	return bestFeature, bestThreshold, bestGain
}

// buildRegressionTree recursively grows a regression tree
func (dt *DecisionTree) buildRegressionTree(X [][]float64, targets []float64, depth int) *TreeNode {
	node := &TreeNode{SamplesCount: len(targets), Depth: depth}

	if depth >= dt.MaxDepth || len(targets) < dt.MinSamplesSplit || calculateVariance(targets) < 1e-7 {
		node.IsLeaf = true
		node.Value = calculateMean(targets)
		return node
	}

	featureIdx, threshold, reduction := dt.findBestRegressionSplit(X, targets)
	if featureIdx < 0 || reduction <= 0 {
		node.IsLeaf = true
		node.Value = calculateMean(targets)
		return node
	}

	leftX, leftTargets, rightX, rightTargets := splitRegressionSamples(X, targets, featureIdx, threshold)
	if len(leftTargets) < dt.MinSamplesLeaf || len(rightTargets) < dt.MinSamplesLeaf {
		node.IsLeaf = true
		node.Value = calculateMean(targets)
		return node
	}

	node.FeatureIndex = featureIdx
	node.Feature = dt.FeatureNames[featureIdx]
	node.Threshold = threshold
	node.Left = dt.buildRegressionTree(leftX, leftTargets, depth+1)
	node.Right = dt.buildRegressionTree(rightX, rightTargets, depth+1)
	return node
}

// findBestRegressionSplit searches for the split with the highest
// weighted variance reduction
func (dt *DecisionTree) findBestRegressionSplit(X [][]float64, targets []float64) (int, float64, float64) {
	bestFeature := -1
	bestThreshold := 0.0
	bestReduction := 0.0
	parentVariance := calculateVariance(targets)

	numFeatures := len(X[0])
	values := make([]float64, len(X))

	for featureIdx := 0; featureIdx < numFeatures; featureIdx++ {
		for i, row := range X {
			values[i] = row[featureIdx]
		}

		for _, threshold := range dt.candidateThresholds(values) {
			var left, right []float64
			for i, row := range X {
				if row[featureIdx] <= threshold {
					left = append(left, targets[i])
				} else {
					right = append(right, targets[i])
				}
			}
			if len(left) == 0 || len(right) == 0 {
				continue
			}

			weighted := (float64(len(left))*calculateVariance(left) +
				float64(len(right))*calculateVariance(right)) / float64(len(targets))
			reduction := parentVariance - weighted
			if reduction > bestReduction {
				bestFeature = featureIdx
				bestThreshold = threshold
				bestReduction = reduction
			}
		}
	}

	return bestFeature, bestThreshold, bestReduction
}

// candidateThresholds returns split candidates for a feature column:
// midpoints between consecutive sorted unique values, thinned to at most
// MaxThresholds quantile-spaced entries so split search stays bounded on
// large columns.
func (dt *DecisionTree) candidateThresholds(values []float64) []float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	unique := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != unique[len(unique)-1] {
			unique = append(unique, v)
		}
	}
	if len(unique) < 2 {
		return nil
	}

	thresholds := make([]float64, 0, len(unique)-1)
	for i := 0; i < len(unique)-1; i++ {
		thresholds = append(thresholds, (unique[i]+unique[i+1])/2)
	}

	max := dt.MaxThresholds
	if max <= 0 || len(thresholds) <= max {
		return thresholds
	}

	thinned := make([]float64, 0, max)
	step := float64(len(thresholds)) / float64(max)
	for i := 0; i < max; i++ {
		thinned = append(thinned, thresholds[int(float64(i)*step)])
	}
	return thinned
}

// splitSamples partitions a classification dataset on feature <= threshold
func splitSamples(X [][]float64, y []string, featureIdx int, threshold float64) ([][]float64, []string, [][]float64, []string) {
	var leftX, rightX [][]float64
	var leftY, rightY []string

	for i, row := range X {
		if row[featureIdx] <= threshold {
			leftX = append(leftX, row)
			leftY = append(leftY, y[i])
		} else {
			rightX = append(rightX, row)
			rightY = append(rightY, y[i])
		}
	}
	return leftX, leftY, rightX, rightY
}

// splitLabels partitions only the labels on feature <= threshold
func splitLabels(X [][]float64, y []string, featureIdx int, threshold float64) ([]string, []string) {
	var left, right []string
	for i, row := range X {
		if row[featureIdx] <= threshold {
			left = append(left, y[i])
		} else {
			right = append(right, y[i])
		}
	}
	return left, right
}

// splitRegressionSamples partitions a regression dataset on feature <= threshold
func splitRegressionSamples(X [][]float64, targets []float64, featureIdx int, threshold float64) ([][]float64, []float64, [][]float64, []float64) {
	var leftX, rightX [][]float64
	var leftTargets, rightTargets []float64

	for i, row := range X {
		if row[featureIdx] <= threshold {
			leftX = append(leftX, row)
			leftTargets = append(leftTargets, targets[i])
		} else {
			rightX = append(rightX, row)
			rightTargets = append(rightTargets, targets[i])
		}
	}
	return leftX, leftTargets, rightX, rightTargets
}

// calculateGini computes the Gini impurity of a label set
func calculateGini(y []string) float64 {
	if len(y) == 0 {
		return 0
	}
	gini := 1.0
	for _, count := range countClasses(y) {
		p := float64(count) / float64(len(y))
		gini -= p * p
	}
	return gini
}

// calculateMean computes the mean of a value set
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance computes the population variance of a value set
func calculateVariance(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	mean := calculateMean(values)
	sum := 0.0
	for _, v := range values {
		diff := v - mean
		sum += diff * diff
	}
	return sum / float64(len(values))
}

// countClasses tallies label occurrences
func countClasses(y []string) map[string]int {
	counts := make(map[string]int)
	for _, label := range y {
		counts[label]++
	}
	return counts
}

// majorityClass returns the most frequent class, ties broken by label order
func majorityClass(classCounts map[string]int) string {
	classes := make([]string, 0, len(classCounts))
	for class := range classCounts {
		classes = append(classes, class)
	}
	sort.Strings(classes)

	best := ""
	bestCount := -1
	for _, class := range classes {
		if classCounts[class] > bestCount {
			best = class
			bestCount = classCounts[class]
		}
	}
	return best
}

// uniqueStrings returns the sorted unique values of a label set
func uniqueStrings(values []string) []string {
	seen := make(map[string]bool)
	unique := []string{}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			unique = append(unique, v)
		}
	}
	sort.Strings(unique)
	return unique
}
