package risk

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Train/test split parameters shared by both predictors.
const (
	testFraction  = 0.2
	trainTestSeed = 42
)

// SplitDataset partitions records and labels into stratified train and
// test subsets: class proportions carry over to both sides, the shuffle
// is seeded, and every class keeps at least one training row.
func SplitDataset(records []FeatureRecord, labels []string, fraction float64, seed uint64) ([]FeatureRecord, []string, []FeatureRecord, []string, error) {
	if len(records) == 0 || len(labels) == 0 {
		return nil, nil, nil, nil, fmt.Errorf("empty training data")
	}
	if len(records) != len(labels) {
		return nil, nil, nil, nil, fmt.Errorf("X and y must have same number of samples")
	}
	if fraction <= 0 || fraction >= 1 {
		return nil, nil, nil, nil, fmt.Errorf("test fraction must be in (0, 1)")
	}

	byClass := make(map[string][]int)
	for i, label := range labels {
		byClass[label] = append(byClass[label], i)
	}

	rng := rand.New(rand.NewPCG(seed, seed))

	var trainIdx, testIdx []int
	for _, class := range uniqueStrings(labels) {
		indices := byClass[class]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})

		testCount := int(math.Round(float64(len(indices)) * fraction))
		if testCount >= len(indices) {
			testCount = len(indices) - 1
		}

		testIdx = append(testIdx, indices[:testCount]...)
		trainIdx = append(trainIdx, indices[testCount:]...)
	}

	rng.Shuffle(len(trainIdx), func(i, j int) {
		trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
	})
	rng.Shuffle(len(testIdx), func(i, j int) {
		testIdx[i], testIdx[j] = testIdx[j], testIdx[i]
	})

	trainRecords := make([]FeatureRecord, len(trainIdx))
	trainLabels := make([]string, len(trainIdx))
	for i, idx := range trainIdx {
		trainRecords[i] = records[idx]
		trainLabels[i] = labels[idx]
	}

	testRecords := make([]FeatureRecord, len(testIdx))
	testLabels := make([]string, len(testIdx))
	for i, idx := range testIdx {
		testRecords[i] = records[idx]
		testLabels[i] = labels[idx]
	}

	return trainRecords, trainLabels, testRecords, testLabels, nil
}
