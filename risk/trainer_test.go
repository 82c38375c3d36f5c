package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labeledRecords builds n records per class carrying a class marker so
// split membership can be traced back.
func labeledRecords(counts map[string]int) ([]FeatureRecord, []string) {
	var records []FeatureRecord
	var labels []string
	for _, class := range []string{"low", "medium", "high"} {
		for i := 0; i < counts[class]; i++ {
			record := NewFeatureRecord()
			record.Numeric["symptom_density"] = float64(i)
			record.Categorical["location_type"] = class
			records = append(records, record)
			labels = append(labels, class)
		}
	}
	return records, labels
}

func countLabels(labels []string) map[string]int {
	counts := make(map[string]int)
	for _, label := range labels {
		counts[label]++
	}
	return counts
}

func TestSplitDatasetStratified(t *testing.T) {
	records, labels := labeledRecords(map[string]int{"low": 30, "medium": 20, "high": 10})

	trainRecords, trainLabels, testRecords, testLabels, err := SplitDataset(records, labels, 0.2, 1)
	require.NoError(t, err)

	require.Len(t, trainRecords, 48)
	require.Len(t, testRecords, 12)
	require.Len(t, trainLabels, 48)
	require.Len(t, testLabels, 12)

	trainCounts := countLabels(trainLabels)
	testCounts := countLabels(testLabels)

	assert.Equal(t, 24, trainCounts["low"])
	assert.Equal(t, 16, trainCounts["medium"])
	assert.Equal(t, 8, trainCounts["high"])
	assert.Equal(t, 6, testCounts["low"])
	assert.Equal(t, 4, testCounts["medium"])
	assert.Equal(t, 2, testCounts["high"])

	// Records stay aligned with their labels through the shuffle.
	for i, record := range trainRecords {
		assert.Equal(t, trainLabels[i], record.Categorical["location_type"])
	}
	for i, record := range testRecords {
		assert.Equal(t, testLabels[i], record.Categorical["location_type"])
	}
}

func TestSplitDatasetDeterministic(t *testing.T) {
	records, labels := labeledRecords(map[string]int{"low": 20, "medium": 20, "high": 20})

	_, trainA, _, testA, err := SplitDataset(records, labels, 0.2, 7)
	require.NoError(t, err)
	_, trainB, _, testB, err := SplitDataset(records, labels, 0.2, 7)
	require.NoError(t, err)

	assert.Equal(t, trainA, trainB)
	assert.Equal(t, testA, testB)
}

func TestSplitDatasetSingleSampleClass(t *testing.T) {
	records, labels := labeledRecords(map[string]int{"low": 10, "medium": 10, "high": 1})

	_, trainLabels, _, testLabels, err := SplitDataset(records, labels, 0.2, 3)
	require.NoError(t, err)

	// A one-row class must stay on the training side.
	assert.Equal(t, 1, countLabels(trainLabels)["high"])
	assert.Equal(t, 0, countLabels(testLabels)["high"])
}

func TestSplitDatasetErrors(t *testing.T) {
	records, labels := labeledRecords(map[string]int{"low": 4})

	_, _, _, _, err := SplitDataset(nil, nil, 0.2, 1)
	assert.EqualError(t, err, "empty training data")

	_, _, _, _, err = SplitDataset(records, labels[:2], 0.2, 1)
	assert.EqualError(t, err, "X and y must have same number of samples")

	_, _, _, _, err = SplitDataset(records, labels, 0, 1)
	require.Error(t, err)
	_, _, _, _, err = SplitDataset(records, labels, 1, 1)
	require.Error(t, err)
}
