package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gonum.org/v1/gonum/stat"
)

func TestGeneratorDeterministic(t *testing.T) {
	first := NewSyntheticDataGenerator(42, 200)
	second := NewSyntheticDataGenerator(42, 200)

	recordsA, labelsA := first.Generate()
	recordsB, labelsB := second.Generate()

	require.Equal(t, labelsA, labelsB)
	require.Equal(t, recordsA, recordsB)
}

func TestGeneratorSeedChangesData(t *testing.T) {
	recordsA, _ := NewSyntheticDataGenerator(1, 200).Generate()
	recordsB, _ := NewSyntheticDataGenerator(2, 200).Generate()

	assert.NotEqual(t, recordsA, recordsB)
}

func TestGeneratorSchema(t *testing.T) {
	generator := NewSyntheticDataGenerator(7, 300)
	records, labels := generator.Generate()

	require.Len(t, records, 300)
	require.Len(t, labels, 300)

	validWeather := map[string]bool{"sunny": true, "rainy": true, "cloudy": true, "stormy": true}
	validLocation := map[string]bool{"urban": true, "rural": true, "suburban": true}
	validSeason := map[string]bool{"spring": true, "summer": true, "fall": true, "winter": true}
	validLevel := map[string]bool{RiskLevelLow: true, RiskLevelMedium: true, RiskLevelHigh: true}

	for i, record := range records {
		for _, col := range NumericFeatureColumns {
			_, ok := record.Numeric[col]
			require.True(t, ok, "record %d missing numeric column %q", i, col)
		}
		assert.True(t, validWeather[record.Categorical["weather_conditions"]])
		assert.True(t, validLocation[record.Categorical["location_type"]])
		assert.True(t, validSeason[record.Categorical["time_of_year"]])
		assert.True(t, validLevel[labels[i]], "record %d has label %q", i, labels[i])

		assert.GreaterOrEqual(t, record.Numeric["symptom_density"], 0.0)
		assert.GreaterOrEqual(t, record.Numeric["turbidity"], 0.0)
		assert.GreaterOrEqual(t, record.Numeric["population_density"], 0.0)
		assert.GreaterOrEqual(t, record.Numeric["recent_outbreaks"], 0.0)
	}
}

func TestGeneratorLabelsFollowScoreRule(t *testing.T) {
	generator := NewSyntheticDataGenerator(11, 500)
	records, labels := generator.Generate()

	for i, record := range records {
		expected := LabelForScore(RiskScore(record))
		require.Equal(t, expected, labels[i], "record %d label diverges from its score", i)
	}
}

func TestGeneratorAllLevelsPresent(t *testing.T) {
	_, labels := NewSyntheticDataGenerator(DefaultSyntheticSeed, 1000).Generate()

	seen := map[string]int{}
	for _, label := range labels {
		seen[label]++
	}
	for _, level := range RiskLevels {
		assert.Greater(t, seen[level], 0, "level %q absent from corpus", level)
	}
}

func TestGeneratorDistributionCenters(t *testing.T) {
	generator := NewSyntheticDataGenerator(5, 2000)
	records, _ := generator.Generate()

	wq := make([]float64, len(records))
	ph := make([]float64, len(records))
	seasonal := make([]float64, len(records))
	for i, record := range records {
		wq[i] = record.Numeric["water_quality_score"]
		ph[i] = record.Numeric["ph_level"]
		seasonal[i] = record.Numeric["seasonal_factor"]
	}

	assert.InDelta(t, 7.5, stat.Mean(wq, nil), 0.2)
	assert.InDelta(t, 7.0, stat.Mean(ph, nil), 0.2)
	assert.InDelta(t, 0.5, stat.Mean(seasonal, nil), 0.05)
}

func TestRiskScore(t *testing.T) {
	record := NewFeatureRecord()
	record.Numeric["symptom_density"] = 2.0
	record.Numeric["water_quality_score"] = 6.0
	record.Numeric["temperature_anomaly"] = -3.0
	record.Numeric["population_density"] = 2000.0
	record.Numeric["recent_outbreaks"] = 1.0
	record.Numeric["seasonal_factor"] = 0.5

	// 0.6 + 0.4 + 0.3 + 0.4 + 0.1 + 0.05
	assert.InDelta(t, 1.85, RiskScore(record), 1e-9)
}

func TestRiskScoreMonotonicInSymptoms(t *testing.T) {
	record := NewFeatureRecord()
	record.Numeric["water_quality_score"] = 7.0

	previous := RiskScore(record)
	for _, density := range []float64{1, 3, 6, 12} {
		record.Numeric["symptom_density"] = density
		score := RiskScore(record)
		assert.Greater(t, score, previous)
		previous = score
	}
}

func TestLabelForScore(t *testing.T) {
	tests := []struct {
		score    float64
		expected string
	}{
		{0.0, RiskLevelLow},
		{1.99, RiskLevelLow},
		{2.0, RiskLevelMedium},
		{3.99, RiskLevelMedium},
		{4.0, RiskLevelHigh},
		{10.0, RiskLevelHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, LabelForScore(tt.score), "score %v", tt.score)
	}
}
