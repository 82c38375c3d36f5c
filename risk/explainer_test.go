package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContributingFactorsNeutralRecord(t *testing.T) {
	e := NewExplainer()

	factors := e.ContributingFactors(NewFeatureRecord())
	assert.Empty(t, factors)
}

func TestContributingFactorsSingleRules(t *testing.T) {
	e := NewExplainer()

	tests := []struct {
		name     string
		key      string
		value    float64
		expected string
	}{
		{"symptoms", "symptom_density", 3.5, "High symptom density in the area"},
		{"water quality", "water_quality_score", 6.0, "Poor water quality detected"},
		{"temperature high", "temperature_anomaly", 6.0, "Unusual temperature patterns"},
		{"temperature low", "temperature_anomaly", -6.0, "Unusual temperature patterns"},
		{"population", "population_density", 1500, "High population density"},
		{"outbreaks", "recent_outbreaks", 1, "Recent outbreak history in the area"},
		{"seasonal", "seasonal_factor", 0.8, "Seasonal risk factors present"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := NewFeatureRecord()
			record.Numeric[tt.key] = tt.value

			factors := e.ContributingFactors(record)
			require.Len(t, factors, 1)
			assert.Equal(t, tt.expected, factors[0])
		})
	}
}

func TestContributingFactorsBoundaryValues(t *testing.T) {
	e := NewExplainer()

	// Every value sits exactly on its rule threshold; none may fire.
	record := NewFeatureRecord()
	record.Numeric["symptom_density"] = 3.0
	record.Numeric["water_quality_score"] = 6.5
	record.Numeric["temperature_anomaly"] = 5.0
	record.Numeric["population_density"] = 1000
	record.Numeric["recent_outbreaks"] = 0
	record.Numeric["seasonal_factor"] = 0.7

	assert.Empty(t, e.ContributingFactors(record))
}

func TestContributingFactorsCapped(t *testing.T) {
	e := NewExplainer()

	record := NewFeatureRecord()
	record.Numeric["symptom_density"] = 10
	record.Numeric["water_quality_score"] = 2
	record.Numeric["temperature_anomaly"] = 8
	record.Numeric["population_density"] = 5000
	record.Numeric["recent_outbreaks"] = 3
	record.Numeric["seasonal_factor"] = 0.9

	factors := e.ContributingFactors(record)
	require.Len(t, factors, 5)

	// Priority order keeps the first five rules, seasonal drops off.
	assert.Equal(t, []string{
		"High symptom density in the area",
		"Poor water quality detected",
		"Unusual temperature patterns",
		"High population density",
		"Recent outbreak history in the area",
	}, factors)
}

func TestRecommendationsByLevel(t *testing.T) {
	e := NewExplainer()
	record := NewFeatureRecord()

	high := e.Recommendations(RiskLevelHigh, record)
	require.Len(t, high, 5)
	assert.Equal(t, "Issue immediate public health alert", high[0])
	assert.Contains(t, high, "Notify health authorities")

	medium := e.Recommendations(RiskLevelMedium, record)
	require.Len(t, medium, 5)
	assert.Equal(t, "Increase surveillance in the area", medium[0])

	low := e.Recommendations(RiskLevelLow, record)
	require.Len(t, low, 4)
	assert.Equal(t, "Continue routine monitoring", low[0])
}

func TestRecommendationsFeatureDriven(t *testing.T) {
	e := NewExplainer()

	record := NewFeatureRecord()
	record.Numeric["water_quality_score"] = 5.0
	record.Numeric["symptom_density"] = 3.0

	recommendations := e.Recommendations(RiskLevelHigh, record)
	require.Len(t, recommendations, 7)
	assert.Equal(t, "Investigate and improve water quality", recommendations[5])
	assert.Equal(t, "Investigate symptom clusters", recommendations[6])

	for _, level := range RiskLevels {
		assert.LessOrEqual(t, len(e.Recommendations(level, record)), maxRecommendations)
	}
}

func TestRecommendationsUnknownLevel(t *testing.T) {
	e := NewExplainer()

	assert.Empty(t, e.Recommendations("catastrophic", NewFeatureRecord()))

	record := NewFeatureRecord()
	record.Numeric["symptom_density"] = 5
	recommendations := e.Recommendations("catastrophic", record)
	require.Len(t, recommendations, 1)
	assert.Equal(t, "Investigate symptom clusters", recommendations[0])
}
