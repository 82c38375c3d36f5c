package risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// preprocessRecords builds three records with simple known values for
// one numeric column and one varying categorical column.
func preprocessRecords() []FeatureRecord {
	records := make([]FeatureRecord, 3)
	weathers := []string{"rainy", "sunny", "rainy"}
	for i := range records {
		record := NewFeatureRecord()
		record.Numeric["symptom_density"] = float64(i + 1) // 1, 2, 3
		record.Categorical["weather_conditions"] = weathers[i]
		record.Categorical["location_type"] = "urban"
		record.Categorical["time_of_year"] = "summer"
		records[i] = record
	}
	return records
}

func TestPreprocessorFitTransform(t *testing.T) {
	records := preprocessRecords()

	p := NewPreprocessor()
	require.NoError(t, p.Fit(records))
	require.True(t, p.Fitted)

	// symptom_density values 1,2,3: mean 2, population std sqrt(2/3).
	assert.InDelta(t, 2.0, p.Means["symptom_density"], 1e-9)
	assert.InDelta(t, math.Sqrt(2.0/3.0), p.Stds["symptom_density"], 1e-9)

	encoded, err := p.Transform(records[0])
	require.NoError(t, err)
	require.Len(t, encoded, len(p.EncodedColumns))

	assert.InDelta(t, (1.0-2.0)/math.Sqrt(2.0/3.0), encoded[0], 1e-9)
}

func TestPreprocessorEncodedColumnOrder(t *testing.T) {
	records := preprocessRecords()

	p := NewPreprocessor()
	require.NoError(t, p.Fit(records))

	// Numeric schema first, then sorted dummy columns per categorical.
	require.GreaterOrEqual(t, len(p.EncodedColumns), len(NumericFeatureColumns))
	for i, col := range NumericFeatureColumns {
		assert.Equal(t, col, p.EncodedColumns[i])
	}

	expectedDummies := []string{
		"weather_conditions_rainy",
		"weather_conditions_sunny",
		"location_type_urban",
		"time_of_year_summer",
	}
	assert.Equal(t, expectedDummies, p.EncodedColumns[len(NumericFeatureColumns):])
}

func TestPreprocessorOneHot(t *testing.T) {
	records := preprocessRecords()

	p := NewPreprocessor()
	require.NoError(t, p.Fit(records))

	encoded, err := p.Transform(records[1]) // sunny
	require.NoError(t, err)

	base := len(NumericFeatureColumns)
	assert.Equal(t, 0.0, encoded[base])   // weather_conditions_rainy
	assert.Equal(t, 1.0, encoded[base+1]) // weather_conditions_sunny
	assert.Equal(t, 1.0, encoded[base+2]) // location_type_urban
	assert.Equal(t, 1.0, encoded[base+3]) // time_of_year_summer
}

func TestPreprocessorUnknownCategory(t *testing.T) {
	records := preprocessRecords()

	p := NewPreprocessor()
	require.NoError(t, p.Fit(records))

	record := NewFeatureRecord()
	record.Numeric["symptom_density"] = 2.0
	record.Categorical["weather_conditions"] = "hail" // never seen in training
	record.Categorical["location_type"] = "urban"
	record.Categorical["time_of_year"] = "summer"

	encoded, err := p.Transform(record)
	require.NoError(t, err)

	base := len(NumericFeatureColumns)
	assert.Equal(t, 0.0, encoded[base], "unknown category must encode all-zero")
	assert.Equal(t, 0.0, encoded[base+1], "unknown category must encode all-zero")
	assert.Equal(t, 1.0, encoded[base+2])
}

func TestPreprocessorMissingNumeric(t *testing.T) {
	records := preprocessRecords()

	p := NewPreprocessor()
	require.NoError(t, p.Fit(records))

	record := NewFeatureRecord() // no numeric keys at all
	encoded, err := p.Transform(record)
	require.NoError(t, err)

	// Absent value reads as raw 0 before standardization.
	assert.InDelta(t, (0.0-2.0)/math.Sqrt(2.0/3.0), encoded[0], 1e-9)
}

func TestPreprocessorConstantColumn(t *testing.T) {
	records := preprocessRecords()
	for i := range records {
		records[i].Numeric["recent_outbreaks"] = 5.0
	}

	p := NewPreprocessor()
	require.NoError(t, p.Fit(records))

	idx := -1
	for i, col := range p.EncodedColumns {
		if col == "recent_outbreaks" {
			idx = i
		}
	}
	require.GreaterOrEqual(t, idx, 0)

	encoded, err := p.Transform(records[0])
	require.NoError(t, err)

	// Zero variance column is centered only, never divided.
	assert.Equal(t, 0.0, encoded[idx])
	assert.False(t, math.IsNaN(encoded[idx]))
}

func TestPreprocessorNotFitted(t *testing.T) {
	p := NewPreprocessor()

	_, err := p.Transform(NewFeatureRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "preprocessor not fitted")
}

func TestPreprocessorEmptyFit(t *testing.T) {
	p := NewPreprocessor()
	require.Error(t, p.Fit(nil))
}
