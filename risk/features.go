package risk

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
)

// NumericFeatureColumns is the ordered numeric schema both predictors train on.
var NumericFeatureColumns = []string{
	"symptom_density",
	"water_quality_score",
	"temperature_anomaly",
	"population_density",
	"recent_outbreaks",
	"seasonal_factor",
	"ph_level",
	"turbidity",
	"tds_level",
}

// CategoricalFeatureColumns is the ordered categorical schema both predictors train on.
var CategoricalFeatureColumns = []string{
	"weather_conditions",
	"location_type",
	"time_of_year",
}

// seasonalWeights maps a calendar month to its outbreak seasonality weight.
var seasonalWeights = map[int]float64{
	1: 0.8, 2: 0.9, 3: 0.7, 4: 0.5, 5: 0.4, 6: 0.3,
	7: 0.2, 8: 0.3, 9: 0.4, 10: 0.6, 11: 0.7, 12: 0.8,
}

// FeatureRecord holds one extracted observation, numeric and categorical
// parts kept separately. Keys absent from a record are filled with neutral
// values at schema alignment, never treated as errors.
type FeatureRecord struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// NewFeatureRecord creates an empty feature record
func NewFeatureRecord() FeatureRecord {
	return FeatureRecord{
		Numeric:     make(map[string]float64),
		Categorical: make(map[string]string),
	}
}

// NumericValue returns the numeric feature for key, or fallback when absent
func (r FeatureRecord) NumericValue(key string, fallback float64) float64 {
	if v, ok := r.Numeric[key]; ok {
		return v
	}
	return fallback
}

// CategoricalValue returns the categorical feature for key, or fallback when absent
func (r FeatureRecord) CategoricalValue(key, fallback string) string {
	if v, ok := r.Categorical[key]; ok {
		return v
	}
	return fallback
}

// FeatureExtractor converts raw sensor readings and health reports into
// the fixed feature schema. Missing inputs produce defaults, not errors.
type FeatureExtractor struct {
	// Now supplies the extraction clock for seasonal features.
	Now func() time.Time
}

// NewFeatureExtractor creates a feature extractor using the wall clock
func NewFeatureExtractor() *FeatureExtractor {
	return &FeatureExtractor{Now: time.Now}
}

// Extract builds a FeatureRecord from the raw prediction inputs.
// Sensor-derived keys are only present when at least one reading exists;
// symptom, location and temporal keys are always present.
func (e *FeatureExtractor) Extract(sensorData []models.SensorData, healthReports []models.HealthReport, location *models.Location) FeatureRecord {
	record := NewFeatureRecord()

	if len(sensorData) > 0 {
		phValues := make([]float64, 0, len(sensorData))
		turbidityValues := make([]float64, 0, len(sensorData))
		temperatureValues := make([]float64, 0, len(sensorData))
		tdsValues := make([]float64, 0, len(sensorData))
		for _, reading := range sensorData {
			phValues = append(phValues, reading.PH)
			turbidityValues = append(turbidityValues, reading.Turbidity)
			temperatureValues = append(temperatureValues, reading.Temperature)
			tdsValues = append(tdsValues, reading.TDS)
		}

		meanPH := stat.Mean(phValues, nil)
		meanTurbidity := stat.Mean(turbidityValues, nil)
		meanTemperature := stat.Mean(temperatureValues, nil)
		meanTDS := stat.Mean(tdsValues, nil)

		// Composite of four sub-scores, each on a roughly 0-10 scale.
		components := []float64{
			meanPH,
			(100 - meanTurbidity) / 10,
			meanTemperature / 10,
			(1000 - meanTDS) / 100,
		}
		record.Numeric["water_quality_score"] = stat.Mean(components, nil)
		record.Numeric["temperature_anomaly"] = meanTemperature - 25.0
		record.Numeric["ph_level"] = meanPH
		record.Numeric["turbidity"] = meanTurbidity
		record.Numeric["tds_level"] = meanTDS
	}

	if len(healthReports) > 0 {
		totalSymptoms := 0
		severities := make([]float64, 0, len(healthReports))
		for _, report := range healthReports {
			totalSymptoms += len(report.Symptoms)
			severities = append(severities, report.Severity)
		}
		record.Numeric["symptom_density"] = float64(totalSymptoms) / float64(len(healthReports))
		record.Numeric["severity_score"] = clip(stat.Mean(severities, nil)/10.0, 0, 1)
	} else {
		record.Numeric["symptom_density"] = 0.0
		record.Numeric["severity_score"] = 0.0
	}

	if location != nil && math.Abs(location.Latitude) <= 90 {
		switch lat := math.Abs(location.Latitude); {
		case lat < 30:
			record.Numeric["population_density"] = 3000
			record.Categorical["location_type"] = "urban"
		case lat < 60:
			record.Numeric["population_density"] = 1100
			record.Categorical["location_type"] = "suburban"
		default:
			record.Numeric["population_density"] = 300
			record.Categorical["location_type"] = "rural"
		}
	} else {
		record.Numeric["population_density"] = 500
		record.Categorical["location_type"] = "urban"
	}

	month := int(e.Now().Month())
	record.Numeric["seasonal_factor"] = seasonalWeights[month]
	record.Categorical["time_of_year"] = seasonForMonth(month)

	// No upstream source exists for either of these yet.
	record.Numeric["recent_outbreaks"] = 0
	record.Categorical["weather_conditions"] = "sunny"

	return record
}

// seasonForMonth maps a calendar month to its season label
func seasonForMonth(month int) string {
	switch month {
	case 12, 1, 2:
		return "winter"
	case 3, 4, 5:
		return "spring"
	case 6, 7, 8:
		return "summer"
	default:
		return "fall"
	}
}

// clip bounds value to [min, max]
func clip(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
