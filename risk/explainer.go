package risk

import "math"

// Explanation limits fixed by the response contract.
const (
	maxContributingFactors = 5
	maxRecommendations     = 8
)

// baseRecommendations maps a risk level to its standing action list.
var baseRecommendations = map[string][]string{
	RiskLevelHigh: {
		"Issue immediate public health alert",
		"Increase monitoring frequency",
		"Implement containment measures",
		"Notify health authorities",
		"Consider temporary restrictions",
	},
	RiskLevelMedium: {
		"Increase surveillance in the area",
		"Monitor water quality closely",
		"Prepare response protocols",
		"Inform local health workers",
		"Track symptom patterns",
	},
	RiskLevelLow: {
		"Continue routine monitoring",
		"Maintain current surveillance levels",
		"Monitor for any changes",
		"Keep response teams on standby",
	},
}

// Explainer derives human-readable contributing factors and recommended
// actions from a feature record and its predicted risk level.
type Explainer struct{}

// NewExplainer creates an explainer
func NewExplainer() *Explainer {
	return &Explainer{}
}

// ContributingFactors returns the triggered factor descriptions in fixed
// priority order, at most five. Absent keys evaluate against neutral
// defaults and trigger nothing.
func (e *Explainer) ContributingFactors(record FeatureRecord) []string {
	factors := []string{}

	if record.NumericValue("symptom_density", 0) > 3 {
		factors = append(factors, "High symptom density in the area")
	}
	if record.NumericValue("water_quality_score", 7) < 6.5 {
		factors = append(factors, "Poor water quality detected")
	}
	if math.Abs(record.NumericValue("temperature_anomaly", 0)) > 5 {
		factors = append(factors, "Unusual temperature patterns")
	}
	if record.NumericValue("population_density", 0) > 1000 {
		factors = append(factors, "High population density")
	}
	if record.NumericValue("recent_outbreaks", 0) > 0 {
		factors = append(factors, "Recent outbreak history in the area")
	}
	if record.NumericValue("seasonal_factor", 0.5) > 0.7 {
		factors = append(factors, "Seasonal risk factors present")
	}

	if len(factors) > maxContributingFactors {
		factors = factors[:maxContributingFactors]
	}
	return factors
}

// Recommendations returns the action list for a risk level followed by
// feature-driven additions, at most eight. An unknown level yields only
// the feature-driven entries.
func (e *Explainer) Recommendations(riskLevel string, record FeatureRecord) []string {
	recommendations := append([]string{}, baseRecommendations[riskLevel]...)

	if record.NumericValue("water_quality_score", 7) < 6.5 {
		recommendations = append(recommendations, "Investigate and improve water quality")
	}
	if record.NumericValue("symptom_density", 0) > 2 {
		recommendations = append(recommendations, "Investigate symptom clusters")
	}

	if len(recommendations) > maxRecommendations {
		recommendations = recommendations[:maxRecommendations]
	}
	return recommendations
}
