package risk

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Preprocessor aligns feature records to the trained schema and encodes
// them for a classifier: z-score standardization of numeric columns
// (moments fitted on training rows only), one-hot encoding of categorical
// columns with unknown-category tolerance. Encoded-column order is fixed:
// numeric columns in schema order, then one dummy column per fitted
// category value, categories sorted within their column.
type Preprocessor struct {
	NumericColumns     []string            `json:"numeric_columns"`
	CategoricalColumns []string            `json:"categorical_columns"`
	Categories         map[string][]string `json:"categories"`
	Means              map[string]float64  `json:"means"`
	Stds               map[string]float64  `json:"stds"`
	EncodedColumns     []string            `json:"encoded_columns"`
	Fitted             bool                `json:"fitted"`
}

// NewPreprocessor creates a preprocessor over the canonical feature schema
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		NumericColumns:     append([]string(nil), NumericFeatureColumns...),
		CategoricalColumns: append([]string(nil), CategoricalFeatureColumns...),
	}
}

// Fit learns the scaling moments and category vocabularies from training
// records. Absent numeric keys count as 0, matching the alignment rule
// applied at prediction time.
func (p *Preprocessor) Fit(records []FeatureRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("empty training data")
	}

	p.Means = make(map[string]float64, len(p.NumericColumns))
	p.Stds = make(map[string]float64, len(p.NumericColumns))
	values := make([]float64, len(records))
	for _, col := range p.NumericColumns {
		for i, record := range records {
			values[i] = record.NumericValue(col, 0)
		}
		p.Means[col] = stat.Mean(values, nil)
		p.Stds[col] = stat.PopStdDev(values, nil)
	}

	p.Categories = make(map[string][]string, len(p.CategoricalColumns))
	for _, col := range p.CategoricalColumns {
		seen := make(map[string]bool)
		categories := []string{}
		for _, record := range records {
			if value, ok := record.Categorical[col]; ok && !seen[value] {
				seen[value] = true
				categories = append(categories, value)
			}
		}
		sort.Strings(categories)
		p.Categories[col] = categories
	}

	p.EncodedColumns = make([]string, 0, len(p.NumericColumns))
	p.EncodedColumns = append(p.EncodedColumns, p.NumericColumns...)
	for _, col := range p.CategoricalColumns {
		for _, category := range p.Categories[col] {
			p.EncodedColumns = append(p.EncodedColumns, col+"_"+category)
		}
	}

	p.Fitted = true
	return nil
}

// Transform encodes one record into the fixed encoded-column order.
// Absent numeric keys encode as raw 0 before standardization; unknown or
// absent categories produce an all-zero dummy block. Keys outside the
// schema are ignored.
func (p *Preprocessor) Transform(record FeatureRecord) ([]float64, error) {
	if !p.Fitted {
		return nil, fmt.Errorf("preprocessor not fitted")
	}

	encoded := make([]float64, 0, len(p.EncodedColumns))
	for _, col := range p.NumericColumns {
		value := record.NumericValue(col, 0) - p.Means[col]
		if p.Stds[col] > 0 {
			value /= p.Stds[col]
		}
		encoded = append(encoded, value)
	}

	for _, col := range p.CategoricalColumns {
		value := record.CategoricalValue(col, "")
		for _, category := range p.Categories[col] {
			if value == category {
				encoded = append(encoded, 1)
			} else {
				encoded = append(encoded, 0)
			}
		}
	}

	return encoded, nil
}

// TransformAll encodes a record set into a design matrix
func (p *Preprocessor) TransformAll(records []FeatureRecord) ([][]float64, error) {
	X := make([][]float64, len(records))
	for i, record := range records {
		encoded, err := p.Transform(record)
		if err != nil {
			return nil, err
		}
		X[i] = encoded
	}
	return X, nil
}
