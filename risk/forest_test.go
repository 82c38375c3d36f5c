package risk

import (
	"math"
	"reflect"
	"testing"
)

// clusterDataset returns three well separated clusters for multi-class
// forest tests.
func clusterDataset() ([][]float64, []string, []string) {
	var X [][]float64
	var y []string
	centers := []struct {
		x, y  float64
		label string
	}{
		{1.0, 1.0, "low"},
		{5.0, 5.0, "medium"},
		{9.0, 9.0, "high"},
	}
	offsets := []float64{-0.4, -0.2, 0.0, 0.2, 0.4}
	for _, center := range centers {
		for _, dx := range offsets {
			for _, dy := range offsets {
				X = append(X, []float64{center.x + dx, center.y + dy})
				y = append(y, center.label)
			}
		}
	}
	return X, y, []string{"f0", "f1"}
}

func newTestForest() *RandomForest {
	rf := NewRandomForest()
	rf.NumTrees = 15
	return rf
}

func TestRandomForestFitPredict(t *testing.T) {
	X, y, featureNames := clusterDataset()

	rf := newTestForest()
	if err := rf.Fit(X, y, featureNames); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if len(rf.Trees) != rf.NumTrees {
		t.Fatalf("got %d trees, want %d", len(rf.Trees), rf.NumTrees)
	}
	if !reflect.DeepEqual(rf.Classes(), []string{"high", "low", "medium"}) {
		t.Errorf("Classes() = %v, want sorted class set", rf.Classes())
	}

	tests := []struct {
		features []float64
		expected string
	}{
		{[]float64{1.1, 0.9}, "low"},
		{[]float64{5.1, 4.9}, "medium"},
		{[]float64{8.9, 9.1}, "high"},
	}
	for _, tt := range tests {
		predicted, err := rf.Predict(tt.features)
		if err != nil {
			t.Fatalf("Predict(%v) failed: %v", tt.features, err)
		}
		if predicted != tt.expected {
			t.Errorf("Predict(%v) = %q, want %q", tt.features, predicted, tt.expected)
		}
	}
}

func TestRandomForestPredictProba(t *testing.T) {
	X, y, featureNames := clusterDataset()

	rf := newTestForest()
	if err := rf.Fit(X, y, featureNames); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	probes := [][]float64{
		{1.0, 1.0},
		{5.0, 5.0},
		{9.0, 9.0},
		{3.0, 3.0}, // between clusters
	}
	for _, probe := range probes {
		proba, err := rf.PredictProba(probe)
		if err != nil {
			t.Fatalf("PredictProba(%v) failed: %v", probe, err)
		}

		if len(proba) != 3 {
			t.Errorf("PredictProba(%v) has %d classes, want 3", probe, len(proba))
		}
		sum := 0.0
		for class, p := range proba {
			if p < 0 || p > 1 {
				t.Errorf("probability for %q out of range: %f", class, p)
			}
			sum += p
		}
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("PredictProba(%v) sums to %f, want 1.0", probe, sum)
		}
	}
}

func TestRandomForestDeterministicSeed(t *testing.T) {
	X, y, featureNames := clusterDataset()

	first := newTestForest()
	second := newTestForest()
	if err := first.Fit(X, y, featureNames); err != nil {
		t.Fatalf("first Fit failed: %v", err)
	}
	if err := second.Fit(X, y, featureNames); err != nil {
		t.Fatalf("second Fit failed: %v", err)
	}

	probes := [][]float64{{1.0, 1.0}, {4.2, 5.8}, {9.3, 8.6}}
	for _, probe := range probes {
		p1, err := first.PredictProba(probe)
		if err != nil {
			t.Fatalf("PredictProba failed: %v", err)
		}
		p2, err := second.PredictProba(probe)
		if err != nil {
			t.Fatalf("PredictProba failed: %v", err)
		}
		if !reflect.DeepEqual(p1, p2) {
			t.Errorf("same seed produced different probabilities for %v: %v vs %v",
				probe, p1, p2)
		}
	}

	for i := range first.TreeFeatures {
		if !reflect.DeepEqual(first.TreeFeatures[i], second.TreeFeatures[i]) {
			t.Errorf("tree %d drew different feature subsets across fits", i)
		}
	}
}

func TestRandomForestFeatureSubsets(t *testing.T) {
	generator := NewSyntheticDataGenerator(3, 120)
	records, labels := generator.Generate()

	pre := NewPreprocessor()
	if err := pre.Fit(records); err != nil {
		t.Fatalf("preprocessor fit failed: %v", err)
	}
	X, err := pre.TransformAll(records)
	if err != nil {
		t.Fatalf("transform failed: %v", err)
	}

	rf := newTestForest()
	if err := rf.Fit(X, labels, pre.EncodedColumns); err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	want := int(math.Sqrt(float64(len(pre.EncodedColumns))))
	for i, indices := range rf.TreeFeatures {
		if len(indices) != want {
			t.Errorf("tree %d uses %d features, want %d", i, len(indices), want)
		}
		for _, idx := range indices {
			if idx < 0 || idx >= len(pre.EncodedColumns) {
				t.Errorf("tree %d has out-of-range feature index %d", i, idx)
			}
		}
	}
}

func TestRandomForestUntrained(t *testing.T) {
	rf := NewRandomForest()

	if _, err := rf.Predict([]float64{1, 2}); err == nil {
		t.Error("expected error when predicting with untrained forest")
	}
	if _, err := rf.PredictProba([]float64{1, 2}); err == nil {
		t.Error("expected error from PredictProba on untrained forest")
	}
}

func TestRandomForestValidation(t *testing.T) {
	rf := newTestForest()

	if err := rf.Fit(nil, nil, nil); err == nil {
		t.Error("expected error for empty training data")
	}
	if err := rf.Fit([][]float64{{1}}, []string{"a", "b"}, []string{"f0"}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
	if err := rf.Fit([][]float64{{1, 2}}, []string{"a"}, []string{"f0"}); err == nil {
		t.Error("expected error for wrong feature name count")
	}
}
