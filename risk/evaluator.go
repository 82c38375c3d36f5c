package risk

import (
	"fmt"

	"github.com/aquasentinel/aquasentinel-go/pkg/models"
)

// accuracyScore returns the fraction of correctly classified rows
func accuracyScore(clf Classifier, X [][]float64, y []string) (float64, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("empty evaluation data")
	}

	correct := 0
	for i, row := range X {
		predicted, err := clf.Predict(row)
		if err != nil {
			return 0, err
		}
		if predicted == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(X)), nil
}

// EvaluateClassifier scores a fitted classifier on an encoded test set:
// accuracy plus macro-averaged precision, recall and F1 over the classes
// present in the true labels.
func EvaluateClassifier(clf Classifier, X [][]float64, y []string) (*models.EvaluationMetrics, error) {
	if len(X) == 0 || len(y) == 0 {
		return nil, fmt.Errorf("empty evaluation data")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("X and y must have same number of samples")
	}

	predictions := make([]string, len(X))
	correct := 0
	for i, row := range X {
		predicted, err := clf.Predict(row)
		if err != nil {
			return nil, err
		}
		predictions[i] = predicted
		if predicted == y[i] {
			correct++
		}
	}

	classes := uniqueStrings(y)
	var precisionSum, recallSum, f1Sum float64
	for _, class := range classes {
		var truePos, falsePos, falseNeg int
		for i := range y {
			switch {
			case predictions[i] == class && y[i] == class:
				truePos++
			case predictions[i] == class && y[i] != class:
				falsePos++
			case predictions[i] != class && y[i] == class:
				falseNeg++
			}
		}

		precision := 0.0
		if truePos+falsePos > 0 {
			precision = float64(truePos) / float64(truePos+falsePos)
		}
		recall := 0.0
		if truePos+falseNeg > 0 {
			recall = float64(truePos) / float64(truePos+falseNeg)
		}
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}

		precisionSum += precision
		recallSum += recall
		f1Sum += f1
	}

	numClasses := float64(len(classes))
	return &models.EvaluationMetrics{
		Accuracy:  float64(correct) / float64(len(y)),
		Precision: precisionSum / numClasses,
		Recall:    recallSum / numClasses,
		F1Score:   f1Sum / numClasses,
	}, nil
}
