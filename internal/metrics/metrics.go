// Package metrics scores binary classifier output: accuracy over predicted
// labels and ROC/AUC over decision scores.
package metrics

import (
	"fmt"
	"math"
	"sort"
)

// Accuracy returns the fraction of equal entries.
func Accuracy(yTrue, yPred []float64) (float64, error) {
	if len(yTrue) != len(yPred) {
		return 0, fmt.Errorf("length mismatch: %d labels, %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return 0, fmt.Errorf("no samples")
	}
	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(yTrue)), nil
}

// ROCPoint is one operating point of a ROC curve.
type ROCPoint struct {
	FPR       float64
	TPR       float64
	Threshold float64 // samples with score >= Threshold are predicted positive
}

// ROC computes the ROC curve of scores against yTrue, where samples whose
// label equals positive are the positive class. Tied scores produce a
// single point. The curve starts at (0, 0) with an infinite threshold and
// ends at (1, 1).
func ROC(scores, yTrue []float64, positive float64) ([]ROCPoint, error) {
	if len(scores) != len(yTrue) {
		return nil, fmt.Errorf("length mismatch: %d scores, %d labels", len(scores), len(yTrue))
	}

	idx := make([]int, len(scores))
	pos, neg := 0, 0
	for i := range idx {
		idx[i] = i
		if math.IsNaN(scores[i]) {
			return nil, fmt.Errorf("score %d is NaN", i)
		}
		if yTrue[i] == positive {
			pos++
		} else {
			neg++
		}
	}
	if pos == 0 || neg == 0 {
		return nil, fmt.Errorf("ROC needs both classes, got %d positive and %d negative", pos, neg)
	}
	sort.SliceStable(idx, func(a, b int) bool { return scores[idx[a]] > scores[idx[b]] })

	points := []ROCPoint{{FPR: 0, TPR: 0, Threshold: math.Inf(1)}}
	tp, fp := 0, 0
	for k, i := range idx {
		if yTrue[i] == positive {
			tp++
		} else {
			fp++
		}
		if k+1 < len(idx) && scores[idx[k+1]] == scores[i] {
			continue
		}
		points = append(points, ROCPoint{
			FPR:       float64(fp) / float64(neg),
			TPR:       float64(tp) / float64(pos),
			Threshold: scores[i],
		})
	}
	return points, nil
}

// AUC integrates a ROC curve with the trapezoid rule.
func AUC(points []ROCPoint) float64 {
	area := 0.0
	for i := 1; i < len(points); i++ {
		dx := points[i].FPR - points[i-1].FPR
		area += dx * (points[i].TPR + points[i-1].TPR) / 2
	}
	return area
}
