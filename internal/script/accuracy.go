package script

import "math"

// Accuracy buckets how close a produced word count landed to its target.
type Accuracy string

const (
	AccuracyExcellent Accuracy = "excellent" // within 5%
	AccuracyGood      Accuracy = "good"      // within 10%
	AccuracyFair      Accuracy = "fair"      // within 20%
	AccuracyPoor      Accuracy = "poor"
)

// ClassifyAccuracy buckets |actual−target|/target. Applying it twice to the
// same pair always yields the same bucket.
func ClassifyAccuracy(target, actual int) Accuracy {
	dev := math.Abs(DeviationPercent(target, actual))
	switch {
	case dev <= 5:
		return AccuracyExcellent
	case dev <= 10:
		return AccuracyGood
	case dev <= 20:
		return AccuracyFair
	default:
		return AccuracyPoor
	}
}
