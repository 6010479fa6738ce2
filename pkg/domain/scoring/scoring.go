// Package scoring implements the risk scoring model: inherent and residual
// scores on a 5x5 probability/impact matrix and their classification into
// risk level bands.
package scoring

import (
	"math"

	"github.com/secmon-lab/themis/pkg/domain/types"
)

// Band boundaries. Scores range over [1,25] and the bands partition that range.
const (
	CriticalThreshold = 17
	HighThreshold     = 13
	MediumThreshold   = 7
)

// MaxScore is the highest score on the 5x5 matrix
const MaxScore = int(types.RatingMax) * int(types.RatingMax)

// Classify maps a score to its risk level band
func Classify(score int) types.RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return types.RiskLevelCritical
	case score >= HighThreshold:
		return types.RiskLevelHigh
	case score >= MediumThreshold:
		return types.RiskLevelMedium
	default:
		return types.RiskLevelLow
	}
}

// InherentScore computes the pre-control score. The impact is the maximum of
// the operational, economic and legal ratings; unset dimensions are excluded.
// ok is false when probability or every impact dimension is unset.
func InherentScore(probability, operational, economic, legal types.Rating) (score int, impact types.Rating, ok bool) {
	impact = types.MaxRating(operational, economic, legal)
	if !probability.IsSet() || !impact.IsSet() {
		return 0, impact, false
	}
	return probability.Int() * impact.Int(), impact, true
}

// ResidualScore computes the post-control score. ok is false unless both
// ratings are set.
func ResidualScore(probability, impact types.Rating) (int, bool) {
	if !probability.IsSet() || !impact.IsSet() {
		return 0, false
	}
	return probability.Int() * impact.Int(), true
}

// ReductionPercentage returns how much of the inherent score the treatment
// removed, rounded to an integer percentage. ok is false when the inherent
// score is not positive.
func ReductionPercentage(inherent, residual int) (float64, bool) {
	if inherent <= 0 {
		return 0, false
	}
	return math.Round(100 * (1 - float64(residual)/float64(inherent))), true
}
