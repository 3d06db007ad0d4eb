package service

import "slem/internal/domain/entity"

const (
	MinRating = 1
	MaxRating = 5

	trustBonus   = 2
	trustPenalty = 5
	minTrust     = 0
	maxTrust     = 100
)

// ApplyRating folds one more score into the running mean.
func ApplyRating(r entity.Rating, score int) entity.Rating {
	total := r.Average*float64(r.Count) + float64(score)
	count := r.Count + 1
	return entity.Rating{
		Average: total / float64(count),
		Count:   count,
	}
}

// AdjustTrustScore nudges the score by the review outcome and clamps it to [0,100].
func AdjustTrustScore(current, score int) int {
	switch {
	case score >= 4:
		current += trustBonus
	case score <= 2:
		current -= trustPenalty
	}

	if current < minTrust {
		return minTrust
	}
	if current > maxTrust {
		return maxTrust
	}
	return current
}

// ApplyReview updates rating and trust on the profile in place.
func ApplyReview(profile *entity.SellerProfile, score int) {
	profile.Rating = ApplyRating(profile.Rating, score)
	profile.TrustScore = AdjustTrustScore(profile.TrustScore, score)
}
