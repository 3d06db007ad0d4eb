package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"slem/internal/domain/entity"
)

func TestApplyRatingIncrementalMean(t *testing.T) {
	r := entity.Rating{}
	for _, score := range []int{5, 4, 3} {
		r = ApplyRating(r, score)
	}

	assert.Equal(t, 3, r.Count)
	assert.InDelta(t, 4.0, r.Average, 1e-9)

	r = ApplyRating(r, 1)
	assert.Equal(t, 4, r.Count)
	assert.InDelta(t, 3.25, r.Average, 1e-9)
}

func TestAdjustTrustScoreClamps(t *testing.T) {
	assert.Equal(t, 52, AdjustTrustScore(50, 5))
	assert.Equal(t, 50, AdjustTrustScore(50, 3))
	assert.Equal(t, 45, AdjustTrustScore(50, 2))
	assert.Equal(t, 100, AdjustTrustScore(99, 4))
	assert.Equal(t, 0, AdjustTrustScore(3, 1))
}

func TestApplyReview(t *testing.T) {
	profile := &entity.SellerProfile{TrustScore: 50}

	ApplyReview(profile, 5)
	ApplyReview(profile, 1)

	assert.Equal(t, 2, profile.Rating.Count)
	assert.InDelta(t, 3.0, profile.Rating.Average, 1e-9)
	assert.Equal(t, 47, profile.TrustScore)
}
