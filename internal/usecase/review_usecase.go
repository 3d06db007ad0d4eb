package usecase

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"slem/internal/domain/entity"
	"slem/internal/domain/repository"
	"slem/internal/domain/service"
	"slem/pkg/errors"
	"slem/pkg/logger"
)

type ReviewUseCase struct {
	reviewRepo repository.ReviewRepository
	orderRepo  repository.OrderRepository
}

func NewReviewUseCase(reviewRepo repository.ReviewRepository, orderRepo repository.OrderRepository) *ReviewUseCase {
	return &ReviewUseCase{
		reviewRepo: reviewRepo,
		orderRepo:  orderRepo,
	}
}

type SubmitReviewInput struct {
	OrderID string
	Rating  int
	Comment string
}

type ReviewResult struct {
	Review  *entity.SellerReview  `json:"review"`
	Profile *entity.SellerProfile `json:"sellerProfile"`
}

// SubmitReview rates the seller of a delivered order. The review and the
// seller's rating/trust update are stored together.
func (uc *ReviewUseCase) SubmitReview(ctx context.Context, reviewerID string, input SubmitReviewInput) (*ReviewResult, error) {
	if input.Rating < service.MinRating || input.Rating > service.MaxRating {
		return nil, errors.Validation(fmt.Sprintf("Rating must be between %d and %d", service.MinRating, service.MaxRating))
	}
	comment := strings.TrimSpace(input.Comment)
	if utf8.RuneCountInString(comment) > entity.MaxReviewComment {
		return nil, errors.Validation(fmt.Sprintf("Comment cannot exceed %d characters", entity.MaxReviewComment))
	}

	order, err := uc.orderRepo.GetByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if order.BuyerID != reviewerID {
		return nil, errors.Forbidden("Only the buyer of this order can review it", nil)
	}
	if order.SellerID == reviewerID {
		return nil, errors.BadRequest("You cannot review yourself", nil)
	}
	if order.Status != entity.OrderStatusDelivered {
		return nil, errors.BadRequest("Only delivered orders can be reviewed", nil)
	}

	review := &entity.SellerReview{
		OrderID:  order.ID,
		SellerID: order.SellerID,
		BuyerID:  reviewerID,
		Rating:   input.Rating,
		Comment:  comment,
	}
	profile, err := uc.reviewRepo.Submit(ctx, review, func(profile *entity.SellerProfile) {
		service.ApplyReview(profile, input.Rating)
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Seller %s rated %d for order %s (avg %.2f over %d)", order.SellerID, input.Rating, order.ID, profile.Rating.Average, profile.Rating.Count)
	return &ReviewResult{Review: review, Profile: profile}, nil
}

func (uc *ReviewUseCase) ListSellerReviews(ctx context.Context, sellerID string, page, limit int) ([]*entity.SellerReview, int64, error) {
	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	return uc.reviewRepo.ListBySeller(ctx, sellerID, limit, offset)
}
