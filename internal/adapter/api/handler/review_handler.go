package handler

import (
	"github.com/labstack/echo/v4"

	"slem/internal/usecase"
	"slem/pkg/response"
	"slem/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type submitReviewRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"max=500"`
}

func (h *ReviewHandler) SubmitReview(c echo.Context) error {
	var req submitReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	result, err := h.reviewUseCase.SubmitReview(c.Request().Context(), uid, usecase.SubmitReviewInput{
		OrderID: req.OrderID,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

func (h *ReviewHandler) ListSellerReviews(c echo.Context) error {
	params := utils.GetPaginationParams(c)

	reviews, total, err := h.reviewUseCase.ListSellerReviews(c.Request().Context(), c.Param("id"), params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, reviews, total, params.Page, params.PageSize)
}
