package handler

import (
	"github.com/labstack/echo/v4"

	"slem/internal/usecase"
	"slem/pkg/response"
)

type SellerProfileHandler struct {
	profileUseCase *usecase.SellerProfileUseCase
}

func NewSellerProfileHandler(profileUseCase *usecase.SellerProfileUseCase) *SellerProfileHandler {
	return &SellerProfileHandler{
		profileUseCase: profileUseCase,
	}
}

type sellerProfileRequest struct {
	StoreName   *string `json:"storeName" validate:"omitempty,min=2,max=80"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	BannerImage *string `json:"bannerImage" validate:"omitempty,url"`
}

func (r sellerProfileRequest) input() usecase.SellerProfileInput {
	return usecase.SellerProfileInput{
		StoreName:   r.StoreName,
		Description: r.Description,
		BannerImage: r.BannerImage,
	}
}

func (h *SellerProfileHandler) CreateProfile(c echo.Context) error {
	var req sellerProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	profile, err := h.profileUseCase.CreateProfile(c.Request().Context(), uid, req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, profile)
}

func (h *SellerProfileHandler) UpdateProfile(c echo.Context) error {
	var req sellerProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	profile, err := h.profileUseCase.UpdateProfile(c.Request().Context(), uid, req.input())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *SellerProfileHandler) GetMyProfile(c echo.Context) error {
	uid, _ := caller(c)

	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *SellerProfileHandler) GetProfile(c echo.Context) error {
	profile, err := h.profileUseCase.GetProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, profile)
}

func (h *SellerProfileHandler) ToggleFollow(c echo.Context) error {
	uid, _ := caller(c)

	result, err := h.profileUseCase.ToggleFollow(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}
