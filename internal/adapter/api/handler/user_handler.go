package handler

import (
	"github.com/labstack/echo/v4"

	"slem/internal/domain/entity"
	"slem/internal/usecase"
	"slem/pkg/errors"
	"slem/pkg/response"
	"slem/pkg/utils"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	FullName    *string          `json:"fullName" validate:"omitempty,min=2,max=50"`
	PhoneNumber *string          `json:"phoneNumber" validate:"omitempty,min=6,max=20"`
	Location    *entity.Location `json:"location"`
}

type addressRequest struct {
	Label     string `json:"label" validate:"required,max=50"`
	Details   string `json:"details" validate:"required,max=300,sladdress"`
	IsDefault bool   `json:"isDefault"`
}

type updateAddressRequest struct {
	Label     string `json:"label" validate:"omitempty,max=50"`
	Details   string `json:"details" validate:"omitempty,max=300,sladdress"`
	IsDefault bool   `json:"isDefault"`
}

type verifySellerRequest struct {
	Verified *bool `json:"verified" validate:"required"`
}

func (h *UserHandler) GetCurrentUser(c echo.Context) error {
	uid, _ := caller(c)

	user, err := h.userUseCase.GetUserByID(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		Location:    req.Location,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) AddAddress(c echo.Context) error {
	var req addressRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	user, err := h.userUseCase.AddAddress(c.Request().Context(), uid, usecase.AddressInput{
		Label:     req.Label,
		Details:   req.Details,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, user.DeliveryAddresses)
}

func (h *UserHandler) UpdateAddress(c echo.Context) error {
	var req updateAddressRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, _ := caller(c)
	user, err := h.userUseCase.UpdateAddress(c.Request().Context(), uid, c.Param("addressId"), usecase.AddressInput{
		Label:     req.Label,
		Details:   req.Details,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user.DeliveryAddresses)
}

func (h *UserHandler) DeleteAddress(c echo.Context) error {
	uid, _ := caller(c)
	user, err := h.userUseCase.DeleteAddress(c.Request().Context(), uid, c.Param("addressId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user.DeliveryAddresses)
}

func (h *UserHandler) SetDefaultAddress(c echo.Context) error {
	uid, _ := caller(c)
	user, err := h.userUseCase.SetDefaultAddress(c.Request().Context(), uid, c.Param("addressId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user.DeliveryAddresses)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	role := c.QueryParam("role")
	if role != "" && role != entity.RoleBuyer && role != entity.RoleSeller && role != entity.RoleAdmin {
		return response.Error(c, errors.Validation("Invalid role filter"))
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.userUseCase.ListUsers(c.Request().Context(), role, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, users, total, params.Page, params.PageSize)
}

func (h *UserHandler) VerifySeller(c echo.Context) error {
	var req verifySellerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.SetSellerVerification(c.Request().Context(), c.Param("id"), *req.Verified)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, user)
}

func (h *UserHandler) DeleteUser(c echo.Context) error {
	uid, _ := caller(c)
	if err := h.userUseCase.DeleteUser(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{"message": "User deleted"})
}
