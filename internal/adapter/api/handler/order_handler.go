package handler

import (
	"github.com/labstack/echo/v4"

	"slem/internal/domain/entity"
	"slem/internal/usecase"
	"slem/pkg/response"
	"slem/pkg/utils"
)

type OrderHandler struct {
	orderUseCase *usecase.OrderUseCase
}

func NewOrderHandler(orderUseCase *usecase.OrderUseCase) *OrderHandler {
	return &OrderHandler{
		orderUseCase: orderUseCase,
	}
}

type orderItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type placeOrderRequest struct {
	SellerID        string             `json:"sellerId" validate:"required"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress string             `json:"deliveryAddress" validate:"omitempty,max=500,sladdress"`
	PaymentMethod   string             `json:"paymentMethod" validate:"omitempty,oneof=COD MOBILE_MONEY"`
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	var req placeOrderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	lines := make([]usecase.OrderLineInput, 0, len(req.Items))
	for _, item := range req.Items {
		lines = append(lines, usecase.OrderLineInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	uid, _ := caller(c)
	order, err := h.orderUseCase.PlaceOrder(c.Request().Context(), uid, usecase.PlaceOrderInput{
		SellerID:        req.SellerID,
		Items:           lines,
		DeliveryAddress: req.DeliveryAddress,
		PaymentMethod:   req.PaymentMethod,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, order)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	uid, role := caller(c)

	order, err := h.orderUseCase.GetOrder(c.Request().Context(), uid, role, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

func (h *OrderHandler) GetOrderEvents(c echo.Context) error {
	uid, role := caller(c)

	events, err := h.orderUseCase.ListOrderEvents(c.Request().Context(), uid, role, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, events)
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	var req updateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid, role := caller(c)
	order, err := h.orderUseCase.UpdateStatus(c.Request().Context(), uid, role, c.Param("id"), entity.OrderStatus(req.Status))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, order)
}

func (h *OrderHandler) ListBuyerOrders(c echo.Context) error {
	uid, _ := caller(c)
	return h.list(c, entity.OrderFilter{BuyerID: uid})
}

func (h *OrderHandler) ListSellerOrders(c echo.Context) error {
	uid, _ := caller(c)
	return h.list(c, entity.OrderFilter{SellerID: uid})
}

// ListAllOrders is the admin view; buyer and seller may be narrowed by query.
func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	return h.list(c, entity.OrderFilter{
		BuyerID:  c.QueryParam("buyerId"),
		SellerID: c.QueryParam("sellerId"),
	})
}

func (h *OrderHandler) list(c echo.Context, filter entity.OrderFilter) error {
	filter.Status = entity.OrderStatus(c.QueryParam("status"))
	params := utils.GetPaginationParams(c)

	orders, total, err := h.orderUseCase.ListOrders(c.Request().Context(), filter, params.Page, params.PageSize)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, orders, total, params.Page, params.PageSize)
}
