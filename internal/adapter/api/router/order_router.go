package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/domain/entity"
)

func SetupOrderRouter(e *echo.Echo, orderHandler *handler.OrderHandler, authMiddleware *middleware.AuthMiddleware) {
	orders := e.Group("/v1/orders")
	orders.Use(authMiddleware.Authenticate)

	orders.POST("", orderHandler.PlaceOrder)
	orders.GET("", orderHandler.ListBuyerOrders)
	orders.GET("/selling", orderHandler.ListSellerOrders, middleware.RequireRoles(entity.RoleSeller, entity.RoleAdmin))
	orders.GET("/:id", orderHandler.GetOrder)
	orders.GET("/:id/events", orderHandler.GetOrderEvents)
	orders.PATCH("/:id/status", orderHandler.UpdateStatus)

	admin := e.Group("/v1/admin/orders")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.RequireRoles(entity.RoleAdmin))
	admin.GET("", orderHandler.ListAllOrders)
}
