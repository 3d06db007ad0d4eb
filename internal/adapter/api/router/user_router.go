package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/domain/entity"
)

func SetupUserRouter(e *echo.Echo, userHandler *handler.UserHandler, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/v1/users")
	users.Use(authMiddleware.Authenticate)

	users.GET("/me", userHandler.GetCurrentUser)
	users.PATCH("/me", userHandler.UpdateProfile)
	users.POST("/me/addresses", userHandler.AddAddress)
	users.PUT("/me/addresses/:addressId", userHandler.UpdateAddress)
	users.DELETE("/me/addresses/:addressId", userHandler.DeleteAddress)
	users.PUT("/me/addresses/:addressId/default", userHandler.SetDefaultAddress)

	admin := e.Group("/v1/admin/users")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(middleware.RequireRoles(entity.RoleAdmin))

	admin.GET("", userHandler.ListUsers)
	admin.PATCH("/:id/verification", userHandler.VerifySeller)
	admin.DELETE("/:id", userHandler.DeleteUser)
}
