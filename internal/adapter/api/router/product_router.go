package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
	"slem/internal/domain/entity"
)

func SetupProductRouter(e *echo.Echo, productHandler *handler.ProductHandler, authMiddleware *middleware.AuthMiddleware) {
	products := e.Group("/v1/products")
	products.GET("", productHandler.ListProducts)
	products.GET("/suggest", productHandler.SuggestTitles)

	productDetail := e.Group("/v1/products")
	productDetail.Use(OptionalAuth(authMiddleware))
	productDetail.GET("/:id", productHandler.GetProduct)

	myProducts := e.Group("/v1/my-products")
	myProducts.Use(authMiddleware.Authenticate)
	myProducts.Use(middleware.RequireRoles(entity.RoleSeller, entity.RoleAdmin))
	myProducts.GET("", productHandler.ListMyProducts)
	myProducts.POST("", productHandler.CreateProduct)
	myProducts.PATCH("/:id", productHandler.UpdateProduct)
	myProducts.DELETE("/:id", productHandler.DeleteProduct)
	myProducts.POST("/:id/images", productHandler.UploadImage)
}
