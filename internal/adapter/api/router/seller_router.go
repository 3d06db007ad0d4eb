package router

import (
	"github.com/labstack/echo/v4"

	"slem/internal/adapter/api/handler"
	"slem/internal/adapter/api/middleware"
)

func SetupSellerRouter(e *echo.Echo, sellerHandler *handler.SellerProfileHandler, reviewHandler *handler.ReviewHandler, authMiddleware *middleware.AuthMiddleware) {
	sellers := e.Group("/v1/sellers")
	sellers.GET("/:id", sellerHandler.GetProfile)
	sellers.GET("/:id/reviews", reviewHandler.ListSellerReviews)

	protected := e.Group("/v1/sellers")
	protected.Use(authMiddleware.Authenticate)
	protected.POST("", sellerHandler.CreateProfile)
	protected.GET("/me", sellerHandler.GetMyProfile)
	protected.PATCH("/me", sellerHandler.UpdateProfile)
	protected.POST("/:id/follow", sellerHandler.ToggleFollow)

	reviews := e.Group("/v1/reviews")
	reviews.Use(authMiddleware.Authenticate)
	reviews.POST("", reviewHandler.SubmitReview)
}
