package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/perfectism-co/easyBuy/controllers"
	"github.com/perfectism-co/easyBuy/middleware"
	"github.com/perfectism-co/easyBuy/services"
)

// Register wires all routes. Everything under /cart and /orders requires a
// valid access token.
func Register(
	r *gin.Engine,
	tokenService *services.TokenService,
	auth *controllers.AuthController,
	cart *controllers.CartController,
	order *controllers.OrderController,
	review *controllers.ReviewController,
) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/register", auth.Register)
		authGroup.POST("/login", auth.Login)
		authGroup.POST("/refresh", auth.Refresh)
		authGroup.POST("/logout", auth.Logout)
	}

	cartGroup := r.Group("/cart", middleware.RequireAuth(tokenService))
	{
		cartGroup.GET("", cart.GetCart)
		cartGroup.POST("/items", cart.AddItems)
		cartGroup.DELETE("/items", cart.RemoveItems)
		cartGroup.PUT("/items/:product_id", cart.SetQuantity)
	}

	orderGroup := r.Group("/orders", middleware.RequireAuth(tokenService))
	{
		orderGroup.POST("", order.Create)
		orderGroup.GET("", order.List)
		orderGroup.GET("/:order_id", order.Get)
		orderGroup.PUT("/:order_id", order.Update)
		orderGroup.DELETE("/:order_id", order.Delete)

		orderGroup.POST("/:order_id/review", review.Attach)
		orderGroup.DELETE("/:order_id/review", review.Detach)
		orderGroup.GET("/:order_id/review/images/:index", review.FetchImage)
	}
}
