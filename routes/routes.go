package routes

import (
	"net/http"

	"github.com/Madhav-Gupta-28/storefront-backend-go/handlers"
	"github.com/Madhav-Gupta-28/storefront-backend-go/metrics"
	customMiddleware "github.com/Madhav-Gupta-28/storefront-backend-go/middleware"
	"github.com/labstack/echo/v4"
)

// SetupRoutes registers every endpoint on e. tokenSecret verifies the
// access tokens for the protected and admin groups.
func SetupRoutes(e *echo.Echo, h *handlers.Handler, tokenSecret string) {
	protect := customMiddleware.Protect(tokenSecret)
	admin := customMiddleware.AdminOnly(tokenSecret)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")

	// Auth routes
	auth := api.Group("/auth")
	auth.POST("/signup", h.SignUp)
	auth.POST("/login", h.Login)
	auth.POST("/logout", h.Logout)
	auth.POST("/admin/login", h.AdminLogin)
	auth.POST("/admin/logout", h.AdminLogout)
	auth.GET("/profile", h.GetUserProfile, protect)

	// User routes
	users := api.Group("/users", protect)
	users.GET("/me", h.GetUserProfile)
	users.PUT("/me", h.UpdateUserProfile)
	users.GET("/me/addresses", h.GetUserAddresses)
	users.POST("/me/addresses", h.AddUserAddress)
	users.PUT("/me/addresses/:id", h.UpdateUserAddress)
	users.DELETE("/me/addresses/:id", h.DeleteUserAddress)

	// Product routes
	products := api.Group("/products")
	products.GET("", h.GetProducts)
	products.GET("/bestseller", h.GetBestsellers)
	products.GET("/recommended", h.GetRecommended)
	products.GET("/category/:category", h.GetProductsByCategory)
	products.GET("/:id", h.GetProduct)
	products.POST("/getsingle", h.GetSingleProduct)
	products.POST("", h.CreateProduct, admin)
	products.PUT("/:id", h.UpdateProduct, admin)
	products.DELETE("/:id", h.DeleteProduct, admin)
	products.POST("/:id/reviews", h.AddReview, protect)

	// Cart routes
	cart := api.Group("/cart", protect)
	cart.GET("", h.GetCart)
	cart.POST("/add", h.AddToCart)
	cart.PUT("/update", h.UpdateCartQuantity)
	cart.DELETE("/remove", h.RemoveFromCart)
	cart.DELETE("/clear", h.ClearCart)

	// Order routes
	orders := api.Group("/orders", protect)
	orders.POST("/cod", h.PlaceOrderCOD)
	orders.POST("/stripe", h.PlaceOrderStripe)
	orders.POST("/razorpay", h.PlaceOrderRazorpay)
	orders.POST("/verifyStripe", h.VerifyStripe)
	orders.POST("/verifyRazorpay", h.VerifyRazorpay)
	orders.POST("/cancel", h.CancelOrder)
	orders.POST("/return", h.ReturnOrder)
	orders.GET("/user", h.GetUserOrders)
	orders.GET("/:id", h.GetOrder)

	// Admin routes
	adminGroup := api.Group("/admin", admin)
	adminGroup.GET("/users", h.ListUsers)
	adminGroup.DELETE("/users/:id", h.DeleteUser)
	adminGroup.GET("/orders", h.GetAllOrders)
	adminGroup.POST("/orders/status", h.UpdateOrderStatus)
	adminGroup.GET("/analytics/stats", h.GetStats)
	adminGroup.GET("/analytics/daily", h.GetDailySales)
}
