package routes

import (
	"github.com/baselinelab/baseline-be/config"
	"github.com/baselinelab/baseline-be/controllers"
	"github.com/baselinelab/baseline-be/middleware"
	"github.com/baselinelab/baseline-be/websocket"
	"github.com/gin-gonic/gin"
)

func SetupRoutes() *gin.Engine {
	r := gin.Default()

	// Initialize controllers
	authController := controllers.NewAuthController()
	userController := controllers.NewUserController()
	shopController := controllers.NewShopController()
	orderController := controllers.NewOrderController()
	rentalController := controllers.NewRentalController()
	boardController := controllers.NewBoardController()
	adminController := controllers.NewAdminController()

	// Public routes
	public := r.Group("/api/v1")
	{
		public.POST("/auth/login", authController.Login)
		public.POST("/auth/register", authController.Register)
		public.GET("/products", shopController.GetProducts)
		public.GET("/rackets", shopController.GetRackets)
		public.GET("/boards", boardController.GetPosts)
	}

	// Protected routes
	protected := r.Group("/api/v1")
	protected.Use(middleware.AuthMiddleware())
	{
		// Profile & points
		protected.GET("/profile", userController.GetProfile)
		protected.GET("/points", userController.GetPointsSummary)
		protected.GET("/points/history", userController.GetPointsHistory)

		// Orders
		protected.POST("/orders", orderController.CreateOrder)
		protected.GET("/orders", orderController.GetOrders)
		protected.PATCH("/orders/:id/cancel", orderController.CancelOrder)
		protected.POST("/reviews", orderController.CreateReview)

		// Rentals
		protected.POST("/rentals", rentalController.CreateRental)
		protected.GET("/rentals", rentalController.GetRentals)
		protected.PATCH("/rentals/:id/cancel", rentalController.CancelRental)

		// Boards
		protected.POST("/boards", boardController.CreatePost)
		protected.PATCH("/boards/:id", boardController.PatchPost)
	}

	// Admin only routes
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminOnly())
	{
		// User & points management
		admin.GET("/users", adminController.GetUsers)
		admin.GET("/users/:id/points", adminController.GetUserPoints)
		admin.POST("/points/grant", adminController.GrantPoints)
		admin.POST("/points/deduct", adminController.DeductPoints)

		// Order management
		admin.GET("/orders", adminController.GetOrders)
		admin.PATCH("/orders/:id/status", adminController.UpdateOrderStatus)

		// Rental management
		admin.GET("/rentals", adminController.GetRentals)
		admin.PATCH("/rentals/:id/status", adminController.UpdateRentalStatus)

		// Stringing applications
		admin.GET("/applications/pending", adminController.GetPendingApplications)

		// Catalog management
		admin.POST("/products", adminController.CreateProduct)
		admin.POST("/rackets", adminController.CreateRacket)

		// Live back-office event feed
		admin.GET("/ws", websocket.HandleWebSocket(config.WSHub))
	}

	return r
}
