package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	orderControllers "github.com/nxough-jxhn/daingGraderWeb-sub002/controllers/order"
	"github.com/nxough-jxhn/daingGraderWeb-sub002/middleware"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB) {
	orders := r.Group("/orders")

	// websocket endpoint for real-time order updates
	orders.GET("/ws", orderControllers.OrderWebSocketHandler)

	protected := orders.Group("")
	protected.Use(middleware.ValidateToken)
	{
		// Buyer's own order history
		protected.GET("/", orderControllers.GetUserOrdersHandler(db))

		// Orders a seller has to fulfill
		protected.GET("/seller", middleware.RequireRole("seller"), orderControllers.GetSellerOrdersHandler(db))

		// Single order by id or order number
		protected.GET("/:orderID", orderControllers.GetOrderByIDHandler(db))

		// Seller moves an order through its fulfillment lifecycle
		protected.PATCH("/:orderID/status", middleware.RequireRole("seller"), orderControllers.UpdateOrderStatusHandler(db))

		// Buyer confirms receipt of a shipped order
		protected.PATCH("/:orderID/mark-delivered", middleware.RequireRole("user"), orderControllers.MarkOrderDeliveredHandler(db))
	}
}
