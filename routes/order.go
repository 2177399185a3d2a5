package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/catalog"
	orderControllers "github.com/denookoyo/marketplace-api/controllers/order"
)

func SetupOrderRoutes(r *gin.Engine, db *gorm.DB, cat catalog.Lookup) {
	// Checkout creates the order snapshot (and clears a consumed cart)
	r.POST("/checkout", orderControllers.CheckoutHandler(db, cat))

	orders := r.Group("/orders")
	{
		// Fetch the caller's orders, newest first
		orders.GET("/", orderControllers.ListOrdersHandler(db))

		// websocket endpoint for real-time order updates (seller console)
		orders.GET("/feed", orderControllers.OrderFeedHandler)

		// Guest tracking and payment via access code
		orders.GET("/track/:code", orderControllers.TrackOrderHandler(db))
		orders.POST("/track/:code/pay", orderControllers.PayWithCodeHandler(db))

		// Payment confirmation for authenticated owners
		orders.POST("/:orderID/pay", orderControllers.PayOrderHandler(db))

		// Fulfillment updates (e.g. shipped, cancelled)
		orders.PUT("/:orderID/status", orderControllers.UpdateOrderStatusHandler(db))
	}
}
