package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	cartControllers "github.com/denookoyo/marketplace-api/controllers/cart"
)

func SetupCartRoutes(r *gin.Engine, db *gorm.DB) {
	cart := r.Group("/cart")
	{
		// Fetch (or lazily create) the caller's cart
		cart.GET("/", cartControllers.GetCartHandler(db))

		// Add a product; repeated adds merge quantities
		cart.POST("/items", cartControllers.AddItemHandler(db))

		// Remove one item from the caller's cart
		cart.DELETE("/items/:id", cartControllers.RemoveItemHandler(db))
	}
}
