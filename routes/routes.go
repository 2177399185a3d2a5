package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/catalog"
	"github.com/denookoyo/marketplace-api/middleware"
)

// SetupRoutes is the single entry-point that wires up all route groups.
func SetupRoutes(r *gin.Engine, db *gorm.DB) {
	cat := catalog.NewGormLookup(db)

	r.Use(middleware.Identity())

	SetupAuthRoutes(r, db)
	SetupProductRoutes(r, db)
	SetupCartRoutes(r, db)
	SetupOrderRoutes(r, db, cat)
}
