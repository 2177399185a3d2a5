package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/auth"
)

func SetupAuthRoutes(r *gin.Engine, db *gorm.DB) {
	r.POST("/auth/guest", auth.CreateGuestSession(db))
}
