package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/denookoyo/marketplace-api/models"
)

const ownerContextKey = "owner"

// Identity resolves the caller's owner identity from a bearer token. Tokens
// carry user_id and role claims; role "guest" marks a guest session key.
// Requests without a token pass through anonymous — owner-scoped handlers
// reject those themselves.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		if raw == "" {
			c.Next()
			return
		}
		raw = strings.TrimPrefix(raw, "Bearer ")

		token, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("invalid token signing method")
			}
			return []byte(os.Getenv("JWT_SECRET")), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}

		userID, _ := claims["user_id"].(string)
		role, _ := claims["role"].(string)
		if role == "guest" {
			c.Set(ownerContextKey, models.Guest(userID))
		} else {
			c.Set(ownerContextKey, models.Authenticated(userID))
		}
		c.Next()
	}
}

// CurrentOwner returns the identity resolved by Identity, if any.
func CurrentOwner(c *gin.Context) (models.Owner, bool) {
	v, exists := c.Get(ownerContextKey)
	if !exists {
		return models.Owner{}, false
	}
	owner, ok := v.(models.Owner)
	return owner, ok && owner.Key != ""
}
