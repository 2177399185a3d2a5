package cartControllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/denookoyo/marketplace-api/middleware"
	"github.com/denookoyo/marketplace-api/models"
	"github.com/denookoyo/marketplace-api/pkg/apperr"
)

type AddItemInput struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,min=1"`
	Meta      *string `json:"meta"`
}

// -------- Core Logic --------

// GetOrCreateCart returns the owner's cart, creating it on first access.
// Safe to call concurrently: the unique index on owner_id makes the create
// race resolve to a single row.
func GetOrCreateCart(db *gorm.DB, ownerKey string) (*models.Cart, error) {
	if ownerKey == "" {
		return nil, apperr.InvalidRequest("owner identity is required")
	}

	var cart models.Cart
	err := db.Preload("Items").Where("owner_id = ?", ownerKey).First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal(err)
	}

	cart = models.Cart{OwnerID: ownerKey}
	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "owner_id"}},
		DoNothing: true,
	}).Create(&cart).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	// A concurrent create may have won the insert; read back either way.
	if err := db.Preload("Items").Where("owner_id = ?", ownerKey).First(&cart).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &cart, nil
}

// AddItem puts a product in the owner's cart. A repeated add for the same
// product merges into the existing row: quantity is summed with a single
// upsert so two concurrent adds never split into duplicate rows, and meta is
// replaced only when the caller supplies a new value.
func AddItem(db *gorm.DB, ownerKey string, productID uint, quantity int, meta *string) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, apperr.InvalidRequest("quantity must be at least 1")
	}

	cart, err := GetOrCreateCart(db, ownerKey)
	if err != nil {
		return nil, err
	}

	var product models.Product
	if err := db.First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.InvalidRequest("product %d does not exist", productID)
		}
		return nil, apperr.Internal(err)
	}

	assignments := map[string]interface{}{
		"quantity": gorm.Expr("quantity + ?", quantity),
		"added_at": time.Now(),
	}
	if meta != nil {
		assignments["meta"] = *meta
	}

	item := models.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		AddedAt:   time.Now(),
	}
	if meta != nil {
		item.Meta = *meta
	}

	if err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "cart_id"}, {Name: "product_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&item).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	// The merge path leaves the summed quantity in the row, not in item.
	if err := db.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&item).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return &item, nil
}

// RemoveItem deletes one item from the owner's cart. Items in another
// owner's cart are reported as not found, never deleted.
func RemoveItem(db *gorm.DB, ownerKey string, itemID uint) error {
	if ownerKey == "" {
		return apperr.InvalidRequest("owner identity is required")
	}

	var cart models.Cart
	if err := db.Where("owner_id = ?", ownerKey).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("cart item %d not found", itemID)
		}
		return apperr.Internal(err)
	}

	result := db.Where("id = ? AND cart_id = ?", itemID, cart.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		return apperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("cart item %d not found", itemID)
	}
	return nil
}

// -------- Handlers --------

// GET /cart
func GetCartHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.CurrentOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner identity is required"})
			return
		}
		cart, err := GetOrCreateCart(db, owner.Key)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, cart)
	}
}

// POST /cart/items
func AddItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.CurrentOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner identity is required"})
			return
		}
		var input AddItemInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		item, err := AddItem(db, owner.Key, input.ProductID, input.Quantity, input.Meta)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, item)
	}
}

// DELETE /cart/items/:id
func RemoveItemHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.CurrentOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner identity is required"})
			return
		}
		itemID, err := parseUintParam(c, "id")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item id"})
			return
		}
		if err := RemoveItem(db, owner.Key, itemID); err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.Status(http.StatusNoContent)
	}
}
