package orderControllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/catalog"
	"github.com/denookoyo/marketplace-api/middleware"
	"github.com/denookoyo/marketplace-api/models"
	"github.com/denookoyo/marketplace-api/pkg/apperr"
)

// -------- Request Structs --------

type CheckoutItemInput struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,min=1"`
}

type CheckoutRequest struct {
	// Items may be omitted; checkout then consumes the owner's cart.
	Items         []CheckoutItemInput `json:"items"`
	CustomerName  string              `json:"customer_name"`
	CustomerEmail string              `json:"customer_email"`
	Address       string              `json:"address"`
}

// -------- Core Logic --------

// Checkout turns line items (or the owner's cart) into an order. Prices come
// from the catalogue lookup, never from the caller; the total is the sum of
// resolved price × quantity and is frozen on the order from here on. The
// order, its items and — for guests — the access code land in one
// transaction, and a cart consumed by checkout is cleared in that same
// transaction.
func Checkout(ctx context.Context, db *gorm.DB, cat catalog.Lookup, owner models.Owner, req CheckoutRequest) (*models.Order, error) {
	if owner.Key == "" {
		return nil, apperr.InvalidRequest("owner identity is required")
	}

	lines := req.Items
	fromCart := false
	var cart models.Cart
	if len(lines) == 0 {
		err := db.Preload("Items").Where("owner_id = ?", owner.Key).First(&cart).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Internal(err)
		}
		if len(cart.Items) == 0 {
			return nil, apperr.InvalidRequest("cart is empty")
		}
		for _, item := range cart.Items {
			lines = append(lines, CheckoutItemInput{ProductID: item.ProductID, Quantity: item.Quantity})
		}
		fromCart = true
	}

	ids := make([]uint, 0, len(lines))
	for _, line := range lines {
		if line.Quantity < 1 {
			return nil, apperr.InvalidRequest("quantity must be at least 1 for product %d", line.ProductID)
		}
		ids = append(ids, line.ProductID)
	}

	// One batched lookup: every line is priced from the same snapshot.
	priced, err := cat.Resolve(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var total float64
	orderItems := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		item, ok := priced[line.ProductID]
		if !ok {
			return nil, apperr.InvalidRequest("product %d does not exist", line.ProductID)
		}
		total += item.Price * float64(line.Quantity)
		orderItems = append(orderItems, models.OrderItem{
			ProductID: item.ID,
			Title:     item.Title,
			Price:     item.Price,
			Quantity:  line.Quantity,
		})
	}

	order := models.Order{
		Items:         orderItems,
		Total:         total,
		Status:        models.OrderStatusPending,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		Address:       req.Address,
		CreatedAt:     time.Now(),
	}
	if !owner.IsGuest() {
		ownerID := owner.Key
		order.OwnerID = &ownerID
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if owner.IsGuest() {
			code, err := issueAccessCode(tx)
			if err != nil {
				return err
			}
			order.AccessCode = &code
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		if fromCart {
			if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	broadcastOrderEvent("order_created", order)
	return &order, nil
}

// ListOrders returns an owner's orders, newest first.
func ListOrders(db *gorm.DB, ownerID string) ([]models.Order, error) {
	if ownerID == "" {
		return nil, apperr.InvalidRequest("owner identity is required")
	}
	var orders []models.Order
	if err := db.
		Preload("Items").
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&orders).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return orders, nil
}

// GetOrderByAccessCode looks an order up by its tracking code, exact match only.
func GetOrderByAccessCode(db *gorm.DB, code string) (*models.Order, error) {
	if code == "" {
		return nil, apperr.NotFound("no order for that access code")
	}
	var order models.Order
	err := db.Preload("Items").Where("access_code = ?", code).First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("no order for that access code")
		}
		return nil, apperr.Internal(err)
	}
	return &order, nil
}

// -------- Handlers --------

// POST /checkout
func CheckoutHandler(db *gorm.DB, cat catalog.Lookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.CurrentOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner identity is required"})
			return
		}
		var req CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
			return
		}
		order, err := Checkout(c.Request.Context(), db, cat, owner, req)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, order)
	}
}

// GET /orders
func ListOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.CurrentOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner identity is required"})
			return
		}
		orders, err := ListOrders(db, owner.Key)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/track/:code
func TrackOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := GetOrderByAccessCode(db, c.Param("code"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
