package orderControllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/middleware"
	"github.com/denookoyo/marketplace-api/models"
	"github.com/denookoyo/marketplace-api/pkg/apperr"
)

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// -------- Core Logic --------

// ConfirmPaymentByCode records a payment confirmation for a guest order.
func ConfirmPaymentByCode(db *gorm.DB, code string) (*models.Order, error) {
	order, err := GetOrderByAccessCode(db, code)
	if err != nil {
		return nil, err
	}
	return confirmPayment(db, order)
}

// ConfirmPaymentByOwner records a payment confirmation for an authenticated
// owner's order. Orders belonging to someone else are reported as not found.
func ConfirmPaymentByOwner(db *gorm.DB, ownerID string, orderID uint) (*models.Order, error) {
	if ownerID == "" {
		return nil, apperr.InvalidRequest("owner identity is required")
	}
	var order models.Order
	err := db.Preload("Items").Where("id = ? AND owner_id = ?", orderID, ownerID).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, apperr.Internal(err)
	}
	return confirmPayment(db, &order)
}

// confirmPayment applies pending→paid exactly once. The conditional UPDATE is
// the only writer, so two concurrent confirmations race on it and the loser
// re-reads the row: both callers observe paid. Orders already past pending on
// the paid side are a no-op success; cancelled orders cannot be paid.
func confirmPayment(db *gorm.DB, order *models.Order) (*models.Order, error) {
	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", order.ID, models.OrderStatusPending).
		Update("status", models.OrderStatusPaid)
	if result.Error != nil {
		return nil, apperr.Internal(result.Error)
	}

	if err := db.Preload("Items").First(order, order.ID).Error; err != nil {
		return nil, apperr.Internal(err)
	}

	if result.RowsAffected > 0 {
		broadcastOrderEvent("order_paid", *order)
		return order, nil
	}

	switch order.Status {
	case models.OrderStatusPaid, models.OrderStatusShipped, models.OrderStatusCompleted, models.OrderStatusRefunded:
		// Already paid at some point; confirming again changes nothing.
		return order, nil
	default:
		return nil, apperr.Conflict("order %d is %s and cannot be paid", order.ID, order.Status)
	}
}

// TransitionStatus moves an order along the fulfillment table (seller
// console): pending→cancelled, paid→shipped, paid→refunded, shipped→completed.
// The move is compare-and-set on the observed status, so a concurrent change
// surfaces as a conflict instead of a lost update.
func TransitionStatus(db *gorm.DB, orderID uint, to models.OrderStatus) (*models.Order, error) {
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperr.NotFound("order %d not found", orderID)
		}
		return nil, apperr.Internal(err)
	}

	if !models.CanTransition(order.Status, to) {
		return nil, apperr.Conflict("order %d cannot move from %s to %s", orderID, order.Status, to)
	}

	result := db.Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, order.Status).
		Update("status", to)
	if result.Error != nil {
		return nil, apperr.Internal(result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.Conflict("order %d changed status concurrently", orderID)
	}

	if err := db.Preload("Items").First(&order, orderID).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	broadcastOrderEvent("order_status_changed", order)
	return &order, nil
}

// -------- Handlers --------

// POST /orders/track/:code/pay
func PayWithCodeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		order, err := ConfirmPaymentByCode(db, c.Param("code"))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// POST /orders/:orderID/pay
func PayOrderHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, ok := middleware.CurrentOwner(c)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "owner identity is required"})
			return
		}
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		order, err := ConfirmPaymentByOwner(db, owner.Key, uint(orderID))
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}

// PUT /orders/:orderID/status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := strconv.ParseUint(c.Param("orderID"), 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
			return
		}
		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status, err := models.ParseOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		order, err := TransitionStatus(db, uint(orderID), status)
		if err != nil {
			c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, order)
	}
}
