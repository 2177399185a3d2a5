package models

import (
	"errors"
	"strings"
	"time"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // Order placed, awaiting payment
	OrderStatusPaid      OrderStatus = "paid"      // Payment confirmed
	OrderStatusShipped   OrderStatus = "shipped"   // Out for delivery
	OrderStatusCompleted OrderStatus = "completed" // Customer received the item
	OrderStatusCancelled OrderStatus = "cancelled" // Cancelled before payment
	OrderStatusRefunded  OrderStatus = "refunded"  // Money returned to customer
)

// validNext is the full set of allowed status moves. Anything outside the
// table is rejected with a conflict and leaves the order untouched.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:   {OrderStatusPaid: true, OrderStatusCancelled: true},
	OrderStatusPaid:      {OrderStatusShipped: true, OrderStatusRefunded: true},
	OrderStatusShipped:   {OrderStatusCompleted: true},
	OrderStatusCompleted: {},
	OrderStatusCancelled: {},
	OrderStatusRefunded:  {},
}

func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// ParseOrderStatus maps a request string to a known status.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch strings.ToLower(s) {
	case string(OrderStatusPending):
		return OrderStatusPending, nil
	case string(OrderStatusPaid):
		return OrderStatusPaid, nil
	case string(OrderStatusShipped):
		return OrderStatusShipped, nil
	case string(OrderStatusCompleted):
		return OrderStatusCompleted, nil
	case string(OrderStatusCancelled):
		return OrderStatusCancelled, nil
	case string(OrderStatusRefunded):
		return OrderStatusRefunded, nil
	default:
		return "", errors.New("invalid order status")
	}
}

// Order is a snapshot of a purchase: item titles, prices and the total are
// copied from the catalogue at checkout and never recomputed afterwards.
// Only Status changes after creation, through the transition table above.
type Order struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	OwnerID       *string     `gorm:"index" json:"owner_id,omitempty"` // nil means guest order
	Items         []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	Total         float64     `json:"total"`
	Status        OrderStatus `gorm:"type:VARCHAR(20);default:'pending'" json:"status"`
	CustomerName  string      `json:"customer_name,omitempty"`
	CustomerEmail string      `json:"customer_email,omitempty"`
	Address       string      `json:"address,omitempty"`
	AccessCode    *string     `gorm:"uniqueIndex" json:"access_code,omitempty"` // set only for guest orders
	CreatedAt     time.Time   `json:"created_at"`
}

type OrderItem struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	OrderID   uint    `gorm:"index" json:"order_id"`
	ProductID uint    `json:"product_id"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"` // Copied from the catalogue at order time
	Quantity  int     `json:"quantity"`
}
