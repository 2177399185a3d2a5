package models

import "time"

type Cart struct {
	ID        uint       `gorm:"primaryKey" json:"id"`
	OwnerID   string     `gorm:"uniqueIndex" json:"owner_id"`                                // Enforces ONE cart per owner identity
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"` // Cascade delete items if cart is deleted
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CartID    uint      `gorm:"uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID uint      `gorm:"uniqueIndex:idx_cart_product" json:"product_id"` // One row per (cart, product); repeated adds merge by summing quantity
	Quantity  int       `json:"quantity"`
	Meta      string    `json:"meta,omitempty"` // Free-text annotation (size, variant)
	AddedAt   time.Time `json:"added_at"`
}
