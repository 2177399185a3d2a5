// Package catalog is the read-only price source for checkout. The lookup is
// an injected capability so the price-freeze behaviour of orders can be
// exercised against a fixed catalogue in tests.
package catalog

import (
	"context"

	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/models"
)

type Item struct {
	ID    uint
	Title string
	Price float64
}

// Lookup resolves product ids to their current title and price. Checkout
// makes a single batched call per order so every line item sees prices from
// the same point in time.
type Lookup interface {
	Resolve(ctx context.Context, ids []uint) (map[uint]Item, error)
}

type gormLookup struct {
	db *gorm.DB
}

func NewGormLookup(db *gorm.DB) Lookup {
	return &gormLookup{db: db}
}

func (l *gormLookup) Resolve(ctx context.Context, ids []uint) (map[uint]Item, error) {
	out := make(map[uint]Item, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var products []models.Product
	if err := l.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	for _, p := range products {
		out[p.ID] = Item{ID: p.ID, Title: p.Title, Price: p.Price}
	}
	return out, nil
}
