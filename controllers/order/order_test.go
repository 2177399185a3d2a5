package orderControllers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/catalog"
	cartControllers "github.com/denookoyo/marketplace-api/controllers/cart"
	"github.com/denookoyo/marketplace-api/models"
	"github.com/denookoyo/marketplace-api/pkg/apperr"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))
	return db
}

// fakeCatalog is a fixed price list, independent of the database.
type fakeCatalog map[uint]catalog.Item

func (f fakeCatalog) Resolve(_ context.Context, ids []uint) (map[uint]catalog.Item, error) {
	out := make(map[uint]catalog.Item, len(ids))
	for _, id := range ids {
		if item, ok := f[id]; ok {
			out[id] = item
		}
	}
	return out, nil
}

var testCatalog = fakeCatalog{
	1: {ID: 1, Title: "Widget", Price: 10},
	2: {ID: 2, Title: "Gadget", Price: 5},
}

func TestCheckoutGuestOrder(t *testing.T) {
	db := openTestDB(t)

	order, err := Checkout(context.Background(), db, testCatalog, models.Guest("guest-1"), CheckoutRequest{
		Items: []CheckoutItemInput{
			{ProductID: 1, Quantity: 2},
			{ProductID: 2, Quantity: 1},
		},
		CustomerName:  "Ada",
		CustomerEmail: "ada@example.com",
		Address:       "1 Example Way",
	})
	require.NoError(t, err)

	require.EqualValues(t, 25, order.Total)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.Nil(t, order.OwnerID)
	require.NotNil(t, order.AccessCode)
	require.Len(t, *order.AccessCode, 22)
	require.Len(t, order.Items, 2)
	require.Equal(t, "Widget", order.Items[0].Title)
	require.EqualValues(t, 10, order.Items[0].Price)
}

func TestCheckoutAuthenticatedOrder(t *testing.T) {
	db := openTestDB(t)

	order, err := Checkout(context.Background(), db, testCatalog, models.Authenticated("user-7"), CheckoutRequest{
		Items: []CheckoutItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)

	require.NotNil(t, order.OwnerID)
	require.Equal(t, "user-7", *order.OwnerID)
	require.Nil(t, order.AccessCode)
}

func TestCheckoutFreezesPrices(t *testing.T) {
	db := openTestDB(t)
	cat := catalog.NewGormLookup(db)

	p := models.Product{Title: "Widget", Price: 10}
	require.NoError(t, db.Create(&p).Error)

	order, err := Checkout(context.Background(), db, cat, models.Guest("guest-1"), CheckoutRequest{
		Items: []CheckoutItemInput{{ProductID: p.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	require.EqualValues(t, 20, order.Total)

	// A later catalogue price change never touches the placed order.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", 99).Error)

	var reloaded models.Order
	require.NoError(t, db.Preload("Items").First(&reloaded, order.ID).Error)
	require.EqualValues(t, 20, reloaded.Total)
	require.EqualValues(t, 10, reloaded.Items[0].Price)
}

func TestCheckoutUnknownProductFailsWhole(t *testing.T) {
	db := openTestDB(t)

	_, err := Checkout(context.Background(), db, testCatalog, models.Guest("guest-1"), CheckoutRequest{
		Items: []CheckoutItemInput{
			{ProductID: 1, Quantity: 1},
			{ProductID: 404, Quantity: 1},
		},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidRequest)

	// No partial order survives.
	var orders, items int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&items).Error)
	require.Zero(t, orders)
	require.Zero(t, items)
}

func TestCheckoutFromCartClearsCart(t *testing.T) {
	db := openTestDB(t)
	cat := catalog.NewGormLookup(db)

	p := models.Product{Title: "Widget", Price: 10}
	require.NoError(t, db.Create(&p).Error)

	_, err := cartControllers.AddItem(db, "guest-1", p.ID, 3, nil)
	require.NoError(t, err)

	order, err := Checkout(context.Background(), db, cat, models.Guest("guest-1"), CheckoutRequest{})
	require.NoError(t, err)
	require.EqualValues(t, 30, order.Total)
	require.Len(t, order.Items, 1)
	require.Equal(t, 3, order.Items[0].Quantity)

	cart, err := cartControllers.GetOrCreateCart(db, "guest-1")
	require.NoError(t, err)
	require.Empty(t, cart.Items)
}

func TestCheckoutEmptyCart(t *testing.T) {
	db := openTestDB(t)

	_, err := Checkout(context.Background(), db, testCatalog, models.Guest("guest-1"), CheckoutRequest{})
	require.ErrorIs(t, err, apperr.ErrInvalidRequest)
}

func TestCheckoutEmptyOwner(t *testing.T) {
	db := openTestDB(t)

	_, err := Checkout(context.Background(), db, testCatalog, models.Owner{}, CheckoutRequest{
		Items: []CheckoutItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.ErrorIs(t, err, apperr.ErrInvalidRequest)
}

func TestListOrdersNewestFirst(t *testing.T) {
	db := openTestDB(t)

	ownerID := "user-7"
	older := models.Order{OwnerID: &ownerID, Total: 10, Status: models.OrderStatusPending, CreatedAt: time.Now().Add(-2 * time.Hour)}
	newer := models.Order{OwnerID: &ownerID, Total: 20, Status: models.OrderStatusPending, CreatedAt: time.Now().Add(-1 * time.Hour)}
	require.NoError(t, db.Create(&older).Error)
	require.NoError(t, db.Create(&newer).Error)

	orders, err := ListOrders(db, ownerID)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, newer.ID, orders[0].ID)
	require.Equal(t, older.ID, orders[1].ID)
}

func TestListOrdersEmptyOwner(t *testing.T) {
	db := openTestDB(t)

	_, err := ListOrders(db, "")
	require.ErrorIs(t, err, apperr.ErrInvalidRequest)
}

func TestTrackOrderByAccessCode(t *testing.T) {
	db := openTestDB(t)

	first, err := Checkout(context.Background(), db, testCatalog, models.Guest("guest-1"), CheckoutRequest{
		Items: []CheckoutItemInput{{ProductID: 1, Quantity: 1}},
	})
	require.NoError(t, err)
	second, err := Checkout(context.Background(), db, testCatalog, models.Guest("guest-2"), CheckoutRequest{
		Items: []CheckoutItemInput{{ProductID: 2, Quantity: 1}},
	})
	require.NoError(t, err)

	// Codes are distinct and each resolves to exactly its own order.
	require.NotEqual(t, *first.AccessCode, *second.AccessCode)

	got, err := GetOrderByAccessCode(db, *first.AccessCode)
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	got, err = GetOrderByAccessCode(db, *second.AccessCode)
	require.NoError(t, err)
	require.Equal(t, second.ID, got.ID)

	_, err = GetOrderByAccessCode(db, "not-a-code")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = GetOrderByAccessCode(db, "")
	require.ErrorIs(t, err, apperr.ErrNotFound)
}
