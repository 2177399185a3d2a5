package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/denookoyo/marketplace-api/models"
)

func newTestServer(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.GuestUser{},
		&models.Cart{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
	))

	r := gin.New()
	SetupRoutes(r, db)
	return r, db
}

func doJSON(t *testing.T, r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGuestCheckoutFlow(t *testing.T) {
	r, db := newTestServer(t)

	widget := models.Product{Title: "Widget", Price: 10}
	gadget := models.Product{Title: "Gadget", Price: 5}
	require.NoError(t, db.Create(&widget).Error)
	require.NoError(t, db.Create(&gadget).Error)

	// Mint a guest session.
	w := doJSON(t, r, http.MethodPost, "/auth/guest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var session struct {
		GuestID string `json:"guest_id"`
		Token   string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &session))
	require.NotEmpty(t, session.Token)

	// Fill the cart; the repeated add merges.
	w = doJSON(t, r, http.MethodPost, "/cart/items", session.Token,
		gin.H{"product_id": widget.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/cart/items", session.Token,
		gin.H{"product_id": widget.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)
	w = doJSON(t, r, http.MethodPost, "/cart/items", session.Token,
		gin.H{"product_id": gadget.ID, "quantity": 1})
	require.Equal(t, http.StatusCreated, w.Code)

	// Checkout consumes the cart.
	w = doJSON(t, r, http.MethodPost, "/checkout", session.Token, gin.H{
		"customer_name":  "Ada",
		"customer_email": "ada@example.com",
		"address":        "1 Example Way",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var order struct {
		ID         uint               `json:"id"`
		Total      float64            `json:"total"`
		Status     models.OrderStatus `json:"status"`
		AccessCode string             `json:"access_code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &order))
	require.EqualValues(t, 25, order.Total)
	require.Equal(t, models.OrderStatusPending, order.Status)
	require.NotEmpty(t, order.AccessCode)

	// Cart is empty afterwards.
	w = doJSON(t, r, http.MethodGet, "/cart/", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var cart struct {
		Items []models.CartItem `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cart))
	require.Empty(t, cart.Items)

	// Track and pay via the access code.
	w = doJSON(t, r, http.MethodGet, "/orders/track/"+order.AccessCode, "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, http.MethodPost, "/orders/track/"+order.AccessCode+"/pay", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var paid struct {
		Status models.OrderStatus `json:"status"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	require.Equal(t, models.OrderStatusPaid, paid.Status)

	// Paying again is idempotent.
	w = doJSON(t, r, http.MethodPost, "/orders/track/"+order.AccessCode+"/pay", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &paid))
	require.Equal(t, models.OrderStatusPaid, paid.Status)
}

func TestTrackUnknownCode(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/orders/track/bogus", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodPost, "/orders/track/bogus/pay", "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartRequiresIdentity(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/cart/", "", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSellerStatusUpdate(t *testing.T) {
	r, db := newTestServer(t)

	order := models.Order{Total: 10, Status: models.OrderStatusPaid}
	require.NoError(t, db.Create(&order).Error)

	w := doJSON(t, r, http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID), "",
		gin.H{"status": "shipped"})
	require.Equal(t, http.StatusOK, w.Code)

	// Off-table move is rejected with 409.
	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID), "",
		gin.H{"status": "refunded"})
	require.Equal(t, http.StatusConflict, w.Code)

	w = doJSON(t, r, http.MethodPut, fmt.Sprintf("/orders/%d/status", order.ID), "",
		gin.H{"status": "delivered"})
	require.Equal(t, http.StatusBadRequest, w.Code)
}
