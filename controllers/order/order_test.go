package orderControllers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("testuser"),
		pgcontainer.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("host=%s user=testuser password=testpass dbname=testdb port=%d sslmode=disable", host, port.Int())
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.Product{},
		&models.Cart{}, &models.CartItem{},
		&models.Order{}, &models.OrderItem{},
		&models.NotificationRecord{},
	))
	return db
}

func seedProducts(t *testing.T, db *gorm.DB) {
	t.Helper()
	products := []models.Product{
		{ID: 1, SellerID: "seller-a", Name: "Daing na Bangus", Price: 250, Stock: 10},
		{ID: 2, SellerID: "seller-b", Name: "Tuyo Premium", Price: 120, Stock: 5},
	}
	require.NoError(t, db.Create(&products).Error)
}

func seedCart(t *testing.T, db *gorm.DB, buyerID string) models.Cart {
	t.Helper()

	cart := models.Cart{UserID: buyerID}
	require.NoError(t, db.Create(&cart).Error)

	items := []models.CartItem{
		{CartID: cart.CartID, ProductID: 1, SellerID: "seller-a", ProductName: "Daing na Bangus", UnitPrice: 250, Quantity: 2, AddedAt: time.Now()},
		{CartID: cart.CartID, ProductID: 2, SellerID: "seller-b", ProductName: "Tuyo Premium", UnitPrice: 120, Quantity: 1, AddedAt: time.Now()},
	}
	require.NoError(t, db.Create(&items).Error)

	require.NoError(t, db.Preload("Items").First(&cart, cart.CartID).Error)
	return cart
}

func snapshotFor(cart models.Cart, sellerID string) *models.CartSnapshot {
	snap := &models.CartSnapshot{BuyerID: cart.UserID, SellerID: sellerID}
	for _, it := range cart.Items {
		if it.SellerID == sellerID {
			snap.Lines = append(snap.Lines, it)
			snap.Subtotal += it.UnitPrice * float64(it.Quantity)
		}
	}
	return snap
}

func TestMaterializeCreatesOrderAndClearsOnlySellerLines(t *testing.T) {
	db := setupTestDB(t)
	m := &Materializer{DB: db}

	cart := seedCart(t, db, "buyer-1")
	snap := snapshotFor(cart, "seller-a")
	require.Len(t, snap.Lines, 1)
	require.Equal(t, float64(500), snap.Subtotal)

	sess := &models.CheckoutSession{
		ID:            uuid.NewString(),
		BuyerID:       "buyer-1",
		SellerID:      "seller-a",
		PaymentMethod: models.PaymentMethodCOD,
		Address:       models.ShippingAddress{FullName: "Juan dela Cruz", Phone: "09171234567", Line: "123 Rizal St", City: "Iloilo", Province: "Iloilo", PostalCode: "5000"},
	}
	outcome := &models.PaymentOutcome{Status: models.OutcomeSettled, AmountCharged: 500}

	order, err := m.Materialize(sess, snap, outcome)
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusConfirmed, order.Status)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus, "COD is collected on delivery")
	assert.Equal(t, "cod", order.PaymentMethod)
	assert.Equal(t, float64(500), order.TotalAmount)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, "Daing na Bangus", order.Items[0].ProductName)
	assert.Contains(t, order.OrderNumber, "ORD-")

	// Seller B's line survives; seller A's is gone.
	var remaining []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.CartID).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "seller-b", remaining[0].SellerID)
}

func TestMaterializeIsIdempotentPerSession(t *testing.T) {
	db := setupTestDB(t)
	m := &Materializer{DB: db}

	cart := seedCart(t, db, "buyer-1")
	snap := snapshotFor(cart, "seller-a")
	sess := &models.CheckoutSession{
		ID:            uuid.NewString(),
		BuyerID:       "buyer-1",
		SellerID:      "seller-a",
		PaymentMethod: models.PaymentMethodEWallet,
	}
	outcome := &models.PaymentOutcome{Status: models.OutcomeSettled, AmountCharged: 500, GatewayRef: "pi_123"}

	first, err := m.Materialize(sess, snap, outcome)
	require.NoError(t, err)

	// Duplicate resumption: same session, cart lines already cleared.
	second, err := m.Materialize(sess, &models.CartSnapshot{BuyerID: "buyer-1", SellerID: "seller-a"}, outcome)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.OrderNumber, second.OrderNumber)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestMaterializeAmountMismatchAbortsWithoutOrder(t *testing.T) {
	db := setupTestDB(t)
	m := &Materializer{DB: db}

	cart := seedCart(t, db, "buyer-1")
	snap := snapshotFor(cart, "seller-a")
	sess := &models.CheckoutSession{
		ID:            uuid.NewString(),
		BuyerID:       "buyer-1",
		SellerID:      "seller-a",
		PaymentMethod: models.PaymentMethodCard,
	}
	// Gateway claims a different amount than the snapshot total.
	outcome := &models.PaymentOutcome{Status: models.OutcomeSettled, AmountCharged: 450, GatewayRef: "pi_456"}

	_, err := m.Materialize(sess, snap, outcome)
	require.ErrorIs(t, err, ErrAmountMismatch)

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)

	// Cart untouched on abort.
	var remaining []models.CartItem
	require.NoError(t, db.Where("cart_id = ?", cart.CartID).Find(&remaining).Error)
	assert.Len(t, remaining, 2)
}

func placeTestOrder(t *testing.T, db *gorm.DB) *models.Order {
	t.Helper()

	cart := seedCart(t, db, "buyer-1")
	snap := snapshotFor(cart, "seller-a")
	sess := &models.CheckoutSession{
		ID:            uuid.NewString(),
		BuyerID:       "buyer-1",
		SellerID:      "seller-a",
		PaymentMethod: models.PaymentMethodCOD,
	}
	order, err := (&Materializer{DB: db}).Materialize(sess, snap, &models.PaymentOutcome{Status: models.OutcomeSettled, AmountCharged: 500})
	require.NoError(t, err)
	return order
}

// asUser stands in for the token middleware in handler tests.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) { c.Set("user_id", userID) }
}

func TestGetOrderByIDScopedToParticipants(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	order := placeTestOrder(t, db)

	cases := []struct {
		name   string
		userID string
		want   int
	}{
		{"buyer sees own order", "buyer-1", http.StatusOK},
		{"seller sees own order", "seller-a", http.StatusOK},
		{"other buyer gets not found", "buyer-2", http.StatusNotFound},
		{"other seller gets not found", "seller-b", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/orders/:orderID", asUser(tc.userID), GetOrderByIDHandler(db))

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, fmt.Sprintf("/orders/%d", order.ID), nil))

			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusNotFound {
				assert.NotContains(t, w.Body.String(), "address")
			}
		})
	}
}

func TestNonStringUserClaimRejected(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/orders/", nil)
	c.Set("user_id", 42)

	require.NotPanics(t, func() { GetUserOrdersHandler(nil)(c) })
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestShippedStatusDeductsStockOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	seedProducts(t, db)
	order := placeTestOrder(t, db)

	r := gin.New()
	r.PATCH("/orders/:orderID/status", asUser("seller-a"), UpdateOrderStatusHandler(db))

	patch := func(status string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPatch,
			fmt.Sprintf("/orders/%d/status", order.ID),
			strings.NewReader(fmt.Sprintf(`{"status":%q}`, status)))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, patch("shipped").Code)

	// The order held 2 × product 1; stock drops from 10 to 8.
	var product models.Product
	require.NoError(t, db.First(&product, "id = ?", 1).Error)
	assert.Equal(t, 8, product.Stock)

	// Moving on to delivered must not deduct a second time.
	require.Equal(t, http.StatusOK, patch("delivered").Code)
	require.NoError(t, db.First(&product, "id = ?", 1).Error)
	assert.Equal(t, 8, product.Stock)

	// The other seller's listing is untouched.
	require.NoError(t, db.First(&product, "id = ?", 2).Error)
	assert.Equal(t, 5, product.Stock)
}

func TestBuyerMarksShippedOrderDelivered(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupTestDB(t)
	order := placeTestOrder(t, db)

	mark := func(userID string) *httptest.ResponseRecorder {
		r := gin.New()
		r.PATCH("/orders/:orderID/mark-delivered", asUser(userID), MarkOrderDeliveredHandler(db))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPatch, fmt.Sprintf("/orders/%d/mark-delivered", order.ID), nil))
		return w
	}

	// Not shipped yet: the buyer cannot confirm receipt.
	assert.Equal(t, http.StatusBadRequest, mark("buyer-1").Code)

	require.NoError(t, db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", models.OrderStatusShipped).Error)

	// Someone else's order stays out of reach.
	assert.Equal(t, http.StatusNotFound, mark("buyer-2").Code)

	assert.Equal(t, http.StatusOK, mark("buyer-1").Code)

	var updated models.Order
	require.NoError(t, db.First(&updated, "id = ?", order.ID).Error)
	assert.Equal(t, models.OrderStatusDelivered, updated.Status)
}
