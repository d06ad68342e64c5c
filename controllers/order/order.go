package orderControllers

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nxough-jxhn/daingGraderWeb-sub002/models"
)

// ErrAmountMismatch means the settled amount and the snapshot total
// disagree. Structural, not retriable: the order is not created and the
// case is logged for investigation.
var ErrAmountMismatch = errors.New("paid amount does not match cart total")

// Materializer turns a settled payment outcome into a durable order. It is
// the only component that mutates the cart, and it does so exactly once,
// after settlement.
type Materializer struct {
	DB *gorm.DB
}

// Materialize creates the order with frozen line-item snapshots and removes
// exactly the checked-out lines from the live cart. Idempotent per checkout
// session: a second call returns the already-created order.
func (m *Materializer) Materialize(sess *models.CheckoutSession, cart *models.CartSnapshot, outcome *models.PaymentOutcome) (*models.Order, error) {
	if existing, err := m.findByCheckoutRef(sess.ID); err == nil {
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	var total float64
	items := make([]models.OrderItem, 0, len(cart.Lines))
	lineIDs := make([]uint, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		total += line.UnitPrice * float64(line.Quantity)
		items = append(items, models.OrderItem{
			ProductID:    line.ProductID,
			ProductName:  line.ProductName,
			ProductImage: line.ProductImage,
			UnitPrice:    line.UnitPrice,
			Quantity:     line.Quantity,
		})
		lineIDs = append(lineIDs, line.ID)
	}

	// For gateway-settled payments the snapshot total must equal what the
	// gateway charged; trusting either side silently would corrupt history.
	if sess.PaymentMethod != models.PaymentMethodCOD && math.Abs(total-outcome.AmountCharged) > 0.005 {
		return nil, fmt.Errorf("%w: cart %.2f vs charged %.2f", ErrAmountMismatch, total, outcome.AmountCharged)
	}

	paymentStatus := models.PaymentStatusPaid
	if sess.PaymentMethod == models.PaymentMethodCOD {
		paymentStatus = models.PaymentStatusPending
	}

	order := models.Order{
		OrderNumber:   generateOrderNumber(),
		CheckoutRef:   sess.ID,
		BuyerID:       sess.BuyerID,
		SellerID:      sess.SellerID,
		Address:       sess.Address,
		Items:         items,
		TotalAmount:   total,
		Status:        models.OrderStatusConfirmed,
		PaymentStatus: paymentStatus,
		PaymentMethod: string(sess.PaymentMethod),
		GatewayRef:    outcome.GatewayRef,
		CreatedAt:     time.Now(),
	}

	err := m.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		// Remove only the checked-out lines; other sellers' lines in the
		// same cart stay untouched.
		if len(lineIDs) > 0 {
			if err := tx.Where("id IN ?", lineIDs).Delete(&models.CartItem{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// A concurrent resumption may have won the unique checkout_ref race.
		if existing, findErr := m.findByCheckoutRef(sess.ID); findErr == nil {
			return existing, nil
		}
		return nil, err
	}

	broadcastOrderUpdate(&order)
	return &order, nil
}

func (m *Materializer) findByCheckoutRef(ref string) (*models.Order, error) {
	var order models.Order
	if err := m.DB.Preload("Items").Where("checkout_ref = ?", ref).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// generateOrderNumber builds a human-readable reference like ORD-260830-4F2A1C.
func generateOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "ORD-" + time.Now().UTC().Format("060102") + "-" + suffix
}

// -------- Handlers --------

func mapOrderStatus(status string) (models.OrderStatus, error) {
	switch strings.ToLower(status) {
	case string(models.OrderStatusConfirmed):
		return models.OrderStatusConfirmed, nil
	case string(models.OrderStatusReadyToShip):
		return models.OrderStatusReadyToShip, nil
	case string(models.OrderStatusShipped):
		return models.OrderStatusShipped, nil
	case string(models.OrderStatusDelivered):
		return models.OrderStatusDelivered, nil
	case string(models.OrderStatusCancelled):
		return models.OrderStatusCancelled, nil
	default:
		return "", errors.New("invalid order status")
	}
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func currentUserID(c *gin.Context) (string, bool) {
	idVal, exists := c.Get("user_id")
	id, _ := idVal.(string)
	if !exists || id == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return id, true
}

// GET /orders — buyer's order history
func GetUserOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var orders []models.Order
		if err := db.
			Where("buyer_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/seller — incoming orders for the seller's store
func GetSellerOrdersHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var orders []models.Order
		if err := db.
			Where("seller_id = ?", userID).
			Preload("Items").
			Order("created_at DESC").
			Find(&orders).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, orders)
	}
}

// GET /orders/:orderID — order detail plus notification delivery status,
// by numeric id or order number. Visible only to the order's buyer or
// seller; shipping addresses must not leak across accounts.
func GetOrderByIDHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		id := c.Param("orderID")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "orderID is required"})
			return
		}

		var order models.Order
		if err := db.
			Preload("Items").
			Where("(id::text = ? OR order_number = ?) AND (buyer_id = ? OR seller_id = ?)", id, id, userID, userID).
			First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		// Delivery status is advisory; "email failed to send" must not read
		// as an order failure.
		var records []models.NotificationRecord
		db.Where("order_id = ?", order.ID).Order("created_at ASC").Find(&records)

		c.JSON(http.StatusOK, gin.H{"order": order, "notifications": records})
	}
}

// statusDeductsStock reports whether moving between these statuses is the
// point where the sold quantities leave the seller's inventory. Deducted
// exactly once, on the first transition into shipped (or straight to
// delivered).
func statusDeductsStock(old, new models.OrderStatus) bool {
	shippedOut := new == models.OrderStatusShipped || new == models.OrderStatusDelivered
	notYetShipped := old == models.OrderStatusConfirmed || old == models.OrderStatusReadyToShip
	return shippedOut && notYetShipped
}

// PATCH /orders/:orderID/status — seller updates fulfillment status
func UpdateOrderStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}
		orderID := c.Param("orderID")

		var req UpdateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		newStatus, err := mapOrderStatus(req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var order models.Order
		if err := db.Preload("Items").Where("id = ? AND seller_id = ?", orderID, userID).First(&order).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}

		err = db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(&order).Update("status", newStatus).Error; err != nil {
				return err
			}
			if statusDeductsStock(order.Status, newStatus) {
				for _, item := range order.Items {
					if err := tx.Model(&models.Product{}).
						Where("id = ?", item.ProductID).
						Update("stock", gorm.Expr("GREATEST(stock - ?, 0)", item.Quantity)).Error; err != nil {
						return err
					}
				}
			}
			return nil
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}

		order.Status = newStatus
		broadcastOrderUpdate(&order)
		c.JSON(http.StatusOK, gin.H{"message": "Order status updated successfully"})
	}
}

// PATCH /orders/:orderID/mark-delivered — buyer confirms receipt. Only a
// shipped order can be confirmed, and only by its buyer.
func MarkOrderDeliveredHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			return
		}

		var order models.Order
		if err := db.Where("id = ? AND buyer_id = ?", c.Param("orderID"), userID).First(&order).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if order.Status != models.OrderStatusShipped {
			c.JSON(http.StatusBadRequest, gin.H{"error": "only shipped orders can be marked delivered"})
			return
		}

		if err := db.Model(&order).Update("status", models.OrderStatusDelivered).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update order status"})
			return
		}

		order.Status = models.OrderStatusDelivered
		broadcastOrderUpdate(&order)
		c.JSON(http.StatusOK, gin.H{"message": "Order marked as delivered"})
	}
}
