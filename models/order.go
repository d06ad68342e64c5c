package models

import "time"

type OrderStatus string
type PaymentStatus string

const (
	// Order statuses
	OrderStatusConfirmed   OrderStatus = "confirmed"     // Order placed and paid (or COD accepted)
	OrderStatusReadyToShip OrderStatus = "ready_to_ship" // Packed by the seller
	OrderStatusShipped     OrderStatus = "shipped"       // Out for delivery
	OrderStatusDelivered   OrderStatus = "delivered"     // Buyer received the items
	OrderStatusCancelled   OrderStatus = "cancelled"     // Cancelled before shipping

	// Payment statuses
	PaymentStatusPending  PaymentStatus = "pending" // COD: collected on delivery
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

type Order struct {
	ID            uint            `gorm:"primaryKey" json:"id"`
	OrderNumber   string          `gorm:"uniqueIndex;not null" json:"order_number"`
	CheckoutRef   string          `gorm:"uniqueIndex;not null" json:"checkout_ref"` // checkout session id, guards duplicate creation
	BuyerID       string          `gorm:"index;not null" json:"buyer_id"`
	SellerID      string          `gorm:"index;not null" json:"seller_id"`
	Address       ShippingAddress `gorm:"embedded;embeddedPrefix:address_" json:"address"`
	Items         []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount   float64         `json:"total_amount"`
	Status        OrderStatus     `gorm:"type:VARCHAR(20);default:'confirmed'" json:"status"`
	PaymentStatus PaymentStatus   `gorm:"type:VARCHAR(20);default:'pending'" json:"payment_status"`
	PaymentMethod string          `json:"payment_method"` // "cod", "ewallet", "card"
	GatewayRef    string          `json:"gateway_ref,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is a frozen copy of a cart line. Later catalog edits must not
// alter order history, so nothing here references Product by pointer.
type OrderItem struct {
	ID           uint    `gorm:"primaryKey" json:"id"`
	OrderID      uint    `gorm:"index" json:"order_id"`
	ProductID    uint    `json:"product_id"`
	ProductName  string  `json:"product_name"`
	ProductImage string  `json:"product_image"`
	UnitPrice    float64 `json:"unit_price"`
	Quantity     int     `json:"quantity"`
}

// NotificationRecord tracks receipt delivery per recipient. Append-only;
// a delivery failure never touches the order itself.
type NotificationRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	OrderID     uint      `gorm:"index;not null" json:"order_id"`
	BuyerSent   bool      `json:"buyer_sent"`
	SellerSent  bool      `json:"seller_sent"`
	BuyerError  string    `json:"buyer_error,omitempty"`
	SellerError string    `json:"seller_error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
