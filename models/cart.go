package models

import "time"

type Cart struct {
	CartID    uint       `gorm:"primaryKey" json:"cart_id"`
	UserID    string     `gorm:"uniqueIndex" json:"user_id"` // one cart per user
	Items     []CartItem `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type CartItem struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CartID       uint      `gorm:"index" json:"cart_id"`
	ProductID    uint      `json:"product_id"`
	SellerID     string    `gorm:"index" json:"seller_id"`
	ProductName  string    `json:"product_name"`
	ProductImage string    `json:"product_image"`
	UnitPrice    float64   `json:"unit_price"` // price at add-time
	Quantity     int       `json:"quantity"`
	AddedAt      time.Time `json:"added_at"`
}

// CartSnapshot is the buyer's cart filtered down to one seller's lines,
// captured at checkout time. Orders are always single-seller.
type CartSnapshot struct {
	BuyerID  string     `json:"buyer_id"`
	SellerID string     `json:"seller_id"`
	Lines    []CartItem `json:"lines"`
	Subtotal float64    `json:"subtotal"`
}
