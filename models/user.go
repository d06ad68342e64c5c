package models

import "time"

type Role string

const (
	RoleUser   Role = "user"   // regular buyer
	RoleSeller Role = "seller" // store owner
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      Role      `gorm:"type:VARCHAR(10);default:'user'" json:"role"`
	StoreName string    `json:"store_name,omitempty"` // sellers only
	Cart      Cart      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"cart"`
	Orders    []Order   `gorm:"foreignKey:BuyerID;constraint:OnDelete:SET NULL" json:"orders"`
	CreatedAt time.Time `json:"created_at"`
}
