package models

import (
	"time"

	"gorm.io/gorm"
)

type Product struct {
	ID          uint           `gorm:"primaryKey;autoIncrement" json:"id"`
	SellerID    string         `gorm:"index;not null" json:"seller_id"`
	Name        string         `gorm:"not null" json:"name"`
	Description string         `json:"description"`
	Price       float64        `gorm:"not null" json:"price"` // PHP
	Image       string         `json:"image"`
	Grade       string         `json:"grade"` // dried-fish grade from the analysis pipeline
	Stock       int            `json:"stock"`
	Status      string         `gorm:"type:VARCHAR(20);default:'available'" json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
