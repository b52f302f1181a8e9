package model

import (
	"time"

	"gorm.io/gorm"
)

// Product is a surplus food listing: sold at a discount before its
// best-before time, picked up at the seller within a pickup window.
type Product struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UmkmID        uint           `gorm:"not null;index" json:"umkm_id"`
	Umkm          UmkmProfile    `gorm:"foreignKey:UmkmID" json:"umkm,omitempty"`
	CategoryID    *uint          `gorm:"index" json:"category_id,omitempty"`
	Category      *Category      `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Name          string         `gorm:"not null" json:"name"`
	Description   string         `gorm:"type:text" json:"description"`
	OriginalPrice float64        `gorm:"not null" json:"original_price"`
	DiscountPrice float64        `gorm:"not null" json:"discount_price"`
	StockQuantity int            `gorm:"default:0" json:"stock_quantity"`
	BestBefore    time.Time      `gorm:"not null;index" json:"best_before"`
	PickupStart   string         `gorm:"type:varchar(10)" json:"pickup_start"` // e.g. "17:00"
	PickupEnd     string         `gorm:"type:varchar(10)" json:"pickup_end"`   // e.g. "20:00"
	ImageURL      string         `json:"image_url"`
	IsActive      bool           `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	OrderItems []OrderItem `gorm:"foreignKey:ProductID" json:"-"`
	CartItems  []CartItem  `gorm:"foreignKey:ProductID" json:"-"`
	Reviews    []Review    `gorm:"foreignKey:ProductID" json:"-"`
}

func (Product) TableName() string {
	return "products"
}

// Expired reports whether the listing has passed its best-before time.
func (p *Product) Expired() bool {
	return time.Now().After(p.BestBefore)
}

// Purchasable reports whether the listing can be added to an order right now.
func (p *Product) Purchasable(quantity int) bool {
	return p.IsActive && !p.Expired() && p.StockQuantity >= quantity
}
