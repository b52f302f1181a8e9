package model

import (
	"time"

	"gorm.io/gorm"
)

type OrderStatus string
type PaymentStatus string

const (
	OrderStatusPending   OrderStatus = "pending"   // placed, awaiting seller confirmation
	OrderStatusConfirmed OrderStatus = "confirmed" // seller accepted
	OrderStatusReady     OrderStatus = "ready"     // packed, awaiting pickup
	OrderStatusCompleted OrderStatus = "completed" // picked up
	OrderStatusCancelled OrderStatus = "cancelled"

	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

type Order struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `gorm:"not null;index" json:"user_id"`
	TotalAmount   float64        `gorm:"not null" json:"total_amount"`
	TotalSavings  float64        `gorm:"not null" json:"total_savings"` // original minus discount, summed
	Status        OrderStatus    `gorm:"type:varchar(20);default:'pending'" json:"status"`
	PaymentStatus PaymentStatus  `gorm:"type:varchar(20);default:'pending'" json:"payment_status"`
	PickupCode    string         `gorm:"type:varchar(12)" json:"pickup_code"` // shown at the counter
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	User       User        `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderItems []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"order_items,omitempty"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	OrderID   uint           `gorm:"not null;index" json:"order_id"`
	ProductID uint           `gorm:"not null;index" json:"product_id"`
	UmkmID    uint           `gorm:"not null;index" json:"umkm_id"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	Price     float64        `gorm:"not null" json:"price"`          // discount price snapshot
	ListPrice float64        `gorm:"not null" json:"list_price"`     // original price snapshot
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Order   Order       `gorm:"foreignKey:OrderID" json:"-"`
	Product Product     `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Umkm    UmkmProfile `gorm:"foreignKey:UmkmID" json:"umkm,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
