package repository

import (
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"gorm.io/gorm"
)

type OrderRepository interface {
	FindByID(id uint) (*model.Order, error)
	FindByUser(userID uint) ([]model.Order, error)
	FindByUmkm(umkmID uint, status string) ([]model.Order, error)
	UpdateStatus(orderID uint, status model.OrderStatus) error
	UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error
	StatsByUmkm(umkmID uint) (map[string]interface{}, error)
	ListAll(offset, limit int) ([]model.Order, int64, error)
	HasCompletedPurchase(userID, productID uint) (bool, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) FindByID(id uint) (*model.Order, error) {
	var order model.Order
	err := r.db.Preload("OrderItems").
		Preload("OrderItems.Product").
		Preload("OrderItems.Umkm").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByUser(userID uint) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.Where("user_id = ?", userID).
		Preload("OrderItems").
		Preload("OrderItems.Product").
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// FindByUmkm returns orders containing at least one item sold by the partner.
func (r *orderRepository) FindByUmkm(umkmID uint, status string) ([]model.Order, error) {
	var orders []model.Order
	query := r.db.
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.umkm_id = ?", umkmID).
		Group("orders.id")
	if status != "" {
		query = query.Where("orders.status = ?", status)
	}
	err := query.Preload("OrderItems", "umkm_id = ?", umkmID).
		Preload("OrderItems.Product").
		Preload("User").
		Order("orders.created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdateStatus(orderID uint, status model.OrderStatus) error {
	return r.db.Model(&model.Order{}).Where("id = ?", orderID).Update("status", status).Error
}

func (r *orderRepository) UpdatePaymentStatus(orderID uint, status model.PaymentStatus) error {
	return r.db.Model(&model.Order{}).Where("id = ?", orderID).Update("payment_status", status).Error
}

// StatsByUmkm aggregates the partner dashboard numbers in a handful of
// denormalized queries.
func (r *orderRepository) StatsByUmkm(umkmID uint) (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	countByStatus := func(status model.OrderStatus) (int64, error) {
		var n int64
		err := r.db.Model(&model.Order{}).
			Joins("JOIN order_items ON order_items.order_id = orders.id").
			Where("order_items.umkm_id = ? AND orders.status = ?", umkmID, status).
			Distinct("orders.id").
			Count(&n).Error
		return n, err
	}

	var totalOrders int64
	err := r.db.Model(&model.Order{}).
		Joins("JOIN order_items ON order_items.order_id = orders.id").
		Where("order_items.umkm_id = ?", umkmID).
		Distinct("orders.id").
		Count(&totalOrders).Error
	if err != nil {
		return nil, err
	}
	stats["total_orders"] = totalOrders

	for key, status := range map[string]model.OrderStatus{
		"pending_orders":   model.OrderStatusPending,
		"confirmed_orders": model.OrderStatusConfirmed,
		"ready_orders":     model.OrderStatusReady,
		"completed_orders": model.OrderStatusCompleted,
		"cancelled_orders": model.OrderStatusCancelled,
	} {
		n, err := countByStatus(status)
		if err != nil {
			return nil, err
		}
		stats[key] = n
	}

	// Revenue and rescued item count over completed orders only
	type revenueRow struct {
		Revenue float64
		Items   int64
	}
	var row revenueRow
	err = r.db.Model(&model.OrderItem{}).
		Select("COALESCE(SUM(order_items.price * order_items.quantity), 0) AS revenue, COALESCE(SUM(order_items.quantity), 0) AS items").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.umkm_id = ? AND orders.status = ?", umkmID, model.OrderStatusCompleted).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	stats["total_revenue"] = row.Revenue
	stats["items_rescued"] = row.Items

	return stats, nil
}

func (r *orderRepository) ListAll(offset, limit int) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	if err := r.db.Model(&model.Order{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.Preload("OrderItems").
		Preload("User").
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// HasCompletedPurchase reports whether the user has a completed order that
// contains the product. Reviews are gated on this.
func (r *orderRepository) HasCompletedPurchase(userID, productID uint) (bool, error) {
	var n int64
	err := r.db.Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND order_items.product_id = ? AND orders.status = ?",
			userID, productID, model.OrderStatusCompleted).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
