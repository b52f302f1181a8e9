package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"github.com/nimoapp/nimo-backend/pkg/util"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNotOrderOwner     = errors.New("order belongs to another user")
	ErrOrderNotCancelabe = errors.New("order can no longer be cancelled")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// Allowed partner-side status transitions. Buyers only ever cancel, and only
// while the order is still pending.
var statusTransitions = map[model.OrderStatus][]model.OrderStatus{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusReady, model.OrderStatusCancelled},
	model.OrderStatusReady:     {model.OrderStatusCompleted},
}

type OrderService interface {
	CreateFromCart(userID uint) (*model.Order, error)
	GetUserOrders(userID uint) ([]model.Order, error)
	GetOrderByID(userID, orderID uint) (*model.Order, error)
	CancelOrder(userID, orderID uint) error
	GetUmkmOrders(umkmID uint, status string) ([]model.Order, error)
	UpdateStatus(umkmID, orderID uint, status model.OrderStatus) (*model.Order, error)
	ListAll(offset, limit int) ([]model.Order, int64, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
	db          *gorm.DB
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	cartRepo repository.CartRepository,
	productRepo repository.ProductRepository,
	db *gorm.DB,
) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		cartRepo:    cartRepo,
		productRepo: productRepo,
		db:          db,
	}
}

// CreateFromCart drains the cart into an order. Each listing is locked,
// revalidated (active, unexpired, in stock) and its stock decremented inside
// one transaction.
func (s *orderService) CreateFromCart(userID uint) (*model.Order, error) {
	logger.Info("Creating order from cart", map[string]interface{}{
		"user_id": userID,
	})

	cartItems, err := s.cartRepo.FindByUser(userID)
	if err != nil {
		logger.Error("Failed to fetch cart items", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}
	if len(cartItems) == 0 {
		logger.Warn("Cannot create order: cart is empty", map[string]interface{}{
			"user_id": userID,
		})
		return nil, ErrEmptyCart
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			logger.Error("Panic during order creation, rolling back", fmt.Errorf("panic: %v", r), map[string]interface{}{
				"user_id": userID,
			})
		}
	}()

	var (
		totalAmount  float64
		totalSavings float64
		orderItems   []model.OrderItem
	)

	for _, cartItem := range cartItems {
		var product model.Product
		if err := tx.
			Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&product, cartItem.ProductID).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProductNotFound
			}
			logger.Error("Failed to fetch listing during order creation", err, map[string]interface{}{
				"user_id":    userID,
				"product_id": cartItem.ProductID,
			})
			return nil, err
		}

		if !product.IsActive || product.Expired() {
			tx.Rollback()
			logger.Warn("Order creation failed: listing unavailable", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
			})
			return nil, ErrProductUnavailable
		}
		if product.StockQuantity < cartItem.Quantity {
			tx.Rollback()
			logger.Warn("Order creation failed: insufficient stock", map[string]interface{}{
				"user_id":    userID,
				"product_id": product.ID,
				"requested":  cartItem.Quantity,
				"available":  product.StockQuantity,
			})
			return nil, ErrInsufficientStock
		}

		if err := tx.Model(&product).
			Update("stock_quantity", product.StockQuantity-cartItem.Quantity).Error; err != nil {
			tx.Rollback()
			return nil, err
		}

		lineAmount := product.DiscountPrice * float64(cartItem.Quantity)
		totalAmount += lineAmount
		totalSavings += (product.OriginalPrice - product.DiscountPrice) * float64(cartItem.Quantity)

		orderItems = append(orderItems, model.OrderItem{
			ProductID: product.ID,
			UmkmID:    product.UmkmID,
			Quantity:  cartItem.Quantity,
			Price:     product.DiscountPrice,
			ListPrice: product.OriginalPrice,
		})
	}

	pickupCode, err := util.RandomHex(4)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order := &model.Order{
		UserID:       userID,
		TotalAmount:  totalAmount,
		TotalSavings: totalSavings,
		Status:       model.OrderStatusPending,
		PickupCode:   strings.ToUpper(pickupCode),
		OrderItems:   orderItems,
	}
	if err := tx.Create(order).Error; err != nil {
		tx.Rollback()
		logger.Error("Failed to create order", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	if err := tx.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		logger.Error("Failed to commit order transaction", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, err
	}

	logger.Info("Order created", map[string]interface{}{
		"order_id":     order.ID,
		"user_id":      userID,
		"total_amount": totalAmount,
		"item_count":   len(orderItems),
	})

	return s.orderRepo.FindByID(order.ID)
}

func (s *orderService) GetUserOrders(userID uint) ([]model.Order, error) {
	return s.orderRepo.FindByUser(userID)
}

func (s *orderService) GetOrderByID(userID, orderID uint) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if order.UserID != userID {
		return nil, ErrNotOrderOwner
	}
	return order, nil
}

// CancelOrder is the buyer-side cancellation, allowed only while the order is
// pending. Stock reserved by the order goes back to the listings.
func (s *orderService) CancelOrder(userID, orderID uint) error {
	order, err := s.GetOrderByID(userID, orderID)
	if err != nil {
		return err
	}
	if order.Status != model.OrderStatusPending {
		logger.Warn("Cancellation refused: order already in progress", map[string]interface{}{
			"order_id": orderID,
			"status":   order.Status,
		})
		return ErrOrderNotCancelabe
	}

	return s.cancelTx(order)
}

func (s *orderService) cancelTx(order *model.Order) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	for _, item := range order.OrderItems {
		if err := tx.Model(&model.Product{}).
			Where("id = ?", item.ProductID).
			Update("stock_quantity", gorm.Expr("stock_quantity + ?", item.Quantity)).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	if err := tx.Model(&model.Order{}).
		Where("id = ?", order.ID).
		Update("status", model.OrderStatusCancelled).Error; err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit().Error; err != nil {
		return err
	}

	logger.Info("Order cancelled", map[string]interface{}{
		"order_id": order.ID,
	})
	return nil
}

func (s *orderService) GetUmkmOrders(umkmID uint, status string) ([]model.Order, error) {
	return s.orderRepo.FindByUmkm(umkmID, status)
}

// UpdateStatus applies a partner-side status transition on an order that
// contains the partner's items.
func (s *orderService) UpdateStatus(umkmID, orderID uint, status model.OrderStatus) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}

	owns := false
	for _, item := range order.OrderItems {
		if item.UmkmID == umkmID {
			owns = true
			break
		}
	}
	if !owns {
		return nil, ErrNotOrderOwner
	}

	if !transitionAllowed(order.Status, status) {
		logger.Warn("Status transition refused", map[string]interface{}{
			"order_id": orderID,
			"from":     order.Status,
			"to":       status,
		})
		return nil, ErrInvalidTransition
	}

	if status == model.OrderStatusCancelled {
		if err := s.cancelTx(order); err != nil {
			return nil, err
		}
	} else {
		if err := s.orderRepo.UpdateStatus(orderID, status); err != nil {
			return nil, err
		}
		if status == model.OrderStatusCompleted {
			if err := s.orderRepo.UpdatePaymentStatus(orderID, model.PaymentStatusCompleted); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("Order status updated", map[string]interface{}{
		"order_id": orderID,
		"from":     order.Status,
		"to":       status,
	})
	return s.orderRepo.FindByID(orderID)
}

func transitionAllowed(from, to model.OrderStatus) bool {
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *orderService) ListAll(offset, limit int) ([]model.Order, int64, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.orderRepo.ListAll(offset, limit)
}
