package service

import (
	"errors"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrCartItemNotFound   = errors.New("cart item not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidQuantity    = errors.New("quantity must be positive")
)

// CartSummary is the cart as shown at checkout, with totals across listings.
type CartSummary struct {
	Items        []model.CartItem `json:"items"`
	TotalAmount  float64          `json:"total_amount"`
	TotalSavings float64          `json:"total_savings"`
}

type CartService interface {
	GetCart(userID uint) (*CartSummary, error)
	AddItem(userID, productID uint, quantity int) (*model.CartItem, error)
	UpdateItem(userID, itemID uint, quantity int) (*model.CartItem, error)
	RemoveItem(userID, itemID uint) error
	Clear(userID uint) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func (s *cartService) GetCart(userID uint) (*CartSummary, error) {
	items, err := s.cartRepo.FindByUser(userID)
	if err != nil {
		return nil, err
	}

	summary := &CartSummary{Items: items}
	for _, item := range items {
		summary.TotalAmount += item.Product.DiscountPrice * float64(item.Quantity)
		summary.TotalSavings += (item.Product.OriginalPrice - item.Product.DiscountPrice) * float64(item.Quantity)
	}
	return summary, nil
}

func (s *cartService) AddItem(userID, productID uint, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	// Existing cart line for the same listing gets its quantity bumped.
	existing, err := s.cartRepo.FindItem(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	total := quantity
	if existing != nil {
		total += existing.Quantity
	}

	if !product.IsActive || product.Expired() {
		logger.Warn("Cart add rejected: listing unavailable", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrProductUnavailable
	}
	if product.StockQuantity < total {
		logger.Warn("Cart add rejected: insufficient stock", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
			"requested":  total,
			"available":  product.StockQuantity,
		})
		return nil, ErrInsufficientStock
	}

	if existing != nil {
		existing.Quantity = total
		if err := s.cartRepo.Save(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	item := &model.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}

	logger.Debug("Cart item added", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"quantity":   quantity,
	})
	return item, nil
}

func (s *cartService) UpdateItem(userID, itemID uint, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	item, err := s.cartRepo.FindItemByID(userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartItemNotFound
		}
		return nil, err
	}

	product, err := s.productRepo.FindByID(item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.StockQuantity < quantity {
		return nil, ErrInsufficientStock
	}

	item.Quantity = quantity
	if err := s.cartRepo.Save(item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *cartService) RemoveItem(userID, itemID uint) error {
	if _, err := s.cartRepo.FindItemByID(userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCartItemNotFound
		}
		return err
	}
	return s.cartRepo.DeleteItem(userID, itemID)
}

func (s *cartService) Clear(userID uint) error {
	return s.cartRepo.Clear(userID)
}
