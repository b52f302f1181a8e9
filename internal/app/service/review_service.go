package service

import (
	"errors"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrReviewExists       = errors.New("review already exists for this product")
	ErrReviewNotPurchased = errors.New("product was never picked up by this user")
	ErrInvalidRating      = errors.New("rating must be between 1 and 5")
)

type ReviewService interface {
	Create(userID, productID uint, rating int, comment string) (*model.Review, error)
	ListByProduct(productID uint) ([]model.Review, error)
}

type reviewService struct {
	reviewRepo  repository.ReviewRepository
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
}

func NewReviewService(
	reviewRepo repository.ReviewRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) ReviewService {
	return &reviewService{
		reviewRepo:  reviewRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
	}
}

// Create posts a review. Only buyers who completed an order containing the
// product may review it, once.
func (s *reviewService) Create(userID, productID uint, rating int, comment string) (*model.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, ErrInvalidRating
	}

	if _, err := s.productRepo.FindByID(productID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	purchased, err := s.orderRepo.HasCompletedPurchase(userID, productID)
	if err != nil {
		return nil, err
	}
	if !purchased {
		logger.Warn("Review rejected: no completed purchase", map[string]interface{}{
			"user_id":    userID,
			"product_id": productID,
		})
		return nil, ErrReviewNotPurchased
	}

	existing, err := s.reviewRepo.FindByUserAndProduct(userID, productID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrReviewExists
	}

	review := &model.Review{
		UserID:    userID,
		ProductID: productID,
		Rating:    rating,
		Comment:   comment,
	}
	if err := s.reviewRepo.Create(review); err != nil {
		return nil, err
	}

	logger.Info("Review created", map[string]interface{}{
		"user_id":    userID,
		"product_id": productID,
		"rating":     rating,
	})
	return review, nil
}

func (s *reviewService) ListByProduct(productID uint) ([]model.Review, error) {
	return s.reviewRepo.ListByProduct(productID)
}
