package service

import (
	"errors"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrNotListingOwner  = errors.New("listing belongs to another partner")
	ErrInvalidDiscount  = errors.New("discount price must be below the original price")
	ErrInvalidStock     = errors.New("stock quantity must not be negative")
	ErrBestBeforePassed = errors.New("best-before time is in the past")
)

// ProductInput is the listing form used by create and update.
type ProductInput struct {
	CategoryID    *uint
	Name          string
	Description   string
	OriginalPrice float64
	DiscountPrice float64
	StockQuantity int
	BestBefore    time.Time
	PickupStart   string
	PickupEnd     string
	ImageURL      string
	IsActive      *bool
}

type ProductService interface {
	Create(umkmID uint, input ProductInput) (*model.Product, error)
	GetByID(id uint) (*model.Product, error)
	List(filter repository.ProductFilter) ([]model.Product, int64, error)
	ListByUmkm(umkmID uint) ([]model.Product, error)
	Update(umkmID, productID uint, input ProductInput) (*model.Product, error)
	Delete(umkmID, productID uint) error
}

type productService struct {
	productRepo repository.ProductRepository
}

func NewProductService(productRepo repository.ProductRepository) ProductService {
	return &productService{productRepo: productRepo}
}

func validateListing(input ProductInput) error {
	if input.DiscountPrice <= 0 || input.DiscountPrice >= input.OriginalPrice {
		return ErrInvalidDiscount
	}
	if input.StockQuantity < 0 {
		return ErrInvalidStock
	}
	if !input.BestBefore.After(time.Now()) {
		return ErrBestBeforePassed
	}
	return nil
}

func (s *productService) Create(umkmID uint, input ProductInput) (*model.Product, error) {
	if err := validateListing(input); err != nil {
		logger.Warn("Listing rejected", map[string]interface{}{
			"umkm_id": umkmID,
			"reason":  err.Error(),
		})
		return nil, err
	}

	product := &model.Product{
		UmkmID:        umkmID,
		CategoryID:    input.CategoryID,
		Name:          input.Name,
		Description:   input.Description,
		OriginalPrice: input.OriginalPrice,
		DiscountPrice: input.DiscountPrice,
		StockQuantity: input.StockQuantity,
		BestBefore:    input.BestBefore,
		PickupStart:   input.PickupStart,
		PickupEnd:     input.PickupEnd,
		ImageURL:      input.ImageURL,
		IsActive:      true,
	}
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}

	logger.Info("Listing created", map[string]interface{}{
		"product_id": product.ID,
		"umkm_id":    umkmID,
	})
	return product, nil
}

func (s *productService) GetByID(id uint) (*model.Product, error) {
	product, err := s.productRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

func (s *productService) List(filter repository.ProductFilter) ([]model.Product, int64, error) {
	return s.productRepo.List(filter)
}

func (s *productService) ListByUmkm(umkmID uint) ([]model.Product, error) {
	return s.productRepo.ListByUmkm(umkmID)
}

func (s *productService) Update(umkmID, productID uint, input ProductInput) (*model.Product, error) {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	if product.UmkmID != umkmID {
		logger.Warn("Listing update denied: not the owner", map[string]interface{}{
			"product_id": productID,
			"umkm_id":    umkmID,
			"owner_id":   product.UmkmID,
		})
		return nil, ErrNotListingOwner
	}

	if err := validateListing(input); err != nil {
		return nil, err
	}

	product.CategoryID = input.CategoryID
	product.Name = input.Name
	product.Description = input.Description
	product.OriginalPrice = input.OriginalPrice
	product.DiscountPrice = input.DiscountPrice
	product.StockQuantity = input.StockQuantity
	product.BestBefore = input.BestBefore
	product.PickupStart = input.PickupStart
	product.PickupEnd = input.PickupEnd
	if input.ImageURL != "" {
		product.ImageURL = input.ImageURL
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}

	if err := s.productRepo.Update(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(umkmID, productID uint) error {
	product, err := s.productRepo.FindByID(productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}
	if product.UmkmID != umkmID {
		return ErrNotListingOwner
	}

	if err := s.productRepo.Delete(productID); err != nil {
		return err
	}

	logger.Info("Listing deleted", map[string]interface{}{
		"product_id": productID,
		"umkm_id":    umkmID,
	})
	return nil
}
