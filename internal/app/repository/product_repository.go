package repository

import (
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

// ProductFilter narrows public catalog listings.
type ProductFilter struct {
	CategoryID   *uint
	UmkmID       *uint
	Search       string
	ActiveOnly   bool
	SortByExpiry bool // soonest best-before first ("save it before it's gone")
	Offset       int
	Limit        int
}

type ProductRepository interface {
	Create(product *model.Product) error
	FindByID(id uint) (*model.Product, error)
	List(filter ProductFilter) ([]model.Product, int64, error)
	ListByUmkm(umkmID uint) ([]model.Product, error)
	Update(product *model.Product) error
	Delete(id uint) error
	DeactivateExpired(now time.Time) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(product *model.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		logger.Error("Failed to create product in database", err, map[string]interface{}{
			"umkm_id": product.UmkmID,
			"name":    product.Name,
		})
		return err
	}
	return nil
}

func (r *productRepository) FindByID(id uint) (*model.Product, error) {
	var product model.Product
	err := r.db.Preload("Umkm").Preload("Category").First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	query := r.db.Model(&model.Product{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ? AND best_before > ?", true, time.Now())
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.UmkmID != nil {
		query = query.Where("umkm_id = ?", *filter.UmkmID)
	}
	if filter.Search != "" {
		query = query.Where("name LIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	order := "created_at DESC"
	if filter.SortByExpiry {
		order = "best_before ASC"
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	err := query.Preload("Umkm").Preload("Category").
		Order(order).
		Offset(filter.Offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

func (r *productRepository) ListByUmkm(umkmID uint) ([]model.Product, error) {
	var products []model.Product
	err := r.db.Where("umkm_id = ?", umkmID).
		Preload("Category").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) Update(product *model.Product) error {
	return r.db.Save(product).Error
}

func (r *productRepository) Delete(id uint) error {
	return r.db.Delete(&model.Product{}, id).Error
}

// DeactivateExpired flags every active listing past its best-before time as
// inactive. Run periodically by the expiry sweeper.
func (r *productRepository) DeactivateExpired(now time.Time) (int64, error) {
	result := r.db.Model(&model.Product{}).
		Where("is_active = ? AND best_before < ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
