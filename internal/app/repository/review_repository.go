package repository

import (
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"gorm.io/gorm"
)

type ReviewRepository interface {
	Create(review *model.Review) error
	FindByUserAndProduct(userID, productID uint) (*model.Review, error)
	ListByProduct(productID uint) ([]model.Review, error)
	AverageRatingByUmkm(umkmID uint) (float64, int64, error)
	Delete(id uint) error
}

type reviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(review *model.Review) error {
	return r.db.Create(review).Error
}

func (r *reviewRepository) FindByUserAndProduct(userID, productID uint) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *reviewRepository) ListByProduct(productID uint) ([]model.Review, error) {
	var reviews []model.Review
	err := r.db.Where("product_id = ?", productID).
		Preload("User").
		Order("created_at DESC").
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

// AverageRatingByUmkm returns the mean rating and review count across every
// product the partner sells.
func (r *reviewRepository) AverageRatingByUmkm(umkmID uint) (float64, int64, error) {
	type row struct {
		Avg   float64
		Count int64
	}
	var result row
	err := r.db.Model(&model.Review{}).
		Select("COALESCE(AVG(reviews.rating), 0) AS avg, COUNT(reviews.id) AS count").
		Joins("JOIN products ON products.id = reviews.product_id").
		Where("products.umkm_id = ?", umkmID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}

func (r *reviewRepository) Delete(id uint) error {
	return r.db.Delete(&model.Review{}, id).Error
}
