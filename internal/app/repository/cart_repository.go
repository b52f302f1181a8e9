package repository

import (
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"gorm.io/gorm"
)

type CartRepository interface {
	FindByUser(userID uint) ([]model.CartItem, error)
	FindItem(userID, productID uint) (*model.CartItem, error)
	FindItemByID(userID, itemID uint) (*model.CartItem, error)
	Save(item *model.CartItem) error
	DeleteItem(userID, itemID uint) error
	Clear(userID uint) error
}

type cartRepository struct {
	db *gorm.DB
}

func NewCartRepository(db *gorm.DB) CartRepository {
	return &cartRepository{db: db}
}

func (r *cartRepository) FindByUser(userID uint) ([]model.CartItem, error) {
	var items []model.CartItem
	err := r.db.Where("user_id = ?", userID).
		Preload("Product").
		Preload("Product.Umkm").
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *cartRepository) FindItem(userID, productID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) FindItemByID(userID, itemID uint) (*model.CartItem, error) {
	var item model.CartItem
	err := r.db.Where("id = ? AND user_id = ?", itemID, userID).First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *cartRepository) Save(item *model.CartItem) error {
	return r.db.Save(item).Error
}

func (r *cartRepository) DeleteItem(userID, itemID uint) error {
	return r.db.Where("id = ? AND user_id = ?", itemID, userID).Delete(&model.CartItem{}).Error
}

func (r *cartRepository) Clear(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&model.CartItem{}).Error
}
