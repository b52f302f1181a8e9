package db

import (
	"errors"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/pkg/logger"
	"gorm.io/gorm"
)

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	models := []interface{}{
		&model.User{},
		&model.UmkmProfile{},
		&model.ProviderSession{},
		&model.Category{},
		&model.Product{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.Review{},
	}

	if err := DB.AutoMigrate(models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	if err := seedCategories(DB); err != nil {
		logger.Error("Failed to seed initial categories", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(models),
	})
	return nil
}

// seedCategories inserts the default category set on first boot.
func seedCategories(db *gorm.DB) error {
	defaults := []model.Category{
		{Name: "Makanan Siap Saji", Slug: "makanan-siap-saji"},
		{Name: "Roti & Kue", Slug: "roti-kue"},
		{Name: "Buah & Sayur", Slug: "buah-sayur"},
		{Name: "Minuman", Slug: "minuman"},
		{Name: "Bahan Masakan", Slug: "bahan-masakan"},
	}

	for _, cat := range defaults {
		var existing model.Category
		err := db.Where("slug = ?", cat.Slug).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&cat).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
