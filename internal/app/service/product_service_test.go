package service

import (
	"testing"
	"time"

	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupProductServiceTest(t *testing.T) (ProductService, *gorm.DB, *model.UmkmProfile) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	owner := &model.User{Email: "owner@example.com", Name: "Owner", Role: model.RoleUmkmOwner}
	require.NoError(t, testDB.Create(owner).Error)
	umkm := &model.UmkmProfile{UserID: owner.ID, BusinessName: "Warung Sari", IsVerified: true}
	require.NoError(t, testDB.Create(umkm).Error)

	return NewProductService(repository.NewProductRepository(testDB)), testDB, umkm
}

func validListing() ProductInput {
	return ProductInput{
		Name:          "Nasi Kotak Sisa Katering",
		Description:   "Masih layak, ambil sebelum jam 8 malam",
		OriginalPrice: 25000,
		DiscountPrice: 10000,
		StockQuantity: 8,
		BestBefore:    time.Now().Add(6 * time.Hour),
		PickupStart:   "17:00",
		PickupEnd:     "20:00",
	}
}

func TestProductService_Create(t *testing.T) {
	svc, _, umkm := setupProductServiceTest(t)

	product, err := svc.Create(umkm.ID, validListing())
	require.NoError(t, err)
	assert.Equal(t, umkm.ID, product.UmkmID)
	assert.True(t, product.IsActive)
	assert.NotZero(t, product.ID)
}

func TestProductService_CreateValidation(t *testing.T) {
	svc, _, umkm := setupProductServiceTest(t)

	tests := []struct {
		name    string
		mutate  func(*ProductInput)
		wantErr error
	}{
		{
			name:    "Discount above original",
			mutate:  func(in *ProductInput) { in.DiscountPrice = 30000 },
			wantErr: ErrInvalidDiscount,
		},
		{
			name:    "Discount equals original",
			mutate:  func(in *ProductInput) { in.DiscountPrice = in.OriginalPrice },
			wantErr: ErrInvalidDiscount,
		},
		{
			name:    "Negative stock",
			mutate:  func(in *ProductInput) { in.StockQuantity = -1 },
			wantErr: ErrInvalidStock,
		},
		{
			name:    "Best-before in the past",
			mutate:  func(in *ProductInput) { in.BestBefore = time.Now().Add(-time.Hour) },
			wantErr: ErrBestBeforePassed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := validListing()
			tt.mutate(&input)

			product, err := svc.Create(umkm.ID, input)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, product)
		})
	}
}

func TestProductService_UpdateOwnership(t *testing.T) {
	svc, testDB, umkm := setupProductServiceTest(t)

	product, err := svc.Create(umkm.ID, validListing())
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", Name: "Other", Role: model.RoleUmkmOwner}
	require.NoError(t, testDB.Create(other).Error)
	otherUmkm := &model.UmkmProfile{UserID: other.ID, BusinessName: "Warung Lain", IsVerified: true}
	require.NoError(t, testDB.Create(otherUmkm).Error)

	input := validListing()
	input.Name = "Nama Baru"

	_, err = svc.Update(otherUmkm.ID, product.ID, input)
	assert.ErrorIs(t, err, ErrNotListingOwner)
	assert.ErrorIs(t, svc.Delete(otherUmkm.ID, product.ID), ErrNotListingOwner)

	updated, err := svc.Update(umkm.ID, product.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "Nama Baru", updated.Name)

	require.NoError(t, svc.Delete(umkm.ID, product.ID))
	_, err = svc.GetByID(product.ID)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestProductService_ListFilters(t *testing.T) {
	svc, testDB, umkm := setupProductServiceTest(t)

	category := &model.Category{Name: "Roti & Kue", Slug: "roti-kue"}
	require.NoError(t, testDB.Create(category).Error)

	bread := validListing()
	bread.Name = "Roti Tawar Sisa"
	bread.CategoryID = &category.ID
	_, err := svc.Create(umkm.ID, bread)
	require.NoError(t, err)

	rice := validListing()
	rice.Name = "Nasi Uduk"
	_, err = svc.Create(umkm.ID, rice)
	require.NoError(t, err)

	// Category filter
	products, total, err := svc.List(repository.ProductFilter{CategoryID: &category.ID, ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Roti Tawar Sisa", products[0].Name)

	// Search filter
	products, total, err = svc.List(repository.ProductFilter{Search: "uduk", ActiveOnly: true})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, products, 1)
	assert.Equal(t, "Nasi Uduk", products[0].Name)
}
