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

func setupCartServiceTest(t *testing.T) (CartService, *gorm.DB, *model.User, *model.Product) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	buyer := &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(buyer).Error)

	owner := &model.User{Email: "owner@example.com", Name: "Owner", Role: model.RoleUmkmOwner}
	require.NoError(t, testDB.Create(owner).Error)
	umkm := &model.UmkmProfile{UserID: owner.ID, BusinessName: "Warung Sari", IsVerified: true}
	require.NoError(t, testDB.Create(umkm).Error)

	product := &model.Product{
		UmkmID:        umkm.ID,
		Name:          "Roti Sisa Hari Ini",
		OriginalPrice: 15000,
		DiscountPrice: 6000,
		StockQuantity: 5,
		BestBefore:    time.Now().Add(4 * time.Hour),
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)

	return NewCartService(cartRepo, productRepo), testDB, buyer, product
}

func TestCartService_AddItem(t *testing.T) {
	svc, _, buyer, product := setupCartServiceTest(t)

	item, err := svc.AddItem(buyer.ID, product.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, item.Quantity)

	// Adding the same listing again bumps the existing line.
	item, err = svc.AddItem(buyer.ID, product.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)

	cart, err := svc.GetCart(buyer.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, float64(18000), cart.TotalAmount)
	assert.Equal(t, float64(27000), cart.TotalSavings)
}

func TestCartService_AddItemValidation(t *testing.T) {
	svc, testDB, buyer, product := setupCartServiceTest(t)

	tests := []struct {
		name     string
		prepare  func()
		quantity int
		wantErr  error
	}{
		{
			name:     "Zero quantity",
			quantity: 0,
			wantErr:  ErrInvalidQuantity,
		},
		{
			name:     "Beyond stock",
			quantity: 6,
			wantErr:  ErrInsufficientStock,
		},
		{
			name: "Inactive listing",
			prepare: func() {
				require.NoError(t, testDB.Model(&model.Product{}).
					Where("id = ?", product.ID).
					Update("is_active", false).Error)
			},
			quantity: 1,
			wantErr:  ErrProductUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.prepare != nil {
				tt.prepare()
			}
			item, err := svc.AddItem(buyer.ID, product.ID, tt.quantity)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, item)
		})
	}

	_, err := svc.AddItem(buyer.ID, 9999, 1)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestCartService_UpdateAndRemove(t *testing.T) {
	svc, _, buyer, product := setupCartServiceTest(t)

	item, err := svc.AddItem(buyer.ID, product.ID, 2)
	require.NoError(t, err)

	updated, err := svc.UpdateItem(buyer.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	_, err = svc.UpdateItem(buyer.ID, item.ID, 6)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	require.NoError(t, svc.RemoveItem(buyer.ID, item.ID))
	assert.ErrorIs(t, svc.RemoveItem(buyer.ID, item.ID), ErrCartItemNotFound)
}

func TestCartService_LinesAreScopedToUser(t *testing.T) {
	svc, testDB, buyer, product := setupCartServiceTest(t)

	item, err := svc.AddItem(buyer.ID, product.ID, 1)
	require.NoError(t, err)

	other := &model.User{Email: "other@example.com", Name: "Other", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(other).Error)

	_, err = svc.UpdateItem(other.ID, item.ID, 2)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
	assert.ErrorIs(t, svc.RemoveItem(other.ID, item.ID), ErrCartItemNotFound)
}

func TestCartService_Clear(t *testing.T) {
	svc, _, buyer, product := setupCartServiceTest(t)

	_, err := svc.AddItem(buyer.ID, product.ID, 2)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(buyer.ID))

	cart, err := svc.GetCart(buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.Zero(t, cart.TotalAmount)
}
