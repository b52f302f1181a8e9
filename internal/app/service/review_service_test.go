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

type reviewServiceFixture struct {
	svc     ReviewService
	db      *gorm.DB
	buyer   *model.User
	product *model.Product
}

func setupReviewServiceTest(t *testing.T) *reviewServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	buyer := &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(buyer).Error)

	owner := &model.User{Email: "owner@example.com", Name: "Owner", Role: model.RoleUmkmOwner}
	require.NoError(t, testDB.Create(owner).Error)
	umkm := &model.UmkmProfile{UserID: owner.ID, BusinessName: "Warung Sari", IsVerified: true}
	require.NoError(t, testDB.Create(umkm).Error)

	product := &model.Product{
		UmkmID:        umkm.ID,
		Name:          "Gorengan Sore",
		OriginalPrice: 10000,
		DiscountPrice: 4000,
		StockQuantity: 5,
		BestBefore:    time.Now().Add(3 * time.Hour),
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)

	svc := NewReviewService(
		repository.NewReviewRepository(testDB),
		repository.NewOrderRepository(testDB),
		repository.NewProductRepository(testDB),
	)

	return &reviewServiceFixture{svc: svc, db: testDB, buyer: buyer, product: product}
}

func (f *reviewServiceFixture) completeOrder(t *testing.T) {
	t.Helper()
	order := &model.Order{
		UserID:      f.buyer.ID,
		TotalAmount: 4000,
		Status:      model.OrderStatusCompleted,
		OrderItems: []model.OrderItem{
			{
				ProductID: f.product.ID,
				UmkmID:    f.product.UmkmID,
				Quantity:  1,
				Price:     4000,
				ListPrice: 10000,
			},
		},
	}
	require.NoError(t, f.db.Create(order).Error)
}

func TestReviewService_RequiresCompletedPurchase(t *testing.T) {
	f := setupReviewServiceTest(t)

	review, err := f.svc.Create(f.buyer.ID, f.product.ID, 5, "Enak sekali")
	assert.ErrorIs(t, err, ErrReviewNotPurchased)
	assert.Nil(t, review)

	// A pending order is not enough.
	order := &model.Order{
		UserID: f.buyer.ID,
		Status: model.OrderStatusPending,
		OrderItems: []model.OrderItem{
			{ProductID: f.product.ID, UmkmID: f.product.UmkmID, Quantity: 1, Price: 4000, ListPrice: 10000},
		},
	}
	require.NoError(t, f.db.Create(order).Error)

	_, err = f.svc.Create(f.buyer.ID, f.product.ID, 5, "Enak sekali")
	assert.ErrorIs(t, err, ErrReviewNotPurchased)
}

func TestReviewService_Create(t *testing.T) {
	f := setupReviewServiceTest(t)
	f.completeOrder(t)

	review, err := f.svc.Create(f.buyer.ID, f.product.ID, 4, "Masih hangat saat diambil")
	require.NoError(t, err)
	assert.Equal(t, 4, review.Rating)

	// One review per buyer per product.
	_, err = f.svc.Create(f.buyer.ID, f.product.ID, 5, "Lagi")
	assert.ErrorIs(t, err, ErrReviewExists)

	reviews, err := f.svc.ListByProduct(f.product.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 1)
}

func TestReviewService_RatingBounds(t *testing.T) {
	f := setupReviewServiceTest(t)
	f.completeOrder(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := f.svc.Create(f.buyer.ID, f.product.ID, rating, "")
		assert.ErrorIs(t, err, ErrInvalidRating)
	}

	_, err := f.svc.Create(f.buyer.ID, 9999, 3, "")
	assert.ErrorIs(t, err, ErrProductNotFound)
}
