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

type orderServiceFixture struct {
	svc     OrderService
	cartSvc CartService
	db      *gorm.DB
	buyer   *model.User
	umkm    *model.UmkmProfile
	product *model.Product
}

func setupOrderServiceTest(t *testing.T) *orderServiceFixture {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	orderRepo := repository.NewOrderRepository(testDB)
	cartRepo := repository.NewCartRepository(testDB)
	productRepo := repository.NewProductRepository(testDB)

	buyer := &model.User{Email: "buyer@example.com", Name: "Buyer", Role: model.RoleCustomer}
	require.NoError(t, testDB.Create(buyer).Error)

	owner := &model.User{Email: "owner@example.com", Name: "Owner", Role: model.RoleUmkmOwner}
	require.NoError(t, testDB.Create(owner).Error)

	now := time.Now()
	umkm := &model.UmkmProfile{
		UserID:       owner.ID,
		BusinessName: "Warung Sari",
		IsVerified:   true,
		VerifiedAt:   &now,
	}
	require.NoError(t, testDB.Create(umkm).Error)

	product := &model.Product{
		UmkmID:        umkm.ID,
		Name:          "Nasi Kotak Sisa Katering",
		OriginalPrice: 25000,
		DiscountPrice: 10000,
		StockQuantity: 10,
		BestBefore:    time.Now().Add(6 * time.Hour),
		PickupStart:   "17:00",
		PickupEnd:     "20:00",
		IsActive:      true,
	}
	require.NoError(t, testDB.Create(product).Error)

	return &orderServiceFixture{
		svc:     NewOrderService(orderRepo, cartRepo, productRepo, testDB),
		cartSvc: NewCartService(cartRepo, productRepo),
		db:      testDB,
		buyer:   buyer,
		umkm:    umkm,
		product: product,
	}
}

func TestOrderService_CreateFromCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 3)
	require.NoError(t, err)

	order, err := f.svc.CreateFromCart(f.buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, order.Status)
	assert.Equal(t, float64(30000), order.TotalAmount)
	assert.Equal(t, float64(45000), order.TotalSavings)
	assert.NotEmpty(t, order.PickupCode)
	require.Len(t, order.OrderItems, 1)
	assert.Equal(t, f.umkm.ID, order.OrderItems[0].UmkmID)
	assert.Equal(t, float64(10000), order.OrderItems[0].Price)
	assert.Equal(t, float64(25000), order.OrderItems[0].ListPrice)

	// Stock is drained and the cart emptied.
	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 7, product.StockQuantity)

	cart, err := f.cartSvc.GetCart(f.buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
}

func TestOrderService_CreateFromEmptyCart(t *testing.T) {
	f := setupOrderServiceTest(t)

	order, err := f.svc.CreateFromCart(f.buyer.ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Nil(t, order)
}

func TestOrderService_CreateInsufficientStock(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 10)
	require.NoError(t, err)

	// Stock shrank between carting and checkout.
	require.NoError(t, f.db.Model(&model.Product{}).
		Where("id = ?", f.product.ID).
		Update("stock_quantity", 2).Error)

	order, err := f.svc.CreateFromCart(f.buyer.ID)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Nil(t, order)

	// Nothing was committed.
	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 2, product.StockQuantity)
}

func TestOrderService_CreateExpiredListing(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&model.Product{}).
		Where("id = ?", f.product.ID).
		Update("best_before", time.Now().Add(-time.Hour)).Error)

	order, err := f.svc.CreateFromCart(f.buyer.ID)
	assert.ErrorIs(t, err, ErrProductUnavailable)
	assert.Nil(t, order)
}

func TestOrderService_CancelRestoresStock(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 4)
	require.NoError(t, err)
	order, err := f.svc.CreateFromCart(f.buyer.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.CancelOrder(f.buyer.ID, order.ID))

	var product model.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	assert.Equal(t, 10, product.StockQuantity)

	cancelled, err := f.svc.GetOrderByID(f.buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusCancelled, cancelled.Status)
}

func TestOrderService_CancelOnlyWhilePending(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 1)
	require.NoError(t, err)
	order, err := f.svc.CreateFromCart(f.buyer.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(f.umkm.ID, order.ID, model.OrderStatusConfirmed)
	require.NoError(t, err)

	err = f.svc.CancelOrder(f.buyer.ID, order.ID)
	assert.ErrorIs(t, err, ErrOrderNotCancelabe)
}

func TestOrderService_OwnershipChecks(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 1)
	require.NoError(t, err)
	order, err := f.svc.CreateFromCart(f.buyer.ID)
	require.NoError(t, err)

	// Another buyer cannot read or cancel the order.
	other := &model.User{Email: "other@example.com", Name: "Other", Role: model.RoleCustomer}
	require.NoError(t, f.db.Create(other).Error)

	_, err = f.svc.GetOrderByID(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)
	err = f.svc.CancelOrder(other.ID, order.ID)
	assert.ErrorIs(t, err, ErrNotOrderOwner)

	// A partner without items on the order cannot move it.
	strangerUmkm := &model.UmkmProfile{UserID: other.ID, BusinessName: "Warung Lain", IsVerified: true}
	require.NoError(t, f.db.Create(strangerUmkm).Error)

	_, err = f.svc.UpdateStatus(strangerUmkm.ID, order.ID, model.OrderStatusConfirmed)
	assert.ErrorIs(t, err, ErrNotOrderOwner)
}

func TestOrderService_StatusTransitions(t *testing.T) {
	f := setupOrderServiceTest(t)

	_, err := f.cartSvc.AddItem(f.buyer.ID, f.product.ID, 1)
	require.NoError(t, err)
	order, err := f.svc.CreateFromCart(f.buyer.ID)
	require.NoError(t, err)

	// pending -> ready skips confirmation and is refused.
	_, err = f.svc.UpdateStatus(f.umkm.ID, order.ID, model.OrderStatusReady)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	for _, status := range []model.OrderStatus{
		model.OrderStatusConfirmed,
		model.OrderStatusReady,
		model.OrderStatusCompleted,
	} {
		updated, err := f.svc.UpdateStatus(f.umkm.ID, order.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, updated.Status)
	}

	// Completion settles payment; a completed order is terminal.
	final, err := f.svc.GetOrderByID(f.buyer.ID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentStatusCompleted, final.PaymentStatus)

	_, err = f.svc.UpdateStatus(f.umkm.ID, order.ID, model.OrderStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}
