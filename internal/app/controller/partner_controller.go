package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/model"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/internal/middleware"
)

// OrderNotifier pushes order status changes to the buyer's live connections.
type OrderNotifier interface {
	NotifyOrderUpdate(userID, orderID uint, status string)
}

// PartnerController serves the UMKM partner surface: application, dashboard,
// own listings and incoming orders.
type PartnerController struct {
	verificationService service.VerificationService
	partnerService      service.PartnerService
	productService      service.ProductService
	orderService        service.OrderService
	notifier            OrderNotifier
}

func NewPartnerController(
	verificationService service.VerificationService,
	partnerService service.PartnerService,
	productService service.ProductService,
	orderService service.OrderService,
	notifier OrderNotifier,
) *PartnerController {
	return &PartnerController{
		verificationService: verificationService,
		partnerService:      partnerService,
		productService:      productService,
		orderService:        orderService,
		notifier:            notifier,
	}
}

type ApplyRequest struct {
	BusinessName    string `json:"business_name" binding:"required,min=2,max=100"`
	BusinessAddress string `json:"business_address" binding:"required"`
	ContactPhone    string `json:"contact_phone" binding:"required"`
	Description     string `json:"description" binding:"max=2000"`
}

type ProductRequest struct {
	CategoryID    *uint     `json:"category_id"`
	Name          string    `json:"name" binding:"required,min=2,max=150"`
	Description   string    `json:"description" binding:"max=5000"`
	OriginalPrice float64   `json:"original_price" binding:"required,gt=0"`
	DiscountPrice float64   `json:"discount_price" binding:"required,gt=0"`
	StockQuantity int       `json:"stock_quantity" binding:"required,min=0"`
	BestBefore    time.Time `json:"best_before" binding:"required"`
	PickupStart   string    `json:"pickup_start"`
	PickupEnd     string    `json:"pickup_end"`
	ImageURL      string    `json:"image_url"`
	IsActive      *bool     `json:"is_active"`
}

type UpdateOrderStatusRequest struct {
	Status model.OrderStatus `json:"status" binding:"required"`
}

func productInputFromRequest(req ProductRequest) service.ProductInput {
	return service.ProductInput{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Description:   req.Description,
		OriginalPrice: req.OriginalPrice,
		DiscountPrice: req.DiscountPrice,
		StockQuantity: req.StockQuantity,
		BestBefore:    req.BestBefore,
		PickupStart:   req.PickupStart,
		PickupEnd:     req.PickupEnd,
		ImageURL:      req.ImageURL,
		IsActive:      req.IsActive,
	}
}

// Apply submits the partner application. Role stays customer until approval.
// POST /api/v1/partner/apply
func (ctrl *PartnerController) Apply(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	var req ApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data pengajuan tidak valid")
		return
	}

	profile, err := ctrl.verificationService.Apply(userID, service.ApplyInput{
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		ContactPhone:    req.ContactPhone,
		Description:     req.Description,
	})
	if err != nil {
		if errors.Is(err, service.ErrUmkmProfileExists) {
			apperrors.Conflict(c, apperrors.UmkmApplicationExists, "Pengajuan mitra sudah pernah dikirim")
			return
		}
		log.Error("Partner application failed", err, map[string]interface{}{
			"user_id": userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "partner apply")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Pengajuan mitra terkirim dan menunggu verifikasi admin",
		"profile": profile,
	})
}

// GetDashboard returns the partner's aggregate numbers
// GET /api/v1/partner/dashboard
func (ctrl *PartnerController) GetDashboard(c *gin.Context) {
	umkmID, _ := middleware.GetUmkmID(c)

	stats, err := ctrl.partnerService.GetDashboard(umkmID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"dashboard": stats,
	})
}

// ListProducts returns the partner's own listings, including inactive ones
// GET /api/v1/partner/products
func (ctrl *PartnerController) ListProducts(c *gin.Context) {
	umkmID, _ := middleware.GetUmkmID(c)

	products, err := ctrl.productService.ListByUmkm(umkmID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
	})
}

// CreateProduct adds a listing
// POST /api/v1/partner/products
func (ctrl *PartnerController) CreateProduct(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	umkmID, _ := middleware.GetUmkmID(c)

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data produk tidak valid")
		return
	}

	product, err := ctrl.productService.Create(umkmID, productInputFromRequest(req))
	if err != nil {
		ctrl.respondListingError(c, err)
		if !isListingError(err) {
			log.Error("Failed to create listing", err, map[string]interface{}{
				"umkm_id": umkmID,
			})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"product": product,
	})
}

// UpdateProduct edits one of the partner's listings
// PUT /api/v1/partner/products/:id
func (ctrl *PartnerController) UpdateProduct(c *gin.Context) {
	umkmID, _ := middleware.GetUmkmID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data produk tidak valid")
		return
	}

	product, err := ctrl.productService.Update(umkmID, productID, productInputFromRequest(req))
	if err != nil {
		ctrl.respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// DeleteProduct removes one of the partner's listings
// DELETE /api/v1/partner/products/:id
func (ctrl *PartnerController) DeleteProduct(c *gin.Context) {
	umkmID, _ := middleware.GetUmkmID(c)

	productID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.productService.Delete(umkmID, productID); err != nil {
		ctrl.respondListingError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Produk dihapus",
	})
}

// ListOrders returns orders containing the partner's items
// GET /api/v1/partner/orders
func (ctrl *PartnerController) ListOrders(c *gin.Context) {
	umkmID, _ := middleware.GetUmkmID(c)

	orders, err := ctrl.orderService.GetUmkmOrders(umkmID, c.Query("status"))
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
	})
}

// UpdateOrderStatus moves an order along the pickup pipeline and notifies
// the buyer's live connections.
// PUT /api/v1/partner/orders/:id/status
func (ctrl *PartnerController) UpdateOrderStatus(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	umkmID, _ := middleware.GetUmkmID(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Status tidak valid")
		return
	}

	order, err := ctrl.orderService.UpdateStatus(umkmID, orderID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			apperrors.NotFound(c, apperrors.OrderNotFound, "Pesanan tidak ditemukan")
		case errors.Is(err, service.ErrNotOrderOwner):
			apperrors.Forbidden(c, "")
		case errors.Is(err, service.ErrInvalidTransition):
			apperrors.Conflict(c, apperrors.OrderInvalidStatus, "Perubahan status pesanan tidak diizinkan")
		default:
			log.Error("Failed to update order status", err, map[string]interface{}{
				"order_id": orderID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	if ctrl.notifier != nil {
		ctrl.notifier.NotifyOrderUpdate(order.UserID, order.ID, string(order.Status))
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

func (ctrl *PartnerController) respondListingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductNotFound):
		apperrors.NotFound(c, apperrors.ProductNotFound, "Produk tidak ditemukan")
	case errors.Is(err, service.ErrNotListingOwner):
		apperrors.Forbidden(c, "Produk ini bukan milik Anda")
	case errors.Is(err, service.ErrInvalidDiscount):
		apperrors.BadRequest(c, apperrors.ProductInvalidPrice, "Harga diskon harus lebih rendah dari harga asli")
	case errors.Is(err, service.ErrInvalidStock):
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Jumlah stok tidak valid")
	case errors.Is(err, service.ErrBestBeforePassed):
		apperrors.BadRequest(c, apperrors.ProductExpired, "Tanggal kedaluwarsa sudah lewat")
	default:
		apperrors.InternalError(c, "")
	}
}

func isListingError(err error) bool {
	return errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrNotListingOwner) ||
		errors.Is(err, service.ErrInvalidDiscount) ||
		errors.Is(err, service.ErrInvalidStock) ||
		errors.Is(err, service.ErrBestBeforePassed)
}
