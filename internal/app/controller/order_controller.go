package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/internal/middleware"
)

type OrderController struct {
	orderService service.OrderService
}

func NewOrderController(orderService service.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// Create turns the cart into an order
// POST /api/v1/orders
func (ctrl *OrderController) Create(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)
	userID, _ := middleware.GetUserID(c)

	order, err := ctrl.orderService.CreateFromCart(userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyCart):
			apperrors.BadRequest(c, apperrors.CartEmpty, "Keranjang masih kosong")
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Produk tidak ditemukan")
		case errors.Is(err, service.ErrProductUnavailable):
			apperrors.Conflict(c, apperrors.ProductExpired, "Ada produk yang sudah tidak tersedia, periksa keranjang Anda")
		case errors.Is(err, service.ErrInsufficientStock):
			apperrors.Conflict(c, apperrors.ProductOutOfStock, "Stok produk tidak mencukupi")
		default:
			log.Error("Order creation failed", err, map[string]interface{}{
				"user_id": userID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "create order")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Pesanan dibuat, tunjukkan kode penjemputan saat mengambil",
		"order":   order,
	})
}

// List returns the buyer's orders
// GET /api/v1/orders
func (ctrl *OrderController) List(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	orders, err := ctrl.orderService.GetUserOrders(userID)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
	})
}

// GetByID returns one of the buyer's orders
// GET /api/v1/orders/:id
func (ctrl *OrderController) GetByID(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	order, err := ctrl.orderService.GetOrderByID(userID, orderID)
	if err != nil {
		ctrl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"order": order,
	})
}

// Cancel cancels a pending order and restores the reserved stock
// POST /api/v1/orders/:id/cancel
func (ctrl *OrderController) Cancel(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	orderID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.orderService.CancelOrder(userID, orderID); err != nil {
		ctrl.respondOrderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Pesanan dibatalkan",
	})
}

func (ctrl *OrderController) respondOrderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOrderNotFound):
		apperrors.NotFound(c, apperrors.OrderNotFound, "Pesanan tidak ditemukan")
	case errors.Is(err, service.ErrNotOrderOwner):
		apperrors.Forbidden(c, "")
	case errors.Is(err, service.ErrOrderNotCancelabe):
		apperrors.Conflict(c, apperrors.OrderInvalidStatus, "Pesanan sudah diproses dan tidak dapat dibatalkan")
	default:
		apperrors.InternalError(c, "")
	}
}
