package controller

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/internal/middleware"
)

// AdminController serves the back-office: user and partner management plus
// the report exports.
type AdminController struct {
	authService         service.AuthService
	verificationService service.VerificationService
	orderService        service.OrderService
	reportService       service.ReportService
}

func NewAdminController(
	authService service.AuthService,
	verificationService service.VerificationService,
	orderService service.OrderService,
	reportService service.ReportService,
) *AdminController {
	return &AdminController{
		authService:         authService,
		verificationService: verificationService,
		orderService:        orderService,
		reportService:       reportService,
	}
}

type VerifyUmkmRequest struct {
	IsVerified *bool `json:"is_verified" binding:"required"`
}

// ListUsers returns users, filterable by role
// GET /api/v1/admin/users
func (ctrl *AdminController) ListUsers(c *gin.Context) {
	offset, limit := parsePagination(c)

	users, total, err := ctrl.authService.ListUsers(c.Query("role"), offset, limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"total": total,
	})
}

// ListUmkm returns partner profiles by verification state
// GET /api/v1/admin/umkm-owners?status=pending|verified
func (ctrl *AdminController) ListUmkm(c *gin.Context) {
	offset, limit := parsePagination(c)

	status := c.DefaultQuery("status", "pending")
	var (
		profiles interface{}
		total    int64
		err      error
	)
	if status == "verified" {
		profiles, total, err = ctrl.verificationService.ListVerified(offset, limit)
	} else {
		profiles, total, err = ctrl.verificationService.ListPending(offset, limit)
	}
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"umkm_owners": profiles,
		"total":       total,
	})
}

// VerifyUmkm applies the admin decision on a partner application. Approval
// promotes the owner; rejection removes the profile and resets the role.
// The user_update block tells the admin UI what changed.
// PUT /api/v1/admin/umkm-owners/:id/verify
func (ctrl *AdminController) VerifyUmkm(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	umkmID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req VerifyUmkmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Keputusan verifikasi tidak valid")
		return
	}

	result, err := ctrl.verificationService.Verify(umkmID, *req.IsVerified)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUmkmProfileNotFound):
			apperrors.NotFound(c, apperrors.UmkmNotFound, "Profil mitra UMKM tidak ditemukan")
		case errors.Is(err, service.ErrUmkmNotPending):
			apperrors.Conflict(c, apperrors.UmkmNotPending, "Pengajuan sudah diproses sebelumnya")
		default:
			log.Error("Verification decision failed", err, map[string]interface{}{
				"umkm_id": umkmID,
			})
			apperrors.InternalError(c, "")
		}
		return
	}

	message := "Mitra UMKM berhasil diverifikasi"
	if !*req.IsVerified {
		message = "Pengajuan mitra UMKM ditolak"
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     message,
		"user_update": result,
	})
}

// ListOrders returns all orders
// GET /api/v1/admin/orders
func (ctrl *AdminController) ListOrders(c *gin.Context) {
	offset, limit := parsePagination(c)

	orders, total, err := ctrl.orderService.ListAll(offset, limit)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
	})
}

// SalesReport streams the XLSX sales export for a date range
// GET /api/v1/admin/reports/sales?from=2026-01-01&to=2026-01-31
func (ctrl *AdminController) SalesReport(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	const layout = "2006-01-02"
	now := time.Now()

	from, err := time.Parse(layout, c.DefaultQuery("from", now.AddDate(0, -1, 0).Format(layout)))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Tanggal awal tidak valid")
		return
	}
	to, err := time.Parse(layout, c.DefaultQuery("to", now.Format(layout)))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Tanggal akhir tidak valid")
		return
	}
	// Include the whole end day.
	to = to.Add(24*time.Hour - time.Nanosecond)

	file, err := ctrl.reportService.SalesReport(from, to)
	if err != nil {
		log.Error("Sales report failed", err, nil)
		apperrors.InternalError(c, "")
		return
	}

	filename := fmt.Sprintf("laporan-penjualan-%s-%s.xlsx",
		from.Format(layout), to.Format(layout))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")

	if err := file.Write(c.Writer); err != nil {
		log.Error("Failed to stream sales report", err, nil)
	}
}
