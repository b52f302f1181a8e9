package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nimoapp/nimo-backend/internal/app/repository"
	"github.com/nimoapp/nimo-backend/internal/app/service"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
)

// ProductController serves the public catalog.
type ProductController struct {
	productService      service.ProductService
	reviewService       service.ReviewService
	verificationService service.VerificationService
}

func NewProductController(
	productService service.ProductService,
	reviewService service.ReviewService,
	verificationService service.VerificationService,
) *ProductController {
	return &ProductController{
		productService:      productService,
		reviewService:       reviewService,
		verificationService: verificationService,
	}
}

func parsePagination(c *gin.Context) (offset, limit int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return (page - 1) * limit, limit
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "ID tidak valid")
		return 0, false
	}
	return uint(id), true
}

// List returns active, unexpired listings. Supports category/partner/search
// filters and near-expiry sorting (sort=expiry, the "save it now" view).
// GET /api/v1/products
func (ctrl *ProductController) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	filter := repository.ProductFilter{
		Search:       c.Query("search"),
		ActiveOnly:   true,
		SortByExpiry: c.Query("sort") == "expiry",
		Offset:       offset,
		Limit:        limit,
	}
	if v := c.Query("category_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}
	if v := c.Query("umkm_id"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			umkmID := uint(id)
			filter.UmkmID = &umkmID
		}
	}

	products, total, err := ctrl.productService.List(filter)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products": products,
		"total":    total,
	})
}

// GetByID returns a single listing with partner and category
// GET /api/v1/products/:id
func (ctrl *ProductController) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := ctrl.productService.GetByID(id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Produk tidak ditemukan")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"product": product,
	})
}

// ListReviews returns the reviews of a listing
// GET /api/v1/products/:id/reviews
func (ctrl *ProductController) ListReviews(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ctrl.productService.GetByID(id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			apperrors.NotFound(c, apperrors.ProductNotFound, "Produk tidak ditemukan")
			return
		}
		apperrors.InternalError(c, "")
		return
	}

	reviews, err := ctrl.reviewService.ListByProduct(id)
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reviews": reviews,
	})
}

// GetUmkm returns a partner's public storefront: the profile plus its active
// listings.
// GET /api/v1/umkm/:id
func (ctrl *ProductController) GetUmkm(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	profile, err := ctrl.verificationService.GetProfileByID(id)
	if err != nil {
		if errors.Is(err, service.ErrUmkmProfileNotFound) {
			apperrors.NotFound(c, apperrors.UmkmNotFound, "Profil mitra UMKM tidak ditemukan")
			return
		}
		apperrors.InternalError(c, "")
		return
	}
	// Pending profiles have no public storefront.
	if !profile.IsVerified {
		apperrors.NotFound(c, apperrors.UmkmNotFound, "Profil mitra UMKM tidak ditemukan")
		return
	}

	umkmID := profile.ID
	products, _, err := ctrl.productService.List(repository.ProductFilter{
		UmkmID:     &umkmID,
		ActiveOnly: true,
		Limit:      100,
	})
	if err != nil {
		apperrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"umkm":     profile,
		"products": products,
	})
}
