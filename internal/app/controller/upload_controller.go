package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/nimoapp/nimo-backend/internal/errors"
	"github.com/nimoapp/nimo-backend/internal/middleware"
	"github.com/nimoapp/nimo-backend/internal/storage"
)

const maxUploadSize = 10 * 1024 * 1024 // 10MB

var allowedImageTypes = []string{
	"image/jpeg",
	"image/png",
	"image/webp",
}

type UploadController struct {
	storage *storage.S3Storage
}

func NewUploadController(s3 *storage.S3Storage) *UploadController {
	return &UploadController{storage: s3}
}

type PresignRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,gt=0"`
	Folder      string `json:"folder"` // products or profiles
}

// Presign hands out a pre-signed PUT URL for a direct browser upload
// POST /api/v1/uploads/presign
func (ctrl *UploadController) Presign(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	var req PresignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Data unggahan tidak valid")
		return
	}

	if err := ctrl.storage.ValidateContentType(req.ContentType, allowedImageTypes); err != nil {
		apperrors.BadRequest(c, apperrors.UploadInvalidFileType, "Hanya gambar JPEG, PNG atau WebP yang diizinkan")
		return
	}
	if err := ctrl.storage.ValidateFileSize(req.Size, maxUploadSize); err != nil {
		apperrors.BadRequest(c, apperrors.UploadFileTooLarge, "Ukuran file maksimal 10MB")
		return
	}

	folder := req.Folder
	if folder != "products" && folder != "profiles" {
		folder = "uploads"
	}

	resp, err := ctrl.storage.GeneratePresignedURL(req.Filename, req.ContentType, folder)
	if err != nil {
		log.Error("Failed to generate presigned URL", err, map[string]interface{}{
			"filename": req.Filename,
		})
		apperrors.RespondWithError(c, http.StatusInternalServerError, apperrors.UploadFailed, "Gagal menyiapkan unggahan. Silakan coba lagi")
		return
	}

	c.JSON(http.StatusOK, resp)
}
