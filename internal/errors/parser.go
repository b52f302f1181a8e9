package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ErrorInfo carries the parsed code and user-facing message
type ErrorInfo struct {
	Code    string
	Message string
}

// Postgres error classes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
)

// ParseError converts database and infrastructure errors into a stable code
// plus a user-facing message without leaking internals. Context is a short
// label of the failed operation ("create product", "verify partner", ...).
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Terjadi kesalahan pada server"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrorInfo{Code: ResourceNotFound, Message: notFoundMessage(context)}
	}

	// Typed pq errors when running against Postgres
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case pgUniqueViolation:
			return parseUniqueViolation(pqErr.Constraint + " " + pqErr.Detail)
		case pgForeignKeyViolation:
			return parseForeignKeyViolation(pqErr.Constraint+" "+pqErr.Detail, context)
		case pgNotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: "Ada kolom wajib yang belum diisi"}
		case pgCheckViolation:
			return ErrorInfo{Code: ValidationInvalidInput, Message: "Data yang dikirim tidak valid"}
		}
	}

	errStr := strings.ToLower(err.Error())

	// String fallback for drivers that do not surface pq errors (sqlite in tests)
	if strings.Contains(errStr, "duplicate key") || strings.Contains(errStr, "unique constraint") {
		return parseUniqueViolation(errStr)
	}
	if strings.Contains(errStr, "foreign key constraint") {
		return parseForeignKeyViolation(errStr, context)
	}

	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") ||
		strings.Contains(errStr, "timeout") {
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "Gagal menghubungi layanan eksternal. Silakan coba lagi nanti",
		}
	}

	return ErrorInfo{
		Code:    InternalServerError,
		Message: "Terjadi kesalahan pada server. Silakan coba lagi nanti",
	}
}

func parseUniqueViolation(detail string) ErrorInfo {
	detail = strings.ToLower(detail)

	if strings.Contains(detail, "email") {
		return ErrorInfo{Code: AuthEmailAlreadyExists, Message: "Email sudah terdaftar"}
	}
	if strings.Contains(detail, "username") {
		return ErrorInfo{Code: AuthUsernameExists, Message: "Username sudah digunakan"}
	}
	if strings.Contains(detail, "umkm_profiles") || strings.Contains(detail, "idx_umkm_profiles_user_id") {
		return ErrorInfo{Code: UmkmApplicationExists, Message: "Pengajuan mitra sudah pernah dikirim"}
	}
	if strings.Contains(detail, "categories") {
		return ErrorInfo{Code: CategoryExists, Message: "Kategori sudah ada"}
	}
	if strings.Contains(detail, "reviews") {
		return ErrorInfo{Code: ReviewAlreadyExists, Message: "Anda sudah memberikan ulasan untuk produk ini"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "Data sudah ada"}
}

func parseForeignKeyViolation(detail, context string) ErrorInfo {
	detail = strings.ToLower(detail)

	if strings.Contains(detail, "still referenced") {
		return ErrorInfo{Code: ResourceConflict, Message: "Data tidak dapat dihapus karena masih digunakan"}
	}
	if strings.Contains(detail, "user_id") {
		return ErrorInfo{Code: ResourceNotFound, Message: "Pengguna tidak ditemukan"}
	}
	if strings.Contains(detail, "product_id") {
		return ErrorInfo{Code: ProductNotFound, Message: "Produk tidak ditemukan"}
	}
	if strings.Contains(detail, "category_id") {
		return ErrorInfo{Code: CategoryNotFound, Message: "Kategori tidak ditemukan"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "Data terkait tidak ditemukan"}
}

func notFoundMessage(context string) string {
	context = strings.ToLower(context)

	switch {
	case strings.Contains(context, "user"):
		return "Pengguna tidak ditemukan"
	case strings.Contains(context, "product"):
		return "Produk tidak ditemukan"
	case strings.Contains(context, "order"):
		return "Pesanan tidak ditemukan"
	case strings.Contains(context, "partner"), strings.Contains(context, "umkm"):
		return "Profil mitra UMKM tidak ditemukan"
	case strings.Contains(context, "category"):
		return "Kategori tidak ditemukan"
	case strings.Contains(context, "review"):
		return "Ulasan tidak ditemukan"
	}
	return "Data yang diminta tidak ditemukan"
}

// ParseAndRespond parses an error and writes the response in one step
func ParseAndRespond(c interface{ JSON(int, interface{}) }, statusCode int, err error, context string) {
	info := ParseError(err, context)
	c.JSON(statusCode, ErrorResponse{
		Error:   info.Code,
		Message: info.Message,
	})
}
