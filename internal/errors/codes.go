package errors

// Error code constants, format CATEGORY_SPECIFIC_DETAIL.
// The frontend maps these codes to localized messages.

const (
	// ==================== Authentication (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // login required
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // wrong identifier/password, never distinguished
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"
	AuthTokenRevoked       = "AUTH_TOKEN_REVOKED"
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"
	AuthUsernameExists     = "AUTH_USERNAME_EXISTS"
	AuthSessionInvalid     = "AUTH_SESSION_INVALID"
	AuthOAuthFailed        = "AUTH_OAUTH_FAILED"
	AuthNoPassword         = "AUTH_NO_PASSWORD" // OAuth-only account, no local password set

	// ==================== Authorization (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND"
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"
	AuthzNotVerified  = "AUTHZ_PARTNER_NOT_VERIFIED" // UMKM profile pending or missing

	// ==================== Validation (VALIDATION_) ====================
	ValidationInvalidInput = "VALIDATION_INVALID_INPUT"
	ValidationInvalidID    = "VALIDATION_INVALID_ID"
	ValidationRequired     = "VALIDATION_REQUIRED"

	// ==================== Resources (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS"
	ResourceConflict      = "RESOURCE_CONFLICT"

	// ==================== UMKM partner (UMKM_) ====================
	UmkmNotFound            = "UMKM_NOT_FOUND"
	UmkmApplicationExists   = "UMKM_APPLICATION_EXISTS"   // duplicate partner application
	UmkmNotPending          = "UMKM_NOT_PENDING"          // approve/reject on non-pending profile
	UmkmVerificationPending = "UMKM_VERIFICATION_PENDING" // action requires a verified profile

	// ==================== Catalog (PRODUCT_ / CATEGORY_) ====================
	ProductNotFound     = "PRODUCT_NOT_FOUND"
	ProductExpired      = "PRODUCT_EXPIRED"
	ProductOutOfStock   = "PRODUCT_OUT_OF_STOCK"
	ProductInactive     = "PRODUCT_INACTIVE"
	ProductInvalidPrice = "PRODUCT_INVALID_PRICE" // discount not below original price
	CategoryNotFound    = "CATEGORY_NOT_FOUND"
	CategoryExists      = "CATEGORY_EXISTS"

	// ==================== Orders (ORDER_ / CART_) ====================
	OrderNotFound      = "ORDER_NOT_FOUND"
	OrderInvalidStatus = "ORDER_INVALID_STATUS"
	CartEmpty          = "CART_EMPTY"
	CartItemNotFound   = "CART_ITEM_NOT_FOUND"

	// ==================== Reviews (REVIEW_) ====================
	ReviewNotFound      = "REVIEW_NOT_FOUND"
	ReviewAlreadyExists = "REVIEW_ALREADY_EXISTS"
	ReviewInvalidRating = "REVIEW_INVALID_RATING"
	ReviewNotPurchased  = "REVIEW_NOT_PURCHASED" // review requires a completed order

	// ==================== Uploads (UPLOAD_) ====================
	UploadInvalidFileType = "UPLOAD_INVALID_FILE_TYPE"
	UploadFileTooLarge    = "UPLOAD_FILE_TOO_LARGE"
	UploadFailed          = "UPLOAD_FAILED"

	// ==================== Internal (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR"
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"
)
