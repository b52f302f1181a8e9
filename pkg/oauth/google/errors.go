package google

import "errors"

var (
	// ErrInvalidConfig is returned when client credentials are missing
	ErrInvalidConfig = errors.New("invalid google oauth config")

	// ErrExchangeFailed is returned when the code-for-token exchange fails
	ErrExchangeFailed = errors.New("authorization code exchange failed")

	// ErrUserInfoFailed is returned when the userinfo fetch fails
	ErrUserInfoFailed = errors.New("failed to fetch google user info")

	// ErrMissingEmail is returned when Google vouches for no email address
	ErrMissingEmail = errors.New("google account has no verified email")
)
