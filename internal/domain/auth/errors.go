package auth

import "errors"

// ErrEmailExists indicates a duplicate email address.
var ErrEmailExists = errors.New("email already exists")

// Error codes reported through apperrors.
const (
	CodeInvalidInput       = "invalid_input"
	CodeInvalidCredentials = "invalid_credentials"
	CodeInvalidToken       = "invalid_token"
	CodeEmailExists        = "email_exists"
	CodeUserNotFound       = "user_not_found"
	CodeNotConfigured      = "auth_not_configured"
	CodeOAuthFailed        = "oauth_exchange_failed"
	CodeLinkingDisabled    = "account_linking_disabled"
	CodeInternal           = "auth_error"
)
