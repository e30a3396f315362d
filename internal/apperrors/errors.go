package apperrors

import (
	"errors"
)

var (
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrUserNotFound      = errors.New("user not found")

	// Returned on any login failure
	// Must be the same for unknown identity and for wrong password
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrValidation = errors.New("validation failed")

	ErrRefreshTokenNotFound = errors.New("refresh token not found")
	ErrRefreshTokenIsUsed   = errors.New("refresh token is used")
	ErrRefreshTokenExpired  = errors.New("refresh token is expired")
	ErrRefreshTokenRevoked  = errors.New("refresh token is revoked")

	ErrAccessTokenMalformed = errors.New("access token is malformed")
	ErrAccessTokenInvalid   = errors.New("access token signature is invalid")
	ErrAccessTokenExpired   = errors.New("access token is expired")

	ErrForbidden = errors.New("operation is not allowed for this user")

	ErrPostNotFound = errors.New("post not found")
)
