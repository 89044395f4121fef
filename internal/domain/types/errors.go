package types

import "errors"

var (
	// admission
	ErrMissingUserID   = errors.New("userId query parameter is required")
	ErrMissingShopName = errors.New("shopName query parameter is required")
	ErrMissingToken    = errors.New("token query parameter is required")

	// authorization
	ErrUnauthorized = errors.New("token verification failed")
	ErrShopMismatch = errors.New("token shop does not match requested shop")
	ErrAuthTimeout  = errors.New("token verification timed out")

	// messages
	ErrMalformedMessage = errors.New("malformed location message")
	ErrInvalidMessage   = errors.New("location message failed validation")
)
