package models

import (
	"time"

	"github.com/Temutjin2k/location-relay/internal/domain/types"
)

// TokenIdentity is what a verified bearer token says about its holder.
// Every field except ExpiresAt is optional; the relay only needs the token to be valid.
type TokenIdentity struct {
	UserID    string
	Email     string
	ShopName  string
	Role      types.UserRole
	ExpiresAt time.Time
}
