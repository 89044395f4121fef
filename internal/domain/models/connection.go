package models

import (
	"errors"
	"net/url"

	"github.com/Temutjin2k/location-relay/internal/domain/types"
)

// Query parameter names of the relay endpoint.
const (
	ParamUserID   = "userId"
	ParamShopName = "shopName"
	ParamToken    = "token"
)

// ConnParams is the identity a client supplies when opening a relay connection.
type ConnParams struct {
	UserID   string
	ShopName string
	Token    string
}

func ParseConnParams(q url.Values) ConnParams {
	return ConnParams{
		UserID:   q.Get(ParamUserID),
		ShopName: q.Get(ParamShopName),
		Token:    q.Get(ParamToken),
	}
}

// Validate reports every missing parameter joined in one error.
func (p ConnParams) Validate() error {
	var errs []error
	if p.UserID == "" {
		errs = append(errs, types.ErrMissingUserID)
	}
	if p.ShopName == "" {
		errs = append(errs, types.ErrMissingShopName)
	}
	if p.Token == "" {
		errs = append(errs, types.ErrMissingToken)
	}
	return errors.Join(errs...)
}
