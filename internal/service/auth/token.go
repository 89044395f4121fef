package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Temutjin2k/location-relay/internal/domain/models"
	"github.com/Temutjin2k/location-relay/internal/domain/types"
	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
)

// Claim names issued by the shop backend.
const (
	claimUserID   = "Id"
	claimEmail    = "email"
	claimShopName = "shopName"
	claimRole     = "role"
)

// TokenService verifies bearer tokens signed by the shop backend with a shared HMAC secret.
type TokenService struct {
	secret []byte
}

func NewTokenService(secret string) (*TokenService, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Verify validates the token signature and expiry and returns the identity it carries.
func (s *TokenService) Verify(ctx context.Context, token string) (*models.TokenIdentity, error) {
	ctx = wrap.WithAction(ctx, "verify_token")

	if err := ctx.Err(); err != nil {
		return nil, wrap.Error(ctx, err)
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, wrap.Error(ctx, ErrExpToken)
		}
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}
	if !parsed.Valid {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	mc, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, wrap.Error(ctx, ErrInvalidToken)
	}

	identity := &models.TokenIdentity{}
	identity.UserID, _ = mc[claimUserID].(string)
	identity.Email, _ = mc[claimEmail].(string)
	identity.ShopName, _ = mc[claimShopName].(string)
	if role, ok := mc[claimRole].(string); ok {
		identity.Role = types.UserRole(role)
	}

	exp, err := mc.GetExpirationTime()
	if err != nil {
		return nil, wrap.Error(ctx, fmt.Errorf("%w: %w", ErrInvalidToken, err))
	}
	if exp != nil {
		identity.ExpiresAt = exp.Time
	}

	return identity, nil
}

// Sign issues a token for identity valid for ttl. The shop backend owns issuing in
// production; the relay uses it for local tooling and tests.
func (s *TokenService) Sign(identity models.TokenIdentity, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	claims := jwt.MapClaims{
		claimUserID:   identity.UserID,
		claimEmail:    identity.Email,
		claimShopName: identity.ShopName,
		claimRole:     identity.Role.String(),
		"iat":         now.Unix(),
		"exp":         now.Add(ttl).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}
