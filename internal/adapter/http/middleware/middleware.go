package middleware

import (
	"github.com/Temutjin2k/location-relay/pkg/logger"
)

type Middleware struct {
	limiter *RateLimiter // nil: no admission limit
	log     logger.Logger
}

func NewMiddleware(limiter *RateLimiter, log logger.Logger) *Middleware {
	return &Middleware{
		limiter: limiter,
		log:     log,
	}
}
