package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Temutjin2k/location-relay/config"
	"github.com/Temutjin2k/location-relay/internal/adapter/http/handler"
	"github.com/Temutjin2k/location-relay/internal/adapter/http/middleware"
	"github.com/Temutjin2k/location-relay/pkg/logger"
	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
)

const defaultShutdownTimeout = 5 * time.Second

type RelayService interface {
	handler.RelayService
	handler.StatsProvider
}

type API struct {
	mux     *http.ServeMux
	server  *http.Server
	routes  *handlers
	m       *middleware.Middleware
	limiter *middleware.RateLimiter

	addr string
	cfg  config.Config
	log  logger.Logger
}

type handlers struct {
	relay  *handler.Relay
	health *handler.Health
}

func New(cfg config.Config, relayService RelayService, logger logger.Logger) (*API, error) {
	if relayService == nil {
		return nil, errors.New("relay service is required")
	}

	routes := &handlers{
		relay:  handler.NewRelay(relayService, cfg.WebSocket.AllowedOrigins, logger),
		health: handler.NewHealth(cfg.ServiceName, relayService, logger),
	}

	limiter, err := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, cfg.RateLimit.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	api := &API{
		mux:     http.NewServeMux(),
		routes:  routes,
		m:       middleware.NewMiddleware(limiter, logger),
		limiter: limiter,
		addr:    cfg.WebSocket.Addr(),
		cfg:     cfg,
		log:     logger,
	}

	setupRoutes(api.mux, api.routes)

	api.server = &http.Server{
		Addr:              api.addr,
		Handler:           api.withMiddleware(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	return api, nil
}

// Handler returns the full middleware chain, for serving the API from a test server.
func (a *API) Handler() http.Handler {
	return a.server.Handler
}

func (a *API) Stop(ctx context.Context) error {
	timeout := a.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	ctx = wrap.WithAction(ctx, "http_server_stop")

	a.log.Debug(ctx, "shutting down HTTP server...", "address", a.addr)
	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("error shutting down server: %w", err)
	}
	a.log.Debug(ctx, "shutting down HTTP server completed")

	return nil
}

// Run serves in the background and reports a failure to start on errCh.
func (a *API) Run(ctx context.Context, errCh chan<- error) {
	if a.limiter != nil {
		go a.limiter.Run(ctx)
	}

	go func() {
		ctx = wrap.WithAction(ctx, "http_server_start")
		a.log.Info(ctx, "started http server", "address", a.addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("failed to start HTTP server: %w", err)
			return
		}
	}()
}

// withMiddleware applies middlewares to the mux
func (a *API) withMiddleware() http.Handler {
	return a.m.Recover(a.m.RequestID(a.m.Metrics(a.cfg.ServiceName)(a.m.Logging(a.m.RateLimit(a.mux)))))
}
