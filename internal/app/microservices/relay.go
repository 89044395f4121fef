package microservices

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/Temutjin2k/location-relay/config"
	"github.com/Temutjin2k/location-relay/internal/adapter/http/server"
	"github.com/Temutjin2k/location-relay/internal/service/auth"
	"github.com/Temutjin2k/location-relay/internal/service/relay"
	"github.com/Temutjin2k/location-relay/pkg/logger"
	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
	ws "github.com/Temutjin2k/location-relay/pkg/wsHub"
)

type RelayService struct {
	relay      *relay.Service
	httpServer *server.API
	cfg        config.Config
	log        logger.Logger
}

func NewRelay(ctx context.Context, cfg config.Config, log logger.Logger) (*RelayService, error) {
	ctx = wrap.WithAction(ctx, "relay_setup")

	tokenService, err := auth.NewTokenService(cfg.Auth.JWTSecret)
	if err != nil {
		log.Error(ctx, "Failed to setup token service", err)
		return nil, err
	}

	relayService := relay.New(ws.NewShopRegistry(), tokenService, relayOptions(cfg), log)

	httpServer, err := server.New(cfg, relayService, log)
	if err != nil {
		log.Error(ctx, "Failed to setup http server", err)
		return nil, err
	}

	return &RelayService{
		relay:      relayService,
		httpServer: httpServer,
		cfg:        cfg,
		log:        log,
	}, nil
}

func relayOptions(cfg config.Config) relay.Options {
	return relay.Options{
		ServiceName:         cfg.ServiceName,
		AuthTimeout:         cfg.Relay.AuthTimeout,
		GateUntilAuthorized: cfg.Relay.GateUntilAuthorized,
		EnforceShopClaim:    cfg.Relay.EnforceShopClaim,
		Conn: ws.Options{
			SendBuffer:     cfg.Relay.SendBuffer,
			MaxMessageSize: cfg.Relay.MaxMessageSize,
			WriteWait:      cfg.Relay.WriteWait,
			PongWait:       cfg.Relay.PongWait,
		},
	}
}

func (s *RelayService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 1)

	s.httpServer.Run(ctx, errCh)
	defer func() {
		s.close(ctx)
		s.log.Info(ctx, "relay service closed")
	}()

	// Waiting signal
	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(shutdownCh)

	s.log.Info(ctx, "relay service has been started", "address", s.cfg.WebSocket.Addr())

	select {
	case errRun := <-errCh:
		return errRun
	case sig := <-shutdownCh:
		s.log.Info(ctx, "shuting down application", "signal", sig.String())
		return nil
	case <-ctx.Done():
		return nil
	}
}

// close stops accepting new clients, then closes the live ones.
func (s *RelayService) close(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)

	if s.httpServer != nil {
		if err := s.httpServer.Stop(ctx); err != nil {
			s.log.Warn(ctx, "Failed to gracefully close http server", "error", err.Error())
		}
	}

	if s.relay != nil {
		s.relay.Shutdown(ctx)
	}
}
