package relay

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/location-relay/internal/domain/models"
	"github.com/Temutjin2k/location-relay/internal/domain/types"
	"github.com/Temutjin2k/location-relay/pkg/hasher"
	"github.com/Temutjin2k/location-relay/pkg/logger"
	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
	"github.com/Temutjin2k/location-relay/pkg/metrics"
	ws "github.com/Temutjin2k/location-relay/pkg/wsHub"
)

type Options struct {
	ServiceName string

	// AuthTimeout bounds token verification; zero waits as long as the verifier takes.
	AuthTimeout time.Duration
	// GateUntilAuthorized keeps connections whose token is still being verified out of
	// fan-out in both directions. Off by default: such connections relay normally.
	GateUntilAuthorized bool
	// EnforceShopClaim rejects tokens carrying a shopName claim other than the requested shop.
	EnforceShopClaim bool

	Conn ws.Options
}

// Service is the location relay: it admits websocket clients, groups them by shop and
// fans every valid location message out to the other clients of the same shop.
type Service struct {
	registry Registry
	verifier TokenVerifier
	opts     Options
	l        logger.Logger

	closing atomic.Bool
}

func New(registry Registry, verifier TokenVerifier, opts Options, l logger.Logger) *Service {
	if opts.ServiceName == "" {
		opts.ServiceName = types.ServiceName
	}
	return &Service{
		registry: registry,
		verifier: verifier,
		opts:     opts,
		l:        l,
	}
}

// Serve runs one client connection until it is closed. The caller hands over ownership
// of wsConn.
func (s *Service) Serve(ctx context.Context, wsConn *websocket.Conn, params models.ConnParams) {
	ctx = wrap.WithLogCtx(ctx, wrap.LogCtx{
		Action:   "relay_connection",
		UserID:   params.UserID,
		ShopName: params.ShopName,
	})

	if s.closing.Load() {
		s.reject(ctx, wsConn, types.CloseShutdown, websocket.CloseGoingAway, "server shutting down")
		return
	}

	if err := params.Validate(); err != nil {
		s.l.Info(ctx, "client disconnected: missing data", "reason", err.Error())
		s.reject(ctx, wsConn, types.CloseMissingParams, websocket.ClosePolicyViolation, "missing data")
		return
	}

	c := ws.NewConn(uuid.NewString(), params.UserID, params.ShopName, wsConn, s.opts.Conn)
	ctx = wrap.WithConnID(ctx, c.ID())

	if err := s.register(ctx, c); err != nil {
		s.l.Error(ctx, "failed to register client", err)
		s.reject(ctx, wsConn, types.CloseInternalError, websocket.CloseInternalServerErr, "")
		return
	}

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.authorize(connCtx, c, params.Token)

	go func() {
		if err := c.WritePump(); err != nil {
			s.l.Debug(ctx, "write pump stopped", "error", err.Error())
			s.disconnect(ctx, c, types.CloseClientGone, websocket.CloseGoingAway, "")
		}
	}()

	err := c.Listen(func(data []byte) error {
		return s.handleMessage(ctx, c, data)
	})

	switch {
	case errors.Is(err, types.ErrMalformedMessage), errors.Is(err, types.ErrInvalidMessage):
		s.l.Warn(wrap.ErrorCtx(ctx, err), "client disconnected: data values or types wrong", "reason", err.Error())
		s.disconnect(ctx, c, types.CloseInvalidMessage, websocket.CloseInvalidFramePayloadData, "invalid data")
	default:
		if c.State() != ws.StateClosed {
			s.l.Debug(ctx, "read loop stopped", "error", err.Error())
		}
		s.disconnect(ctx, c, types.CloseClientGone, websocket.CloseNormalClosure, "")
	}
}

// Stats returns the number of shops with connections and the number of connections.
func (s *Service) Stats() (shops, conns int) {
	return s.registry.Stats()
}

// Shutdown stops admitting clients and closes every live connection.
func (s *Service) Shutdown(ctx context.Context) {
	ctx = wrap.WithAction(ctx, "relay_shutdown")
	s.closing.Store(true)

	clients := s.registry.Clients()
	for _, c := range clients {
		s.disconnect(ctx, c, types.CloseShutdown, websocket.CloseGoingAway, "server shutting down")
	}

	// anything admitted while the loop ran
	if late := s.registry.Close(websocket.CloseGoingAway, "server shutting down"); late > 0 {
		s.l.Warn(ctx, "closed connections registered during shutdown", "count", late)
		s.recordRegistry()
	}

	s.l.Info(ctx, "all relay connections closed", "closed", len(clients))
}

func (s *Service) register(ctx context.Context, c *ws.Conn) error {
	if err := s.registry.Register(c, c.ShopName()); err != nil {
		return wrap.Error(ctx, fmt.Errorf("register connection: %w", err))
	}
	c.Transition(ws.StatePending, ws.StateAuthPending)
	s.recordRegistry()

	s.l.Info(ctx, "client connected", "shop_clients", len(s.registry.MembersOf(c.ShopName())))
	return nil
}

// authorize verifies the token while the connection is already relaying and closes it
// if verification fails.
func (s *Service) authorize(ctx context.Context, c *ws.Conn, token string) {
	ctx = wrap.WithAction(ctx, "authorize_connection")

	if s.opts.AuthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.AuthTimeout)
		defer cancel()
	}

	start := time.Now()
	identity, err := s.verifier.Verify(ctx, token)
	metrics.RecordAuth(s.opts.ServiceName, err, time.Since(start))

	if c.State() == ws.StateClosed {
		return
	}

	if err == nil && s.opts.EnforceShopClaim && identity != nil &&
		identity.ShopName != "" && identity.ShopName != c.ShopName() {
		err = fmt.Errorf("%w: token shop %q", types.ErrShopMismatch, identity.ShopName)
	}

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", types.ErrAuthTimeout, err)
		}
		err = fmt.Errorf("%w: %w", types.ErrUnauthorized, err)

		s.l.Warn(wrap.ErrorCtx(ctx, err), "client disconnected: token not valid",
			"reason", err.Error(),
			"token_fp", hasher.Fingerprint(token),
		)
		s.disconnect(ctx, c, types.CloseUnauthorized, websocket.ClosePolicyViolation, "unauthorized")
		return
	}

	if c.Transition(ws.StateAuthPending, ws.StateActive) {
		s.l.Debug(ctx, "client authorized")
	}
}

func (s *Service) handleMessage(ctx context.Context, c *ws.Conn, data []byte) error {
	ctx = wrap.WithAction(ctx, "relay_message")

	switch c.State() {
	case ws.StateClosed:
		return nil
	case ws.StateAuthPending:
		if s.opts.GateUntilAuthorized {
			metrics.RecordMessage(s.opts.ServiceName, metrics.StatusDropped)
			s.l.Debug(ctx, "message dropped: token verification pending")
			return nil
		}
	}

	payload, msg, err := models.DecodeLocationMessage(data)
	if err != nil {
		metrics.RecordMessage(s.opts.ServiceName, metrics.StatusError)
		return wrap.Error(ctx, err)
	}
	metrics.RecordMessage(s.opts.ServiceName, metrics.StatusSuccess)

	delivered := s.broadcast(ctx, c, payload)

	s.l.Debug(ctx, "location relayed",
		"sender", msg.UserID,
		"longitude", msg.Location.Longitude(),
		"latitude", msg.Location.Latitude(),
		"recipients", delivered,
	)
	return nil
}

// broadcast queues payload on every eligible member of the sender's shop except the
// sender and returns how many accepted it. A failed recipient is logged and skipped.
func (s *Service) broadcast(ctx context.Context, sender *ws.Conn, payload []byte) int {
	delivered := 0
	for _, member := range s.registry.MembersOf(sender.ShopName()) {
		if member == sender || !s.eligible(member) {
			continue
		}

		err := member.Send(payload)
		metrics.RecordDelivery(s.opts.ServiceName, err)
		if err != nil {
			s.l.Warn(ctx, "failed to deliver location",
				"recipient_conn_id", member.ID(),
				"recipient_user_id", member.UserID(),
				"error", err.Error(),
			)
			continue
		}
		delivered++
	}
	return delivered
}

func (s *Service) eligible(c *ws.Conn) bool {
	switch c.State() {
	case ws.StateActive:
		return true
	case ws.StateAuthPending:
		return !s.opts.GateUntilAuthorized
	default:
		return false
	}
}

// disconnect is the single teardown path. The connection leaves the registry before its
// transport is released; only the first call for a connection has any effect.
func (s *Service) disconnect(ctx context.Context, c *ws.Conn, reason types.CloseReason, code int, text string) {
	if !c.MarkClosed() {
		return
	}

	_, registered := s.registry.Deregister(c)

	if err := c.Close(code, text); err != nil {
		s.l.Debug(ctx, "failed to close connection", "error", err.Error())
	}

	s.recordRegistry()
	metrics.RecordClose(s.opts.ServiceName, reason.String())

	s.l.Info(ctx, "client disconnected", "reason", reason.String(), "registered", registered)
}

func (s *Service) reject(ctx context.Context, wsConn *websocket.Conn, reason types.CloseReason, code int, text string) {
	metrics.RecordClose(s.opts.ServiceName, reason.String())
	if err := ws.Reject(wsConn, code, text); err != nil {
		s.l.Debug(ctx, "failed to close rejected connection", "error", err.Error())
	}
}

func (s *Service) recordRegistry() {
	shops, conns := s.registry.Stats()
	metrics.RecordRegistry(s.opts.ServiceName, shops, conns)
}
