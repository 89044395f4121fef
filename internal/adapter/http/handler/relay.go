package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Temutjin2k/location-relay/internal/domain/models"
	"github.com/Temutjin2k/location-relay/pkg/logger"
	wrap "github.com/Temutjin2k/location-relay/pkg/logger/wrapper"
)

type RelayService interface {
	Serve(ctx context.Context, conn *websocket.Conn, params models.ConnParams)
}

type Relay struct {
	svc      RelayService
	upgrader websocket.Upgrader
	log      logger.Logger
}

// NewRelay builds the websocket entry point. An empty allowedOrigins accepts any origin.
func NewRelay(svc RelayService, allowedOrigins []string, log logger.Logger) *Relay {
	return &Relay{
		svc: svc,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		log: log,
	}
}

// HandleWS godoc
// @Summary      Join a shop's location channel
// @Description  Upgrades to a websocket. Every location message sent on it is relayed to the other clients of the same shop.
// @Description  Missing query parameters or an invalid token close the socket with code 1008, an invalid message with 1007.
// @Tags         Relay
// @Param        userId    query  string  true  "sender identity"
// @Param        shopName  query  string  true  "shop to join"
// @Param        token     query  string  true  "bearer token"
// @Success      101
// @Failure      403  {string}  string  "origin not allowed"
// @Failure      429  {object}  map[string]string
// @Router       /ws [get]
func (h *Relay) HandleWS(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "relay_upgrade")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the HTTP error
		h.log.Warn(ctx, "websocket upgrade failed", "error", err.Error(), "origin", r.Header.Get("Origin"))
		return
	}

	h.svc.Serve(ctx, conn, models.ParseConnParams(r.URL.Query()))
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, origin := range allowed {
		set[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // non-browser client
		}
		_, ok := set[origin]
		return ok
	}
}
