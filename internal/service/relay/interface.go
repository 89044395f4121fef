package relay

import (
	"context"

	"github.com/Temutjin2k/location-relay/internal/domain/models"
	ws "github.com/Temutjin2k/location-relay/pkg/wsHub"
)

/*=================Token verification======================*/

// TokenVerifier checks a bearer token. Any error means the token is not valid.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*models.TokenIdentity, error)
}

/*=================Connection registry=====================*/

type Registry interface {
	Register(conn *ws.Conn, shop string) error
	Deregister(conn *ws.Conn) (shop string, ok bool)
	MembersOf(shop string) []*ws.Conn
	Clients() []*ws.Conn
	Stats() (shops, conns int)
	Close(code int, reason string) int
}
