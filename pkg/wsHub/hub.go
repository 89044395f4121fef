package ws

import (
	"errors"
	"sync"
)

var ErrEmptyConn = errors.New("connection is empty")

// ShopRegistry хранит активные соединения, сгруппированные по магазину.
//
// shops and conns are kept mutually consistent under mu: a connection is in a shop's
// member set if and only if conns records that shop for it, and a shop with no members
// is removed.
type ShopRegistry struct {
	mu    sync.RWMutex
	shops map[string]map[*Conn]struct{}
	conns map[*Conn]string
}

func NewShopRegistry() *ShopRegistry {
	return &ShopRegistry{
		shops: make(map[string]map[*Conn]struct{}),
		conns: make(map[*Conn]string),
	}
}

// Register adds conn to the member set of shop.
// A connection already registered under another shop is moved.
func (r *ShopRegistry) Register(conn *Conn, shop string) error {
	if conn == nil {
		return ErrEmptyConn
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.conns[conn]; ok {
		if prev == shop {
			return nil
		}
		r.removeLocked(conn, prev)
	}

	members, ok := r.shops[shop]
	if !ok {
		members = make(map[*Conn]struct{})
		r.shops[shop] = members
	}
	members[conn] = struct{}{}
	r.conns[conn] = shop

	return nil
}

// Deregister removes conn and returns the shop it belonged to.
// ok is false if conn was not registered.
func (r *ShopRegistry) Deregister(conn *Conn) (shop string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	shop, ok = r.conns[conn]
	if !ok {
		return "", false
	}
	r.removeLocked(conn, shop)

	return shop, true
}

func (r *ShopRegistry) removeLocked(conn *Conn, shop string) {
	delete(r.conns, conn)

	members, ok := r.shops[shop]
	if !ok {
		return
	}
	delete(members, conn)
	if len(members) == 0 {
		delete(r.shops, shop)
	}
}

// MembersOf returns a snapshot of the connections registered under shop.
func (r *ShopRegistry) MembersOf(shop string) []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.shops[shop]
	out := make([]*Conn, 0, len(members))
	for conn := range members {
		out = append(out, conn)
	}
	return out
}

// ShopOf returns the shop conn is registered under.
func (r *ShopRegistry) ShopOf(conn *Conn) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	shop, ok := r.conns[conn]
	return shop, ok
}

// Clients возвращает копию списка всех зарегистрированных соединений
func (r *ShopRegistry) Clients() []*Conn {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Conn, 0, len(r.conns))
	for conn := range r.conns {
		out = append(out, conn)
	}
	return out
}

// Stats returns the number of shops with at least one connection and the number of
// registered connections.
func (r *ShopRegistry) Stats() (shops, conns int) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.shops), len(r.conns)
}

// Close empties the registry and closes every connection that was in it with code and
// reason. It returns how many connections it removed.
func (r *ShopRegistry) Close(code int, reason string) int {
	r.mu.Lock()
	conns := make([]*Conn, 0, len(r.conns))
	for conn := range r.conns {
		conns = append(conns, conn)
	}
	r.shops = make(map[string]map[*Conn]struct{})
	r.conns = make(map[*Conn]string)
	r.mu.Unlock()

	// closing outside the lock: close frames may block on slow peers
	for _, conn := range conns {
		_ = conn.Close(code, reason)
	}
	return len(conns)
}
