package ws

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConn(id, shop string) *Conn {
	return NewConn(id, "user-"+id, shop, nil, Options{})
}

// assertConsistent checks both registry maps against each other.
func assertConsistent(t *testing.T, r *ShopRegistry) {
	t.Helper()

	r.mu.RLock()
	defer r.mu.RUnlock()

	total := 0
	for shop, members := range r.shops {
		assert.NotEmpty(t, members, "shop %q resident with no members", shop)
		for conn := range members {
			assert.Equal(t, shop, r.conns[conn], "reverse map disagrees for %s", conn.ID())
		}
		total += len(members)
	}
	assert.Equal(t, len(r.conns), total)
}

func TestShopRegistry_RegisterAndMembers(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")
	b := newTestConn("b", "shop1")
	c := newTestConn("c", "shop2")

	require.NoError(t, r.Register(a, "shop1"))
	require.NoError(t, r.Register(b, "shop1"))
	require.NoError(t, r.Register(c, "shop2"))

	assert.ElementsMatch(t, []*Conn{a, b}, r.MembersOf("shop1"))
	assert.ElementsMatch(t, []*Conn{c}, r.MembersOf("shop2"))
	assert.Empty(t, r.MembersOf("unknown"))

	shops, conns := r.Stats()
	assert.Equal(t, 2, shops)
	assert.Equal(t, 3, conns)
	assertConsistent(t, r)
}

func TestShopRegistry_RegisterNil(t *testing.T) {
	r := NewShopRegistry()
	assert.ErrorIs(t, r.Register(nil, "shop1"), ErrEmptyConn)
}

func TestShopRegistry_RegisterTwiceIsIdempotent(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")

	require.NoError(t, r.Register(a, "shop1"))
	require.NoError(t, r.Register(a, "shop1"))

	assert.Len(t, r.MembersOf("shop1"), 1)
	assertConsistent(t, r)
}

func TestShopRegistry_RegisterUnderOtherShopMoves(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")

	require.NoError(t, r.Register(a, "shop1"))
	require.NoError(t, r.Register(a, "shop2"))

	assert.Empty(t, r.MembersOf("shop1"))
	assert.ElementsMatch(t, []*Conn{a}, r.MembersOf("shop2"))
	shop, ok := r.ShopOf(a)
	assert.True(t, ok)
	assert.Equal(t, "shop2", shop)
	assertConsistent(t, r)
}

func TestShopRegistry_DeregisterPrunesEmptyShop(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")
	b := newTestConn("b", "shop1")
	require.NoError(t, r.Register(a, "shop1"))
	require.NoError(t, r.Register(b, "shop1"))

	shop, ok := r.Deregister(a)
	assert.True(t, ok)
	assert.Equal(t, "shop1", shop)
	assert.ElementsMatch(t, []*Conn{b}, r.MembersOf("shop1"))

	_, ok = r.Deregister(b)
	assert.True(t, ok)

	shops, conns := r.Stats()
	assert.Zero(t, shops, "empty shop must not stay resident")
	assert.Zero(t, conns)
	assertConsistent(t, r)
}

func TestShopRegistry_DeregisterUnknownIsNoop(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")
	require.NoError(t, r.Register(a, "shop1"))

	_, ok := r.Deregister(newTestConn("ghost", "shop1"))
	assert.False(t, ok)

	_, ok = r.Deregister(a)
	assert.True(t, ok)
	_, ok = r.Deregister(a)
	assert.False(t, ok, "second deregister is a no-op")
	assertConsistent(t, r)
}

func TestShopRegistry_MembersOfIsSnapshot(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")
	require.NoError(t, r.Register(a, "shop1"))

	members := r.MembersOf("shop1")
	r.Deregister(a)

	assert.Len(t, members, 1, "snapshot is not affected by later changes")
	assert.Empty(t, r.MembersOf("shop1"))
}

func TestShopRegistry_Concurrent(t *testing.T) {
	r := NewShopRegistry()

	const workers = 16
	const perWorker = 100

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			shop := fmt.Sprintf("shop%d", w%4)
			for i := range perWorker {
				c := newTestConn(fmt.Sprintf("%d-%d", w, i), shop)
				assert.NoError(t, r.Register(c, shop))
				_ = r.MembersOf(shop)
				if i%2 == 0 {
					r.Deregister(c)
				}
			}
		}()
	}
	wg.Wait()

	shops, conns := r.Stats()
	assert.Equal(t, 4, shops)
	assert.Equal(t, workers*perWorker/2, conns)
	assertConsistent(t, r)

	for _, c := range r.Clients() {
		r.Deregister(c)
	}
	shops, conns = r.Stats()
	assert.Zero(t, shops)
	assert.Zero(t, conns)
}

func TestShopRegistry_Close(t *testing.T) {
	r := NewShopRegistry()
	a := newTestConn("a", "shop1")
	b := newTestConn("b", "shop2")
	require.NoError(t, r.Register(a, "shop1"))
	require.NoError(t, r.Register(b, "shop2"))

	assert.Equal(t, 2, r.Close(websocket.CloseGoingAway, "bye"))

	shops, conns := r.Stats()
	assert.Zero(t, shops)
	assert.Zero(t, conns)
	assert.Equal(t, StateClosed, a.State())
	assert.Equal(t, StateClosed, b.State())
	assertConsistent(t, r)

	assert.Zero(t, r.Close(websocket.CloseGoingAway, "bye"), "second close finds nothing")
}
