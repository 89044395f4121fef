package wrap

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithLogCtx_MergesExisting(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithLogCtx(ctx, LogCtx{Action: "relay_connection", ShopName: "shop1"})

	lc := FromContext(ctx)
	assert.Equal(t, "req-1", lc.RequestID)
	assert.Equal(t, "relay_connection", lc.Action)
	assert.Equal(t, "shop1", lc.ShopName)
}

func TestError_KeepsChainAndCtx(t *testing.T) {
	sentinel := errors.New("boom")
	ctx := WithConnID(context.Background(), "c1")

	err := Error(ctx, sentinel)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, "c1", FromContext(ErrorCtx(context.Background(), err)).ConnID)

	// rewrapping refreshes the stored context
	err = Error(WithConnID(context.Background(), "c2"), err)
	assert.Equal(t, "c2", FromContext(ErrorCtx(context.Background(), err)).ConnID)
	assert.ErrorIs(t, err, sentinel)
}

func TestError_Nil(t *testing.T) {
	assert.NoError(t, Error(context.Background(), nil))
}

func TestErrorCtx_LayersOverCallerCtx(t *testing.T) {
	err := Error(WithLogCtx(context.Background(), LogCtx{Action: "verify_token", ConnID: "c1"}), errors.New("expired"))

	caller := WithLogCtx(context.Background(), LogCtx{Action: "relay_connection", RequestID: "req-9"})
	lc := FromContext(ErrorCtx(caller, err))

	assert.Equal(t, "verify_token", lc.Action, "the error's fields win")
	assert.Equal(t, "c1", lc.ConnID)
	assert.Equal(t, "req-9", lc.RequestID, "fields the error lacks are kept")
}

func TestErrorCtx_PlainError(t *testing.T) {
	caller := WithRequestID(context.Background(), "req-1")

	assert.Equal(t, caller, ErrorCtx(caller, errors.New("plain")))
	_, ok := LogCtxOf(errors.New("plain"))
	assert.False(t, ok)
}
