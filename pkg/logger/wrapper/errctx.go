package wrap

import (
	"context"
	"errors"
)

// errorWithLogCtx carries the log context of the place an error was raised.
type errorWithLogCtx struct {
	err    error
	logCtx LogCtx
}

func (e *errorWithLogCtx) Error() string { return e.err.Error() }
func (e *errorWithLogCtx) Unwrap() error { return e.err }

// LogCtxOf returns the log context attached to err anywhere in its chain.
func LogCtxOf(err error) (LogCtx, bool) {
	var e *errorWithLogCtx
	if !errors.As(err, &e) || e == nil {
		return LogCtx{}, false
	}
	return e.logCtx, true
}

// ErrorCtx layers the log context carried by err over the one in ctx.
// Fields the error does not know about (a request id set by the caller, say) survive.
func ErrorCtx(ctx context.Context, err error) context.Context {
	lc, ok := LogCtxOf(err)
	if !ok {
		return ctx
	}
	return WithLogCtx(ctx, lc)
}
