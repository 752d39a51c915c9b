package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"
)

// Dispatch runs handler in a new goroutine detached from the caller's
// cancellation. The caller's logger is carried over into the new context;
// panics are recovered and logged, and a returned error is logged rather
// than propagated. Each dispatched handler is fully independent of any
// other in flight.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := detach(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(bgCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(bgCtx); err != nil {
			ctxlog.From(bgCtx).Error("error in async handler", "error", err)
		}
	}()
}

// detach builds a background context that keeps the logger of ctx but none
// of its deadlines or cancellation.
func detach(ctx context.Context) context.Context {
	return ctxlog.With(context.Background(), ctxlog.From(ctx))
}
