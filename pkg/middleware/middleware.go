package middleware

import (
	"context"
	"log/slog"

	"github.com/vango-dev/livecoll/pkg/protocol"
)

// Middleware wraps a sink with additional behavior.
type Middleware func(next protocol.Sink) protocol.Sink

// Chain composes middlewares. The first middleware sees each event first.
func Chain(mws ...Middleware) Middleware {
	return func(next protocol.Sink) protocol.Sink {
		for i := len(mws) - 1; i >= 0; i-- {
			if mws[i] != nil {
				next = mws[i](next)
			}
		}
		return next
	}
}

// Logging logs every event at debug level.
func Logging(logger *slog.Logger) Middleware {
	return func(next protocol.Sink) protocol.Sink {
		return func(ev protocol.Event) {
			if logger.Enabled(context.Background(), slog.LevelDebug) {
				attrs := []any{
					"collection", ev.Collection,
					"seq", ev.Seq,
					"kind", ev.Kind.String(),
				}
				if ev.Shape == protocol.ShapeMap {
					attrs = append(attrs, "key", ev.Key)
				} else {
					attrs = append(attrs, "index", ev.Index)
				}
				logger.Debug("event", attrs...)
			}
			next(ev)
		}
	}
}
