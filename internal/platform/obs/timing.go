package obs

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stashes a request id on the context for downstream timing logs.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

// RequestID returns the request id stashed on the context, if any.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time measures an operation and logs its duration on completion, tagging
// any error the operation returned via the pointed-to error value.
//
//	defer obs.Time(ctx, log, "solve profile")(&err)
func Time(ctx context.Context, log *zap.Logger, name string) func(errp *error) {
	start := time.Now()
	reqID := RequestID(ctx)

	return func(errp *error) {
		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Duration("dur", time.Since(start)),
		}

		if errp != nil && *errp != nil {
			log.Warn("operation failed", append(fields, zap.Error(*errp))...)
			return
		}
		log.Debug("operation done", fields...)
	}
}
