package obs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"mappy/internal/platform/metrics"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// WithRequestID stores the request id used by Time and the access log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDKey).(string)
	return id
}

// Time logs and records the duration of an operation. Use as
//
//	defer obs.Time(ctx, "osrm.Route")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	reqID := RequestID(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		outcome := "ok"
		fields := []zap.Field{
			zap.String("req_id", reqID),
			zap.String("op", name),
			zap.Int64("dur_ms", dur.Milliseconds()),
		}
		if errp != nil && *errp != nil {
			outcome = "error"
			fields = append(fields, zap.Error(*errp))
		}

		metrics.OperationDuration.WithLabelValues(name, outcome).Observe(dur.Seconds())
		zap.L().Debug("operation finished", fields...)
	}
}
