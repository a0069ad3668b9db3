package middleware

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/tipsplit/internal/metrics"
)

// MetricsInterceptor records RPC latency by procedure and result code.
func MetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeUnknown.String()
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					code = connectErr.Code().String()
				}
			}
			m.RPCDuration.WithLabelValues(req.Spec().Procedure, code).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
