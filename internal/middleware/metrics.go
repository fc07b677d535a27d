package middleware

import (
	"context"
	"errors"
	"time"

	"connectrpc.com/connect"

	apperrors "github.com/mmynk/osusu/internal/errors"
	"github.com/mmynk/osusu/internal/metrics"
)

// MetricsInterceptor counts every RPC by procedure and result code and observes its latency.
func MetricsInterceptor(m *metrics.Metrics) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			resp, err := next(ctx, req)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
				if errors.Is(err, apperrors.ErrVersionConflict) {
					m.VersionConflicts.Inc()
				}
			}
			m.RPCRequests.WithLabelValues(procedure, code).Inc()
			m.RPCDuration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())

			return resp, err
		}
	}
}
