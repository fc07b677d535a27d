package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	apperrors "github.com/mmynk/osusu/internal/errors"
)

// callInfoKey holds a *callInfo that interceptors further down the chain fill in.
const callInfoKey contextKey = "call_info"

type callInfo struct {
	userID string
}

func noteCaller(ctx context.Context, userID string) {
	if info, ok := ctx.Value(callInfoKey).(*callInfo); ok {
		info.userID = userID
	}
}

// LoggingInterceptor logs one line per RPC. Domain rejections (not found, not admin, invalid
// input) log at Warn, failures that are the server's fault at Error.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			info := &callInfo{userID: GetUserID(ctx)}
			start := time.Now()

			resp, err := next(context.WithValue(ctx, callInfoKey, info), req)

			attrs := []slog.Attr{
				slog.String("procedure", req.Spec().Procedure),
				slog.String("peer", req.Peer().Addr),
				slog.String("user_id", info.userID),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			}
			level, msg := slog.LevelInfo, "RPC ok"
			if err != nil {
				code := connect.CodeOf(err)
				level, msg = levelFor(code), "RPC error"
				attrs = append(attrs, slog.String("code", code.String()), slog.String("error", err.Error()))

				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					if kind := connectErr.Meta().Get(apperrors.MetaKind); kind != "" {
						attrs = append(attrs,
							slog.String("kind", kind),
							slog.String("reason", connectErr.Meta().Get(apperrors.MetaReason)),
						)
					}
				}
			}
			slog.LogAttrs(ctx, level, msg, attrs...)

			return resp, err
		}
	}
}

func levelFor(code connect.Code) slog.Level {
	switch code {
	case connect.CodeInternal, connect.CodeUnknown, connect.CodeDataLoss, connect.CodeUnavailable:
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
