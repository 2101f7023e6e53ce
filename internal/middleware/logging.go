package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call
// with its procedure, member, peer and duration. Client-side failures log at
// Warn with their code, internal failures at Error.
// It must run inside the auth interceptor to see the member.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			level, msg, attrs := rpcOutcome(err)
			attrs = append(attrs,
				slog.String("procedure", req.Spec().Procedure),
				slog.String("member_id", GetMemberID(ctx)), // empty if pre-auth
				slog.String("peer", req.Peer().Addr),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
			)
			slog.LogAttrs(ctx, level, msg, attrs...)

			return resp, err
		}
	}
}

func rpcOutcome(err error) (slog.Level, string, []slog.Attr) {
	if err == nil {
		return slog.LevelInfo, "RPC ok", nil
	}

	var connectErr *connect.Error
	if errors.As(err, &connectErr) && connectErr.Code() != connect.CodeInternal {
		return slog.LevelWarn, "RPC rejected", []slog.Attr{
			slog.String("code", connectErr.Code().String()),
			slog.String("error", connectErr.Message()),
		}
	}
	return slog.LevelError, "RPC failed", []slog.Attr{slog.Any("error", err)}
}
