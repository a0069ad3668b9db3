package middleware

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"connectrpc.com/connect"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC call.
// It logs the procedure name, session ID, duration, and any error codes/messages.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			procedure := req.Spec().Procedure

			slot := new(string)
			resp, err := next(context.WithValue(ctx, sessionSlotKey{}, slot), req)

			sessionID := *slot
			if sessionID == "" {
				sessionID = sessionFromResponse(resp)
			}
			duration := time.Since(start).Milliseconds()
			if err != nil {
				var connectErr *connect.Error
				if errors.As(err, &connectErr) {
					slog.Warn("RPC error",
						"procedure", procedure,
						"code", connectErr.Code(),
						"error", connectErr.Message(),
						"session_id", sessionID,
						"duration_ms", duration,
					)
				} else {
					slog.Error("RPC error",
						"procedure", procedure,
						"error", err,
						"session_id", sessionID,
						"duration_ms", duration,
					)
				}
			} else {
				slog.Info("RPC ok",
					"procedure", procedure,
					"session_id", sessionID,
					"duration_ms", duration,
				)
			}

			return resp, err
		}
	}
}

// SessionHeader is set on responses that create or mutate a session so
// callers can tell which session was served. StartSession has no token, so
// the header is the only place its new session id is visible here.
const SessionHeader = "Tipsplit-Session"

// sessionSlotKey carries a *string that WithSessionID fills in, so the
// logging interceptor learns the session id resolved by inner interceptors.
type sessionSlotKey struct{}

func sessionFromResponse(resp connect.AnyResponse) string {
	if resp == nil {
		return ""
	}
	return resp.Header().Get(SessionHeader)
}
