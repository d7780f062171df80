package mcp

import (
	"context"
	"fmt"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stepwise/internal/auth"
)

// authMiddleware verifies the bearer token on every request except the
// protocol handshake.
func authMiddleware(tokens *auth.TokenManager) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if method == "initialize" || method == "ping" || method == "notifications/initialized" {
				return next(ctx, method, req)
			}

			extra := req.GetExtra()
			if extra == nil || extra.Header == nil {
				return nil, fmt.Errorf("unauthorized: missing headers")
			}
			if tokens == nil {
				return nil, fmt.Errorf("unauthorized: token verification not configured")
			}

			session, err := tokens.Parse(auth.BearerToken(extra.Header.Get("Authorization")))
			if err != nil {
				return nil, fmt.Errorf("unauthorized: %w", err)
			}
			return next(auth.WithSession(ctx, session), method, req)
		}
	}
}

// staticSessionMiddleware acts as a fixed user.
func staticSessionMiddleware(session *auth.Session) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if session != nil {
				ctx = auth.WithSession(ctx, session)
			}
			return next(ctx, method, req)
		}
	}
}

// userID returns the caller's user id or an unauthorized error.
func userID(ctx context.Context) (string, error) {
	session, ok := auth.FromContext(ctx)
	if !ok || session.UserID == "" {
		return "", &APIError{Code: "UNAUTHORIZED", Message: "no authenticated user", RecoveryHint: "Pass a bearer token from /api/auth/login"}
	}
	return session.UserID, nil
}
