package mcp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/stepwise/internal/auth"
)

const maxLoggedArgs = 512

// callLogging logs every non-notification call at debug level. Tool failures
// come back as results rather than errors, so they are flagged separately.
func callLogging(logger *slog.Logger, direction string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if !logger.Enabled(ctx, slog.LevelDebug) || strings.HasPrefix(method, "notifications/") {
				return next(ctx, method, req)
			}

			attrs := []any{"direction", direction, "method", method}
			if call, ok := req.(*sdkmcp.CallToolRequest); ok && call.Params != nil {
				attrs = append(attrs, "tool", call.Params.Name, "args", truncate(string(call.Params.Arguments), maxLoggedArgs))
			}
			if session, ok := auth.FromContext(ctx); ok {
				attrs = append(attrs, "user_id", session.UserID)
			}

			started := time.Now()
			result, err := next(ctx, method, req)
			attrs = append(attrs, "duration", time.Since(started))
			if res, ok := result.(*sdkmcp.CallToolResult); ok && res.IsError {
				attrs = append(attrs, "tool_error", true)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			}
			logger.Debug("mcp call", attrs...)
			return result, err
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
