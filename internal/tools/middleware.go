package tools

import (
	"context"
	"log/slog"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// slowRequestThreshold is the duration above which requests are logged at
// WARN level.
const slowRequestThreshold = 30 * time.Second

// LoggingMiddleware returns middleware that logs every MCP request with its
// duration. Batch analysis can legitimately take a while, so the slow
// threshold is generous.
func LoggingMiddleware(logger *slog.Logger) mcp.Middleware {
	return func(next mcp.MethodHandler) mcp.MethodHandler {
		return func(ctx context.Context, method string, req mcp.Request) (mcp.Result, error) {
			start := time.Now()
			result, err := next(ctx, method, req)
			duration := time.Since(start)

			attrs := []any{
				"method", method,
				"duration_ms", duration.Milliseconds(),
			}

			switch {
			case err != nil:
				attrs = append(attrs, "error", err.Error())
				logger.Error("request failed", attrs...)
			case duration > slowRequestThreshold:
				logger.Warn("slow request", attrs...)
			default:
				logger.Debug("request completed", attrs...)
			}

			return result, err
		}
	}
}
