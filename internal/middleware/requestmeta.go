// Package middleware contains the Huma middleware chain: request metadata
// capture and bearer authentication.
package middleware

import (
	"net"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkboard/internal/handlers"
)

// RequestMeta adds resolved client IP, user agent, referer, and host to the
// request context for the handlers and emitted events.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		meta := handlers.RequestMeta{
			ClientIP:  extractClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referer:   ctx.Header("Referer"),
			Host:      ctx.Host(),
		}

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

// extractClientIP resolves the client IP behind proxies. Precedence: CDN
// header, first X-Forwarded-For entry, X-Real-IP, X-Client-IP, then the
// socket address. IPv6 loopback is normalized to IPv4 for readability.
func extractClientIP(ctx huma.Context) string {
	ip := rawClientIP(ctx)

	if ip == "::1" {
		return "127.0.0.1"
	}

	return ip
}

func rawClientIP(ctx huma.Context) string {
	if cf := ctx.Header("CF-Connecting-IP"); cf != "" {
		return strings.TrimSpace(cf)
	}

	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// First entry is the original client
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	if xci := ctx.Header("X-Client-IP"); xci != "" {
		return strings.TrimSpace(xci)
	}

	addr := ctx.RemoteAddr()

	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}

	return host
}
