package handlers

import "context"

// RequestMeta holds HTTP request metadata captured by middleware: the
// resolved client IP, user agent, referer, and the request host used for
// domain-aware short code resolution.
type RequestMeta struct {
	ClientIP  string
	UserAgent string
	Referer   string
	Host      string
}

type requestMetaKey struct{}

// ContextWithRequestMeta adds request metadata to the context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from the context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}
