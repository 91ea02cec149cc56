package middleware

import (
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/linkboard/internal/auth"
	"go.uber.org/zap"
)

// Authenticate returns a Huma middleware that requires a valid bearer
// credential on every operation not marked public.
func Authenticate(api huma.API, verifier auth.Verifier, logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if isPublic(ctx) {
			next(ctx)

			return
		}

		header := ctx.Header("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized,
				"missing or invalid authorization header")

			return
		}

		credential := strings.TrimPrefix(header, "Bearer ")

		identity, err := verifier.Verify(ctx.Context(), credential)
		if err != nil {
			logger.Debug("credential verification failed", zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid credential")

			return
		}

		ctx = huma.WithContext(ctx, auth.ContextWithIdentity(ctx.Context(), identity))

		next(ctx)
	}
}

func isPublic(ctx huma.Context) bool {
	op := ctx.Operation()
	if op == nil || op.Metadata == nil {
		return false
	}

	public, ok := op.Metadata[auth.MetadataPublic].(bool)

	return ok && public
}
