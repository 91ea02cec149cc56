package health_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serroba/linkboard/internal/health"
)

type stubChecker struct {
	err error
}

func (s *stubChecker) Ping(context.Context) error {
	return s.err
}

func TestHealthCheck(t *testing.T) {
	t.Run("all dependencies healthy", func(t *testing.T) {
		handler := health.NewHandler(&stubChecker{}, &stubChecker{})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "ok", resp.Body.Status)
		assert.Equal(t, "healthy", resp.Body.Postgres)
		assert.Equal(t, "healthy", resp.Body.Redis)
	})

	t.Run("postgres down degrades status", func(t *testing.T) {
		handler := health.NewHandler(&stubChecker{err: errors.New("connection refused")}, &stubChecker{})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.Postgres)
		assert.Equal(t, "healthy", resp.Body.Redis)
	})

	t.Run("redis down degrades status", func(t *testing.T) {
		handler := health.NewHandler(&stubChecker{}, &stubChecker{err: errors.New("connection refused")})

		resp, err := handler.Check(context.Background(), nil)

		require.NoError(t, err)
		assert.Equal(t, "degraded", resp.Body.Status)
		assert.Equal(t, "unhealthy", resp.Body.Redis)
	})
}
