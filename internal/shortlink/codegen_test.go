package shortlink_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serroba/linkboard/internal/shortlink"
)

type fakeCodeChecker struct {
	shortlink.LinkRepository

	taken   map[string]bool
	queries []string
	err     error
}

func (f *fakeCodeChecker) CodeExists(_ context.Context, code string) (bool, error) {
	f.queries = append(f.queries, code)

	if f.err != nil {
		return false, f.err
	}

	return f.taken[code], nil
}

func TestNewCodeGenerator(t *testing.T) {
	t.Run("generates codes of the requested length", func(t *testing.T) {
		generate, err := shortlink.NewCodeGenerator(8)

		require.NoError(t, err)
		assert.Len(t, generate(), 8)
	})

	t.Run("generates lowercase hex codes", func(t *testing.T) {
		generate, err := shortlink.NewCodeGenerator(16)
		require.NoError(t, err)

		code := generate()
		for _, r := range code {
			assert.Contains(t, "0123456789abcdef", string(r))
		}
	})

	t.Run("rejects invalid lengths", func(t *testing.T) {
		_, err := shortlink.NewCodeGenerator(0)

		assert.Error(t, err)
	})
}

func TestGenerateUniqueCode(t *testing.T) {
	t.Run("returns first free code", func(t *testing.T) {
		repo := &fakeCodeChecker{taken: map[string]bool{}}
		generate, err := shortlink.NewCodeGenerator(8)
		require.NoError(t, err)

		code, err := shortlink.GenerateUniqueCode(context.Background(), repo, generate)

		require.NoError(t, err)
		assert.Len(t, code, 8)
		assert.Len(t, repo.queries, 1)
	})

	t.Run("retries on collision", func(t *testing.T) {
		codes := []string{"aaaaaaaa", "aaaaaaaa", "bbbbbbbb"}
		i := 0
		generate := shortlink.CodeGenerator(func() string {
			code := codes[i]
			i++

			return code
		})

		repo := &fakeCodeChecker{taken: map[string]bool{"aaaaaaaa": true}}

		code, err := shortlink.GenerateUniqueCode(context.Background(), repo, generate)

		require.NoError(t, err)
		assert.Equal(t, "bbbbbbbb", code)
		assert.Len(t, repo.queries, 3)
	})

	t.Run("propagates store errors", func(t *testing.T) {
		repo := &fakeCodeChecker{err: errors.New("store down")}
		generate, err := shortlink.NewCodeGenerator(8)
		require.NoError(t, err)

		_, err = shortlink.GenerateUniqueCode(context.Background(), repo, generate)

		assert.Error(t, err)
	})
}
