package shortlink

import (
	"context"

	"github.com/jaevor/go-nanoid"
)

const codeAlphabet = "0123456789abcdef"

// CodeGenerator produces fixed-length lowercase hex short codes.
type CodeGenerator func() string

// NewCodeGenerator creates a generator for codes of the given length.
func NewCodeGenerator(length int) (CodeGenerator, error) {
	gen, err := nanoid.CustomASCII(codeAlphabet, length)
	if err != nil {
		return nil, err
	}

	return CodeGenerator(gen), nil
}

// GenerateUniqueCode generates codes until one is free in the repository.
func GenerateUniqueCode(ctx context.Context, repo LinkRepository, generate CodeGenerator) (string, error) {
	for {
		code := generate()

		exists, err := repo.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}

		if !exists {
			return code, nil
		}
	}
}
