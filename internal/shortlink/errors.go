package shortlink

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrSlugTaken is returned when a custom slug collides with an existing
	// short code. The database unique constraint is the backstop; stores map
	// the constraint violation to this error.
	ErrSlugTaken = errors.New("custom slug is already taken")

	// ErrDomainTaken is returned when a custom domain is already registered.
	ErrDomainTaken = errors.New("domain is already registered")
)
