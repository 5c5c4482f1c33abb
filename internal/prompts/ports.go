package prompts

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("persona not found")

type Repo interface {
	GetByName(ctx context.Context, name string) (string, error)
}

type Service interface {
	// Persona returns the system instruction new sessions are seeded with.
	Persona(ctx context.Context) string
}
