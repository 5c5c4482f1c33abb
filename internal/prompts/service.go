package prompts

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

type service struct {
	repo Repo
	name string
	log  *zap.Logger
}

// NewService resolves the persona by name. repo may be nil, in which case the
// built-in tutor persona is always used.
func NewService(repo Repo, name string, log *zap.Logger) Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &service{repo: repo, name: name, log: log.Named("prompts")}
}

func (s *service) Persona(ctx context.Context) string {
	if s.repo == nil {
		return DefaultPersona
	}

	p, err := s.repo.GetByName(ctx, s.name)
	if err != nil {
		s.log.Warn("persona lookup failed, using default", zap.String("name", s.name), zap.Error(err))
		return DefaultPersona
	}
	if strings.TrimSpace(p) == "" {
		return DefaultPersona
	}
	return p
}
