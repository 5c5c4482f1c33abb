package error_notificator

import (
	"context"

	"go.uber.org/zap"
)

// Service always logs the alert and forwards it to infra when one is set.
type Service struct {
	infra Notificator
	log   *zap.Logger
}

func NewService(infra Notificator, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{infra: infra, log: log.Named("error_notificator")}
}

// SetInfra attaches the sender once the bot is up.
func (s *Service) SetInfra(infra Notificator) {
	s.infra = infra
}

func (s *Service) Notify(ctx context.Context, err error, details string) error {
	s.log.Error("turn failed", zap.Error(err), zap.String("details", details))
	if s.infra == nil {
		return nil
	}
	if sendErr := s.infra.Notify(ctx, err, details); sendErr != nil {
		s.log.Warn("admin alert not delivered", zap.Error(sendErr))
		return sendErr
	}
	return nil
}
