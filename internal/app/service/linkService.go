package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/models"
	"github.com/emarzona/shortlinks/internal/storage"
)

type LinkService struct {
	storage      Storage
	resolver     *Resolver
	orchestrator *Orchestrator
	logger       *zap.Logger
}

func NewLinkService(store Storage, clicks ClickRecorder, logger *zap.Logger) *LinkService {
	resolver := NewResolver(store, clicks, logger)

	return &LinkService{
		storage:      store,
		resolver:     resolver,
		orchestrator: NewOrchestrator(resolver, logger),
		logger:       logger,
	}
}

// WithClock replaces the time source of the underlying resolver.
func (s *LinkService) WithClock(now func() time.Time) *LinkService {
	s.resolver.WithClock(now)
	return s
}

func (s *LinkService) Resolve(ctx context.Context, code string) (string, error) {
	return s.resolver.Resolve(ctx, code)
}

func (s *LinkService) Redirect(ctx context.Context, code string) Outcome {
	return s.orchestrator.Run(ctx, code)
}

// Stats reports counters of the most recent record with code, whether or
// not it is currently resolvable.
func (s *LinkService) Stats(ctx context.Context, code string) (*models.LinkStats, error) {
	link, err := s.storage.FindByCode(ctx, code)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, &ResolveError{Kind: KindNotFound, Code: code}
	}
	if err != nil {
		s.logger.Error("stats lookup failed", zap.String("code", code), zap.Error(err))
		return nil, &ResolveError{Kind: KindInfrastructure, Code: code, Err: err}
	}

	return &models.LinkStats{
		Code:        link.Code,
		TargetURL:   link.TargetURL,
		IsActive:    link.IsActive,
		ExpiresAt:   link.ExpiresAt,
		TotalClicks: link.TotalClicks,
		LastUsedAt:  link.LastUsedAt,
		CreatedAt:   link.CreatedAt,
	}, nil
}

func (s *LinkService) PingContext(ctx context.Context) error {
	return s.storage.PingContext(ctx)
}
