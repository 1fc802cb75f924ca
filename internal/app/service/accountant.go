package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultClickTimeout bounds a single click increment.
const DefaultClickTimeout = 3 * time.Second

// ClickAccountant increments click counters inline. Failures are logged
// and swallowed, and the increment outlives cancellation of the request
// that triggered it.
type ClickAccountant struct {
	store   ClickStore
	logger  *zap.Logger
	timeout time.Duration
}

func NewClickAccountant(store ClickStore, logger *zap.Logger, timeout time.Duration) *ClickAccountant {
	if timeout <= 0 {
		timeout = DefaultClickTimeout
	}
	return &ClickAccountant{
		store:   store,
		logger:  logger,
		timeout: timeout,
	}
}

func (a *ClickAccountant) RecordClick(ctx context.Context, id string, at time.Time) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.timeout)
	defer cancel()

	if err := a.store.IncrementClick(ctx, id, at); err != nil {
		a.logger.Error("failed to record click", zap.String("id", id), zap.Error(err))
	}
}
