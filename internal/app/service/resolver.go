// Package service implements short link resolution, click accounting and
// the redirect flow built on top of them.
package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/storage"
)

// Resolver maps a candidate code to a target URL and hands successful
// resolutions to a ClickRecorder.
type Resolver struct {
	finder ResolvableFinder
	clicks ClickRecorder
	logger *zap.Logger
	now    func() time.Time
}

func NewResolver(finder ResolvableFinder, clicks ClickRecorder, logger *zap.Logger) *Resolver {
	return &Resolver{
		finder: finder,
		clicks: clicks,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock replaces the time source used for expiry checks and click timestamps.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// Resolve returns the target URL of the live record matching candidate
// case-insensitively, or a *ResolveError. Click accounting happens before
// returning but its outcome never changes the result.
func (r *Resolver) Resolve(ctx context.Context, candidate string) (string, error) {
	now := r.now()

	link, err := r.finder.FindResolvable(ctx, candidate, now)
	if errors.Is(err, storage.ErrNotFound) || (err == nil && link == nil) {
		return "", &ResolveError{Kind: KindNotFound, Code: candidate}
	}
	if err != nil {
		r.logger.Error("short link lookup failed", zap.String("code", candidate), zap.Error(err))
		return "", &ResolveError{Kind: KindInfrastructure, Code: candidate, Err: err}
	}

	if !link.IsActive || storage.NormalizeCode(link.Code) != storage.NormalizeCode(candidate) {
		return "", &ResolveError{Kind: KindNotFound, Code: candidate}
	}
	if link.Expired(now) {
		return "", &ResolveError{Kind: KindExpired, Code: candidate}
	}

	r.clicks.RecordClick(ctx, link.ID, now)

	return link.TargetURL, nil
}
