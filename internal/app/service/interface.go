package service

import (
	"context"
	"time"

	"github.com/emarzona/shortlinks/internal/models"
	"github.com/emarzona/shortlinks/internal/storage"
)

// ResolvableFinder looks up the best active record for a code.
type ResolvableFinder interface {
	FindResolvable(ctx context.Context, code string, now time.Time) (*storage.ShortLink, error)
}

// ClickStore increments a link's click counter by exactly one.
type ClickStore interface {
	IncrementClick(ctx context.Context, id string, at time.Time) error
}

// Storage is the short link registry as seen by the service layer.
type Storage interface {
	ResolvableFinder
	ClickStore
	FindByCode(ctx context.Context, code string) (*storage.ShortLink, error)
	PingContext(ctx context.Context) error
}

// ClickRecorder records a successful resolution. It never reports failure
// to the caller.
type ClickRecorder interface {
	RecordClick(ctx context.Context, id string, at time.Time)
}

// LinkServiceIface is consumed by the HTTP and gRPC transports.
type LinkServiceIface interface {
	Resolve(ctx context.Context, code string) (string, error)
	Redirect(ctx context.Context, code string) Outcome
	Stats(ctx context.Context, code string) (*models.LinkStats, error)
	PingContext(ctx context.Context) error
}
