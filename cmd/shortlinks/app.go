package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/app/server"
	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/config"
	"github.com/emarzona/shortlinks/internal/repository"
	"github.com/emarzona/shortlinks/internal/storage"
	"github.com/emarzona/shortlinks/internal/worker"
)

type importer interface {
	Import(ctx context.Context, links []storage.ShortLink) error
}

type putter interface {
	Put(ctx context.Context, link storage.ShortLink) (*storage.ShortLink, error)
}

// app holds the long lived components shared by the HTTP and gRPC servers.
type app struct {
	store   service.Storage
	worker  *worker.ClickWorker
	service *service.LinkService
	auth    service.AuthIface
	logger  *zap.Logger
	closers []func() error
}

func newApp(ctx context.Context, opts *config.Options, logger *zap.Logger) (*app, error) {
	a := &app{logger: logger}

	if err := a.openStore(ctx, opts); err != nil {
		a.Close()
		return nil, err
	}

	if opts.SeedPath != "" {
		if err := a.seed(ctx, opts.SeedPath); err != nil {
			a.Close()
			return nil, err
		}
	}

	var clicks service.ClickRecorder
	if opts.ClickWorkers > 0 {
		a.worker = worker.NewClickWorker(logger, a.store, opts.ClickWorkers, opts.ClickQueueSize, opts.ClickTimeout)
		a.worker.Start()
		clicks = a.worker
	} else {
		clicks = service.NewClickAccountant(a.store, logger, opts.ClickTimeout)
	}

	a.service = service.NewLinkService(a.store, clicks, logger)

	if opts.AuthSecret != "" {
		a.auth = service.NewAuth(opts.AuthSecret)
	}

	return a, nil
}

func (a *app) openStore(ctx context.Context, opts *config.Options) error {
	switch {
	case opts.DatabaseDSN != "":
		a.logger.Info("using postgres registry")
		db, err := repository.InitDB(opts.DatabaseDSN, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, db.Close)
		a.store = repository.CreateShortLinkRepository(db, a.logger)

	case opts.RedisAddr != "":
		a.logger.Info("using redis registry", zap.String("addr", opts.RedisAddr))
		client, err := newRedisClient(opts.RedisAddr)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		a.store = storage.NewRedisStorage(client, a.logger)

	case opts.FilePath != "":
		a.logger.Info("using journal file registry", zap.String("path", opts.FilePath))
		fs, err := storage.NewFileStorage(opts.FilePath, a.logger)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, fs.Close)
		a.store = fs

	default:
		a.logger.Info("using in memory registry")
		mem, err := storage.CreateMemoryStorage()
		if err != nil {
			return err
		}
		a.store = mem
	}

	return nil
}

func newRedisClient(addr string) (*redis.Client, error) {
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opt, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opt), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// seed loads fixture links. Records already present are left untouched, so
// restarting with the same seed file is harmless.
func (a *app) seed(ctx context.Context, path string) error {
	links, err := storage.ReadSeed(path)
	if err != nil {
		return err
	}

	switch s := a.store.(type) {
	case importer:
		err := s.Import(ctx, links)
		if errors.Is(err, storage.ErrConflict) {
			a.logger.Warn("seed skipped, records already exist", zap.String("path", path))
			return nil
		}
		if err != nil {
			return fmt.Errorf("import seed: %w", err)
		}

	case putter:
		for _, l := range links {
			_, err := s.Put(ctx, l)
			if errors.Is(err, storage.ErrConflict) {
				continue
			}
			if err != nil {
				return fmt.Errorf("seed %q: %w", l.Code, err)
			}
		}

	default:
		return fmt.Errorf("registry %T cannot be seeded", a.store)
	}

	a.logger.Info("seed loaded", zap.String("path", path), zap.Int("links", len(links)))
	return nil
}

func (a *app) router(opts *config.Options) http.Handler {
	return server.Init(a.service, a.auth, opts.TrustedSubnet, a.logger)
}

// Close drains pending clicks before releasing the registry.
func (a *app) Close() {
	if a.worker != nil {
		a.worker.Stop()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Error("close failed", zap.Error(err))
		}
	}
}
