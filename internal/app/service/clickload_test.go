package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/config"
	"github.com/emarzona/shortlinks/internal/storage"
	"github.com/emarzona/shortlinks/internal/worker"
)

type slowClicks struct {
	*storage.MemoryStorage
	delay time.Duration
}

func (s *slowClicks) IncrementClick(ctx context.Context, id string, at time.Time) error {
	time.Sleep(s.delay)
	return s.MemoryStorage.IncrementClick(ctx, id, at)
}

func TestResolver_WorkerCountsEveryClickUnderLoad(t *testing.T) {
	const resolutions = 3000

	store := &slowClicks{
		MemoryStorage: seed(t, storage.ShortLink{ID: "1", Code: "HOT", TargetURL: "https://shop.example/hot", IsActive: true}),
		delay:         2 * time.Millisecond,
	}
	opts := config.Default()
	w := worker.NewClickWorker(zap.NewNop(), store, opts.ClickWorkers, opts.ClickQueueSize, opts.ClickTimeout)
	w.Start()

	r := service.NewResolver(store, w, zap.NewNop()).WithClock(clock)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for i := 0; i < resolutions; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve(context.Background(), "hot"); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	w.Stop()

	require.Empty(t, errs)
	assert.EqualValues(t, resolutions, clicks(t, store.MemoryStorage, "HOT"))
}
