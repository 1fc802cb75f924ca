package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/config"
	"github.com/emarzona/shortlinks/internal/models"
)

const seedFixture = `{"id":"11111111-1111-1111-1111-111111111111","code":"ROGE","target_url":"https://shop.example/p/1","is_active":true,"created_at":"2025-01-01T00:00:00Z"}
{"id":"22222222-2222-2222-2222-222222222222","code":"OLD","target_url":"https://shop.example/p/2","is_active":true,"expires_at":"2020-01-01T00:00:00Z","created_at":"2019-01-01T00:00:00Z"}
{"id":"33333333-3333-3333-3333-333333333333","code":"OFF","target_url":"https://shop.example/p/3","is_active":false,"created_at":"2025-01-01T00:00:00Z"}
`

func testOptions(t *testing.T, workers int) *config.Options {
	t.Helper()
	seed := filepath.Join(t.TempDir(), "seed.jsonl")
	require.NoError(t, os.WriteFile(seed, []byte(seedFixture), 0o600))

	opts := config.Default()
	opts.SeedPath = seed
	opts.ClickWorkers = workers
	return opts
}

func noRedirect(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

func getStats(t *testing.T, client *http.Client, base, code string) models.LinkStats {
	t.Helper()
	resp, err := client.Get(base + "/api/links/" + code + "/stats")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var stats models.LinkStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	return stats
}

func TestRedirectFlow(t *testing.T) {
	for _, workers := range []int{0, 3} {
		t.Run(map[int]string{0: "inline accounting", 3: "worker accounting"}[workers], func(t *testing.T) {
			opts := testOptions(t, workers)
			a, err := newApp(context.Background(), opts, zap.NewNop())
			require.NoError(t, err)

			srv := httptest.NewServer(a.router(opts))
			defer srv.Close()
			client := &http.Client{CheckRedirect: noRedirect}

			tests := []struct {
				path     string
				status   int
				location string
			}{
				{path: "/ROGE", status: http.StatusTemporaryRedirect, location: "https://shop.example/p/1"},
				{path: "/roge", status: http.StatusTemporaryRedirect, location: "https://shop.example/p/1"},
				{path: "/old", status: http.StatusGone},
				{path: "/off", status: http.StatusNotFound},
				{path: "/missing", status: http.StatusNotFound},
			}
			for _, tt := range tests {
				resp, err := client.Get(srv.URL + tt.path)
				require.NoError(t, err)
				resp.Body.Close()
				assert.Equal(t, tt.status, resp.StatusCode, tt.path)
				assert.Equal(t, tt.location, resp.Header.Get("Location"), tt.path)
			}

			const n = 50
			var wg sync.WaitGroup
			for i := 0; i < n; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					resp, err := client.Get(srv.URL + "/api/resolve/Roge")
					if assert.NoError(t, err) {
						resp.Body.Close()
						assert.Equal(t, http.StatusOK, resp.StatusCode)
					}
				}()
			}
			wg.Wait()

			// drains the worker queue
			a.Close()

			stats := getStats(t, client, srv.URL, "roge")
			assert.EqualValues(t, n+2, stats.TotalClicks)
			assert.NotNil(t, stats.LastUsedAt)
			assert.Zero(t, getStats(t, client, srv.URL, "old").TotalClicks)
		})
	}
}

func TestFileRegistrySurvivesRestart(t *testing.T) {
	opts := testOptions(t, 0)
	opts.FilePath = filepath.Join(t.TempDir(), "links.jsonl")
	client := &http.Client{CheckRedirect: noRedirect}

	for round := 1; round <= 2; round++ {
		a, err := newApp(context.Background(), opts, zap.NewNop())
		require.NoError(t, err)
		srv := httptest.NewServer(a.router(opts))

		resp, err := client.Get(srv.URL + "/ROGE")
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)

		assert.EqualValues(t, round, getStats(t, client, srv.URL, "ROGE").TotalClicks)

		srv.Close()
		a.Close()
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	opts := testOptions(t, 1)
	opts.ServerAddress = "127.0.0.1:0"
	opts.GRPCAddress = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, opts, zap.NewNop()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop")
	}
}
