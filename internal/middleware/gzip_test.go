package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithGzipResponse(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		expectGzip     bool
	}{
		{"gzip accepted", "gzip, deflate", true},
		{"no gzip accepted", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"target_url":"https://x.example"}`))
			})

			req := httptest.NewRequest(http.MethodGet, "/api/resolve/A", nil)
			req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			rec := httptest.NewRecorder()

			WithGzipResponse(handler).ServeHTTP(rec, req)
			resp := rec.Result()
			defer resp.Body.Close()

			var body []byte
			if tt.expectGzip {
				require.Equal(t, "gzip", resp.Header.Get("Content-Encoding"))
				gr, err := gzip.NewReader(resp.Body)
				require.NoError(t, err)
				body, err = io.ReadAll(gr)
				require.NoError(t, err)
			} else {
				assert.Empty(t, resp.Header.Get("Content-Encoding"))
				body, _ = io.ReadAll(resp.Body)
			}
			assert.Equal(t, `{"target_url":"https://x.example"}`, string(body))
		})
	}
}

func TestWithGzipRequest(t *testing.T) {
	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	_, _ = gw.Write([]byte(`{"code":"ROGE"}`))
	require.NoError(t, gw.Close())

	var got string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/resolve", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	rec := httptest.NewRecorder()
	WithGzipRequest(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"code":"ROGE"}`, got)

	req = httptest.NewRequest(http.MethodPost, "/api/resolve", bytes.NewBufferString("plain"))
	req.Header.Set("Content-Encoding", "gzip")
	rec = httptest.NewRecorder()
	WithGzipRequest(handler).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
