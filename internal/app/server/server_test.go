package server_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/app/server"
	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/mocks"
	"github.com/emarzona/shortlinks/internal/models"
)

func TestInit_Routes(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := mocks.NewMockLinkServiceIface(ctrl)
	auth := service.NewAuth("secret")
	token, err := auth.BuildJWTString("ops")
	assert.NoError(t, err)

	svc.EXPECT().Redirect(gomock.Any(), "ROGE").Return(service.Outcome{State: service.StateRedirecting, TargetURL: "https://x.example"})
	svc.EXPECT().Resolve(gomock.Any(), "ROGE").Return("https://x.example", nil).Times(2)
	svc.EXPECT().Stats(gomock.Any(), "ROGE").Return(&models.LinkStats{Code: "ROGE"}, nil)
	svc.EXPECT().PingContext(gomock.Any()).Return(nil)

	r := server.Init(svc, auth, "10.0.0.0/8", zap.NewNop())

	tests := []struct {
		name   string
		method string
		target string
		body   string
		header map[string]string
		status int
	}{
		{name: "redirect", method: http.MethodGet, target: "/ROGE", status: http.StatusTemporaryRedirect},
		{name: "resolve by path", method: http.MethodGet, target: "/api/resolve/ROGE", status: http.StatusOK},
		{name: "resolve json", method: http.MethodPost, target: "/api/resolve", body: `{"code":"ROGE"}`, status: http.StatusOK},
		{name: "stats allowed", method: http.MethodGet, target: "/api/links/ROGE/stats",
			header: map[string]string{"X-Real-IP": "10.0.0.1", "Authorization": "Bearer " + token}, status: http.StatusOK},
		{name: "stats outside subnet", method: http.MethodGet, target: "/api/links/ROGE/stats",
			header: map[string]string{"X-Real-IP": "8.8.8.8", "Authorization": "Bearer " + token}, status: http.StatusForbidden},
		{name: "stats without token", method: http.MethodGet, target: "/api/links/ROGE/stats",
			header: map[string]string{"X-Real-IP": "10.0.0.1"}, status: http.StatusUnauthorized},
		{name: "ping", method: http.MethodGet, target: "/ping", status: http.StatusOK},
		{name: "root", method: http.MethodGet, target: "/", status: http.StatusBadRequest},
		{name: "method not allowed", method: http.MethodDelete, target: "/ROGE", status: http.StatusMethodNotAllowed},
		{name: "unknown route", method: http.MethodGet, target: "/a/b/c", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body))
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
		})
	}
}
