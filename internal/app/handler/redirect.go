package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/app/service"
)

// RequestTimeout bounds the service call made by a single request.
const RequestTimeout = 3 * time.Second

type RedirectHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewRedirect(s service.LinkServiceIface, l *zap.Logger) *RedirectHandler {
	return &RedirectHandler{
		service: s,
		logger:  l,
	}
}

// ByCode follows a short link: 307 to the target, or a plain text page
// telling the visitor whether the link is gone or the service is failing.
func (h *RedirectHandler) ByCode(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), RequestTimeout)
	defer cancel()

	code := chi.URLParam(req, "code")

	out := h.service.Redirect(ctx, code)
	if out.State != service.StateRedirecting {
		kind := out.Reason()
		if out.Err == nil {
			kind = service.KindInfrastructure
		}
		h.logger.Info("redirect failed", zap.String("code", code), zap.Stringer("reason", kind))

		res.Header().Set("Cache-Control", "no-store")
		http.Error(res, kind.UserMessage(), StatusFor(kind))
		return
	}

	res.Header().Set("Cache-Control", "private, max-age=0")
	res.Header().Set("Location", out.TargetURL)
	res.WriteHeader(http.StatusTemporaryRedirect)
}
