package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/emarzona/shortlinks/internal/app/service"
	"github.com/emarzona/shortlinks/internal/models"
)

type APIHandler struct {
	service service.LinkServiceIface
	logger  *zap.Logger
}

func NewAPI(s service.LinkServiceIface, l *zap.Logger) *APIHandler {
	return &APIHandler{
		service: s,
		logger:  l,
	}
}

// ResolveByPath handles GET /api/resolve/{code}.
func (h *APIHandler) ResolveByPath(res http.ResponseWriter, req *http.Request) {
	h.resolve(res, req, chi.URLParam(req, "code"))
}

// ResolveJSON handles POST /api/resolve with a models.ResolveRequest body.
func (h *APIHandler) ResolveJSON(res http.ResponseWriter, req *http.Request) {
	var body models.ResolveRequest
	if err := decodeJSONBody(res, req, &body); err != nil {
		writeMalformed(res, h.logger, err)
		return
	}

	h.resolve(res, req, body.Code)
}

func (h *APIHandler) resolve(res http.ResponseWriter, req *http.Request, code string) {
	ctx, cancel := context.WithTimeout(req.Context(), RequestTimeout)
	defer cancel()

	target, err := h.service.Resolve(ctx, code)
	if err != nil {
		writeResolveError(res, h.logger, err)
		return
	}

	writeJSON(res, h.logger, http.StatusOK, models.ResolveResponse{TargetURL: target})
}

// Stats handles GET /api/links/{code}/stats.
func (h *APIHandler) Stats(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), RequestTimeout)
	defer cancel()

	stats, err := h.service.Stats(ctx, chi.URLParam(req, "code"))
	if err != nil {
		writeResolveError(res, h.logger, err)
		return
	}

	writeJSON(res, h.logger, http.StatusOK, stats)
}

func (h *APIHandler) Ping(res http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), RequestTimeout)
	defer cancel()

	if err := h.service.PingContext(ctx); err != nil {
		h.logger.Error("ping failed", zap.Error(err))
		http.Error(res, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		return
	}

	res.WriteHeader(http.StatusOK)
}
