// Package handlers provides HTTP request handlers for the respond service.
package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/axisir/axisir-stack/common/database"
	"github.com/axisir/axisir-stack/common/httputil"
	"github.com/axisir/axisir-stack/common/logging"
	"github.com/axisir/axisir-stack/common/middleware"
	"github.com/axisir/axisir-stack/respond/internal/service"
)

const defaultMaxBodyBytes = 1 << 20

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides HTTP handlers for the respond service
type Handler struct {
	svc     *service.Service
	db      Pinger
	broker  Pinger
	logger  *logging.Logger
	maxBody int64
}

type Option func(*Handler)

// WithHealthCheck makes /healthz ping db.
func WithHealthCheck(db Pinger) Option {
	return func(h *Handler) { h.db = db }
}

// WithBrokerCheck reports the event broker in /healthz. A broker outage
// degrades the service but does not fail the check.
func WithBrokerCheck(b Pinger) Option {
	return func(h *Handler) { h.broker = b }
}

func WithLogger(l *logging.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// WithMaxBodyBytes caps JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		if n > 0 {
			h.maxBody = n
		}
	}
}

// NewHandler creates a new Handler instance
func NewHandler(svc *service.Service, opts ...Option) *Handler {
	h := &Handler{svc: svc, logger: logging.Default(), maxBody: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// =============================================================================
// Helper Methods
// =============================================================================

// actorID returns the authenticated caller, or 0 on public routes.
func actorID(r *http.Request) int64 {
	id, _ := middleware.GetUserID(r.Context())
	return id
}

// decode reads the JSON body into v and writes a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httputil.DecodeJSON(r, v, h.maxBody); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httputil.WriteJSONAPIError(w, http.StatusRequestEntityTooLarge, "body_too_large", "Request Entity Too Large", "Request body is too large")
			return false
		}
		httputil.WriteJSONAPIValidationError(w, "Invalid request body")
		return false
	}
	return true
}

// decodeOptional is decode for endpoints whose body may be empty.
func (h *Handler) decodeOptional(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := httputil.DecodeJSON(r, v, h.maxBody); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSONAPIValidationError(w, "Invalid request body")
		return false
	}
	return true
}

// pathID parses the named path wildcard and writes a 400 when it is not a positive integer.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := httputil.PathID(r, name)
	if err != nil {
		httputil.WriteJSONAPIErrors(w, http.StatusBadRequest, httputil.ErrorObject{
			Status: http.StatusBadRequest,
			Code:   "validation_failed",
			Title:  "Validation Failed",
			Detail: name + " must be a positive integer",
			Source: map[string]string{"parameter": name},
		})
		return 0, false
	}
	return id, true
}

// writeError maps a service error onto a JSON:API error response.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *service.Error
	if !errors.As(err, &se) {
		h.logger.ErrorContext(r.Context(), "unhandled error", logging.Path(r.URL.Path), logging.Error(err))
		httputil.WriteJSONAPIInternalError(w, "An unexpected error occurred")
		return
	}

	switch se.Kind {
	case service.KindNotFound:
		httputil.WriteJSONAPINotFoundError(w, se.Message)
	case service.KindBadRequest:
		if se.Field == "" {
			httputil.WriteJSONAPIValidationError(w, se.Message)
			return
		}
		httputil.WriteJSONAPIErrors(w, http.StatusBadRequest, httputil.ErrorObject{
			Status: http.StatusBadRequest,
			Code:   "validation_failed",
			Title:  "Validation Failed",
			Detail: se.Message,
			Source: httputil.FieldPointer(se.Field),
		})
	case service.KindUnauthorized:
		httputil.WriteJSONAPIUnauthorizedError(w, se.Message)
	case service.KindForbidden:
		httputil.WriteJSONAPIForbiddenError(w, se.Message)
	case service.KindConflict:
		httputil.WriteJSONAPIConflictError(w, se.Field, se.Message)
	default:
		h.logger.ErrorContext(r.Context(), se.Message, logging.Path(r.URL.Path), logging.Error(se.Err))
		httputil.WriteJSONAPIInternalError(w, se.Message)
	}
}

func ok(w http.ResponseWriter, data any, message string) {
	httputil.WriteJSONAPIData(w, http.StatusOK, data, &httputil.Meta{Message: message})
}

func created(w http.ResponseWriter, data any, message string, warnings []string) {
	httputil.WriteJSONAPIData(w, http.StatusCreated, data, &httputil.Meta{Message: message, Warnings: warnings})
}

// =============================================================================
// Health Check Handlers
// =============================================================================

type healthResponse struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Database string `json:"database,omitempty"`
	Broker   string `json:"broker,omitempty"`
}

// HealthCheck handles GET /healthz
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", Service: "respond"}
	if h.db != nil {
		ctx, cancel := database.QueryContext(r.Context())
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "health check failed", logging.Error(err))
			resp.Status, resp.Database = "unavailable", "down"
			httputil.WriteJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.Database = "up"
	}
	if h.broker != nil {
		ctx, cancel := database.QueryContext(r.Context())
		defer cancel()
		resp.Broker = "up"
		if err := h.broker.Ping(ctx); err != nil {
			h.logger.WarnContext(r.Context(), "broker health check failed", logging.Error(err))
			resp.Status, resp.Broker = "degraded", "down"
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}
