package middleware

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axisir/axisir-stack/common/logging"
	commonmw "github.com/axisir/axisir-stack/common/middleware"
	"github.com/axisir/axisir-stack/respond/internal/ratelimit"
	"github.com/axisir/axisir-stack/respond/internal/service"
	"github.com/axisir/axisir-stack/respond/internal/tokens"
)

type stubAuth struct {
	claims *tokens.Claims
	err    error
	seen   string
}

func (s *stubAuth) Authenticate(_ context.Context, token string) (*tokens.Claims, error) {
	s.seen = token
	return s.claims, s.err
}

func echoUser(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := commonmw.GetUserID(r.Context())
		require.True(t, ok)
		assert.Equal(t, int64(42), id)
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestRequireAuth(t *testing.T) {
	tests := []struct {
		name       string
		header     string
		auth       *stubAuth
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing header",
			auth:       &stubAuth{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   msgNoToken,
		},
		{
			name:       "wrong scheme",
			header:     "Basic abc",
			auth:       &stubAuth{},
			wantStatus: http.StatusUnauthorized,
			wantBody:   msgNoToken,
		},
		{
			name:       "rejected token",
			header:     "Bearer bad",
			auth:       &stubAuth{err: &service.Error{Kind: service.KindUnauthorized, Message: "Invalid token."}},
			wantStatus: http.StatusUnauthorized,
			wantBody:   msgInvalidToken,
		},
		{
			name:       "whitelist lookup failed",
			header:     "Bearer abc",
			auth:       &stubAuth{err: &service.Error{Kind: service.KindInternal, Err: errors.New("db down")}},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "valid token",
			header:     "Bearer good",
			auth:       &stubAuth{claims: &tokens.Claims{UserID: 42, Username: "jdoe"}},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthMiddleware(tt.auth).RequireAuth(echoUser(t))
			req := httptest.NewRequest(http.MethodGet, "/incidents/getAll/1", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Contains(t, rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRequireAuthPassesRawToken(t *testing.T) {
	auth := &stubAuth{claims: &tokens.Claims{UserID: 42}}
	h := NewAuthMiddleware(auth).RequireAuth(echoUser(t))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "abc.def.ghi", auth.seen)
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := ratelimit.NewRedisRateLimiter("redis://"+mr.Addr(), ratelimit.Limits{
		Limit:  2,
		Window: time.Minute,
	}, false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })

	logger := logging.NewWithWriter(&bytes.Buffer{}, logging.ParseLevel("error"), "json")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	h := RateLimit(limiter, "auth", logger)(ok)

	call := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/users/login", nil)
		req.RemoteAddr = ip + ":5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, call("10.0.0.1"))
	assert.Equal(t, http.StatusOK, call("10.0.0.2"))
}

type brokenLimiter struct{}

func (brokenLimiter) Allow(context.Context, string, string) (bool, error) {
	return false, errors.New("redis unavailable")
}
func (brokenLimiter) Close() error { return nil }

func TestRateLimitFailsOpen(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.ParseLevel("warn"), "json")
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	rec := httptest.NewRecorder()
	RateLimit(brokenLimiter{}, "api", logger)(ok).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), "rate limit check failed")
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, logging.ParseLevel("info"), "json")
	h := AccessLog(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/assets/getById/9", nil))

	out := buf.String()
	assert.Contains(t, out, `"level":"WARN"`)
	assert.Contains(t, out, `"path":"/assets/getById/9"`)
	assert.Contains(t, out, `"status":404`)
}

func TestMetricsRecordsStatus(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /tasks/getById/{taskId}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rec := httptest.NewRecorder()
	Metrics(mux).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tasks/getById/3", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
