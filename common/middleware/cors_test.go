package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		origins        []string
		origin         string
		method         string
		expectedOrigin string
		expectedStatus int
	}{
		{
			name:           "exact origin match",
			origins:        []string{"http://localhost:3000"},
			origin:         "http://localhost:3000",
			method:         http.MethodGet,
			expectedOrigin: "http://localhost:3000",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "wildcard subdomain match",
			origins:        []string{"*.axisir.io"},
			origin:         "https://app.axisir.io",
			method:         http.MethodGet,
			expectedOrigin: "https://app.axisir.io",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "star reflects any origin",
			origins:        []string{"*"},
			origin:         "https://anything.example",
			method:         http.MethodPost,
			expectedOrigin: "https://anything.example",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown origin gets no allow header",
			origins:        []string{"http://localhost:3000"},
			origin:         "https://evil.example",
			method:         http.MethodGet,
			expectedOrigin: "",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "preflight short-circuits",
			origins:        []string{"http://localhost:3000"},
			origin:         "http://localhost:3000",
			method:         http.MethodOptions,
			expectedOrigin: "http://localhost:3000",
			expectedStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := CORS(DefaultCORSConfig(tt.origins))(ok)
			req := httptest.NewRequest(tt.method, "/incidents/getById/1", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()

			h.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "600", w.Header().Get("Access-Control-Max-Age"))
			if tt.expectedOrigin != "" {
				assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
			}
		})
	}
}
