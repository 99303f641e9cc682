package httputil

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

const (
	ContentTypeJSON    = "application/json"
	ContentTypeJSONAPI = "application/vnd.api+json"
)

// WriteJSON writes data as application/json with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, ContentTypeJSON, status, data)
}

// WriteJSONAPI writes data as application/vnd.api+json with the given status code.
func WriteJSONAPI(w http.ResponseWriter, status int, data interface{}) {
	write(w, ContentTypeJSONAPI, status, data)
}

func write(w http.ResponseWriter, contentType string, status int, data interface{}) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// DecodeJSON decodes the request body into v. Bodies above maxBytes fail.
func DecodeJSON(r *http.Request, v interface{}, maxBytes int64) error {
	body := http.MaxBytesReader(nil, r.Body, maxBytes)
	defer body.Close()
	return json.NewDecoder(body).Decode(v)
}
