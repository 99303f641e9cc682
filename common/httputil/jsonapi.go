package httputil

import (
	"net/http"
)

// Meta is the top-level meta member of a success document.
type Meta struct {
	Message  string   `json:"message,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Document is a JSON:API success document.
type Document struct {
	Data interface{} `json:"data"`
	Meta *Meta       `json:"meta,omitempty"`
}

// ErrorObject represents a single JSON:API error.
type ErrorObject struct {
	Status int               `json:"status"`
	Code   string            `json:"code"`
	Title  string            `json:"title"`
	Detail string            `json:"detail,omitempty"`
	Source map[string]string `json:"source,omitempty"` // e.g. {"pointer": "/data/attributes/email"}
}

// ErrorDocument is a JSON:API error document.
type ErrorDocument struct {
	Errors []ErrorObject `json:"errors"`
}

// WriteJSONAPIData writes data wrapped in a JSON:API document.
// A nil meta or an empty one is omitted.
//
// Example:
//
//	httputil.WriteJSONAPIData(w, http.StatusOK, incidents, &httputil.Meta{Message: "Incidents found"})
func WriteJSONAPIData(w http.ResponseWriter, status int, data interface{}, meta *Meta) {
	if meta != nil && meta.Message == "" && len(meta.Warnings) == 0 {
		meta = nil
	}
	WriteJSONAPI(w, status, Document{Data: data, Meta: meta})
}

// WriteJSONAPIError writes a single-error JSON:API document.
func WriteJSONAPIError(w http.ResponseWriter, status int, code, title, detail string) {
	WriteJSONAPIErrors(w, status, ErrorObject{Status: status, Code: code, Title: title, Detail: detail})
}

// WriteJSONAPIErrors writes a JSON:API error document.
func WriteJSONAPIErrors(w http.ResponseWriter, status int, errs ...ErrorObject) {
	WriteJSONAPI(w, status, ErrorDocument{Errors: errs})
}

// FieldPointer returns a JSON:API source pointer for an attribute name.
func FieldPointer(field string) map[string]string {
	return map[string]string{"pointer": "/data/attributes/" + field}
}

// WriteJSONAPIValidationError writes a 400 response.
//
// Example:
//
//	httputil.WriteJSONAPIValidationError(w, "caseId is required")
func WriteJSONAPIValidationError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusBadRequest, "validation_failed", "Validation Failed", detail)
}

// WriteJSONAPINotFoundError writes a 404 response.
func WriteJSONAPINotFoundError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusNotFound, "not_found", "Resource Not Found", detail)
}

// WriteJSONAPIUnauthorizedError writes a 401 response.
func WriteJSONAPIUnauthorizedError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized", detail)
}

// WriteJSONAPIForbiddenError writes a 403 response.
func WriteJSONAPIForbiddenError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusForbidden, "forbidden", "Forbidden", detail)
}

// WriteJSONAPIConflictError writes a 409 response pointing at the offending field.
func WriteJSONAPIConflictError(w http.ResponseWriter, field, detail string) {
	obj := ErrorObject{Status: http.StatusConflict, Code: "conflict", Title: "Conflict", Detail: detail}
	if field != "" {
		obj.Source = FieldPointer(field)
	}
	WriteJSONAPIErrors(w, http.StatusConflict, obj)
}

// WriteJSONAPITooManyRequests writes a 429 response.
func WriteJSONAPITooManyRequests(w http.ResponseWriter) {
	WriteJSONAPIError(w, http.StatusTooManyRequests, "rate_limited", "Too Many Requests",
		"Too many requests, please try again later")
}

// WriteJSONAPIInternalError writes a 500 response. Log the cause before calling.
func WriteJSONAPIInternalError(w http.ResponseWriter, detail string) {
	WriteJSONAPIError(w, http.StatusInternalServerError, "internal_error", "Internal Server Error", detail)
}
