package shared

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"careroster/internal/domain/people"
	"careroster/internal/transport/http/api"
	"careroster/internal/transport/http/middleware"
)

// WriteError maps a service error onto the response envelope. Errors without
// a known kind are logged and answered with a generic 400.
func WriteError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	requestID := middleware.GetRequestID(r.Context())

	var vErr *people.ValidationError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &vErr):
		FailValidation(w, requestID, vErr.Message, issuesFrom(vErr))
	case errors.Is(err, people.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", requestID)
	case errors.Is(err, ErrForeignCompany):
		api.Fail(w, http.StatusForbidden, "forbidden", "company is outside your session", requestID)
	case errors.Is(err, people.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", "a record with these details already exists", requestID)
	case errors.As(err, &maxErr):
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", requestID)
	default:
		if log == nil {
			log = zap.L()
		}
		log.Error("request failed",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		api.Fail(w, http.StatusBadRequest, "request_failed", "request failed", requestID)
	}
}

// DecodeJSON reads a JSON body into dst. An empty body leaves dst untouched.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", middleware.GetRequestID(r.Context()))
		return false
	}
	api.Fail(w, http.StatusBadRequest, "invalid_json", "invalid request body", middleware.GetRequestID(r.Context()))
	return false
}
