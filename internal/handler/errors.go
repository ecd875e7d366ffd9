package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/shelf/internal/domain"
	"github.com/dukerupert/shelf/internal/middleware"
	"github.com/dukerupert/shelf/internal/telemetry"
)

// ErrorBody is the envelope every failed API call returns.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorResponse writes err as an ErrorBody with the status its code maps
// to. Server-side failures are logged at error level and sent to Sentry.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	code := domain.ErrorCode(err)
	status := middleware.StatusForCode(code)
	op := domain.ErrorOp(err)

	logger := middleware.GetLogger(ctx).With("code", code, "op", op, "status", status)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
		telemetry.CaptureErrorFromContext(ctx, err, map[string]interface{}{"code": code, "op": op})
	} else {
		logger.Info("request rejected", "reason", err.Error())
	}

	WriteJSON(w, status, ErrorBody{Error: ErrorDetail{
		Code:    code,
		Message: domain.ErrorMessage(err),
		Fields:  domain.GetValidationFields(err),
	}})
}

// BadRequestResponse writes a 400 with message.
func BadRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	ErrorResponse(w, r, domain.Invalid("", message))
}

// UnauthorizedResponse writes a 401.
func UnauthorizedResponse(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(w, r, domain.Unauthorized("", "You must be signed in"))
}

// WriteJSON writes v as the JSON response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// DecodeJSON reads a JSON request body into dst, rejecting unknown fields.
// A body cut off by MaxBodySize is reported as too large.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return domain.Errorf(domain.ETOOLARGE, "", "Request body too large")
		}
		return domain.Errorf(domain.EINVALID, "", "Invalid request body: %s", err.Error())
	}
	return nil
}
