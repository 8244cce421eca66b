package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/asobiba/minigames/internal/games"
	"github.com/asobiba/minigames/internal/launcher"
	"github.com/asobiba/minigames/internal/scan"
	"github.com/asobiba/minigames/internal/scriptstore"
	"github.com/asobiba/minigames/internal/store"
)

// ErrorBuilder helps construct structured errors with context
type ErrorBuilder struct {
	errType   string
	message   string
	context   map[string]interface{}
	requestID string
}

// NewError creates a new error builder
func NewError(errType, message string) *ErrorBuilder {
	return &ErrorBuilder{
		errType: errType,
		message: message,
		context: make(map[string]interface{}),
	}
}

// WithContext adds context information to the error
func (eb *ErrorBuilder) WithContext(key string, value interface{}) *ErrorBuilder {
	eb.context[key] = value
	return eb
}

// WithRequestID adds request ID to the error
func (eb *ErrorBuilder) WithRequestID(requestID string) *ErrorBuilder {
	eb.requestID = requestID
	return eb
}

// WithCause adds the underlying cause error
func (eb *ErrorBuilder) WithCause(err error) *ErrorBuilder {
	if err != nil {
		eb.context["cause"] = err.Error()
	}
	return eb
}

// Build creates the final EngineError
func (eb *ErrorBuilder) Build() EngineError {
	ctx := eb.context
	if len(ctx) == 0 {
		ctx = nil
	}
	return EngineError{
		Type:      eb.errType,
		Message:   eb.message,
		Context:   ctx,
		RequestID: eb.requestID,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// classify maps domain errors onto an error type and HTTP status.
func classify(err error) (string, int) {
	switch {
	case errors.Is(err, launcher.ErrUnknownGame):
		return ErrTypeGameNotFound, http.StatusNotFound
	case errors.Is(err, launcher.ErrSessionNotFound):
		return ErrTypeSessionNotFound, http.StatusNotFound
	case errors.Is(err, launcher.ErrSessionEnded):
		return ErrTypeSessionEnded, http.StatusConflict
	case errors.Is(err, games.ErrUnsupportedAction):
		return ErrTypeUnsupportedAction, http.StatusBadRequest
	case errors.Is(err, games.ErrInvalidAction):
		return ErrTypeInvalidAction, http.StatusUnprocessableEntity
	case errors.Is(err, games.ErrFinished):
		return ErrTypeGameFinished, http.StatusConflict
	case errors.Is(err, store.ErrNotFound):
		return ErrTypeResultNotFound, http.StatusNotFound
	case errors.Is(err, scriptstore.ErrNotFound):
		return ErrTypeScriptNotFound, http.StatusNotFound
	case errors.Is(err, errNoScriptStore):
		return ErrTypeServiceUnavailable, http.StatusServiceUnavailable
	case errors.Is(err, scan.ErrGameNotFound):
		return ErrTypeGameNotFound, http.StatusNotFound
	case errors.Is(err, scan.ErrInvalidRange), errors.Is(err, scan.ErrInvalidSeeds),
		errors.Is(err, scan.ErrNoActions), errors.Is(err, scan.ErrTimerGame),
		errors.Is(err, scan.ErrRangeTooLarge), errors.Is(err, scan.ErrUnknownOp):
		return ErrTypeInvalidParams, http.StatusBadRequest
	default:
		return ErrTypeInternal, http.StatusInternalServerError
	}
}

// ErrorHandler provides centralized error handling with logging
type ErrorHandler struct {
	logger *log.Logger
	audit  *AuditLogger
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *log.Logger, audit *AuditLogger) *ErrorHandler {
	return &ErrorHandler{logger: logger, audit: audit}
}

// HandleError classifies err and writes the matching response.
func (eh *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	var engineErr EngineError
	if errors.As(err, &engineErr) {
		eh.logError(r, engineErr, http.StatusInternalServerError)
		eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
		return
	}

	errType, status := classify(err)
	engineErr = eh.build(r, err, errType)
	eh.logError(r, engineErr, status)
	eh.writeErrorResponse(w, status, engineErr)
}

// build converts err to an EngineError for r. Internal errors keep a generic
// message; the cause goes to the log only.
func (eh *ErrorHandler) build(r *http.Request, err error, errType string) EngineError {
	msg := err.Error()
	if errType == ErrTypeInternal {
		msg = "Internal server error"
	}
	return NewError(errType, msg).
		WithRequestID(middleware.GetReqID(r.Context())).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()
}

// HandleValidationError handles validation-specific errors
func (eh *ErrorHandler) HandleValidationError(w http.ResponseWriter, r *http.Request, field, message string) {
	requestID := middleware.GetReqID(r.Context())

	engineErr := NewError(ErrTypeValidation, fmt.Sprintf("Validation failed: %s", message)).
		WithRequestID(requestID).
		WithContext("field", field).
		WithContext("path", r.URL.Path).
		WithContext("method", r.Method).
		Build()

	eh.audit.LogSecurityEvent(requestID, "validation_failure", message, map[string]interface{}{
		"field": field,
		"path":  r.URL.Path,
	}, r.RemoteAddr)

	eh.logError(r, engineErr, http.StatusBadRequest)
	eh.writeErrorResponse(w, http.StatusBadRequest, engineErr)
}

// logError logs the error with appropriate level and context
func (eh *ErrorHandler) logError(r *http.Request, engineErr EngineError, status int) {
	category := GetErrorCategory(engineErr.Type)

	logLevel := "ERROR"
	if category == CategoryValidation || status < 500 {
		logLevel = "WARN"
	}

	eh.logger.Printf(
		"error_occurred level=%s type=%s category=%s status=%d request_id=%s method=%s path=%s message=%q",
		logLevel, engineErr.Type, category, status, engineErr.RequestID, r.Method, r.URL.Path, engineErr.Message,
	)
}

// writeErrorResponse writes the error response as JSON
func (eh *ErrorHandler) writeErrorResponse(w http.ResponseWriter, status int, engineErr EngineError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Engine-Version", EngineVersion)
	w.Header().Set("X-Error-Type", engineErr.Type)
	w.Header().Set("X-Error-Category", string(GetErrorCategory(engineErr.Type)))
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(engineErr); err != nil {
		eh.logger.Printf("error_encode_failed err=%v", err)
	}
}

// RecoveryHandler provides panic recovery with structured error logging
func (eh *ErrorHandler) RecoveryHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				requestID := middleware.GetReqID(r.Context())
				eh.logger.Printf(
					"panic_recovered request_id=%s path=%s method=%s panic=%v",
					requestID, r.URL.Path, r.Method, rvr,
				)

				engineErr := NewError(ErrTypeInternal, "Internal server error").
					WithRequestID(requestID).
					WithContext("path", r.URL.Path).
					WithContext("method", r.Method).
					Build()

				eh.writeErrorResponse(w, http.StatusInternalServerError, engineErr)
			}
		}()

		next.ServeHTTP(w, r)
	})
}
