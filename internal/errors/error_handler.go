package errors

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"go.uber.org/zap"
)

// StatusClientClosedRequest is returned when the caller went away mid-request.
const StatusClientClosedRequest = 499

// ErrorResponse represents the standard error response format.
type ErrorResponse struct {
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// Handler writes classified errors as HTTP responses.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new error handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}

// HandleError processes an error and writes an appropriate HTTP response.
func (h *Handler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := h.HTTPStatus(err)
	code := string(CodeOf(err))
	if code == "" {
		code = "INTERNAL_ERROR"
	}
	requestID := r.Header.Get("X-Request-ID")

	h.WriteErrorResponse(w, statusCode, code, UserMessage(err), requestID)
}

// HTTPStatus converts a classified error to an HTTP status code.
func (h *Handler) HTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var me *MissionError
	if !stderrors.As(err, &me) {
		return http.StatusInternalServerError
	}

	switch me.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindTransport:
		if me.Code == ErrCodeTimeout {
			return http.StatusGatewayTimeout
		}
		return http.StatusServiceUnavailable
	case KindService:
		if me.Code == ErrCodeNotFound {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case KindDataIntegrity:
		return http.StatusBadGateway
	case KindCanceled:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteErrorResponse writes a formatted error response to the HTTP response writer.
func (h *Handler) WriteErrorResponse(w http.ResponseWriter, statusCode int, errorCode string, message string, requestID string) {
	h.logger.Warn("HTTP error response",
		zap.Int("status_code", statusCode),
		zap.String("error_code", errorCode),
		zap.String("message", message),
		zap.String("request_id", requestID),
	)

	resp := ErrorResponse{
		Status:    "error",
		ErrorCode: errorCode,
		Message:   message,
		RequestID: requestID,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

// WriteValidationError writes a validation error response.
func (h *Handler) WriteValidationError(w http.ResponseWriter, message string, requestID string) {
	h.WriteErrorResponse(w, http.StatusBadRequest, string(ErrCodeInvalidArgument), message, requestID)
}

// WriteConflict writes a 409 response.
func (h *Handler) WriteConflict(w http.ResponseWriter, message string, requestID string) {
	h.WriteErrorResponse(w, http.StatusConflict, "SUBMISSION_IN_FLIGHT", message, requestID)
}

// WriteRateLimitedError writes a rate limit exceeded response.
func (h *Handler) WriteRateLimitedError(w http.ResponseWriter, requestID string) {
	h.WriteErrorResponse(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", requestID)
}
