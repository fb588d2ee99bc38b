// Package errors defines the error taxonomy surfaced by the mission client.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies an error by where it originated.
type Kind string

const (
	// KindValidation is a malformed request rejected before it left the client.
	KindValidation Kind = "VALIDATION"
	// KindTransport means the remote service could not be reached at all.
	KindTransport Kind = "TRANSPORT"
	// KindService means the service was reached but rejected or failed the request.
	KindService Kind = "SERVICE"
	// KindDataIntegrity marks a malformed record inside an otherwise valid response.
	KindDataIntegrity Kind = "DATA_INTEGRITY"
	// KindCanceled means the caller abandoned the request before it finished.
	KindCanceled Kind = "CANCELED"
)

// ErrorCode narrows a Kind down to a specific condition.
type ErrorCode string

const (
	ErrCodeEmptyDescription ErrorCode = "EMPTY_DESCRIPTION"
	ErrCodeInvalidArgument  ErrorCode = "INVALID_ARGUMENT"

	ErrCodeUnreachable ErrorCode = "UNREACHABLE"
	ErrCodeTimeout     ErrorCode = "TIMEOUT"

	ErrCodeNotFound     ErrorCode = "NOT_FOUND"
	ErrCodeServiceError ErrorCode = "SERVICE_ERROR"
	ErrCodeBadResponse  ErrorCode = "BAD_RESPONSE"

	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"

	ErrCodeCanceled ErrorCode = "CANCELED"
)

// Sentinels for errors.Is matching on kind alone.
var (
	ErrValidation    = &MissionError{Kind: KindValidation}
	ErrTransport     = &MissionError{Kind: KindTransport}
	ErrService       = &MissionError{Kind: KindService}
	ErrNotFound      = &MissionError{Kind: KindService, Code: ErrCodeNotFound}
	ErrDataIntegrity = &MissionError{Kind: KindDataIntegrity}
	ErrCanceled      = &MissionError{Kind: KindCanceled}
)

// MissionError is a classified client error with optional HTTP status and cause.
type MissionError struct {
	Kind       Kind
	Code       ErrorCode
	Message    string
	StatusCode int
	Details    map[string]interface{}
	Cause      error
}

// Error implements the error interface
func (e *MissionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *MissionError) Unwrap() error {
	return e.Cause
}

// Is matches on Kind, and on Code when the target sets one.
func (e *MissionError) Is(target error) bool {
	t, ok := target.(*MissionError)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	return t.Code == "" || t.Code == e.Code
}

// WithDetail adds a detail to the error
func (e *MissionError) WithDetail(key string, value interface{}) *MissionError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NewMissionError creates a new MissionError
func NewMissionError(kind Kind, code ErrorCode, message string, cause error) *MissionError {
	return &MissionError{
		Kind:    kind,
		Code:    code,
		Message: message,
		Details: make(map[string]interface{}),
		Cause:   cause,
	}
}

// Convenience constructors

func Validation(code ErrorCode, message string) *MissionError {
	return NewMissionError(KindValidation, code, message, nil)
}

func EmptyDescription() *MissionError {
	return Validation(ErrCodeEmptyDescription, "mission description must not be empty")
}

func Transport(message string, cause error) *MissionError {
	return NewMissionError(KindTransport, ErrCodeUnreachable, message, cause)
}

func Timeout(message string, cause error) *MissionError {
	return NewMissionError(KindTransport, ErrCodeTimeout, message, cause)
}

func Canceled(message string, cause error) *MissionError {
	return NewMissionError(KindCanceled, ErrCodeCanceled, message, cause)
}

func Service(statusCode int, message string) *MissionError {
	err := NewMissionError(KindService, ErrCodeServiceError, message, nil)
	err.StatusCode = statusCode
	return err
}

func NotFound(resource string) *MissionError {
	err := NewMissionError(KindService, ErrCodeNotFound, fmt.Sprintf("%s not found", resource), nil)
	err.StatusCode = 404
	return err.WithDetail("resource", resource)
}

func BadResponse(message string, cause error) *MissionError {
	return NewMissionError(KindService, ErrCodeBadResponse, message, cause)
}

func DataIntegrity(message string, cause error) *MissionError {
	return NewMissionError(KindDataIntegrity, ErrCodeInvalidRecord, message, cause)
}

// KindOf returns the Kind of the first MissionError in err's chain, or "" if none.
func KindOf(err error) Kind {
	var me *MissionError
	if stderrors.As(err, &me) {
		return me.Kind
	}
	return ""
}

// CodeOf returns the ErrorCode of the first MissionError in err's chain.
func CodeOf(err error) ErrorCode {
	var me *MissionError
	if stderrors.As(err, &me) {
		return me.Code
	}
	return ""
}

// IsTransport reports whether err means the service could not be reached.
func IsTransport(err error) bool {
	return KindOf(err) == KindTransport
}

// UserMessage renders err the way the operator should read it.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var me *MissionError
	if !stderrors.As(err, &me) {
		return err.Error()
	}
	switch me.Kind {
	case KindValidation:
		return "Please fill in all required fields: " + me.Message
	case KindTransport:
		if me.Code == ErrCodeTimeout {
			return "Request timed out - the server did not respond in time"
		}
		return "Cannot connect to server - please check if the backend is running"
	case KindService:
		switch {
		case me.Code == ErrCodeNotFound:
			return "Resource not found"
		case me.StatusCode >= 500:
			return "Server error - please try again later"
		case me.Message != "":
			return me.Message
		}
		return "Request rejected by server"
	case KindCanceled:
		return "Request cancelled before the server answered"
	default:
		return me.Error()
	}
}
