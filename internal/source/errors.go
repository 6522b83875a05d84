package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork = errors.New("network error")
	ErrQuery   = errors.New("query error")
)

// Error carries a human-readable message alongside its classifying sentinel
type Error struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Newf builds an Error for a sentinel
func Newf(sentinel error, statusCode int, format string, args ...any) *Error {
	return &Error{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// classifyStatus maps a non-2xx HTTP status onto the error taxonomy
func classifyStatus(code int) error {
	switch code {
	case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
		return ErrQuery
	default:
		return ErrNetwork
	}
}

// classifyTransport wraps a transport failure as a network error
func classifyTransport(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Err: ErrNetwork, Message: "request timed out"}
	}
	if errors.Is(err, context.Canceled) {
		return &Error{Err: ErrNetwork, Message: "request cancelled"}
	}
	return &Error{Err: ErrNetwork, Message: err.Error()}
}

// Message renders err for display on screen
func Message(err error) string {
	if err == nil {
		return ""
	}
	var srcErr *Error
	if errors.As(err, &srcErr) {
		switch {
		case errors.Is(srcErr.Err, ErrQuery):
			return "The query was rejected: " + srcErr.Message
		case errors.Is(srcErr.Err, ErrNetwork):
			return "Could not reach the search service: " + srcErr.Message
		}
		return srcErr.Message
	}
	switch {
	case errors.Is(err, ErrQuery):
		return "The query was rejected."
	case errors.Is(err, ErrNetwork):
		return "Could not reach the search service."
	default:
		return err.Error()
	}
}
