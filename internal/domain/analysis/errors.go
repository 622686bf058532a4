package analysis

import (
	"errors"
	"fmt"
)

// Kind tags every failure the analysis pipeline can surface.
type Kind string

const (
	KindValidation Kind = "validation"
	KindQuota      Kind = "quota"
	KindNetwork    Kind = "network"
	KindSafety     Kind = "safety"
	KindAuth       Kind = "auth"
	KindParse      Kind = "parse"
	KindUnknown    Kind = "unknown"
)

// Retryable reports whether another attempt may succeed.
func (k Kind) Retryable() bool {
	switch k {
	case KindNetwork, KindUnknown:
		return true
	default:
		return false
	}
}

// Code is the API error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindValidation:
		return "invalid_input"
	case KindQuota:
		return "quota_exceeded"
	case KindNetwork:
		return "network_error"
	case KindSafety:
		return "content_blocked"
	case KindAuth:
		return "provider_auth_failed"
	case KindParse:
		return "parse_error"
	default:
		return "analysis_failed"
	}
}

// Error is the typed failure constructed where the problem is detected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind) + " error"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a typed error of the given kind.
func NewError(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func ValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func QuotaError(err error) *Error {
	return &Error{Kind: KindQuota, Message: "provider quota exceeded", Err: err}
}

func NetworkError(err error) *Error {
	return &Error{Kind: KindNetwork, Message: "provider unreachable", Err: err}
}

func SafetyBlockError(reason string) *Error {
	return &Error{Kind: KindSafety, Message: fmt.Sprintf("content blocked: %s", reason)}
}

func AuthError(err error) *Error {
	return &Error{Kind: KindAuth, Message: "provider rejected credentials", Err: err}
}

func ParseError(err error) *Error {
	return &Error{Kind: KindParse, Message: "response does not match the analysis schema", Err: err}
}

func UnknownError(err error) *Error {
	return &Error{Kind: KindUnknown, Message: "provider request failed", Err: err}
}

// AsError extracts the typed error from a chain.
func AsError(err error) (*Error, bool) {
	var typed *Error
	if errors.As(err, &typed) {
		return typed, true
	}
	return nil, false
}
