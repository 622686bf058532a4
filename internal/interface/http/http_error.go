package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/kai-insight/internal/domain/analysis"
	"github.com/yanqian/kai-insight/internal/domain/auth"
	"github.com/yanqian/kai-insight/internal/domain/export"
	"github.com/yanqian/kai-insight/internal/domain/history"
	"github.com/yanqian/kai-insight/internal/domain/preferences"
	"github.com/yanqian/kai-insight/internal/domain/storage"
	apperrors "github.com/yanqian/kai-insight/pkg/errors"
)

// HTTPError captures the metadata required to serialize an error response consistently.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    apperrors.CodeInternal,
		Message: "something went wrong",
		Err:     err,
	}
}

var kindStatus = map[analysis.Kind]int{
	analysis.KindValidation: http.StatusBadRequest,
	analysis.KindQuota:      http.StatusTooManyRequests,
	analysis.KindNetwork:    http.StatusBadGateway,
	analysis.KindSafety:     http.StatusUnprocessableEntity,
	analysis.KindAuth:       http.StatusBadGateway,
	analysis.KindParse:      http.StatusBadGateway,
	analysis.KindUnknown:    http.StatusInternalServerError,
}

var codeStatus = map[string]int{
	apperrors.CodeInvalidInput:         http.StatusBadRequest,
	apperrors.CodeNotFound:             http.StatusNotFound,
	export.CodeInvalidFormat:           http.StatusBadRequest,
	preferences.CodeInvalidPreferences: http.StatusBadRequest,
	history.CodeNotFound:               http.StatusNotFound,
	storage.CodeUnavailable:            http.StatusServiceUnavailable,
	auth.CodeUserNotFound:              http.StatusNotFound,
	auth.CodeInvalidCredentials:        http.StatusUnauthorized,
	auth.CodeInvalidToken:              http.StatusUnauthorized,
	auth.CodeEmailExists:               http.StatusConflict,
	auth.CodeLinkingDisabled:           http.StatusConflict,
	auth.CodeNotConfigured:             http.StatusServiceUnavailable,
	auth.CodeOAuthFailed:               http.StatusBadGateway,
}

// fromDomainError maps analysis kinds and apperrors codes onto HTTP statuses.
// Server-side failures never echo their internal message.
func fromDomainError(err error) *HTTPError {
	if typed, ok := analysis.AsError(err); ok {
		return NewHTTPError(kindStatus[typed.Kind], typed.Kind.Code(), analysis.UserMessage(err), err)
	}
	code := apperrors.CodeOf(err)
	status, known := codeStatus[code]
	if !known {
		if code == "" {
			code = apperrors.CodeInternal
		}
		return NewHTTPError(http.StatusInternalServerError, code, "something went wrong", err)
	}
	return NewHTTPError(status, code, apperrors.MessageOf(err, http.StatusText(status)), err)
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func abortWithDomainError(c *gin.Context, err error) {
	abortWithError(c, fromDomainError(err))
}

// abortWithAnalysisError classifies untyped provider failures before mapping them.
func abortWithAnalysisError(c *gin.Context, err error) {
	if _, ok := analysis.AsError(err); !ok && apperrors.CodeOf(err) == "" {
		err = analysis.NewError(analysis.Classify(err), "", err)
	}
	abortWithDomainError(c, err)
}
