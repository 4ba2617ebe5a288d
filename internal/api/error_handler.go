package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/quillpost/blog-api/internal/core/domain"
)

// errorResponse is the envelope every failed request gets.
type errorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

// NewHTTPErrorHandler converts any error returned by a handler or middleware
// into the JSON envelope. Classified domain errors keep their status and
// message; anything unclassified is logged and reported as a bare 500.
// When development is true the response carries the error chain, or the
// goroutine stack of the panic that produced it.
func NewHTTPErrorHandler(log zerolog.Logger, development bool) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status, body := resolveError(err, log, c)
		if development {
			body.Stack = stackOf(err)
		}

		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(status)
			return
		}
		_ = c.JSON(status, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	var de *domain.Error
	if errors.As(err, &de) {
		return de.Status(), errorResponse{Message: de.Message, Code: de.Code()}
	}

	// Router 404/405, bind failures, echo middleware rejections.
	var he *echo.HTTPError
	if errors.As(err, &he) {
		msg := http.StatusText(he.Code)
		if he.Message != nil {
			msg = fmt.Sprint(he.Message)
		}
		return he.Code, errorResponse{Message: msg, Code: codeForStatus(he.Code)}
	}

	ev := log.Error()
	var pe *panicError
	if errors.As(err, &pe) {
		ev = ev.Bytes("stack", pe.stack)
	}
	ev.Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Message: "Internal server error"}
}

// panicError carries the stack captured where a handler panicked.
type panicError struct {
	err   error
	stack []byte
}

func (e *panicError) Error() string { return "panic: " + e.err.Error() }

func (e *panicError) Unwrap() error { return e.err }

// recoverConfig hands recovered panics to the error handler with the stack
// of the panicking goroutine attached.
func recoverConfig() echomiddleware.RecoverConfig {
	return echomiddleware.RecoverConfig{
		StackSize:       8 << 10,
		DisableStackAll: true,
		LogErrorFunc: func(_ echo.Context, err error, stack []byte) error {
			return &panicError{err: err, stack: stack}
		},
	}
}

func stackOf(err error) string {
	var pe *panicError
	if errors.As(err, &pe) {
		return string(pe.stack)
	}
	return fmt.Sprintf("%+v", err)
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return domain.CodeValidation
	case http.StatusUnauthorized:
		return domain.CodeUnauthorized
	case http.StatusForbidden, http.StatusTooManyRequests:
		return domain.CodeForbidden
	case http.StatusNotFound:
		return domain.CodeNotFound
	case http.StatusConflict:
		return domain.CodeConflict
	}
	// 405, 413, 415 and the rest are malformed requests.
	if status >= 400 && status < 500 {
		return domain.CodeValidation
	}
	return ""
}
