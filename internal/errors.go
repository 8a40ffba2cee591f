package internal

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindConflict
)

func (k Kind) Status() int {
	switch k {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error is the error type every handler-facing operation returns.
// Msg is shown to clients; Err is only logged.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func badRequest(msg string) *Error { return &Error{Kind: KindBadRequest, Msg: msg} }
func notFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }
func forbidden(msg string) *Error { return &Error{Kind: KindForbidden, Msg: msg} }
func conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }
func unauthenticated(msg string) *Error {
	return &Error{Kind: KindUnauthenticated, Msg: msg}
}

func internalErr(err error) *Error {
	return &Error{Kind: KindInternal, Msg: "internal server error", Err: err}
}

// KindOf reports the Kind of err. Anything that is not an *Error is Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

type errorBody struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func abortWithError(c *gin.Context, log *zap.Logger, err error) {
	var e *Error
	if !errors.As(err, &e) {
		e = internalErr(err)
	}
	status := e.Kind.Status()
	msg := e.Msg
	if e.Kind == KindInternal {
		msg = "internal server error"
		if log != nil {
			log.Error("request failed",
				zap.String("method", c.Request.Method),
				zap.String("path", c.FullPath()),
				zap.Error(err),
			)
		}
	}
	c.AbortWithStatusJSON(status, errorBody{Code: status, Msg: msg})
}
