package internal

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	identityKey  = "identity"
	requestIDKey = "request_id"

	requestIDHeader = "X-Request-ID"
)

type ctxKey struct{}

var errNoIdentity = errors.New("identity missing from request context")

// Authenticate verifies the bearer token and attaches the caller's Identity.
func Authenticate(tokens *TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := BearerToken(c.GetHeader("Authorization"))
		if err != nil {
			abortWithError(c, nil, unauthenticated(ErrInvalidToken.Error()))
			return
		}
		cl, err := tokens.Verify(raw)
		if err != nil {
			abortWithError(c, nil, unauthenticated(ErrInvalidToken.Error()))
			return
		}

		id := Identity{ID: cl.Subject, Role: cl.Role}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ctxKey{}, id))
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := IdentityFrom(c)
		if err != nil {
			abortWithError(c, nil, err)
			return
		}
		if id.Role != role {
			abortWithError(c, nil, forbidden(string(role)+" only"))
			return
		}
		c.Next()
	}
}

func IdentityFrom(c *gin.Context) (Identity, error) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, internalErr(errNoIdentity)
	}
	id, ok := v.(Identity)
	if !ok {
		return Identity{}, internalErr(errNoIdentity)
	}
	return id, nil
}

// IdentityFromContext reads the Identity from a request context.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

/* ===================== REQUEST PLUMBING ===================== */

func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
	}
}

func Recovery(log *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		log.Error("panic recovered",
			zap.Any("panic", rec),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", c.GetString(requestIDKey)),
		)
		abortWithError(c, nil, internalErr(errors.New("panic")))
	})
}
