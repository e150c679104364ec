package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/sergio129/SaludDirecta/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorHandler turns errors attached via c.Error into responses. Business
// errors keep their kind-specific status; anything else is logged with the
// request context and masked, so DB errors and stack traces never reach a
// client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		if apiErr := apierror.As(err); apiErr != nil {
			c.AbortWithStatusJSON(apiErr.Kind.HTTPStatus(), apiErr)
			return
		}

		log.Error().
			Str("request_id", c.GetString(RequestIDKey)).
			Str("path", c.FullPath()).
			Str("method", c.Request.Method).
			Err(err).
			Msg("unhandled error")
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			apierror.New(apierror.KindPersistence, "Error interno del servidor"))
	}
}

// Recovery converts panics into masked 500 responses. The stack goes to the
// log only.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Str("request_id", c.GetString(RequestIDKey)).
					Str("path", c.FullPath()).
					Interface("panic", r).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError,
					apierror.New(apierror.KindPersistence, "Error interno del servidor"))
			}
		}()
		c.Next()
	}
}

// Logger emits one structured line per request, correlated by request_id.
// Server-side failures log at error level so they stand out in the stream.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		evt := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			evt = log.Error()
		}
		evt.
			Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Str("ip", c.ClientIP()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
