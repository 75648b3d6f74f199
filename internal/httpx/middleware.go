// Package httpx holds the gin middleware shared by every route.
package httpx

import (
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/trace"
)

// RequestID reuses or assigns X-Request-ID and puts a request-scoped
// logger carrying it into the request context.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("rid", rid)
		c.Writer.Header().Set("X-Request-ID", rid)

		lc := log.With().Str("rid", rid)
		if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
			lc = lc.Str("trace_id", sc.TraceID().String())
		}
		l := lc.Logger()
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l := zerolog.Ctx(c.Request.Context())
		ev := l.Info()
		switch status := c.Writer.Status(); {
		case status >= 500:
			ev = l.Error()
		case status >= 400:
			ev = l.Warn()
		}
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("dur", time.Since(start)).
			Str("ip", c.ClientIP()).
			Msg("[http]")
	}
}

// Recovery turns a panic into a 500. onPanic renders the error page; when
// nil a bare status is sent.
func Recovery(onPanic gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				if onPanic != nil && !c.Writer.Written() {
					c.Status(http.StatusInternalServerError)
					onPanic(c)
					c.Abort()
					return
				}
				c.AbortWithStatus(http.StatusInternalServerError)
			}
		}()
		c.Next()
	}
}

// AllowedHosts rejects requests whose Host is not listed. "*" allows any
// host; an entry starting with "." matches the domain and its subdomains.
func AllowedHosts(hosts []string) gin.HandlerFunc {
	allowAll := false
	for _, h := range hosts {
		if h == "*" {
			allowAll = true
		}
	}
	return func(c *gin.Context) {
		if allowAll || hostAllowed(c.Request.Host, hosts) {
			c.Next()
			return
		}
		zerolog.Ctx(c.Request.Context()).Warn().Str("host", c.Request.Host).Msg("invalid HTTP_HOST header")
		c.AbortWithStatus(http.StatusBadRequest)
	}
}

func hostAllowed(host string, allowed []string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	for _, a := range allowed {
		a = strings.ToLower(strings.TrimSpace(a))
		if a == "" {
			continue
		}
		if strings.HasPrefix(a, ".") {
			if host == a[1:] || strings.HasSuffix(host, a) {
				return true
			}
			continue
		}
		if host == a {
			return true
		}
	}
	return false
}

// IsAJAX reports whether the request came from XMLHttpRequest.
func IsAJAX(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
