package middleware

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const redacted = "[REDACTED]"

// RedactOptions adds header names to mask on top of the built-in set.
type RedactOptions struct {
	MaskHeaders []string
}

// Owner and admin tokens are bearer capabilities; the session header
// identifies a device.
var builtinMaskedHeaders = []string{
	"Authorization",
	"Cookie",
	"Set-Cookie",
	HeaderOwnerToken,
	HeaderAdminToken,
	HeaderSessionID,
}

// scrubbers run in order: ids first so the phone pattern never eats the
// digit groups of a UUID.
var scrubbers = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}\b`), "[REDACTED:id]"},
	{regexp.MustCompile(`\bsess_[0-9a-z]{10,59}\b`), "[REDACTED:session]"},
	{regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`), "[REDACTED:email]"},
	{regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`), "[REDACTED:phone]"},
}

func redact(s string) string {
	for _, sc := range scrubbers {
		if s == "" {
			break
		}
		s = sc.re.ReplaceAllString(s, sc.repl)
	}
	return s
}

func maskSet(extra []string) map[string]bool {
	m := make(map[string]bool, len(builtinMaskedHeaders)+len(extra))
	for _, group := range [][]string{builtinMaskedHeaders, extra} {
		for _, h := range group {
			if h = strings.TrimSpace(h); h != "" {
				m[http.CanonicalHeaderKey(h)] = true
			}
		}
	}
	return m
}

func safeHeaders(h http.Header, mask map[string]bool) map[string]string {
	out := make(map[string]string, len(h))
	for k, vv := range h {
		if mask[http.CanonicalHeaderKey(k)] {
			out[k] = redacted
			continue
		}
		out[k] = redact(strings.Join(vv, ", "))
	}
	return out
}

// RedactingLogger writes one access log line per request, never bodies,
// with identifiers scrubbed from the query and headers. It also attaches a
// request-scoped logger (request_id, session_id, method, path) to the Gin
// context and the request context, for LoggerFrom and zerolog.Ctx.
//
// 5xx responses and requests with Gin errors log at error, 4xx at warn.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	mask := maskSet(opts.MaskHeaders)

	return func(c *gin.Context) {
		start := time.Now()
		path := routeLabel(c)
		if path == unmatchedPath {
			path = c.Request.URL.Path
		}
		query := redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))
		headers := safeHeaders(c.Request.Header, mask)

		l := log.With().
			Str("request_id", RequestIDFrom(c)).
			Str("session_id", SessionIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &l)
		c.Request = c.Request.WithContext(l.WithContext(c.Request.Context()))

		c.Next()

		status := c.Writer.Status()
		level := zerolog.InfoLevel
		switch {
		case len(c.Errors) > 0 || status >= http.StatusInternalServerError:
			level = zerolog.ErrorLevel
		case status >= http.StatusBadRequest:
			level = zerolog.WarnLevel
		}
		ev := log.WithLevel(level)
		if len(c.Errors) > 0 {
			ev = ev.Str("errors", c.Errors.String())
		}
		ev.Str("request_id", RequestIDFrom(c)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", headers).
			Msg("http_request")
	}
}
