package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-hub/internal/http/middleware"
)

// headerReplayed marks a response served from a prior idempotent request.
const headerReplayed = "Idempotency-Replayed"

// ErrorResponse is the error envelope every endpoint returns.
//
//	HTTP/1.1 403 Forbidden
//	{
//	  "request_id": "123e4567-e89b-12d3-a456-426614174000",
//	  "code": "posting_closed",
//	  "message": "confessions can only be posted on posting days",
//	  "next_posting_date": "2025-03-07"
//	}
type ErrorResponse struct {
	// Echo of X-Request-ID, for matching client reports to server logs
	RequestID string `json:"request_id,omitempty" example:"123e4567-e89b-12d3-a456-426614174000"`
	// Stable, machine-readable code (see errors.go)
	Code string `json:"code" example:"not_found"`
	// Safe to show to users
	Message string `json:"message" example:"resource not found"`
	// Set with posting_closed only; local date submissions reopen
	NextPostingDate string `json:"next_posting_date,omitempty" example:"2025-03-07"`
}

// fail aborts with an error envelope.
func fail(c *gin.Context, status int, code, msg string) {
	failWith(c, status, ErrorResponse{Code: code, Message: msg})
}

// failWith aborts with resp, stamping the request id. 5xx responses are
// logged on the request-scoped logger; the envelope never carries the cause.
func failWith(c *gin.Context, status int, resp ErrorResponse) {
	resp.RequestID = c.Writer.Header().Get("X-Request-ID")

	if status >= http.StatusInternalServerError {
		ev := middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", resp.Code)
		if last := c.Errors.Last(); last != nil {
			ev = ev.Err(last.Err)
		}
		ev.Msg("api error")
	}

	c.AbortWithStatusJSON(status, resp)
}

// Fail lets the router answer fallbacks with the same envelope.
func Fail(c *gin.Context, status int, code, msg string) { fail(c, status, code, msg) }

func ok(c *gin.Context, status int, body any) {
	c.JSON(status, body)
}

func noContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// replayed answers a retried submission with the stored resource.
func replayed(c *gin.Context, body any) {
	c.Header(headerReplayed, "true")
	ok(c, http.StatusCreated, body)
}

// notModified sets etag and reports whether If-None-Match already matches it,
// in which case a 304 has been written.
func notModified(c *gin.Context, etag string) bool {
	c.Header("ETag", etag)
	inm := c.GetHeader("If-None-Match")
	if inm == "" {
		return false
	}
	for _, tag := range strings.Split(inm, ",") {
		if tag = strings.TrimSpace(tag); tag == etag || tag == "*" {
			c.Status(http.StatusNotModified)
			return true
		}
	}
	return false
}
