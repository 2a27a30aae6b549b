package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestRedact(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "page=2&limit=50", "page=2&limit=50"},
		{"email", "contact a.b+tag@example.com now", "contact [REDACTED:email] now"},
		{"uuid not phone", "id=123e4567-e89b-12d3-a456-426614174000", "id=[REDACTED:id]"},
		{"session", "by sess_k2j3h4g5f6lm0abc", "by [REDACTED:session]"},
		{"phone", "call 555-123-4567", "call [REDACTED:phone]"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := redact(tc.in); got != tc.want {
				t.Fatalf("redact(%q) = %q; want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestRedactingLogger_ScrubsQueryAndHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{MaskHeaders: []string{"x-api-key"}}))
	r.GET("/api/v1/confessions/:id", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	q := "email=a.b+tag@example.com&phone=+1-555-123-4567&id=123e4567-e89b-12d3-a456-426614174000"
	req := httptest.NewRequest(http.MethodGet, "/api/v1/confessions/123e4567-e89b-12d3-a456-426614174000?"+q, nil)
	req.Header.Set(requestIDHeader, "rid-scrub")
	req.Header.Set("Authorization", "Bearer secret")
	req.Header.Set("Cookie", "campushub_session=topsecret")
	req.Header.Set("X-Api-Key", "shhh")
	req.Header.Set(HeaderOwnerToken, "eyJhbGciOi.owner.token")
	req.Header.Set(HeaderAdminToken, "admin-secret")
	req.Header.Set(HeaderSessionID, "sess_k2j3h4g5f6lm0abc")
	req.Header.Set("X-Note", "mail a@b.com phone 555-123-4567")
	r.ServeHTTP(httptest.NewRecorder(), req)

	var access map[string]any
	for _, line := range logLines(t, buf) {
		if line["message"] == "http_request" {
			access = line
		}
	}
	if access == nil {
		t.Fatalf("no access log:\n%s", buf.String())
	}
	if access["level"] != "info" || access["path"] != "/api/v1/confessions/:id" || access["request_id"] != "rid-scrub" {
		t.Fatalf("unexpected access fields: %v", access)
	}
	query, _ := access["query"].(string)
	for _, tag := range []string{"[REDACTED:email]", "[REDACTED:phone]", "[REDACTED:id]"} {
		if !strings.Contains(query, tag) {
			t.Fatalf("query %q lacks %s", query, tag)
		}
	}

	headers, _ := access["headers"].(map[string]any)
	for _, h := range []string{"Authorization", "Cookie", "X-Api-Key", HeaderOwnerToken, HeaderAdminToken, HeaderSessionID} {
		if headers[h] != redacted {
			t.Errorf("header %s = %v; want masked", h, headers[h])
		}
	}
	if headers["X-Note"] != "mail [REDACTED:email] phone [REDACTED:phone]" {
		t.Errorf("X-Note = %v", headers["X-Note"])
	}
	for _, secret := range []string{"admin-secret", "owner.token", "topsecret", "sess_k2j3"} {
		if strings.Contains(buf.String(), secret) {
			t.Fatalf("%q leaked to logs:\n%s", secret, buf.String())
		}
	}
}

func TestRedactingLogger_Levels(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name    string
		handler gin.HandlerFunc
		want    string
	}{
		{"ok", func(c *gin.Context) { c.Status(http.StatusNoContent) }, "info"},
		{"client error", func(c *gin.Context) { c.Status(http.StatusNotFound) }, "warn"},
		{"server error", func(c *gin.Context) { c.Status(http.StatusServiceUnavailable) }, "error"},
		{"gin error on 200", func(c *gin.Context) {
			_ = c.Error(http.ErrNoCookie)
			c.Status(http.StatusOK)
		}, "error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := captureLogger(t)
			r := gin.New()
			r.Use(RedactingLogger(RedactOptions{}))
			r.GET("/x", tc.handler)
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			lines := logLines(t, buf)
			if len(lines) != 1 || lines[0]["level"] != tc.want {
				t.Fatalf("want one %s line, got:\n%s", tc.want, buf.String())
			}
		})
	}
}

func TestRedactingLogger_UnmatchedPathIsRaw(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RedactingLogger(RedactOptions{}))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/wp-login.php", nil))

	lines := logLines(t, buf)
	if len(lines) != 1 || lines[0]["path"] != "/wp-login.php" || lines[0]["status"] != float64(http.StatusNotFound) {
		t.Fatalf("unexpected log:\n%s", buf.String())
	}
}
