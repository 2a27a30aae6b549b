package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func captureLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := log.Logger
	t.Cleanup(func() { log.Logger = prev })
	log.Logger = zerolog.New(&buf)
	return &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, l := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if l == "" {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(l), &m); err != nil {
			t.Fatalf("bad log line %q: %v", l, err)
		}
		out = append(out, m)
	}
	return out
}

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		sent string
		keep bool
	}{
		{"absent", "", false},
		{"well formed", "edge-7f3a:01.b_c", true},
		{"uppercase", "Z-REQ-123", true},
		{"spaces", "not an id", false},
		{"log injection", "abc\"}\n{\"level\":\"error", false},
		{"too long", strings.Repeat("a", maxRequestIDLength+1), false},
		{"max length", strings.Repeat("a", maxRequestIDLength), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var seen string
			r := gin.New()
			r.Use(RequestID())
			r.GET("/rid", func(c *gin.Context) {
				seen = RequestIDFrom(c)
				c.Status(http.StatusNoContent)
			})

			req := httptest.NewRequest(http.MethodGet, "/rid", nil)
			if tc.sent != "" {
				req.Header.Set(requestIDHeader, tc.sent)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			got := w.Header().Get(requestIDHeader)
			if got != seen {
				t.Fatalf("header %q differs from context %q", got, seen)
			}
			if tc.keep {
				if got != tc.sent {
					t.Fatalf("id = %q; want %q", got, tc.sent)
				}
				return
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Fatalf("expected a minted uuid, got %q", got)
			}
		})
	}
}

func TestRequestIDFrom_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if got := RequestIDFrom(c); got != "" {
		t.Fatalf("RequestIDFrom = %q; want empty", got)
	}
	c.Writer.Header().Set(requestIDHeader, "rid-hdr")
	if got := RequestIDFrom(c); got != "rid-hdr" {
		t.Fatalf("RequestIDFrom = %q; want header fallback", got)
	}
}

func TestLoggerFrom_ReachesServices(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID())
	r.Use(func(c *gin.Context) { c.Set(ctxKeySessionID, "sess_ctx0000001"); c.Next() })
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/svc", func(c *gin.Context) {
		LoggerFrom(c).Info().Msg("from handler")
		zerolog.Ctx(c.Request.Context()).Info().Msg("from service")
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/svc", nil)
	req.Header.Set(requestIDHeader, "rid-svc")
	r.ServeHTTP(httptest.NewRecorder(), req)

	found := 0
	for _, line := range logLines(t, buf) {
		if msg := line["message"]; msg != "from handler" && msg != "from service" {
			continue
		}
		found++
		if line["request_id"] != "rid-svc" || line["session_id"] != "sess_ctx0000001" || line["path"] != "/svc" {
			t.Fatalf("log line lacks request fields: %v", line)
		}
	}
	if found != 2 {
		t.Fatalf("expected 2 scoped lines, got %d:\n%s", found, buf.String())
	}
}

func TestLoggerFrom_FallsBackToGlobal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	LoggerFrom(c).Info().Msg("plain")

	lines := logLines(t, buf)
	if len(lines) != 1 || lines[0]["message"] != "plain" {
		t.Fatalf("unexpected output: %s", buf.String())
	}
	if _, ok := lines[0]["request_id"]; ok {
		t.Fatalf("fallback logger carries request fields: %v", lines[0])
	}
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	buf := captureLogger(t)

	r := gin.New()
	r.Use(RequestID(), RedactingLogger(RedactOptions{}), Recovery())
	r.GET("/panic", func(c *gin.Context) { panic("kaboom") })
	r.GET("/late", func(c *gin.Context) {
		c.String(http.StatusOK, "partial")
		panic("late kaboom")
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	req.Header.Set(requestIDHeader, "rid-panic")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid json body: %v", err)
	}
	if body["code"] != "internal_error" || body["request_id"] != "rid-panic" {
		t.Fatalf("unexpected body: %v", body)
	}
	if strings.Contains(w.Body.String(), "kaboom") {
		t.Fatalf("panic value leaked: %s", w.Body.String())
	}

	var recovered bool
	for _, line := range logLines(t, buf) {
		if line["message"] == "panic recovered" && line["panic"] == "kaboom" && line["stack"] != nil {
			recovered = true
		}
	}
	if !recovered {
		t.Fatalf("panic not logged:\n%s", buf.String())
	}

	// Once the body has started the envelope cannot be appended.
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/late", nil))
	if w.Body.String() != "partial" {
		t.Fatalf("body = %q; want the partial write only", w.Body.String())
	}
}

func TestRecovery_RepanicsAbortHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	captureLogger(t)

	r := gin.New()
	r.Use(Recovery())
	r.GET("/abort", func(c *gin.Context) { panic(http.ErrAbortHandler) })

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("recovered %v; want http.ErrAbortHandler", rec)
		}
	}()
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/abort", nil))
	t.Fatalf("ErrAbortHandler was swallowed")
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"abcdefgh", 5, "abcde…"},
		{"abc", 0, "abc"},
		{"abc", -1, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.max); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q; want %q", tc.in, tc.max, got, tc.want)
		}
	}
	if asString(42) != "" || asString("x") != "x" {
		t.Fatalf("asString")
	}
}
