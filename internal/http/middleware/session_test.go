package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-hub/internal/identity"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func sessionRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store, err := NewSessionStore(SessionOptions{Secret: testSecret, CookieName: "hub", MaxAge: time.Hour})
	if err != nil {
		t.Fatalf("NewSessionStore: %v", err)
	}
	r := gin.New()
	r.Use(DeviceSession(store, "hub"))
	r.GET("/who", func(c *gin.Context) { c.String(http.StatusOK, SessionIDFrom(c)) })
	return r
}

func TestNewSessionStore_RejectsShortSecret(t *testing.T) {
	if _, err := NewSessionStore(SessionOptions{Secret: "short"}); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestDeviceSession_IssuesAndReusesCookie(t *testing.T) {
	r := sessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	first := w.Body.String()
	if !identity.IsSessionID(first) {
		t.Fatalf("expected a fresh session id, got %q", first)
	}
	cookies := w.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "hub" || !cookies[0].HttpOnly {
		t.Fatalf("expected one HttpOnly session cookie, got %+v", cookies)
	}

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(cookies[0])
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req)
	if w2.Body.String() != first {
		t.Fatalf("cookie session not reused: %q vs %q", w2.Body.String(), first)
	}
	if len(w2.Result().Cookies()) != 0 {
		t.Fatalf("existing session must not be rewritten")
	}
}

func TestDeviceSession_HeaderFallback(t *testing.T) {
	r := sessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderSessionID, "sess_headerclient01")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != "sess_headerclient01" {
		t.Fatalf("header session ignored: %q", w.Body.String())
	}
	if len(w.Result().Cookies()) != 0 {
		t.Fatalf("header clients get no cookie")
	}

	// Malformed header values are ignored.
	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderSessionID, "'; drop table")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Body.String(); got == "'; drop table" || !identity.IsSessionID(got) {
		t.Fatalf("malformed header accepted: %q", got)
	}
}

func TestDeviceSession_CookieWinsOverHeader(t *testing.T) {
	r := sessionRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/who", nil))
	cookie := w.Result().Cookies()[0]
	fromCookie := w.Body.String()

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(cookie)
	req.Header.Set(HeaderSessionID, "sess_someoneelse01")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Body.String() != fromCookie {
		t.Fatalf("header overrode cookie session: %q", w.Body.String())
	}
}

func TestDeviceSession_TamperedCookieIsReplaced(t *testing.T) {
	r := sessionRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: "hub", Value: "forged-value"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if !identity.IsSessionID(w.Body.String()) {
		t.Fatalf("expected a fresh session, got %q", w.Body.String())
	}
	if c := w.Result().Cookies(); len(c) != 1 || strings.Contains(c[0].Value, "forged") {
		t.Fatalf("expected a replacement cookie, got %+v", c)
	}
}

func TestSessionIDFrom_NoMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	if got := SessionIDFrom(c); got != "" {
		t.Fatalf("expected empty session id, got %q", got)
	}
}
