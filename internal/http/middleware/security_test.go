package middleware

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func securityHeaders(opt SecurityOptions, req *http.Request) http.Header {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(SecurityHeaders(opt))
	r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Header()
}

func get(path string) *http.Request {
	return httptest.NewRequest(http.MethodGet, path, nil)
}

func TestSecurityHeaders_Baseline(t *testing.T) {
	h := securityHeaders(SecurityOptions{}, get("/api/v1/confessions"))

	want := map[string]string{
		"X-Content-Type-Options": "nosniff",
		"X-Frame-Options":        "DENY",
		"Referrer-Policy":        "no-referrer",
	}
	for k, v := range want {
		if h.Get(k) != v {
			t.Errorf("%s = %q; want %q", k, h.Get(k), v)
		}
	}
	for _, k := range []string{"Permissions-Policy", "X-Permitted-Cross-Domain-Policies", "Cache-Control", "Strict-Transport-Security"} {
		if h.Get(k) != "" {
			t.Errorf("unexpected %s: %q", k, h.Get(k))
		}
	}
}

func TestSecurityHeaders_Optional(t *testing.T) {
	tlsReq := get("/ok")
	tlsReq.TLS = &tls.ConnectionState{}
	h := securityHeaders(SecurityOptions{
		EnableHSTS:   true,
		HSTSMaxAge:   24 * time.Hour,
		NoStore:      true,
		EnablePolicy: true,
	}, tlsReq)

	if h.Get("Permissions-Policy") == "" || h.Get("X-Permitted-Cross-Domain-Policies") != "none" {
		t.Errorf("policy headers missing: %v", h)
	}
	if h.Get("Cache-Control") != "no-store" || h.Get("Pragma") != "no-cache" || h.Get("Expires") != "0" {
		t.Errorf("cache headers missing: %v", h)
	}
	if got := h.Get("Strict-Transport-Security"); got != "max-age=86400; includeSubDomains; preload" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestSecurityHeaders_HSTS(t *testing.T) {
	proxied := get("/ok")
	proxied.Header.Set("X-Forwarded-Proto", "HTTPS")

	cases := []struct {
		name string
		opt  SecurityOptions
		req  *http.Request
		want string
	}{
		{"default max age behind proxy", SecurityOptions{EnableHSTS: true}, proxied, "max-age=15552000; includeSubDomains; preload"},
		{"plain http", SecurityOptions{EnableHSTS: true}, get("/ok"), ""},
		{"disabled", SecurityOptions{HSTSMaxAge: time.Hour}, proxied, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := securityHeaders(tc.opt, tc.req).Get("Strict-Transport-Security"); got != tc.want {
				t.Fatalf("HSTS = %q; want %q", got, tc.want)
			}
		})
	}
}

func TestSecurityHeaders_NoStorePrefixes(t *testing.T) {
	opt := SecurityOptions{NoStorePrefixes: []string{"", "/api/v1/admin", "/api/v1/session"}}

	for path, want := range map[string]string{
		"/api/v1/admin/bans":  "no-store",
		"/api/v1/session":     "no-store",
		"/api/v1/confessions": "",
		"/healthz":            "",
	} {
		if got := securityHeaders(opt, get(path)).Get("Cache-Control"); got != want {
			t.Errorf("%s: Cache-Control = %q; want %q", path, got, want)
		}
	}
}
