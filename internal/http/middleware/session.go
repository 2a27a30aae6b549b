package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"

	"github.com/tbourn/campus-hub/internal/identity"
)

// A device session is a pseudonymous id kept in a signed cookie. It keys the
// like ledger, ban checks and idempotency records and is never linked to a
// person. Clients without cookies may send it in X-Session-ID instead.

// Capability and session headers.
const (
	HeaderSessionID  = "X-Session-ID"
	HeaderOwnerToken = "X-Owner-Token"
	HeaderAdminToken = "X-Admin-Token"
)

const (
	ctxKeySessionID = "sessionID"
	sessionValueKey = "sessionID"
)

// SessionOptions configures the signed session cookie.
type SessionOptions struct {
	Secret     string
	CookieName string
	Secure     bool
	MaxAge     time.Duration
}

// NewSessionStore returns a cookie store signing with opts.Secret. The
// secret must be at least 32 bytes.
func NewSessionStore(opts SessionOptions) (*sessions.CookieStore, error) {
	if len(opts.Secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	store := sessions.NewCookieStore([]byte(opts.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store, nil
}

// DeviceSession resolves the device session of each request and stores it in
// the Gin context (see SessionIDFrom).
//
// Resolution order:
//  1. a valid id in the signed cookie;
//  2. otherwise a well-formed X-Session-ID header (no cookie is written);
//  3. otherwise a fresh id, persisted in a new cookie.
//
// A tampered or undecodable cookie is treated as absent.
func DeviceSession(store sessions.Store, cookieName string) gin.HandlerFunc {
	if cookieName == "" {
		cookieName = "campushub_session"
	}
	return func(c *gin.Context) {
		// Get returns a fresh session alongside a decode error.
		sess, _ := store.Get(c.Request, cookieName)

		id, _ := sess.Values[sessionValueKey].(string)
		switch {
		case identity.IsSessionID(id):
		case identity.IsSessionID(c.GetHeader(HeaderSessionID)):
			id = c.GetHeader(HeaderSessionID)
		default:
			id = identity.NewSessionID(time.Now())
			sess.Values[sessionValueKey] = id
			if err := sess.Save(c.Request, c.Writer); err != nil {
				LoggerFrom(c).Warn().Err(err).Msg("save session cookie")
			}
		}

		c.Set(ctxKeySessionID, id)
		c.Next()
	}
}

// SessionIDFrom returns the device session id resolved by DeviceSession, or
// "" when the middleware is not installed.
func SessionIDFrom(c *gin.Context) string {
	v, _ := c.Get(ctxKeySessionID)
	return asString(v)
}
