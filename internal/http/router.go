// Package httpapi assembles the Gin engine for the confession board: the
// middleware chain, the public and admin API under the configured base path,
// the live feed at /ws, and the operational endpoints (/health, /metrics and
// optionally /swagger).
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/tbourn/campus-hub/docs" // registers the swagger document
	"github.com/tbourn/campus-hub/internal/capability"
	"github.com/tbourn/campus-hub/internal/config"
	"github.com/tbourn/campus-hub/internal/http/handlers"
	"github.com/tbourn/campus-hub/internal/http/middleware"
	"github.com/tbourn/campus-hub/internal/moderation"
	"github.com/tbourn/campus-hub/internal/policy"
	"github.com/tbourn/campus-hub/internal/realtime"
	"github.com/tbourn/campus-hub/internal/repo"
	"github.com/tbourn/campus-hub/internal/services"
)

// maxBodyBytes caps request bodies; the largest payload is a 500 character
// confession.
const maxBodyBytes = 64 << 10

// RegisterRoutes builds the services from db and cfg and mounts every route
// on r. A nil hub disables /ws and live events.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. DeviceSession: resolve the pseudonymous session (API routes only)
//  4. RedactingLogger: structured logs with PII scrubbing
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics
//  8. Idempotency validator (before rate limiter so replays bypass it)
//  9. Rate limiter (per session/IP)
//  10. CORS, security headers and compression
func RegisterRoutes(r *gin.Engine, db *gorm.DB, hub *realtime.Hub, cfg config.Config) error {
	// Dependency injection: services ← repo/db/policy/filter/tokens
	filter, err := moderation.LoadDenylist(cfg.Policy.DenylistPath,
		moderation.WithMinTermRunes(cfg.Policy.MinTermRunes))
	if err != nil {
		return err
	}
	owners, err := capability.New(cfg.OwnerToken.Secret, cfg.OwnerToken.TTL)
	if err != nil {
		return fmt.Errorf("owner tokens: %w", err)
	}
	store, err := middleware.NewSessionStore(middleware.SessionOptions{
		Secret:     cfg.Session.Secret,
		CookieName: cfg.Session.CookieName,
		Secure:     cfg.Session.Secure,
		MaxAge:     cfg.Session.MaxAge,
	})
	if err != nil {
		return err
	}

	var events services.Publisher
	if hub != nil {
		events = hub
	}
	bans := services.NewBanService(db, cfg.BanCacheSize, cfg.BanCacheTTL)
	confSvc := services.NewConfessionService(db,
		policy.New(cfg.Policy.PostingDays, cfg.Policy.EnforcePostingWindow, cfg.Policy.Location),
		filter, bans, owners, events,
	)
	if cfg.Policy.FlagThreshold > 0 {
		confSvc.FlagThreshold = cfg.Policy.FlagThreshold
	}
	h := handlers.New(confSvc,
		services.NewEngagementService(db, events),
		services.NewModerationService(db, events),
		bans,
	)
	h.IdempotencyTTL = cfg.IdempotencyTTL

	apiBase := cfg.APIBasePath // e.g. "/api/v1"

	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Device sessions; probes and scrapes never get a cookie
	r.Use(under(apiBase, middleware.DeviceSession(store, cfg.Session.CookieName)))

	// 4) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{}))

	// 5) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit
	r.Use(limitBody(maxBodyBytes))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics("/ws"))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, sessionID, scope, key string, now time.Time) (bool, error) {
			_, err := repo.GetIdempotency(ctx, db, sessionID, scope, key, now)
			switch {
			case errors.Is(err, repo.ErrNotFound):
				return false, nil
			case err != nil:
				return false, err
			}
			return true, nil
		},
	))

	// 9) Token-bucket rate limiter per session/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySessionOrIP()).Named("global")
	r.Use(rl.Handler())

	// 10) CORS, then security headers and compression
	r.Use(corsHandlers(cfg.CORS.AllowedOrigins)...)

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:      cfg.Security.EnableHSTS,
		HSTSMaxAge:      cfg.Security.HSTSMaxAge,
		NoStorePrefixes: []string{joinPath(apiBase, "/admin"), joinPath(apiBase, "/session")},
		EnablePolicy:    true,
	}))

	// Compression; the websocket upgrade and Prometheus scrapes stay raw
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/ws", "/metrics"})))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Live feed
	if hub != nil {
		r.GET("/ws", gin.WrapF(hub.ServeWS))
	}

	// API docs
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Stricter bucket for writes that create content, keyed by IP since a
	// client can always drop its session cookie.
	submitRL := middleware.NewRateLimiter(cfg.SubmitRateRPS, cfg.SubmitRateBurst, middleware.KeyByIP()).Named("submit")

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Confessions
		api.GET("/confessions", h.ListConfessions)
		api.POST("/confessions", submitRL.Handler(), h.SubmitConfession)
		api.GET("/confessions/top", h.TopConfession)
		api.GET("/confessions/stats", h.ConfessionStats)
		api.GET("/confessions/posting-window", h.PostingWindow)
		api.GET("/confessions/:id", h.GetConfession)
		api.PUT("/confessions/:id", h.EditConfession)
		api.DELETE("/confessions/:id", h.DeleteConfession)

		// Engagement
		api.POST("/confessions/:id/like", h.LikeConfession)
		api.DELETE("/confessions/:id/like", h.UnlikeConfession)
		api.POST("/confessions/:id/replies", submitRL.Handler(), h.SubmitReply)
		api.POST("/confessions/:id/flag", h.FlagConfession)
		api.GET("/session", h.Session)
	}

	// Admin
	admin := api.Group("/admin", middleware.RequireAdmin(cfg.AdminToken))
	{
		admin.GET("/confessions", h.ListModeration)
		admin.PUT("/confessions/:id/status", h.SetConfessionStatus)
		admin.PUT("/confessions/:id/top", h.SetTopConfession)
		admin.GET("/bans", h.ListBans)
		admin.POST("/bans", h.CreateBan)
		admin.DELETE("/bans/:id", h.LiftBan)
	}
	return nil
}

var (
	corsMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsAllow   = []string{
		"Origin", "Content-Type", "Accept",
		middleware.HeaderIdempotencyKey,
		middleware.HeaderOwnerToken,
		middleware.HeaderSessionID,
		middleware.HeaderAdminToken,
	}
	corsExpose = []string{"X-Request-ID", "Content-Length", "ETag", "Idempotency-Replayed", "Retry-After"}
)

// corsHandlers builds the CORS chain. With no allowlist any origin may call
// the API but never with credentials; with one, listed origins get their
// Origin echoed back and may send the session cookie.
func corsHandlers(origins []string) []gin.HandlerFunc {
	base := cors.Config{
		AllowMethods:  corsMethods,
		AllowHeaders:  corsAllow,
		ExposeHeaders: corsExpose,
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		base.AllowAllOrigins = true
		return []gin.HandlerFunc{
			// ACAO on every response, including those without an Origin header.
			func(c *gin.Context) {
				c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
				c.Next()
			},
			cors.New(base),
		}
	}

	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	base.AllowOrigins = origins
	base.AllowCredentials = true
	return []gin.HandlerFunc{
		func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Set("Access-Control-Allow-Credentials", "true")
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		},
		cors.New(base),
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// under runs mw only for requests below prefix ("" or "/" means all).
func under(prefix string, mw gin.HandlerFunc) gin.HandlerFunc {
	if prefix == "" || prefix == "/" {
		return mw
	}
	return func(c *gin.Context) {
		p := c.Request.URL.Path
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			mw(c)
			return
		}
		c.Next()
	}
}

// joinPath appends suffix to a base path that may be "" or "/".
func joinPath(base, suffix string) string {
	return strings.TrimRight(base, "/") + suffix
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
