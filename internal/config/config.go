// Package config loads campushub settings from the environment. Every key has
// a default; a malformed value or one outside its range makes Load fail with
// every problem found, not just the first.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // POSTING_TZ must resolve in minimal containers

	"github.com/tbourn/campus-hub/internal/sysutil"
)

// MinSecretLength is the minimum length in bytes of SESSION_SECRET and
// OWNER_TOKEN_SECRET.
const MinSecretLength = 32

type CORSConfig struct {
	AllowedOrigins []string // CORS_ALLOWED_ORIGINS, empty allows any origin without credentials
}

type SecurityConfig struct {
	EnableHSTS bool          // ENABLE_HSTS
	HSTSMaxAge time.Duration // HSTS_MAX_AGE
}

type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT, host:port
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE
	ServiceName string  // OTEL_SERVICE_NAME
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG
}

// SessionConfig is the signed device session cookie.
type SessionConfig struct {
	Secret     string        // SESSION_SECRET
	CookieName string        // SESSION_COOKIE_NAME
	Secure     bool          // SESSION_SECURE
	MaxAge     time.Duration // SESSION_MAX_AGE
	Ephemeral  bool          // Secret was generated for this process
}

// OwnerTokenConfig signs the capability handed back on submit.
type OwnerTokenConfig struct {
	Secret    string        // OWNER_TOKEN_SECRET
	TTL       time.Duration // OWNER_TOKEN_TTL
	Ephemeral bool          // Secret was generated for this process
}

type PolicyConfig struct {
	EnforcePostingWindow bool           // ENFORCE_POSTING_WINDOW
	PostingDays          []time.Weekday // POSTING_DAYS, e.g. "tue,fri"
	Location             *time.Location // POSTING_TZ
	FlagThreshold        int            // FLAG_THRESHOLD
	DenylistPath         string         // DENYLIST_PATH, yaml; empty uses the built-in list
	MinTermRunes         int            // DENYLIST_MIN_TERM_RUNES, shorter terms are dropped
}

// Config is the full runtime configuration.
type Config struct {
	Port              string
	ReadTimeout       time.Duration
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	MaxHeaderBytes    int
	GinMode           string // debug, release or test

	LogLevel       string
	LogPretty      bool
	SwaggerEnabled bool
	APIBasePath    string

	DatabaseURL string // sqlite://path or postgres://dsn

	RateRPS         float64
	RateBurst       int
	SubmitRateRPS   float64 // confessions and replies, keyed by IP
	SubmitRateBurst int

	CORS     CORSConfig
	Security SecurityConfig

	IdempotencyTTL time.Duration

	Session    SessionConfig
	OwnerToken OwnerTokenConfig
	Policy     PolicyConfig
	AdminToken string // ADMIN_TOKEN; empty locks the admin routes

	BanCacheSize int
	BanCacheTTL  time.Duration

	OTEL OTELConfig
}

// MustLoad is Load for callers that cannot run misconfigured.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads the environment, fills defaults, normalizes and validates.
// Unset secrets are replaced by random per-process ones and flagged
// Ephemeral.
func Load() (Config, error) {
	var env envReader
	cfg := Config{
		Port:              env.getenv("PORT", "8080"),
		ReadTimeout:       env.getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: env.getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      env.getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       env.getdur("IDLE_TIMEOUT", time.Minute),
		MaxHeaderBytes:    env.getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           env.getenv("GIN_MODE", "release"),

		LogLevel:       env.getenv("LOG_LEVEL", "info"),
		LogPretty:      env.getbool("LOG_PRETTY", false),
		SwaggerEnabled: env.getbool("SWAGGER_ENABLED", false),
		APIBasePath:    env.getenv("API_BASE_PATH", "/api/v1"),

		DatabaseURL: env.getenv("DATABASE_URL", "sqlite://campushub.db"),

		RateRPS:         env.getfloat("RATE_RPS", 5),
		RateBurst:       env.getint("RATE_BURST", 10),
		SubmitRateRPS:   env.getfloat("SUBMIT_RATE_RPS", 0.2),
		SubmitRateBurst: env.getint("SUBMIT_RATE_BURST", 3),

		CORS: CORSConfig{AllowedOrigins: splitCSV(env.getenv("CORS_ALLOWED_ORIGINS", ""))},
		Security: SecurityConfig{
			EnableHSTS: env.getbool("ENABLE_HSTS", false),
			HSTSMaxAge: env.getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		IdempotencyTTL: env.getdur("IDEMPOTENCY_TTL", 24*time.Hour),

		Session: SessionConfig{
			Secret:     env.getenv("SESSION_SECRET", ""),
			CookieName: env.getenv("SESSION_COOKIE_NAME", "campushub_session"),
			Secure:     env.getbool("SESSION_SECURE", false),
			MaxAge:     env.getdur("SESSION_MAX_AGE", 365*24*time.Hour),
		},
		OwnerToken: OwnerTokenConfig{
			Secret: env.getenv("OWNER_TOKEN_SECRET", ""),
			TTL:    env.getdur("OWNER_TOKEN_TTL", 30*24*time.Hour),
		},
		Policy: PolicyConfig{
			EnforcePostingWindow: env.getbool("ENFORCE_POSTING_WINDOW", false),
			PostingDays:          env.getweekdays("POSTING_DAYS", "tue,fri"),
			Location:             env.getlocation("POSTING_TZ", "UTC"),
			FlagThreshold:        env.getint("FLAG_THRESHOLD", 5),
			DenylistPath:         env.getenv("DENYLIST_PATH", ""),
			MinTermRunes:         env.getint("DENYLIST_MIN_TERM_RUNES", 1),
		},
		AdminToken: env.getenv("ADMIN_TOKEN", ""),

		BanCacheSize: env.getint("BAN_CACHE_SIZE", 4096),
		BanCacheTTL:  env.getdur("BAN_CACHE_TTL", time.Minute),

		OTEL: OTELConfig{
			Enabled:     env.getbool("OTEL_ENABLED", false),
			Endpoint:    env.getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    env.getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: env.getenv("OTEL_SERVICE_NAME", "campus-hub"),
			SampleRatio: env.getfloat("OTEL_TRACES_SAMPLER_ARG", 1),
		},
	}
	if err := env.err(); err != nil {
		return cfg, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	var err error
	if cfg.Session.Secret, cfg.Session.Ephemeral, err = secretOrEphemeral("SESSION_SECRET", cfg.Session.Secret); err != nil {
		return cfg, err
	}
	if cfg.OwnerToken.Secret, cfg.OwnerToken.Ephemeral, err = secretOrEphemeral("OWNER_TOKEN_SECRET", cfg.OwnerToken.Secret); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Port = strings.TrimSpace(c.Port)
	c.DatabaseURL = strings.TrimSpace(c.DatabaseURL)
	c.APIBasePath = normalizeBasePath(c.APIBasePath)

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "warning" {
		c.LogLevel = "warn"
	}
	c.GinMode = strings.ToLower(strings.TrimSpace(c.GinMode))
	switch c.GinMode {
	case "debug", "release", "test":
	default:
		c.GinMode = "release"
	}
}

// Validate reports every out-of-range setting, joined.
func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, msg string) {
		if !ok {
			errs = append(errs, errors.New(msg))
		}
	}

	_, lvlErr := sysutil.ParseLogLevel(c.LogLevel)
	check(lvlErr == nil, "LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic")
	check(c.Port != "", "PORT must not be empty")
	check(c.ReadTimeout > 0 && c.ReadHeaderTimeout > 0 && c.WriteTimeout > 0 && c.IdleTimeout > 0,
		"timeouts must be positive durations")
	check(c.MaxHeaderBytes > 0, "MAX_HEADER_BYTES must be > 0")
	check(strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasPrefix(c.DatabaseURL, "postgres://"),
		"DATABASE_URL must start with sqlite:// or postgres://")
	check(c.RateRPS >= 0 && c.SubmitRateRPS >= 0, "RATE_RPS and SUBMIT_RATE_RPS must be >= 0")
	check(c.RateBurst >= 1 && c.SubmitRateBurst >= 1, "RATE_BURST and SUBMIT_RATE_BURST must be >= 1")
	check(c.Security.HSTSMaxAge >= 0, "HSTS_MAX_AGE must be >= 0")
	check(c.IdempotencyTTL > 0, "IDEMPOTENCY_TTL must be > 0")
	check(c.OwnerToken.TTL > 0, "OWNER_TOKEN_TTL must be > 0")
	check(c.Session.MaxAge > 0, "SESSION_MAX_AGE must be > 0")
	check(c.Policy.FlagThreshold >= 1, "FLAG_THRESHOLD must be >= 1")
	check(c.Policy.MinTermRunes >= 1, "DENYLIST_MIN_TERM_RUNES must be >= 1")
	check(c.BanCacheSize >= 1 && c.BanCacheTTL > 0, "BAN_CACHE_SIZE must be >= 1 and BAN_CACHE_TTL > 0")
	check(c.OTEL.SampleRatio >= 0 && c.OTEL.SampleRatio <= 1, "OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	check(!c.OTEL.Enabled || strings.TrimSpace(c.OTEL.Endpoint) != "",
		"OTEL_EXPORTER_OTLP_ENDPOINT is required when OTEL_ENABLED")

	return errors.Join(errs...)
}

// envReader reads typed keys, remembering every malformed value so Load can
// report them together.
type envReader struct {
	errs []error
}

func (e *envReader) err() error { return errors.Join(e.errs...) }

func (e *envReader) bad(k, v string, err error) {
	e.errs = append(e.errs, fmt.Errorf("%s=%q: %w", k, v, err))
}

// lookup returns the raw value of k, treating empty as unset.
func (e *envReader) lookup(k string) (string, bool) {
	v, ok := os.LookupEnv(k)
	return v, ok && strings.TrimSpace(v) != ""
}

func (e *envReader) getenv(k, def string) string {
	if v, ok := e.lookup(k); ok {
		return v
	}
	return def
}

func (e *envReader) getint(k string, def int) int {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	i, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		e.bad(k, v, errors.New("not an integer"))
		return def
	}
	return i
}

func (e *envReader) getfloat(k string, def float64) float64 {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		e.bad(k, v, errors.New("not a number"))
		return def
	}
	return f
}

func (e *envReader) getdur(k string, def time.Duration) time.Duration {
	v, ok := e.lookup(k)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		e.bad(k, v, errors.New("not a duration"))
		return def
	}
	return d
}

// getbool accepts the usual spellings (1/0, true/false, yes/no, on/off)
// and keeps def for anything else.
func (e *envReader) getbool(k string, def bool) bool {
	v, _ := os.LookupEnv(k)
	return sysutil.ParseBool(v, def)
}

func (e *envReader) getweekdays(k, def string) []time.Weekday {
	v := e.getenv(k, def)
	days, err := parseWeekdays(v)
	if err != nil {
		e.bad(k, v, err)
	}
	return days
}

func (e *envReader) getlocation(k, def string) *time.Location {
	v := e.getenv(k, def)
	loc, err := time.LoadLocation(strings.TrimSpace(v))
	if err != nil {
		e.bad(k, v, err)
		return time.UTC
	}
	return loc
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// normalizeBasePath returns p with one leading slash and no trailing one.
func normalizeBasePath(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	return "/" + p
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// parseWeekdays turns "tue,fri" into weekdays in the order given, without
// duplicates.
func parseWeekdays(s string) ([]time.Weekday, error) {
	seen := make(map[time.Weekday]bool, 7)
	var out []time.Weekday
	for _, name := range splitCSV(s) {
		d, ok := weekdayNames[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		return nil, errors.New("at least one weekday is required")
	}
	return out, nil
}

func secretOrEphemeral(name, v string) (secret string, ephemeral bool, err error) {
	if v != "" {
		if len(v) < MinSecretLength {
			return "", false, fmt.Errorf("%s must be at least %d bytes", name, MinSecretLength)
		}
		return v, false, nil
	}
	var b [MinSecretLength]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", false, fmt.Errorf("%s: generate: %w", name, err)
	}
	return hex.EncodeToString(b[:]), true, nil
}
