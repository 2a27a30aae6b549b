// Package sysutil holds process-level helpers shared by configuration, the
// CLI and query parsing.
package sysutil

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// ParseLogLevel maps a LOG_LEVEL value to a zerolog level. Blank means info
// and "warning" is accepted for warn.
func ParseLogLevel(lvl string) (zerolog.Level, error) {
	switch s := strings.ToLower(strings.TrimSpace(lvl)); s {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	case "debug", "info", "warn", "error", "fatal", "panic":
		return zerolog.ParseLevel(s)
	default:
		return zerolog.InfoLevel, fmt.Errorf("unknown log level %q", lvl)
	}
}

// SetLogLevel sets the global zerolog level. An unknown value leaves the
// level at info and is reported.
func SetLogLevel(lvl string) error {
	l, err := ParseLogLevel(lvl)
	zerolog.SetGlobalLevel(l)
	return err
}

// ParseBool reads the usual spellings of a boolean flag ("1", "yes", "on",
// "0", "no", "off" and so on). Anything else, blank included, yields def.
func ParseBool(v string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

// FirstNonEmpty returns the first value that is not blank, trimmed.
func FirstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
