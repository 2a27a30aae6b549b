// Package utils provides small, generic helper functions used by the HTTP
// layer to read query parameters. These utilities are independent of domain
// or business logic.
package utils

import (
	"strconv"
	"strings"
)

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to [lo, hi]; values below lo become def.
func ClampInt(n, def, lo, hi int) int {
	if n < lo {
		return def
	}
	if n > hi {
		return hi
	}
	return n
}

// SplitIDs parses a comma-separated list ("a,b,,c ") into trimmed, unique,
// non-empty values in first-seen order, keeping at most max (max <= 0 means
// no cap).
func SplitIDs(s string, max int) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
		if max > 0 && len(out) == max {
			break
		}
	}
	return out
}
