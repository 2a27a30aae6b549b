// Package identity generates the pseudonymous identifiers shown on the
// confession board: per-post anonymous display names, device session ids,
// and reply ids. None of these identify a person.
package identity

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	anonPrefix  = "Anon #"
	anonMin     = 1000
	anonMax     = 9999
	sessPrefix  = "sess_"
	replyPrefix = "reply_"
)

// GenerateAnonID returns a display pseudonym "Anon #NNNN" with NNNN uniform
// in [1000, 9999]. Collisions across posts are expected and harmless.
func GenerateAnonID() string {
	return anonPrefix + strconv.Itoa(anonMin+randInt(anonMax-anonMin+1))
}

// NewSessionID returns "sess_" followed by a random base36 part and the
// base36 unix-millisecond timestamp of now.
func NewSessionID(now time.Time) string {
	var b strings.Builder
	b.WriteString(sessPrefix)
	for i := 0; i < 9; i++ {
		b.WriteString(strconv.FormatInt(int64(randInt(36)), 36))
	}
	b.WriteString(strconv.FormatInt(now.UnixMilli(), 36))
	return b.String()
}

// NewReplyID returns "reply_" plus 12 hex characters of a random UUID.
func NewReplyID() string {
	return replyPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// IsSessionID reports whether s has the shape produced by NewSessionID.
// Client supplied session ids are only honoured when they pass this check.
func IsSessionID(s string) bool {
	if !strings.HasPrefix(s, sessPrefix) || len(s) < len(sessPrefix)+10 || len(s) > 64 {
		return false
	}
	for _, r := range s[len(sessPrefix):] {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'z') {
			return false
		}
	}
	return true
}

// randInt returns a uniform int in [0, n).
func randInt(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is unusable.
		panic(err)
	}
	return int(v.Int64())
}
