// Package moderation provides the content filter applied to confessions and
// replies before they are stored.
//
// Matching is a case-insensitive substring test against a denylist of terms:
//
//   - Terms and input are normalised with Unicode case folding
//   - No stemming or word boundaries ("skill" matches "kill")
//   - The filter is immutable after construction and safe for concurrent use
//
// Over- and under-matching are accepted; the filter is a first line of
// defence, not a classifier.
package moderation

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"
)

// DefaultTerms is the built-in denylist used when no file is configured.
var DefaultTerms = []string{"kill", "murder", "stupid", "idiot", "fool"}

// Checker is the read side of a Filter, used by services.
type Checker interface {
	ContainsProfanity(text string) bool
	Match(text string) (string, bool)
}

// Option configures a Filter.
type Option func(*options)

type options struct {
	minTermRunes int
}

// WithMinTermRunes drops terms shorter than n runes after normalisation.
// Very short terms match almost everything as substrings.
func WithMinTermRunes(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.minTermRunes = n
		}
	}
}

// Filter holds the folded denylist.
type Filter struct {
	terms []string
	raw   []string
}

// NewFilter builds a Filter from terms. Blank and duplicate terms are
// ignored; order of first appearance is kept so Match is deterministic.
func NewFilter(terms []string, opts ...Option) *Filter {
	o := options{minTermRunes: 1}
	for _, fn := range opts {
		fn(&o)
	}
	f := &Filter{}
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(normalizeWhitespace(t))
		if t == "" {
			continue
		}
		folded := fold(t)
		if len([]rune(folded)) < o.minTermRunes {
			continue
		}
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		f.terms = append(f.terms, folded)
		f.raw = append(f.raw, t)
	}
	return f
}

// Terms returns the configured terms as given (not folded).
func (f *Filter) Terms() []string {
	out := make([]string, len(f.raw))
	copy(out, f.raw)
	return out
}

// ContainsProfanity reports whether text contains any denylisted term.
func (f *Filter) ContainsProfanity(text string) bool {
	_, ok := f.Match(text)
	return ok
}

// Match returns the first denylisted term found in text. The term is meant
// for logs only.
func (f *Filter) Match(text string) (string, bool) {
	if f == nil || len(f.terms) == 0 || text == "" {
		return "", false
	}
	folded := fold(normalizeWhitespace(text))
	for i, t := range f.terms {
		if strings.Contains(folded, t) {
			return f.raw[i], true
		}
	}
	return "", false
}

// denylistFile is the YAML document shape: {terms: [...]}.
type denylistFile struct {
	Terms []string `yaml:"terms"`
}

// LoadDenylist reads a YAML denylist from path. An empty path yields the
// built-in DefaultTerms.
func LoadDenylist(path string, opts ...Option) (*Filter, error) {
	if strings.TrimSpace(path) == "" {
		return NewFilter(DefaultTerms, opts...), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read denylist: %w", err)
	}
	return LoadDenylistReader(bytes.NewReader(b), opts...)
}

// LoadDenylistReader parses a YAML denylist from r. A document without terms
// is an error so a typo cannot silently disable the filter.
func LoadDenylistReader(r io.Reader, opts ...Option) (*Filter, error) {
	var doc denylistFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("denylist: empty document")
		}
		return nil, fmt.Errorf("parse denylist: %w", err)
	}
	f := NewFilter(doc.Terms, opts...)
	if len(f.terms) == 0 {
		return nil, fmt.Errorf("denylist: no terms")
	}
	return f, nil
}

// fold applies Unicode case folding. A Caser is stateful, so one is created
// per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
