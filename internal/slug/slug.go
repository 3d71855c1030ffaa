// Package slug turns free text into URL-safe identifiers and resolves collisions
// inside a scope by sequential probing: base, base-1, base-2 and so on.
package slug

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/vadimbarashkov/smartlinks/internal/entity"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultMaxAttempts = 100
	DefaultFallback    = "smartlink"

	// MaxLength matches the width of the slug columns.
	MaxLength = 255
)

// ExistsFunc reports whether slug is already taken inside scopeID by a record
// other than excludeID. An excludeID of 0 excludes nothing.
type ExistsFunc func(ctx context.Context, scopeID int64, slug string, excludeID int64) (bool, error)

// Generator produces collision-free slugs. It keeps no state between calls.
type Generator struct {
	maxAttempts int
	fallback    string
}

type Option func(*Generator)

// WithMaxAttempts caps the number of probed candidates.
func WithMaxAttempts(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithFallback sets the base used when normalization leaves nothing.
func WithFallback(s string) Option {
	return func(g *Generator) {
		if f := Normalize(s); f != "" {
			g.fallback = f
		}
	}
}

func New(opts ...Option) *Generator {
	g := &Generator{
		maxAttempts: DefaultMaxAttempts,
		fallback:    DefaultFallback,
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Generate returns the first free slug derived from candidate in scopeID.
// Every probe calls exists again; nothing is cached between probes.
func (g *Generator) Generate(ctx context.Context, candidate string, scopeID int64, exists ExistsFunc, excludeID int64) (string, error) {
	const op = "slug.Generator.Generate"

	base := Normalize(candidate)
	if base == "" {
		base = g.fallback
	}

	for i := 0; i < g.maxAttempts; i++ {
		slug := candidateAt(base, i)

		taken, err := exists(ctx, scopeID, slug, excludeID)
		if err != nil {
			return "", fmt.Errorf("%s: failed to check slug %q: %w", op, slug, err)
		}

		if !taken {
			return slug, nil
		}
	}

	return "", fmt.Errorf("%s: %q after %d attempts: %w", op, base, g.maxAttempts, entity.ErrSlugExhausted)
}

// candidateAt returns the i-th probe for base, cutting base so that the
// suffixed result fits in MaxLength. Normalized bases are ASCII, so byte
// offsets are safe.
func candidateAt(base string, i int) string {
	suffix := ""
	if i > 0 {
		suffix = "-" + strconv.Itoa(i)
	}

	if limit := MaxLength - len(suffix); len(base) > limit {
		base = strings.TrimRight(base[:limit], "-")
	}

	return base + suffix
}

// Normalize lowercases s, strips diacritics, drops apostrophes and turns every
// other run of characters outside [a-z0-9] into a single hyphen. The result
// never starts or ends with a hyphen and may be empty.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	folded, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		folded = strings.ToLower(s)
	}

	var b strings.Builder
	b.Grow(len(folded))

	sep := false
	for _, r := range folded {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if sep && b.Len() > 0 {
				b.WriteByte('-')
			}
			sep = false
			b.WriteRune(r)
		case r == '\'' || r == '’':
			// "don't" -> "dont"
		default:
			sep = true
		}
	}

	return b.String()
}
