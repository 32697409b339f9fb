// Package token normalizes organization identifiers into package segments and
// substitutes them for the PACKAGE placeholder in template bodies.
package token

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/santiagomed/modkit/core"
)

const (
	// DefaultPlaceholder is the token template bodies carry.
	DefaultPlaceholder = "PACKAGE"

	// DefaultFallback is used when the organization string is blank.
	DefaultFallback = "example"
)

// reverse-domain prefixes dropped when more segments follow them.
var domainPrefixes = map[string]bool{
	"com": true, "org": true, "net": true, "io": true,
	"dev": true, "app": true, "co": true, "me": true,
}

var (
	wrappedRe   = regexp.MustCompile(`^\$\{\s*(.*?)\s*\}$`)
	separatorRe = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// Resolver replaces every textual form of one placeholder with a single
// normalized segment.
type Resolver struct {
	Placeholder string
	Fallback    string

	wrapped   *regexp.Regexp
	qualified *regexp.Regexp
	path      *regexp.Regexp
	raw       *regexp.Regexp
}

// NewResolver returns a Resolver for the PACKAGE placeholder.
func NewResolver() *Resolver {
	return NewResolverFor(DefaultPlaceholder, DefaultFallback)
}

// NewResolverFor builds a Resolver for a custom placeholder and fallback.
func NewResolverFor(placeholder, fallback string) *Resolver {
	q := regexp.QuoteMeta(placeholder)
	return &Resolver{
		Placeholder: placeholder,
		Fallback:    fallback,
		wrapped:     regexp.MustCompile(`\$\{\s*` + q + `\s*\}`),
		qualified:   regexp.MustCompile(`\.` + q + `\b`),
		path:        regexp.MustCompile(`/` + q + `\b`),
		raw:         regexp.MustCompile(`\b` + q + `\b`),
	}
}

// Normalize turns an organization string into one camelCase segment.
//
//	""                 -> fallback
//	"${com.example}"   -> "example"
//	"com.Example-Org"  -> "exampleOrg"
//
// It fails with core.ErrConfiguration when nothing usable is left.
func (r *Resolver) Normalize(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if m := wrappedRe.FindStringSubmatch(value); m != nil {
		value = strings.TrimSpace(m[1])
	}
	if value == "" {
		value = r.Fallback
	}

	segments := strings.Split(value, ".")
	for len(segments) > 1 && domainPrefixes[strings.ToLower(strings.TrimSpace(segments[0]))] {
		segments = segments[1:]
	}

	var words []string
	for _, seg := range segments {
		for _, w := range separatorRe.Split(seg, -1) {
			if w != "" {
				words = append(words, w)
			}
		}
	}

	var b strings.Builder
	for i, w := range words {
		if i == 0 {
			b.WriteString(strings.ToLower(w))
			continue
		}
		b.WriteString(capitalize(w))
	}

	out := b.String()
	if out == "" {
		return "", core.ConfigurationErrorf("organization %q resolves to an empty package segment", raw)
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out, nil
}

// Apply normalizes organization and replaces the wrapped, qualified, path and
// raw forms of the placeholder in body with the same segment.
func (r *Resolver) Apply(body, organization string) (string, error) {
	segment, err := r.Normalize(organization)
	if err != nil {
		return "", err
	}
	return r.Replace(body, segment), nil
}

// Replace substitutes an already normalized segment for every placeholder form.
func (r *Resolver) Replace(body, segment string) string {
	out := r.wrapped.ReplaceAllLiteralString(body, segment)
	out = r.qualified.ReplaceAllLiteralString(out, "."+segment)
	out = r.path.ReplaceAllLiteralString(out, "/"+segment)
	return r.raw.ReplaceAllLiteralString(out, segment)
}

// Qualified joins the normalized organization with suffix segments using dots,
// e.g. Qualified("com.Acme", "checkout", "domain") = "com.acme.checkout.domain".
// The prefix is always "com", matching the com.PACKAGE form of templates, so
// "org.acme" and "io.acme" also give "com.acme".
func (r *Resolver) Qualified(organization string, suffix ...string) (string, error) {
	segment, err := r.Normalize(organization)
	if err != nil {
		return "", err
	}
	parts := append([]string{"com", segment}, nonEmpty(suffix)...)
	return strings.Join(parts, "."), nil
}

// Path is Qualified with slashes, for source directories.
func (r *Resolver) Path(organization string, suffix ...string) (string, error) {
	q, err := r.Qualified(organization, suffix...)
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(q, ".", "/"), nil
}

func capitalize(w string) string {
	runes := []rune(strings.ToLower(w))
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
