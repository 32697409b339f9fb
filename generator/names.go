package generator

import (
	"regexp"
	"strings"
	"unicode"
)

var nonAlnumRe = regexp.MustCompile(`[^A-Za-z0-9]+`)

// Words splits a user supplied name on separators and camelCase humps:
// "checkout-flow", "Checkout Flow" and "checkoutFlow" all give
// [checkout flow].
func Words(name string) []string {
	var words []string
	for _, part := range nonAlnumRe.Split(name, -1) {
		var cur []rune
		runes := []rune(part)
		for i, r := range runes {
			if i > 0 && unicode.IsUpper(r) && (unicode.IsLower(runes[i-1]) || unicode.IsDigit(runes[i-1])) {
				words = append(words, strings.ToLower(string(cur)))
				cur = nil
			}
			cur = append(cur, r)
		}
		if len(cur) > 0 {
			words = append(words, strings.ToLower(string(cur)))
		}
	}
	return words
}

// ClassName is the PascalCase form: "checkout-flow" -> "CheckoutFlow".
func ClassName(name string) string {
	var b strings.Builder
	for _, w := range Words(name) {
		b.WriteString(strings.ToUpper(w[:1]) + w[1:])
	}
	return b.String()
}

// PackageName is the lowercase package segment: "checkout-flow" -> "checkoutflow".
func PackageName(name string) string {
	return strings.Join(Words(name), "")
}

// Slug is the Gradle module directory name: "Checkout Flow" -> "checkout-flow".
func Slug(name string) string {
	return strings.Join(Words(name), "-")
}

// LowerFirst is the property name form: "CheckoutRepository" -> "checkoutRepository".
func LowerFirst(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}
