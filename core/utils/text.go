package utils

import (
	"strings"
	"unicode"
)

// Truncate returns s cut to at most n runes.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Digits keeps only the decimal digits of s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

var descriptionReplacer = strings.NewReplacer(
	`span="de"`, "",
	"div", "",
	"<", "",
	">", "",
	"/", "",
	`\`, "",
)

// SanitizeDescription strips the markup fragments storefront descriptions carry
// and collapses the whitespace left behind.
func SanitizeDescription(s string) string {
	return strings.Join(strings.FieldsFunc(descriptionReplacer.Replace(s), unicode.IsSpace), " ")
}
