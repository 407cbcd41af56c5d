package util

import (
	"regexp"
	"strings"
)

var nonDialable = regexp.MustCompile(`[^\d+]+`)

// NormalizeContact normalizes a payer contact number into E.164-like form.
// The provider sends Indian numbers with or without the +91 prefix.
func NormalizeContact(raw string) string {
	s := nonDialable.ReplaceAllString(strings.TrimSpace(raw), "")

	switch {
	case s == "" || strings.HasPrefix(s, "+"):
		// already empty or prefixed
	case strings.HasPrefix(s, "00"):
		s = "+" + s[2:]
	case strings.HasPrefix(s, "0") && len(s) == 11:
		s = "+91" + s[1:]
	case len(s) == 10:
		s = "+91" + s
	case strings.HasPrefix(s, "91") && len(s) == 12:
		s = "+" + s
	}

	return s
}
