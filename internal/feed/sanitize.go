package feed

import (
	"net/url"
	"regexp"
	"strings"
)

var tagRe = regexp.MustCompile(`<[^>]*>`)

// SanitizeText trims whitespace and collapses internal runs of whitespace,
// after dropping anything that looks like an HTML tag.
func SanitizeText(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// SanitizeInt coerces a feed value to an integer. The feed occasionally sends
// decimals or garbage; a leading integer part is kept, anything non-numeric
// becomes 0.
func SanitizeInt(s string) int {
	s = strings.TrimSpace(s)
	i := 0
	if i < len(s) && (s[i] == '-' || s[i] == '+') {
		i++
	}
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == start {
		return 0
	}
	n := 0
	for _, c := range s[start:i] {
		n = n*10 + int(c-'0')
	}
	if s[0] == '-' {
		return -n
	}
	return n
}

// SanitizeBool converts an Autotelex boolean. Exactly "j" is true; every
// other value, including "J" and "n", is false.
func SanitizeBool(s string) bool {
	return s == "j"
}

// SanitizeURLList splits a comma-separated URL list, removes spaces from each
// entry and silently drops entries that do not parse as absolute URLs.
func SanitizeURLList(s string) []string {
	parts := strings.Split(s, ",")
	urls := make([]string, 0, len(parts))
	for _, p := range parts {
		candidate := strings.ReplaceAll(p, " ", "")
		u, err := url.Parse(candidate)
		if err != nil || u.Scheme == "" || u.Host == "" {
			continue
		}
		urls = append(urls, candidate)
	}
	return urls
}
