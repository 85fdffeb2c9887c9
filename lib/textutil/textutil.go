package textutil

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// NormalizeName lowercases a name and removes all whitespace so that names
// scraped from different pages compare equal.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.TrimSpace(name)
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

var ErrEmptyCount = errors.New("empty count")

// ParseCount parses a display-formatted integer such as "1,234,567".
func ParseCount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, ErrEmptyCount
	}
	return strconv.ParseInt(s, 10, 64)
}
