package domain

import (
	"regexp"
	"strconv"
	"strings"
)

var firstInteger = regexp.MustCompile(`\d+`)

// ContainsAny reports whether lowercased text contains any of the needles.
// Needles must already be lowercase.
func ContainsAny(text string, needles ...string) bool {
	lower := strings.ToLower(text)
	for _, n := range needles {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// FloodWaitSeconds returns the first integer found in text, or def if none
func FloodWaitSeconds(text string, def int) int {
	m := firstInteger.FindString(text)
	if m == "" {
		return def
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return def
	}
	return n
}
