package org

import (
	"regexp"
	"strings"
)

var parenthetical = regexp.MustCompile(`\([^)]*\)`)

// CleanName removes every "(...)" group from a department name and trims the result.
// Empty input is returned unchanged.
func CleanName(name string) string {
	if name == "" {
		return name
	}
	return strings.TrimSpace(parenthetical.ReplaceAllString(name, ""))
}
