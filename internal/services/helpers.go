package services

import "strings"

// containsString reports whether target appears in values, ignoring
// surrounding whitespace. Used for enum-style membership checks.
func containsString(values []string, target string) bool {
	target = strings.TrimSpace(target)
	if target == "" {
		return false
	}
	for _, value := range values {
		if strings.TrimSpace(value) == target {
			return true
		}
	}
	return false
}
