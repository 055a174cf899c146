package utils

import "strings"

// NormalizeRegistration canonicalizes a vehicle registration number so that
// lookups and recurrence counting are not defeated by case or spacing.
func NormalizeRegistration(reg string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(reg) {
		if r == ' ' || r == '-' || r == '\t' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
