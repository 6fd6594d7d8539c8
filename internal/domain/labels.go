package domain

import (
	"strings"
	"unicode"
)

// CleanSourceLabel strips an archive or folder stem down to a display-worthy
// name: underscores become spaces, and a trailing run of numeric segments
// that looks like a version or site-generated id suffix (six-or-more digits,
// or two-or-more numeric segments) is dropped.
func CleanSourceLabel(label string) string {
	raw := strings.ReplaceAll(strings.TrimSpace(label), "_", " ")
	if raw == "" {
		return ""
	}

	joiner := "-"
	if strings.Contains(raw, " - ") {
		joiner = " - "
	}

	parts := strings.Split(raw, "-")
	idx := len(parts)
	var numericSegments []string

	for idx > 0 {
		seg := strings.TrimSpace(parts[idx-1])
		if seg == "" {
			idx--
			continue
		}
		if isAllDigits(seg) {
			numericSegments = append(numericSegments, seg)
			idx--
		} else {
			break
		}
	}

	if len(numericSegments) > 0 {
		lastLen := len(numericSegments[0])
		if !(lastLen >= 6 || len(numericSegments) >= 2) {
			idx = len(parts)
		}
	}

	cleanedParts := make([]string, 0, idx)
	for _, part := range parts[:idx] {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleanedParts = append(cleanedParts, trimmed)
		}
	}

	base := strings.Join(cleanedParts, joiner)
	base = strings.Join(strings.Fields(base), " ")
	return strings.TrimSpace(base)
}

// NormalizeLabel strips CleanSourceLabel's output down to lowercase
// alphanumerics, for duplicate-name comparison.
func NormalizeLabel(label string) string {
	cleaned := CleanSourceLabel(label)
	var b strings.Builder
	for _, r := range cleaned {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
