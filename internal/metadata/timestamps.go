package metadata

import "time"

// timestamp layouts tried in order, matching the four formats spec.md §4.2
// names: RFC 3339, a T-separated naive datetime, a space-separated naive
// datetime, and a bare date (interpreted as midnight UTC).
var layouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCreatedAt parses a timestamp string against each recognized layout
// in turn, returning nil when none match.
func ParseCreatedAt(value string) *int64 {
	if value == "" {
		return nil
	}
	for _, layout := range layouts {
		loc := time.UTC
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			epoch := t.Unix()
			return &epoch
		}
	}
	return nil
}
