package normalize

import (
	"regexp"
	"strings"
)

var multiSpace = regexp.MustCompile(`\s+`)

// InsurerKey builds the lookup key for crosswalk matching: lowercased,
// whitespace collapsed, trimmed. Payer names are hand-entered free text so
// exact-byte matching would miss obvious duplicates.
func InsurerKey(name string) string {
	s := strings.TrimSpace(name)
	if s == "" {
		return ""
	}
	s = strings.ToLower(s)
	return multiSpace.ReplaceAllString(s, " ")
}
