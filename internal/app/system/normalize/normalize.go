// internal/app/system/normalize/normalize.go

// Package normalize cleans user-supplied input before it reaches
// validation or storage. Vision labels and task names arrive from an
// external service and from mobile keyboards, so everything is trimmed
// and markup-stripped in one place.
package normalize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips all markup; user-visible names are plain text.
var strict = bluemonday.StrictPolicy()

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name and strips any markup. Case is preserved.
func Name(s string) string {
	return plain(s)
}

// TaskName cleans an object name before it enters a task catalog.
// Matching is case-insensitive, so case is preserved for display only.
func TaskName(s string) string {
	return plain(s)
}

// GroupTag cleans a group tag. Tags are single tokens; interior
// whitespace is collapsed to one space.
func GroupTag(s string) string {
	return strings.Join(strings.Fields(plain(s)), " ")
}

// Role lowercases and trims a role string.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
