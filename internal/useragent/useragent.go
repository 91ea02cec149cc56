// Package useragent derives coarse device, browser, and OS tags from a
// User-Agent string via substring matching. It is a heuristic, not a parser,
// and is known to misclassify edge-case user agents.
package useragent

import "strings"

// Device classifies the user agent as Mobile, Tablet, or Desktop.
func Device(ua string) string {
	lower := strings.ToLower(ua)

	switch {
	case strings.Contains(lower, "mobile"):
		return "Mobile"
	case strings.Contains(lower, "tablet"):
		return "Tablet"
	default:
		return "Desktop"
	}
}

// Browser picks the first matching browser token. Chrome is checked before
// Safari because Chrome user agents also contain "Safari".
func Browser(ua string) string {
	switch {
	case strings.Contains(ua, "Chrome"):
		return "Chrome"
	case strings.Contains(ua, "Firefox"):
		return "Firefox"
	case strings.Contains(ua, "Safari"):
		return "Safari"
	case strings.Contains(ua, "Edge"):
		return "Edge"
	default:
		return "Other"
	}
}

// OS picks the first matching OS token.
func OS(ua string) string {
	switch {
	case strings.Contains(ua, "Windows"):
		return "Windows"
	case strings.Contains(ua, "Mac"):
		return "macOS"
	case strings.Contains(ua, "Linux"):
		return "Linux"
	case strings.Contains(ua, "Android"):
		return "Android"
	case strings.Contains(ua, "iOS"):
		return "iOS"
	default:
		return "Other"
	}
}

// IsMobile reports whether the user agent matches the mobile heuristic used
// by conditional redirects.
func IsMobile(ua string) bool {
	return strings.Contains(strings.ToLower(ua), "mobile")
}
