// Package clientinfo derives coarse device and browser families from a
// User-Agent string. Classification is intentionally shallow: redirect
// rules match on "mobile"/"desktop" and browser family names, not on
// versions or exotic clients.
package clientinfo

import "strings"

// Device classifies a User-Agent as "mobile", "tablet" or "desktop".
// An empty User-Agent yields an empty string.
func Device(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "ipad"), strings.Contains(s, "tablet"):
		return "tablet"
	case strings.Contains(s, "android") && !strings.Contains(s, "mobile"):
		// Android tablets omit "Mobile" from the UA
		return "tablet"
	case strings.Contains(s, "mobi"), strings.Contains(s, "iphone"), strings.Contains(s, "ipod"):
		return "mobile"
	default:
		return "desktop"
	}
}

// Browser returns the browser family, lower-cased. Order matters:
// Edge and Opera embed "Chrome", Chrome embeds "Safari".
func Browser(ua string) string {
	s := strings.ToLower(ua)
	switch {
	case s == "":
		return ""
	case strings.Contains(s, "edg/"), strings.Contains(s, "edge/"):
		return "edge"
	case strings.Contains(s, "opr/"), strings.Contains(s, "opera"):
		return "opera"
	case strings.Contains(s, "firefox/"):
		return "firefox"
	case strings.Contains(s, "chrome/"), strings.Contains(s, "crios/"):
		return "chrome"
	case strings.Contains(s, "safari/"):
		return "safari"
	case strings.Contains(s, "msie"), strings.Contains(s, "trident/"):
		return "ie"
	default:
		return "other"
	}
}
