package security

import (
	"net/url"
	"strings"
)

// SafeRedirect returns target if it is a same-origin relative path, and "/"
// otherwise. Query strings are kept and fragments dropped.
func SafeRedirect(target string) string {
	if !isValidRelativePath(target) {
		return "/"
	}
	u, err := url.Parse(target)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Path == "" {
		return "/"
	}

	result := u.Path
	if u.RawQuery != "" {
		result += "?" + u.RawQuery
	}
	return result
}

// isValidRelativePath rejects absolute, protocol-relative, backslash and
// CR/LF-carrying targets before parsing.
func isValidRelativePath(target string) bool {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") {
		return false
	}
	if strings.ContainsAny(target, "\\\r\n") {
		return false
	}
	lower := strings.ToLower(target)
	return !strings.Contains(lower, "%0d") && !strings.Contains(lower, "%0a") && !strings.Contains(lower, "%5c")
}
