// Package privacy scrubs personal data and credentials from text that leaves
// the process, such as error reports and notification failures.
package privacy

import (
	"crypto/sha256"
	"encoding/hex"
	"net/netip"
	"net/url"
	"regexp"
	"strings"
)

var (
	// Any scheme, so shoutrrr service URLs with tokens in the userinfo part match too.
	urlPattern = regexp.MustCompile(`\b[a-zA-Z][a-zA-Z0-9+.-]*://\S+`)

	// Korean mobile and landline numbers with or without separators.
	phonePattern = regexp.MustCompile(`\b0\d{1,2}[- .]?\d{3,4}[- .]?(\d{4})\b`)

	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// ScrubMessage removes personal data from message. Phone numbers keep their
// last four digits, URLs become a stable fingerprint and email addresses are
// dropped. Phones go first so digits inside a URL path are not half-masked.
func ScrubMessage(message string) string {
	message = phonePattern.ReplaceAllString(message, "***-****-$1")
	message = urlPattern.ReplaceAllStringFunc(message, AnonymizeURL)
	return emailPattern.ReplaceAllString(message, "[email]")
}

// AnonymizeURL replaces rawURL with "scheme://url-<hash>". The hash covers the
// scheme, host class, port and path shape, never credentials or the query, so
// the same sink always maps to the same fingerprint.
func AnonymizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "url-hash-" + digest(rawURL, 8)
	}

	parts := make([]string, 0, 4)
	if u.Scheme != "" {
		parts = append(parts, u.Scheme)
	}
	if host := u.Hostname(); host != "" {
		parts = append(parts, categorizeHost(host))
	}
	if port := u.Port(); port != "" {
		parts = append(parts, "port-"+port)
	}
	if u.Path != "" && u.Path != "/" {
		parts = append(parts, pathShape(u.Path))
	}
	return u.Scheme + "://url-" + digest(strings.Join(parts, ":"), 12)
}

// categorizeHost keeps only the kind of host: loopback, private or public
// address, or the top-level domain of a name.
func categorizeHost(host string) string {
	if host == "localhost" {
		return "localhost"
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		switch {
		case addr.IsLoopback():
			return "localhost"
		case addr.IsPrivate(), addr.IsLinkLocalUnicast():
			return "private-ip"
		default:
			return "public-ip"
		}
	}
	if i := strings.LastIndexByte(host, '.'); i > 0 && i < len(host)-1 {
		return "domain-" + host[i+1:]
	}
	return "unknown-host"
}

// pathShape hashes each path segment and collapses numeric ids, so
// /customers/12 and /customers/13 share a shape.
func pathShape(path string) string {
	var b strings.Builder
	for seg := range strings.SplitSeq(strings.Trim(path, "/"), "/") {
		if seg == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('/')
		}
		if isDigits(seg) {
			b.WriteString("numeric")
		} else {
			b.WriteString("seg-" + digest(seg, 4))
		}
	}
	if b.Len() == 0 {
		return "root"
	}
	return b.String()
}

func digest(s string, n int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:n])
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
