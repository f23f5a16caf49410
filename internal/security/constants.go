package security

import "time"

// Security-related constants
const (
	// SessionCookieName is the name of the signed and encrypted session cookie.
	SessionCookieName = "happycall_session"

	// Session value keys
	sessionKeyUserID  = "user_id"
	sessionKeyLoginAt = "login_at"

	// Session and cookie settings
	DefaultSessionMaxAgeDays    = 7
	DefaultSessionMaxAgeSeconds = 86400 * DefaultSessionMaxAgeDays // 7 days in seconds

	// Login lockout defaults
	DefaultLockoutThreshold = 5
	DefaultLockoutDuration  = 15 * time.Minute

	// Session store settings
	MaxSessionSizeBytes = 4096 // single cookie
)
