package security

import (
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/happycall-qa/happycall/internal/logger"
)

// LoginGuard locks a username and client IP pair after too many consecutive
// failed logins.
type LoginGuard struct {
	failures  *cache.Cache
	threshold int
	duration  time.Duration
}

// NewLoginGuard returns a guard that locks a pair for duration once it
// reaches threshold failures. Non-positive values use the defaults.
func NewLoginGuard(threshold int, duration time.Duration) *LoginGuard {
	if threshold <= 0 {
		threshold = DefaultLockoutThreshold
	}
	if duration <= 0 {
		duration = DefaultLockoutDuration
	}
	return &LoginGuard{
		failures:  cache.New(duration, duration),
		threshold: threshold,
		duration:  duration,
	}
}

func guardKey(username, ip string) string {
	return strings.ToLower(strings.TrimSpace(username)) + "|" + ip
}

// Locked reports whether the pair is currently locked out.
func (g *LoginGuard) Locked(username, ip string) bool {
	v, ok := g.failures.Get(guardKey(username, ip))
	if !ok {
		return false
	}
	n, _ := v.(int)
	return n >= g.threshold
}

// Fail records a failed attempt and reports whether the pair is now locked.
func (g *LoginGuard) Fail(username, ip string) bool {
	key := guardKey(username, ip)

	n := 1
	if err := g.failures.Add(key, n, g.duration); err != nil {
		var incErr error
		if n, incErr = g.failures.IncrementInt(key, 1); incErr != nil {
			// expired between Add and IncrementInt
			n = 1
			g.failures.Set(key, n, g.duration)
		}
	}

	if n < g.threshold {
		return false
	}
	if n == g.threshold {
		// restart the window so the lock lasts a full duration
		g.failures.Set(key, n, g.duration)
		GetLogger().Warn("login locked out",
			logger.String("username", username),
			logger.String("client_ip", ip),
			logger.Duration("duration", g.duration))
	}
	return true
}

// Reset clears the failure count after a successful login.
func (g *LoginGuard) Reset(username, ip string) {
	g.failures.Delete(guardKey(username, ip))
}
