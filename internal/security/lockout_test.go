package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginGuard(t *testing.T) {
	t.Parallel()
	g := NewLoginGuard(3, time.Minute)

	assert.False(t, g.Locked("agent7", "10.0.0.1"))
	assert.False(t, g.Fail("agent7", "10.0.0.1"))
	assert.False(t, g.Fail("Agent7 ", "10.0.0.1"))
	assert.True(t, g.Fail("agent7", "10.0.0.1"))
	assert.True(t, g.Locked("agent7", "10.0.0.1"))

	// other pairs are unaffected
	assert.False(t, g.Locked("agent7", "10.0.0.2"))
	assert.False(t, g.Locked("agent8", "10.0.0.1"))

	g.Reset("agent7", "10.0.0.1")
	assert.False(t, g.Locked("agent7", "10.0.0.1"))
}

func TestLoginGuard_Expiry(t *testing.T) {
	t.Parallel()
	g := NewLoginGuard(1, 50*time.Millisecond)

	assert.True(t, g.Fail("1", "127.0.0.1"))
	assert.True(t, g.Locked("1", "127.0.0.1"))
	assert.Eventually(t, func() bool { return !g.Locked("1", "127.0.0.1") }, time.Second, 10*time.Millisecond)
}

func TestLoginGuard_Defaults(t *testing.T) {
	t.Parallel()
	g := NewLoginGuard(0, 0)
	assert.Equal(t, DefaultLockoutThreshold, g.threshold)
	assert.Equal(t, DefaultLockoutDuration, g.duration)
}
