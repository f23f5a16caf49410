package security

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-session-secret-0123456789"

// lastCookie returns the final session cookie written to w.
func lastCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookieName {
			found = c
		}
	}
	require.NotNil(t, found, "no session cookie written")
	return found
}

func requestWith(c *http.Cookie) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	if c != nil {
		r.AddCookie(c)
	}
	return r
}

func TestSessionManager_LoginFlashLogout(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSecret, false, 0)

	w := httptest.NewRecorder()
	r := requestWith(nil)
	assert.Zero(t, m.UserID(r))

	require.NoError(t, m.Login(w, r, 42))
	require.NoError(t, m.AddFlash(w, r, FlashSuccess, "로그인 성공!"))
	cookie := lastCookie(t, w)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.False(t, cookie.Secure)
	assert.Equal(t, DefaultSessionMaxAgeSeconds, cookie.MaxAge)

	r = requestWith(cookie)
	assert.Equal(t, uint(42), m.UserID(r))

	w = httptest.NewRecorder()
	flashes, err := m.Flashes(w, r)
	require.NoError(t, err)
	assert.Equal(t, []Flash{{Category: FlashSuccess, Message: "로그인 성공!"}}, flashes)
	cookie = lastCookie(t, w)

	r = requestWith(cookie)
	w = httptest.NewRecorder()
	flashes, err = m.Flashes(w, r)
	require.NoError(t, err)
	assert.Empty(t, flashes)
	assert.Equal(t, uint(42), m.UserID(r))

	w = httptest.NewRecorder()
	require.NoError(t, m.Logout(w, r))
	require.NoError(t, m.AddFlash(w, r, FlashInfo, "로그아웃 되었습니다."))
	r = requestWith(lastCookie(t, w))
	assert.Zero(t, m.UserID(r))
	flashes, err = m.Flashes(httptest.NewRecorder(), r)
	require.NoError(t, err)
	require.Len(t, flashes, 1)
	assert.Equal(t, FlashInfo, flashes[0].Category)
}

func TestSessionManager_RejectsForeignCookies(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSecret, true, 0)
	other := NewSessionManager("another-secret-entirely-000000", true, 0)

	w := httptest.NewRecorder()
	require.NoError(t, other.Login(w, requestWith(nil), 1))
	cookie := lastCookie(t, w)
	assert.True(t, cookie.Secure)
	assert.Zero(t, m.UserID(requestWith(cookie)))

	tampered := *cookie
	tampered.Value = "x" + cookie.Value[1:]
	assert.Zero(t, other.UserID(requestWith(&tampered)))
}

func TestSessionManager_RejectsOversizedCookie(t *testing.T) {
	t.Parallel()
	m := NewSessionManager(testSecret, false, 0)

	w := httptest.NewRecorder()
	err := m.AddFlash(w, requestWith(nil), FlashError, strings.Repeat("x", MaxSessionSizeBytes))
	require.Error(t, err)
	assert.Empty(t, w.Result().Cookies())

	w = httptest.NewRecorder()
	require.NoError(t, m.AddFlash(w, requestWith(nil), FlashError, "short"))
	assert.LessOrEqual(t, len(lastCookie(t, w).Value), MaxSessionSizeBytes)
}
