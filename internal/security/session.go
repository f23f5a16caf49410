package security

import (
	"crypto/sha256"
	"encoding/gob"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"github.com/happycall-qa/happycall/internal/logger"
)

// Flash categories
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash is a one-time message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// SessionManager keeps the logged-in user id and pending flash messages in
// a signed and encrypted cookie.
type SessionManager struct {
	store *sessions.CookieStore
}

// NewSessionManager derives the cookie keys from secret. A zero maxAge uses
// DefaultSessionMaxAgeSeconds.
func NewSessionManager(secret string, secure bool, maxAge time.Duration) *SessionManager {
	store := sessions.NewCookieStore(createSessionKey(secret), createSessionKey(secret+"encryption"))

	seconds := int(maxAge.Seconds())
	if seconds <= 0 {
		seconds = DefaultSessionMaxAgeSeconds
	}
	store.Options = buildSessionOptions(secure, seconds)
	store.MaxAge(seconds)
	for _, c := range store.Codecs {
		if sc, ok := c.(*securecookie.SecureCookie); ok {
			sc.MaxLength(MaxSessionSizeBytes)
		}
	}

	return &SessionManager{store: store}
}

// buildSessionOptions creates session options with standard security settings.
// The secure parameter controls whether cookies require HTTPS.
// The maxAge parameter sets the session duration in seconds.
func buildSessionOptions(secure bool, maxAge int) *sessions.Options {
	return &sessions.Options{
		Path:     "/",
		MaxAge:   maxAge,
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// createSessionKey creates a key of the proper length for AES encryption from a seed string
// AES requires keys of exactly 16, 24, or 32 bytes
func createSessionKey(seed string) []byte {
	sum := sha256.Sum256([]byte(seed))
	return sum[:]
}

// session returns the request's session. A cookie that fails to decode,
// for example after a secret rotation, yields a fresh session.
func (m *SessionManager) session(r *http.Request) *sessions.Session {
	sess, err := m.store.Get(r, SessionCookieName)
	if err != nil {
		GetLogger().Debug("discarding undecodable session cookie", logger.Error(err))
	}
	return sess
}

// UserID returns the logged-in user id, or 0 for an anonymous request.
func (m *SessionManager) UserID(r *http.Request) uint {
	id, _ := m.session(r).Values[sessionKeyUserID].(uint)
	return id
}

// Login stores userID in a fresh session. Pending flashes are dropped.
func (m *SessionManager) Login(w http.ResponseWriter, r *http.Request, userID uint) error {
	sess := m.session(r)
	sess.Values = map[any]any{
		sessionKeyUserID:  userID,
		sessionKeyLoginAt: time.Now().Unix(),
	}
	return sess.Save(r, w)
}

// Logout clears the user id and keeps the session for a goodbye flash.
func (m *SessionManager) Logout(w http.ResponseWriter, r *http.Request) error {
	sess := m.session(r)
	delete(sess.Values, sessionKeyUserID)
	delete(sess.Values, sessionKeyLoginAt)
	return sess.Save(r, w)
}

// AddFlash queues a message for the next page.
func (m *SessionManager) AddFlash(w http.ResponseWriter, r *http.Request, category, message string) error {
	sess := m.session(r)
	sess.AddFlash(Flash{Category: category, Message: message})
	return sess.Save(r, w)
}

// Flashes pops every queued message.
func (m *SessionManager) Flashes(w http.ResponseWriter, r *http.Request) ([]Flash, error) {
	sess := m.session(r)
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil, nil
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes, sess.Save(r, w)
}
