package security

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"

	"github.com/happycall-qa/happycall/internal/errors"
)

// ErrPasswordMismatch is returned when a password does not match its hash.
var ErrPasswordMismatch = errors.NewStd("password does not match")

// legacyPrefix marks salted PBKDF2-SHA256 hashes in the
// "pbkdf2:sha256:<iterations>$<salt>$<hex digest>" format written by older
// deployments.
const legacyPrefix = "pbkdf2:sha256"

const legacyDefaultIterations = 260000

// PasswordHasher hashes new passwords with bcrypt and verifies both bcrypt
// and legacy PBKDF2 hashes.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher returns a hasher using cost, or bcrypt.DefaultCost when
// cost is out of range.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", errors.New(err).
			Component("security").
			Category(errors.CategoryValidation).
			Context("operation", "hash_password").
			Build()
	}
	return string(b), nil
}

// Compare returns nil when password matches hash.
func (h *PasswordHasher) Compare(hash, password string) error {
	if strings.HasPrefix(hash, legacyPrefix) {
		return compareLegacy(hash, password)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// NeedsRehash reports whether hash uses the legacy scheme.
func NeedsRehash(hash string) bool {
	return strings.HasPrefix(hash, legacyPrefix)
}

func compareLegacy(hash, password string) error {
	method, rest, ok := strings.Cut(hash, "$")
	if !ok {
		return ErrPasswordMismatch
	}
	salt, digest, ok := strings.Cut(rest, "$")
	if !ok {
		return ErrPasswordMismatch
	}

	iterations := legacyDefaultIterations
	if n := strings.TrimPrefix(method, legacyPrefix); n != "" {
		v, err := strconv.Atoi(strings.TrimPrefix(n, ":"))
		if err != nil || v <= 0 {
			return ErrPasswordMismatch
		}
		iterations = v
	}

	want, err := hex.DecodeString(digest)
	if err != nil || len(want) == 0 {
		return ErrPasswordMismatch
	}
	got := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(want), sha256.New)
	if subtle.ConstantTimeCompare(got, want) != 1 {
		return ErrPasswordMismatch
	}
	return nil
}
