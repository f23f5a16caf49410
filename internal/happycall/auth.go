package happycall

import (
	"context"
	"strings"

	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// Authenticate verifies credentials. An unknown username and a wrong
// password fail with the same message.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Caller, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Anonymous(), validationError(MsgCredentialsRequired)
	}

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Anonymous(), s.invalidCredentials(ctx, username, err)
		}
		return Anonymous(), storeError("get_user", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return Anonymous(), s.invalidCredentials(ctx, username, err)
	}

	s.log.WithContext(ctx).Info("user logged in",
		logger.Uint("user_id", user.ID),
		logger.String("role", string(user.Role)))
	return CallerFromUser(user), nil
}

func (s *Service) invalidCredentials(ctx context.Context, username string, cause error) error {
	s.log.WithContext(ctx).Warn("login failed", logger.String("username", username))
	return NewUserError(errors.CategoryAuthorization, MsgInvalidCredentials, cause)
}

// ResolveCaller rebuilds the caller for a session's user id. A deleted
// account resolves to the anonymous caller.
func (s *Service) ResolveCaller(ctx context.Context, userID uint) (Caller, error) {
	if userID == 0 {
		return Anonymous(), nil
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return Anonymous(), nil
		}
		return Anonymous(), storeError("get_user", err)
	}
	return CallerFromUser(user), nil
}
