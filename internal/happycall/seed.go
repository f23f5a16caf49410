package happycall

import (
	"context"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/datastore/entities"
	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// SeedResult reports what Seed created.
type SeedResult struct {
	AdminCreated      bool
	FreelancerCreated bool
	ScriptCreated     bool

	// Row counts after seeding.
	Admins        int64
	Freelancers   int64
	ActiveScripts int64
}

// Seed ensures the default admin, the default freelancer and an active
// script exist. Existing rows are left untouched, so running it twice
// changes nothing.
func (s *Service) Seed(ctx context.Context, cfg *conf.SeedSettings) (SeedResult, error) {
	var res SeedResult

	admin, created, err := s.ensureUser(ctx, cfg.AdminUsername, cfg.AdminPassword, entities.RoleAdmin)
	if err != nil {
		return res, err
	}
	res.AdminCreated = created

	if _, res.FreelancerCreated, err = s.ensureUser(ctx, cfg.FreelancerUsername, cfg.FreelancerPassword, entities.RoleFreelancer); err != nil {
		return res, err
	}

	title := cfg.ScriptTitle
	if title == "" {
		title = conf.DefaultScriptTitle
	}
	authorID := admin.ID
	script := &entities.Script{
		Title:     title,
		Content:   DefaultScriptHTML,
		IsActive:  true,
		CreatedBy: &authorID,
	}
	if res.ScriptCreated, err = s.scripts.EnsureActive(ctx, script); err != nil {
		return res, storeError("seed_script", err)
	}

	if err := s.countSeeded(ctx, &res); err != nil {
		return res, err
	}
	if res.ActiveScripts > 1 {
		s.log.WithContext(ctx).Warn("more than one active script; the oldest is shown to agents",
			logger.Int64("active_scripts", res.ActiveScripts))
	}

	s.log.WithContext(ctx).Info("seed completed",
		logger.Bool("admin_created", res.AdminCreated),
		logger.Bool("freelancer_created", res.FreelancerCreated),
		logger.Bool("script_created", res.ScriptCreated),
		logger.Int64("admins", res.Admins),
		logger.Int64("freelancers", res.Freelancers))
	return res, nil
}

func (s *Service) countSeeded(ctx context.Context, res *SeedResult) error {
	var err error
	if res.Admins, err = s.users.CountByRole(ctx, entities.RoleAdmin); err != nil {
		return storeError("seed_count_admins", err)
	}
	if res.Freelancers, err = s.users.CountByRole(ctx, entities.RoleFreelancer); err != nil {
		return storeError("seed_count_freelancers", err)
	}
	if res.ActiveScripts, err = s.scripts.CountActive(ctx); err != nil {
		return storeError("seed_count_scripts", err)
	}
	return nil
}

func (s *Service) ensureUser(ctx context.Context, username, password string, role entities.Role) (*entities.User, bool, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err == nil {
		if user.Role != role {
			s.log.WithContext(ctx).Warn("seed account exists with a different role",
				logger.String("username", username),
				logger.String("role", string(user.Role)))
		}
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, false, storeError("seed_lookup_user", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, false, errors.New(err).
			Component(componentName).
			Category(errors.CategorySystem).
			Context("operation", "hash_password").
			Build()
	}
	user = &entities.User{Username: username, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, storeError("seed_create_user", err)
	}
	return user, true, nil
}
