package happycall

import (
	"context"
	"io"

	"github.com/happycall-qa/happycall/internal/datastore/repository"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// PasswordHasher hashes and verifies account passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	// Compare returns nil when password matches hash.
	Compare(hash, password string) error
}

// RecordingUpload is an uploaded call recording. A zero Filename means
// nothing was uploaded.
type RecordingUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

func (u *RecordingUpload) present() bool {
	return u != nil && u.Filename != ""
}

// RecordingStore persists recording blobs.
type RecordingStore interface {
	// Save stores the upload for customerID and returns its key.
	Save(ctx context.Context, customerID uint, upload *RecordingUpload) (string, error)
	// Remove deletes a stored blob.
	Remove(ctx context.Context, key string) error
}

// Deps are the collaborators of a Service. Repos and Hasher are required.
type Deps struct {
	Repos      *repository.Set
	Hasher     PasswordHasher
	Recordings RecordingStore
	Notifier   Notifier
	Metrics    Metrics
	Logger     logger.Logger
}

// Options tune workflow policy.
type Options struct {
	// RecordingRequired rejects checklist submissions without a recording.
	RecordingRequired bool
}

// Service runs every workflow operation behind the authorization gate.
type Service struct {
	users       repository.UserRepository
	customers   repository.CustomerRepository
	scripts     repository.ScriptRepository
	submissions repository.SubmissionRepository

	hasher     PasswordHasher
	recordings RecordingStore
	notifier   Notifier
	metrics    Metrics
	log        logger.Logger
	opts       Options
}

// NewService validates deps and fills optional collaborators with no-ops.
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.Repos == nil {
		return nil, errors.Newf("happycall: repositories are required").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if deps.Hasher == nil {
		return nil, errors.Newf("happycall: password hasher is required").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}
	if opts.RecordingRequired && deps.Recordings == nil {
		return nil, errors.Newf("happycall: recording store is required when recordings are mandatory").
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Build()
	}

	s := &Service{
		users:       deps.Repos.Users,
		customers:   deps.Repos.Customers,
		scripts:     deps.Repos.Scripts,
		submissions: deps.Repos.Submissions,
		hasher:      deps.Hasher,
		recordings:  deps.Recordings,
		notifier:    deps.Notifier,
		metrics:     deps.Metrics,
		log:         deps.Logger,
		opts:        opts,
	}
	if s.notifier == nil {
		s.notifier = noopNotifier{}
	}
	if s.metrics == nil {
		s.metrics = noopMetrics{}
	}
	if s.log == nil {
		s.log = logger.Global().Module(componentName)
	}
	return s, nil
}

// Options returns the workflow policy in effect.
func (s *Service) Options() Options {
	return s.opts
}

// gate runs AuthorizeRole and converts a denial into an error.
func (s *Service) gate(ctx context.Context, caller Caller, op Operation) error {
	if d := AuthorizeRole(caller, op); d != nil {
		return s.denied(ctx, caller, d)
	}
	return nil
}

func (s *Service) denied(ctx context.Context, caller Caller, d *Denial) error {
	s.metrics.RecordDenial(d.Reason)
	s.log.WithContext(ctx).Warn("operation denied",
		logger.String("operation", d.Op.Name),
		logger.String("reason", string(d.Reason)),
		logger.Uint("user_id", caller.UserID),
		logger.String("role", string(caller.Role)))
	return errors.New(d).
		Component(componentName).
		Category(errors.CategoryAuthorization).
		Context("operation", d.Op.Name).
		Context("reason", string(d.Reason)).
		Build()
}
