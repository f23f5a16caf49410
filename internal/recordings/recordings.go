// Package recordings stores uploaded call recordings in a sandboxed blob
// directory and finds blobs that no submission references.
package recordings

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/go-audio/wav"
	"github.com/labstack/echo/v4"
	"golang.org/x/text/unicode/norm"

	"github.com/happycall-qa/happycall/internal/conf"
	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/happycall"
	"github.com/happycall-qa/happycall/internal/logger"
	"github.com/happycall-qa/happycall/internal/securefs"
)

const (
	componentName = "recordings"

	// keyTimeLayout is the timestamp embedded in every key.
	keyTimeLayout = "20060102150405"

	// maxNameBytes bounds the original-name part of a key so the whole key
	// fits the recording_file column.
	maxNameBytes = 150
)

// Store saves recordings under keys of the form
// {customerID}_{YYYYmmddHHMMSS}_{sanitized original name}.
type Store struct {
	fs      *securefs.SecureFS
	maxSize int64
	allowed []string
	now     func() time.Time
	observe func(bytes int64)
	log     logger.Logger
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source used for keys.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithSizeObserver reports the size of every stored recording to observe.
func WithSizeObserver(observe func(bytes int64)) Option {
	return func(s *Store) { s.observe = observe }
}

// New opens the recording directory described by cfg, creating it if needed.
func New(cfg *conf.RecordingsSettings, log logger.Logger, opts ...Option) (*Store, error) {
	sfs, err := securefs.New(cfg.Path)
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileIO).
			Context("path", cfg.Path).
			Build()
	}

	if log == nil {
		log = logger.Global().Module(componentName)
	}
	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = conf.DefaultMaxRecordingSize
	}
	allowed := make([]string, 0, len(cfg.AllowedExtensions))
	for _, ext := range cfg.AllowedExtensions {
		allowed = append(allowed, strings.ToLower(strings.TrimPrefix(ext, ".")))
	}

	s := &Store{fs: sfs, maxSize: maxSize, allowed: allowed, now: time.Now, log: log}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the absolute blob directory.
func (s *Store) Dir() string {
	return s.fs.BaseDir()
}

// Close releases the sandbox.
func (s *Store) Close() error {
	return s.fs.Close()
}

// SanitizeFilename reduces an uploaded file name to a safe single path
// element: NFC-normalized, directory components stripped, and limited to
// letters, digits, '.', '-' and '_'. Whitespace becomes '_'. It returns ""
// when nothing usable remains.
func SanitizeFilename(name string) string {
	name = norm.NFC.String(name)
	name = path.Base(strings.ReplaceAll(name, `\`, "/"))

	var b strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune('_')
		}
	}
	out := strings.Trim(b.String(), "._")
	return truncateName(out, maxNameBytes)
}

// truncateName shortens the stem of name rune by rune until it fits limit
// bytes, keeping the extension.
func truncateName(name string, limit int) string {
	if len(name) <= limit {
		return name
	}
	ext := filepath.Ext(name)
	stem := []rune(strings.TrimSuffix(name, ext))
	for len(stem) > 0 && len(string(stem))+len(ext) > limit {
		stem = stem[:len(stem)-1]
	}
	return string(stem) + ext
}

// extension returns the lowercased extension of name without the dot.
func extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Key builds the storage key for a sanitized name.
func Key(customerID uint, name string, at time.Time) string {
	return fmt.Sprintf("%d_%s_%s", customerID, at.Format(keyTimeLayout), name)
}

// Save validates and stores an upload and returns its key.
func (s *Store) Save(ctx context.Context, customerID uint, upload *happycall.RecordingUpload) (string, error) {
	name := SanitizeFilename(upload.Filename)
	ext := extension(name)
	if name == "" || !slices.Contains(s.allowed, ext) {
		return "", happycall.NewUserError(errors.CategoryValidation, s.extensionMessage(), nil)
	}
	if upload.Size > s.maxSize {
		return "", happycall.NewUserError(errors.CategoryValidation, s.sizeMessage(), securefs.ErrFileTooLarge)
	}

	key := Key(customerID, name, s.now())
	written, err := s.fs.WriteFrom(key, upload.Content, s.maxSize)
	switch {
	case errors.Is(err, securefs.ErrFileTooLarge):
		return "", happycall.NewUserError(errors.CategoryValidation, s.sizeMessage(), err)
	case errors.Is(err, fs.ErrExist):
		return "", happycall.NewUserError(errors.CategoryConflict, happycall.MsgAlreadySubmitted, err)
	case err != nil:
		return "", errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileIO).
			Context("operation", "write_recording").
			Build()
	}

	if ext == "wav" {
		if err := s.checkWAV(ctx, key); err != nil {
			if rmErr := s.fs.Remove(key); rmErr != nil {
				s.log.Warn("failed to remove rejected recording", logger.String("key", key), logger.Error(rmErr))
			}
			return "", err
		}
	}

	if s.observe != nil {
		s.observe(written)
	}
	s.log.WithContext(ctx).Info("recording stored",
		logger.String("key", key),
		logger.Uint("customer_id", customerID),
		logger.Int64("bytes", written))
	return key, nil
}

// checkWAV rejects files without a usable RIFF/WAVE header.
func (s *Store) checkWAV(ctx context.Context, key string) error {
	f, err := s.fs.Open(key)
	if err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileIO).
			Context("operation", "open_recording").
			Build()
	}
	defer func() {
		if err := f.Close(); err != nil {
			s.log.Warn("failed to close recording", logger.Error(err))
		}
	}()

	decoder := wav.NewDecoder(f)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return happycall.NewUserError(errors.CategoryValidation, MsgInvalidWAV, nil)
	}
	if decoder.NumChans != 1 && decoder.NumChans != 2 {
		return happycall.NewUserError(errors.CategoryValidation, MsgInvalidWAV,
			errors.Newf("unsupported number of channels: %d", decoder.NumChans).Build())
	}

	if d, err := decoder.Duration(); err == nil {
		s.log.WithContext(ctx).Debug("wav recording accepted",
			logger.String("key", key),
			logger.Duration("duration", d),
			logger.Int("sample_rate", int(decoder.SampleRate)),
			logger.Int("bit_depth", int(decoder.BitDepth)))
	}
	return nil
}

func (s *Store) extensionMessage() string {
	return fmt.Sprintf("%s (%s)", MsgExtensionNotAllowed, strings.Join(s.allowed, ", "))
}

func (s *Store) sizeMessage() string {
	return fmt.Sprintf("%s (최대 %dMB)", MsgFileTooLarge, s.maxSize>>20)
}

// Remove deletes a stored recording. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.fs.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileIO).
			Context("operation", "remove_recording").
			Build()
	}
	s.log.WithContext(ctx).Debug("recording removed", logger.String("key", key))
	return nil
}

// Serve streams a stored recording.
func (s *Store) Serve(c echo.Context, key string) error {
	return s.fs.ServeFile(c, key)
}

// List returns every stored recording sorted by key.
func (s *Store) List() ([]securefs.FileInfo, error) {
	files, err := s.fs.List()
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryFileIO).
			Context("operation", "list_recordings").
			Build()
	}
	return files, nil
}
