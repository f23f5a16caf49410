package securefs

import (
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/happycall-qa/happycall/internal/errors"
	"github.com/happycall-qa/happycall/internal/logger"
)

// GetLogger returns the securefs package logger scoped to the securefs module.
// The logger is fetched from the global logger each time so it follows
// the centralized logger once main has configured it.
func GetLogger() logger.Logger {
	return logger.Global().Module("securefs")
}

// SecureFS stores flat files in one directory using os.Root, which confines
// every operation to the base directory at the OS level, including symlinks
// that point outside it.
//
// Names are single path elements. Anything with a separator, a ".." element
// or a leading dot is rejected before it reaches the root.
type SecureFS struct {
	baseDir string   // absolute base directory
	root    *os.Root // sandboxed root
}

// FileInfo describes a stored file.
type FileInfo struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// New creates the base directory if needed and opens it as a sandbox.
func New(baseDir string) (*SecureFS, error) {
	absPath, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	// Only owner can write, others can read/execute for serving files
	if err := os.MkdirAll(absPath, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}

	root, err := os.OpenRoot(absPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create filesystem sandbox: %w", err)
	}

	return &SecureFS{baseDir: absPath, root: root}, nil
}

// ValidateName checks that name is a single, non-hidden path element.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty name", ErrInvalidName)
	case name == "." || name == "..":
		return fmt.Errorf("%w: %q", ErrPathTraversal, name)
	case strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrPathTraversal, name)
	case strings.HasPrefix(name, "."):
		return fmt.Errorf("%w: %q is hidden", ErrInvalidName, name)
	case filepath.Base(name) != name:
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// Create creates name for writing. It fails with fs.ErrExist if the file
// already exists.
func (sfs *SecureFS) Create(name string) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return sfs.root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
}

// WriteFrom creates name and copies at most limit bytes from r into it. If r
// holds more than limit bytes the partial file is removed and
// ErrFileTooLarge is returned. A limit of 0 means unlimited.
func (sfs *SecureFS) WriteFrom(name string, r io.Reader, limit int64) (int64, error) {
	f, err := sfs.Create(name)
	if err != nil {
		return 0, err
	}

	src := r
	if limit > 0 {
		src = io.LimitReader(r, limit+1)
	}
	n, copyErr := io.Copy(f, src)
	closeErr := f.Close()

	switch {
	case copyErr != nil:
		sfs.discard(name)
		return n, fmt.Errorf("failed to write %s: %w", name, copyErr)
	case closeErr != nil:
		sfs.discard(name)
		return n, fmt.Errorf("failed to close %s: %w", name, closeErr)
	case limit > 0 && n > limit:
		sfs.discard(name)
		return n, fmt.Errorf("%w: limit is %d bytes", ErrFileTooLarge, limit)
	}
	return n, nil
}

func (sfs *SecureFS) discard(name string) {
	if err := sfs.root.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		GetLogger().Warn("Failed to remove partial file",
			logger.String("name", name),
			logger.Error(err))
	}
}

// Open opens name for reading.
func (sfs *SecureFS) Open(name string) (*os.File, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return sfs.root.Open(name)
}

// Stat returns file info for name.
func (sfs *SecureFS) Stat(name string) (fs.FileInfo, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	return sfs.root.Stat(name)
}

// Exists reports whether name exists.
func (sfs *SecureFS) Exists(name string) (bool, error) {
	_, err := sfs.Stat(name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Remove removes name.
func (sfs *SecureFS) Remove(name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	return sfs.root.Remove(name)
}

// List returns the regular files in the base directory sorted by name.
// Hidden files are skipped.
func (sfs *SecureFS) List() ([]FileInfo, error) {
	dir, err := sfs.root.Open(".")
	if err != nil {
		return nil, fmt.Errorf("failed to open directory: %w", err)
	}
	defer func() {
		if err := dir.Close(); err != nil {
			GetLogger().Warn("Failed to close directory", logger.Error(err))
		}
	}()

	entries, err := dir.ReadDir(0)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory entries: %w", err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		files = append(files, FileInfo{Name: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	slices.SortFunc(files, func(a, b FileInfo) int { return strings.Compare(a.Name, b.Name) })
	return files, nil
}

// mapOpenErrorToHTTP converts file open errors to appropriate HTTP errors
func mapOpenErrorToHTTP(err error, name string) *echo.HTTPError {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return echo.NewHTTPError(http.StatusNotFound, "File not found")
	case errors.Is(err, fs.ErrPermission):
		return echo.NewHTTPError(http.StatusForbidden, "Access denied")
	case errors.Is(err, ErrPathTraversal) || errors.Is(err, ErrInvalidName):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file name").SetInternal(err)
	case errors.Is(err, ErrNotRegularFile):
		return echo.NewHTTPError(http.StatusForbidden, "Not a regular file")
	default:
		GetLogger().Error("Unhandled error serving file",
			logger.String("name", name),
			logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "Error serving file").SetInternal(err)
	}
}

// audioContentTypes covers extensions missing from minimal mime tables.
var audioContentTypes = map[string]string{
	".mp3": "audio/mpeg",
	".wav": "audio/wav",
	".m4a": "audio/mp4",
	".ogg": "audio/ogg",
}

// getContentType determines the content type for a file, using extension-based detection
func getContentType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := audioContentTypes[ext]; ok {
		return ct
	}
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		return "application/octet-stream"
	}
	return contentType
}

// ServeFile streams name through the response with range support.
// This is the sandboxed alternative to echo.Context.File().
func (sfs *SecureFS) ServeFile(c echo.Context, name string) error {
	f, err := sfs.Open(name)
	if err != nil {
		return mapOpenErrorToHTTP(err, name)
	}
	defer func() {
		if err := f.Close(); err != nil {
			GetLogger().Warn("Failed to close file", logger.Error(err))
		}
	}()

	stat, err := f.Stat()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to get file info").SetInternal(err)
	}
	if !stat.Mode().IsRegular() {
		return mapOpenErrorToHTTP(ErrNotRegularFile, name)
	}

	// Only set content type if not already set by the caller
	if c.Response().Header().Get(echo.HeaderContentType) == "" {
		c.Response().Header().Set(echo.HeaderContentType, getContentType(name))
	}

	http.ServeContent(c.Response(), c.Request(), name, stat.ModTime(), f)
	return nil
}

// BaseDir returns the absolute base directory path of the secure filesystem.
func (sfs *SecureFS) BaseDir() string {
	return sfs.baseDir
}

// Close closes the underlying Root
func (sfs *SecureFS) Close() error {
	if sfs.root != nil {
		return sfs.root.Close()
	}
	return nil
}
