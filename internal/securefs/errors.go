// Package securefs provides a sandboxed file system for stored blobs.
package securefs

import (
	"github.com/happycall-qa/happycall/internal/errors"
)

// Sentinel errors for the securefs package.
var (
	// ErrInvalidName indicates a name that is empty, a dot entry, or contains a
	// path separator.
	ErrInvalidName = errors.NewStd("security error: invalid file name")

	// ErrPathTraversal indicates a name that tries to leave the base directory.
	ErrPathTraversal = errors.NewStd("security error: path attempts to traverse outside base directory")

	// ErrNotRegularFile indicates an attempt to access something that is not a regular file
	ErrNotRegularFile = errors.NewStd("security error: not a regular file")

	// ErrFileTooLarge is returned when a file exceeds the configured size limit
	ErrFileTooLarge = errors.NewStd("file size exceeds maximum allowed size")
)
