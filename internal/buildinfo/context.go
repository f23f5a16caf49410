// Package buildinfo holds the version stamped into the binary at link time.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// UnknownValue is reported for metadata the build did not provide.
const UnknownValue = "unknown"

// Context carries build metadata that is not user-configurable.
type Context struct {
	version   string
	buildDate string
}

// NewContext returns build metadata, usually from -ldflags variables.
func NewContext(version, buildDate string) *Context {
	return &Context{version: version, buildDate: buildDate}
}

// Version returns the release tag, falling back to the module version
// recorded by the go tool.
func (c *Context) Version() string {
	if c != nil && c.version != "" {
		return c.version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return UnknownValue
}

func (c *Context) BuildDate() string {
	if c == nil || c.buildDate == "" {
		return UnknownValue
	}
	return c.buildDate
}

// String formats the metadata for the version command.
func (c *Context) String() string {
	return fmt.Sprintf("happycall %s (built %s)", c.Version(), c.BuildDate())
}
