package config

import (
	"fmt"
	"strings"
)

// PermissionError is returned when a config file exists but orbit may not
// read it.
type PermissionError struct {
	Path    string
	Op      string // "read"
	Fix     string // shell command or steps that restore access
	Details string // current mode bits, when known
	Err     error
}

func (e *PermissionError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "orbit cannot %s config %s: permission denied\n", e.Op, e.Path)
	if e.Details != "" {
		b.WriteString(e.Details + "\n")
	}
	b.WriteString("💡 Fix: " + e.Fix)
	return b.String()
}

func (e *PermissionError) Unwrap() error { return e.Err }

// ConfigNotFoundError is returned when --config names a missing file. A
// missing orbit.yaml in the working directory is not an error.
type ConfigNotFoundError struct {
	Path string
	Hint string
	Err  error
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("config file not found: %s\n\n💡 %s", e.Path, e.Hint)
}

func (e *ConfigNotFoundError) Unwrap() error { return e.Err }

// InvalidConfigError reports unparsable YAML or out-of-range settings.
// Message holds one problem per line.
type InvalidConfigError struct {
	Path    string
	Message string
	Hint    string
}

func (e *InvalidConfigError) Error() string {
	source := e.Path
	if source == "" {
		source = "(defaults and environment)"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "invalid config: %s\n", source)
	for _, line := range strings.Split(e.Message, "\n") {
		if line != "" {
			b.WriteString("  - " + line + "\n")
		}
	}
	if e.Hint != "" {
		b.WriteString("💡 " + e.Hint + " (any key can also be set as " + EnvPrefix + "_<SECTION>_<KEY>)")
	}
	return b.String()
}
