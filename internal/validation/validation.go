// Package validation checks tool names, plugin names and plugin URLs before
// a manifest is accepted.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	rerrors "github.com/klauern/razd/internal/errors"
	"github.com/klauern/razd/internal/model"
)

// Backend is the name-syntax class a tool name belongs to, chosen by its
// prefix.
type Backend int

const (
	// BackendStrict covers unprefixed and core: names.
	BackendStrict Backend = iota
	// BackendPackageManager covers npm:, pipx:, cargo:, gem:, dotnet:.
	BackendPackageManager
	// BackendRepository covers aqua:, github:, gitlab:, ubi:, asdf:, vfox:,
	// vfox-backend:, spm: and any unrecognized prefix.
	BackendRepository
	// BackendGo covers go: module paths.
	BackendGo
	// BackendHTTP covers http: names, which are not validated.
	BackendHTTP
)

// String returns the backend class name.
func (b Backend) String() string {
	switch b {
	case BackendStrict:
		return "strict"
	case BackendPackageManager:
		return "package-manager"
	case BackendRepository:
		return "repository"
	case BackendGo:
		return "go"
	case BackendHTTP:
		return "http"
	default:
		return "unknown"
	}
}

var (
	packageManagerPrefixes = []string{"npm:", "pipx:", "cargo:", "gem:", "dotnet:"}
	repositoryPrefixes     = []string{
		"aqua:", "github:", "gitlab:", "ubi:", "asdf:", "vfox:", "vfox-backend:", "spm:",
	}

	packageManagerPattern = regexp.MustCompile(`^[@a-zA-Z0-9/_.\-\[\],]+$`)
	repositoryPattern     = regexp.MustCompile(`^[a-zA-Z0-9/_.\-]+$`)
	strictPattern         = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	pluginURLPattern      = regexp.MustCompile(`^(https?://|git://|git@)[\w\-.]+[:/][\w\-./#]+$`)
)

// Classify returns the backend class of name and the part after the prefix.
func Classify(name string) (Backend, string) {
	for _, p := range packageManagerPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok {
			return BackendPackageManager, rest
		}
	}
	for _, p := range repositoryPrefixes {
		if rest, ok := strings.CutPrefix(name, p); ok {
			return BackendRepository, rest
		}
	}
	if rest, ok := strings.CutPrefix(name, "go:"); ok {
		return BackendGo, rest
	}
	if rest, ok := strings.CutPrefix(name, "http:"); ok {
		return BackendHTTP, rest
	}
	if rest, ok := strings.CutPrefix(name, "core:"); ok {
		return BackendStrict, rest
	}
	if _, rest, ok := strings.Cut(name, ":"); ok {
		return BackendRepository, rest
	}
	return BackendStrict, name
}

// ValidateToolName checks name against the rules of its backend class.
// field is the manifest location reported on failure, e.g. "tools.node".
func ValidateToolName(field, name string) error {
	if name == "" {
		return rerrors.Validation(field, "tool name cannot be empty", "'node'")
	}

	backend, rest := Classify(name)
	if backend == BackendHTTP {
		return nil
	}
	if rest == "" {
		return rerrors.Validation(field,
			fmt.Sprintf("name after the backend prefix cannot be empty in %q", name),
			exampleFor(backend))
	}

	var ok bool
	var rule string
	switch backend {
	case BackendPackageManager:
		ok = packageManagerPattern.MatchString(rest)
		rule = "package manager tool names may contain letters, digits, @, /, -, _, ., [, ] and ,"
	case BackendRepository:
		ok = repositoryPattern.MatchString(rest)
		rule = "repository tool names may contain letters, digits, /, -, _ and ."
	case BackendGo:
		ok = repositoryPattern.MatchString(rest)
		rule = "go module paths may contain letters, digits, /, -, _ and ."
	default:
		ok = strictPattern.MatchString(rest)
		rule = "standalone tool names may contain only letters, digits, - and _; " +
			"use a backend prefix such as npm: or aqua: for other forms"
	}
	if !ok {
		return rerrors.Validation(field, fmt.Sprintf("invalid tool name %q: %s", name, rule), exampleFor(backend))
	}
	return nil
}

// ValidatePluginURL checks that url looks like a git repository URL,
// optionally with a #ref suffix.
func ValidatePluginURL(field, url string) error {
	if url == "" {
		return rerrors.Validation(field, "plugin URL cannot be empty",
			"'https://github.com/org/repo.git'")
	}
	if !pluginURLPattern.MatchString(url) {
		return rerrors.Validation(field,
			fmt.Sprintf("invalid plugin URL %q: must be a git repository URL (https://, git:// or git@)", url),
			"'https://github.com/org/repo.git#v1.0.0'")
	}
	return nil
}

func exampleFor(b Backend) string {
	switch b {
	case BackendPackageManager:
		return "'npm:@scope/package', 'pipx:package[extra]'"
	case BackendRepository:
		return "'aqua:cli/cli', 'github:owner/repo'"
	case BackendGo:
		return "'go:github.com/owner/repo/cmd/tool'"
	default:
		return "'node', 'python-3', 'my_tool'"
	}
}

// Result collects every failure found in a tool section.
type Result struct {
	Errors []error
}

// AddError records a failure.
func (r *Result) AddError(err error) {
	r.Errors = append(r.Errors, err)
}

// HasErrors returns true if there are any validation errors.
func (r *Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Error returns nil, the single failure, or all failures combined.
func (r *Result) Error() error {
	switch len(r.Errors) {
	case 0:
		return nil
	case 1:
		return r.Errors[0]
	default:
		return Errors(r.Errors)
	}
}

// Errors collects multiple validation errors.
type Errors []error

// Error returns a formatted error message for all validation failures.
func (ve Errors) Error() string {
	if len(ve) == 0 {
		return "no validation errors"
	}
	if len(ve) == 1 {
		return ve[0].Error()
	}
	return fmt.Sprintf("%d validation errors:\n- %s", len(ve), errors.Join(ve...))
}

// Unwrap exposes the individual errors to errors.Is and errors.As.
func (ve Errors) Unwrap() []error {
	return ve
}

// ValidateToolSection checks every tool name, plugin name and plugin URL.
// A nil section is valid.
func ValidateToolSection(ts *model.ToolSection) *Result {
	result := &Result{}
	if ts == nil {
		return result
	}
	for name := range ts.Tools.All() {
		if err := ValidateToolName("tools."+name, name); err != nil {
			result.AddError(err)
		}
	}
	for name, url := range ts.Plugins.All() {
		if err := ValidateToolName("plugins."+name, name); err != nil {
			result.AddError(err)
		}
		if err := ValidatePluginURL("plugins."+name, url); err != nil {
			result.AddError(err)
		}
	}
	return result
}
