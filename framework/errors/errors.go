// Package errors holds the container's error taxonomy.
//
// Every failure surfaced by the container is one of the types below, possibly
// wrapped with path context. Use errors.As to reach the root cause:
//
//	var nf *errors.NotFoundError
//	if errors.As(err, &nf) { ... }
package errors

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when no definition or cached value exists for an entry.
type NotFoundError struct {
	Entry string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no entry or type found for '%s'", e.Entry)
}

// DefinitionError reports a malformed or unsatisfiable definition: a missing
// or abstract type, a parameter without a value, an undefined environment
// variable, a callable that cannot be invoked.
type DefinitionError struct {
	Entry   string
	Message string
	Err     error
}

func (e *DefinitionError) Error() string {
	var b strings.Builder
	if e.Entry != "" {
		fmt.Fprintf(&b, "entry '%s' cannot be resolved: ", e.Entry)
	}
	b.WriteString(e.Message)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *DefinitionError) Unwrap() error {
	return e.Err
}

// DependencyError wraps a failure that happened while resolving a nested
// dependency. Path says where: "Mailer property logger", "tags[2]", ...
type DependencyError struct {
	Path string
	Err  error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("error while resolving %s: %v", e.Path, e.Err)
}

func (e *DependencyError) Unwrap() error {
	return e.Err
}

// CircularDependencyError names the entry that was requested again while
// still being resolved.
type CircularDependencyError struct {
	Entry string
}

func (e *CircularDependencyError) Error() string {
	return fmt.Sprintf("circular dependency detected while trying to resolve entry '%s'", e.Entry)
}

// ConfigurationError reports an illegal use of the container itself, e.g.
// setting a definition on a compiled container.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "container configuration: " + e.Message
}

// ── constructors ──────────────────────────────────────────────────────────────

// NotFound builds a NotFoundError.
func NotFound(entry string) error {
	return &NotFoundError{Entry: entry}
}

// InvalidDefinition builds a DefinitionError with a formatted message.
func InvalidDefinition(entry, format string, args ...any) error {
	return &DefinitionError{Entry: entry, Message: fmt.Sprintf(format, args...)}
}

// DefinitionFailed wraps err, raised while applying the definition of entry.
func DefinitionFailed(err error, entry, format string, args ...any) error {
	return &DefinitionError{Entry: entry, Message: fmt.Sprintf(format, args...), Err: err}
}

// Dependency wraps err with the location of the nested resolution.
func Dependency(err error, format string, args ...any) error {
	return &DependencyError{Path: fmt.Sprintf(format, args...), Err: err}
}

// Circular builds a CircularDependencyError.
func Circular(entry string) error {
	return &CircularDependencyError{Entry: entry}
}

// Configuration builds a ConfigurationError with a formatted message.
func Configuration(format string, args ...any) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is, or wraps, a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return As(err, &nf)
}

// IsNotFoundOf reports whether err is a NotFoundError for exactly entry.
// A dependency of entry that is missing does not count.
func IsNotFoundOf(err error, entry string) bool {
	nf, ok := err.(*NotFoundError)
	return ok && nf.Entry == entry
}
