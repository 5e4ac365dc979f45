package model

import (
	"fmt"

	goerrors "github.com/go-errors/errors"
)

// ConfigError reports a required credential or environment value that is
// missing. It is raised before any network activity.
type ConfigError struct {
	Name  string // env var or config key that is missing
	stack []byte
}

// NewConfigError captures the caller's stack alongside the missing name.
func NewConfigError(name string) *ConfigError {
	return &ConfigError{
		Name:  name,
		stack: goerrors.Wrap(fmt.Errorf("missing %s", name), 1).Stack(),
	}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: missing %s", e.Name)
}

// StackTrace returns the stack captured at construction.
func (e *ConfigError) StackTrace() []byte {
	return e.stack
}

// UpstreamError wraps a non-success response from a provider. Body holds the
// response text as returned, cut at the first 64 KiB.
type UpstreamError struct {
	Provider string
	Status   int
	Body     string
	stack    []byte
}

// NewUpstreamError captures the caller's stack alongside the response data.
func NewUpstreamError(provider string, status int, body string) *UpstreamError {
	return &UpstreamError{
		Provider: provider,
		Status:   status,
		Body:     body,
		stack:    goerrors.Wrap(fmt.Errorf("%s status %d", provider, status), 1).Stack(),
	}
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream error: %s status %d: %s", e.Provider, e.Status, e.Body)
}

// StackTrace returns the stack captured at construction.
func (e *UpstreamError) StackTrace() []byte {
	return e.stack
}
