package errors

import "fmt"

// ConfigError kinds. A ConfigError is always fatal and is surfaced before
// any combination is dispatched.
const (
	DuplicateFeature        = "DUPLICATE_FEATURE"
	UnknownFeatureReference = "UNKNOWN_FEATURE_REFERENCE"
	ContradictoryConstraint = "CONTRADICTORY_CONSTRAINT"
	InvalidDepth            = "INVALID_DEPTH"
	InvalidManifest         = "INVALID_MANIFEST"
)

// ConfigError describes a malformed catalog, depth, or manifest.
type ConfigError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func NewConfigError(kind, msg, hint string) *ConfigError {
	return &ConfigError{Kind: kind, Message: msg, Hint: hint}
}

// DispatchError means a single command invocation could not run at all
// (no exit code was produced). It is scoped to one combination and is
// never fatal to the run.
type DispatchError struct {
	Features []string `json:"features"`
	Message  string   `json:"message"`
	Err      error    `json:"-"`
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("dispatch failed for %v: %s", e.Features, e.Message)
}

func (e *DispatchError) Unwrap() error { return e.Err }
