// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package yargs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/containerd/errdefs"
)

// Sentinel errors for outcomes that are not failures. Parse returns them
// after the corresponding text has been written to the output sink.
var (
	// ErrHelp is returned when help is requested (--help or -h).
	ErrHelp = errors.New("help requested")

	// ErrHelpLLM is returned when LLM-optimized help is requested (--help-llm).
	ErrHelpLLM = errors.New("llm help requested")

	// ErrVersion is returned when --version is requested.
	ErrVersion = errors.New("version requested")

	// ErrCompletion is returned after completion candidates were written.
	ErrCompletion = errors.New("completion requested")
)

// Kind classifies a ValidationError.
type Kind int

const (
	KindMissingRequired Kind = iota + 1
	KindInvalidChoice
	KindArityMismatch
	KindConflictingOptions
	KindUnknownOption
	KindUserCheckFailed
	KindMissingCommand
)

func (k Kind) String() string {
	switch k {
	case KindMissingRequired:
		return "missing-required"
	case KindInvalidChoice:
		return "invalid-choice"
	case KindArityMismatch:
		return "arity-mismatch"
	case KindConflictingOptions:
		return "conflicting-options"
	case KindUnknownOption:
		return "unknown-option"
	case KindUserCheckFailed:
		return "user-check-failed"
	case KindMissingCommand:
		return "missing-command"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ValidationError is a parse failure. Msg is the text shown to the user;
// Err, when set, is the underlying cause (e.g. the error returned by a
// check function).
//
// Every ValidationError matches errdefs.ErrInvalidArgument.
type ValidationError struct {
	Kind Kind
	Keys []string
	Msg  string
	Err  error
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == errdefs.ErrInvalidArgument
}

// ValidationErrors aggregates failures when the parser runs with AllErrors.
// Order follows validation stage, then registration order.
type ValidationErrors []*ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ve := range e {
		msgs = append(msgs, ve.Msg)
	}
	return strings.Join(msgs, "\n")
}

func (e ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(e))
	for _, ve := range e {
		errs = append(errs, ve)
	}
	return errs
}

// IsKind reports whether err is, or wraps, a ValidationError of kind k.
func IsKind(err error, k Kind) bool {
	var ve *ValidationError
	if errors.As(err, &ve) && ve.Kind == k {
		return true
	}
	var list ValidationErrors
	if errors.As(err, &list) {
		for _, ve := range list {
			if ve.Kind == k {
				return true
			}
		}
	}
	return false
}

// ConfigError reports a malformed parser configuration: conflicting alias
// bindings, bad command patterns, mutation during a parse, or an unreadable
// config file. Registration-time ConfigErrors are raised with panic; config
// file errors are returned from Parse.
type ConfigError struct {
	Key string
	Msg string
	Err error // one of the errdefs categories, possibly joined with a cause
}

func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("yargs: %s: %s", e.Key, e.Msg)
	}
	return "yargs: " + e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// FlagValueError is returned by Result.Bind when a value cannot be stored in
// the destination field.
// UserMsg contains the clean user-facing error message, while Err contains
// the full wrapped error chain.
type FlagValueError struct {
	FlagName  string // The option key (e.g., "http-port")
	FieldName string // The struct field name (e.g., "HTTPPort")
	Value     any    // The value that was provided
	UserMsg   string // User-friendly error message for display
	Err       error  // Full wrapped error chain for debugging/verbose logging
}

func (e *FlagValueError) Error() string {
	return e.UserMsg
}

func (e *FlagValueError) Unwrap() error {
	return e.Err
}

func newValidationError(kind Kind, keys []string, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Keys: keys, Msg: fmt.Sprintf(format, args...)}
}
