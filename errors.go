package onig

import (
	"errors"
	"fmt"

	"github.com/magnetde/onig/regex"
	"github.com/magnetde/onig/syntax"
)

// ConfigError is returned, if options, dialects, the encoding or search arguments
// are invalid. It is always detected before the engine is called.
type ConfigError = syntax.ConfigError

// CompileError is returned, if the engine rejects a pattern.
type CompileError struct {
	Code    int    // error code of the engine
	Pos     int    // byte offset into the pattern; -1 if unknown
	Message string // message of the engine

	err error
}

func (e *CompileError) Error() string {
	return e.Message
}

func (e *CompileError) Unwrap() error {
	return e.err
}

// SearchError is returned, if the engine fails during a search.
type SearchError struct {
	Code    int
	Message string

	err error
}

func (e *SearchError) Error() string {
	return e.Message
}

func (e *SearchError) Unwrap() error {
	return e.err
}

var (
	errClosed        = &ConfigError{Reason: "regex is closed"}
	errNotCompiled   = &ConfigError{Reason: "regex is not compiled"}
	errRegionInvalid = errors.New("engine returned an invalid region")
)

// configErrorf creates a configuration error with a formatted reason.
func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}

// compileError converts an error of the engine into a compile error.
// Errors, that are not engine errors, keep their message and get the code "invalid argument".
func compileError(err error) error {
	var e *regex.Error
	if errors.As(err, &e) {
		return &CompileError{
			Code:    e.Code,
			Pos:     e.Pos,
			Message: e.Error(),
			err:     e,
		}
	}

	return &CompileError{
		Code:    regex.ErrInvalidArgument,
		Pos:     -1,
		Message: err.Error(),
		err:     err,
	}
}

// searchError converts an error of the engine into a search error.
// Configuration errors of the engine are returned unchanged.
func searchError(err error) error {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return err
	}

	var e *regex.Error
	if errors.As(err, &e) {
		return &SearchError{
			Code:    e.Code,
			Message: e.Error(),
			err:     e,
		}
	}

	return &SearchError{
		Code:    regex.ErrInvalidArgument,
		Message: err.Error(),
		err:     err,
	}
}
