// Package syntax describes regex dialects and the options of the engine.
// All types are plain values. Built-in dialects are predefined and may be
// combined into custom dialects by set operations on their operators and
// behaviors.
package syntax

import "fmt"

// Syntax describes a regex dialect.
type Syntax struct {
	Op       Operator // recognized operators
	Behavior Behavior // handling of ambiguous constructs
	Options  Option   // implicit compile options of the dialect
}

// Validate checks, that the syntax only uses known operator and behavior bits,
// and that its implicit options are compile time options.
func (s *Syntax) Validate() error {
	if s == nil {
		return nil
	}
	if u := s.Op.unknown(); u != 0 {
		return configErrorf("unknown syntax operator bits %#x", uint64(u))
	}
	if u := s.Behavior.unknown(); u != 0 {
		return configErrorf("unknown syntax behavior bits %#x", uint32(u))
	}
	if bad := s.Options &^ CompileOptions; bad != 0 {
		return configErrorf("option %s is not a valid syntax option", bad)
	}

	return nil
}

// Clone returns a copy of the syntax, that may be modified freely.
func (s *Syntax) Clone() *Syntax {
	c := *s
	return &c
}

// ConfigError is returned, if options, dialects or search arguments are
// invalid before the engine is involved.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// configErrorf creates a new configuration error with a formatted reason.
func configErrorf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
