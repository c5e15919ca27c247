package onig

import (
	"time"

	"github.com/magnetde/onig/regex"
	"github.com/magnetde/onig/syntax"
)

// Config holds the parameters of a compilation.
// The zero value compiles with the Ruby dialect, UTF-8 and the default engine.
type Config struct {
	Options  syntax.Options
	Syntax   *syntax.Syntax  // dialect; nil means syntax.Default()
	Encoding syntax.Encoding // zero means syntax.UTF8
	Engine   regex.Engine    // nil means the regexp2 engine

	// MatchTimeout limits a single engine call of the default engine.
	// Zero disables the limit. It is ignored, if Engine is set.
	MatchTimeout time.Duration
}

// Validate checks the configuration without calling the engine.
func (c *Config) Validate() error {
	if err := c.Options.Validate(); err != nil {
		return err
	}
	if err := c.Syntax.Validate(); err != nil {
		return err
	}
	if c.Encoding != 0 {
		if err := c.Encoding.Validate(); err != nil {
			return err
		}
	}
	if c.MatchTimeout < 0 {
		return configErrorf("negative match timeout %s", c.MatchTimeout)
	}

	return nil
}

// withDefaults returns a copy of the configuration, where all unset fields hold their defaults.
// The syntax is copied, so later changes of the caller do not affect a compiled regex.
func (c Config) withDefaults() Config {
	if c.Syntax == nil {
		c.Syntax = syntax.Default()
	} else {
		c.Syntax = c.Syntax.Clone()
	}
	if c.Encoding == 0 {
		c.Encoding = syntax.UTF8
	}
	if c.Engine == nil {
		c.Engine = regex.Regexp2Engine{MatchTimeout: c.MatchTimeout}
	}

	return c
}
