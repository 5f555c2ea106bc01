// Package diagnostics configures how much a spectre invocation tells the user:
// the log level of the process-wide logger and how failures are rendered.
//
// The configuration is chosen once, from at most one of the --debug and
// --silent flags, and is immutable afterwards. A State value is passed to
// everything that logs or renders failures instead of living in a mutable
// global:
//
//	state := diagnostics.Configure(diagnostics.FlagDebug)
//	logger := state.NewLogger(os.Stderr)
//	restore := diagnostics.Install(logger)
//	defer restore()
//	...
//	state.Reporter(os.Stderr).Report(err)
package diagnostics

import (
	"errors"
	"reflect"
	"strings"
)

// Flag is the verbosity flag given on the command line
type Flag int

const (
	FlagNone Flag = iota
	FlagDebug
	FlagSilent
)

func (f Flag) String() string {
	switch f {
	case FlagDebug:
		return "debug"
	case FlagSilent:
		return "silent"
	default:
		return "none"
	}
}

// DefaultExtraLines is the number of source lines shown around each frame of a
// verbose failure report.
const DefaultExtraLines = 3

// ErrConflictingFlags is returned when both --debug and --silent are given
var ErrConflictingFlags = errors.New("--debug and --silent are mutually exclusive")

// selfPackage is hidden from failure reports along with the CLI framework.
var selfPackage = reflect.TypeOf(State{}).PkgPath()

var defaultSuppressed = []string{
	"runtime",
	"github.com/spf13/cobra",
	"github.com/spf13/pflag",
	selfPackage,
}

// State is the diagnostics configuration of one process invocation. It is
// created by Configure and never modified; WithSuppressed returns a copy.
type State struct {
	Level      Level
	Verbose    bool
	ExtraLines int
	suppressed []string
}

// Configure maps a verbosity flag onto a diagnostics State
func Configure(flag Flag) State {
	state := State{
		Level:      LevelInfo,
		suppressed: append([]string(nil), defaultSuppressed...),
	}
	switch flag {
	case FlagDebug:
		state.Level = LevelDebug
		state.Verbose = true
		state.ExtraLines = DefaultExtraLines
	case FlagSilent:
		state.Level = LevelCritical
	}
	return state
}

// WithSuppressed returns a copy of the state that also hides stack frames
// belonging to the given packages (and their subpackages).
func (s State) WithSuppressed(pkgs ...string) State {
	merged := make([]string, 0, len(s.suppressed)+len(pkgs))
	merged = append(merged, s.suppressed...)
	merged = append(merged, pkgs...)
	s.suppressed = merged
	return s
}

// Suppressed returns the packages whose frames are hidden from failure reports
func (s State) Suppressed() []string {
	return append([]string(nil), s.suppressed...)
}

// IsSuppressed reports whether frames from pkg are hidden
func (s State) IsSuppressed(pkg string) bool {
	for _, prefix := range s.suppressed {
		if pkg == prefix || strings.HasPrefix(pkg, prefix+"/") {
			return true
		}
	}
	return false
}
