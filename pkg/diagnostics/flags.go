package diagnostics

import "github.com/spf13/pflag"

// Selection holds the values of the verbosity flags after parsing
type Selection struct {
	debug  bool
	silent bool
}

// RegisterFlags defines --debug and --silent on fs
func RegisterFlags(fs *pflag.FlagSet) *Selection {
	sel := &Selection{}
	fs.BoolVar(&sel.debug, "debug", false, "Log debug messages and show detailed failure reports.")
	fs.BoolVar(&sel.silent, "silent", false, "Only log critical messages.")
	return sel
}

// Flag returns the selected verbosity flag
func (s *Selection) Flag() (Flag, error) {
	switch {
	case s.debug && s.silent:
		return FlagNone, ErrConflictingFlags
	case s.debug:
		return FlagDebug, nil
	case s.silent:
		return FlagSilent, nil
	}
	return FlagNone, nil
}
