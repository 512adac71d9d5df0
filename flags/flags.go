// Package flags wraps the spf13/pflag routines used to define the
// command line interface.
//
// Any flag defined through this package picks up its default from the
// environment first, so --user-agent can be set with HTTPBIND_USER_AGENT
// and still be overridden on the command line.
package flags

import (
	"log"
	"os"
	"time"

	"github.com/httpbind/httpbind"
	"github.com/spf13/pflag"
)

// setDefaultFromEnv looks the flag called name up in the environment
// and if found makes the environment value the new default, leaving
// the command line free to override it.
func setDefaultFromEnv(flags *pflag.FlagSet, name string) {
	envKey := httpbind.OptionToEnv(name)
	envValue, found := os.LookupEnv(envKey)
	if !found {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil {
		log.Fatalf("Couldn't find flag --%q", name)
	}
	err := flags.Set(name, envValue)
	if err != nil {
		log.Fatalf("Invalid value when setting --%s from environment variable %s=%q: %v", name, envKey, envValue, err)
	}
	httpbind.Debugf(nil, "Setting --%s %q from environment variable %s=%q", name, flag.Value, envKey, envValue)
	flag.DefValue = envValue
}

// StringVarP defines a string flag on flags with environment override
func StringVarP(flags *pflag.FlagSet, p *string, name, shorthand string, value string, usage string) {
	flags.StringVarP(p, name, shorthand, value, usage)
	setDefaultFromEnv(flags, name)
}

// BoolVarP defines a bool flag on flags with environment override
func BoolVarP(flags *pflag.FlagSet, p *bool, name, shorthand string, value bool, usage string) {
	flags.BoolVarP(p, name, shorthand, value, usage)
	setDefaultFromEnv(flags, name)
}

// IntVarP defines an int flag on flags with environment override
func IntVarP(flags *pflag.FlagSet, p *int, name, shorthand string, value int, usage string) {
	flags.IntVarP(p, name, shorthand, value, usage)
	setDefaultFromEnv(flags, name)
}

// IntP defines an int flag on the global flag set with environment
// override
func IntP(name, shorthand string, value int, usage string) (out *int) {
	out = new(int)
	IntVarP(pflag.CommandLine, out, name, shorthand, value, usage)
	return out
}

// Float64VarP defines a float64 flag on flags with environment
// override
func Float64VarP(flags *pflag.FlagSet, p *float64, name, shorthand string, value float64, usage string) {
	flags.Float64VarP(p, name, shorthand, value, usage)
	setDefaultFromEnv(flags, name)
}

// DurationVarP defines a time.Duration flag on flags with environment
// override
func DurationVarP(flags *pflag.FlagSet, p *time.Duration, name, shorthand string, value time.Duration, usage string) {
	flags.DurationVarP(p, name, shorthand, value, usage)
	setDefaultFromEnv(flags, name)
}

// DurationP defines a time.Duration flag on the global flag set with
// environment override
func DurationP(name, shorthand string, value time.Duration, usage string) (out *time.Duration) {
	out = new(time.Duration)
	DurationVarP(pflag.CommandLine, out, name, shorthand, value, usage)
	return out
}

// CountVarP defines a counting flag on flags with environment
// override, eg -v and -vv
func CountVarP(flags *pflag.FlagSet, p *int, name, shorthand string, usage string) {
	flags.CountVarP(p, name, shorthand, usage)
	setDefaultFromEnv(flags, name)
}

// StringArrayVarP defines a repeatable string flag on flags.  The
// environment can supply one value only, the command line can then
// add more.
func StringArrayVarP(flags *pflag.FlagSet, p *[]string, name, shorthand string, value []string, usage string) {
	flags.StringArrayVarP(p, name, shorthand, value, usage)
	setDefaultFromEnv(flags, name)
}

// FVarP defines a flag for a pflag.Value on flags with environment
// override.  This is what the Value implementations in the root
// package and in escape hook into.
func FVarP(flags *pflag.FlagSet, value pflag.Value, name, shorthand, usage string) {
	flags.VarP(value, name, shorthand, usage)
	setDefaultFromEnv(flags, name)
}
