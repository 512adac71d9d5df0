// Package cmd implements the httpbind command
//
// It is in a sub package so it's internals can be re-used elsewhere
package cmd

import (
	"fmt"
	"log"
	"os"
	"os/exec"
	"runtime"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/httpbind/httpbind"
	"github.com/httpbind/httpbind/flags"
	"github.com/httpbind/httpbind/transport"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Globals
var (
	// Flags
	version         bool
	retries         = flags.IntP("retries", "", 3, "Retry operations this many times if they fail")
	retriesInterval = flags.DurationP("retries-sleep", "", 0, "Interval between retrying operations if they fail, e.g 500ms, 60s, 5m. (0 to disable)")
	// Errors
	errorCommandNotFound    = errors.New("command not found")
	errorUncategorized      = errors.New("uncategorized error")
	errorNotEnoughArguments = errors.New("not enough arguments")
	errorTooManyArguments   = errors.New("too many arguments")
)

const (
	exitCodeSuccess = iota
	exitCodeUsageError
	exitCodeUncategorizedError
	exitCodeRetryError
)

// Root is the main httpbind command
var Root = &cobra.Command{
	Use:   "httpbind",
	Short: "Escape, unescape and fetch URLs.",
	Long: `httpbind escapes and unescapes text with the policy for each URI
component and fetches URLs using the shared HTTP transport.

See "httpbind help flags" for the global flags which configure the
transport, logging and retries.
`,
	Run: func(command *cobra.Command, args []string) {
		if version {
			ShowVersion()
			resolveExitCode(nil)
		}
		_ = command.Usage()
		if len(args) > 0 {
			_, _ = fmt.Fprintf(os.Stderr, "Command not found.\n")
			resolveExitCode(errorCommandNotFound)
		}
		resolveExitCode(nil)
	},
}

// ShowVersion prints the version to stdout
func ShowVersion() {
	fmt.Printf("httpbind %s\n", httpbind.Version)
	fmt.Printf("- os/arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("- go version: %s\n", runtime.Version())
}

// Run the function with retries if required
func Run(Retry bool, cmd *cobra.Command, f func() error) {
	var cmdErr error
	for try := 1; try <= *retries; try++ {
		cmdErr = f()
		if cmdErr == nil {
			if try > 1 {
				httpbind.Errorf(nil, "Attempt %d/%d succeeded", try, *retries)
			}
			break
		}
		if !Retry {
			break
		}
		if !httpbind.IsRetryError(cmdErr) && !httpbind.ShouldRetry(cmdErr) {
			httpbind.Errorf(nil, "Can't retry this error - not attempting retries")
			break
		}
		httpbind.Errorf(nil, "Attempt %d/%d failed with: %v", try, *retries, cmdErr)
		if try < *retries && *retriesInterval > 0 {
			time.Sleep(*retriesInterval)
		}
	}
	httpbind.Debugf(nil, "%d go routines active\n", runtime.NumGoroutine())

	// dump all running go-routines
	if httpbind.Config.Dump&httpbind.DumpGoRoutines != 0 {
		err := pprof.Lookup("goroutine").WriteTo(os.Stdout, 1)
		if err != nil {
			httpbind.Errorf(nil, "Failed to dump goroutines: %v", err)
		}
	}

	// dump open files
	if httpbind.Config.Dump&httpbind.DumpOpenFiles != 0 {
		c := exec.Command("lsof", "-p", strconv.Itoa(os.Getpid()))
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		err := c.Run()
		if err != nil {
			httpbind.Errorf(nil, "Failed to list open files: %v", err)
		}
	}

	// Log the final error message and exit
	if cmdErr != nil {
		log.Printf("Failed to %s: %v", cmd.Name(), cmdErr)
	}
	resolveExitCode(cmdErr)
}

// CheckArgs checks there are enough arguments and prints a message if not
func CheckArgs(MinArgs, MaxArgs int, cmd *cobra.Command, args []string) {
	if len(args) < MinArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments minimum: you provided %d non flag arguments: %q\n", cmd.Name(), MinArgs, len(args), args)
		resolveExitCode(errorNotEnoughArguments)
	} else if len(args) > MaxArgs {
		_ = cmd.Usage()
		_, _ = fmt.Fprintf(os.Stderr, "Command %s needs %d arguments maximum: you provided %d non flag arguments: %q\n", cmd.Name(), MaxArgs, len(args), args)
		resolveExitCode(errorTooManyArguments)
	}
}

// initConfig is run by cobra after initialising the flags
func initConfig() {
	// Finish parsing any command line flags
	flags.SetFlags()

	// Start the logger
	httpbind.InitLogging()

	// Write the args for debug purposes
	httpbind.Debugf("httpbind", "Version %q starting with parameters %q", httpbind.Version, os.Args)

	// Start the global HTTP transaction limiter
	transport.StartHTTPTokenBucket()
}

func resolveExitCode(err error) {
	if err == nil {
		os.Exit(exitCodeSuccess)
	}
	cause := errors.Cause(err)
	switch {
	case cause == errorUncategorized:
		os.Exit(exitCodeUncategorizedError)
	case httpbind.IsRetryError(err), httpbind.ShouldRetry(err):
		os.Exit(exitCodeRetryError)
	default:
		os.Exit(exitCodeUsageError)
	}
}

// setupRootCommand sets default usage, help, and error handling for
// the root command.
func setupRootCommand(rootCmd *cobra.Command) {
	// Add the global flags.  cobra merges pflag.CommandLine into the
	// root command's persistent flags when it executes.
	flags.AddFlags(pflag.CommandLine)

	rootCmd.Flags().BoolVarP(&version, "version", "V", false, "Print the version number")

	cobra.OnInitialize(initConfig)
}

// Main runs httpbind interpreting flags and commands out of os.Args
func Main() {
	setupRootCommand(Root)
	if err := Root.Execute(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}
