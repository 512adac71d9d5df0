// Define the global flags and how they fill in the global config

package flags

import (
	"log"
	"net"
	"strings"

	"github.com/httpbind/httpbind"
	"github.com/spf13/pflag"
)

// Options set by command line flags
var (
	// these will get interpreted into httpbind.Config via SetFlags() below
	verbose  int
	quiet    bool
	bindAddr string
	headers  []string
)

// AddFlags adds the global flags to the flagSet
func AddFlags(flagSet *pflag.FlagSet) {
	// NB defaults which aren't the zero for the type should be set in NewConfig
	CountVarP(flagSet, &verbose, "verbose", "v", "Print lots more stuff (repeat for more)")
	BoolVarP(flagSet, &quiet, "quiet", "q", false, "Print as little stuff as possible")
	FVarP(flagSet, &httpbind.Config.LogLevel, "log-level", "", "Log level DEBUG|INFO|NOTICE|ERROR")
	BoolVarP(flagSet, &httpbind.Config.UseJSONLog, "use-json-log", "", httpbind.Config.UseJSONLog, "Use json log format.")
	FVarP(flagSet, &httpbind.Config.Dump, "dump", "", "List of items to dump from: "+httpbind.DumpFlagsList)
	DurationVarP(flagSet, &httpbind.Config.ConnectTimeout, "contimeout", "", httpbind.Config.ConnectTimeout, "Connect timeout")
	DurationVarP(flagSet, &httpbind.Config.Timeout, "timeout", "", httpbind.Config.Timeout, "IO idle timeout")
	DurationVarP(flagSet, &httpbind.Config.ExpectContinueTimeout, "expect-continue-timeout", "", httpbind.Config.ExpectContinueTimeout, "Timeout when using expect / 100-continue in HTTP")
	IntVarP(flagSet, &httpbind.Config.Connections, "connections", "", httpbind.Config.Connections, "Number of connections to keep per host.")
	IntVarP(flagSet, &httpbind.Config.LowLevelRetries, "low-level-retries", "", httpbind.Config.LowLevelRetries, "Number of low level retries to do.")
	BoolVarP(flagSet, &httpbind.Config.InsecureSkipVerify, "no-check-certificate", "", httpbind.Config.InsecureSkipVerify, "Do not verify the server SSL certificate. Insecure.")
	BoolVarP(flagSet, &httpbind.Config.NoGzip, "no-gzip-encoding", "", httpbind.Config.NoGzip, "Don't set Accept-Encoding: gzip.")
	StringVarP(flagSet, &httpbind.Config.ClientCert, "client-cert", "", httpbind.Config.ClientCert, "Client SSL certificate (PEM) for mutual TLS auth")
	StringVarP(flagSet, &httpbind.Config.ClientKey, "client-key", "", httpbind.Config.ClientKey, "Client SSL private key (PEM) for mutual TLS auth")
	StringVarP(flagSet, &httpbind.Config.CaCert, "ca-cert", "", httpbind.Config.CaCert, "CA certificate used to verify servers")
	StringVarP(flagSet, &httpbind.Config.UserAgent, "user-agent", "", httpbind.Config.UserAgent, "Set the user-agent to a specified string. The default is httpbind/ version")
	BoolVarP(flagSet, &httpbind.Config.Cookie, "use-cookies", "", httpbind.Config.Cookie, "Enable session cookiejar.")
	Float64VarP(flagSet, &httpbind.Config.TPSLimit, "tpslimit", "", httpbind.Config.TPSLimit, "Limit HTTP transactions per second to this.")
	IntVarP(flagSet, &httpbind.Config.TPSLimitBurst, "tpslimit-burst", "", httpbind.Config.TPSLimitBurst, "Max burst of transactions for --tpslimit.")
	StringVarP(flagSet, &bindAddr, "bind", "", "", "Local address to bind to for outgoing connections, IPv4, IPv6 or name.")
	StringArrayVarP(flagSet, &headers, "header", "", nil, "Set HTTP header for all transactions")
}

// ParseHeaders converts the strings passed in via the header flags into HTTPHeaders
func ParseHeaders(headers []string) []*httpbind.HTTPHeader {
	opts := []*httpbind.HTTPHeader{}
	for _, header := range headers {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 1 {
			log.Fatalf("Failed to parse '%s' as an HTTP header. Expecting a string like: 'Content-Encoding: gzip'", header)
		}
		option := &httpbind.HTTPHeader{
			Key:   strings.TrimSpace(parts[0]),
			Value: strings.TrimSpace(parts[1]),
		}
		opts = append(opts, option)
	}
	return opts
}

// SetFlags converts any flags into config which weren't straight forward
func SetFlags() {
	if verbose >= 2 {
		httpbind.Config.LogLevel = httpbind.LogLevelDebug
	} else if verbose >= 1 {
		httpbind.Config.LogLevel = httpbind.LogLevelInfo
	}
	if quiet {
		if verbose > 0 {
			log.Fatalf("Can't set -v and -q")
		}
		httpbind.Config.LogLevel = httpbind.LogLevelError
	}
	logLevelFlag := pflag.Lookup("log-level")
	if logLevelFlag != nil && logLevelFlag.Changed {
		if verbose > 0 {
			log.Fatalf("Can't set -v and --log-level")
		}
		if quiet {
			log.Fatalf("Can't set -q and --log-level")
		}
	}

	if bindAddr != "" {
		addrs, err := net.LookupIP(bindAddr)
		if err != nil {
			log.Fatalf("--bind: Failed to parse %q as IP address: %v", bindAddr, err)
		}
		if len(addrs) != 1 {
			log.Fatalf("--bind: Expecting 1 IP address for %q but got %d", bindAddr, len(addrs))
		}
		httpbind.Config.BindAddr = addrs[0]
	}

	if len(headers) != 0 {
		httpbind.Config.Headers = ParseHeaders(headers)
	}
}
