// Global config handling

package httpbind

import (
	"net"
	"strings"
	"time"
)

// Global
var (
	// Config is the global config
	Config = NewConfig()
)

// HTTPHeader is a custom header to set on every request
type HTTPHeader struct {
	Key   string
	Value string
}

// ConfigInfo is the global config needed by the library
type ConfigInfo struct {
	LogLevel              LogLevel
	UseJSONLog            bool
	Dump                  DumpFlags
	Connections           int           // Connections to keep per host
	ConnectTimeout        time.Duration // Connect timeout
	Timeout               time.Duration // Data channel timeout
	ExpectContinueTimeout time.Duration
	LowLevelRetries       int
	InsecureSkipVerify    bool   // Skip server certificate verification
	NoGzip                bool   // Disable compression
	ClientCert            string // Client Side Cert
	ClientKey             string // Client Side Key
	CaCert                string // Client Side CA
	Cookie                bool   // Enable the session cookiejar
	UserAgent             string
	Headers               []*HTTPHeader
	TPSLimit              float64
	TPSLimitBurst         int
	BindAddr              net.IP
}

// NewConfig creates a new config with everything set to the default
// value.  These are the ultimate defaults and are overridden by the
// environment and command line flags.
func NewConfig() *ConfigInfo {
	c := new(ConfigInfo)

	// Set any values which aren't the zero for the type
	c.LogLevel = LogLevelNotice
	c.Connections = 4
	c.ConnectTimeout = 60 * time.Second
	c.Timeout = 5 * 60 * time.Second
	c.ExpectContinueTimeout = 1 * time.Second
	c.LowLevelRetries = 10
	c.UserAgent = "httpbind/" + Version
	c.TPSLimitBurst = 1

	return c
}

// OptionToEnv converts an option name, eg "user-agent" into an
// environment name "HTTPBIND_USER_AGENT"
func OptionToEnv(name string) string {
	return "HTTPBIND_" + strings.ToUpper(strings.Replace(name, "-", "_", -1))
}
