// Package all imports all the commands
package all

import (
	// Active commands
	_ "github.com/httpbind/httpbind/cmd"
	_ "github.com/httpbind/httpbind/cmd/decode"
	_ "github.com/httpbind/httpbind/cmd/escape"
	_ "github.com/httpbind/httpbind/cmd/get"
	_ "github.com/httpbind/httpbind/cmd/url"
	_ "github.com/httpbind/httpbind/cmd/version"
)
