// httpbind is a command line tool for escaping, unescaping and
// fetching URLs.
package main

import (
	"github.com/httpbind/httpbind/cmd"
	_ "github.com/httpbind/httpbind/cmd/all" // import all commands
)

func main() {
	cmd.Main()
}
