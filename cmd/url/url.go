// Package url provides the url command.
package url

import (
	"fmt"
	"strings"

	"github.com/httpbind/httpbind/cmd"
	"github.com/httpbind/httpbind/flags"
	"github.com/httpbind/httpbind/rest"
	"github.com/spf13/cobra"
)

var (
	scheme   = "https"
	user     = ""
	password = ""
	fragment = ""
	params   []string
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.StringVarP(cmdFlags, &scheme, "scheme", "", scheme, "Scheme for the URL")
	flags.StringVarP(cmdFlags, &user, "user", "", user, "User for the userinfo part")
	flags.StringVarP(cmdFlags, &password, "pass", "", password, "Password for the userinfo part")
	flags.StringVarP(cmdFlags, &fragment, "fragment", "", fragment, "Fragment without the leading \"#\"")
	flags.StringArrayVarP(cmdFlags, &params, "param", "", nil, "Query parameter key=value, may repeat")
}

var commandDefinition = &cobra.Command{
	Use:   "url host [path segment]...",
	Short: `Build a URL from its parts, escaping each one.`,
	Long: `Builds a URL out of the host, the path segments and the query
parameters given with --param, escaping each part with the policy for
its URI component, eg

    httpbind url --param "q=a=b&c" example.com "June 2021" report.txt

prints

    https://example.com/June%202021/report.txt?q=a%3Db%26c

Everything structural in the output was put there by the builder, so
the parts themselves can contain any characters at all.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1E6, command, args)
		fmt.Println(makeURL(args).String())
	},
}

// makeURL builds the URL from the flags, the host in args[0] and the
// path segments in the rest of args
func makeURL(args []string) *rest.URL {
	u := &rest.URL{
		Scheme:   scheme,
		Host:     args[0],
		User:     user,
		Password: password,
		Fragment: fragment,
	}
	u.AddPath(args[1:]...)
	for _, param := range params {
		parts := strings.SplitN(param, "=", 2)
		value := ""
		if len(parts) > 1 {
			value = parts[1]
		}
		u.AddParam(parts[0], value)
	}
	return u
}
