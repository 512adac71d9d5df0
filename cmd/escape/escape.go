// Package escape provides the escape command.
package escape

import (
	"fmt"

	"github.com/httpbind/httpbind/cmd"
	"github.com/httpbind/httpbind/escape"
	"github.com/httpbind/httpbind/flags"
	"github.com/spf13/cobra"
)

var (
	policy = escape.URI
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.FVarP(cmdFlags, &policy, "policy", "p", "Escape policy to use: "+escape.PolicyList)
}

var commandDefinition = &cobra.Command{
	Use:   "escape text",
	Short: `Escape text for use in part of a URL.`,
	Long: `Prints the text escaped with the selected policy.  The default "uri"
policy produces "application/x-www-form-urlencoded" output with
spaces as "+".  The other policies escape for a URI component, eg

    httpbind escape --policy uri-path-without-reserved "postings/June 2021"

escapes a path leaving the "/" alone.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(false, command, func() error {
			fmt.Println(policy.Escape(args[0]))
			return nil
		})
	},
}
