// Package decode provides the decode command.
package decode

import (
	"fmt"

	"github.com/httpbind/httpbind/cmd"
	"github.com/httpbind/httpbind/escape"
	"github.com/httpbind/httpbind/flags"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	pathStyle = false
	utf8Valid = false
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.BoolVarP(cmdFlags, &pathStyle, "path", "", pathStyle, "Decode path style, leaving \"+\" alone")
	flags.BoolVarP(cmdFlags, &utf8Valid, "utf8", "", utf8Valid, "With --path, insist the decoded bytes are valid UTF-8")
}

var commandDefinition = &cobra.Command{
	Use:   "decode text",
	Short: `Decode percent escaped text.`,
	Long: `Prints the text with any percent escapes decoded.  By default this
uses form decoding which turns "+" into a space.  With the --path
flag "+" is left alone which is what you want for the path part of a
URL, eg

    httpbind decode --path "postings/June%202021"

Decoding fails if the text contains a truncated escape like "%4" or
an escape with non hex digits like "%zz".
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(false, command, func() error {
			var decoded string
			var err error
			switch {
			case pathStyle && utf8Valid:
				decoded, err = escape.DecodeURIPathUTF8(args[0])
			case pathStyle:
				decoded, err = escape.DecodeURIPath(args[0])
			default:
				decoded, err = escape.DecodeURI(args[0])
			}
			if err != nil {
				return errors.Wrapf(err, "failed to decode %q", args[0])
			}
			fmt.Println(decoded)
			return nil
		})
	},
}
