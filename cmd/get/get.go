// Package get provides the get command.
package get

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"

	"github.com/httpbind/httpbind"
	"github.com/httpbind/httpbind/cmd"
	"github.com/httpbind/httpbind/flags"
	"github.com/httpbind/httpbind/pacer"
	"github.com/httpbind/httpbind/readers"
	"github.com/httpbind/httpbind/rest"
	"github.com/httpbind/httpbind/transport"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	output  = ""
	jsonOut = false
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.StringVarP(cmdFlags, &output, "output", "o", output, "Write the body to a file instead of stdout")
	flags.BoolVarP(cmdFlags, &jsonOut, "json", "", jsonOut, "Reindent the body as JSON before writing it")
}

var commandDefinition = &cobra.Command{
	Use:   "get url",
	Short: `Fetch a URL and print it to stdout.`,
	Long: `Fetches the URL using the shared HTTP transport and prints the body
to stdout, or to the file given with --output.  With --json the body
is reindented as JSON first, which fails if it isn't JSON.

Requests are paced and retried on low level and retriable HTTP
errors (eg 429 or 503), so this respects --tpslimit and
--low-level-retries.  Use --dump headers to see the transactions.
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(1, 1, command, args)
		cmd.Run(true, command, func() (err error) {
			w := io.Writer(os.Stdout)
			if output != "" {
				var out *os.File
				out, err = os.Create(output)
				if err != nil {
					return errors.Wrap(err, "failed to create output file")
				}
				defer httpbind.CheckClose(out, &err)
				w = out
			}
			if !jsonOut {
				return Get(context.Background(), args[0], w)
			}
			var body bytes.Buffer
			err = Get(context.Background(), args[0], &body)
			if err != nil {
				return err
			}
			return writeIndented(w, body.Bytes())
		})
	},
}

// writeIndented reindents the JSON in body and writes it to w
func writeIndented(w io.Writer, body []byte) error {
	var indented bytes.Buffer
	err := json.Indent(&indented, body, "", "\t")
	if err != nil {
		return errors.Wrap(err, "body is not JSON")
	}
	indented.WriteByte('\n')
	_, err = indented.WriteTo(w)
	return err
}

// retryErrorCodes is a slice of error codes that we will retry
var retryErrorCodes = []int{
	429, // Too Many Requests
	500, // Internal Server Error
	502, // Bad Gateway
	503, // Service Unavailable
	504, // Gateway Timeout
	509, // Bandwidth Limit Exceeded
}

// shouldRetry returns a boolean as to whether this resp and err
// deserve to be retried.  It returns the err as a convenience
func shouldRetry(resp *http.Response, err error) (bool, error) {
	return httpbind.ShouldRetry(err) || httpbind.ShouldRetryHTTP(resp, retryErrorCodes), err
}

// Get fetches url and writes the body to w
func Get(ctx context.Context, url string, w io.Writer) (err error) {
	srv := rest.NewClient(transport.NewClient(httpbind.Config))
	p := pacer.New()
	var resp *http.Response
	err = p.Call(func() (bool, error) {
		resp, err = srv.Call(ctx, &rest.Opts{
			Method:  "GET",
			RootURL: url,
		})
		return shouldRetry(resp, err)
	})
	if err != nil {
		return errors.Wrapf(err, "failed to fetch %q", url)
	}
	defer httpbind.CheckClose(resp.Body, &err)
	_, err = io.Copy(w, readers.NewContextReader(ctx, resp.Body))
	return err
}
