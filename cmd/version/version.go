// Package version provides the version command.
package version

import (
	"context"
	"fmt"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-semver/semver"
	"github.com/httpbind/httpbind"
	"github.com/httpbind/httpbind/cmd"
	"github.com/httpbind/httpbind/flags"
	"github.com/httpbind/httpbind/rest"
	"github.com/httpbind/httpbind/transport"
	"github.com/spf13/cobra"
)

var (
	check = false
)

func init() {
	cmd.Root.AddCommand(commandDefinition)
	cmdFlags := commandDefinition.Flags()
	flags.BoolVarP(cmdFlags, &check, "check", "", false, "Check for new version.")
}

var commandDefinition = &cobra.Command{
	Use:   "version",
	Short: `Show the version number.`,
	Long: `Show the httpbind version number, the go version and the
architecture.

If you supply the --check flag, then it will do an online check to
compare your version with the latest release and the latest beta.

    $ httpbind version --check
    yours:  1.0.0
    latest: 1.0.2          (released 2021-05-20)
    beta:   1.1.0-beta     (released 2021-05-17)
`,
	Run: func(command *cobra.Command, args []string) {
		cmd.CheckArgs(0, 0, command, args)
		if check {
			CheckVersion(context.Background())
		} else {
			cmd.ShowVersion()
		}
	},
}

// strip a leading v off the string
func stripV(s string) string {
	if len(s) > 0 && s[0] == 'v' {
		return s[1:]
	}
	return s
}

// GetVersion fetches url which is expected to be a version.txt style
// file, eg "httpbind v1.2.0", and returns the parsed version, its
// string form and the release date taken from the Last-Modified
// header.
func GetVersion(ctx context.Context, url string) (v *semver.Version, vs string, date time.Time, err error) {
	srv := rest.NewClient(transport.NewClient(httpbind.Config))
	resp, err := srv.Call(ctx, &rest.Opts{
		Method:  "GET",
		RootURL: url,
	})
	if err != nil {
		return v, vs, date, err
	}
	defer httpbind.CheckClose(resp.Body, &err)
	date, err = http.ParseTime(resp.Header.Get("Last-Modified"))
	if err != nil {
		return v, vs, date, err
	}
	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return v, vs, date, err
	}
	vs = strings.TrimPrefix(strings.TrimSpace(string(body)), "httpbind ")
	vs = strings.TrimRight(vs, "β")
	v, err = semver.NewVersion(stripV(vs))
	return v, vs, date, err
}

// CheckVersion prints the installed version next to the latest
// release and beta, with an upgrade link if one of them is newer.
func CheckVersion(ctx context.Context) {
	vCurrent, err := semver.NewVersion(stripV(httpbind.Version))
	if err != nil {
		httpbind.Errorf(nil, "Failed to parse version: %v", err)
	}
	const timeFormat = "2006-01-02"

	printVersion := func(what, url string) {
		v, vs, t, err := GetVersion(ctx, url+"version.txt")
		if err != nil {
			httpbind.Errorf(nil, "Failed to get httpbind %s version: %v", what, err)
			return
		}
		fmt.Printf("%-8s%-40v %20s\n",
			what+":",
			v,
			"(released "+t.Format(timeFormat)+")",
		)
		if v.Compare(*vCurrent) > 0 {
			fmt.Printf("  upgrade: %s\n", url+vs)
		}
	}
	fmt.Printf("yours:  %-13s\n", vCurrent)
	printVersion("latest", "https://downloads.httpbind.org/")
	printVersion("beta", "https://beta.httpbind.org/")
	if strings.HasSuffix(httpbind.Version, "-DEV") {
		fmt.Println("Your version is compiled from git so comparisons may be wrong.")
	}
}
