// Package httpbind implements the common plumbing needed when
// building bindings to HTTP based APIs.
//
// It holds the global ConfigInfo which controls how the transport and
// client are built, logging at syslog style levels and helpers for
// classifying errors as worth retrying or not.  The heavy lifting is
// done by the subpackages, in particular escape for percent encoding,
// rest for making the API calls and pacer for retrying them.
package httpbind

import (
	"encoding/json"
	"io"
)

// CheckClose is a utility function used to check the return from
// Close in a defer statement.
func CheckClose(c io.Closer, err *error) {
	cerr := c.Close()
	if *err == nil {
		*err = cerr
	}
}

// UnmarshalJSONFlag unmarshals a JSON input for a flag. If the input
// is a string then it calls the Set method on the flag otherwise it
// calls the setInt function with a parsed int64.
func UnmarshalJSONFlag(in []byte, x interface{ Set(string) error }, setInt func(int64) error) error {
	// Try to parse as string first
	var s string
	err := json.Unmarshal(in, &s)
	if err == nil {
		return x.Set(s)
	}
	// If that fails parse as integer
	var i int64
	err = json.Unmarshal(in, &i)
	if err != nil {
		return err
	}
	return setInt(i)
}
