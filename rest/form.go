package rest

import (
	"io"
	"net/url"
	"sort"
	"strings"

	"github.com/httpbind/httpbind/escape"
)

// encodeValues encodes the values sorted by key, escaping each name
// and value with policy
func encodeValues(v url.Values, policy escape.Policy) string {
	if v == nil {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var out strings.Builder
	for _, k := range keys {
		vs := v[k]
		keyEscaped := policy.Escape(k)
		for _, value := range vs {
			if out.Len() > 0 {
				out.WriteByte('&')
			}
			out.WriteString(keyEscaped)
			out.WriteByte('=')
			out.WriteString(policy.Escape(value))
		}
	}
	return out.String()
}

// FormEncode encodes url.Values in "application/x-www-form-urlencoded"
// form with spaces as "+".  Keys are sorted.
func FormEncode(v url.Values) string {
	return encodeValues(v, escape.URI)
}

// FormBody returns a reader on the form encoded values for use as the
// Body of a request.  Set ContentType to
// "application/x-www-form-urlencoded" when using it.
func FormBody(v url.Values) io.Reader {
	return strings.NewReader(FormEncode(v))
}
