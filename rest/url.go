package rest

import (
	"net/url"
	"strings"

	"github.com/httpbind/httpbind/escape"
	"github.com/pkg/errors"
)

// URLJoin joins a URL and a path returning a new URL
//
// path should be URL escaped
func URLJoin(base *url.URL, path string) (*url.URL, error) {
	rel, err := url.Parse(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Error parsing %q as URL", path)
	}
	return base.ResolveReference(rel), nil
}

// QueryEncode encodes url.Values into a query string.  Each name and
// value is escaped with the URIQuery policy so "=" and "&" inside
// them come out as %3D and %26.  Keys are sorted.
func QueryEncode(v url.Values) string {
	return encodeValues(v, escape.URIQuery)
}

// URL builds a request URL out of its parts.
//
// Each part is escaped with the policy for its URI component as it is
// added, so the only structural delimiters in the output are the ones
// the builder itself writes.  The zero value is ready to use.
type URL struct {
	Scheme   string // eg "https"
	Host     string // host or host:port
	User     string // user part of the userinfo
	Password string // optional password part of the userinfo
	Fragment string // fragment without the leading "#"
	path     []string
	params   []urlParam
}

type urlParam struct {
	key   string
	value string
}

// AddPath appends path segments to the URL.  Each segment is escaped
// as a whole, so a "/" inside a segment ends up as "%2F".
func (u *URL) AddPath(segments ...string) *URL {
	u.path = append(u.path, segments...)
	return u
}

// AddParam appends a query parameter to the URL.  Parameters keep the
// order they were added in and may repeat.
func (u *URL) AddParam(key, value string) *URL {
	u.params = append(u.params, urlParam{key: key, value: value})
	return u
}

// String assembles the URL from its escaped parts
func (u *URL) String() string {
	var out strings.Builder
	if u.Scheme != "" {
		out.WriteString(u.Scheme)
		out.WriteString("://")
	}
	if u.User != "" {
		out.WriteString(escape.URIUserInfo.Escape(u.User))
		if u.Password != "" {
			out.WriteByte(':')
			out.WriteString(escape.URIUserInfo.Escape(u.Password))
		}
		out.WriteByte('@')
	}
	out.WriteString(u.Host)
	for _, segment := range u.path {
		out.WriteByte('/')
		out.WriteString(escape.URIPath.Escape(segment))
	}
	for i, p := range u.params {
		if i == 0 {
			out.WriteByte('?')
		} else {
			out.WriteByte('&')
		}
		out.WriteString(escape.URIQuery.Escape(p.key))
		out.WriteByte('=')
		out.WriteString(escape.URIQuery.Escape(p.value))
	}
	if u.Fragment != "" {
		out.WriteByte('#')
		out.WriteString(escape.URIQuery.Escape(u.Fragment))
	}
	return out.String()
}
