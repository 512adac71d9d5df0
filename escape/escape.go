// Package escape percent-encodes and decodes URI components as set out
// in RFC 3986.
//
// Each URI component - path segment, query parameter, user info - has a
// different set of characters which may appear unescaped, so escaping is
// driven by a Policy with one instance per component. All escaped output
// is ASCII with uppercase hex digits as RFC 3986 section 2.1 asks of URI
// producers.
//
// Escaping never fails. Decoding fails on malformed percent sequences -
// see the Err* variables for the possible causes.
package escape

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

const upperhex = "0123456789ABCDEF"

// Policy names the set of characters which one URI component allows
// through unescaped. ASCII letters and digits are safe under every
// Policy.
type Policy byte

// Policies for the URI components this package escapes.
const (
	// URI escapes for use anywhere in a URI. Only ".", "-", "*" and "_"
	// are safe and space becomes "+". This is the encoding produced by
	// java.net.URLEncoder and expected by HTML form handlers, with
	// uppercase hex digits.
	URI Policy = iota
	// URIPath escapes a single path segment. The pchar characters of
	// RFC 3986 stay unescaped and space becomes "%20".
	URIPath
	// URIPathWithoutReserved escapes like URIPath but additionally
	// leaves "?", "+" and "/" alone, for escaping a path whose slashes
	// are already structural.
	URIPathWithoutReserved
	// URIUserInfo escapes the userinfo component. Like URIPath except
	// "@" is escaped, since "@" terminates the component.
	URIUserInfo
	// URIQuery escapes a query parameter name or value, and is also
	// suitable for fragments. "/", "?", "@" and ":" stay unescaped but
	// "=" and "&" do not, so an escaped value can never be mistaken
	// for a parameter separator.
	URIQuery
)

// safeChars lists the characters, beyond the ASCII letters and digits,
// which each Policy leaves unescaped.
var safeChars = [...]string{
	URI:                    ".-*_",
	URIPath:                ".-~_@:!$&'()*,;=",
	URIPathWithoutReserved: ".-~_@:!$&'()*,;=?+/",
	URIUserInfo:            ".-~_:!$&'()*,;=",
	URIQuery:               ".-~_@:/?!$'()*,;",
}

// spaceAsPlus is whether each Policy encodes a space as "+" instead of
// "%20".
var spaceAsPlus = [...]bool{
	URI:                    true,
	URIPath:                false,
	URIPathWithoutReserved: false,
	URIUserInfo:            false,
	URIQuery:               false,
}

// safe[p][c] is whether byte c passes through policy p unescaped.
// Filled in at init and read-only from then on.
var safe [len(safeChars)][utf8.RuneSelf]bool

func init() {
	for p, chars := range safeChars {
		for c := 'a'; c <= 'z'; c++ {
			safe[p][c] = true
			safe[p][c-'a'+'A'] = true
		}
		for c := '0'; c <= '9'; c++ {
			safe[p][c] = true
		}
		for _, c := range chars {
			safe[p][c] = true
		}
	}
}

// policyNames maps Policy values to the names accepted by Set.
var policyNames = [...]string{
	URI:                    "uri",
	URIPath:                "uri-path",
	URIPathWithoutReserved: "uri-path-without-reserved",
	URIUserInfo:            "uri-user-info",
	URIQuery:               "uri-query",
}

// PolicyList is a list of the policy names used in the help
var PolicyList = strings.Join(policyNames[:], ",")

// String converts the Policy into text.
func (p Policy) String() string {
	if int(p) >= len(policyNames) {
		return fmt.Sprintf("Policy(%d)", byte(p))
	}
	return policyNames[p]
}

// Set converts a string into a Policy.
func (p *Policy) Set(s string) error {
	for i, name := range policyNames {
		if name == s {
			*p = Policy(i)
			return nil
		}
	}
	return errors.Errorf("unknown escape policy %q: possible values are: %s", s, strings.Join(policyNames[:], ", "))
}

// Type returns a textual type of the Policy to satisfy the pflag.Value
// interface.
func (p Policy) Type() string {
	return "EscapePolicy"
}

// Scan implements the fmt.Scanner interface.
func (p *Policy) Scan(s fmt.ScanState, ch rune) error {
	token, err := s.Token(true, nil)
	if err != nil {
		return err
	}
	return p.Set(string(token))
}

// Escape escapes s for inclusion in the URI component the Policy
// describes. Bytes outside the policy's safe set are emitted as %XY
// triplets with uppercase hex digits, one triplet per byte of the
// character's UTF-8 encoding, so the result is always ASCII. Escape is
// total: it accepts any string, including the empty one, and cannot
// fail.
//
// Escaping is not idempotent. "%" is never safe, so escaping already
// escaped text turns every "%XY" into "%25XY".
func (p Policy) Escape(s string) string {
	hexCount, spaceCount := 0, 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ':
			spaceCount++
		case c < utf8.RuneSelf && safe[p][c]:
		default:
			hexCount++
		}
	}
	if hexCount == 0 && spaceCount == 0 {
		return s
	}

	required := len(s) + 2*hexCount
	if !spaceAsPlus[p] {
		required += 2 * spaceCount
	}

	var buf [64]byte
	var t []byte
	if required <= len(buf) {
		t = buf[:required]
	} else {
		t = make([]byte, required)
	}

	j := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == ' ' && spaceAsPlus[p]:
			t[j] = '+'
			j++
		case c < utf8.RuneSelf && safe[p][c]:
			t[j] = c
			j++
		default:
			// covers ' ' too: 0x20 escapes to "%20"
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&0xF]
			j += 3
		}
	}
	return string(t)
}
