package escape

import (
	"strings"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// Decode errors. A decode either fully succeeds or returns an error
// wrapping one of these; there are no partial results.
var (
	// ErrTruncatedEscape means a "%" was found with fewer than two
	// characters after it.
	ErrTruncatedEscape = errors.New("illegal remaining length following escape sequence")
	// ErrInvalidEscapeDigits means the two characters after a "%" are
	// not hexadecimal digits.
	ErrInvalidEscapeDigits = errors.New("illegal length following escape sequence, must be in the form %xy")
	// ErrInvalidEncodedBytes means the decoded byte stream is not
	// valid UTF-8.
	ErrInvalidEncodedBytes = errors.New("escaped bytes are not valid UTF-8")
)

func ishex(c byte) bool {
	switch {
	case '0' <= c && c <= '9':
		return true
	case 'a' <= c && c <= 'f':
		return true
	case 'A' <= c && c <= 'F':
		return true
	}
	return false
}

func unhex(c byte) byte {
	switch {
	case '0' <= c && c <= '9':
		return c - '0'
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10
	}
	return 0
}

// DecodeURI percent-decodes a form-style escaped string, reversing
// Policy URI: "+" becomes a space and the bytes from all %XY triplets
// join the surrounding text as one UTF-8 stream, so a multi-byte
// character escaped across consecutive triplets is reassembled.
//
// DecodeURI must not be used on path components, where "+" is a legal
// literal character. Use DecodeURIPath for those.
func DecodeURI(s string) (string, error) {
	n := 0
	hasPlus := false
	for i := 0; i < len(s); {
		switch s[i] {
		case '%':
			if i+2 >= len(s) {
				return "", errors.Wrapf(ErrTruncatedEscape, "at position %d", i)
			}
			if !ishex(s[i+1]) || !ishex(s[i+2]) {
				return "", errors.Wrapf(ErrInvalidEscapeDigits, "at position %d", i)
			}
			n++
			i += 3
		case '+':
			hasPlus = true
			i++
		default:
			i++
		}
	}

	if n == 0 && !hasPlus {
		if !utf8.ValidString(s) {
			return "", ErrInvalidEncodedBytes
		}
		return s, nil
	}

	var sb strings.Builder
	sb.Grow(len(s) - 2*n)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%':
			sb.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		case '+':
			sb.WriteByte(' ')
		default:
			sb.WriteByte(s[i])
		}
	}
	out := sb.String()
	if !utf8.ValidString(out) {
		return "", ErrInvalidEncodedBytes
	}
	return out, nil
}

// decodePath scans path left to right copying non-"%" bytes through and
// decoding each %XY triplet to the byte it names. With joinBytes the
// decoded bytes join the output stream as they are; without it each
// byte is interpreted as a standalone single-byte UTF-8 sequence, so
// bytes >= 0x80 come out as U+FFFD.
func decodePath(path string, joinBytes bool) (string, error) {
	if !strings.Contains(path, "%") {
		return path, nil
	}
	var sb strings.Builder
	sb.Grow(len(path))
	for i := 0; i < len(path); i++ {
		c := path[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		if i+2 >= len(path) {
			return "", errors.Wrapf(ErrTruncatedEscape, "at position %d", i)
		}
		if !ishex(path[i+1]) || !ishex(path[i+2]) {
			return "", errors.Wrapf(ErrInvalidEscapeDigits, "at position %d", i)
		}
		b := unhex(path[i+1])<<4 | unhex(path[i+2])
		if b < utf8.RuneSelf || joinBytes {
			sb.WriteByte(b)
		} else {
			sb.WriteRune(utf8.RuneError)
		}
		i += 2
	}
	return sb.String(), nil
}

// DecodeURIPath percent-decodes the path component of a URI. Unlike
// DecodeURI it does not turn "+" into a space, since "+" is a legal
// literal path character.
//
// Every %XY triplet is decoded independently as a one-byte UTF-8
// sequence, so a decoded byte >= 0x80 becomes U+FFFD rather than
// joining the bytes of its neighbors. A multi-byte character escaped
// across consecutive triplets therefore does not survive a round trip
// through this decoder. Callers rely on that behavior, so it is kept;
// DecodeURIPathUTF8 reassembles the bytes instead.
//
// The empty string decodes to itself, standing in for the absent path.
func DecodeURIPath(path string) (string, error) {
	return decodePath(path, false)
}

// DecodeURIPathUTF8 percent-decodes the path component of a URI like
// DecodeURIPath, but the bytes from consecutive %XY triplets join the
// output as one stream, so escaped multi-byte characters decode to the
// text that was escaped. The output is not checked for valid UTF-8.
func DecodeURIPathUTF8(path string) (string, error) {
	return decodePath(path, true)
}
