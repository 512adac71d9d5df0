package escape

import (
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

type testCase struct {
	policy Policy
	in     string
	out    string
}

func TestEscape(t *testing.T) {
	for i, tc := range []testCase{
		{URI, "", ""},
		{URI, "abc ABC 123", "abc+ABC+123"},
		{URI, " ", "+"},
		{URI, "10% off", "10%25+off"},
		{URI, "a=b&c", "a%3Db%26c"},
		{URI, "~tilde", "%7Etilde"},
		{URI, "under_score.dash-star*", "under_score.dash-star*"},
		{URI, "\x00\x1f\x7f", "%00%1F%7F"},

		{URIPath, "", ""},
		{URIPath, " ", "%20"},
		{URIPath, "a b", "a%20b"},
		{URIPath, "a/b", "a%2Fb"},
		{URIPath, "a+b", "a%2Bb"},
		{URIPath, "@twitter:8080", "@twitter:8080"},
		{URIPath, "!$&'()*,;=", "!$&'()*,;="},
		{URIPath, "100%", "100%25"},
		{URIPath, "~user", "~user"},

		{URIPathWithoutReserved, "a/b?c+d", "a/b?c+d"},
		{URIPathWithoutReserved, "a b/c", "a%20b/c"},
		{URIPathWithoutReserved, "100%", "100%25"},

		{URIUserInfo, "user:pass", "user:pass"},
		{URIUserInfo, "a@b:c d", "a%40b:c%20d"},
		{URIUserInfo, "n~me", "n~me"},

		{URIQuery, "a=b&c", "a%3Db%26c"},
		{URIQuery, "a/b?c", "a/b?c"},
		{URIQuery, "k: v", "k:%20v"},
		{URIQuery, "1+1=2", "1%2B1%3D2"},
		{URIQuery, "@here", "@here"},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := tc.policy.Escape(tc.in)
			if got != tc.out {
				t.Errorf("%v.Escape(%q) want %q got %q", tc.policy, tc.in, tc.out, got)
			}
		})
	}
}

func TestEscapeUnicode(t *testing.T) {
	for i, tc := range []testCase{
		{URI, "é", "%C3%A9"},
		{URI, "srpski jezik: српски језик", "srpski+jezik%3A+%D1%81%D1%80%D0%BF%D1%81%D0%BA%D0%B8+%D1%98%D0%B5%D0%B7%D0%B8%D0%BA"},
		{URIPath, "漢字", "%E6%BC%A2%E5%AD%97"},
		// G clef needs a surrogate pair in UTF-16, four bytes in UTF-8
		{URIPath, "𝄞", "%F0%9D%84%9E"},
		{URIQuery, "€=¥", "%E2%82%AC%3D%C2%A5"},
	} {
		t.Run(strconv.Itoa(i), func(t *testing.T) {
			got := tc.policy.Escape(tc.in)
			if got != tc.out {
				t.Errorf("%v.Escape(%q) want %q got %q", tc.policy, tc.in, tc.out, got)
			}
		})
	}
}

func TestEscapeSafeUnchanged(t *testing.T) {
	const alnum = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
	for _, in := range []string{
		alnum,
		".-*_",
		"jenny8675309",
		"A.b-C_d*E",
		strings.Repeat(alnum+".-*_", 7),
	} {
		if got := URI.Escape(in); got != in {
			t.Errorf("URI.Escape(%q) changed safe input: got %q", in, got)
		}
	}
}

func TestEscapeNotIdempotent(t *testing.T) {
	in := "100% sure"
	once := URI.Escape(in)
	twice := URI.Escape(once)
	if once != "100%25+sure" {
		t.Errorf("first pass: want %q got %q", "100%25+sure", once)
	}
	if twice != "100%2525%2Bsure" {
		t.Errorf("second pass: want %q got %q", "100%2525%2Bsure", twice)
	}
	if once == twice {
		t.Errorf("escaping should not be idempotent for %q", in)
	}
}

// TestEscapeImage checks that whatever goes in, the output only ever
// contains safe characters, "+" and uppercase %XY triplets.
func TestEscapeImage(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"white space",
		"per%cent",
		"héllo wörld",
		"\x00\x01\xfe\xff",
		"𝄞 clef + 漢字 / ?a=b&c#d",
		strings.Repeat("ナ%", 40),
	}
	for p := range safeChars {
		policy := Policy(p)
		for _, in := range inputs {
			out := policy.Escape(in)
			for i := 0; i < len(out); {
				c := out[i]
				switch {
				case c >= utf8.RuneSelf:
					t.Fatalf("%v.Escape(%q): non-ASCII byte %#x in %q", policy, in, c, out)
				case c == '%':
					if i+2 >= len(out) {
						t.Fatalf("%v.Escape(%q): truncated triplet in %q", policy, in, out)
					}
					if !strings.ContainsRune(upperhex, rune(out[i+1])) || !strings.ContainsRune(upperhex, rune(out[i+2])) {
						t.Fatalf("%v.Escape(%q): bad hex digits in %q", policy, in, out)
					}
					i += 3
				case c == '+':
					if !safe[p]['+'] && !spaceAsPlus[p] {
						t.Fatalf("%v.Escape(%q): unexpected + in %q", policy, in, out)
					}
					i++
				default:
					if !safe[p][c] {
						t.Fatalf("%v.Escape(%q): unsafe byte %q in %q", policy, in, c, out)
					}
					i++
				}
			}
		}
	}
}

func TestPolicySetString(t *testing.T) {
	for want, name := range policyNames {
		var p Policy
		if err := p.Set(name); err != nil {
			t.Errorf("Set(%q): %v", name, err)
		}
		if p != Policy(want) {
			t.Errorf("Set(%q) want %v got %v", name, Policy(want), p)
		}
		if p.String() != name {
			t.Errorf("String() want %q got %q", name, p.String())
		}
	}
	var p Policy
	if err := p.Set("potato"); err == nil {
		t.Error("Set should reject unknown policy names")
	}
	if got := Policy(42).String(); got != "Policy(42)" {
		t.Errorf("String() of out of range policy: got %q", got)
	}
}

// Policies are shared without synchronization, so escaping and decoding
// the same values from many goroutines must agree with the serial
// answer.
func TestEscapeConcurrent(t *testing.T) {
	inputs := []string{
		"plain",
		"with space",
		"réservé/écrit",
		strings.Repeat("a&b=c ", 100),
	}
	want := make([]string, len(inputs))
	for i, in := range inputs {
		want[i] = URIQuery.Escape(in)
	}

	var g errgroup.Group
	for n := 0; n < 8; n++ {
		g.Go(func() error {
			for i := 0; i < 500; i++ {
				for k, in := range inputs {
					if got := URIQuery.Escape(in); got != want[k] {
						return errors.Errorf("Escape(%q) want %q got %q", in, want[k], got)
					}
					dec, err := DecodeURI(URI.Escape(in))
					if err != nil {
						return err
					}
					if dec != in {
						return errors.Errorf("round trip of %q got %q", in, dec)
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

var benchCases = []testCase{
	{URIPath, "no escaping at all", "no%20escaping%20at%20all"},
	{URIPath, "plain-segment", "plain-segment"},
	{URIPath, "mixed €10/kg", "mixed%20%E2%82%AC10%2Fkg"},
	{URIQuery, "q=price>10&sort=asc", "q%3Dprice%3E10%26sort%3Dasc"},
}

func BenchmarkEscape(b *testing.B) {
	for n := 0; n < b.N; n++ {
		for _, tc := range benchCases {
			got := tc.policy.Escape(tc.in)
			if got != tc.out {
				b.Errorf("%v.Escape(%q) want %q got %q", tc.policy, tc.in, tc.out, got)
			}
		}
	}
}

func BenchmarkDecodeURIPath(b *testing.B) {
	for n := 0; n < b.N; n++ {
		for _, tc := range benchCases {
			got, err := DecodeURIPathUTF8(tc.out)
			if err != nil {
				b.Fatal(err)
			}
			if got != tc.in {
				b.Errorf("DecodeURIPathUTF8(%q) want %q got %q", tc.out, tc.in, got)
			}
		}
	}
}
