package linkcodec

import (
	"reflect"
	"strings"
	"testing"
)

var testBase = Location{Origin: "https://tablink.local", Path: "/share/"}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "https://example.com"},
		{"https://example.com", "https://example.com"},
		{"http://example.com", "http://example.com"},
		{"ftp://example.com", "https://ftp://example.com"},
		{"", "https://"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	for _, in := range []string{"a.com", "https://a.com", "http://a.com/x?y=1", "localhost:8080"} {
		once := Normalize(in)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q then %q", in, once, twice)
		}
		if strings.HasPrefix(once, "https://https://") {
			t.Errorf("double prefix for %q: %q", in, once)
		}
	}
}

func TestEncode(t *testing.T) {
	got := Encode(testBase, []string{"example.com", "", "  ", "http://b.org/p?q=1"})
	want := "https://tablink.local/share/#%5B%22https%3A%2F%2Fexample.com%22%2C%22http%3A%2F%2Fb.org%2Fp%3Fq%3D1%22%5D"
	if got != want {
		t.Errorf("Encode =\n  %s\nwant\n  %s", got, want)
	}
}

func TestEncodeAllBlank(t *testing.T) {
	if got := Encode(testBase, []string{"", " ", "\t"}); got != "" {
		t.Errorf("Encode of blank list = %q, want empty", got)
	}
}

func TestEncodeNoHTMLEscaping(t *testing.T) {
	link := Encode(testBase, []string{"a.com/?x=<1>&y"})
	if strings.Contains(link, "u003c") {
		t.Errorf("payload contains HTML-escaped JSON: %s", link)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := [][]string{
		{"example.com"},
		{"https://a.com", "b.org", "http://c.net/path with space"},
		{"a.com/ünïcödé", "b.com/#inner", "c.com/?a=1,2"},
	}
	for _, in := range tests {
		link := Encode(testBase, in)
		loc, err := ParseLocation(link)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", link, err)
		}
		got, ok := DecodeLocation(loc)
		if !ok {
			t.Fatalf("DecodeLocation(%q) found nothing", link)
		}
		want := make([]string, len(in))
		for i, a := range in {
			want[i] = Normalize(a)
		}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("round trip = %q, want %q", got, want)
		}
	}
}

func TestDecodeQuery(t *testing.T) {
	got, ok := Decode("a.com, b.org ,http://c.net", "")
	if !ok {
		t.Fatal("expected addresses")
	}
	want := []string{"https://a.com", "https://b.org", "http://c.net"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestDecodeQueryMinimumLength(t *testing.T) {
	got, ok := Decode("a.com,https://", "")
	if !ok || !reflect.DeepEqual(got, []string{"https://a.com"}) {
		t.Errorf("got %q ok=%v, want [https://a.com]", got, ok)
	}

	got, ok = Decode("https://a", "")
	if !ok || !reflect.DeepEqual(got, []string{"https://a"}) {
		t.Errorf("9-char entry dropped: got %q ok=%v", got, ok)
	}

	if _, ok := Decode(",, ,", ""); ok {
		t.Error("expected no addresses from empty pieces")
	}
}

func TestDecodeQueryPrecedence(t *testing.T) {
	fragment := strings.TrimPrefix(Encode(testBase, []string{"fragment.com"}), testBase.Base()+"#")
	got, ok := Decode("query.com", fragment)
	if !ok || !reflect.DeepEqual(got, []string{"https://query.com"}) {
		t.Errorf("got %q, want query form to win", got)
	}
}

func TestDecodeQueryFallsBackToFragment(t *testing.T) {
	fragment := strings.TrimPrefix(Encode(testBase, []string{"fragment.com"}), testBase.Base()+"#")
	got, ok := Decode("https://", fragment)
	if !ok || !reflect.DeepEqual(got, []string{"https://fragment.com"}) {
		t.Errorf("got %q, want fragment form", got)
	}
}

func TestDecodeFragmentRejects(t *testing.T) {
	tests := map[string]string{
		"empty":          "",
		"hash only":      "#",
		"not json":       "hello",
		"bad escape":     "%E0%A4%A",
		"object":         EscapeComponent(`{"a":1}`),
		"empty array":    EscapeComponent(`[]`),
		"null":           "null",
		"number element": EscapeComponent(`["a.com",1]`),
		"blank elements": EscapeComponent(`[""," "]`),
	}
	for name, fragment := range tests {
		t.Run(name, func(t *testing.T) {
			if got, ok := Decode("", fragment); ok {
				t.Errorf("Decode(%q) = %q, want no match", fragment, got)
			}
		})
	}
}

func TestDecodeFragmentLeadingHash(t *testing.T) {
	got, ok := Decode("", "#"+EscapeComponent(`["https://a.com"]`))
	if !ok || !reflect.DeepEqual(got, []string{"https://a.com"}) {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestDecodeLocationQueryForm(t *testing.T) {
	loc, err := ParseLocation("https://tablink.local/?urls=a.com,b.org#ignored")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := DecodeLocation(loc)
	if !ok || !reflect.DeepEqual(got, []string{"https://a.com", "https://b.org"}) {
		t.Errorf("got %q ok=%v", got, ok)
	}
}

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("https://tablink.local:8080/x/y?a=1#frag%20ment")
	if err != nil {
		t.Fatal(err)
	}
	want := Location{Origin: "https://tablink.local:8080", Path: "/x/y", RawQuery: "a=1", Fragment: "frag%20ment"}
	if loc != want {
		t.Errorf("got %+v, want %+v", loc, want)
	}
	if loc.String() != "https://tablink.local:8080/x/y?a=1#frag%20ment" {
		t.Errorf("String() = %q", loc.String())
	}

	loc, err = ParseLocation("https://tablink.local")
	if err != nil {
		t.Fatal(err)
	}
	if loc.Base() != "https://tablink.local/" {
		t.Errorf("Base() = %q, want trailing slash", loc.Base())
	}

	if _, err := ParseLocation("not a link"); err == nil {
		t.Error("expected error for relative input")
	}
}

func TestEscapeComponent(t *testing.T) {
	got := EscapeComponent(`["a b",'(x)*!~._-]`)
	want := `%5B%22a%20b%22%2C'(x)*!~._-%5D`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseLocationKeepsMalformedFragment(t *testing.T) {
	for _, raw := range []string{
		"https://tablink.local/#%ZZ",
		"https://tablink.local/#%E0%A4%A",
	} {
		loc, err := ParseLocation(raw)
		if err != nil {
			t.Fatalf("ParseLocation(%q): %v", raw, err)
		}
		if loc.Origin != "https://tablink.local" || loc.Path != "/" {
			t.Errorf("%s: location = %+v", raw, loc)
		}
		if got, ok := DecodeLocation(loc); ok {
			t.Errorf("%s: decoded %q, want no match", raw, got)
		}
	}
}

func TestDecodeLocationQuerySemicolon(t *testing.T) {
	loc, err := ParseLocation("https://tablink.local/?x=1&urls=a.com;b.com&urls=ignored.com")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := DecodeLocation(loc)
	if !ok || !reflect.DeepEqual(got, []string{"https://a.com;b.com"}) {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestDecodeLocationQueryEscaped(t *testing.T) {
	loc, err := ParseLocation("https://tablink.local/?urls=a.com%2Cb.org%2Fx")
	if err != nil {
		t.Fatal(err)
	}
	got, ok := DecodeLocation(loc)
	if !ok || !reflect.DeepEqual(got, []string{"https://a.com", "https://b.org/x"}) {
		t.Errorf("got %q, %v", got, ok)
	}
}
