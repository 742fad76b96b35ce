package layout

import (
	"reflect"
	"testing"
)

func TestTokenize(t *testing.T) {
	cases := []struct {
		in   string
		want []Token
	}{
		{"", []Token{{Word: ""}}},
		{"one two", []Token{{Word: "one"}, {Word: "two"}}},
		{"a\nb", []Token{{Word: "a"}, {Word: "b", BreakBefore: true}}},
		{"a\n\nb", []Token{{Word: "a"}, {Word: "", BreakBefore: true}, {Word: "b", BreakBefore: true}}},
		{"x a\nb c", []Token{{Word: "x"}, {Word: "a"}, {Word: "b", BreakBefore: true}, {Word: "c"}}},
		{"a  b", []Token{{Word: "a"}, {Word: ""}, {Word: "b"}}},
		{"\nlead", []Token{{Word: ""}, {Word: "lead", BreakBefore: true}}},
	}
	for _, tc := range cases {
		if got := Tokenize(tc.in); !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("Tokenize(%q) = %#v, want %#v", tc.in, got, tc.want)
		}
	}
}
