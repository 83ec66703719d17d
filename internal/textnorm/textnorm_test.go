package textnorm

import "testing"

func TestNormalizeLineEndings(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "Python\r\nDjango", "Python\nDjango"},
		{"bare cr", "Python\rDjango", "Python\nDjango"},
		{"blank lines removed", "Python\r\n\r\nDjango  \n", "Python\nDjango"},
		{"line trim", "  Python  \n\tDjango\t", "Python\nDjango"},
		{"empty", "", ""},
		{"whitespace only", "  \r\n \t \n", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeEquivalence(t *testing.T) {
	a := Normalize("Python\r\n\r\nDjango  \n")
	b := Normalize("Python\nDjango")
	if a != b {
		t.Errorf("expected identical canonical text: %q vs %q", a, b)
	}
}

func TestNormalizeUnicodeComposition(t *testing.T) {
	// "é" as a precomposed rune vs "e" + combining acute.
	precomposed := "r\u00e9sum\u00e9"
	decomposed := "re\u0301sume\u0301"
	if Normalize(precomposed) != Normalize(decomposed) {
		t.Error("NFC forms should be identical")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	in := "  Go\r\n\r\n  SQL  \r"
	once := Normalize(in)
	if twice := Normalize(once); twice != once {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
}
