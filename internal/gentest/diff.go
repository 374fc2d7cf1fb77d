// Package gentest holds helpers for comparing generated Go source in tests.
package gentest

import (
	"go/format"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffStrings returns a unified diff of a and b, or "" when they are equal.
func DiffStrings(a, b string) string {
	d := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: "want",
		ToFile:   "got",
		Context:  5,
	}
	text, _ := difflib.GetUnifiedDiffString(d)
	return text
}

// DiffGoCode formats want and got with gofmt before diffing them, so that
// indentation and blank-line differences are ignored. Source that does not
// format is compared as is, prefixed with a marker.
func DiffGoCode(want, got string) string {
	return DiffStrings(formatGo(want), formatGo(got))
}

func formatGo(in string) string {
	out := strings.TrimSpace(in)
	b, err := format.Source([]byte(out))
	if err != nil {
		return "FAILED TO FORMAT: " + err.Error() + "\n" + out
	}
	return string(b)
}

// Contains reports whether code holds fragment, treating every run of
// whitespace as a single space so gofmt alignment does not matter.
func Contains(code, fragment string) bool {
	return strings.Contains(squash(code), squash(fragment))
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
