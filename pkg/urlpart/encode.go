// Package urlpart percent-encodes values placed in URL path parts by the
// generated OpenSearch client.
package urlpart

const upperhex = "0123456789ABCDEF"

// shouldEscape reports whether c must be percent-encoded inside a path part.
// ASCII alphanumerics and `_ - . , *` pass through; the comma is kept so that
// list values joined with "," stay a single, readable segment.
func shouldEscape(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return false
	}
	switch c {
	case '_', '-', '.', ',', '*':
		return false
	}
	return true
}

// Encode percent-encodes every byte of s outside the path-part safe set.
// When nothing needs escaping s is returned as is, without allocating.
func Encode(s string) string {
	n := encodedLen(s)
	if n == len(s) {
		return s
	}

	t := make([]byte, n)
	j := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if shouldEscape(c) {
			t[j] = '%'
			t[j+1] = upperhex[c>>4]
			t[j+2] = upperhex[c&15]
			j += 3
			continue
		}
		t[j] = c
		j++
	}
	return string(t)
}

// encodedLen returns len(Encode(s)).
func encodedLen(s string) int {
	n := len(s)
	for i := 0; i < len(s); i++ {
		if shouldEscape(s[i]) {
			n += 2
		}
	}
	return n
}
