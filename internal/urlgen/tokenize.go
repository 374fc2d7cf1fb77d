package urlgen

import "strings"

// TokenKind tells literal path text apart from a parameter reference.
type TokenKind int

const (
	TokenLiteral TokenKind = iota
	TokenParam
)

// Token is one segment of a path template. For TokenParam, Text is the
// parameter name without its braces.
type Token struct {
	Kind TokenKind
	Text string
}

func (t Token) String() string {
	if t.Kind == TokenParam {
		return "{" + t.Text + "}"
	}
	return t.Text
}

// Tokenize splits a path template such as "/{index}/_doc/{id}" into
// alternating literal and parameter tokens. It never fails: an unterminated
// '{' produces a parameter running to the end of the input and empty
// segments are dropped. No escaping is recognised.
func Tokenize(template string) []Token {
	var tokens []Token
	s := template
	literal := true
	for len(s) > 0 {
		if literal {
			if s[0] == '}' {
				s = s[1:]
			}
			i := strings.IndexByte(s, '{')
			if i < 0 {
				i = len(s)
			}
			if i > 0 {
				tokens = append(tokens, Token{Kind: TokenLiteral, Text: s[:i]})
			}
			s = s[i:]
		} else {
			s = s[1:] // '{'
			i := strings.IndexByte(s, '}')
			if i < 0 {
				i = len(s)
			}
			if i > 0 {
				tokens = append(tokens, Token{Kind: TokenParam, Text: s[:i]})
			}
			s = s[i:]
		}
		literal = !literal
	}
	return tokens
}

// Params returns the parameter names of tokens in template order. This is
// the signature of the template.
func Params(tokens []Token) []string {
	var names []string
	for _, t := range tokens {
		if t.Kind == TokenParam {
			names = append(names, t.Text)
		}
	}
	return names
}

// Join reassembles tokens into a template.
func Join(tokens []Token) string {
	var b strings.Builder
	for _, t := range tokens {
		b.WriteString(t.String())
	}
	return b.String()
}

func signatureKey(sig []string) string {
	return strings.Join(sig, "\x00")
}
