package urlgen

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/opensearch-project/opensearch-apigen/pkg/urlpart"
)

// Segment is one write into the URL buffer: either literal text or the
// encoded value of a parameter.
type Segment struct {
	Literal string
	Param   *Param
}

// URLBuild is the plan for turning one variant's values into a path. The
// emitter renders it as Go; Resolve evaluates it directly.
type URLBuild struct {
	Variant    *Variant
	Static     string // the whole path when the variant has no parameters
	LiteralLen int    // total bytes of literal text
	Segments   []Segment
}

// NewURLBuild computes the build plan of v.
func NewURLBuild(v *Variant) *URLBuild {
	b := &URLBuild{Variant: v}
	byName := make(map[string]*Param, len(v.Params))
	for i := range v.Params {
		byName[v.Params[i].Name] = &v.Params[i]
	}
	for _, t := range v.Tokens {
		switch t.Kind {
		case TokenLiteral:
			b.LiteralLen += len(t.Text)
			b.Segments = append(b.Segments, Segment{Literal: t.Text})
		case TokenParam:
			b.Segments = append(b.Segments, Segment{Param: byName[t.Text]})
		}
	}
	if len(v.Params) == 0 {
		b.Static = Join(v.Tokens)
	}
	return b
}

// Parametric reports whether the path depends on values.
func (u *URLBuild) Parametric() bool {
	return len(u.Variant.Params) > 0
}

// Resolve builds the path for values given as text, keyed by part name.
// List parts take every value; other parts take exactly one. It returns the
// path together with the buffer capacity generated code reserves for it;
// both are always the same length.
func (u *URLBuild) Resolve(values map[string][]string) (string, int, error) {
	if !u.Parametric() {
		return u.Static, len(u.Static), nil
	}

	encoded := make(map[string]string, len(u.Variant.Params))
	capacity := u.LiteralLen
	for _, p := range u.Variant.Params {
		vals, ok := values[p.Name]
		if !ok {
			return "", 0, errors.Errorf("missing value for {%s}", p.Name)
		}
		s, err := formatText(p.Type.Kind, vals)
		if err != nil {
			return "", 0, errors.Wrapf(err, "{%s}", p.Name)
		}
		e := urlpart.Encode(s)
		encoded[p.Name] = e
		capacity += len(e)
	}

	var b strings.Builder
	b.Grow(capacity)
	for _, seg := range u.Segments {
		if seg.Param != nil {
			b.WriteString(encoded[seg.Param.Name])
			continue
		}
		b.WriteString(seg.Literal)
	}
	return b.String(), capacity, nil
}
