package urlgen

import (
	"fmt"
	"go/token"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

// Endpoint-scoped failures. Group wraps them in an *EndpointError; callers
// match them with errors.Is.
var (
	ErrNoPaths             = errors.New("endpoint has no url paths")
	ErrUnknownPart         = errors.New("path parameter has no declared part type")
	ErrUnsupportedPartType = errors.New("path part type cannot be rendered in a url")
	ErrDuplicatePart       = errors.New("path parameter appears more than once")
	ErrVariantCollision    = errors.New("distinct signatures map to the same variant name")
	ErrInvalidIdentifier   = errors.New("name does not map to a Go identifier")
)

// EndpointError reports why the URL parts of one endpoint could not be
// synthesized. It does not affect other endpoints.
type EndpointError struct {
	Endpoint string
	Path     string
	Err      error
}

func (e *EndpointError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Endpoint, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Endpoint, e.Path, e.Err)
}

func (e *EndpointError) Unwrap() error { return e.Err }

// Cause lets errors.Cause from github.com/pkg/errors see through the wrapper.
func (e *EndpointError) Cause() error { return errors.Cause(e.Err) }

// Param is one typed parameter of a variant.
type Param struct {
	Name  string // as written in the template
	Field string // exported struct field
	Type  spec.Type
}

// Variant is one member of an endpoint's Parts sum type: a distinct
// parameter signature together with the first template that declared it.
type Variant struct {
	Name      string // "None" or the PascalCase concatenation of Signature
	Signature []string
	Path      spec.Path
	Tokens    []Token
	Params    []Param // in signature order
}

// Dropped records a template that was skipped because an earlier template
// of the same endpoint has the same signature.
type Dropped struct {
	Path   spec.Path
	Winner spec.Path
}

// SameShape reports whether the dropped template is textually identical to
// the one that won. When it is not, requests will go to the winner's URL.
func (d Dropped) SameShape() bool {
	return d.Path.Path == d.Winner.Path
}

// Grouping is the Parts sum type of one endpoint.
type Grouping struct {
	Endpoint string
	TypeName string
	Variants []Variant // in input order
	Dropped  []Dropped
}

// Parametric reports whether any variant carries parameters. An endpoint
// whose paths are all parameterless degenerates to the single None variant.
func (g *Grouping) Parametric() bool {
	for _, v := range g.Variants {
		if len(v.Signature) > 0 {
			return true
		}
	}
	return false
}

// None returns the parameterless variant, if the endpoint has one.
func (g *Grouping) None() (*Variant, bool) {
	for i := range g.Variants {
		if len(g.Variants[i].Signature) == 0 {
			return &g.Variants[i], true
		}
	}
	return nil, false
}

// VariantTypeName is the Go type implementing the Parts interface for v.
func (g *Grouping) VariantTypeName(v *Variant) string {
	return g.TypeName + v.Name
}

// Match returns the variant whose signature holds exactly the given part
// names, in any order.
func (g *Grouping) Match(names []string) (*Variant, bool) {
	want := sortedCopy(names)
	for i := range g.Variants {
		if strings.Join(sortedCopy(g.Variants[i].Signature), "\x00") == strings.Join(want, "\x00") {
			return &g.Variants[i], true
		}
	}
	return nil, false
}

// Group deduplicates the paths of an endpoint by parameter signature and
// names the surviving variants. The first path with a given signature wins;
// later ones are listed in Dropped.
func Group(endpoint string, paths []spec.Path) (*Grouping, error) {
	if len(paths) == 0 {
		return nil, &EndpointError{Endpoint: endpoint, Err: ErrNoPaths}
	}
	g := &Grouping{Endpoint: endpoint, TypeName: PartsTypeName(endpoint)}
	if !token.IsIdentifier(TypeName(endpoint)) {
		return nil, &EndpointError{
			Endpoint: endpoint,
			Err:      errors.Wrapf(ErrInvalidIdentifier, "endpoint name gives %q", TypeName(endpoint)),
		}
	}
	bySig := map[string]int{}
	byName := map[string]int{}

	for _, p := range paths {
		tokens := Tokenize(p.Path)
		sig := Params(tokens)
		key := signatureKey(sig)
		if i, ok := bySig[key]; ok {
			g.Dropped = append(g.Dropped, Dropped{Path: p, Winner: g.Variants[i].Path})
			continue
		}

		params, err := typedParams(p, sig)
		if err != nil {
			return nil, &EndpointError{Endpoint: endpoint, Path: p.Path, Err: err}
		}
		name := VariantName(sig)
		if j, ok := byName[name]; ok {
			return nil, &EndpointError{
				Endpoint: endpoint,
				Path:     p.Path,
				Err:      errors.Wrapf(ErrVariantCollision, "%s also produced by %s", name, g.Variants[j].Path.Path),
			}
		}

		bySig[key] = len(g.Variants)
		byName[name] = len(g.Variants)
		g.Variants = append(g.Variants, Variant{
			Name:      name,
			Signature: sig,
			Path:      p,
			Tokens:    tokens,
			Params:    params,
		})
	}
	return g, nil
}

func typedParams(p spec.Path, sig []string) ([]Param, error) {
	params := make([]Param, 0, len(sig))
	fields := map[string]string{}
	for _, name := range sig {
		t, ok := p.Parts[name]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownPart, "{%s}", name)
		}
		if _, ok := stringifyFor(t.Kind); !ok {
			return nil, errors.Wrapf(ErrUnsupportedPartType, "{%s} is %s", name, t.Kind)
		}
		field := FieldName(name)
		if !token.IsIdentifier(field) || !token.IsIdentifier(localName(name)+"Str") {
			return nil, errors.Wrapf(ErrInvalidIdentifier, "{%s} gives field %q", name, field)
		}
		if prev, ok := fields[field]; ok {
			return nil, errors.Wrapf(ErrDuplicatePart, "{%s} and {%s} both map to field %s", prev, name, field)
		}
		fields[field] = name
		params = append(params, Param{Name: name, Field: field, Type: t})
	}
	return params, nil
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
