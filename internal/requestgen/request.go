// Package requestgen emits the request builder of each endpoint: a struct
// holding the URL parts, query parameters, headers and body, and the methods
// turning it into an *http.Request.
package requestgen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
	"github.com/opensearch-project/opensearch-apigen/internal/urlgen"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeNDJSON = "application/x-ndjson"
)

// reserved names are taken by the fixed fields and methods of every request.
var reserved = map[string]bool{
	"Parts":  true,
	"Body":   true,
	"Header": true,
	"Method": true,
	"Path":   true,
	"Query":  true,
	"Build":  true,
}

// QueryField is a query string parameter mapped onto a request field.
type QueryField struct {
	Name  string // as sent on the wire
	Field string
	Type  spec.Type
}

// kind is the type the field is generated with. Unions are carried as text.
func (q QueryField) kind() spec.TypeKind {
	if q.Type.Kind == spec.TypeUnion {
		return spec.TypeString
	}
	return q.Type.Kind
}

func (q QueryField) list() bool { return q.kind() == spec.TypeList }

// QueryFields orders params by name and assigns each a unique exported field
// name. A name clashing with an earlier field, or with one of the fixed
// request members, gets a "Param" suffix.
func QueryFields(params map[string]spec.Type) []QueryField {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)

	used := map[string]bool{}
	for k := range reserved {
		used[k] = true
	}
	fields := make([]QueryField, 0, len(names))
	for _, name := range names {
		base := urlgen.FieldName(name)
		if base == "" {
			base = "Param"
		}
		field := base
		for i := 1; used[field]; i++ {
			field = base + "Param"
			if i > 1 {
				field = fmt.Sprintf("%sParam%d", base, i)
			}
		}
		used[field] = true
		fields = append(fields, QueryField{Name: name, Field: field, Type: params[name]})
	}
	return fields
}

// RequestTypeName is the name of the request type generated for endpoint.
func RequestTypeName(endpoint string) string {
	return urlgen.TypeName(endpoint) + "Request"
}

// Emit appends the request type of ep to f. params are every query
// parameter the endpoint accepts, common ones included; g is the endpoint's
// grouping, whose Parts type must be emitted to the same package.
func Emit(f *jen.File, ep *spec.Endpoint, params map[string]spec.Type, g *urlgen.Grouping) error {
	name := RequestTypeName(ep.Name)
	query := QueryFields(params)

	emitDoc(f, name, ep)
	fields, err := structFields(ep, query, g)
	if err != nil {
		return &urlgen.EndpointError{Endpoint: ep.Name, Err: err}
	}
	f.Type().Id(name).Struct(fields...)
	f.Line()

	recv := func() *jen.Statement { return jen.Id("r").Op("*").Id(name) }

	f.Comment("Method returns the HTTP method the request is sent with.")
	f.Func().Params(recv()).Id("Method").Params().String().Block(methodBody(ep)...)
	f.Line()

	f.Comment("Path returns the URL path selected by the request's parts.")
	f.Func().Params(recv()).Id("Path").Params().String().Block(pathBody(g)...)
	f.Line()

	f.Comment("Query returns the query string parameters that are set.")
	f.Func().Params(recv()).Id("Query").Params().Qual("net/url", "Values").Block(queryBody(query)...)
	f.Line()

	f.Comment("Build returns an *http.Request for the endpoint, relative to baseURL.")
	f.Func().Params(recv()).Id("Build").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("baseURL").String(),
	).Params(jen.Op("*").Qual("net/http", "Request"), jen.Error()).Block(buildBody(ep, g)...)
	f.Line()
	return nil
}

func emitDoc(f *jen.File, name string, ep *spec.Endpoint) {
	f.Commentf("%s is a request to the %s endpoint.", name, ep.Name)
	if desc := urlgen.OneLine(ep.Documentation.Description); desc != "" {
		f.Comment("//")
		f.Comment(desc)
	}
	if ep.Documentation.URL != "" {
		f.Comment("//")
		f.Commentf("See %s", ep.Documentation.URL)
	}
	if ep.Stability == spec.Beta || ep.Stability == spec.Experimental {
		f.Comment("//")
		f.Commentf("This endpoint is %s and may change in a future release.", ep.Stability)
	}
	if ep.Deprecated != nil {
		f.Comment("//")
		f.Comment(urlgen.DeprecatedNotice(ep.Deprecated))
	}
}

func structFields(ep *spec.Endpoint, query []QueryField, g *urlgen.Grouping) ([]jen.Code, error) {
	var fields []jen.Code
	if g.Parametric() {
		if none, ok := g.None(); ok {
			fields = append(fields, jen.Commentf("Parts selects the URL path; nil means %s.", g.VariantTypeName(none)))
		} else {
			fields = append(fields, jen.Comment("Parts selects the URL path and must be set."))
		}
		fields = append(fields, jen.Id("Parts").Id(g.TypeName))
	}
	if ep.Body != nil {
		if desc := urlgen.OneLine(ep.Body.Description); desc != "" {
			fields = append(fields, jen.Comment(desc))
		}
		fields = append(fields, jen.Id("Body").Qual("io", "Reader"))
	}
	fields = append(fields, jen.Id("Header").Qual("net/http", "Header"))

	if len(query) > 0 {
		fields = append(fields, jen.Line())
	}
	for _, q := range query {
		typ, err := urlgen.GoType(q.kind())
		if err != nil {
			return nil, err
		}
		if desc := urlgen.OneLine(q.Type.Description); desc != "" {
			fields = append(fields, jen.Comment(desc))
		}
		if len(q.Type.Options) > 0 {
			fields = append(fields, jen.Commentf("Accepted values: %s.", strings.Join(q.Type.Options, ", ")))
		}
		if q.list() {
			fields = append(fields, jen.Id(q.Field).Add(typ))
		} else {
			fields = append(fields, jen.Id(q.Field).Op("*").Add(typ))
		}
	}
	return fields, nil
}

func methodBody(ep *spec.Endpoint) []jen.Code {
	rule := ChooseMethod(ep.Name, ep.Methods())
	if rule.Fixed() || ep.Body == nil {
		return []jen.Code{jen.Return(methodConst(rule.Select(false)))}
	}
	return []jen.Code{
		jen.If(jen.Id("r").Dot("Body").Op("!=").Nil()).Block(
			jen.Return(methodConst(rule.Select(true))),
		),
		jen.Return(methodConst(rule.Select(false))),
	}
}

func pathBody(g *urlgen.Grouping) []jen.Code {
	if !g.Parametric() {
		return []jen.Code{jen.Return(jen.Id(g.VariantTypeName(&g.Variants[0])).Values().Dot("URL").Call())}
	}
	fallback := jen.Return(jen.Lit(""))
	if none, ok := g.None(); ok {
		fallback = jen.Return(jen.Id(g.VariantTypeName(none)).Values().Dot("URL").Call())
	}
	return []jen.Code{
		jen.If(jen.Id("r").Dot("Parts").Op("==").Nil()).Block(fallback),
		jen.Return(jen.Id("r").Dot("Parts").Dot("URL").Call()),
	}
}

func queryBody(query []QueryField) []jen.Code {
	body := []jen.Code{jen.Id("q").Op(":=").Qual("net/url", "Values").Values()}
	for _, q := range query {
		var cond, value jen.Code
		if q.list() {
			cond = jen.Len(jen.Id("r").Dot(q.Field)).Op(">").Lit(0)
			value = urlgen.FormatValue(q.kind(), jen.Id("r").Dot(q.Field))
		} else {
			cond = jen.Id("r").Dot(q.Field).Op("!=").Nil()
			value = urlgen.FormatValue(q.kind(), jen.Op("*").Id("r").Dot(q.Field))
			if value == nil {
				value = jen.Op("*").Id("r").Dot(q.Field)
			}
		}
		body = append(body, jen.If(cond).Block(
			jen.Id("q").Dot("Set").Call(jen.Lit(q.Name), value),
		))
	}
	return append(body, jen.Return(jen.Id("q")))
}

func buildBody(ep *spec.Endpoint, g *urlgen.Grouping) []jen.Code {
	var body []jen.Code
	if _, hasNone := g.None(); g.Parametric() && !hasNone {
		body = append(body, jen.If(jen.Id("r").Dot("Parts").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("errors", "New").Call(jen.Lit(ep.Name+": Parts must be set"))),
		))
	}
	if ep.Body != nil && ep.Body.Required {
		body = append(body, jen.If(jen.Id("r").Dot("Body").Op("==").Nil()).Block(
			jen.Return(jen.Nil(), jen.Qual("errors", "New").Call(jen.Lit(ep.Name+": Body must be set"))),
		))
	}

	body = append(body,
		jen.Id("target").Op(":=").Qual("strings", "TrimSuffix").Call(jen.Id("baseURL"), jen.Lit("/")).Op("+").Id("r").Dot("Path").Call(),
		jen.If(jen.Id("q").Op(":=").Id("r").Dot("Query").Call(), jen.Len(jen.Id("q")).Op(">").Lit(0)).Block(
			jen.Id("target").Op("+=").Lit("?").Op("+").Id("q").Dot("Encode").Call(),
		),
	)

	var reqBody jen.Code = jen.Nil()
	if ep.Body != nil {
		reqBody = jen.Id("r").Dot("Body")
	}
	body = append(body,
		jen.List(jen.Id("req"), jen.Err()).Op(":=").Qual("net/http", "NewRequestWithContext").Call(
			jen.Id("ctx"), jen.Id("r").Dot("Method").Call(), jen.Id("target"), reqBody,
		),
		jen.If(jen.Err().Op("!=").Nil()).Block(jen.Return(jen.Nil(), jen.Err())),
	)
	if ep.Body != nil {
		contentType := contentTypeJSON
		if ep.Body.Serialize == "bulk" {
			contentType = contentTypeNDJSON
		}
		body = append(body, jen.If(jen.Id("r").Dot("Body").Op("!=").Nil()).Block(
			jen.Id("req").Dot("Header").Dot("Set").Call(jen.Lit("Content-Type"), jen.Lit(contentType)),
		))
	}
	body = append(body,
		jen.For(jen.List(jen.Id("k"), jen.Id("v")).Op(":=").Range().Id("r").Dot("Header")).Block(
			jen.Id("req").Dot("Header").Index(jen.Id("k")).Op("=").Id("v"),
		),
		jen.Return(jen.Id("req"), jen.Nil()),
	)
	return body
}

func methodConst(m spec.HttpMethod) jen.Code {
	switch m {
	case spec.GET:
		return jen.Qual("net/http", "MethodGet")
	case spec.POST:
		return jen.Qual("net/http", "MethodPost")
	case spec.PUT:
		return jen.Qual("net/http", "MethodPut")
	case spec.DELETE:
		return jen.Qual("net/http", "MethodDelete")
	case spec.HEAD:
		return jen.Qual("net/http", "MethodHead")
	case spec.PATCH:
		return jen.Qual("net/http", "MethodPatch")
	}
	return jen.Lit(string(m))
}

