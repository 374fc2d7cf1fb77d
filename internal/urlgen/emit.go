package urlgen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

// DefaultRuntimeImport is the import path of the encoding helpers generated
// code calls into.
const DefaultRuntimeImport = "github.com/opensearch-project/opensearch-apigen/pkg/urlpart"

// Emitter renders Parts sum types as Go source.
type Emitter struct {
	// RuntimeImport overrides DefaultRuntimeImport, for clients that vendor
	// the helpers under their own module path.
	RuntimeImport string
}

func (e Emitter) runtimeImport() string {
	if e.RuntimeImport != "" {
		return e.RuntimeImport
	}
	return DefaultRuntimeImport
}

// Emit appends the Parts interface of g and one implementing type per
// variant to f.
//
// Generated shape, for the two paths of "search":
//
//	type SearchParts interface {
//		URL() string
//		isSearchParts()
//	}
//	type SearchPartsNone struct{}
//	type SearchPartsIndex struct{ Index []string }
//
// Each variant's URL method writes its literals and encoded values into a
// strings.Builder grown to the exact final length up front.
func (e Emitter) Emit(f *jen.File, g *Grouping) error {
	f.ImportName(e.runtimeImport(), "urlpart")
	marker := "is" + g.TypeName

	f.Commentf("%s is the URL path of the %s endpoint, one implementation per accepted combination of path parts.", g.TypeName, g.Endpoint)
	f.Type().Id(g.TypeName).Interface(
		jen.Id("URL").Params().String(),
		jen.Id(marker).Params(),
	)
	f.Line()

	for i := range g.Variants {
		if err := e.emitVariant(f, g, &g.Variants[i], marker); err != nil {
			return &EndpointError{Endpoint: g.Endpoint, Path: g.Variants[i].Path.Path, Err: err}
		}
	}
	return nil
}

func (e Emitter) emitVariant(f *jen.File, g *Grouping, v *Variant, marker string) error {
	typeName := g.VariantTypeName(v)

	fields := make([]jen.Code, 0, 2*len(v.Params))
	for _, p := range v.Params {
		typ, err := GoType(p.Type.Kind)
		if err != nil {
			return err
		}
		if doc := OneLine(p.Type.Description); doc != "" {
			fields = append(fields, jen.Comment(doc))
		}
		fields = append(fields, jen.Id(p.Field).Add(typ))
	}

	f.Commentf("%s builds %s.", typeName, v.Path.Path)
	if d := v.Path.Deprecated; d != nil {
		f.Comment("//")
		f.Comment(DeprecatedNotice(d))
	}
	f.Type().Id(typeName).Struct(fields...)
	f.Line()
	f.Func().Params(jen.Id(typeName)).Id(marker).Params().Block()
	f.Line()

	build := NewURLBuild(v)
	if !build.Parametric() {
		f.Func().Params(jen.Id(typeName)).Id("URL").Params().String().Block(
			jen.Return(jen.Lit(build.Static)),
		)
		f.Line()
		return nil
	}
	f.Func().Params(jen.Id("p").Id(typeName)).Id("URL").Params().String().Block(e.urlBody(build)...)
	f.Line()
	return nil
}

// urlBody renders the three phases of a parametric build: stringify each
// value, percent-encode it, then write literals and encoded values into a
// buffer of the exact final size.
func (e Emitter) urlBody(build *URLBuild) []jen.Code {
	var body []jen.Code
	encoded := make(map[string]string, len(build.Variant.Params))

	var size *jen.Statement
	if build.LiteralLen > 0 {
		size = jen.Lit(build.LiteralLen)
	}

	for _, p := range build.Variant.Params {
		var src jen.Code = jen.Id("p").Dot(p.Field)
		if conv := FormatValue(p.Type.Kind, jen.Id("p").Dot(p.Field)); conv != nil {
			str := localName(p.Name) + "Str"
			body = append(body, jen.Id(str).Op(":=").Add(conv))
			src = jen.Id(str)
		}
		enc := "encoded" + p.Field
		encoded[p.Name] = enc
		body = append(body, jen.Id(enc).Op(":=").Qual(e.runtimeImport(), "Encode").Call(src))

		if size == nil {
			size = jen.Len(jen.Id(enc))
		} else {
			size = size.Op("+").Len(jen.Id(enc))
		}
	}

	body = append(body,
		jen.Var().Id("b").Qual("strings", "Builder"),
		jen.Id("b").Dot("Grow").Call(size),
	)
	for _, seg := range build.Segments {
		switch {
		case seg.Param != nil:
			body = append(body, jen.Id("b").Dot("WriteString").Call(jen.Id(encoded[seg.Param.Name])))
		case len(seg.Literal) == 1:
			body = append(body, jen.Id("b").Dot("WriteByte").Call(jen.LitRune(rune(seg.Literal[0]))))
		default:
			body = append(body, jen.Id("b").Dot("WriteString").Call(jen.Lit(seg.Literal)))
		}
	}
	body = append(body, jen.Return(jen.Id("b").Dot("String").Call()))
	return body
}

// DeprecatedNotice renders d as a "Deprecated:" doc paragraph.
func DeprecatedNotice(d *spec.Deprecated) string {
	desc := OneLine(d.Description)
	switch {
	case d.Version != "" && desc != "":
		return fmt.Sprintf("Deprecated: since %s. %s", d.Version, desc)
	case d.Version != "":
		return fmt.Sprintf("Deprecated: since %s.", d.Version)
	case desc != "":
		return "Deprecated: " + desc
	default:
		return "Deprecated: this path may be removed in a future release."
	}
}

// OneLine collapses whitespace so a description fits a line comment.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
