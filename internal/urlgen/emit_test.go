package urlgen

import (
	"strings"
	"testing"

	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"

	"github.com/opensearch-project/opensearch-apigen/internal/gentest"
	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

func render(t *testing.T, e Emitter, groupings ...*Grouping) string {
	t.Helper()
	f := jen.NewFile("client")
	for _, g := range groupings {
		if err := e.Emit(f, g); err != nil {
			t.Fatalf("emit %s: %v", g.Endpoint, err)
		}
	}
	var b strings.Builder
	if err := f.Render(&b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestEmit_Search(t *testing.T) {
	t.Parallel()
	paths := searchPaths()
	paths[1].Parts["index"] = spec.Type{Kind: spec.TypeList, Description: "Index names\n  to search."}
	g := mustGroup(t, "search", paths)

	want := `package client

import (
	"github.com/opensearch-project/opensearch-apigen/pkg/urlpart"
	"strings"
)

// SearchParts is the URL path of the search endpoint, one implementation per accepted combination of path parts.
type SearchParts interface {
	URL() string
	isSearchParts()
}

// SearchPartsNone builds /_search.
type SearchPartsNone struct{}

func (SearchPartsNone) isSearchParts() {}

func (SearchPartsNone) URL() string {
	return "/_search"
}

// SearchPartsIndex builds /{index}/_search.
type SearchPartsIndex struct {
	// Index names to search.
	Index []string
}

func (SearchPartsIndex) isSearchParts() {}

func (p SearchPartsIndex) URL() string {
	indexStr := strings.Join(p.Index, ",")
	encodedIndex := urlpart.Encode(indexStr)
	var b strings.Builder
	b.Grow(9 + len(encodedIndex))
	b.WriteByte('/')
	b.WriteString(encodedIndex)
	b.WriteString("/_search")
	return b.String()
}
`
	if d := gentest.DiffGoCode(want, render(t, Emitter{}, g)); d != "" {
		t.Fatalf("generated code differs:\n%s", d)
	}
}

func TestEmit_StaticOnly(t *testing.T) {
	t.Parallel()
	g := mustGroup(t, "cat.health", []spec.Path{{Path: "/_cat/health"}})
	got := render(t, Emitter{}, g)

	want := `package client

// CatHealthParts is the URL path of the cat.health endpoint, one implementation per accepted combination of path parts.
type CatHealthParts interface {
	URL() string
	isCatHealthParts()
}

// CatHealthPartsNone builds /_cat/health.
type CatHealthPartsNone struct{}

func (CatHealthPartsNone) isCatHealthParts() {}

func (CatHealthPartsNone) URL() string {
	return "/_cat/health"
}
`
	if d := gentest.DiffGoCode(want, got); d != "" {
		t.Fatalf("generated code differs:\n%s", d)
	}
}

func TestEmit_TypedAndDeprecated(t *testing.T) {
	t.Parallel()
	g := mustGroup(t, "bulk", []spec.Path{
		{Path: "/_bulk"},
		{
			Path:       "/{index}/{type}/_bulk",
			Parts:      map[string]spec.Type{"index": stringPart, "type": stringPart},
			Deprecated: &spec.Deprecated{Version: "7.0.0", Description: "Specifying types in urls has been deprecated"},
		},
	})
	got := render(t, Emitter{RuntimeImport: "example.com/client/internal/urlpart"}, g)

	for _, fragment := range []string{
		`"example.com/client/internal/urlpart"`,
		"//\n// Deprecated: since 7.0.0. Specifying types in urls has been deprecated\ntype BulkPartsIndexType struct {",
		"encodedIndex := urlpart.Encode(p.Index)",
		"encodedType := urlpart.Encode(p.Type)",
		"b.Grow(8 + len(encodedIndex) + len(encodedType))",
		"b.WriteString(\"/_bulk\")",
	} {
		if !gentest.Contains(got, fragment) {
			t.Errorf("generated code lacks %q:\n%s", fragment, got)
		}
	}
	if strings.Contains(got, "indexStr") {
		t.Errorf("string parts should not be stringified:\n%s", got)
	}
}

func TestEmit_NumericParts(t *testing.T) {
	t.Parallel()
	g := mustGroup(t, "test.numeric", []spec.Path{{
		Path: "/_n/{count}/{total}/{ratio}/{score}/{flag}",
		Parts: map[string]spec.Type{
			"count": {Kind: spec.TypeInteger},
			"total": {Kind: spec.TypeNumber},
			"ratio": {Kind: spec.TypeFloat},
			"score": {Kind: spec.TypeDouble},
			"flag":  {Kind: spec.TypeBoolean},
		},
	}})
	got := render(t, Emitter{}, g)

	for _, fragment := range []string{
		"Count int32",
		"Total int64",
		"Ratio float32",
		"Score float64",
		"Flag bool",
		"countStr := strconv.FormatInt(int64(p.Count), 10)",
		"totalStr := strconv.FormatInt(p.Total, 10)",
		"ratioStr := strconv.FormatFloat(float64(p.Ratio), 'g', -1, 32)",
		"scoreStr := strconv.FormatFloat(p.Score, 'g', -1, 64)",
		"flagStr := strconv.FormatBool(p.Flag)",
		"encodedCount := urlpart.Encode(countStr)",
	} {
		if !gentest.Contains(got, fragment) {
			t.Errorf("generated code lacks %q:\n%s", fragment, got)
		}
	}
}

func TestEmit_UnionRejected(t *testing.T) {
	t.Parallel()
	g := &Grouping{Endpoint: "broken", TypeName: "BrokenParts", Variants: []Variant{{
		Name:      "Slices",
		Signature: []string{"slices"},
		Path:      spec.Path{Path: "/{slices}"},
		Tokens:    Tokenize("/{slices}"),
		Params:    []Param{{Name: "slices", Field: "Slices", Type: spec.Type{Kind: spec.TypeUnion}}},
	}}}
	err := Emitter{}.Emit(jen.NewFile("client"), g)
	var ee *EndpointError
	if err == nil || !errors.As(err, &ee) {
		t.Fatalf("expected *EndpointError, got %v", err)
	}
}
