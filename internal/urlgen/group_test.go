package urlgen

import (
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

var (
	listPart   = spec.Type{Kind: spec.TypeList}
	stringPart = spec.Type{Kind: spec.TypeString}
)

func searchPaths() []spec.Path {
	return []spec.Path{
		{Path: "/_search", Methods: []spec.HttpMethod{spec.GET, spec.POST}},
		{Path: "/{index}/_search", Methods: []spec.HttpMethod{spec.GET, spec.POST}, Parts: map[string]spec.Type{"index": listPart}},
	}
}

func variantNames(g *Grouping) []string {
	var names []string
	for _, v := range g.Variants {
		names = append(names, v.Name)
	}
	return names
}

func TestGroup_Search(t *testing.T) {
	t.Parallel()
	g, err := Group("search", searchPaths())
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if g.TypeName != "SearchParts" {
		t.Fatalf("TypeName = %q", g.TypeName)
	}
	if got := variantNames(g); !reflect.DeepEqual(got, []string{"None", "Index"}) {
		t.Fatalf("variants = %v", got)
	}
	if !g.Parametric() {
		t.Fatalf("expected parametric grouping")
	}
	if v, ok := g.None(); !ok || v.Path.Path != "/_search" {
		t.Fatalf("None() = %+v, %v", v, ok)
	}
	if got := g.VariantTypeName(&g.Variants[1]); got != "SearchPartsIndex" {
		t.Fatalf("VariantTypeName = %q", got)
	}
}

func TestGroup_NamesFollowSignatureOrder(t *testing.T) {
	t.Parallel()
	g, err := Group("indices.get_field_mapping", []spec.Path{
		{Path: "/_mapping/field/{fields}", Parts: map[string]spec.Type{"fields": listPart}},
		{Path: "/{index}/_mapping/field/{fields}", Parts: map[string]spec.Type{"index": listPart, "fields": listPart}},
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if got := variantNames(g); !reflect.DeepEqual(got, []string{"Fields", "IndexFields"}) {
		t.Fatalf("variants = %v", got)
	}
	if g.TypeName != "IndicesGetFieldMappingParts" {
		t.Fatalf("TypeName = %q", g.TypeName)
	}
	if _, ok := g.None(); ok {
		t.Fatalf("no parameterless template, expected no None variant")
	}
}

func TestGroup_AllParameterless(t *testing.T) {
	t.Parallel()
	g, err := Group("cat.health", []spec.Path{{Path: "/_cat/health"}})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if got := variantNames(g); !reflect.DeepEqual(got, []string{"None"}) {
		t.Fatalf("variants = %v", got)
	}
	if g.Parametric() {
		t.Fatalf("expected non-parametric grouping")
	}
}

func TestGroup_FirstSeenWins(t *testing.T) {
	t.Parallel()
	doc := map[string]spec.Type{"index": stringPart, "id": stringPart}
	g, err := Group("get", []spec.Path{
		{Path: "/{index}/_doc/{id}", Parts: doc},
		{Path: "/{index}/_doc/{id}", Parts: doc},
		{Path: "/{index}/_source_doc/{id}", Parts: doc},
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if len(g.Variants) != 1 || g.Variants[0].Path.Path != "/{index}/_doc/{id}" {
		t.Fatalf("variants = %+v", g.Variants)
	}
	if len(g.Dropped) != 2 {
		t.Fatalf("expected two dropped templates, got %+v", g.Dropped)
	}
	if !g.Dropped[0].SameShape() {
		t.Fatalf("identical template should have the same shape")
	}
	if g.Dropped[1].SameShape() {
		t.Fatalf("different literal skeleton reported as same shape")
	}
}

func TestGroup_Idempotent(t *testing.T) {
	t.Parallel()
	once, err := Group("search", searchPaths())
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	twice, err := Group("search", append(searchPaths(), searchPaths()...))
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	if !reflect.DeepEqual(once.Variants, twice.Variants) {
		t.Fatalf("duplicating the input changed the variants:\n%+v\n%+v", once.Variants, twice.Variants)
	}
}

func TestGroup_Deterministic(t *testing.T) {
	t.Parallel()
	paths := []spec.Path{
		{Path: "/_snapshot/{repository}/{snapshot}", Parts: map[string]spec.Type{"repository": stringPart, "snapshot": listPart}},
		{Path: "/_snapshot/{repository}", Parts: map[string]spec.Type{"repository": stringPart}},
		{Path: "/_snapshot"},
	}
	first, err := Group("snapshot.get", paths)
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := Group("snapshot.get", paths)
		if err != nil {
			t.Fatalf("group: %v", err)
		}
		if !reflect.DeepEqual(variantNames(first), variantNames(again)) {
			t.Fatalf("names changed between runs: %v vs %v", variantNames(first), variantNames(again))
		}
	}
	if got := variantNames(first); !reflect.DeepEqual(got, []string{"RepositorySnapshot", "Repository", "None"}) {
		t.Fatalf("variants = %v", got)
	}
}

func TestGroup_Errors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		paths []spec.Path
		want  error
	}{
		{"no paths", nil, ErrNoPaths},
		{
			"unknown part",
			[]spec.Path{{Path: "/{index}/_search"}},
			ErrUnknownPart,
		},
		{
			"union part",
			[]spec.Path{{Path: "/_tasks/{slices}", Parts: map[string]spec.Type{"slices": {Kind: spec.TypeUnion, Union: []spec.TypeKind{spec.TypeNumber, spec.TypeString}}}}},
			ErrUnsupportedPartType,
		},
		{
			"variant collision",
			[]spec.Path{
				{Path: "/{index_type}/_x", Parts: map[string]spec.Type{"index_type": stringPart}},
				{Path: "/{index}/{type}/_x", Parts: map[string]spec.Type{"index": stringPart, "type": stringPart}},
			},
			ErrVariantCollision,
		},
		{
			"part named none",
			[]spec.Path{
				{Path: "/_x"},
				{Path: "/_x/{none}", Parts: map[string]spec.Type{"none": stringPart}},
			},
			ErrVariantCollision,
		},
		{
			"part starting with a digit",
			[]spec.Path{{Path: "/_cat/shards/{2nd}", Parts: map[string]spec.Type{"2nd": stringPart}}},
			ErrInvalidIdentifier,
		},
		{
			"part with a dot",
			[]spec.Path{{Path: "/_x/{a+b}", Parts: map[string]spec.Type{"a+b": stringPart}}},
			ErrInvalidIdentifier,
		},
		{
			"repeated part",
			[]spec.Path{{Path: "/{index}/_x/{index}", Parts: map[string]spec.Type{"index": stringPart}}},
			ErrDuplicatePart,
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := Group("broken", tc.paths)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			var ee *EndpointError
			if !errors.As(err, &ee) || ee.Endpoint != "broken" {
				t.Fatalf("expected *EndpointError for broken, got %T", err)
			}
			if errors.Cause(err) != tc.want {
				t.Fatalf("Cause = %v, want %v", errors.Cause(err), tc.want)
			}
		})
	}
}

func TestGroup_InvalidEndpointName(t *testing.T) {
	t.Parallel()
	_, err := Group("2fa.verify", []spec.Path{{Path: "/_2fa/verify"}})
	if !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("err = %v, want ErrInvalidIdentifier", err)
	}
	var ee *EndpointError
	if !errors.As(err, &ee) || ee.Endpoint != "2fa.verify" {
		t.Fatalf("expected *EndpointError for 2fa.verify, got %T", err)
	}
}

func TestGrouping_Match(t *testing.T) {
	t.Parallel()
	g, err := Group("index", []spec.Path{
		{Path: "/{index}/_doc/{id}", Parts: map[string]spec.Type{"index": stringPart, "id": stringPart}},
		{Path: "/{index}/_doc", Parts: map[string]spec.Type{"index": stringPart}},
	})
	if err != nil {
		t.Fatalf("group: %v", err)
	}
	v, ok := g.Match([]string{"id", "index"})
	if !ok || v.Name != "IndexId" {
		t.Fatalf("Match(id, index) = %+v, %v", v, ok)
	}
	if _, ok := g.Match(nil); ok {
		t.Fatalf("no parameterless template, Match(nil) should fail")
	}
}
