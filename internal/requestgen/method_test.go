package requestgen

import (
	"testing"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

func TestChooseMethod(t *testing.T) {
	t.Parallel()
	cases := []struct {
		endpoint string
		methods  []spec.HttpMethod
		want     MethodRule
	}{
		{"cat.health", []spec.HttpMethod{spec.GET}, MethodRule{spec.GET, spec.GET}},
		{"ping", []spec.HttpMethod{spec.HEAD}, MethodRule{spec.HEAD, spec.HEAD}},
		{"search", []spec.HttpMethod{spec.GET, spec.POST}, MethodRule{spec.GET, spec.POST}},
		{"count", []spec.HttpMethod{spec.POST, spec.GET}, MethodRule{spec.GET, spec.POST}},
		{"index", []spec.HttpMethod{spec.PUT, spec.POST}, MethodRule{spec.POST, spec.POST}},
		{"indices.put_mapping", []spec.HttpMethod{spec.PUT, spec.POST}, MethodRule{spec.PUT, spec.PUT}},
		{"bulk", []spec.HttpMethod{spec.POST, spec.PUT}, MethodRule{spec.POST, spec.POST}},
		{"ingest.putPipeline", []spec.HttpMethod{spec.POST, spec.PUT}, MethodRule{spec.PUT, spec.PUT}},
		{"compute", []spec.HttpMethod{spec.POST, spec.PUT}, MethodRule{spec.POST, spec.POST}},
		{"indices.output_settings", []spec.HttpMethod{spec.POST, spec.PUT}, MethodRule{spec.POST, spec.POST}},
		{"indices.exists", []spec.HttpMethod{spec.HEAD, spec.GET}, MethodRule{spec.HEAD, spec.HEAD}},
		{"delete_by_query", []spec.HttpMethod{spec.DELETE, spec.POST, spec.GET}, MethodRule{spec.DELETE, spec.POST}},
		{"empty", nil, MethodRule{spec.GET, spec.POST}},
	}
	for _, tc := range cases {
		if got := ChooseMethod(tc.endpoint, tc.methods); got != tc.want {
			t.Errorf("ChooseMethod(%s, %v) = %+v, want %+v", tc.endpoint, tc.methods, got, tc.want)
		}
	}
}

func TestMethodRule_Select(t *testing.T) {
	t.Parallel()
	r := MethodRule{Default: spec.GET, WithBody: spec.POST}
	if r.Fixed() {
		t.Fatalf("rule should depend on the body")
	}
	if r.Select(false) != spec.GET || r.Select(true) != spec.POST {
		t.Fatalf("Select gave %s/%s", r.Select(false), r.Select(true))
	}
}

func TestHasWord(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name string
		want bool
	}{
		{"indices.put_mapping", true},
		{"put_script", true},
		{"snapshot.putRepository", true},
		{"compute", false},
		{"nodes.throughput", false},
		{"output", false},
	}
	for _, tc := range cases {
		if got := hasWord(tc.name, "put"); got != tc.want {
			t.Errorf("hasWord(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
