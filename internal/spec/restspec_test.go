package spec

import "testing"

func TestParseEndpointFile_Defaults(t *testing.T) {
	t.Parallel()
	raw := `{
  "indices.exists": {
    "documentation": "https://opensearch.org/docs/latest/api-reference/index-apis/exists/",
    "stability": "BETA",
    "url": {
      "paths": [
        {"path": "{index}", "methods": ["head"], "parts": {"index": {"type": "list"}}}
      ]
    },
    "params": {
      "local": {"type": "boolean", "default": false},
      "wait_for_active_shards": {"type": "enum", "options": [1, "all"]}
    }
  }
}`
	eps, err := parseEndpointFile([]byte(raw))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(eps) != 1 {
		t.Fatalf("expected one endpoint, got %d", len(eps))
	}
	ep := eps[0]
	if ep.Documentation.URL == "" {
		t.Fatalf("expected bare documentation url to be accepted")
	}
	if ep.Stability != Beta {
		t.Fatalf("stability = %q, want beta", ep.Stability)
	}
	if p := ep.Paths[0]; p.Path != "/{index}" || p.Methods[0] != HEAD {
		t.Fatalf("unexpected path %+v", p)
	}
	if opts := ep.Params["wait_for_active_shards"].Options; len(opts) != 2 || opts[0] != "1" || opts[1] != "all" {
		t.Fatalf("options = %v", opts)
	}
	if ep.Body != nil {
		t.Fatalf("expected no body")
	}
}

func TestQueryParams_EndpointWins(t *testing.T) {
	t.Parallel()
	api := &API{Common: map[string]Type{
		"pretty": {Kind: TypeBoolean},
		"source": {Kind: TypeString},
	}}
	ep := &Endpoint{Name: "search", Params: map[string]Type{"source": {Kind: TypeText}}}
	got := api.QueryParams(ep)
	if len(got) != 2 || got["source"].Kind != TypeText || got["pretty"].Kind != TypeBoolean {
		t.Fatalf("merged params = %+v", got)
	}
}

func TestEndpointMethods(t *testing.T) {
	t.Parallel()
	ep := Endpoint{Paths: []Path{
		{Path: "/_bulk", Methods: []HttpMethod{POST, PUT}},
		{Path: "/{index}/_bulk", Methods: []HttpMethod{PUT, POST}},
	}}
	got := ep.Methods()
	if len(got) != 2 || got[0] != POST || got[1] != PUT {
		t.Fatalf("methods = %v", got)
	}
}
