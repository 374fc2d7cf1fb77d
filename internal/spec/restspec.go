package spec

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Decoding of the legacy REST API spec format: one JSON file per endpoint,
// keyed by the endpoint name, plus a _common.json file holding the query
// parameters shared by all endpoints. JSON is decoded through yaml.v3, which
// accepts it as a YAML subset.

const commonFile = "_common.json"

type rawDocumentation struct {
	URL         string `yaml:"url"`
	Description string `yaml:"description"`
}

// UnmarshalYAML accepts both the object form and the older bare URL string.
func (d *rawDocumentation) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		d.URL = value.Value
		return nil
	}
	type plain rawDocumentation
	return value.Decode((*plain)(d))
}

type rawDeprecated struct {
	Version     string `yaml:"version"`
	Description string `yaml:"description"`
}

type rawType struct {
	Type        string         `yaml:"type"`
	Description string         `yaml:"description"`
	Options     []any          `yaml:"options"`
	Default     any            `yaml:"default"`
	Deprecated  *rawDeprecated `yaml:"deprecated"`
}

type rawPath struct {
	Path       string             `yaml:"path"`
	Methods    []string           `yaml:"methods"`
	Parts      map[string]rawType `yaml:"parts"`
	Deprecated *rawDeprecated     `yaml:"deprecated"`
}

type rawBody struct {
	Description string `yaml:"description"`
	Required    bool   `yaml:"required"`
	Serialize   string `yaml:"serialize"`
}

type rawEndpoint struct {
	Documentation rawDocumentation `yaml:"documentation"`
	Stability     string           `yaml:"stability"`
	Deprecated    *rawDeprecated   `yaml:"deprecated"`
	URL           struct {
		Paths []rawPath `yaml:"paths"`
	} `yaml:"url"`
	Params map[string]rawType `yaml:"params"`
	Body   *rawBody           `yaml:"body"`
}

type rawCommon struct {
	Documentation rawDocumentation   `yaml:"documentation"`
	Params        map[string]rawType `yaml:"params"`
}

// parseEndpointFile decodes one endpoint file. A file normally holds a single
// endpoint but any number is accepted; they are returned sorted by name.
func parseEndpointFile(data []byte) ([]Endpoint, error) {
	var raw map[string]rawEndpoint
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	endpoints := make([]Endpoint, 0, len(names))
	for _, name := range names {
		re := raw[name]
		ep := Endpoint{
			Name:          name,
			Documentation: Documentation{URL: re.Documentation.URL, Description: strings.TrimSpace(re.Documentation.Description)},
			Stability:     toStability(re.Stability),
			Deprecated:    toDeprecated(re.Deprecated),
			Params:        toTypes(re.Params),
		}
		if re.Body != nil {
			ep.Body = &Body{Description: re.Body.Description, Required: re.Body.Required, Serialize: re.Body.Serialize}
		}
		for _, rp := range re.URL.Paths {
			ep.Paths = append(ep.Paths, Path{
				Path:       rootPath(rp.Path),
				Methods:    toMethods(rp.Methods),
				Parts:      toTypes(rp.Parts),
				Deprecated: toDeprecated(rp.Deprecated),
			})
		}
		endpoints = append(endpoints, ep)
	}
	return endpoints, nil
}

func parseCommonFile(data []byte) (map[string]Type, error) {
	var raw rawCommon
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	return toTypes(raw.Params), nil
}

// rootPath ensures every path starts with a '/'.
func rootPath(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

func toMethods(in []string) []HttpMethod {
	out := make([]HttpMethod, 0, len(in))
	for _, m := range in {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			out = append(out, HttpMethod(m))
		}
	}
	return out
}

func toStability(s string) Stability {
	switch Stability(strings.ToLower(strings.TrimSpace(s))) {
	case Beta:
		return Beta
	case Experimental:
		return Experimental
	default:
		return Stable
	}
}

func toDeprecated(d *rawDeprecated) *Deprecated {
	if d == nil {
		return nil
	}
	return &Deprecated{Version: d.Version, Description: d.Description}
}

func toTypes(in map[string]rawType) map[string]Type {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]Type, len(in))
	for name, rt := range in {
		kind, members := ParseTypeKind(rt.Type)
		t := Type{
			Kind:        kind,
			Union:       members,
			Description: rt.Description,
			Default:     rt.Default,
			Deprecated:  toDeprecated(rt.Deprecated),
		}
		for _, o := range rt.Options {
			t.Options = append(t.Options, fmt.Sprint(o))
		}
		out[name] = t
	}
	return out
}
