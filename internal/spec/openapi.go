package spec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// operationGroupExt names the OpenAPI extension that ties the operations of
// one logical endpoint together (e.g. GET /_search and POST /{index}/_search
// both belong to "search").
const operationGroupExt = "x-operation-group"

// FromOpenAPI converts an OpenAPI v3 document into the API model. Operations
// are grouped into endpoints by their x-operation-group extension, falling
// back to the operationId. Within an endpoint, paths keep the order of the
// sorted path keys and collect the methods declared on them.
func FromOpenAPI(doc *openapi3.T) (*API, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	byName := map[string]*Endpoint{}
	var order []string

	pathKeys := make([]string, 0, len(doc.Paths))
	for p := range doc.Paths {
		pathKeys = append(pathKeys, p)
	}
	sort.Strings(pathKeys)

	for _, p := range pathKeys {
		item := doc.Paths[p]
		if item == nil {
			continue
		}
		ops := []struct {
			m HttpMethod
			o *openapi3.Operation
		}{
			{GET, item.Get},
			{PUT, item.Put},
			{POST, item.Post},
			{DELETE, item.Delete},
			{HEAD, item.Head},
			{PATCH, item.Patch},
		}
		for _, pair := range ops {
			if pair.o == nil {
				continue
			}
			name := operationGroup(pair.o, pair.m, p)
			ep, ok := byName[name]
			if !ok {
				ep = &Endpoint{
					Name:      name,
					Stability: Stable,
					Documentation: Documentation{
						Description: strings.TrimSpace(firstNonEmpty(pair.o.Description, pair.o.Summary)),
					},
				}
				if pair.o.ExternalDocs != nil {
					ep.Documentation.URL = pair.o.ExternalDocs.URL
				}
				byName[name] = ep
				order = append(order, name)
			}
			addOperation(ep, rootPath(p), pair.m, item.Parameters, pair.o)
		}
	}

	api := &API{}
	for _, name := range order {
		api.Endpoints = append(api.Endpoints, *byName[name])
	}
	api.sortEndpoints()
	return api, nil
}

func addOperation(ep *Endpoint, p string, m HttpMethod, shared openapi3.Parameters, op *openapi3.Operation) {
	var path *Path
	for i := range ep.Paths {
		if ep.Paths[i].Path == p {
			path = &ep.Paths[i]
			break
		}
	}
	if path == nil {
		ep.Paths = append(ep.Paths, Path{Path: p})
		path = &ep.Paths[len(ep.Paths)-1]
	}
	path.Methods = append(path.Methods, m)
	if op.Deprecated && path.Deprecated == nil {
		path.Deprecated = &Deprecated{Description: strings.TrimSpace(op.Summary)}
	}

	params := append(append(openapi3.Parameters(nil), shared...), op.Parameters...)
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		prm := ref.Value
		t := schemaType(prm.Schema)
		t.Description = prm.Description
		if prm.Deprecated {
			t.Deprecated = &Deprecated{}
		}
		switch prm.In {
		case openapi3.ParameterInPath:
			if path.Parts == nil {
				path.Parts = map[string]Type{}
			}
			path.Parts[prm.Name] = t
		case openapi3.ParameterInQuery:
			if ep.Params == nil {
				ep.Params = map[string]Type{}
			}
			ep.Params[prm.Name] = t
		}
	}

	if op.RequestBody != nil && op.RequestBody.Value != nil && ep.Body == nil {
		body := &Body{Description: op.RequestBody.Value.Description, Required: op.RequestBody.Value.Required}
		if op.RequestBody.Value.Content.Get("application/x-ndjson") != nil {
			body.Serialize = "bulk"
		}
		ep.Body = body
	}
}

// schemaType maps a parameter schema onto a Type. A oneOf/anyOf made of a
// string and an array of strings is the usual shape of comma-separated list
// parameters and is treated as a list.
func schemaType(ref *openapi3.SchemaRef) Type {
	if ref == nil || ref.Value == nil {
		return Type{Kind: TypeUnknown}
	}
	s := ref.Value
	t := Type{Description: s.Description, Default: s.Default}
	if len(s.Enum) > 0 {
		t.Kind = TypeEnum
		for _, v := range s.Enum {
			t.Options = append(t.Options, fmt.Sprint(v))
		}
		return t
	}

	alts := s.OneOf
	if len(alts) == 0 {
		alts = s.AnyOf
	}
	if len(alts) > 0 {
		hasList := false
		for _, alt := range alts {
			k := schemaType(alt).Kind
			if k == TypeList {
				hasList = true
			}
			t.Union = append(t.Union, k)
		}
		if hasList && len(alts) == 2 && (t.Union[0] == TypeString || t.Union[1] == TypeString) {
			t.Kind, t.Union = TypeList, nil
			return t
		}
		t.Kind = TypeUnion
		return t
	}

	switch s.Type {
	case "array":
		t.Kind = TypeList
	case "string":
		switch s.Format {
		case "date", "date-time":
			t.Kind = TypeDate
		default:
			t.Kind = TypeString
		}
	case "integer":
		if s.Format == "int64" {
			t.Kind = TypeLong
		} else {
			t.Kind = TypeInteger
		}
	case "number":
		switch s.Format {
		case "float":
			t.Kind = TypeFloat
		default:
			t.Kind = TypeDouble
		}
	case "boolean":
		t.Kind = TypeBoolean
	default:
		t.Kind = TypeUnknown
	}
	return t
}

func operationGroup(op *openapi3.Operation, m HttpMethod, p string) string {
	if v, ok := op.Extensions[operationGroupExt]; ok {
		if s := extensionString(v); s != "" {
			return s
		}
	}
	if id := strings.TrimSpace(op.OperationID); id != "" {
		return id
	}
	return strings.ToLower(string(m)) + strings.NewReplacer("/", "_", "{", "", "}", "").Replace(p)
}

func extensionString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case json.RawMessage:
		var s string
		if err := json.Unmarshal(val, &s); err == nil {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
