package requestgen

import (
	"strings"

	"github.com/iancoleman/strcase"

	"github.com/opensearch-project/opensearch-apigen/internal/spec"
)

// MethodRule is the HTTP method choice of an endpoint: Default, or WithBody
// once a request body is set. Both are equal when the choice is fixed.
type MethodRule struct {
	Default  spec.HttpMethod
	WithBody spec.HttpMethod
}

// Fixed reports whether the body has no influence on the method.
func (m MethodRule) Fixed() bool { return m.Default == m.WithBody }

// Select returns the method for a request with or without a body.
func (m MethodRule) Select(hasBody bool) spec.HttpMethod {
	if hasBody {
		return m.WithBody
	}
	return m.Default
}

// ChooseMethod derives the method rule from the distinct methods accepted by
// an endpoint's paths.
//
//   - a single method is used as is;
//   - GET and POST: POST when a body is set, GET otherwise;
//   - POST and PUT: PUT for endpoints whose name has the word "put", POST otherwise;
//   - anything else: the first method, or POST with a body when POST is accepted.
func ChooseMethod(endpoint string, methods []spec.HttpMethod) MethodRule {
	switch {
	case len(methods) == 0:
		return MethodRule{Default: spec.GET, WithBody: spec.POST}
	case len(methods) == 1:
		return MethodRule{Default: methods[0], WithBody: methods[0]}
	case sameSet(methods, spec.GET, spec.POST):
		return MethodRule{Default: spec.GET, WithBody: spec.POST}
	case sameSet(methods, spec.POST, spec.PUT):
		if hasWord(endpoint, "put") {
			return MethodRule{Default: spec.PUT, WithBody: spec.PUT}
		}
		return MethodRule{Default: spec.POST, WithBody: spec.POST}
	}
	rule := MethodRule{Default: methods[0], WithBody: methods[0]}
	for _, m := range methods {
		if m == spec.POST {
			rule.WithBody = spec.POST
		}
	}
	return rule
}

// hasWord reports whether word is one of the words of a dotted, snake_case or
// camelCase endpoint name, so "indices.put_mapping" has "put" and "compute"
// does not.
func hasWord(name, word string) bool {
	for _, w := range strings.Split(strcase.ToSnake(name), "_") {
		if w == word {
			return true
		}
	}
	return false
}

func sameSet(methods []spec.HttpMethod, a, b spec.HttpMethod) bool {
	if len(methods) != 2 {
		return false
	}
	return (methods[0] == a && methods[1] == b) || (methods[0] == b && methods[1] == a)
}
