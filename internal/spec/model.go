package spec

import (
	"sort"
	"strings"
)

// In-memory model of the REST API description consumed by the generators.

type HttpMethod string

const (
	GET    HttpMethod = "GET"
	POST   HttpMethod = "POST"
	PUT    HttpMethod = "PUT"
	DELETE HttpMethod = "DELETE"
	PATCH  HttpMethod = "PATCH"
	HEAD   HttpMethod = "HEAD"
)

type Stability string

const (
	Stable       Stability = "stable"
	Beta         Stability = "beta"
	Experimental Stability = "experimental"
)

// API is the full set of endpoints plus the query parameters common to all of them.
type API struct {
	Endpoints []Endpoint      // sorted by Name
	Common    map[string]Type // params shared by every endpoint (_common.json)
}

type Documentation struct {
	URL         string
	Description string
}

type Deprecated struct {
	Version     string
	Description string
}

// Endpoint is one logical API operation, reachable through one or more paths.
type Endpoint struct {
	Name          string // dotted, e.g. "cat.aliases"
	Documentation Documentation
	Stability     Stability
	Deprecated    *Deprecated
	Paths         []Path
	Params        map[string]Type // query string parameters
	Body          *Body
}

// Path is a single URL template of an endpoint together with the types of
// the parts it references.
type Path struct {
	Path       string // always rooted, e.g. "/{index}/_search"
	Methods    []HttpMethod
	Parts      map[string]Type
	Deprecated *Deprecated
}

type Body struct {
	Description string
	Required    bool
	Serialize   string // "bulk" for newline delimited bodies
}

// Type describes a path part or query parameter.
type Type struct {
	Kind        TypeKind
	Union       []TypeKind // members, when Kind is TypeUnion
	Description string
	Options     []string
	Default     any
	Deprecated  *Deprecated
}

// Namespace returns the part of the endpoint name before the first dot, or
// "" for root endpoints such as "search".
func (e *Endpoint) Namespace() string {
	if i := strings.IndexByte(e.Name, '.'); i > 0 {
		return e.Name[:i]
	}
	return ""
}

// Methods returns the distinct methods of all paths in first-seen order.
func (e *Endpoint) Methods() []HttpMethod {
	var out []HttpMethod
	seen := map[HttpMethod]struct{}{}
	for _, p := range e.Paths {
		for _, m := range p.Methods {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}

// Endpoint looks up an endpoint by its dotted name.
func (a *API) Endpoint(name string) (*Endpoint, bool) {
	i := sort.Search(len(a.Endpoints), func(i int) bool { return a.Endpoints[i].Name >= name })
	if i < len(a.Endpoints) && a.Endpoints[i].Name == name {
		return &a.Endpoints[i], true
	}
	return nil, false
}

// QueryParams merges the common parameters with the endpoint's own; the
// endpoint's definition wins on conflict.
func (a *API) QueryParams(e *Endpoint) map[string]Type {
	out := make(map[string]Type, len(a.Common)+len(e.Params))
	for k, v := range a.Common {
		out[k] = v
	}
	for k, v := range e.Params {
		out[k] = v
	}
	return out
}

func (a *API) sortEndpoints() {
	sort.SliceStable(a.Endpoints, func(i, j int) bool { return a.Endpoints[i].Name < a.Endpoints[j].Name })
}
