// Package generator turns an API description into the files of a Go client
// package: the URL parts and request builder of every endpoint, grouped by
// namespace.
package generator

import (
	"bytes"
	"context"
	"go/token"
	"io"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/dave/jennifer/jen"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/opensearch-project/opensearch-apigen/internal/requestgen"
	"github.com/opensearch-project/opensearch-apigen/internal/spec"
	"github.com/opensearch-project/opensearch-apigen/internal/urlgen"
)

const (
	DefaultPackageName = "opensearch"
	rootNamespace      = "root"
	docFile            = "doc.go"
	generatedHeader    = "Code generated by opensearch-apigen. DO NOT EDIT."
)

var (
	// ErrNothingGenerated is returned when every endpoint failed.
	ErrNothingGenerated = errors.New("no endpoint could be generated")
	// ErrNameCollision is wrapped by the failure of an endpoint that would
	// declare a type another endpoint already declares.
	ErrNameCollision = errors.New("type name already declared by another endpoint")
)

// Options configure a generation run.
type Options struct {
	// PackageName of the generated package. Defaults to DefaultPackageName.
	PackageName string
	// RuntimeImport is the import path of the urlpart helpers.
	RuntimeImport string
	// Concurrency bounds the namespaces rendered at once. Defaults to GOMAXPROCS.
	Concurrency int
	// Logger receives per-endpoint warnings. Defaults to a discarding logger.
	Logger logrus.FieldLogger
}

// Failure is an endpoint that was skipped.
type Failure struct {
	Endpoint string
	Err      error
}

func (f Failure) Message() string { return f.Err.Error() }

// Result holds the rendered files keyed by file name, plus which endpoints
// made it into them.
type Result struct {
	Files     map[string][]byte
	Generated []string // sorted
	Failures  []Failure
}

// Generate renders api. Endpoint-scoped problems are collected in
// Result.Failures and never abort the run; ErrNothingGenerated is returned
// when no endpoint remains.
func Generate(ctx context.Context, api *spec.API, opts Options) (*Result, error) {
	opts = withDefaults(opts)
	if !token.IsIdentifier(opts.PackageName) {
		return nil, errors.Errorf("invalid package name %q", opts.PackageName)
	}
	if api == nil || len(api.Endpoints) == 0 {
		return nil, ErrNothingGenerated
	}

	namespaces := byNamespace(api)
	names := make([]string, 0, len(namespaces))
	for ns := range namespaces {
		names = append(names, ns)
	}
	sort.Strings(names)

	res := &Result{Files: map[string][]byte{}}
	plans := map[string][]planned{}
	var mu sync.Mutex

	err := forEachNamespace(ctx, names, opts.Concurrency, func(ns string) error {
		plan, failures := planNamespace(api, ns, namespaces[ns], opts)
		mu.Lock()
		defer mu.Unlock()
		plans[ns] = plan
		res.Failures = append(res.Failures, failures...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	res.Failures = append(res.Failures, claimNames(plans, opts.Logger)...)

	err = forEachNamespace(ctx, names, opts.Concurrency, func(ns string) error {
		if len(plans[ns]) == 0 {
			return nil
		}
		source, err := renderNamespace(api, ns, plans[ns], opts)
		if err != nil {
			return err
		}
		mu.Lock()
		defer mu.Unlock()
		res.Files[fileName(ns)] = source
		for _, p := range plans[ns] {
			res.Generated = append(res.Generated, p.ep.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(res.Generated)
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].Endpoint < res.Failures[j].Endpoint })
	if len(res.Generated) == 0 {
		return res, ErrNothingGenerated
	}

	doc, err := renderDoc(opts.PackageName)
	if err != nil {
		return nil, err
	}
	res.Files[docFile] = doc
	return res, nil
}

// forEachNamespace runs fn for every namespace, at most limit at a time.
func forEachNamespace(ctx context.Context, names []string, limit int, fn func(ns string) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for _, ns := range names {
		ns := ns
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(ns)
		})
	}
	return g.Wait()
}

func withDefaults(opts Options) Options {
	if opts.PackageName == "" {
		opts.PackageName = DefaultPackageName
	}
	if opts.RuntimeImport == "" {
		opts.RuntimeImport = urlgen.DefaultRuntimeImport
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		l := logrus.New()
		l.Out = io.Discard
		opts.Logger = l
	}
	return opts
}

func byNamespace(api *spec.API) map[string][]*spec.Endpoint {
	out := map[string][]*spec.Endpoint{}
	for i := range api.Endpoints {
		ep := &api.Endpoints[i]
		ns := ep.Namespace()
		if ns == "" {
			ns = rootNamespace
		}
		out[ns] = append(out[ns], ep)
	}
	return out
}

// fileName keeps namespaces clear of the doc file and of _GOOS/_GOARCH
// build-constraint suffixes.
func fileName(ns string) string {
	return ns + "_api.go"
}

type planned struct {
	ep       *spec.Endpoint
	grouping *urlgen.Grouping
}

// declared lists the package-level types the endpoint's code declares.
func (p planned) declared() []string {
	g := p.grouping
	out := []string{g.TypeName, requestgen.RequestTypeName(p.ep.Name)}
	for i := range g.Variants {
		out = append(out, g.VariantTypeName(&g.Variants[i]))
	}
	return out
}

// planNamespace groups the paths of each endpoint and renders its code on its
// own, so an endpoint that cannot be generated is dropped before it can break
// the file of its namespace.
func planNamespace(api *spec.API, ns string, endpoints []*spec.Endpoint, opts Options) ([]planned, []Failure) {
	log := opts.Logger.WithField("namespace", ns)
	var (
		plan     []planned
		failures []Failure
	)
	for _, ep := range endpoints {
		g, err := urlgen.Group(ep.Name, ep.Paths)
		if err != nil {
			failures = append(failures, fail(log, ep.Name, err))
			continue
		}
		p := planned{ep: ep, grouping: g}
		f := newFile(opts)
		if err := emit(f, api, p, opts); err != nil {
			failures = append(failures, fail(log, ep.Name, err))
			continue
		}
		if err := f.Render(io.Discard); err != nil {
			failures = append(failures, fail(log, ep.Name, &urlgen.EndpointError{
				Endpoint: ep.Name,
				Err:      errors.New("render: " + firstLine(err.Error())),
			}))
			continue
		}
		logDropped(log, g)
		plan = append(plan, p)
	}
	return plan, failures
}

// claimNames drops, in endpoint name order, every endpoint that would declare
// a type an earlier endpoint declares. Generated types share one package, so
// the check spans namespaces.
func claimNames(plans map[string][]planned, log logrus.FieldLogger) []Failure {
	var all []planned
	for _, plan := range plans {
		all = append(all, plan...)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ep.Name < all[j].ep.Name })

	owners := map[string]string{}
	dropped := map[string]bool{}
	var failures []Failure
	for _, p := range all {
		decl := p.declared()
		clash := ""
		for _, name := range decl {
			if _, taken := owners[name]; taken {
				clash = name
				break
			}
		}
		if clash != "" {
			err := &urlgen.EndpointError{
				Endpoint: p.ep.Name,
				Err:      errors.Wrapf(ErrNameCollision, "%s is declared by %s", clash, owners[clash]),
			}
			failures = append(failures, fail(log, p.ep.Name, err))
			dropped[p.ep.Name] = true
			continue
		}
		for _, name := range decl {
			owners[name] = p.ep.Name
		}
	}

	for ns, plan := range plans {
		kept := plan[:0]
		for _, p := range plan {
			if !dropped[p.ep.Name] {
				kept = append(kept, p)
			}
		}
		plans[ns] = kept
	}
	return failures
}

// renderNamespace renders the planned endpoints of one namespace into one
// file. Every endpoint already rendered on its own, so an error here is not
// blamed on any of them.
func renderNamespace(api *spec.API, ns string, plan []planned, opts Options) ([]byte, error) {
	f := newFile(opts)
	for _, p := range plan {
		if err := emit(f, api, p, opts); err != nil {
			return nil, errors.Wrapf(err, "namespace %s", ns)
		}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errors.Wrapf(err, "render namespace %s", ns)
	}
	opts.Logger.WithFields(logrus.Fields{"namespace": ns, "endpoints": len(plan)}).Debug("rendered namespace")
	return buf.Bytes(), nil
}

func emit(f *jen.File, api *spec.API, p planned, opts Options) error {
	if err := (urlgen.Emitter{RuntimeImport: opts.RuntimeImport}).Emit(f, p.grouping); err != nil {
		return err
	}
	return requestgen.Emit(f, p.ep, api.QueryParams(p.ep), p.grouping)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func newFile(opts Options) *jen.File {
	f := jen.NewFile(opts.PackageName)
	f.HeaderComment(generatedHeader)
	f.ImportName(opts.RuntimeImport, "urlpart")
	return f
}

func renderDoc(pkg string) ([]byte, error) {
	f := jen.NewFile(pkg)
	f.HeaderComment(generatedHeader)
	f.PackageComment("Package " + pkg + " holds the URL parts and request builders of the OpenSearch REST API.")
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, errors.Wrap(err, "render doc.go")
	}
	return buf.Bytes(), nil
}

func fail(log logrus.FieldLogger, endpoint string, err error) Failure {
	log.WithField("endpoint", endpoint).WithError(err).Warn("skipping endpoint")
	return Failure{Endpoint: endpoint, Err: err}
}

func logDropped(log logrus.FieldLogger, g *urlgen.Grouping) {
	for _, d := range g.Dropped {
		entry := log.WithFields(logrus.Fields{
			"endpoint": g.Endpoint,
			"path":     d.Path.Path,
			"kept":     d.Winner.Path,
		})
		if d.SameShape() {
			entry.Debug("duplicate path ignored")
			continue
		}
		entry.Warn("path shares its parameters with an earlier path and is unreachable")
	}
}
