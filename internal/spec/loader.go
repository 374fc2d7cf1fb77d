package spec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"gopkg.in/yaml.v3"
)

// ErrorCode categorizes loader errors for clearer handling and messaging.
type ErrorCode string

const (
	InputError      ErrorCode = "InputError"
	NetworkError    ErrorCode = "NetworkError"
	ParseError      ErrorCode = "ParseError"
	ValidationError ErrorCode = "ValidationError"
	ConversionError ErrorCode = "ConversionError"
)

// SpecError is a structured error with optional location and JSON Pointer.
type SpecError struct {
	Code        ErrorCode
	Message     string
	Location    string // file path or URL
	JSONPointer string // e.g. "#/paths/~1_search/get"
	Cause       error
}

func (e *SpecError) Error() string { return e.Message }
func (e *SpecError) Unwrap() error { return e.Cause }

// Format is the kind of API description found at an input.
type Format int

const (
	FormatUnknown Format = iota
	FormatRestSpec
	FormatOpenAPI3
	FormatSwagger2
)

// Settings configures loader behavior.
type Settings struct {
	// HTTPTimeout bounds each HTTP request.
	HTTPTimeout time.Duration
	// MaxRetries for transient HTTP failures (>=500, 429, or network errors).
	MaxRetries int
	// BackoffBase is the base delay for exponential backoff.
	BackoffBase time.Duration
	// AllowFileRefs controls whether file:// refs are allowed for external references
	// of OpenAPI documents. Always allowed when the root input is a local file.
	AllowFileRefs bool
	// Include and Exclude are path.Match globs over dotted endpoint names.
	Include []string
	Exclude []string
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{
		HTTPTimeout: 10 * time.Second,
		MaxRetries:  3,
		BackoffBase: 200 * time.Millisecond,
	}
}

// Option mutates Settings.
type Option func(*Settings)

func WithHTTPTimeout(d time.Duration) Option  { return func(s *Settings) { s.HTTPTimeout = d } }
func WithMaxRetries(n int) Option             { return func(s *Settings) { s.MaxRetries = n } }
func WithBackoffBase(d time.Duration) Option  { return func(s *Settings) { s.BackoffBase = d } }
func WithAllowFileRefs(allow bool) Option     { return func(s *Settings) { s.AllowFileRefs = allow } }
func WithInclude(patterns []string) Option    { return func(s *Settings) { s.Include = patterns } }
func WithExclude(patterns []string) Option    { return func(s *Settings) { s.Exclude = patterns } }

// Load reads an API description and returns its in-memory model.
//
// input may be a directory of REST API spec JSON files, a single such file,
// an OpenAPI v3 or Swagger v2 document, or an http/https URL to either kind
// of file. Swagger v2 documents are converted to v3 first. file:// URLs are
// blocked.
func Load(ctx context.Context, input string, opts ...Option) (*API, error) {
	if strings.TrimSpace(input) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}

	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	if err := validatePatterns(settings); err != nil {
		return nil, err
	}

	api, err := load(ctx, input, settings)
	if err != nil {
		return nil, err
	}
	api.filter(settings.Include, settings.Exclude)
	return api, nil
}

func load(ctx context.Context, input string, settings Settings) (*API, error) {
	// Classify input as URL or file path.
	u, uerr := url.Parse(input)
	isURL := uerr == nil && u.Scheme != "" && u.Host != ""

	if isURL {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "file" {
			return nil, &SpecError{Code: InputError, Message: "spec: file:// URLs are blocked by default", Location: input}
		}
		if scheme != "http" && scheme != "https" {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: unsupported URL scheme %q (only http/https allowed)", scheme), Location: input}
		}

		raw, fetchErr := fetchWithRetry(ctx, input, settings)
		if fetchErr != nil {
			return nil, &SpecError{Code: NetworkError, Message: fmt.Sprintf("fetch %s: %v", input, fetchErr), Location: input, Cause: fetchErr}
		}

		format, derr := detectFormat(raw)
		if derr != nil {
			return nil, &SpecError{Code: ParseError, Message: derr.Error(), Location: input, Cause: derr}
		}

		switch format {
		case FormatRestSpec:
			return loadRestSpecBytes(filepath.Base(u.Path), raw, input)
		case FormatOpenAPI3:
			loader := newLoader(settings, false /*rootIsFile*/)
			doc, err := loader.LoadFromURI(u)
			if err != nil {
				return nil, mapValidateOrParseErr(err, input)
			}
			return fromValidatedDoc(ctx, doc, input)
		default:
			doc, err := convertV2ToV3(raw)
			if err != nil {
				return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: input, Cause: err}
			}
			return fromValidatedDoc(ctx, doc, input)
		}
	}

	// Treat as local filesystem path.
	abs, err := filepath.Abs(input)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: input, Cause: err}
	}
	st, err := os.Stat(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("stat %s: %v", abs, err), Location: abs, Cause: err}
	}
	if st.IsDir() {
		return loadRestSpecDir(abs)
	}

	raw, rerr := os.ReadFile(abs)
	if rerr != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, rerr), Location: abs, Cause: rerr}
	}

	format, derr := detectFormat(raw)
	if derr != nil {
		return nil, &SpecError{Code: ParseError, Message: derr.Error(), Location: abs, Cause: derr}
	}

	switch format {
	case FormatRestSpec:
		return loadRestSpecBytes(filepath.Base(abs), raw, abs)
	case FormatOpenAPI3:
		loader := newLoader(settings, true /*rootIsFile*/)
		doc, err := loader.LoadFromFile(abs)
		if err != nil {
			return nil, mapValidateOrParseErr(err, abs)
		}
		return fromValidatedDoc(ctx, doc, abs)
	default:
		doc, err := convertV2ToV3(raw)
		if err != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2→v3: %v", err), Location: abs, Cause: err}
		}
		return fromValidatedDoc(ctx, doc, abs)
	}
}

func fromValidatedDoc(ctx context.Context, doc *openapi3.T, location string) (*API, error) {
	if err := doc.Validate(ctx); err != nil {
		if !canProceedDespiteValidation(err) {
			return nil, mapValidateOrParseErr(err, location)
		}
	}
	api, err := FromOpenAPI(doc)
	if err != nil {
		return nil, &SpecError{Code: ConversionError, Message: err.Error(), Location: location, Cause: err}
	}
	return api, nil
}

// loadRestSpecDir reads every *.json file of dir. _common.json supplies the
// shared parameters; other files starting with '_' are ignored.
func loadRestSpecDir(dir string) (*API, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read dir %s: %v", dir, err), Location: dir, Cause: err}
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	api := &API{}
	for _, name := range names {
		p := filepath.Join(dir, name)
		raw, err := os.ReadFile(p)
		if err != nil {
			return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", p, err), Location: p, Cause: err}
		}
		if err := api.addRestSpecFile(name, raw, p); err != nil {
			return nil, err
		}
	}
	if len(api.Endpoints) == 0 {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("spec: no endpoint definitions found in %s", dir), Location: dir}
	}
	api.sortEndpoints()
	return api, nil
}

func loadRestSpecBytes(name string, raw []byte, location string) (*API, error) {
	api := &API{}
	if err := api.addRestSpecFile(name, raw, location); err != nil {
		return nil, err
	}
	api.sortEndpoints()
	return api, nil
}

func (a *API) addRestSpecFile(name string, raw []byte, location string) error {
	switch {
	case name == commonFile:
		common, err := parseCommonFile(raw)
		if err != nil {
			return &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", name, err), Location: location, Cause: err}
		}
		a.Common = common
	case strings.HasPrefix(name, "_"):
	default:
		eps, err := parseEndpointFile(raw)
		if err != nil {
			return &SpecError{Code: ParseError, Message: fmt.Sprintf("parse %s: %v", name, err), Location: location, Cause: err}
		}
		a.Endpoints = append(a.Endpoints, eps...)
	}
	return nil
}

func newLoader(settings Settings, rootIsFile bool) *openapi3.Loader {
	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = true
	client := &http.Client{Timeout: settings.HTTPTimeout}
	// Allow file refs only when configured or when loading from a local file root.
	allowFile := settings.AllowFileRefs || rootIsFile
	loader.ReadFromURIFunc = func(l *openapi3.Loader, uri *url.URL) ([]byte, error) {
		switch strings.ToLower(uri.Scheme) {
		case "", "file":
			if !allowFile {
				return nil, fmt.Errorf("blocked file ref: %s", uri.String())
			}
			p := uri.Path
			if p == "" {
				p = uri.Opaque
			}
			return os.ReadFile(p)
		case "http", "https":
			req, err := http.NewRequest(http.MethodGet, uri.String(), nil)
			if err != nil {
				return nil, err
			}
			resp, err := client.Do(req)
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close()
			if resp.StatusCode >= 400 {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, uri.String())
			}
			return io.ReadAll(resp.Body)
		default:
			return nil, fmt.Errorf("unsupported ref scheme: %s", uri.Scheme)
		}
	}
	return loader
}

// detectFormat tells REST API spec files apart from OpenAPI v3 and Swagger v2
// documents.
func detectFormat(data []byte) (Format, error) {
	var root map[string]any
	if err := yaml.Unmarshal(data, &root); err != nil {
		return FormatUnknown, fmt.Errorf("parse spec: %w", err)
	}
	if v, ok := root["openapi"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "3.") {
			return FormatOpenAPI3, nil
		}
	}
	if v, ok := root["swagger"]; ok {
		if s, _ := v.(string); strings.HasPrefix(strings.TrimSpace(s), "2.") {
			return FormatSwagger2, nil
		}
	}
	if _, ok := root["params"]; ok {
		return FormatRestSpec, nil // _common.json
	}
	for _, v := range root {
		if m, ok := v.(map[string]any); ok {
			if _, ok := m["url"]; ok {
				return FormatRestSpec, nil
			}
		}
	}
	return FormatUnknown, fmt.Errorf("spec: unrecognised document (expected a REST API spec file, 'openapi: 3.x' or 'swagger: 2.0')")
}

func convertV2ToV3(data []byte) (*openapi3.T, error) {
	// For kin-openapi v0.116.0, convert by unmarshalling to v2 then calling ToV3.
	var v2 openapi2.T
	if err := yaml.Unmarshal(data, &v2); err != nil {
		return nil, err
	}
	return openapi2conv.ToV3(&v2)
}

func fetchWithRetry(ctx context.Context, rawURL string, settings Settings) ([]byte, error) {
	client := &http.Client{Timeout: settings.HTTPTimeout}
	var lastErr error
	backoff := settings.BackoffBase
	if backoff <= 0 {
		backoff = 200 * time.Millisecond
	}
	attempts := settings.MaxRetries
	if attempts <= 0 {
		attempts = 1
	}
	for i := 0; i < attempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err == nil && resp.StatusCode < 300 {
			defer resp.Body.Close()
			return io.ReadAll(resp.Body)
		}
		if err != nil {
			lastErr = err
		} else {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			resp.Body.Close()
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return nil, fmt.Errorf("http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
			}
			lastErr = fmt.Errorf("transient http error %d", resp.StatusCode)
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	if lastErr == nil {
		lastErr = errors.New("fetch failed")
	}
	return nil, lastErr
}

func mapValidateOrParseErr(err error, location string) error {
	pointer := extractJSONPointer(err)
	code := ValidationError
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "parse") || strings.Contains(lower, "invalid character") {
		code = ParseError
	}
	return &SpecError{Code: code, Message: err.Error(), Location: location, JSONPointer: pointer, Cause: err}
}

var jsonPtrRe = regexp.MustCompile(`#/[^\s'\"]+`)

func extractJSONPointer(err error) string {
	if err == nil {
		return ""
	}
	if me, ok := err.(openapi3.MultiError); ok {
		if len(me) > 0 {
			return extractJSONPointer(me[0])
		}
	}
	var se *openapi3.SchemaError
	if errors.As(err, &se) {
		if parts := se.JSONPointer(); len(parts) > 0 {
			return "#/" + strings.Join(parts, "/")
		}
		if se.SchemaField != "" {
			return se.SchemaField
		}
	}
	if m := jsonPtrRe.FindString(err.Error()); m != "" {
		return m
	}
	return ""
}

// canProceedDespiteValidation returns true for validation errors where a
// best-effort build can still proceed (e.g., unresolved $ref entries).
func canProceedDespiteValidation(err error) bool {
	if err == nil {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unresolved ref")
}

func validatePatterns(s Settings) error {
	for _, p := range append(append([]string(nil), s.Include...), s.Exclude...) {
		if _, err := path.Match(p, ""); err != nil {
			return &SpecError{Code: InputError, Message: fmt.Sprintf("spec: invalid endpoint pattern %q: %v", p, err), Cause: err}
		}
	}
	return nil
}

// filter keeps endpoints matching at least one include pattern (all when
// none are given) and none of the exclude patterns.
func (a *API) filter(include, exclude []string) {
	if len(include) == 0 && len(exclude) == 0 {
		return
	}
	kept := a.Endpoints[:0]
	for _, ep := range a.Endpoints {
		if len(include) > 0 && !matchAny(include, ep.Name) {
			continue
		}
		if matchAny(exclude, ep.Name) {
			continue
		}
		kept = append(kept, ep)
	}
	a.Endpoints = kept
}

func matchAny(patterns []string, name string) bool {
	for _, p := range patterns {
		if ok, _ := path.Match(p, name); ok {
			return true
		}
	}
	return false
}
