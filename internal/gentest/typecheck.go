package gentest

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// TypeCheck type-checks the files of one generated package. Imports of
// runtimeImport are served from the non-test Go files in runtimeDir; every
// other import must be a standard library package.
func TypeCheck(files map[string][]byte, runtimeImport, runtimeDir string) error {
	fset := token.NewFileSet()
	std := importer.Default()

	var runtimePkg *types.Package
	imp := importerFunc(func(path string) (*types.Package, error) {
		if path != runtimeImport {
			return std.Import(path)
		}
		if runtimePkg != nil {
			return runtimePkg, nil
		}
		parsed, err := parseDir(fset, runtimeDir)
		if err != nil {
			return nil, err
		}
		conf := types.Config{Importer: std}
		pkg, err := conf.Check(path, fset, parsed, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "check %s", path)
		}
		runtimePkg = pkg
		return pkg, nil
	})

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	parsed := make([]*ast.File, 0, len(names))
	for _, name := range names {
		f, err := parser.ParseFile(fset, name, files[name], parser.ParseComments)
		if err != nil {
			return err
		}
		parsed = append(parsed, f)
	}
	if len(parsed) == 0 {
		return errors.New("no files to check")
	}

	conf := types.Config{Importer: imp}
	_, err := conf.Check(parsed[0].Name.Name, fset, parsed, nil)
	return err
}

func parseDir(fset *token.FileSet, dir string) ([]*ast.File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []*ast.File
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".go") || strings.HasSuffix(name, "_test.go") {
			continue
		}
		f, err := parser.ParseFile(fset, filepath.Join(dir, name), nil, 0)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

type importerFunc func(path string) (*types.Package, error)

func (f importerFunc) Import(path string) (*types.Package, error) { return f(path) }
