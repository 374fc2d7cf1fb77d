// Package goemitter writes the files of a generated client package to disk.
package goemitter

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// generatedMarker identifies files this tool owns and may prune.
var generatedMarker = []byte("// Code generated by opensearch-apigen. DO NOT EDIT.")

// Options controls where and how files are written.
type Options struct {
	OutDir string // required; target package directory
	Force  bool   // write into a non-empty directory and prune stale generated files
	DryRun bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
	Mode    os.FileMode
}

// Result lists the planned files in write order, and with Force the stale
// generated files that were removed.
type Result struct {
	OutDir  string
	Planned []PlannedFile
	Removed []string
}

// Emit plans files (relative path to contents) in sorted order and, unless
// DryRun is set, writes them atomically below OutDir.
func Emit(ctx context.Context, files map[string][]byte, opts Options) (*Result, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("goemitter: nothing to write")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("goemitter: OutDir is required")
	}
	abs, err := filepath.Abs(opts.OutDir)
	if err != nil {
		return nil, fmt.Errorf("resolve out dir: %w", err)
	}

	rels := make([]string, 0, len(files))
	for p := range files {
		rel := filepath.ToSlash(filepath.Clean(p))
		if filepath.IsAbs(p) || rel == ".." || strings.HasPrefix(rel, "../") {
			return nil, fmt.Errorf("goemitter: refusing to write outside the output directory: %s", p)
		}
		rels = append(rels, p)
	}
	sort.Strings(rels)

	res := &Result{OutDir: abs, Planned: make([]PlannedFile, 0, len(rels))}
	for _, rel := range rels {
		res.Planned = append(res.Planned, PlannedFile{RelPath: filepath.ToSlash(rel), Size: len(files[rel]), Mode: 0o644})
	}
	if opts.DryRun {
		return res, nil
	}

	if err := preflight(abs, opts.Force); err != nil {
		return nil, err
	}
	for _, rel := range rels {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := writeAtomic(filepath.Join(abs, rel), files[rel]); err != nil {
			return nil, fmt.Errorf("write %s: %w", rel, err)
		}
	}
	if opts.Force {
		removed, err := pruneStale(abs, files)
		if err != nil {
			return nil, err
		}
		res.Removed = removed
	}
	return res, nil
}

// preflight refuses a non-empty output directory unless force is set.
func preflight(dir string, force bool) error {
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() || force {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("goemitter: output directory %q is not empty (use --force to overwrite)", dir)
	}
	return nil
}

// writeAtomic writes via a temp file in the target directory plus rename.
func writeAtomic(p string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), "."+filepath.Base(p)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}

// pruneStale removes .go files directly in dir that carry the generated
// header but are no longer produced, e.g. after a namespace disappeared.
func pruneStale(dir string, files map[string][]byte) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read out dir: %w", err)
	}
	var removed []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".go" {
			continue
		}
		if _, ok := files[name]; ok {
			continue
		}
		p := filepath.Join(dir, name)
		data, err := os.ReadFile(p)
		if err != nil || !bytes.HasPrefix(data, generatedMarker) {
			continue
		}
		if err := os.Remove(p); err != nil {
			return removed, fmt.Errorf("remove stale %s: %w", name, err)
		}
		removed = append(removed, name)
	}
	return removed, nil
}
