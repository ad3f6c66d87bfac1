// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/literate/internal/docindex"
	"github.com/pdiddy/literate/internal/imports"
	"github.com/pdiddy/literate/internal/layout"
	"github.com/pdiddy/literate/pkg/types"
)

// Options tunes a batch run.
type Options struct {
	// Jobs overrides the configured concurrency when positive.
	Jobs int

	// Out receives one status line per notebook and the batch summary.
	// Nil discards them.
	Out io.Writer

	Logger *zap.Logger
}

// BatchResult summarizes a batch. Results follow the input order.
type BatchResult struct {
	Exported int
	Skipped  int
	Failed   int
	Results  []Result
}

// Total returns the number of notebooks processed.
func (r BatchResult) Total() int {
	return r.Exported + r.Skipped + r.Failed
}

// HasFailures reports whether any notebook failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// RunBatch exports notebooks under cfg. Output paths and the module table
// cover every notebook under the source directory, not only the ones
// requested. The module table and doc index are built once and shared
// read-only by all workers. Per-notebook failures are reported in the
// result; the returned error covers only failures that prevent the batch
// from starting.
func RunBatch(ctx context.Context, cfg types.ProjectConfig, notebooks []string, opts Options) (BatchResult, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	project, err := Discover(cfg)
	if err != nil {
		log.Debug("project notebooks unavailable", zap.Error(err))
	}
	plan, all := layout.PlanWithin(cfg, notebooks, project)

	planned := map[string]string{}
	for _, p := range all {
		if p.Err == nil {
			planned[p.Module] = p.CodePath
		}
	}
	var rw *imports.Rewriter
	index := docindex.New()
	if layout.Validate(cfg) == nil {
		table, err := imports.BuildTable(cfg.CodePath(), planned)
		if err != nil {
			return BatchResult{}, err
		}
		rw = imports.NewRewriter(table)
		log.Debug("module table built", zap.String("package", table.Package()), zap.Int("modules", table.Len()))

		if index, err = docindex.Load(ctx, cfg.DocIndexPath()); err != nil {
			return BatchResult{}, err
		}
	}

	proc := &Processor{Config: cfg, Rewriter: rw, Index: index, Logger: log}
	results := make([]Result, len(plan))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs(cfg, opts))
	for i, p := range plan {
		if p.Err != nil {
			results[i] = Result{Notebook: p.Notebook, Module: p.Module, Status: StatusFailed, Err: p.Err}
			continue
		}
		if err := gctx.Err(); err != nil {
			results[i] = Result{Notebook: p.Notebook, Module: p.Module, Status: StatusFailed, Err: err}
			continue
		}
		i, p := i, p
		g.Go(func() error {
			results[i] = proc.Process(p.Target)
			return nil
		})
	}
	_ = g.Wait()

	var br BatchResult
	br.Results = results
	for _, r := range results {
		switch r.Status {
		case StatusExported:
			br.Exported++
		case StatusSkipped:
			br.Skipped++
		default:
			br.Failed++
		}
		writeStatus(out, cfg, r)
	}
	fmt.Fprintf(out, "\nBatch summary: %d exported, %d skipped, %d failed (total: %d)\n",
		br.Exported, br.Skipped, br.Failed, br.Total())
	return br, nil
}

func jobs(cfg types.ProjectConfig, opts Options) int {
	switch {
	case opts.Jobs > 0:
		return opts.Jobs
	case cfg.Jobs > 0:
		return cfg.Jobs
	default:
		return runtime.NumCPU()
	}
}

func writeStatus(w io.Writer, cfg types.ProjectConfig, r Result) {
	name := display(cfg, r.Notebook)
	switch r.Status {
	case StatusExported:
		fmt.Fprintf(w, "exported: %s -> %s (%s, %s)\n", name, display(cfg, r.ModulePath),
			plural(r.Cells, "cell"), plural(r.Directives, "directive"))
	case StatusSkipped:
		fmt.Fprintf(w, "skipped: %s (no exported cells)\n", name)
	default:
		fmt.Fprintf(w, "failed:  %s (%v)\n", name, r.Err)
	}
}

// display shortens p to a path relative to the project root when possible.
func display(cfg types.ProjectConfig, p string) string {
	if cfg.Root == "" || !filepath.IsAbs(p) {
		return filepath.ToSlash(p)
	}
	rel, err := filepath.Rel(cfg.Root, p)
	if err != nil || strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(p)
	}
	return filepath.ToSlash(rel)
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return fmt.Sprintf("%d %ss", n, word)
}

// Discover lists the notebooks under the source directory in lexical order.
// Hidden files and directories are skipped, as are notebooks inside the code
// and doc directories so annotated output is never exported again.
func Discover(cfg types.ProjectConfig) ([]string, error) {
	root := cfg.SourcePath()
	exclude := []string{filepath.Clean(cfg.CodePath())}
	if d := cfg.DocPath(); d != "" {
		exclude = append(exclude, filepath.Clean(d))
	}

	var found []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && excluded(path, exclude) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) == ".ipynb" {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering notebooks in %s: %w", root, err)
	}
	return found, nil
}

func excluded(dir string, roots []string) bool {
	for _, r := range roots {
		if filepath.Clean(dir) == r {
			return true
		}
	}
	return false
}
