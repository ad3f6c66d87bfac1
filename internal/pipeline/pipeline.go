// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the export stages for each notebook:
// parse, classify, assemble and annotate, then emit both artifacts.
// Notebooks are independent; a failure never affects other notebooks.
package pipeline

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/pdiddy/literate/internal/annotate"
	"github.com/pdiddy/literate/internal/assemble"
	"github.com/pdiddy/literate/internal/classify"
	"github.com/pdiddy/literate/internal/docindex"
	"github.com/pdiddy/literate/internal/fsutil"
	"github.com/pdiddy/literate/internal/imports"
	"github.com/pdiddy/literate/internal/layout"
	"github.com/pdiddy/literate/internal/notebook"
	"github.com/pdiddy/literate/pkg/types"
)

// Status is the outcome of processing one notebook.
type Status string

const (
	// StatusExported means the module file was written.
	StatusExported Status = "exported"
	// StatusSkipped means the notebook had no exported cells and no module
	// was written. Its annotated notebook may still have been written.
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result describes what happened to one notebook.
type Result struct {
	Notebook string `json:"notebook"`
	Module   string `json:"module,omitempty"`
	Status   Status `json:"status"`

	// ModulePath and DocPath are set for the files actually written.
	ModulePath string `json:"module_path,omitempty"`
	DocPath    string `json:"doc_path,omitempty"`

	// Cells is the number of exported cells; Directives the number of
	// autodoc directives inserted.
	Cells      int `json:"cells"`
	Directives int `json:"directives"`

	Err error `json:"-"`
}

// Processor runs the pipeline for single notebooks. Its fields are shared
// read-only between concurrent calls to Process.
type Processor struct {
	Config   types.ProjectConfig
	Rewriter *imports.Rewriter
	Index    docindex.Index
	Logger   *zap.Logger
}

// Process exports one resolved notebook. Both artifacts are built in memory
// before anything is written, so parse, import and serialization failures
// leave no partial output.
func (p *Processor) Process(t layout.Target) Result {
	log := p.logger().With(zap.String("notebook", t.Notebook), zap.String("module", t.Module))
	res := Result{Notebook: t.Notebook, Module: t.Module}
	fail := func(err error) Result {
		res.Status = StatusFailed
		res.Err = err
		log.Debug("notebook failed", zap.Error(err))
		return res
	}

	nb, err := notebook.ParseFile(t.Notebook)
	if err != nil {
		return fail(err)
	}

	classified := classify.Classify(nb)
	units := classify.ExportUnits(classified)
	res.Cells = len(units)
	log.Debug("classified cells", zap.Int("cells", len(classified)), zap.Int("exported", len(units)))

	artifact, err := assemble.Assemble(units, p.Rewriter, t)
	if err != nil {
		return fail(err)
	}

	var doc []byte
	if t.DocPath != "" {
		index := p.Index.Union(docindex.FromNarrative(nb, t.Module))
		annotated, directives := annotate.Annotate(nb, classified, index, t.Module)
		res.Directives = len(directives)
		doc, err = notebook.Serialize(annotated)
		if err != nil {
			return fail(fmt.Errorf("serializing annotated notebook: %w", err))
		}
	}

	replaces := !artifact.Empty() || p.Config.EmptyModule == types.EmptyModuleWrite
	if replaces && assemble.HandEdited(artifact.Path) {
		log.Warn("overwriting module without provenance header", zap.String("path", artifact.Path))
	}
	written, err := assemble.Write(artifact, p.Config.EmptyModule)
	if err != nil {
		return fail(err)
	}
	res.Status = StatusSkipped
	if written {
		res.Status = StatusExported
		res.ModulePath = artifact.Path
	}

	if doc != nil {
		if err := fsutil.WriteFile(t.DocPath, doc); err != nil {
			return fail(err)
		}
		res.DocPath = t.DocPath
	}
	log.Debug("notebook processed", zap.String("status", string(res.Status)), zap.Int("directives", res.Directives))
	return res
}

func (p *Processor) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}
