// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/pdiddy/literate/internal/assemble"
	"github.com/pdiddy/literate/internal/notebook"
	"github.com/pdiddy/literate/pkg/types"
)

func project(t *testing.T) types.ProjectConfig {
	t.Helper()
	return types.ProjectConfig{
		Root:      t.TempDir(),
		SourceDir: "nbs",
		CodeDir:   "mypkg",
		DocDir:    "docs",
	}
}

func writeNotebook(t *testing.T, path string, cells ...types.Cell) string {
	t.Helper()
	data, err := notebook.Serialize(&types.Notebook{Format: 4, FormatMinor: 4, Cells: cells})
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func md(src string) types.Cell { return types.Cell{Type: types.CellMarkdown, Source: src} }

func code(src string, tags ...string) types.Cell {
	return types.Cell{Type: types.CellCode, Source: src, Tags: tags}
}

func titleNotebook(t *testing.T, cfg types.ProjectConfig) string {
	return writeNotebook(t, filepath.Join(cfg.Root, "nbs", "mod.ipynb"),
		md("# Title"),
		code("def f(): return 1", "export"),
		code("f()"),
	)
}

func TestRunBatch_EndToEnd(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := project(t)
	nb := titleNotebook(t, cfg)

	var out bytes.Buffer
	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{Out: &out})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	assert.Equal(t, 1, res.Exported)
	assert.False(t, res.HasFailures())

	r := res.Results[0]
	assert.Equal(t, "mypkg.mod", r.Module)
	assert.Equal(t, 1, r.Cells)
	assert.Equal(t, 1, r.Directives)

	module, err := os.ReadFile(filepath.Join(cfg.Root, "mypkg", "mod.py"))
	require.NoError(t, err)
	assert.Equal(t, assemble.Header("nbs/mod.ipynb")+"\n\ndef f(): return 1\n", string(module))

	doc, err := notebook.ParseFile(filepath.Join(cfg.Root, "docs", "mod.ipynb"))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 5)
	assert.Equal(t, "```{py:currentmodule} mypkg.mod\n```", doc.Cells[0].Source)
	assert.Equal(t, "# Title", doc.Cells[1].Source)
	assert.Nil(t, doc.Cells[1].Tags)
	assert.Equal(t, []string{"export", "remove-input"}, doc.Cells[2].Tags)
	assert.Equal(t, "```{autofunction} mypkg.mod.f\n```", doc.Cells[3].Source)
	assert.Equal(t, "f()", doc.Cells[4].Source)
	assert.Nil(t, doc.Cells[4].Tags)

	assert.Contains(t, out.String(), "exported: nbs/mod.ipynb -> mypkg/mod.py (1 cell, 1 directive)\n")
	assert.Contains(t, out.String(), "Batch summary: 1 exported, 0 skipped, 0 failed (total: 1)")
}

func TestRunBatch_Idempotent(t *testing.T) {
	cfg := project(t)
	nb := titleNotebook(t, cfg)
	modulePath := filepath.Join(cfg.Root, "mypkg", "mod.py")
	docPath := filepath.Join(cfg.Root, "docs", "mod.ipynb")

	_, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	firstModule, err := os.ReadFile(modulePath)
	require.NoError(t, err)
	firstDoc, err := os.ReadFile(docPath)
	require.NoError(t, err)

	_, err = RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	secondModule, err := os.ReadFile(modulePath)
	require.NoError(t, err)
	secondDoc, err := os.ReadFile(docPath)
	require.NoError(t, err)

	assert.Equal(t, firstModule, secondModule)
	assert.Equal(t, firstDoc, secondDoc)
}

func TestRunBatch_FailureIsolation(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := project(t)
	good := titleNotebook(t, cfg)
	bad := filepath.Join(cfg.Root, "nbs", "broken.ipynb")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))

	var out bytes.Buffer
	res, err := RunBatch(context.Background(), cfg, []string{bad, good}, Options{Out: &out, Jobs: 2})
	require.NoError(t, err)

	assert.Equal(t, 1, res.Exported)
	assert.Equal(t, 1, res.Failed)
	assert.True(t, res.HasFailures())
	assert.Equal(t, StatusFailed, res.Results[0].Status)
	assert.Equal(t, StatusExported, res.Results[1].Status)

	var fe *types.FormatError
	assert.True(t, errors.As(res.Results[0].Err, &fe))
	assert.NoFileExists(t, filepath.Join(cfg.Root, "mypkg", "broken.py"))
	assert.NoFileExists(t, filepath.Join(cfg.Root, "docs", "broken.ipynb"))
	assert.Contains(t, out.String(), "failed:  nbs/broken.ipynb (")
}

func TestRunBatch_CrossNotebookImports(t *testing.T) {
	cfg := project(t)
	a := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "a.ipynb"),
		code("def helper():\n    return 2", "export"))
	b := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "sub", "b.ipynb"),
		code("import os\nfrom mypkg.a import helper\n\ndef twice():\n    return 2 * helper()", "export"))

	res, err := RunBatch(context.Background(), cfg, []string{a, b}, Options{})
	require.NoError(t, err)
	require.Equal(t, 2, res.Exported, "results: %+v", res.Results)

	module, err := os.ReadFile(filepath.Join(cfg.Root, "mypkg", "sub", "b.py"))
	require.NoError(t, err)
	assert.Contains(t, string(module), "import os\nfrom ..a import helper\n")
}

func TestRunBatch_UnresolvableImport(t *testing.T) {
	cfg := project(t)
	nb := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "mod.ipynb"),
		code("from .missing import x", "export"))

	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)

	var ue *types.UnresolvableImportError
	assert.True(t, errors.As(res.Results[0].Err, &ue))
	assert.NoFileExists(t, filepath.Join(cfg.Root, "mypkg", "mod.py"))
	assert.NoFileExists(t, filepath.Join(cfg.Root, "docs", "mod.ipynb"), "no partial artifacts")
}

func TestRunBatch_EmptyModulePolicy(t *testing.T) {
	tests := []struct {
		name       string
		policy     types.EmptyModulePolicy
		wantStatus Status
		wantFile   bool
	}{
		{"default skips", "", StatusSkipped, false},
		{"skip", types.EmptyModuleSkip, StatusSkipped, false},
		{"write", types.EmptyModuleWrite, StatusExported, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := project(t)
			cfg.EmptyModule = tt.policy
			nb := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "notes.ipynb"), md("# Notes"), code("1 + 1"))

			res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Results[0].Status)

			modulePath := filepath.Join(cfg.Root, "mypkg", "notes.py")
			if tt.wantFile {
				data, err := os.ReadFile(modulePath)
				require.NoError(t, err)
				assert.Equal(t, assemble.Header("nbs/notes.ipynb")+"\n", string(data))
			} else {
				assert.NoFileExists(t, modulePath)
			}
			assert.FileExists(t, filepath.Join(cfg.Root, "docs", "notes.ipynb"), "narrative notebooks are still rendered")
		})
	}
}

func TestRunBatch_Collision(t *testing.T) {
	cfg := project(t)
	cfg.Modules = []types.ModuleRule{{Notebook: "00_core", Module: "core"}}
	first := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "00_core.ipynb"), code("x = 1", "export"))
	second := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "core.ipynb"), code("y = 2", "export"))

	res, err := RunBatch(context.Background(), cfg, []string{first, second}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failed)
	for _, r := range res.Results {
		var ce *types.ConfigError
		assert.True(t, errors.As(r.Err, &ce), "%s: %v", r.Notebook, r.Err)
	}
	assert.NoFileExists(t, filepath.Join(cfg.Root, "mypkg", "core.py"))
}

func TestRunBatch_InvalidConfig(t *testing.T) {
	cfg := project(t)
	cfg.CodeDir = ""
	nb := titleNotebook(t, cfg)

	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	require.Equal(t, 1, res.Failed)
	var ce *types.ConfigError
	require.True(t, errors.As(res.Results[0].Err, &ce))
	assert.Equal(t, "code_dir", ce.Field)
}

func TestRunBatch_DocIndex(t *testing.T) {
	cfg := project(t)
	cfg.DocIndex = "documented.txt"
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "documented.txt"), []byte("mypkg.mod.f\n"), 0o644))
	nb := titleNotebook(t, cfg)

	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Results[0].Directives)

	missing := cfg
	missing.DocIndex = "absent.txt"
	_, err = RunBatch(context.Background(), missing, []string{nb}, Options{})
	assert.Error(t, err, "an unreadable doc index stops the batch")
}

func TestRunBatch_NarrativeDirectivesCount(t *testing.T) {
	cfg := project(t)
	nb := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "mod.ipynb"),
		code("def f(): return 1", "export"),
		md("```{autofunction} f\n```"),
	)

	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Results[0].Directives, "symbol already documented in the narrative")

	doc, err := notebook.ParseFile(filepath.Join(cfg.Root, "docs", "mod.ipynb"))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 3)
	assert.Equal(t, "```{py:currentmodule} mypkg.mod\n```", doc.Cells[0].Source, "bare names resolve against the module")
}

func TestRunBatch_NoDocDir(t *testing.T) {
	cfg := project(t)
	cfg.DocDir = ""
	nb := titleNotebook(t, cfg)

	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusExported, res.Results[0].Status)
	assert.Empty(t, res.Results[0].DocPath)
	assert.NoDirExists(t, filepath.Join(cfg.Root, "docs"))
}

func TestRunBatch_Cancelled(t *testing.T) {
	cfg := project(t)
	nb := titleNotebook(t, cfg)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := RunBatch(ctx, cfg, []string{nb}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failed)
	assert.ErrorIs(t, res.Results[0].Err, context.Canceled)
}

func TestDiscover(t *testing.T) {
	cfg := project(t)
	cfg.DocDir = filepath.Join("nbs", "_docs")
	for _, rel := range []string{
		"nbs/b.ipynb",
		"nbs/a.ipynb",
		"nbs/sub/c.ipynb",
		"nbs/.ipynb_checkpoints/a-checkpoint.ipynb",
		"nbs/_docs/a.ipynb",
		"nbs/.hidden.ipynb",
	} {
		writeNotebook(t, filepath.Join(cfg.Root, filepath.FromSlash(rel)))
	}
	require.NoError(t, os.WriteFile(filepath.Join(cfg.Root, "nbs", "README.md"), []byte("notes"), 0o644))

	got, err := Discover(cfg)
	require.NoError(t, err)
	want := []string{
		filepath.Join(cfg.Root, "nbs", "a.ipynb"),
		filepath.Join(cfg.Root, "nbs", "b.ipynb"),
		filepath.Join(cfg.Root, "nbs", "sub", "c.ipynb"),
	}
	assert.Equal(t, want, got)
}

func TestDiscover_MissingSource(t *testing.T) {
	cfg := project(t)
	_, err := Discover(cfg)
	assert.Error(t, err)
}

func TestRunBatch_SubsetCollidesWithProjectNotebook(t *testing.T) {
	cfg := project(t)
	cfg.Modules = []types.ModuleRule{{Notebook: "00_core", Module: "core"}}
	first := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "00_core.ipynb"), code("x = 1", "export"))
	second := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "core.ipynb"), code("y = 2", "export"))

	for _, nb := range []string{second, first} {
		res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
		require.NoError(t, err)
		require.Len(t, res.Results, 1, "only the requested notebook is processed")
		assert.Equal(t, 1, res.Failed)

		var ce *types.ConfigError
		assert.True(t, errors.As(res.Results[0].Err, &ce), "%s: %v", nb, res.Results[0].Err)
	}
	assert.NoFileExists(t, filepath.Join(cfg.Root, "mypkg", "core.py"))
}

func TestRunBatch_SubsetResolvesUnexportedNotebookImports(t *testing.T) {
	cfg := project(t)
	writeNotebook(t, filepath.Join(cfg.Root, "nbs", "a.ipynb"), code("def helper():\n    return 2", "export"))
	b := writeNotebook(t, filepath.Join(cfg.Root, "nbs", "sub", "b.ipynb"),
		code("from mypkg.a import helper", "export"))

	res, err := RunBatch(context.Background(), cfg, []string{b}, Options{})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.Equal(t, 1, res.Exported)

	module, err := os.ReadFile(filepath.Join(cfg.Root, "mypkg", "sub", "b.py"))
	require.NoError(t, err)
	assert.Contains(t, string(module), "from ..a import helper\n")
	assert.NoFileExists(t, filepath.Join(cfg.Root, "mypkg", "a.py"), "a was not requested")
}

func TestRunBatch_RemovesModuleOfUnexportedNotebook(t *testing.T) {
	cfg := project(t)
	nb := titleNotebook(t, cfg)
	modulePath := filepath.Join(cfg.Root, "mypkg", "mod.py")

	_, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	require.FileExists(t, modulePath)

	writeNotebook(t, nb, md("# Title"), code("def f(): return 1"), code("f()"))
	res, err := RunBatch(context.Background(), cfg, []string{nb}, Options{})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, res.Results[0].Status)
	assert.NoFileExists(t, modulePath)
}
