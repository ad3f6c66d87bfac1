// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/literate/internal/imports"
	"github.com/pdiddy/literate/internal/layout"
	"github.com/pdiddy/literate/pkg/types"
)

func unit(i int, src string) types.ClassifiedCell {
	return types.ClassifiedCell{Index: i, Tag: types.TagExport, Cell: types.Cell{Type: types.CellCode, Source: src}}
}

func testTarget(dir string) layout.Target {
	return layout.Target{
		SourcePath: "nbs/sub/a.ipynb",
		Module:     "pkg.sub.a",
		CodePath:   filepath.Join(dir, "pkg", "sub", "a.py"),
	}
}

func testRewriter() *imports.Rewriter {
	return imports.NewRewriter(imports.NewTable("pkg", map[string]string{
		"pkg.sub.a": "pkg/sub/a.py",
		"pkg.sub.b": "pkg/sub/b.py",
	}))
}

func TestAssemble_OrderAndSeparators(t *testing.T) {
	units := []types.ClassifiedCell{
		unit(1, "import pkg.sub.b\n\n"),
		unit(3, "\n\ndef f():\n    return b.g()  \n"),
		unit(4, "   \n"),
		unit(6, "class C:\n    pass"),
	}

	a, err := Assemble(units, testRewriter(), testTarget(t.TempDir()))
	require.NoError(t, err)

	assert.Equal(t, []string{
		"from . import b",
		"def f():\n    return b.g()",
		"class C:\n    pass",
	}, a.Fragments, "blank cells are dropped and order is preserved")

	want := Header("nbs/sub/a.ipynb") + "\n\n" +
		"from . import b\n\n" +
		"def f():\n    return b.g()\n\n" +
		"class C:\n    pass\n"
	assert.Equal(t, want, string(a.Bytes()))
}

func TestAssemble_Header(t *testing.T) {
	a, err := Assemble([]types.ClassifiedCell{unit(0, "x = 1")}, testRewriter(), testTarget(t.TempDir()))
	require.NoError(t, err)

	lines := strings.Split(string(a.Bytes()), "\n")
	require.Greater(t, len(lines), 4)
	assert.True(t, strings.HasPrefix(lines[0], "# AUTOGENERATED"))
	assert.Contains(t, lines[2], "nbs/sub/a.ipynb")
	assert.Empty(t, lines[3], "header is followed by one blank line")
	assert.Equal(t, "x = 1", lines[4])
	assert.True(t, IsGenerated(a.Bytes()))
	assert.False(t, IsGenerated([]byte("x = 1\n")))
}

func TestAssemble_CommentsMagics(t *testing.T) {
	a, err := Assemble([]types.ClassifiedCell{unit(0, "%load_ext autoreload\n!pip install x\nx = 1\n    %notmagic")}, testRewriter(), testTarget(t.TempDir()))
	require.NoError(t, err)
	assert.Equal(t, []string{"# %load_ext autoreload\n# !pip install x\nx = 1\n    %notmagic"}, a.Fragments)
}

func TestAssemble_UnresolvableImport(t *testing.T) {
	_, err := Assemble([]types.ClassifiedCell{unit(2, "from .missing import x")}, testRewriter(), testTarget(t.TempDir()))

	var ue *types.UnresolvableImportError
	require.True(t, errors.As(err, &ue))
	assert.Contains(t, err.Error(), "cell 2")
}

func TestWrite(t *testing.T) {
	tests := []struct {
		name      string
		units     []types.ClassifiedCell
		policy    types.EmptyModulePolicy
		preCreate bool
		wantFile  bool
	}{
		{name: "writes module", units: []types.ClassifiedCell{unit(0, "x = 1")}, policy: types.EmptyModuleSkip, wantFile: true},
		{name: "overwrites existing", units: []types.ClassifiedCell{unit(0, "x = 1")}, preCreate: true, wantFile: true},
		{name: "empty skipped", policy: types.EmptyModuleSkip},
		{name: "empty skipped by default"},
		{name: "empty written as header only", policy: types.EmptyModuleWrite, wantFile: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := testTarget(t.TempDir())
			if tt.preCreate {
				require.NoError(t, os.MkdirAll(filepath.Dir(target.CodePath), 0o755))
				require.NoError(t, os.WriteFile(target.CodePath, []byte("hand written\n"), 0o644))
				assert.True(t, HandEdited(target.CodePath))
			}

			a, err := Assemble(tt.units, testRewriter(), target)
			require.NoError(t, err)

			written, err := Write(a, tt.policy)
			require.NoError(t, err)
			assert.Equal(t, tt.wantFile, written)

			data, err := os.ReadFile(target.CodePath)
			if !tt.wantFile {
				assert.True(t, os.IsNotExist(err), "no file expected")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, string(a.Bytes()), string(data))
			assert.False(t, HandEdited(target.CodePath))
		})
	}
}

func TestWrite_EmptyRemovesStaleModule(t *testing.T) {
	tests := []struct {
		name     string
		existing func(target layout.Target) string
		policy   types.EmptyModulePolicy
		wantKept bool
	}{
		{
			name:     "generated module removed",
			existing: func(target layout.Target) string { return Header(target.SourcePath) + "\n\nx = 1\n" },
			policy:   types.EmptyModuleSkip,
		},
		{
			name:     "generated module removed by default",
			existing: func(target layout.Target) string { return Header(target.SourcePath) + "\n" },
		},
		{
			name:     "hand written file kept",
			existing: func(layout.Target) string { return "x = 1\n" },
			policy:   types.EmptyModuleSkip,
			wantKept: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := testTarget(t.TempDir())
			require.NoError(t, os.MkdirAll(filepath.Dir(target.CodePath), 0o755))
			require.NoError(t, os.WriteFile(target.CodePath, []byte(tt.existing(target)), 0o644))

			a, err := Assemble(nil, testRewriter(), target)
			require.NoError(t, err)
			written, err := Write(a, tt.policy)
			require.NoError(t, err)
			assert.False(t, written)

			if tt.wantKept {
				assert.FileExists(t, target.CodePath)
			} else {
				assert.NoFileExists(t, target.CodePath)
			}
		})
	}
}
