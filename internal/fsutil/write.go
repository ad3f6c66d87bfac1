// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fsutil holds the filesystem writes shared by the artifact emitters.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/pdiddy/literate/pkg/types"
)

// WriteFile replaces path with data, creating parent directories as needed.
// The content is written to a temporary sibling first and renamed into
// place, so readers never see a half-written file. Failures are returned as
// *types.WriteError.
func WriteFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &types.WriteError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return &types.WriteError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func(err error) error {
		tmp.Close()
		os.Remove(tmpName)
		return &types.WriteError{Path: path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		return cleanup(err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &types.WriteError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &types.WriteError{Path: path, Err: err}
	}
	return nil
}
