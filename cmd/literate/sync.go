// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literate/internal/pipeline"
)

var syncCmd = &cobra.Command{
	Use:   "sync [notebooks...]",
	Short: "Export modules and annotated notebooks",
	Long: `Sync exports the given notebooks, or every notebook under source_dir when
none are named. Each notebook yields a module under code_dir and, when doc_dir
is set, an annotated copy for the documentation site. A notebook that fails
does not stop the others; the command exits non-zero if any failed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		paths := args
		if len(paths) == 0 {
			if paths, err = pipeline.Discover(cfg); err != nil {
				return err
			}
		}

		res, err := pipeline.RunBatch(cmd.Context(), cfg, paths, pipeline.Options{
			Out:    cmd.OutOrStdout(),
			Logger: logger,
		})
		if err != nil {
			return err
		}
		if res.HasFailures() {
			return fmt.Errorf("%d of %d notebooks failed", res.Failed, res.Total())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}
