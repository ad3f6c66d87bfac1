// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/literate/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-export notebooks as they are saved",
	Long: `Watch runs a full sync, then re-exports each notebook under source_dir when
it changes. Saves arriving in quick succession are coalesced. Stop with Ctrl-C.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		debounce, _ := cmd.Flags().GetDuration("debounce")

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()

		return pipeline.Watch(ctx, cfg, pipeline.WatchOptions{
			Options: pipeline.Options{
				Out:    cmd.OutOrStdout(),
				Logger: logger,
			},
			Debounce: debounce,
		})
	},
}

func init() {
	watchCmd.Flags().Duration("debounce", pipeline.DefaultDebounce, "quiet period before exporting changed notebooks")

	rootCmd.AddCommand(watchCmd)
}
