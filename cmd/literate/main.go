// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the literate CLI.
// Subcommands: sync, watch, config, version.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pdiddy/literate/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// logger carries diagnostics. Status lines go to the command's output.
var logger = zap.NewNop()

// configErr records a failure to read an explicitly requested config file.
var configErr error

// rootCmd is the base command for the literate CLI.
var rootCmd = &cobra.Command{
	Use:   "literate",
	Short: "Export Python modules and rendered docs from Jupyter notebooks",
	Long: `literate treats notebooks as the source of truth for a Python package.
Cells tagged export or export-internal are assembled into modules under the
package directory, with imports between notebooks rewritten as relative
imports. A copy of each notebook is written for the documentation site with
exported code hidden and autodoc directives added for public symbols.

Settings come from literate.yaml, LITERATE_* environment variables and flags.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configErr != nil {
			return configErr
		}
		verbose, _ := cmd.Flags().GetBool("verbose")
		l, err := newLogger(verbose)
		if err != nil {
			return err
		}
		logger = l
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("using config file", zap.String("path", f))
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./"+configName+" or ~/.config/literate/"+configName+")")
	pf.BoolP("verbose", "v", false, "log diagnostics at debug level")
	pf.String("source-dir", "", "directory containing source notebooks")
	pf.String("code-dir", "", "package directory receiving generated modules")
	pf.String("doc-dir", "", "directory receiving annotated notebooks")
	pf.String("doc-index", "", "file listing already documented symbols")
	pf.Int("jobs", 0, "notebooks processed concurrently (0 = number of CPUs)")

	for key, flag := range map[string]string{
		"source_dir": "source-dir",
		"code_dir":   "code-dir",
		"doc_dir":    "doc-dir",
		"doc_index":  "doc-index",
		"jobs":       "jobs",
	} {
		_ = viper.BindPFlag(key, pf.Lookup(flag))
	}

	viper.SetDefault("source_dir", "notebooks")
	viper.SetDefault("code_dir", "")
	viper.SetDefault("doc_dir", "docs")
	viper.SetDefault("doc_index", "")
	viper.SetDefault("empty_module", string(types.EmptyModuleSkip))
	viper.SetDefault("jobs", 0)
}

// configName is the config file looked up when --config is not given.
const configName = "literate.yaml"

// configCandidates lists the default config locations in lookup order.
func configCandidates() []string {
	paths := []string{configName}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "literate", configName))
	}
	return paths
}

func initConfig() {
	configErr = nil
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	explicit := cfgFile != ""
	if !explicit {
		for _, p := range configCandidates() {
			if info, err := os.Stat(p); err == nil && !info.IsDir() {
				cfgFile = p
				break
			}
		}
	}

	viper.SetEnvPrefix("LITERATE")
	viper.AutomaticEnv()

	if cfgFile == "" {
		return
	}
	viper.SetConfigFile(cfgFile)
	if err := viper.ReadInConfig(); err != nil && explicit {
		configErr = fmt.Errorf("reading config %s: %w", cfgFile, err)
	}
}

// loadConfig decodes the merged settings. Relative directories resolve
// against the directory holding the config file, or the working directory
// when there is none.
func loadConfig() (types.ProjectConfig, error) {
	var cfg types.ProjectConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	if filepath.IsAbs(cfg.Root) {
		return cfg, nil
	}
	base, err := configRoot()
	if err != nil {
		return cfg, err
	}
	cfg.Root = filepath.Join(base, cfg.Root)
	return cfg, nil
}

func configRoot() (string, error) {
	if f := viper.ConfigFileUsed(); f != "" {
		abs, err := filepath.Abs(f)
		if err != nil {
			return "", fmt.Errorf("resolving config path: %w", err)
		}
		return filepath.Dir(abs), nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("resolving working directory: %w", err)
	}
	return wd, nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = "console"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	l, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return l, nil
}

func main() {
	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}
