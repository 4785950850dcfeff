// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ManuGH/vidresolve/internal/config"
)

const configPathEnv = config.EnvPrefix + "CONFIG"

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "vidresolve",
		Short:         "Video reference resolution and playback lifecycle service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		fmt.Sprintf("path to YAML config file (default $%s)", configPathEnv))

	root.AddCommand(
		newServeCmd(opts),
		newResolveCmd(opts),
		newConfigCmd(opts),
		newHealthcheckCmd(),
		newVersionCmd(),
	)
	return root
}

// path returns the explicit --config path, falling back to the environment.
// Empty means defaults plus environment only.
func (o *rootOptions) path() string {
	if p := strings.TrimSpace(o.configPath); p != "" {
		return p
	}
	return strings.TrimSpace(os.Getenv(configPathEnv))
}

func (o *rootOptions) load() (config.AppConfig, *config.Loader, error) {
	loader := config.NewLoader(o.path(), version)
	cfg, err := loader.Load()
	if err != nil {
		return config.AppConfig{}, nil, err
	}
	return cfg, loader, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (commit: %s, built: %s)\n", version, commit, buildDate)
			return err
		},
	}
}
