// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ManuGH/vidresolve/internal/domain/video/model"
	"github.com/ManuGH/vidresolve/internal/domain/video/resolve"
)

type resolveLine struct {
	Reference string `json:"reference"`
	model.ResolvedVideo
	Playable bool `json:"playable"`
}

// newResolveCmd lets content staff check authored references offline.
func newResolveCmd(opts *rootOptions) *cobra.Command {
	var (
		origin    string
		fromStdin bool
	)
	cmd := &cobra.Command{
		Use:   "resolve [reference...]",
		Short: "Resolve references and print one JSON object per line",
		Example: `  vidresolve resolve "https://youtu.be/dQw4w9WgXcQ"
  vidresolve resolve --stdin < references.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && !fromStdin {
				return fmt.Errorf("no references given; pass them as arguments or use --stdin")
			}
			cfg, _, err := opts.load()
			if err != nil {
				return err
			}
			resolveOpts := cfg.ResolveOptions()
			if cmd.Flags().Changed("origin") {
				resolveOpts.Origin = origin
			}
			resolver := resolve.NewResolver(resolveOpts)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			emit := func(raw string) error {
				v := resolver.Resolve(raw)
				return enc.Encode(resolveLine{Reference: raw, ResolvedVideo: v, Playable: v.Playable()})
			}

			for _, raw := range args {
				if err := emit(raw); err != nil {
					return err
				}
			}
			if fromStdin {
				return eachLine(cmd.InOrStdin(), emit)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&origin, "origin", "", "embedding page origin (overrides resolver.origin)")
	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "read one reference per line from stdin")
	return cmd
}

func eachLine(r io.Reader, fn func(string) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), 1<<20)
	for sc.Scan() {
		if err := fn(sc.Text()); err != nil {
			return err
		}
	}
	return sc.Err()
}
