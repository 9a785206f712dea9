/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package cli implements the gocollage command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"gocollage/internal/config"
	applog "gocollage/internal/log"
	"gocollage/internal/version"
)

// app carries state shared by all subcommands once the root has run.
type app struct {
	configPath string
	verbose    bool
	cfg        config.AppConfig
}

// Execute runs the gocollage command line with os.Args.
func Execute(ctx context.Context) error {
	return NewRootCommand(os.Stdout).ExecuteContext(ctx)
}

// NewRootCommand builds the command tree writing user output to out.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "gocollage",
		Short:         "Photo collage editor",
		Long:          "gocollage arranges images in grid layouts and exports the result as PNG or PDF.",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetVersionTemplate("gocollage {{.Version}}\n")
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default: $"+config.EnvConfigPath+" or the user config dir)")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newLayoutsCmd(a))
	root.AddCommand(newRenderCmd(a))
	root.AddCommand(newUICmd(a))
	return root
}

func (a *app) setup() error {
	var (
		cfg     config.AppConfig
		loadErr error
	)
	if p := strings.TrimSpace(a.configPath); p != "" {
		cfg, loadErr = config.LoadFrom(p)
	} else {
		cfg, loadErr = config.Load()
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}
	applog.Init(applog.FromConfig(cfg.Logging))
	if loadErr != nil {
		applog.WithComponent("cli").Warn("config not loaded, using defaults", slog.Any("err", loadErr))
	}
	a.cfg = cfg
	return nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "gocollage", version.String())
		},
	}
}
