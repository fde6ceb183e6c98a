// Copyright 2025 the original author or authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli holds the pieces shared by the osmcat subcommands.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the root of the osmcat command tree; subcommands register
// themselves against it from their init functions.
var RootCmd = &cobra.Command{
	Use:   "osmcat",
	Short: "Tools for concatenating and inspecting OSM PBF files",
	Long:  "Tools for concatenating and inspecting OSM PBF files",
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		level := slog.LevelWarn
		if verbose, err := cmd.Flags().GetBool("verbose"); err == nil && verbose {
			level = slog.LevelInfo
		}

		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	},
}

func init() {
	RootCmd.PersistentFlags().BoolP("verbose", "v", false, "report progress details on stderr")
}

// Execute runs the root command, exiting non-zero on failure.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
