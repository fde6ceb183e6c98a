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

// Package cat implements the osmcat cat subcommand.
package cat

import (
	"fmt"
	"log"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/osmcat"
	"m4o.io/osmcat/cmd/osmcat/cli"
)

var compression osmcat.BlobCompression

func init() {
	cli.RootCmd.AddCommand(catCmd)

	flags := catCmd.Flags()
	flags.StringArrayP("object-type", "t", nil, "copy only objects of this type (node, way, relation, changeset); repeatable")
	flags.StringArrayP("clean", "c", nil, "clean attribute (version, changeset, timestamp, uid, user); repeatable")
	flags.StringP("output", "o", "", "output file name")
	flags.BoolP("overwrite", "O", false, "allow an existing output file to be overwritten")
	flags.Bool("fsync", false, "call fsync after writing the output file")
	flags.StringArray("output-header", nil, "set an output header field (KEY=VALUE); repeatable")
	flags.Var(cli.NewCompressionValue(osmcat.DefaultBlobCompression, &compression), "compression", "output blob compression (raw, zlib, lzma, lz4, zstd)")
	flags.Bool("no-progress", false, "disable the progress bar")

	if err := catCmd.MarkFlagRequired("output"); err != nil {
		panic(err)
	}
}

var catCmd = &cobra.Command{
	Use:   "cat <OSM file>...",
	Short: "Concatenate OSM files and convert to different formats",
	Long:  "Concatenate OSM files and convert to different formats",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		types, err := flags.GetStringArray("object-type")
		if err != nil {
			log.Fatal(err)
		}

		filter, err := osmcat.ParseTypeFilter(types)
		if err != nil {
			log.Fatal(err)
		}

		attrs, err := flags.GetStringArray("clean")
		if err != nil {
			log.Fatal(err)
		}

		clean, err := osmcat.ParseCleanSet(attrs)
		if err != nil {
			log.Fatal(err)
		}

		output, err := flags.GetString("output")
		if err != nil {
			log.Fatal(err)
		}

		overwrite, err := flags.GetBool("overwrite")
		if err != nil {
			log.Fatal(err)
		}

		fsync, err := flags.GetBool("fsync")
		if err != nil {
			log.Fatal(err)
		}

		overrides, err := flags.GetStringArray("output-header")
		if err != nil {
			log.Fatal(err)
		}

		noProgress, err := flags.GetBool("no-progress")
		if err != nil {
			log.Fatal(err)
		}

		opts := osmcat.Options{
			Inputs:          args,
			Output:          output,
			Filter:          filter,
			Clean:           clean,
			Overwrite:       overwrite,
			Fsync:           fsync,
			Compression:     compression,
			HeaderOverrides: overrides,
		}

		if !noProgress {
			opts.NewProgress = cli.NewProgressBar
		}

		written, err := osmcat.Run(opts)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Printf("Wrote %s to %s\n", humanize.Bytes(uint64(written)), output)
	},
}
