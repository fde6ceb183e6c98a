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

// Package info implements the osmcat info subcommand.
package info

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"m4o.io/osmcat"
	"m4o.io/osmcat/cmd/osmcat/cli"
	"m4o.io/osmcat/model"
)

var out io.Writer = os.Stdout

type extendedHeader struct {
	model.Header

	NodeCount      int64
	WayCount       int64
	RelationCount  int64
	ChangesetCount int64

	// DataBoundingBox covers the nodes actually present in the file, as
	// opposed to the bounding box the header declares.  Nil when the file
	// holds no nodes or the scan was skipped.
	DataBoundingBox *model.BoundingBox `json:",omitempty"`
}

func init() {
	cli.RootCmd.AddCommand(infoCmd)

	flags := infoCmd.Flags()
	flags.BoolP("json", "j", false, "format information in JSON")
	flags.BoolP("extended", "e", false, "provide extended information (scans entire file)")
}

var infoCmd = &cobra.Command{
	Use:   "info <OSM file>",
	Short: "Print information about an OSM file",
	Long:  "Print information about an OSM file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()

		extended, err := flags.GetBool("extended")
		if err != nil {
			log.Fatal(err)
		}

		jsonfmt, err := flags.GetBool("json")
		if err != nil {
			log.Fatal(err)
		}

		info, err := runInfo(args[0], extended, !jsonfmt)
		if err != nil {
			log.Fatal(err)
		}

		if jsonfmt {
			renderJSON(info, extended)
		} else {
			renderTxt(info, extended)
		}
	},
}

func runInfo(path string, extended, progress bool) (*extendedHeader, error) {
	rdr, err := osmcat.NewReader(path, osmcat.TypeFilter{})
	if err != nil {
		return nil, err
	}
	defer rdr.Close()

	info := &extendedHeader{Header: rdr.Header()}

	if !extended {
		return info, nil
	}

	prog := osmcat.NopProgress
	if progress {
		prog = cli.NewProgressBar(rdr.Size())
	}

	bbox := model.InitialBoundingBox()

	for {
		buf, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return nil, err
		}

		prog.Update(rdr.Offset())

		for _, e := range buf.Entities {
			switch e := e.(type) {
			case *model.Node:
				info.NodeCount++

				bbox.ExpandWithLatLng(e.Lat, e.Lon)
			case *model.Way:
				info.WayCount++
			case *model.Relation:
				info.RelationCount++
			case *model.Changeset:
				info.ChangesetCount++
			}
		}
	}

	prog.Done()

	if info.NodeCount > 0 {
		info.DataBoundingBox = bbox
	}

	return info, nil
}

func renderJSON(info *extendedHeader, extended bool) {
	// marshall the smallest struct needed
	var v interface{}
	if extended {
		v = info
	} else {
		v = info.Header
	}

	b, err := json.Marshal(v)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Fprint(out, string(b))
}

func renderTxt(info *extendedHeader, extended bool) {
	fmt.Fprintf(out, "BoundingBox: %s\n", info.BoundingBox)
	fmt.Fprintf(out, "RequiredFeatures: %s\n", strings.Join(info.RequiredFeatures, ", "))
	fmt.Fprintf(out, "OptionalFeatures: %v\n", strings.Join(info.OptionalFeatures, ", "))
	fmt.Fprintf(out, "WritingProgram: %s\n", info.WritingProgram)
	fmt.Fprintf(out, "Source: %s\n", info.Source)
	fmt.Fprintf(out, "OsmosisReplicationTimestamp: %s\n", info.OsmosisReplicationTimestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(out, "OsmosisReplicationSequenceNumber: %d\n", info.OsmosisReplicationSequenceNumber)
	fmt.Fprintf(out, "OsmosisReplicationBaseURL: %s\n", info.OsmosisReplicationBaseURL)

	if extended {
		if info.DataBoundingBox != nil {
			fmt.Fprintf(out, "DataBoundingBox: %s\n", info.DataBoundingBox)
		}

		fmt.Fprintf(out, "NodeCount: %s\n", humanize.Comma(info.NodeCount))
		fmt.Fprintf(out, "WayCount: %s\n", humanize.Comma(info.WayCount))
		fmt.Fprintf(out, "RelationCount: %s\n", humanize.Comma(info.RelationCount))
		fmt.Fprintf(out, "ChangesetCount: %s\n", humanize.Comma(info.ChangesetCount))
	}
}
