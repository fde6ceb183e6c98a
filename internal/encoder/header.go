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

package encoder

import (
	"fmt"
	"io"

	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

// SaveHeader packs the model header into an OSMHeader blob and writes it to
// wrtr.
func SaveHeader(wrtr io.Writer, hdr model.Header, compression BlobCompression) error {
	hb := &pb.HeaderBlock{
		RequiredFeatures:                 hdr.RequiredFeatures,
		OptionalFeatures:                 hdr.OptionalFeatures,
		WritingProgram:                   hdr.WritingProgram,
		Source:                           hdr.Source,
		OsmosisReplicationSequenceNumber: hdr.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        hdr.OsmosisReplicationBaseURL,
	}

	if bbox := hdr.BoundingBox; bbox != nil {
		hb.BBox = &pb.HeaderBBox{
			Top:    model.ToCoordinate(0, 1, bbox.Top),
			Left:   model.ToCoordinate(0, 1, bbox.Left),
			Bottom: model.ToCoordinate(0, 1, bbox.Bottom),
			Right:  model.ToCoordinate(0, 1, bbox.Right),
		}
	}

	if ts := hdr.OsmosisReplicationTimestamp; !ts.IsZero() {
		hb.OsmosisReplicationTimestamp = ts.Unix()
	}

	packed, err := Pack(hb.Marshal(), compression)
	if err != nil {
		return fmt.Errorf("could not pack header: %w", err)
	}

	if err := WriteBlob(wrtr, pb.TypeOSMHeader, packed); err != nil {
		return fmt.Errorf("could not write header: %w", err)
	}

	return nil
}
