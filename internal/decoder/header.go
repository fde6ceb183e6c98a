// Copyright 2017-25 the original author or authors.
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

package decoder

import (
	"fmt"
	"io"
	"time"

	"m4o.io/osmcat/internal/core"
	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

// LoadHeader reads the leading OSMHeader blob off of reader and converts it
// into the model header.
func LoadHeader(reader io.Reader) (model.Header, error) {
	blob, kind, err := ReadBlob(reader)
	if err != nil {
		return model.Header{}, err
	}

	if kind != pb.TypeOSMHeader {
		return model.Header{}, fmt.Errorf("expected leading %s blob but got %s", pb.TypeOSMHeader, kind)
	}

	buf := core.NewPooledBuffer()
	defer buf.Close()

	unpacked, err := unpack(buf, blob)
	if err != nil {
		return model.Header{}, err
	}

	hb, err := pb.UnmarshalHeaderBlock(unpacked)
	if err != nil {
		return model.Header{}, fmt.Errorf("unable to unmarshal header block: %w", err)
	}

	header := model.Header{
		RequiredFeatures:                 hb.RequiredFeatures,
		OptionalFeatures:                 hb.OptionalFeatures,
		WritingProgram:                   hb.WritingProgram,
		Source:                           hb.Source,
		OsmosisReplicationSequenceNumber: hb.OsmosisReplicationSequenceNumber,
		OsmosisReplicationBaseURL:        hb.OsmosisReplicationBaseURL,
	}

	if hb.BBox != nil {
		header.BoundingBox = &model.BoundingBox{
			Left:   model.ToDegrees(0, 1, hb.BBox.Left),
			Right:  model.ToDegrees(0, 1, hb.BBox.Right),
			Top:    model.ToDegrees(0, 1, hb.BBox.Top),
			Bottom: model.ToDegrees(0, 1, hb.BBox.Bottom),
		}
	}

	if hb.OsmosisReplicationTimestamp != 0 {
		header.OsmosisReplicationTimestamp = time.Unix(hb.OsmosisReplicationTimestamp, 0).UTC()
	}

	return header, nil
}
