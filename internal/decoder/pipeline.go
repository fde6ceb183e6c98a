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
	"context"
	"errors"
	"io"
	"log/slog"

	"m4o.io/osmcat/internal/core"
	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

// GenerateBlobReader creates an iterator that yields the primitive blobs
// read off of the reader, in file order.  Blobs other than OSMData are
// skipped.  The iterator stops at io.EOF without yielding an error.
func GenerateBlobReader(ctx context.Context, reader io.Reader) func(yield func(blob *pb.Blob, err error) bool) {
	return func(yield func(blob *pb.Blob, err error) bool) {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			blob, kind, err := ReadBlob(reader)
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Error("unable to read blob", "error", err)
					yield(nil, err)
				}

				return
			}

			if kind != pb.TypeOSMData {
				continue
			}

			if !yield(blob, nil) {
				return
			}
		}
	}
}

// Decode unpacks one primitive blob and parses it into model entities.
// Safe for concurrent use, one blob per call.
func Decode(blob *pb.Blob) ([]model.Entity, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	unpacked, err := unpack(buf, blob)
	if err != nil {
		slog.Error("unable to unpack blob", "error", err)

		return nil, err
	}

	entities, err := parsePrimitiveBlock(unpacked)
	if err != nil {
		slog.Error("unable to parse block", "error", err)

		return nil, err
	}

	return entities, nil
}
