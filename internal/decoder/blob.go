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

// Package decoder reads OSMPBF blobs off a stream and parses them into
// model entities.
package decoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"m4o.io/osmcat/internal/core"
	"m4o.io/osmcat/internal/pb"
)

// ReadBlob reads the next blob framing off of rdr, returning the blob and
// the blob header type (OSMHeader or OSMData).  io.EOF is returned,
// unwrapped, at a clean end of stream.
func ReadBlob(rdr io.Reader) (*pb.Blob, string, error) {
	h, err := readBlobHeader(rdr)
	if err != nil {
		return nil, "", err
	}

	b, err := readBlobData(rdr, int64(h.Datasize))
	if err != nil {
		return nil, "", err
	}

	return b, h.Type, nil
}

// readBlobHeader unmarshals a blob header from its length-prefixed framing.
func readBlobHeader(rdr io.Reader) (*pb.BlobHeader, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	var size uint32

	err := binary.Read(rdr, binary.BigEndian, &size)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}

		return nil, fmt.Errorf("error reading blob size: %w", err)
	}

	if n, err := io.CopyN(buf, rdr, int64(size)); err != nil {
		return nil, fmt.Errorf("error reading blob header: %w", err)
	} else if n != int64(size) {
		return nil, fmt.Errorf("error reading blob header: expected %d bytes, got %d", size, n)
	}

	header, err := pb.UnmarshalBlobHeader(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling blob header: %w", err)
	}

	return header, nil
}

// readBlobData unmarshals the blob body that follows its header.
func readBlobData(rdr io.Reader, size int64) (*pb.Blob, error) {
	buf := core.NewPooledBuffer()
	defer buf.Close()

	if _, err := io.CopyN(buf, rdr, size); err != nil {
		return nil, fmt.Errorf("error reading blob: %w", err)
	}

	blob, err := pb.UnmarshalBlob(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("error unmarshalling blob: %w", err)
	}

	// the blob data aliases the pooled buffer; detach it before the pool
	// reclaims the storage
	blob.Data = append([]byte(nil), blob.Data...)

	return blob, nil
}
