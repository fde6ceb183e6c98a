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

	"m4o.io/osmcat/internal/encoder/packers"
	"m4o.io/osmcat/internal/pb"
)

// BlobCompression selects the compression applied to blob payloads.
type BlobCompression = pb.Compression

const (
	RAW  = pb.Raw
	ZLIB = pb.Zlib
	LZMA = pb.Lzma
	LZ4  = pb.Lz4
	ZSTD = pb.Zstd
)

// Packer is the interface that groups methods for packing the contents of a
// PBF blob and saving the packed data in the correct place.
type Packer interface {
	// WriteCloser is used to write the contents of the blob to be packed.
	// Be sure to call the Close method to ensure that all the contents are
	// packed.
	io.WriteCloser

	// SaveTo will save the packed contents to the blob under the correct
	// compression field.
	SaveTo(blob *pb.Blob)
}

// Pack compresses a marshaled block body into a marshaled blob.
func Pack(body []byte, c BlobCompression) ([]byte, error) {
	p := newPacker(c)

	if _, err := p.Write(body); err != nil {
		return nil, fmt.Errorf("could not compress message: %w", err)
	}

	if err := p.Close(); err != nil {
		return nil, fmt.Errorf("could not close packer: %w", err)
	}

	blob := &pb.Blob{
		RawSize: int32(len(body)),
	}

	p.SaveTo(blob)

	return blob.Marshal(), nil
}

// newPacker creates the appropriate Packer for the compression.
func newPacker(c BlobCompression) Packer {
	switch c {
	case RAW:
		return packers.NewRawPacker()
	case ZLIB:
		return packers.NewZlibPacker()
	case LZMA:
		return packers.NewLzmaPacker()
	case LZ4:
		return packers.NewLz4Packer()
	case ZSTD:
		return packers.NewZstdPacker()
	default:
		panic(fmt.Errorf("unknown compression type: %v", c))
	}
}
