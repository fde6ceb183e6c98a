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

package pb

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Blob header types.
const (
	TypeOSMHeader = "OSMHeader"
	TypeOSMData   = "OSMData"
)

// Compression identifies which fileformat.proto data field carries the blob
// payload.
type Compression int

const (
	Raw Compression = iota
	Zlib
	Lzma
	Lz4
	Zstd
)

func (c Compression) String() string {
	switch c {
	case Raw:
		return "raw"
	case Zlib:
		return "zlib"
	case Lzma:
		return "lzma"
	case Lz4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

// BlobHeader frames a Blob in the file stream.
type BlobHeader struct {
	Type      string
	IndexData []byte
	Datasize  int32
}

func (m *BlobHeader) Marshal() []byte {
	b := appendStringField(nil, 1, m.Type)

	if len(m.IndexData) > 0 {
		b = appendBytesField(b, 2, m.IndexData)
	}

	return appendVarintField(b, 3, uint64(int64(m.Datasize)))
}

func UnmarshalBlobHeader(b []byte) (*BlobHeader, error) {
	m := &BlobHeader{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		var err error

		switch num {
		case 1:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.Type = string(v)
			}
		case 2:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.IndexData = v
			}
		case 3:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.Datasize = int32(int64(v))
			}
		default:
			n, err = skipField(b, num, typ)
		}

		if err != nil {
			return nil, err
		}

		b = b[n:]
	}

	return m, nil
}

// Blob is one compressed unit of the file, either the OSM header or a
// primitive block.
type Blob struct {
	RawSize     int32
	Compression Compression
	Data        []byte
}

// dataField maps a Compression to its fileformat.proto field number.  Field
// 5 (bzip2) is deprecated and never written.
func (c Compression) dataField() protowire.Number {
	switch c {
	case Raw:
		return 1
	case Zlib:
		return 3
	case Lzma:
		return 4
	case Lz4:
		return 6
	case Zstd:
		return 7
	default:
		panic(fmt.Sprintf("unknown compression type: %v", c))
	}
}

func (m *Blob) Marshal() []byte {
	var b []byte

	if m.Compression != Raw {
		b = appendVarintField(b, 2, uint64(int64(m.RawSize)))
	}

	return appendBytesField(b, m.Compression.dataField(), m.Data)
}

func UnmarshalBlob(b []byte) (*Blob, error) {
	m := &Blob{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		var err error

		switch num {
		case 1, 3, 4, 6, 7:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.Data = v

				switch num {
				case 1:
					m.Compression = Raw
				case 3:
					m.Compression = Zlib
				case 4:
					m.Compression = Lzma
				case 6:
					m.Compression = Lz4
				case 7:
					m.Compression = Zstd
				}
			}
		case 2:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.RawSize = int32(int64(v))
			}
		default:
			n, err = skipField(b, num, typ)
		}

		if err != nil {
			return nil, err
		}

		b = b[n:]
	}

	return m, nil
}
