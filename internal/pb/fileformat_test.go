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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobHeaderRoundTrip(t *testing.T) {
	m := &BlobHeader{Type: TypeOSMData, Datasize: 12345}

	actual, err := UnmarshalBlobHeader(m.Marshal())
	require.NoError(t, err)
	assert.Equal(t, m, actual)
}

func TestBlobRoundTrip(t *testing.T) {
	for _, c := range []Compression{Raw, Zlib, Lzma, Lz4, Zstd} {
		m := &Blob{Compression: c, Data: []byte{0xde, 0xad, 0xbe, 0xef}}
		if c != Raw {
			m.RawSize = 4
		}

		actual, err := UnmarshalBlob(m.Marshal())
		require.NoError(t, err)
		assert.Equal(t, m, actual, "compression %s", c)
	}
}

func TestBlobRawOmitsRawSize(t *testing.T) {
	m := &Blob{Compression: Raw, RawSize: 99, Data: []byte{1}}

	actual, err := UnmarshalBlob(m.Marshal())
	require.NoError(t, err)
	assert.EqualValues(t, 0, actual.RawSize)
}

func TestCompressionString(t *testing.T) {
	assert.Equal(t, "raw", Raw.String())
	assert.Equal(t, "zlib", Zlib.String())
	assert.Equal(t, "lzma", Lzma.String())
	assert.Equal(t, "lz4", Lz4.String())
	assert.Equal(t, "zstd", Zstd.String())
}

func TestUnmarshalBlobHeaderMalformed(t *testing.T) {
	_, err := UnmarshalBlobHeader([]byte{0xff})
	assert.ErrorIs(t, err, ErrMalformedMessage)
}
