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

package cli

import (
	"fmt"

	"github.com/spf13/pflag"

	"m4o.io/osmcat"
)

// -- osmcat.BlobCompression Value
type compressionValue struct {
	value *osmcat.BlobCompression
}

// NewCompressionValue creates a pflag Value for an osmcat.BlobCompression.
func NewCompressionValue(def osmcat.BlobCompression, p *osmcat.BlobCompression) pflag.Value {
	cv := &compressionValue{value: p}
	*cv.value = def

	return cv
}

func (c *compressionValue) Set(val string) error {
	switch val {
	case "raw":
		*c.value = osmcat.RAW
	case "zlib":
		*c.value = osmcat.ZLIB
	case "lzma":
		*c.value = osmcat.LZMA
	case "lz4":
		*c.value = osmcat.LZ4
	case "zstd":
		*c.value = osmcat.ZSTD
	default:
		return fmt.Errorf("unknown compression %q", val)
	}

	return nil
}

func (c *compressionValue) Type() string {
	return "compression"
}

func (c *compressionValue) String() string {
	return (*c.value).String()
}
