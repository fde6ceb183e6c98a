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
	"encoding/binary"
	"fmt"
	"io"

	"m4o.io/osmcat/internal/pb"
)

// WriteBlob frames a packed blob with its blob header and writes both to
// wrtr.  kind is one of pb.TypeOSMHeader or pb.TypeOSMData.
func WriteBlob(wrtr io.Writer, kind string, packed []byte) error {
	hdr := &pb.BlobHeader{
		Type:     kind,
		Datasize: int32(len(packed)),
	}

	hb := hdr.Marshal()

	if err := binary.Write(wrtr, binary.BigEndian, uint32(len(hb))); err != nil {
		return fmt.Errorf("could not write header size: %w", err)
	}

	if _, err := wrtr.Write(hb); err != nil {
		return fmt.Errorf("could not write blob header: %w", err)
	}

	if _, err := wrtr.Write(packed); err != nil {
		return fmt.Errorf("could not write blob data: %w", err)
	}

	return nil
}
