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
	"google.golang.org/protobuf/encoding/protowire"
)

// ChangeSet is a changeset record.  Stock osmformat.proto defines only the
// id field; fields 2-4 mirror the Way layout so that tags and provenance
// survive a round trip.  Files carrying id-only changesets still decode.
type ChangeSet struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
}

func (m *ChangeSet) Marshal() []byte {
	b := appendVarintField(nil, 1, uint64(m.ID))
	b = appendPackedUint32(b, 2, m.Keys)
	b = appendPackedUint32(b, 3, m.Vals)

	if m.Info != nil {
		b = appendBytesField(b, 4, m.Info.Marshal())
	}

	return b
}

func unmarshalChangeSet(b []byte) (*ChangeSet, error) {
	m := &ChangeSet{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		var err error

		switch num {
		case 1:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.ID = int64(v)
			}
		case 2:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Keys = append(m.Keys, uint32(v)) })
		case 3:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Vals = append(m.Vals, uint32(v)) })
		case 4:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.Info, err = unmarshalInfo(v)
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
