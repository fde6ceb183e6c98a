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

// Defaults applied when a PrimitiveBlock omits its granularity fields.
const (
	DefaultGranularity     = 100
	DefaultDateGranularity = 1000
)

// HeaderBBox is the bounding box of a HeaderBlock, in nanodegrees.
type HeaderBBox struct {
	Left   int64
	Right  int64
	Top    int64
	Bottom int64
}

func (m *HeaderBBox) Marshal() []byte {
	b := appendSintField(nil, 1, m.Left)
	b = appendSintField(b, 2, m.Right)
	b = appendSintField(b, 3, m.Top)

	return appendSintField(b, 4, m.Bottom)
}

func UnmarshalHeaderBBox(b []byte) (*HeaderBBox, error) {
	m := &HeaderBBox{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		var err error

		switch num {
		case 1, 2, 3, 4:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				s := protowire.DecodeZigZag(v)

				switch num {
				case 1:
					m.Left = s
				case 2:
					m.Right = s
				case 3:
					m.Top = s
				case 4:
					m.Bottom = s
				}
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

// HeaderBlock is the file-level metadata carried by the OSMHeader blob.
type HeaderBlock struct {
	BBox                             *HeaderBBox
	RequiredFeatures                 []string
	OptionalFeatures                 []string
	WritingProgram                   string
	Source                           string
	OsmosisReplicationTimestamp      int64
	OsmosisReplicationSequenceNumber int64
	OsmosisReplicationBaseURL        string
}

func (m *HeaderBlock) Marshal() []byte {
	var b []byte

	if m.BBox != nil {
		b = appendBytesField(b, 1, m.BBox.Marshal())
	}

	for _, f := range m.RequiredFeatures {
		b = appendStringField(b, 4, f)
	}

	for _, f := range m.OptionalFeatures {
		b = appendStringField(b, 5, f)
	}

	if m.WritingProgram != "" {
		b = appendStringField(b, 16, m.WritingProgram)
	}

	if m.Source != "" {
		b = appendStringField(b, 17, m.Source)
	}

	if m.OsmosisReplicationTimestamp != 0 {
		b = appendVarintField(b, 32, uint64(m.OsmosisReplicationTimestamp))
	}

	if m.OsmosisReplicationSequenceNumber != 0 {
		b = appendVarintField(b, 33, uint64(m.OsmosisReplicationSequenceNumber))
	}

	if m.OsmosisReplicationBaseURL != "" {
		b = appendStringField(b, 34, m.OsmosisReplicationBaseURL)
	}

	return b
}

func UnmarshalHeaderBlock(b []byte) (*HeaderBlock, error) {
	m := &HeaderBlock{}

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
				m.BBox, err = UnmarshalHeaderBBox(v)
			}
		case 4:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.RequiredFeatures = append(m.RequiredFeatures, string(v))
			}
		case 5:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.OptionalFeatures = append(m.OptionalFeatures, string(v))
			}
		case 16:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.WritingProgram = string(v)
			}
		case 17:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.Source = string(v)
			}
		case 32:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.OsmosisReplicationTimestamp = int64(v)
			}
		case 33:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.OsmosisReplicationSequenceNumber = int64(v)
			}
		case 34:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.OsmosisReplicationBaseURL = string(v)
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

// StringTable interns all strings referenced by a PrimitiveBlock.  Index 0
// is reserved as a delimiter and never referenced.
type StringTable struct {
	S []string
}

func (m *StringTable) Marshal() []byte {
	var b []byte
	for _, s := range m.S {
		b = appendStringField(b, 1, s)
	}

	return b
}

func unmarshalStringTable(b []byte) (*StringTable, error) {
	m := &StringTable{}

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
				m.S = append(m.S, string(v))
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

// Info is the non-dense provenance block of a single entity.
type Info struct {
	Version   int32
	Timestamp int64
	Changeset int64
	UID       int32
	UserSid   uint32
	Visible   *bool
}

func (m *Info) Marshal() []byte {
	var b []byte

	if m.Version != 0 {
		b = appendVarintField(b, 1, uint64(int64(m.Version)))
	}

	if m.Timestamp != 0 {
		b = appendVarintField(b, 2, uint64(m.Timestamp))
	}

	if m.Changeset != 0 {
		b = appendVarintField(b, 3, uint64(m.Changeset))
	}

	if m.UID != 0 {
		b = appendVarintField(b, 4, uint64(int64(m.UID)))
	}

	if m.UserSid != 0 {
		b = appendVarintField(b, 5, uint64(m.UserSid))
	}

	if m.Visible != nil {
		var v uint64
		if *m.Visible {
			v = 1
		}

		b = appendVarintField(b, 6, v)
	}

	return b
}

func unmarshalInfo(b []byte) (*Info, error) {
	m := &Info{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		v, n, err := consumeVarintField(b, typ)
		if err != nil {
			if n, err = skipField(b, num, typ); err != nil {
				return nil, err
			}

			b = b[n:]

			continue
		}

		switch num {
		case 1:
			m.Version = int32(int64(v))
		case 2:
			m.Timestamp = int64(v)
		case 3:
			m.Changeset = int64(v)
		case 4:
			m.UID = int32(int64(v))
		case 5:
			m.UserSid = uint32(v)
		case 6:
			visible := v != 0
			m.Visible = &visible
		}

		b = b[n:]
	}

	return m, nil
}

// Node is a single non-dense node.
type Node struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Lat  int64
	Lon  int64
}

func (m *Node) Marshal() []byte {
	b := appendSintField(nil, 1, m.ID)
	b = appendPackedUint32(b, 2, m.Keys)
	b = appendPackedUint32(b, 3, m.Vals)

	if m.Info != nil {
		b = appendBytesField(b, 4, m.Info.Marshal())
	}

	b = appendSintField(b, 8, m.Lat)

	return appendSintField(b, 9, m.Lon)
}

func unmarshalNode(b []byte) (*Node, error) {
	m := &Node{}

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
				m.ID = protowire.DecodeZigZag(v)
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
		case 8:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.Lat = protowire.DecodeZigZag(v)
			}
		case 9:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.Lon = protowire.DecodeZigZag(v)
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

// DenseInfo carries the provenance of DenseNodes in parallel arrays.  All
// arrays except version are delta coded.
type DenseInfo struct {
	Version   []int32
	Timestamp []int64
	Changeset []int64
	UID       []int32
	UserSid   []int32
	Visible   []bool
}

func (m *DenseInfo) Marshal() []byte {
	b := appendPackedInt32(nil, 1, m.Version)
	b = appendPackedSint64(b, 2, m.Timestamp)
	b = appendPackedSint64(b, 3, m.Changeset)
	b = appendPackedSint32(b, 4, m.UID)
	b = appendPackedSint32(b, 5, m.UserSid)

	return appendPackedBool(b, 6, m.Visible)
}

func unmarshalDenseInfo(b []byte) (*DenseInfo, error) {
	m := &DenseInfo{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		var err error

		switch num {
		case 1:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Version = append(m.Version, int32(int64(v))) })
		case 2:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Timestamp = append(m.Timestamp, protowire.DecodeZigZag(v)) })
		case 3:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Changeset = append(m.Changeset, protowire.DecodeZigZag(v)) })
		case 4:
			n, err = consumeVarints(b, typ, func(v uint64) { m.UID = append(m.UID, int32(protowire.DecodeZigZag(v))) })
		case 5:
			n, err = consumeVarints(b, typ, func(v uint64) { m.UserSid = append(m.UserSid, int32(protowire.DecodeZigZag(v))) })
		case 6:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Visible = append(m.Visible, v != 0) })
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

// DenseNodes packs a run of nodes into delta-coded parallel arrays.
// KeysVals interleaves key/value string ids per node, each node's list
// terminated by a 0.
type DenseNodes struct {
	ID        []int64
	DenseInfo *DenseInfo
	Lat       []int64
	Lon       []int64
	KeysVals  []int32
}

func (m *DenseNodes) Marshal() []byte {
	b := appendPackedSint64(nil, 1, m.ID)

	if m.DenseInfo != nil {
		b = appendBytesField(b, 5, m.DenseInfo.Marshal())
	}

	b = appendPackedSint64(b, 8, m.Lat)
	b = appendPackedSint64(b, 9, m.Lon)

	return appendPackedInt32(b, 10, m.KeysVals)
}

func unmarshalDenseNodes(b []byte) (*DenseNodes, error) {
	m := &DenseNodes{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		var err error

		switch num {
		case 1:
			n, err = consumeVarints(b, typ, func(v uint64) { m.ID = append(m.ID, protowire.DecodeZigZag(v)) })
		case 5:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				m.DenseInfo, err = unmarshalDenseInfo(v)
			}
		case 8:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Lat = append(m.Lat, protowire.DecodeZigZag(v)) })
		case 9:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Lon = append(m.Lon, protowire.DecodeZigZag(v)) })
		case 10:
			n, err = consumeVarints(b, typ, func(v uint64) { m.KeysVals = append(m.KeysVals, int32(int64(v))) })
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

// Way is a polyline; Refs are delta coded.
type Way struct {
	ID   int64
	Keys []uint32
	Vals []uint32
	Info *Info
	Refs []int64
}

func (m *Way) Marshal() []byte {
	b := appendVarintField(nil, 1, uint64(m.ID))
	b = appendPackedUint32(b, 2, m.Keys)
	b = appendPackedUint32(b, 3, m.Vals)

	if m.Info != nil {
		b = appendBytesField(b, 4, m.Info.Marshal())
	}

	return appendPackedSint64(b, 8, m.Refs)
}

func unmarshalWay(b []byte) (*Way, error) {
	m := &Way{}

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
		case 8:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Refs = append(m.Refs, protowire.DecodeZigZag(v)) })
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

// MemberType is the osmformat.proto Relation.MemberType enum.
type MemberType int32

const (
	MemberNode MemberType = iota
	MemberWay
	MemberRelation
)

// Relation relates entities to one another; Memids are delta coded.
type Relation struct {
	ID       int64
	Keys     []uint32
	Vals     []uint32
	Info     *Info
	RolesSid []int32
	Memids   []int64
	Types    []MemberType
}

func (m *Relation) Marshal() []byte {
	b := appendVarintField(nil, 1, uint64(m.ID))
	b = appendPackedUint32(b, 2, m.Keys)
	b = appendPackedUint32(b, 3, m.Vals)

	if m.Info != nil {
		b = appendBytesField(b, 4, m.Info.Marshal())
	}

	b = appendPackedInt32(b, 8, m.RolesSid)
	b = appendPackedSint64(b, 9, m.Memids)

	types := make([]int32, len(m.Types))
	for i, t := range m.Types {
		types[i] = int32(t)
	}

	return appendPackedInt32(b, 10, types)
}

func unmarshalRelation(b []byte) (*Relation, error) {
	m := &Relation{}

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
		case 8:
			n, err = consumeVarints(b, typ, func(v uint64) { m.RolesSid = append(m.RolesSid, int32(int64(v))) })
		case 9:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Memids = append(m.Memids, protowire.DecodeZigZag(v)) })
		case 10:
			n, err = consumeVarints(b, typ, func(v uint64) { m.Types = append(m.Types, MemberType(int32(int64(v)))) })
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

// PrimitiveGroup holds entities of exactly one type.
type PrimitiveGroup struct {
	Nodes      []*Node
	Dense      *DenseNodes
	Ways       []*Way
	Relations  []*Relation
	Changesets []*ChangeSet
}

func (m *PrimitiveGroup) Marshal() []byte {
	var b []byte

	for _, v := range m.Nodes {
		b = appendBytesField(b, 1, v.Marshal())
	}

	if m.Dense != nil {
		b = appendBytesField(b, 2, m.Dense.Marshal())
	}

	for _, v := range m.Ways {
		b = appendBytesField(b, 3, v.Marshal())
	}

	for _, v := range m.Relations {
		b = appendBytesField(b, 4, v.Marshal())
	}

	for _, v := range m.Changesets {
		b = appendBytesField(b, 5, v.Marshal())
	}

	return b
}

func unmarshalPrimitiveGroup(b []byte) (*PrimitiveGroup, error) {
	m := &PrimitiveGroup{}

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, parseErr(n)
		}

		b = b[n:]

		v, n, err := consumeBytesField(b, typ)
		if err != nil {
			return nil, err
		}

		switch num {
		case 1:
			var node *Node
			if node, err = unmarshalNode(v); err == nil {
				m.Nodes = append(m.Nodes, node)
			}
		case 2:
			m.Dense, err = unmarshalDenseNodes(v)
		case 3:
			var way *Way
			if way, err = unmarshalWay(v); err == nil {
				m.Ways = append(m.Ways, way)
			}
		case 4:
			var rel *Relation
			if rel, err = unmarshalRelation(v); err == nil {
				m.Relations = append(m.Relations, rel)
			}
		case 5:
			var cs *ChangeSet
			if cs, err = unmarshalChangeSet(v); err == nil {
				m.Changesets = append(m.Changesets, cs)
			}
		}

		if err != nil {
			return nil, err
		}

		b = b[n:]
	}

	return m, nil
}

// PrimitiveBlock is the decompressed payload of an OSMData blob.
type PrimitiveBlock struct {
	StringTable     *StringTable
	PrimitiveGroup  []*PrimitiveGroup
	Granularity     int32
	DateGranularity int32
	LatOffset       int64
	LonOffset       int64
}

func (m *PrimitiveBlock) Marshal() []byte {
	var b []byte

	if m.StringTable != nil {
		b = appendBytesField(b, 1, m.StringTable.Marshal())
	}

	for _, v := range m.PrimitiveGroup {
		b = appendBytesField(b, 2, v.Marshal())
	}

	if m.Granularity != DefaultGranularity {
		b = appendVarintField(b, 17, uint64(int64(m.Granularity)))
	}

	if m.DateGranularity != DefaultDateGranularity {
		b = appendVarintField(b, 18, uint64(int64(m.DateGranularity)))
	}

	if m.LatOffset != 0 {
		b = appendVarintField(b, 19, uint64(m.LatOffset))
	}

	if m.LonOffset != 0 {
		b = appendVarintField(b, 20, uint64(m.LonOffset))
	}

	return b
}

func UnmarshalPrimitiveBlock(b []byte) (*PrimitiveBlock, error) {
	m := &PrimitiveBlock{
		Granularity:     DefaultGranularity,
		DateGranularity: DefaultDateGranularity,
	}

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
				m.StringTable, err = unmarshalStringTable(v)
			}
		case 2:
			var v []byte
			if v, n, err = consumeBytesField(b, typ); err == nil {
				var pg *PrimitiveGroup
				if pg, err = unmarshalPrimitiveGroup(v); err == nil {
					m.PrimitiveGroup = append(m.PrimitiveGroup, pg)
				}
			}
		case 17:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.Granularity = int32(int64(v))
			}
		case 18:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.DateGranularity = int32(int64(v))
			}
		case 19:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.LatOffset = int64(v)
			}
		case 20:
			var v uint64
			if v, n, err = consumeVarintField(b, typ); err == nil {
				m.LonOffset = int64(v)
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
