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
	"sort"
	"time"

	"golang.org/x/exp/constraints"

	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

const (
	DateGranularityMs = 1000
	Granularity       = 100
	LatOffset         = 0
	LonOffset         = 0

	// EntityLimit is the max number of entities in a primitive block.
	// Certain programs (e.g. osmosis 0.38) limit the number of entities in
	// each block to 8000 when writing PBF format.
	EntityLimit = 8000
)

// EncodeBlock marshals a run of same-type entities into a primitive block
// body, ready for packing.
func EncodeBlock(run []model.Entity) ([]byte, error) {
	return newBlockContext(run).extractPrimitiveBlock().Marshal(), nil
}

type blockContext struct {
	table    *Table
	entities []model.Entity
}

func newBlockContext(entities []model.Entity) *blockContext {
	strings := NewStrings()

	for _, e := range entities {
		for k, v := range e.GetTags() {
			strings.Add(k)
			strings.Add(v)
		}

		strings.Add(infoOf(e).User)

		if r, ok := e.(*model.Relation); ok {
			for _, m := range r.Members {
				strings.Add(m.Role)
			}
		}
	}

	return &blockContext{
		table:    strings.CalcTable(),
		entities: entities,
	}
}

func (bc *blockContext) extractPrimitiveBlock() *pb.PrimitiveBlock {
	pg := &pb.PrimitiveGroup{}
	switch bc.entities[0].(type) {
	case *model.Node:
		pg.Dense = bc.extractDenseNodes()
	case *model.Way:
		pg.Ways = bc.extractWays()
	case *model.Relation:
		pg.Relations = bc.extractRelations()
	case *model.Changeset:
		pg.Changesets = bc.extractChangesets()
	default:
		panic("unknown type")
	}

	return &pb.PrimitiveBlock{
		StringTable: &pb.StringTable{
			S: bc.table.AsArray(),
		},
		PrimitiveGroup:  []*pb.PrimitiveGroup{pg},
		Granularity:     Granularity,
		LatOffset:       LatOffset,
		LonOffset:       LonOffset,
		DateGranularity: DateGranularityMs,
	}
}

func (bc *blockContext) extractDenseNodes() *pb.DenseNodes {
	dn := &pb.DenseNodes{}

	ids := make([]int64, 0, len(bc.entities))

	lats := make([]int64, 0, len(bc.entities))
	lons := make([]int64, 0, len(bc.entities))

	versions := make([]int32, 0, len(bc.entities))
	uids := make([]int32, 0, len(bc.entities))
	ts := make([]int64, 0, len(bc.entities))
	cs := make([]int64, 0, len(bc.entities))
	usids := make([]int32, 0, len(bc.entities))
	visibles := make([]bool, 0, len(bc.entities))

	allVisible := true

	keyValIDs := make([]int32, 0)

	for _, e := range bc.entities {
		n, ok := e.(*model.Node)
		if !ok {
			continue
		}

		ids = append(ids, int64(n.ID))

		lats = append(lats, model.ToCoordinate(LatOffset, Granularity, n.Lat))
		lons = append(lons, model.ToCoordinate(LonOffset, Granularity, n.Lon))

		info := infoOf(n)
		versions = append(versions, info.Version)
		uids = append(uids, int32(info.UID))
		ts = append(ts, fromTimestamp(DateGranularityMs, info.Timestamp))
		cs = append(cs, info.Changeset)
		usids = append(usids, bc.table.IndexOf(info.User))
		visibles = append(visibles, info.Visible)
		allVisible = allVisible && info.Visible

		kIDs, vIDs := calcTagIDs(n.Tags, bc.table)
		for i, k := range kIDs {
			keyValIDs = append(keyValIDs, int32(k), int32(vIDs[i]))
		}

		keyValIDs = append(keyValIDs, 0)
	}

	dn.ID = calcDeltas(ids)
	dn.DenseInfo = &pb.DenseInfo{
		Version:   versions, // versions are not delta coded
		Timestamp: calcDeltas(ts),
		Changeset: calcDeltas(cs),
		UID:       calcDeltas(uids),
		UserSid:   calcDeltas(usids),
	}

	if !allVisible {
		dn.DenseInfo.Visible = visibles
	}

	dn.Lat = calcDeltas(lats)
	dn.Lon = calcDeltas(lons)
	dn.KeysVals = keyValIDs

	return dn
}

func (bc *blockContext) extractWays() []*pb.Way {
	ways := make([]*pb.Way, 0, len(bc.entities))

	for _, e := range bc.entities {
		w, ok := e.(*model.Way)
		if !ok {
			continue
		}

		refs := make([]int64, len(w.NodeIDs))
		for i, r := range w.NodeIDs {
			refs[i] = int64(r)
		}

		keyIDs, valIDs := calcTagIDs(w.Tags, bc.table)

		ways = append(ways, &pb.Way{
			ID:   int64(w.ID),
			Keys: keyIDs,
			Vals: valIDs,
			Info: toInfoPb(infoOf(w), bc.table),
			Refs: calcDeltas(refs),
		})
	}

	return ways
}

func (bc *blockContext) extractRelations() []*pb.Relation {
	relations := make([]*pb.Relation, 0, len(bc.entities))

	for _, e := range bc.entities {
		r, ok := e.(*model.Relation)
		if !ok {
			continue
		}

		keyIDs, valIDs := calcTagIDs(r.Tags, bc.table)
		memids := make([]int64, len(r.Members))
		roleids := make([]int32, len(r.Members))
		types := make([]pb.MemberType, len(r.Members))

		for i, m := range r.Members {
			memids[i] = int64(m.ID)
			roleids[i] = bc.table.IndexOf(m.Role)
			types[i] = pb.MemberType(m.Type)
		}

		relations = append(relations, &pb.Relation{
			ID:       int64(r.ID),
			Keys:     keyIDs,
			Vals:     valIDs,
			Info:     toInfoPb(infoOf(r), bc.table),
			RolesSid: roleids,
			Memids:   calcDeltas(memids),
			Types:    types,
		})
	}

	return relations
}

func (bc *blockContext) extractChangesets() []*pb.ChangeSet {
	changesets := make([]*pb.ChangeSet, 0, len(bc.entities))

	for _, e := range bc.entities {
		c, ok := e.(*model.Changeset)
		if !ok {
			continue
		}

		keyIDs, valIDs := calcTagIDs(c.Tags, bc.table)

		changesets = append(changesets, &pb.ChangeSet{
			ID:   int64(c.ID),
			Keys: keyIDs,
			Vals: valIDs,
			Info: toInfoPb(infoOf(c), bc.table),
		})
	}

	return changesets
}

// infoOf returns the entity's provenance block, substituting an empty
// visible one when the entity carries none.
func infoOf(e model.Entity) *model.Info {
	if info := e.GetInfo(); info != nil {
		return info
	}

	return &model.Info{Visible: true, Timestamp: model.Epoch}
}

// calcDeltas calculates the delta-encoding of the values.
func calcDeltas[T interface {
	constraints.Integer | constraints.Float
}](values []T) []T {
	prev := T(0)
	deltas := make([]T, len(values))

	for i, id := range values {
		deltas[i] = id - prev
		prev = id
	}

	return deltas
}

func calcTagIDs(tags map[string]string, table *Table) (keyIDs []uint32, valIDs []uint32) {
	keys := make([]string, 0, len(tags))

	for k := range tags {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		keyIDs = append(keyIDs, uint32(table.IndexOf(k)))
		valIDs = append(valIDs, uint32(table.IndexOf(tags[k])))
	}

	return keyIDs, valIDs
}

func toInfoPb(info *model.Info, table *Table) *pb.Info {
	pbInfo := &pb.Info{
		Version:   info.Version,
		Timestamp: fromTimestamp(DateGranularityMs, info.Timestamp),
		Changeset: info.Changeset,
		UID:       int32(info.UID),
		UserSid:   uint32(table.IndexOf(info.User)),
	}

	if !info.Visible {
		visible := false
		pbInfo.Visible = &visible
	}

	return pbInfo
}

// fromTimestamp converts a UTC timestamp into wire units of granularity
// milliseconds.
func fromTimestamp(granularity int32, timestamp time.Time) int64 {
	if timestamp.IsZero() {
		return 0
	}

	return timestamp.UnixMilli() / int64(granularity)
}
