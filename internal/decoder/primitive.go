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
	"fmt"
	"time"

	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

func parsePrimitiveBlock(buf []byte) ([]model.Entity, error) {
	blk, err := pb.UnmarshalPrimitiveBlock(buf)
	if err != nil {
		return nil, fmt.Errorf("unable to unmarshal primitive block: %w", err)
	}

	c := newBlockContext(blk)

	entities := make([]model.Entity, 0)
	for _, pg := range blk.PrimitiveGroup {
		entities = append(entities, c.decodeNodes(pg.Nodes)...)
		entities = append(entities, c.decodeDenseNodes(pg.Dense)...)
		entities = append(entities, c.decodeWays(pg.Ways)...)
		entities = append(entities, c.decodeRelations(pg.Relations)...)
		entities = append(entities, c.decodeChangesets(pg.Changesets)...)
	}

	return entities, nil
}

type blockContext struct {
	strings         []string
	granularity     int32
	latOffset       int64
	lonOffset       int64
	dateGranularity int32
}

func newBlockContext(blk *pb.PrimitiveBlock) *blockContext {
	c := &blockContext{
		granularity:     blk.Granularity,
		latOffset:       blk.LatOffset,
		lonOffset:       blk.LonOffset,
		dateGranularity: blk.DateGranularity,
	}

	if blk.StringTable != nil {
		c.strings = blk.StringTable.S
	}

	return c
}

func (c *blockContext) decodeNodes(nodes []*pb.Node) []model.Entity {
	entities := make([]model.Entity, len(nodes))

	for i, node := range nodes {
		entities[i] = &model.Node{
			ID:   model.ID(node.ID),
			Tags: c.decodeTags(node.Keys, node.Vals),
			Info: c.decodeInfo(node.Info),
			Lat:  model.ToDegrees(c.latOffset, c.granularity, node.Lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, node.Lon),
		}
	}

	return entities
}

func (c *blockContext) decodeDenseNodes(nodes *pb.DenseNodes) []model.Entity {
	if nodes == nil {
		return nil
	}

	entities := make([]model.Entity, len(nodes.ID))

	tic := c.newTagsContext(nodes.KeysVals)
	dic := c.newDenseInfoContext(nodes.DenseInfo)

	var id, lat, lon int64
	for i := range nodes.ID {
		id += nodes.ID[i]
		lat += nodes.Lat[i]
		lon += nodes.Lon[i]

		entities[i] = &model.Node{
			ID:   model.ID(id),
			Tags: tic.decodeTags(),
			Info: dic.decodeInfo(i),
			Lat:  model.ToDegrees(c.latOffset, c.granularity, lat),
			Lon:  model.ToDegrees(c.lonOffset, c.granularity, lon),
		}
	}

	return entities
}

func (c *blockContext) decodeWays(ways []*pb.Way) []model.Entity {
	entities := make([]model.Entity, len(ways))

	for i, way := range ways {
		nodeIDs := make([]model.ID, len(way.Refs))

		var nodeID int64

		for j, delta := range way.Refs {
			nodeID += delta
			nodeIDs[j] = model.ID(nodeID)
		}

		entities[i] = &model.Way{
			ID:      model.ID(way.ID),
			Tags:    c.decodeTags(way.Keys, way.Vals),
			NodeIDs: nodeIDs,
			Info:    c.decodeInfo(way.Info),
		}
	}

	return entities
}

func (c *blockContext) decodeRelations(relations []*pb.Relation) []model.Entity {
	entities := make([]model.Entity, len(relations))

	for i, rel := range relations {
		entities[i] = &model.Relation{
			ID:      model.ID(rel.ID),
			Tags:    c.decodeTags(rel.Keys, rel.Vals),
			Info:    c.decodeInfo(rel.Info),
			Members: c.decodeMembers(rel),
		}
	}

	return entities
}

func (c *blockContext) decodeChangesets(changesets []*pb.ChangeSet) []model.Entity {
	entities := make([]model.Entity, len(changesets))

	for i, cs := range changesets {
		entities[i] = &model.Changeset{
			ID:   model.ID(cs.ID),
			Tags: c.decodeTags(cs.Keys, cs.Vals),
			Info: c.decodeInfo(cs.Info),
		}
	}

	return entities
}

func (c *blockContext) decodeMembers(rel *pb.Relation) []model.Member {
	members := make([]model.Member, len(rel.Memids))

	var memid int64

	for i := range rel.Memids {
		memid += rel.Memids[i]
		members[i] = model.Member{
			ID:   model.ID(memid),
			Type: decodeMemberType(rel.Types[i]),
			Role: c.lookup(rel.RolesSid[i]),
		}
	}

	return members
}

func (c *blockContext) decodeTags(keyIDs, valIDs []uint32) map[string]string {
	tags := make(map[string]string, len(keyIDs))

	for i, keyID := range keyIDs {
		tags[c.lookup(int32(keyID))] = c.lookup(int32(valIDs[i]))
	}

	return tags
}

func (c *blockContext) decodeInfo(info *pb.Info) *model.Info {
	i := &model.Info{Visible: true, Timestamp: model.Epoch}
	if info != nil {
		i.Version = info.Version
		i.Timestamp = toTimestamp(c.dateGranularity, info.Timestamp)
		i.Changeset = info.Changeset
		i.UID = model.UID(info.UID)
		i.User = c.lookup(int32(info.UserSid))

		if info.Visible != nil {
			i.Visible = *info.Visible
		}
	}

	return i
}

// lookup resolves a string table index, tolerating blocks whose table is
// shorter than the indexes referencing it.
func (c *blockContext) lookup(sid int32) string {
	if sid < 0 || int(sid) >= len(c.strings) {
		return ""
	}

	return c.strings[sid]
}

func (c *blockContext) newDenseInfoContext(di *pb.DenseInfo) *denseInfoContext {
	dic := &denseInfoContext{
		dateGranularity: c.dateGranularity,
		block:           c,
	}

	if di != nil {
		dic.versions = di.Version
		dic.uids = di.UID
		dic.timestamps = di.Timestamp
		dic.changesets = di.Changeset
		dic.userSids = di.UserSid
		dic.visibilities = di.Visible
	}

	return dic
}

// denseInfoContext accumulates the delta-coded dense provenance arrays.
// Versions are not delta coded, per osmformat.proto.
type denseInfoContext struct {
	timestamp int64
	changeset int64
	uid       int32
	userSid   int32

	dateGranularity int32
	block           *blockContext
	versions        []int32
	uids            []int32
	timestamps      []int64
	changesets      []int64
	userSids        []int32
	visibilities    []bool
}

func (dic *denseInfoContext) decodeInfo(i int) *model.Info {
	info := &model.Info{Visible: true, Timestamp: model.Epoch}

	if i < len(dic.versions) {
		info.Version = dic.versions[i]
	}

	if i < len(dic.uids) {
		dic.uid += dic.uids[i]
		info.UID = model.UID(dic.uid)
	}

	if i < len(dic.timestamps) {
		dic.timestamp += dic.timestamps[i]
		info.Timestamp = toTimestamp(dic.dateGranularity, dic.timestamp)
	}

	if i < len(dic.changesets) {
		dic.changeset += dic.changesets[i]
		info.Changeset = dic.changeset
	}

	if i < len(dic.userSids) {
		dic.userSid += dic.userSids[i]
		info.User = dic.block.lookup(dic.userSid)
	}

	if i < len(dic.visibilities) {
		info.Visible = dic.visibilities[i]
	}

	return info
}

type tagsContext struct {
	block   *blockContext
	i       int
	keyVals []int32
}

func (c *blockContext) newTagsContext(keyVals []int32) *tagsContext {
	tc := &tagsContext{block: c}

	if len(keyVals) != 0 {
		tc.keyVals = keyVals
	}

	return tc
}

func (tic *tagsContext) decodeTags() map[string]string {
	if tic.keyVals == nil {
		return map[string]string{}
	}

	tags := make(map[string]string)
	i := tic.i

	for i+1 < len(tic.keyVals) && tic.keyVals[i] > 0 {
		tags[tic.block.lookup(tic.keyVals[i])] = tic.block.lookup(tic.keyVals[i+1])
		i += 2
	}

	tic.i = i + 1

	return tags
}

// decodeMemberType converts the wire Relation.MemberType to an EntityType.
func decodeMemberType(mt pb.MemberType) model.EntityType {
	switch mt {
	case pb.MemberNode:
		return model.NODE
	case pb.MemberWay:
		return model.WAY
	case pb.MemberRelation:
		return model.RELATION
	default:
		panic("unrecognized member type")
	}
}

// toTimestamp converts a timestamp with a specific granularity, in units of
// milliseconds, to a UTC timestamp of type Time.
func toTimestamp(granularity int32, timestamp int64) time.Time {
	return time.UnixMilli(timestamp * int64(granularity)).UTC()
}
