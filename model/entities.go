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

// Package model contains the shared model for OpenStreetMap PBF encoders/decoders.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// UID is the primary key for a user.
type UID int32

// Info represents provenance information common to all entities.  These are
// the only fields an entity owner may rewrite after decoding.
type Info struct {
	Version   int32
	UID       UID
	Timestamp time.Time
	Changeset int64
	User      string
	Visible   bool
}

// Epoch is the canonical unset timestamp.  A zero timestamp on the wire
// decodes as Epoch, so clearing a timestamp to Epoch survives a round trip.
var Epoch = time.UnixMilli(0).UTC()

type Entity interface {
	isEntity() // prevents extensions

	GetID() ID

	GetTags() map[string]string

	GetInfo() *Info
}

// ID is the primary key of an entity.
type ID int64

// Node represents a specific point on the earth's surface defined by its
// latitude and longitude. Each node comprises at least an id number and a
// pair of coordinates.
type Node struct {
	ID   ID
	Tags map[string]string
	Info *Info
	Lat  Degrees
	Lon  Degrees
}

var _ Entity = Node{}

func (n Node) isEntity() {}

func (n Node) GetID() ID {
	return n.ID
}

func (n Node) GetTags() map[string]string {
	return n.Tags
}

func (n Node) GetInfo() *Info {
	return n.Info
}

// Way is an ordered list of between 2 and 2,000 nodes that define a polyline.
type Way struct {
	ID      ID
	Tags    map[string]string
	Info    *Info
	NodeIDs []ID
}

var _ Entity = Way{}

func (w Way) isEntity() {}

func (w Way) GetID() ID {
	return w.ID
}

func (w Way) GetTags() map[string]string {
	return w.Tags
}

func (w Way) GetInfo() *Info {
	return w.Info
}

// EntityType is an enumeration of PBF entity types.
type EntityType int32

const (
	// NODE denotes that the member is a node.
	NODE EntityType = iota

	// WAY denotes that the member is a way.
	WAY

	// RELATION denotes that the member is a relation.
	RELATION

	// CHANGESET denotes a changeset record.  Changesets never appear as
	// relation members.
	CHANGESET
)

func (t EntityType) String() string {
	switch t {
	case NODE:
		return "NODE"
	case WAY:
		return "WAY"
	case RELATION:
		return "RELATION"
	case CHANGESET:
		return "CHANGESET"
	default:
		return fmt.Sprintf("EntityType(%d)", int32(t))
	}
}

// ErrUnknownEntityType is returned when an entity type name is not one of
// node, way, relation, or changeset.
var ErrUnknownEntityType = errors.New("unknown entity type")

// ParseEntityType converts the name of an entity type, as used on the
// command line, into an EntityType.
func ParseEntityType(s string) (EntityType, error) {
	switch strings.ToLower(s) {
	case "node":
		return NODE, nil
	case "way":
		return WAY, nil
	case "relation":
		return RELATION, nil
	case "changeset":
		return CHANGESET, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEntityType, s)
	}
}

// Type returns the EntityType of the entity.
func Type(e Entity) EntityType {
	switch e.(type) {
	case *Node, Node:
		return NODE
	case *Way, Way:
		return WAY
	case *Relation, Relation:
		return RELATION
	case *Changeset, Changeset:
		return CHANGESET
	default:
		panic(fmt.Sprintf("unknown entity type %T", e))
	}
}

// Member represents an entity referenced by a relation.
type Member struct {
	ID   ID
	Type EntityType
	Role string
}

// Relation is a multipurpose data structure that documents a relationship
// between two or more data entities (nodes, ways, and/or other relations).
type Relation struct {
	ID      ID
	Tags    map[string]string
	Info    *Info
	Members []Member
}

var _ Entity = Relation{}

func (r Relation) isEntity() {}

func (r Relation) GetID() ID {
	return r.ID
}

func (r Relation) GetTags() map[string]string {
	return r.Tags
}

func (r Relation) GetInfo() *Info {
	return r.Info
}

// Changeset is the record of one editing session.  Its provenance block is
// carried in the same Info structure as the other entities.
type Changeset struct {
	ID   ID
	Tags map[string]string
	Info *Info
}

var _ Entity = Changeset{}

func (c Changeset) isEntity() {}

func (c Changeset) GetID() ID {
	return c.ID
}

func (c Changeset) GetTags() map[string]string {
	return c.Tags
}

func (c Changeset) GetInfo() *Info {
	return c.Info
}
