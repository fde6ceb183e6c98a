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

package osmcat

import (
	"strings"

	"m4o.io/osmcat/model"
)

// TypeFilter selects which entity types a Reader yields.  The zero value
// selects every type.
type TypeFilter struct {
	types map[model.EntityType]bool
}

// NewTypeFilter creates a filter yielding only the given types.  With no
// arguments the filter yields everything.
func NewTypeFilter(types ...model.EntityType) TypeFilter {
	if len(types) == 0 {
		return TypeFilter{}
	}

	f := TypeFilter{types: make(map[model.EntityType]bool, len(types))}
	for _, t := range types {
		f.types[t] = true
	}

	return f
}

// ParseTypeFilter builds a filter from entity type names, as given on the
// command line.
func ParseTypeFilter(names []string) (TypeFilter, error) {
	types := make([]model.EntityType, 0, len(names))

	for _, name := range names {
		t, err := model.ParseEntityType(name)
		if err != nil {
			return TypeFilter{}, err
		}

		types = append(types, t)
	}

	return NewTypeFilter(types...), nil
}

// All reports whether the filter passes every entity type.
func (f TypeFilter) All() bool {
	return len(f.types) == 0
}

// Matches reports whether the filter passes the entity.
func (f TypeFilter) Matches(e model.Entity) bool {
	return f.All() || f.types[model.Type(e)]
}

func (f TypeFilter) String() string {
	if f.All() {
		return "all"
	}

	names := make([]string, 0, len(f.types))
	for _, t := range []model.EntityType{model.NODE, model.WAY, model.RELATION, model.CHANGESET} {
		if f.types[t] {
			names = append(names, strings.ToLower(t.String()))
		}
	}

	return strings.Join(names, ",")
}

// apply drops entities the filter rejects, preserving order.  The input
// slice is reused when nothing is dropped.
func (f TypeFilter) apply(entities []model.Entity) []model.Entity {
	if f.All() {
		return entities
	}

	kept := entities[:0]
	for _, e := range entities {
		if f.Matches(e) {
			kept = append(kept, e)
		}
	}

	return kept
}
