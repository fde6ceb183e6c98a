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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmcat/model"
)

func TestTypeFilterZeroValue(t *testing.T) {
	var f TypeFilter

	assert.True(t, f.All())
	assert.True(t, f.Matches(&model.Node{}))
	assert.True(t, f.Matches(&model.Relation{}))
	assert.Equal(t, "all", f.String())
}

func TestParseTypeFilter(t *testing.T) {
	f, err := ParseTypeFilter([]string{"way", "node"})
	require.NoError(t, err)

	assert.False(t, f.All())
	assert.True(t, f.Matches(&model.Node{}))
	assert.True(t, f.Matches(&model.Way{}))
	assert.False(t, f.Matches(&model.Relation{}))
	assert.False(t, f.Matches(&model.Changeset{}))
	assert.Equal(t, "node,way", f.String())

	_, err = ParseTypeFilter([]string{"polygon"})
	assert.ErrorIs(t, err, model.ErrUnknownEntityType)
}

func TestTypeFilterApplyPreservesOrder(t *testing.T) {
	f := NewTypeFilter(model.WAY)

	entities := []model.Entity{
		&model.Node{ID: 1},
		&model.Way{ID: 10},
		&model.Node{ID: 2},
		&model.Way{ID: 11},
		&model.Relation{ID: 20},
		&model.Way{ID: 12},
	}

	kept := f.apply(entities)

	require.Len(t, kept, 3)
	assert.EqualValues(t, 10, kept[0].GetID())
	assert.EqualValues(t, 11, kept[1].GetID())
	assert.EqualValues(t, 12, kept[2].GetID())
}

func TestTypeFilterApplyAllReusesSlice(t *testing.T) {
	var f TypeFilter

	entities := []model.Entity{&model.Node{ID: 1}}
	assert.Equal(t, entities, f.apply(entities))
}
