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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

func TestCalcDeltas(t *testing.T) {
	assert.Equal(t, []int64{100, 1, 1, -3}, calcDeltas([]int64{100, 101, 102, 99}))
	assert.Equal(t, []int32{5}, calcDeltas([]int32{5}))
	assert.Empty(t, calcDeltas([]int64{}))
}

func TestCalcTagIDs(t *testing.T) {
	strings := NewStrings()
	strings.Add("highway")
	strings.Add("primary")
	strings.Add("name")
	strings.Add("High Street")

	table := strings.CalcTable()

	keyIDs, valIDs := calcTagIDs(map[string]string{
		"name":    "High Street",
		"highway": "primary",
	}, table)

	// keys come out sorted so blocks are deterministic
	require.Len(t, keyIDs, 2)
	assert.Equal(t, uint32(table.IndexOf("highway")), keyIDs[0])
	assert.Equal(t, uint32(table.IndexOf("primary")), valIDs[0])
	assert.Equal(t, uint32(table.IndexOf("name")), keyIDs[1])
	assert.Equal(t, uint32(table.IndexOf("High Street")), valIDs[1])
}

func TestFromTimestamp(t *testing.T) {
	assert.EqualValues(t, 0, fromTimestamp(DateGranularityMs, time.Time{}))
	assert.EqualValues(t, 0, fromTimestamp(DateGranularityMs, model.Epoch))

	ts := time.Date(2021, time.July, 15, 21, 10, 0, 0, time.UTC)
	assert.Equal(t, ts.Unix(), fromTimestamp(DateGranularityMs, ts))
}

func TestEncodeBlockDenseNodes(t *testing.T) {
	ts := time.Date(2021, time.July, 15, 21, 10, 0, 0, time.UTC)

	run := []model.Entity{
		&model.Node{
			ID:   100,
			Tags: map[string]string{"highway": "crossing"},
			Info: &model.Info{Version: 2, UID: 9, Timestamp: ts, Changeset: 77, User: "bob", Visible: true},
			Lat:  51.5285,
			Lon:  -0.1243,
		},
		&model.Node{
			ID:   101,
			Info: &model.Info{Version: 1, Visible: true, Timestamp: model.Epoch},
			Lat:  51.5286,
			Lon:  -0.1244,
		},
	}

	body, err := EncodeBlock(run)
	require.NoError(t, err)

	blk, err := pb.UnmarshalPrimitiveBlock(body)
	require.NoError(t, err)
	require.Len(t, blk.PrimitiveGroup, 1)

	dense := blk.PrimitiveGroup[0].Dense
	require.NotNil(t, dense)
	assert.Equal(t, []int64{100, 1}, dense.ID)

	require.NotNil(t, dense.DenseInfo)
	assert.Equal(t, []int32{2, 1}, dense.DenseInfo.Version)

	// all nodes visible, so the visible array is omitted
	assert.Empty(t, dense.DenseInfo.Visible)
}

func TestEncodeBlockDenseNodesVisible(t *testing.T) {
	run := []model.Entity{
		&model.Node{ID: 1, Info: &model.Info{Visible: true, Timestamp: model.Epoch}},
		&model.Node{ID: 2, Info: &model.Info{Visible: false, Timestamp: model.Epoch}},
	}

	body, err := EncodeBlock(run)
	require.NoError(t, err)

	blk, err := pb.UnmarshalPrimitiveBlock(body)
	require.NoError(t, err)

	dense := blk.PrimitiveGroup[0].Dense
	require.NotNil(t, dense.DenseInfo)
	assert.Equal(t, []bool{true, false}, dense.DenseInfo.Visible)
}

func TestEncodeBlockWays(t *testing.T) {
	run := []model.Entity{
		&model.Way{
			ID:      2001,
			Tags:    map[string]string{"highway": "primary"},
			Info:    &model.Info{Version: 3, Visible: true, Timestamp: model.Epoch},
			NodeIDs: []model.ID{100, 101, 102},
		},
	}

	body, err := EncodeBlock(run)
	require.NoError(t, err)

	blk, err := pb.UnmarshalPrimitiveBlock(body)
	require.NoError(t, err)
	require.Len(t, blk.PrimitiveGroup, 1)
	require.Len(t, blk.PrimitiveGroup[0].Ways, 1)

	way := blk.PrimitiveGroup[0].Ways[0]
	assert.EqualValues(t, 2001, way.ID)
	assert.Equal(t, []int64{100, 1, 1}, way.Refs)
}
