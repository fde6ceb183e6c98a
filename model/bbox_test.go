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

package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"m4o.io/osmcat/model"
)

func TestInitialBoundingBox(t *testing.T) {
	initial := model.InitialBoundingBox()
	assert.Equal(t, initial.Top, model.MinLat)
	assert.Equal(t, initial.Bottom, model.MaxLat)
	assert.Equal(t, initial.Right, model.MinLon)
	assert.Equal(t, initial.Left, model.MaxLon)
}

func TestBoundingBox_EqualWithin(t *testing.T) {
	bbox_1 := &model.BoundingBox{Top: 51.69344, Left: -0.511482, Bottom: 51.28554, Right: 0.335437}
	bbox_2 := &model.BoundingBox{
		Top:    bbox_1.Top + model.Degrees(model.E6),
		Left:   bbox_1.Left + model.Degrees(model.E6),
		Bottom: bbox_1.Bottom + model.Degrees(model.E6),
		Right:  bbox_1.Right + model.Degrees(model.E6),
	}

	assert.True(t, bbox_1.EqualWithin(bbox_2, model.E5))
	assert.False(t, bbox_1.EqualWithin(bbox_2, model.E7))
}

func TestBoundingBox_ExpandWithLatLng(t *testing.T) {
	bbox := model.InitialBoundingBox()
	bbox.ExpandWithLatLng(-45, 90)
	bbox.ExpandWithLatLng(45, -90)

	assert.Equal(t, model.Degrees(45), bbox.Top)
	assert.Equal(t, model.Degrees(-45), bbox.Bottom)
	assert.Equal(t, model.Degrees(-90), bbox.Left)
	assert.Equal(t, model.Degrees(90), bbox.Right)

	// points already covered leave the box unchanged
	bbox.ExpandWithLatLng(0, 0)

	assert.Equal(t, model.Degrees(45), bbox.Top)
	assert.Equal(t, model.Degrees(-45), bbox.Bottom)
	assert.Equal(t, model.Degrees(-90), bbox.Left)
	assert.Equal(t, model.Degrees(90), bbox.Right)
}

func TestBoundingBoxEqualWithin(t *testing.T) {
	bbox := &model.BoundingBox{Top: 51.69344, Left: -0.511482, Bottom: 51.28554, Right: 0.335437}
	assert.True(t, bbox.EqualWithin(bbox, model.E9))
}

func TestBoundingBoxString(t *testing.T) {
	bbox := &model.BoundingBox{Top: 51.69344, Left: -0.511482, Bottom: 51.28554, Right: 0.335437}
	assert.Equal(t, "[(51.69344, -0.511482) (51.28554, 0.335437)]", bbox.String())
}
