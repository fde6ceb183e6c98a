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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmcat/model"
)

func TestApplyHeaderOverrides(t *testing.T) {
	header := model.Header{WritingProgram: "previous"}

	err := ApplyHeaderOverrides(&header, []string{
		"generator=osmcat",
		"source=test",
		"osmosis_replication_timestamp=2021-07-15T21:10:00Z",
		"osmosis_replication_sequence_number=42",
		"osmosis_replication_base_url=https://planet.openstreetmap.org/replication/minute/",
	})
	require.NoError(t, err)

	assert.Equal(t, "osmcat", header.WritingProgram)
	assert.Equal(t, "test", header.Source)
	assert.Equal(t, time.Date(2021, time.July, 15, 21, 10, 0, 0, time.UTC), header.OsmosisReplicationTimestamp)
	assert.EqualValues(t, 42, header.OsmosisReplicationSequenceNumber)
	assert.Equal(t, "https://planet.openstreetmap.org/replication/minute/", header.OsmosisReplicationBaseURL)
}

func TestApplyHeaderOverridesUnknownKey(t *testing.T) {
	var header model.Header

	err := ApplyHeaderOverrides(&header, []string{"bbox=0,0,1,1"})
	assert.ErrorIs(t, err, ErrUnknownHeaderOption)
}

func TestApplyHeaderOverridesMalformed(t *testing.T) {
	var header model.Header

	err := ApplyHeaderOverrides(&header, []string{"generator"})
	assert.ErrorIs(t, err, ErrBadHeaderOption)

	err = ApplyHeaderOverrides(&header, []string{"osmosis_replication_sequence_number=abc"})
	assert.ErrorIs(t, err, ErrBadHeaderOption)

	err = ApplyHeaderOverrides(&header, []string{"osmosis_replication_timestamp=yesterday"})
	assert.ErrorIs(t, err, ErrBadHeaderOption)
}
