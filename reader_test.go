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
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmcat/model"
)

// Offset is read on the caller's goroutine while the blob reader advances the
// count in the background; the race detector trips here if the count is not
// atomic.
func TestReaderOffsetDuringDecode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offset.osm.pbf")

	writeTestFile(t, path, model.Header{}, testEntities())

	r, err := NewReader(path, TypeFilter{})
	require.NoError(t, err)

	defer func() {
		require.NoError(t, r.Close())
	}()

	stop := make(chan struct{})
	polled := make(chan struct{})

	go func() {
		defer close(polled)

		for {
			select {
			case <-stop:
				return
			default:
				offset := r.Offset()
				assert.LessOrEqual(t, offset, r.Size())
			}
		}
	}()

	var count int

	for {
		buf, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		count += buf.Len()
	}

	close(stop)
	<-polled

	assert.Equal(t, len(testEntities()), count)
	assert.Equal(t, r.Size(), r.Offset())
}
