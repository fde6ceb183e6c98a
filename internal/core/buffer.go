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

// Package core holds small shared plumbing for the codec pipelines.
package core

import (
	"bytes"
	"sync"
)

const initialBufferSize = 1024 * 1024

var bufferPool = sync.Pool{
	New: func() any {
		return bytes.NewBuffer(make([]byte, 0, initialBufferSize))
	},
}

// PooledBuffer is a bytes.Buffer drawn from a process-wide pool.  Close
// returns the buffer to the pool; the PooledBuffer must not be used after
// Close, nor may its Bytes escape the owner.
type PooledBuffer struct {
	*bytes.Buffer
}

// NewPooledBuffer obtains an empty buffer from the pool.
func NewPooledBuffer() *PooledBuffer {
	return &PooledBuffer{Buffer: bufferPool.Get().(*bytes.Buffer)}
}

// Close resets the buffer and returns it to the pool.
func (b *PooledBuffer) Close() error {
	b.Buffer.Reset()
	bufferPool.Put(b.Buffer)
	b.Buffer = nil

	return nil
}
