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
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync/atomic"

	"github.com/destel/rill"

	"m4o.io/osmcat/internal/decoder"
	"m4o.io/osmcat/internal/pb"
	"m4o.io/osmcat/model"
)

const (
	// DefaultBufferSize is the default buffer size for blob framing.
	DefaultBufferSize = 64 * 1024

	// DefaultBatchSize is the default channel depth for unprocessed blobs.
	DefaultBatchSize = 16
)

// DefaultNCpu provides the default number of CPUs for background blob
// processing.
func DefaultNCpu() int {
	return max(runtime.GOMAXPROCS(-1)-1, 1)
}

// countingReader tracks the byte offset consumed from the underlying file.
// The count is advanced by the blob-reading goroutine and read via Offset on
// the caller's goroutine, hence the atomic.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	cr.n.Add(int64(n))

	return n, err
}

// Reader streams the entities of one OSM PBF file, in file order.  Blob
// decoding runs on background goroutines; Read returns decoded buffers in
// the order their blobs appear in the file.
type Reader struct {
	header model.Header
	filter TypeFilter
	size   int64

	f       *os.File
	cr      *countingReader
	cancel  context.CancelFunc
	buffers <-chan rill.Try[[]model.Entity]
}

// NewReader opens the file at path and reads its leading header blob.  Only
// entities matching the filter are yielded by Read.
func NewReader(path string, filter TypeFilter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open input file: %w", err)
	}

	fi, err := f.Stat()
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("unable to stat input file: %w", err)
	}

	cr := &countingReader{r: f}
	buffered := bufio.NewReaderSize(cr, DefaultBufferSize)

	header, err := decoder.LoadHeader(buffered)
	if err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("unable to load header from %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	blobs := make(chan rill.Try[*pb.Blob], DefaultBatchSize)

	go func() {
		defer close(blobs)

		for blob, err := range decoder.GenerateBlobReader(ctx, buffered) {
			blobs <- rill.Wrap(blob, err)

			if err != nil {
				return
			}
		}
	}()

	return &Reader{
		header:  header,
		filter:  filter,
		size:    fi.Size(),
		f:       f,
		cr:      cr,
		cancel:  cancel,
		buffers: rill.OrderedMap(blobs, DefaultNCpu(), decoder.Decode),
	}, nil
}

// Header returns the header of the underlying file.
func (r *Reader) Header() model.Header {
	return r.header
}

// Size returns the size of the underlying file in bytes.
func (r *Reader) Size() int64 {
	return r.size
}

// Offset returns the byte offset consumed from the underlying file.  The
// offset runs slightly ahead of the entities yielded by Read; it is meant
// for progress reporting, not for seeking.
func (r *Reader) Offset() int64 {
	return r.cr.n.Load()
}

// Read returns the next buffer of entities, in file order.  Buffers emptied
// by the type filter are skipped.  The end of the file is reported by an
// io.EOF error.
func (r *Reader) Read() (*Buffer, error) {
	for {
		decoded, ok := <-r.buffers
		if !ok {
			return nil, io.EOF
		}

		if decoded.Error != nil {
			return nil, decoded.Error
		}

		entities := r.filter.apply(decoded.Value)
		if len(entities) == 0 {
			continue
		}

		return &Buffer{Entities: entities}, nil
	}
}

// Close cancels the background decoding pipeline and closes the underlying
// file.
func (r *Reader) Close() error {
	r.cancel()

	// drain so the background goroutines exit
	for range r.buffers {
	}

	return r.f.Close()
}
