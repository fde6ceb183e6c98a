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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"

	"github.com/destel/rill"

	"m4o.io/osmcat/internal/encoder"
	"m4o.io/osmcat/model"
)

// BlobCompression is the compression algorithm applied to encoded blobs.
type BlobCompression = encoder.BlobCompression

const (
	// RAW writes blobs without compression.
	RAW = encoder.RAW

	// ZLIB compresses blobs with zlib, the interchange default.
	ZLIB = encoder.ZLIB

	// LZMA compresses blobs with lzma.
	LZMA = encoder.LZMA

	// LZ4 compresses blobs with lz4.
	LZ4 = encoder.LZ4

	// ZSTD compresses blobs with zstandard.
	ZSTD = encoder.ZSTD

	// DefaultBlobCompression is the compression used when none is specified.
	DefaultBlobCompression = ZLIB
)

// ErrOutputExists is returned when the output file already exists and
// overwriting was not requested.
var ErrOutputExists = errors.New("output file already exists")

// writerOptions provides optional configuration parameters for Writer
// construction.
type writerOptions struct {
	compression BlobCompression
	overwrite   bool
	fsync       bool
}

// WriterOption configures how we set up the writer.
type WriterOption func(*writerOptions)

// WithCompression specifies the compression algorithm to use when encoding
// PBF blobs.  The default is ZLIB.
func WithCompression(compression BlobCompression) WriterOption {
	return func(o *writerOptions) {
		o.compression = compression
	}
}

// WithOverwrite lets the writer replace an existing output file.
func WithOverwrite() WriterOption {
	return func(o *writerOptions) {
		o.overwrite = true
	}
}

// WithFsync forces file system synchronization before the output file is
// closed.
func WithFsync() WriterOption {
	return func(o *writerOptions) {
		o.fsync = true
	}
}

// defaultWriterConfig provides a default configuration for writers.
var defaultWriterConfig = writerOptions{
	compression: DefaultBlobCompression,
}

// countingWriter tracks the bytes written to the underlying file.
type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)

	return n, err
}

// Writer streams entities into an OSM PBF file.  The header blob is written
// when the writer is opened; entity blobs are encoded and compressed on
// background goroutines and written in the order the entities arrived.
type Writer struct {
	f     *os.File
	cw    *countingWriter
	bw    *bufio.Writer
	fsync bool

	runs    chan rill.Try[[]model.Entity]
	pending []model.Entity
	kind    model.EntityType

	completed sync.WaitGroup

	mu  sync.Mutex
	err error
}

// NewWriter creates the file at path, configured with options, and writes
// the given header to it.  An existing file is only replaced when
// WithOverwrite is given; otherwise ErrOutputExists is returned.
func NewWriter(path string, header model.Header, opts ...WriterOption) (*Writer, error) {
	cfg := defaultWriterConfig

	for _, opt := range opts {
		opt(&cfg)
	}

	flags := os.O_WRONLY | os.O_CREATE
	if cfg.overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, 0o666)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, path)
		}

		return nil, fmt.Errorf("unable to create output file: %w", err)
	}

	cw := &countingWriter{w: f}
	bw := bufio.NewWriterSize(cw, DefaultBufferSize)

	if err := encoder.SaveHeader(bw, header, cfg.compression); err != nil {
		_ = f.Close()

		return nil, fmt.Errorf("unable to write header to %s: %w", path, err)
	}

	w := &Writer{
		f:     f,
		cw:    cw,
		bw:    bw,
		fsync: cfg.fsync,
		runs:  make(chan rill.Try[[]model.Entity], DefaultBatchSize),
	}

	encoded := rill.OrderedMap(w.runs, DefaultNCpu(), encoder.EncodeBlock)
	packed := rill.OrderedMap(encoded, DefaultNCpu(), encoder.GeneratePacker(cfg.compression))
	statuses := encoder.SavePacked(bw, packed)

	w.completed.Add(1)

	go w.consumeStatuses(statuses)

	return w, nil
}

// Write appends the buffer's entities to the output.  Entities are grouped
// into runs of consecutive same-type entities so each encoded block holds a
// single primitive group; file order is never disturbed.
func (w *Writer) Write(buf *Buffer) error {
	if buf.Len() == 0 {
		return w.loadErr()
	}

	for _, e := range buf.Entities {
		kind := model.Type(e)

		if len(w.pending) > 0 && (kind != w.kind || len(w.pending) == encoder.EntityLimit) {
			w.flush()
		}

		w.kind = kind
		w.pending = append(w.pending, e)
	}

	return w.loadErr()
}

// flush hands the pending run to the encoding pipeline.
func (w *Writer) flush() {
	if len(w.pending) == 0 {
		return
	}

	w.runs <- rill.Wrap(w.pending, nil)
	w.pending = nil
}

// Close flushes any pending run, waits for the encoding pipeline to drain,
// and closes the underlying file.  It returns the total number of bytes
// written, header included.
func (w *Writer) Close() (int64, error) {
	w.flush()
	close(w.runs)
	w.completed.Wait()

	if err := w.bw.Flush(); err != nil {
		w.storeErr(err)
	}

	if w.fsync {
		if err := w.f.Sync(); err != nil {
			w.storeErr(fmt.Errorf("unable to sync output file: %w", err))
		}
	}

	if err := w.f.Close(); err != nil {
		w.storeErr(err)
	}

	return w.cw.n, w.loadErr()
}

func (w *Writer) consumeStatuses(statuses <-chan rill.Try[struct{}]) {
	defer w.completed.Done()

	for status := range statuses {
		if status.Error != nil {
			slog.Error("unable to save block", "error", status.Error)
			w.storeErr(status.Error)
		}
	}
}

// storeErr records the first error seen by the pipeline.
func (w *Writer) storeErr(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) loadErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.err
}
