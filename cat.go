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
	"fmt"
	"io"
	"log/slog"
	"os"

	"m4o.io/osmcat/model"
)

// ErrNoInputs is returned when a run is given no input files.
var ErrNoInputs = errors.New("no input files")

// Options configures a concatenation run.
type Options struct {
	// Inputs are the paths of the OSM PBF files to concatenate, in order.
	Inputs []string

	// Output is the path of the OSM PBF file to write.
	Output string

	// Filter selects which entity types are copied.  The zero value copies
	// everything.
	Filter TypeFilter

	// Clean selects which provenance attributes are scrubbed from every
	// copied entity.  The zero value scrubs nothing.
	Clean CleanSet

	// Overwrite lets the run replace an existing output file.
	Overwrite bool

	// Fsync forces file system synchronization before the output file is
	// closed.
	Fsync bool

	// Compression selects the blob compression for the output.  The zero
	// value writes raw, uncompressed blobs; use DefaultBlobCompression for
	// the interchange default.
	Compression BlobCompression

	// HeaderOverrides are KEY=VALUE settings applied to the output header,
	// see ApplyHeaderOverrides.
	HeaderOverrides []string

	// NewProgress, when set, builds the progress sink for the run.  The
	// total is the combined size of all input files in bytes.
	NewProgress func(total int64) Progress
}

// Run concatenates the input files into the output file and returns the
// number of bytes written.
//
// With a single input the output header is copied from the input, then the
// overrides are applied.  With multiple inputs the headers of the inputs
// are dropped and the output starts from a blank header, since there is no
// general way to merge them.
func Run(opts Options) (int64, error) {
	if len(opts.Inputs) == 0 {
		return 0, ErrNoInputs
	}

	newProgress := opts.NewProgress
	if newProgress == nil {
		newProgress = func(int64) Progress { return NopProgress }
	}

	wopts := []WriterOption{WithCompression(opts.Compression)}

	if opts.Overwrite {
		wopts = append(wopts, WithOverwrite())
	}

	if opts.Fsync {
		wopts = append(wopts, WithFsync())
	}

	if len(opts.Inputs) == 1 {
		return runSingle(opts, newProgress, wopts)
	}

	return runMulti(opts, newProgress, wopts)
}

func runSingle(opts Options, newProgress func(int64) Progress, wopts []WriterOption) (written int64, err error) {
	rdr, err := NewReader(opts.Inputs[0], opts.Filter)
	if err != nil {
		return 0, err
	}

	defer func() {
		if cerr := rdr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	slog.Info("copying input file", "path", opts.Inputs[0], "size", rdr.Size())

	header := rdr.Header()
	if err := ApplyHeaderOverrides(&header, opts.HeaderOverrides); err != nil {
		return 0, err
	}

	wrtr, err := NewWriter(opts.Output, header, wopts...)
	if err != nil {
		return 0, err
	}

	prog := newProgress(rdr.Size())

	if err := copyEntities(prog, rdr, wrtr, opts.Clean); err != nil {
		_, _ = wrtr.Close()

		return 0, err
	}

	prog.Done()

	return wrtr.Close()
}

func runMulti(opts Options, newProgress func(int64) Progress, wopts []WriterOption) (written int64, err error) {
	var header model.Header
	if err := ApplyHeaderOverrides(&header, opts.HeaderOverrides); err != nil {
		return 0, err
	}

	// the output is created before any input is touched
	wrtr, err := NewWriter(opts.Output, header, wopts...)
	if err != nil {
		return 0, err
	}

	var total int64

	for _, input := range opts.Inputs {
		fi, err := os.Stat(input)
		if err != nil {
			_, _ = wrtr.Close()

			return 0, fmt.Errorf("unable to stat input file: %w", err)
		}

		total += fi.Size()
	}

	prog := newProgress(total)

	for _, input := range opts.Inputs {
		prog.Remove()

		rdr, err := NewReader(input, opts.Filter)
		if err != nil {
			_, _ = wrtr.Close()

			return 0, err
		}

		slog.Info("copying input file", "path", input, "size", rdr.Size())

		err = copyEntities(prog, rdr, wrtr, opts.Clean)
		if cerr := rdr.Close(); cerr != nil && err == nil {
			err = cerr
		}

		if err != nil {
			_, _ = wrtr.Close()

			return 0, err
		}

		prog.FileDone(rdr.Size())
	}

	prog.Done()

	return wrtr.Close()
}

// copyEntities streams the reader's buffers into the writer, scrubbing the
// selected provenance attributes in place along the way.
func copyEntities(prog Progress, rdr *Reader, wrtr *Writer, clean CleanSet) error {
	for {
		buf, err := rdr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		} else if err != nil {
			return err
		}

		prog.Update(rdr.Offset())

		if clean.Any() {
			for _, e := range buf.Entities {
				clean.Scrub(e)
			}
		}

		if err := wrtr.Write(buf); err != nil {
			return err
		}
	}
}
