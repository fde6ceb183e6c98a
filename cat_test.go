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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"m4o.io/osmcat/model"
)

func testInfo() *model.Info {
	return &model.Info{
		Version:   3,
		UID:       9,
		Timestamp: time.Date(2021, time.July, 15, 21, 10, 0, 0, time.UTC),
		Changeset: 77,
		User:      "bob",
		Visible:   true,
	}
}

// testEntities is two nodes followed by three ways, the shape used
// throughout the run tests.
func testEntities() []model.Entity {
	return []model.Entity{
		&model.Node{ID: 1, Tags: map[string]string{"highway": "crossing"}, Info: testInfo(), Lat: 51.5285, Lon: -0.1243},
		&model.Node{ID: 2, Tags: map[string]string{}, Info: testInfo(), Lat: 51.5286, Lon: -0.1244},
		&model.Way{ID: 10, Tags: map[string]string{"highway": "primary"}, Info: testInfo(), NodeIDs: []model.ID{1, 2}},
		&model.Way{ID: 11, Tags: map[string]string{}, Info: testInfo(), NodeIDs: []model.ID{2, 1}},
		&model.Way{ID: 12, Tags: map[string]string{}, Info: testInfo(), NodeIDs: []model.ID{1, 2}},
	}
}

func writeTestFile(t *testing.T, path string, header model.Header, entities []model.Entity) {
	t.Helper()

	w, err := NewWriter(path, header)
	require.NoError(t, err)

	require.NoError(t, w.Write(&Buffer{Entities: entities}))

	_, err = w.Close()
	require.NoError(t, err)
}

func readTestFile(t *testing.T, path string) (model.Header, []model.Entity) {
	t.Helper()

	r, err := NewReader(path, TypeFilter{})
	require.NoError(t, err)

	defer func() {
		require.NoError(t, r.Close())
	}()

	var entities []model.Entity

	for {
		buf, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		require.NoError(t, err)

		entities = append(entities, buf.Entities...)
	}

	return r.Header(), entities
}

func entityKeys(entities []model.Entity) []model.ID {
	ids := make([]model.ID, len(entities))
	for i, e := range entities {
		ids[i] = e.GetID()
	}

	return ids
}

func TestWriterReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "round.osm.pbf")

	writeTestFile(t, path, model.Header{WritingProgram: "osmcat-test"}, testEntities())

	header, entities := readTestFile(t, path)

	assert.Equal(t, "osmcat-test", header.WritingProgram)
	assert.Equal(t, []model.ID{1, 2, 10, 11, 12}, entityKeys(entities))

	n, ok := entities[0].(*model.Node)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"highway": "crossing"}, n.Tags)
	assert.Equal(t, testInfo(), n.Info)

	w, ok := entities[2].(*model.Way)
	require.True(t, ok)
	assert.Equal(t, []model.ID{1, 2}, w.NodeIDs)
	assert.Equal(t, testInfo(), w.Info)
}

func TestWriterAcceptsEmptyBuffer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.osm.pbf")

	w, err := NewWriter(path, model.Header{})
	require.NoError(t, err)

	require.NoError(t, w.Write(&Buffer{}))
	require.NoError(t, w.Write(&Buffer{Entities: testEntities()}))
	require.NoError(t, w.Write(&Buffer{}))

	_, err = w.Close()
	require.NoError(t, err)

	_, entities := readTestFile(t, path)
	assert.Equal(t, []model.ID{1, 2, 10, 11, 12}, entityKeys(entities))
}

func TestWriterRefusesExistingOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exists.osm.pbf")

	writeTestFile(t, path, model.Header{}, testEntities())

	_, err := NewWriter(path, model.Header{})
	assert.ErrorIs(t, err, ErrOutputExists)

	w, err := NewWriter(path, model.Header{}, WithOverwrite())
	require.NoError(t, err)

	_, err = w.Close()
	require.NoError(t, err)
}

func TestRunSingleFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, in, model.Header{WritingProgram: "osmcat-test", Source: "fixture"}, testEntities())

	written, err := Run(Options{
		Inputs:      []string{in},
		Output:      out,
		Compression: DefaultBlobCompression,
	})
	require.NoError(t, err)
	assert.Positive(t, written)

	fi, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, fi.Size(), written)

	header, entities := readTestFile(t, out)

	// the single-input header is copied through
	assert.Equal(t, "osmcat-test", header.WritingProgram)
	assert.Equal(t, "fixture", header.Source)
	assert.Equal(t, []model.ID{1, 2, 10, 11, 12}, entityKeys(entities))
}

func TestRunTypeFilter(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, in, model.Header{}, testEntities())

	filter, err := ParseTypeFilter([]string{"way"})
	require.NoError(t, err)

	_, err = Run(Options{
		Inputs:      []string{in},
		Output:      out,
		Filter:      filter,
		Compression: DefaultBlobCompression,
	})
	require.NoError(t, err)

	_, entities := readTestFile(t, out)

	assert.Equal(t, []model.ID{10, 11, 12}, entityKeys(entities))

	for _, e := range entities {
		assert.Equal(t, model.WAY, model.Type(e))
	}
}

func TestRunClean(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, in, model.Header{}, testEntities())

	clean, err := ParseCleanSet([]string{"version", "uid", "user"})
	require.NoError(t, err)

	_, err = Run(Options{
		Inputs:      []string{in},
		Output:      out,
		Clean:       clean,
		Compression: DefaultBlobCompression,
	})
	require.NoError(t, err)

	_, entities := readTestFile(t, out)
	require.Len(t, entities, 5)

	for _, e := range entities {
		info := e.GetInfo()
		require.NotNil(t, info)

		assert.EqualValues(t, 0, info.Version)
		assert.EqualValues(t, 0, info.UID)
		assert.Equal(t, "", info.User)

		// unselected attributes survive the copy
		assert.EqualValues(t, 77, info.Changeset)
		assert.Equal(t, testInfo().Timestamp, info.Timestamp)
	}
}

func TestRunMultiFile(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.osm.pbf")
	second := filepath.Join(dir, "second.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, first, model.Header{WritingProgram: "first"}, []model.Entity{
		&model.Node{ID: 1, Info: testInfo()},
		&model.Node{ID: 2, Info: testInfo()},
	})
	writeTestFile(t, second, model.Header{WritingProgram: "second"}, []model.Entity{
		&model.Way{ID: 10, Info: testInfo(), NodeIDs: []model.ID{1, 2}},
		&model.Relation{ID: 20, Info: testInfo(), Members: []model.Member{{ID: 10, Type: model.WAY, Role: "outer"}}},
	})

	_, err := Run(Options{
		Inputs:      []string{first, second},
		Output:      out,
		Compression: DefaultBlobCompression,
	})
	require.NoError(t, err)

	header, entities := readTestFile(t, out)

	// multiple inputs start from a blank header
	assert.Equal(t, "", header.WritingProgram)
	assert.Equal(t, []model.ID{1, 2, 10, 20}, entityKeys(entities))
	assert.Equal(t, model.RELATION, model.Type(entities[3]))
}

func TestRunMultiFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.osm.pbf")
	missing := filepath.Join(dir, "missing.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, first, model.Header{}, []model.Entity{&model.Node{ID: 1, Info: testInfo()}})

	_, err := Run(Options{
		Inputs:      []string{first, missing},
		Output:      out,
		Compression: DefaultBlobCompression,
	})
	require.Error(t, err)

	// the output is created before the inputs are probed, so the failed
	// run leaves it behind
	_, err = os.Stat(out)
	require.NoError(t, err)
}

func TestRunMultiFileHeaderOverrides(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.osm.pbf")
	second := filepath.Join(dir, "second.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, first, model.Header{WritingProgram: "first"}, []model.Entity{&model.Node{ID: 1, Info: testInfo()}})
	writeTestFile(t, second, model.Header{WritingProgram: "second"}, []model.Entity{&model.Node{ID: 2, Info: testInfo()}})

	_, err := Run(Options{
		Inputs:          []string{first, second},
		Output:          out,
		Compression:     DefaultBlobCompression,
		HeaderOverrides: []string{"generator=osmcat", "source=merged"},
	})
	require.NoError(t, err)

	header, entities := readTestFile(t, out)

	assert.Equal(t, "osmcat", header.WritingProgram)
	assert.Equal(t, "merged", header.Source)
	assert.Equal(t, []model.ID{1, 2}, entityKeys(entities))
}

func TestRunRefusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, in, model.Header{}, testEntities())
	writeTestFile(t, out, model.Header{}, nil)

	_, err := Run(Options{
		Inputs:      []string{in},
		Output:      out,
		Compression: DefaultBlobCompression,
	})
	assert.ErrorIs(t, err, ErrOutputExists)

	_, err = Run(Options{
		Inputs:      []string{in},
		Output:      out,
		Overwrite:   true,
		Compression: DefaultBlobCompression,
	})
	require.NoError(t, err)
}

func TestRunNoInputs(t *testing.T) {
	_, err := Run(Options{Output: filepath.Join(t.TempDir(), "out.osm.pbf")})
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestRunBadHeaderOverride(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.osm.pbf")

	writeTestFile(t, in, model.Header{}, testEntities())

	_, err := Run(Options{
		Inputs:          []string{in},
		Output:          filepath.Join(dir, "out.osm.pbf"),
		HeaderOverrides: []string{"bogus=1"},
	})
	assert.ErrorIs(t, err, ErrUnknownHeaderOption)
}

// recordingProgress captures progress callbacks for assertions.
type recordingProgress struct {
	total    int64
	updates  int
	fileDone []int64
	removed  int
	done     bool
}

func (p *recordingProgress) Update(int64) { p.updates++ }

func (p *recordingProgress) FileDone(size int64) { p.fileDone = append(p.fileDone, size) }

func (p *recordingProgress) Remove() { p.removed++ }

func (p *recordingProgress) Done() { p.done = true }

func TestRunProgressReporting(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.osm.pbf")
	second := filepath.Join(dir, "second.osm.pbf")
	out := filepath.Join(dir, "out.osm.pbf")

	writeTestFile(t, first, model.Header{}, []model.Entity{&model.Node{ID: 1, Info: testInfo()}})
	writeTestFile(t, second, model.Header{}, []model.Entity{&model.Node{ID: 2, Info: testInfo()}})

	var prog recordingProgress

	_, err := Run(Options{
		Inputs:      []string{first, second},
		Output:      out,
		Compression: DefaultBlobCompression,
		NewProgress: func(total int64) Progress {
			prog.total = total

			return &prog
		},
	})
	require.NoError(t, err)

	var total int64

	for _, path := range []string{first, second} {
		fi, err := os.Stat(path)
		require.NoError(t, err)

		total += fi.Size()
	}

	assert.Equal(t, total, prog.total)
	require.Len(t, prog.fileDone, 2)
	assert.Equal(t, total, prog.fileDone[0]+prog.fileDone[1])
	assert.Equal(t, 2, prog.removed)
	assert.True(t, prog.done)
	assert.Positive(t, prog.updates)
}
