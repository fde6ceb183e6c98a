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

// Progress receives byte offsets as a run advances.  Offsets are measured
// against a fixed scale: one file's size, or the sum of all input sizes.
// The copy loop is sequential, so implementations need not be safe for
// concurrent use.
type Progress interface {
	// Update reports the byte offset within the current input file.
	Update(offset int64)

	// FileDone reports that one input file of the given size has been
	// fully copied; subsequent Update offsets restart at zero.
	FileDone(size int64)

	// Remove clears any visual state before the run switches files.
	Remove()

	// Done finalizes the progress display.
	Done()
}

// NopProgress discards all progress reporting.
var NopProgress Progress = nopProgress{}

type nopProgress struct{}

func (nopProgress) Update(int64)   {}
func (nopProgress) FileDone(int64) {}
func (nopProgress) Remove()        {}
func (nopProgress) Done()          {}
