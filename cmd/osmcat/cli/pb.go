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

package cli

import (
	"fmt"
	"os"

	pb "gopkg.in/cheggaaa/pb.v1"

	"m4o.io/osmcat"
)

// progressBar renders run progress on stderr, tracking the bytes consumed
// relative to the combined size of the inputs.
type progressBar struct {
	bar  *pb.ProgressBar
	done int64
}

// NewProgressBar creates a progress sink for a run over total bytes of
// input.
func NewProgressBar(total int64) osmcat.Progress {
	bar := pb.New64(total).SetUnits(pb.U_BYTES_DEC).SetWidth(79)
	bar.Output = os.Stderr
	bar.Start()

	return &progressBar{bar: bar}
}

// Update advances the bar to the offset within the current input file.
func (p *progressBar) Update(offset int64) {
	p.bar.Set64(p.done + offset)
}

// FileDone banks one fully copied input file of the given size.
func (p *progressBar) FileDone(size int64) {
	p.done += size
	p.bar.Set64(p.done)
}

// Remove clears the terminal line of progress output.
func (p *progressBar) Remove() {
	fmt.Fprintf(os.Stderr, "\033[2K\r")
}

// Done finishes the bar without printing a trailing newline.
func (p *progressBar) Done() {
	// make sure newline is not printed by Finish()
	p.bar.Output = nil
	p.bar.NotPrint = true

	p.bar.Finish()

	fmt.Fprintf(os.Stderr, "\033[2K\r") // clear status bar
}
