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
	"m4o.io/osmcat/model"
)

// Buffer is an ordered batch of entities moved between a Reader and a
// Writer in one step.  Entities may be mutated in place before the buffer
// is written; a buffer must not be touched after it has been handed to a
// Writer.
type Buffer struct {
	Entities []model.Entity
}

// Len returns the number of entities in the buffer.
func (b *Buffer) Len() int {
	return len(b.Entities)
}
