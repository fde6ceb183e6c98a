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
	"strings"

	"m4o.io/osmcat/model"
)

// ErrUnknownCleanAttr is returned when a clean attribute name is not one of
// version, changeset, timestamp, uid, or user.
var ErrUnknownCleanAttr = errors.New("unknown attribute on clean option")

// CleanSet selects which provenance attributes to clear on every entity
// that streams through.  The zero value cleans nothing.
type CleanSet struct {
	Version   bool
	Changeset bool
	Timestamp bool
	UID       bool
	User      bool
}

// ParseCleanSet builds a CleanSet from attribute names, as given on the
// command line.
func ParseCleanSet(attrs []string) (CleanSet, error) {
	var c CleanSet

	for _, attr := range attrs {
		switch attr {
		case "version":
			c.Version = true
		case "changeset":
			c.Changeset = true
		case "timestamp":
			c.Timestamp = true
		case "uid":
			c.UID = true
		case "user":
			c.User = true
		default:
			return CleanSet{}, fmt.Errorf("%w: %q", ErrUnknownCleanAttr, attr)
		}
	}

	return c, nil
}

// Any reports whether at least one attribute is selected.
func (c CleanSet) Any() bool {
	return c.Version || c.Changeset || c.Timestamp || c.UID || c.User
}

// Scrub overwrites the selected attributes of the entity's provenance
// block, in place, with their canonical unset values.  Attributes not
// selected are untouched.
func (c CleanSet) Scrub(e model.Entity) {
	info := e.GetInfo()
	if info == nil {
		return
	}

	if c.Version {
		info.Version = 0
	}

	if c.Changeset {
		info.Changeset = 0
	}

	if c.Timestamp {
		info.Timestamp = model.Epoch
	}

	if c.UID {
		info.UID = 0
	}

	if c.User {
		info.User = ""
	}
}

func (c CleanSet) String() string {
	var names []string

	if c.Version {
		names = append(names, "version")
	}

	if c.Changeset {
		names = append(names, "changeset")
	}

	if c.Timestamp {
		names = append(names, "timestamp")
	}

	if c.UID {
		names = append(names, "uid")
	}

	if c.User {
		names = append(names, "user")
	}

	if len(names) == 0 {
		return "(none)"
	}

	return strings.Join(names, ",")
}
