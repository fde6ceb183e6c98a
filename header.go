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
	"strconv"
	"strings"
	"time"

	"m4o.io/osmcat/model"
)

// ErrUnknownHeaderOption is returned when a header override names an
// unsupported header field.
var ErrUnknownHeaderOption = errors.New("unknown header option")

// ErrBadHeaderOption is returned when a header override is malformed or its
// value cannot be parsed.
var ErrBadHeaderOption = errors.New("bad header option")

// ApplyHeaderOverrides applies KEY=VALUE overrides, as given on the command
// line, to the header.  Supported keys are generator, source,
// osmosis_replication_timestamp, osmosis_replication_sequence_number, and
// osmosis_replication_base_url.
func ApplyHeaderOverrides(header *model.Header, overrides []string) error {
	for _, override := range overrides {
		key, value, found := strings.Cut(override, "=")
		if !found {
			return fmt.Errorf("%w: %q is not of the form KEY=VALUE", ErrBadHeaderOption, override)
		}

		switch key {
		case "generator":
			header.WritingProgram = value
		case "source":
			header.Source = value
		case "osmosis_replication_timestamp":
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return fmt.Errorf("%w: %q: %w", ErrBadHeaderOption, override, err)
			}

			header.OsmosisReplicationTimestamp = ts.UTC()
		case "osmosis_replication_sequence_number":
			seq, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("%w: %q: %w", ErrBadHeaderOption, override, err)
			}

			header.OsmosisReplicationSequenceNumber = seq
		case "osmosis_replication_base_url":
			header.OsmosisReplicationBaseURL = value
		default:
			return fmt.Errorf("%w: %q", ErrUnknownHeaderOption, key)
		}
	}

	return nil
}
