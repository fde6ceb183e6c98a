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

// Package pb holds the OSMPBF wire messages, encoded and decoded directly
// with protowire.  Field numbers and encodings follow fileformat.proto and
// osmformat.proto; the ChangeSet payload is an extension, see changeset.go.
package pb

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// ErrMalformedMessage is returned when a protobuf field cannot be consumed.
var ErrMalformedMessage = errors.New("malformed protobuf message")

func parseErr(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformedMessage, protowire.ParseError(n))
}

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)

	return protowire.AppendVarint(b, v)
}

func appendSintField(b []byte, num protowire.Number, v int64) []byte {
	return appendVarintField(b, num, protowire.EncodeZigZag(v))
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendBytes(b, v)
}

func appendStringField(b []byte, num protowire.Number, v string) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)

	return protowire.AppendString(b, v)
}

// appendPacked encodes vals as a single packed length-delimited field, with
// enc mapping each value to its varint representation.
func appendPacked[T any](b []byte, num protowire.Number, vals []T, enc func(T) uint64) []byte {
	if len(vals) == 0 {
		return b
	}

	var payload []byte
	for _, v := range vals {
		payload = protowire.AppendVarint(payload, enc(v))
	}

	return appendBytesField(b, num, payload)
}

func appendPackedSint64(b []byte, num protowire.Number, vals []int64) []byte {
	return appendPacked(b, num, vals, func(v int64) uint64 { return protowire.EncodeZigZag(v) })
}

func appendPackedSint32(b []byte, num protowire.Number, vals []int32) []byte {
	return appendPacked(b, num, vals, func(v int32) uint64 { return protowire.EncodeZigZag(int64(v)) })
}

func appendPackedInt32(b []byte, num protowire.Number, vals []int32) []byte {
	return appendPacked(b, num, vals, func(v int32) uint64 { return uint64(int64(v)) })
}

func appendPackedUint32(b []byte, num protowire.Number, vals []uint32) []byte {
	return appendPacked(b, num, vals, func(v uint32) uint64 { return uint64(v) })
}

func appendPackedBool(b []byte, num protowire.Number, vals []bool) []byte {
	return appendPacked(b, num, vals, func(v bool) uint64 {
		if v {
			return 1
		}

		return 0
	})
}

// consumeVarints consumes one varint field occurrence, packed or not, and
// hands every contained value to f.  Both forms are legal on the wire.
func consumeVarints(b []byte, typ protowire.Type, f func(uint64)) (int, error) {
	switch typ {
	case protowire.VarintType:
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return 0, parseErr(n)
		}

		f(v)

		return n, nil
	case protowire.BytesType:
		payload, n := protowire.ConsumeBytes(b)
		if n < 0 {
			return 0, parseErr(n)
		}

		for len(payload) > 0 {
			v, m := protowire.ConsumeVarint(payload)
			if m < 0 {
				return 0, parseErr(m)
			}

			f(v)
			payload = payload[m:]
		}

		return n, nil
	default:
		return 0, fmt.Errorf("%w: unexpected wire type %v", ErrMalformedMessage, typ)
	}
}

func consumeVarintField(b []byte, typ protowire.Type) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, fmt.Errorf("%w: unexpected wire type %v", ErrMalformedMessage, typ)
	}

	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, parseErr(n)
	}

	return v, n, nil
}

func consumeBytesField(b []byte, typ protowire.Type) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, fmt.Errorf("%w: unexpected wire type %v", ErrMalformedMessage, typ)
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, parseErr(n)
	}

	return v, n, nil
}

// skipField discards a field of any wire type.
func skipField(b []byte, num protowire.Number, typ protowire.Type) (int, error) {
	n := protowire.ConsumeFieldValue(num, typ, b)
	if n < 0 {
		return 0, parseErr(n)
	}

	return n, nil
}
