// Copyright 2020 DataStax
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package datacodec converts between CQL wire values ([bytes] column
// contents) and Go values, one codec per CQL type.
package datacodec

import (
	"errors"
	"fmt"

	"github.com/cqlstream/cqlv1/datatype"
)

// ErrWrongGoType is returned when a caller passes a source or destination
// value of a Go type the codec does not support. Every scalar codec in this
// package accepts exactly one Go type (plus its pointer, for nullability);
// unlike a general-purpose ORM this client never guesses a conversion.
var ErrWrongGoType = errors.New("wrong go type for this codec")

// ErrNoCodec reports that no codec is registered for a CQL type.
// Registry.Lookup does not return it; Lookup falls back to Unknown instead.
var ErrNoCodec = errors.New("no codec registered for this CQL type")

// ErrNotASCII is returned when encoding a string into the CQL ascii type
// finds a byte above 0x7F.
var ErrNotASCII = errors.New("string is not pure ASCII")

// ErrInvalidUTF8 is returned when decoding a CQL text or varchar value
// whose bytes are not well-formed UTF-8.
var ErrInvalidUTF8 = errors.New("bytes are not valid UTF-8")

// EncodingError wraps any failure returned by a codec's Encode or Decode
// method, giving callers one type to check with errors.As regardless of
// which codec or underlying cause (wrong Go type, truncated bytes) produced
// it. It is local to the call that triggered it; the connection is
// unaffected.
type EncodingError struct {
	Op  string // "encode" or "decode"
	Err error
}

func (e *EncodingError) Error() string { return fmt.Sprintf("cqlv1: %s error: %v", e.Op, e.Err) }

func (e *EncodingError) Unwrap() error { return e.Err }

func errCannotEncode(source interface{}, dt *datatype.Descriptor, err error) error {
	return &EncodingError{Op: "encode", Err: fmt.Errorf("cannot encode %T as CQL %s: %w", source, dt, err)}
}

func errCannotDecode(dest interface{}, dt *datatype.Descriptor, err error) error {
	return &EncodingError{Op: "decode", Err: fmt.Errorf("cannot decode CQL %s into %T: %w", dt, dest, err)}
}

func errWrongMinimumLength(what string, expected, actual int) error {
	return fmt.Errorf("%s: expected at least %d bytes, got %d", what, expected, actual)
}

func errWrongFixedLength(what string, expected, actual int) error {
	return fmt.Errorf("%s: expected exactly %d bytes, got %d", what, expected, actual)
}
