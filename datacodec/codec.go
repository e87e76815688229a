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

package datacodec

import "github.com/cqlstream/cqlv1/datatype"

// Encoder converts a Go value into a CQL wire value. A nil source (or a nil
// typed pointer) encodes to a nil []byte, the CQL NULL marker.
type Encoder interface {
	Encode(source interface{}) (dest []byte, err error)
}

// Decoder converts a CQL wire value into a Go value. dest must be a non-nil
// pointer to the codec's Go type. A nil source leaves *dest at its zero
// value and reports wasNull.
type Decoder interface {
	Decode(source []byte, dest interface{}) (wasNull bool, err error)
}

// Codec is a codec for one CQL type.
type Codec interface {
	Encoder
	Decoder
	DataType() *datatype.Descriptor
}

// Registry maps CQL type codes to codecs. The zero value is ready to use
// with no entries; NewDefaultRegistry returns one preloaded with every
// codec this package implements.
type Registry struct {
	byCode map[datatype.Code]Codec
}

// NewDefaultRegistry returns a Registry preloaded with a codec for every CQL
// type this client can encode and decode. Types with no registered codec
// (UUID, INET, TIMEUUID, the collection types, CUSTOM) fall back to Unknown
// at Lookup time rather than erroring, per the forward-compatible
// pass-through behavior described for unsupported types.
func NewDefaultRegistry() *Registry {
	r := &Registry{byCode: make(map[datatype.Code]Codec, 16)}
	r.Register(Ascii)
	r.Register(Bigint)
	r.Register(Blob)
	r.Register(Boolean)
	r.Register(Counter)
	r.Register(Decimal)
	r.Register(Double)
	r.Register(Float)
	r.Register(Int)
	r.Register(Text)
	r.Register(Timestamp)
	r.Register(Varchar)
	r.Register(Varint)
	return r
}

// Register installs c under its own data type's code, replacing any codec
// previously registered for that code.
func (r *Registry) Register(c Codec) {
	if r.byCode == nil {
		r.byCode = make(map[datatype.Code]Codec)
	}
	r.byCode[c.DataType().Code] = c
}

// Lookup returns the codec registered for d's code, or an Unknown codec
// wrapping d if none is registered.
func (r *Registry) Lookup(d *datatype.Descriptor) Codec {
	if r != nil {
		if c, ok := r.byCode[d.Code]; ok {
			return c
		}
	}
	return NewUnknown(d)
}
