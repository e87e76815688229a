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

import (
	"encoding/binary"
	"math/big"

	"github.com/cqlstream/cqlv1/datatype"
)

// CqlDecimal is the wire representation of a CQL decimal value: an
// unscaled integer and a base-10 scale, such that the represented value is
// Unscaled * 10^(-Scale). There is no built-in arbitrary-precision decimal
// type in the standard library, so this is the codec's native Go type.
type CqlDecimal struct {
	Unscaled *big.Int
	Scale    int32
}

// Decimal is the codec for the CQL decimal type: a four-byte scale
// followed by a varint-encoded unscaled value.
var Decimal Codec = &decimalCodec{}

type decimalCodec struct{}

func (c *decimalCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Decimal
}

func (c *decimalCodec) Encode(source interface{}) ([]byte, error) {
	var val CqlDecimal
	switch s := source.(type) {
	case nil:
		return nil, nil
	case CqlDecimal:
		val = s
	case *CqlDecimal:
		if s == nil {
			return nil, nil
		}
		val = *s
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
	unscaled := writeVarint(val.Unscaled)
	dest := make([]byte, 4+len(unscaled))
	binary.BigEndian.PutUint32(dest, uint32(val.Scale))
	copy(dest[4:], unscaled)
	return dest, nil
}

func (c *decimalCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*CqlDecimal)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = CqlDecimal{}
		return true, nil
	}
	if len(source) < 4 {
		return false, errCannotDecode(dest, c.DataType(), errWrongMinimumLength("[decimal]", 4, len(source)))
	}
	scale := int32(binary.BigEndian.Uint32(source[:4]))
	d.Scale = scale
	d.Unscaled = readVarint(source[4:])
	return false, nil
}
