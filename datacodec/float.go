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
	"math"

	"github.com/cqlstream/cqlv1/datatype"
)

// Float is the codec for the CQL float type: a big-endian IEEE 754
// binary32 value. Encoding is exact; the codec never rounds. Callers
// comparing decoded values across a network round trip should use an
// approximate comparison, since the CQL float type itself only carries
// single precision.
var Float Codec = &floatCodec{}

type floatCodec struct{}

func (c *floatCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Float
}

func (c *floatCodec) Encode(source interface{}) ([]byte, error) {
	var val float32
	switch s := source.(type) {
	case nil:
		return nil, nil
	case float32:
		val = s
	case *float32:
		if s == nil {
			return nil, nil
		}
		val = *s
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
	dest := make([]byte, 4)
	binary.BigEndian.PutUint32(dest, math.Float32bits(val))
	return dest, nil
}

func (c *floatCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*float32)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = 0
		return true, nil
	}
	if len(source) != 4 {
		return false, errCannotDecode(dest, c.DataType(), errWrongFixedLength("[float]", 4, len(source)))
	}
	*d = math.Float32frombits(binary.BigEndian.Uint32(source))
	return false, nil
}
