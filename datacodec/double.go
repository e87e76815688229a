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

// Double is the codec for the CQL double type: a big-endian IEEE 754
// binary64 value.
var Double Codec = &doubleCodec{}

type doubleCodec struct{}

func (c *doubleCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Double
}

func (c *doubleCodec) Encode(source interface{}) ([]byte, error) {
	var val float64
	switch s := source.(type) {
	case nil:
		return nil, nil
	case float64:
		val = s
	case *float64:
		if s == nil {
			return nil, nil
		}
		val = *s
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
	dest := make([]byte, 8)
	binary.BigEndian.PutUint64(dest, math.Float64bits(val))
	return dest, nil
}

func (c *doubleCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*float64)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = 0
		return true, nil
	}
	if len(source) != 8 {
		return false, errCannotDecode(dest, c.DataType(), errWrongFixedLength("[double]", 8, len(source)))
	}
	*d = math.Float64frombits(binary.BigEndian.Uint64(source))
	return false, nil
}
