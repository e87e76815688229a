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

	"github.com/cqlstream/cqlv1/datatype"
)

// Int is the codec for the CQL int type: a big-endian signed int32.
var Int Codec = &int32Codec{}

type int32Codec struct{}

func (c *int32Codec) DataType() *datatype.Descriptor {
	return datatype.Of.Int
}

func (c *int32Codec) Encode(source interface{}) ([]byte, error) {
	var val int32
	switch s := source.(type) {
	case nil:
		return nil, nil
	case int32:
		val = s
	case *int32:
		if s == nil {
			return nil, nil
		}
		val = *s
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
	dest := make([]byte, 4)
	binary.BigEndian.PutUint32(dest, uint32(val))
	return dest, nil
}

func (c *int32Codec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*int32)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = 0
		return true, nil
	}
	if len(source) != 4 {
		return false, errCannotDecode(dest, c.DataType(), errWrongFixedLength("[int]", 4, len(source)))
	}
	*d = int32(binary.BigEndian.Uint32(source))
	return false, nil
}
