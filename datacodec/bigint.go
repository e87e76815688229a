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

// Bigint is the codec for the CQL bigint type: a big-endian signed int64.
var Bigint Codec = &int64Codec{dataType: datatype.Of.Bigint}

// Counter is the codec for the CQL counter type, wire-identical to bigint.
var Counter Codec = &int64Codec{dataType: datatype.Of.Counter}

type int64Codec struct {
	dataType *datatype.Descriptor
}

func (c *int64Codec) DataType() *datatype.Descriptor {
	return c.dataType
}

func (c *int64Codec) Encode(source interface{}) ([]byte, error) {
	var val int64
	switch s := source.(type) {
	case nil:
		return nil, nil
	case int64:
		val = s
	case *int64:
		if s == nil {
			return nil, nil
		}
		val = *s
	default:
		return nil, errCannotEncode(source, c.dataType, ErrWrongGoType)
	}
	dest := make([]byte, 8)
	binary.BigEndian.PutUint64(dest, uint64(val))
	return dest, nil
}

func (c *int64Codec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*int64)
	if !ok {
		return false, errCannotDecode(dest, c.dataType, ErrWrongGoType)
	}
	if source == nil {
		*d = 0
		return true, nil
	}
	if len(source) != 8 {
		return false, errCannotDecode(dest, c.dataType, errWrongFixedLength("[bigint]", 8, len(source)))
	}
	*d = int64(binary.BigEndian.Uint64(source))
	return false, nil
}
