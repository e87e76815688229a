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

// Timestamp is the codec for the CQL timestamp type: a big-endian int64 of
// milliseconds since the Unix epoch on the wire. Its Go type is float64
// seconds since the epoch (fractional seconds carry sub-second precision);
// Encode multiplies by 1000 and Decode divides by 1000.
var Timestamp Codec = &timestampCodec{}

type timestampCodec struct{}

func (c *timestampCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Timestamp
}

func (c *timestampCodec) Encode(source interface{}) ([]byte, error) {
	var seconds float64
	switch s := source.(type) {
	case nil:
		return nil, nil
	case float64:
		seconds = s
	case *float64:
		if s == nil {
			return nil, nil
		}
		seconds = *s
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
	millis := int64(seconds * 1000)
	dest := make([]byte, 8)
	binary.BigEndian.PutUint64(dest, uint64(millis))
	return dest, nil
}

func (c *timestampCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*float64)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = 0
		return true, nil
	}
	if len(source) != 8 {
		return false, errCannotDecode(dest, c.DataType(), errWrongFixedLength("[timestamp]", 8, len(source)))
	}
	millis := int64(binary.BigEndian.Uint64(source))
	*d = float64(millis) / 1000
	return false, nil
}
