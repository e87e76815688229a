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

// Boolean is the codec for the CQL boolean type. On the wire it is a
// single byte: zero is false, anything else is true.
var Boolean Codec = &booleanCodec{}

type booleanCodec struct{}

func (c *booleanCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Boolean
}

func (c *booleanCodec) Encode(source interface{}) ([]byte, error) {
	switch s := source.(type) {
	case nil:
		return nil, nil
	case bool:
		if s {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case *bool:
		if s == nil {
			return nil, nil
		}
		if *s {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
}

func (c *booleanCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*bool)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = false
		return true, nil
	}
	if len(source) != 1 {
		return false, errCannotDecode(dest, c.DataType(), errWrongFixedLength("[boolean]", 1, len(source)))
	}
	*d = source[0] != 0
	return false, nil
}
