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
	"unicode/utf8"

	"github.com/cqlstream/cqlv1/datatype"
)

// Ascii is the codec for the CQL ascii type. Its Go type is string; Encode
// rejects any byte above 0x7F.
var Ascii Codec = &stringCodec{dataType: datatype.Of.Ascii, asciiOnly: true}

// Text is the codec for the CQL text type (an alias of varchar at the wire
// level; both are UTF-8 byte sequences with no length validation here).
var Text Codec = &stringCodec{dataType: datatype.Of.Text}

// Varchar is the codec for the CQL varchar type.
var Varchar Codec = &stringCodec{dataType: datatype.Of.Varchar}

type stringCodec struct {
	dataType  *datatype.Descriptor
	asciiOnly bool
}

func (c *stringCodec) DataType() *datatype.Descriptor {
	return c.dataType
}

func (c *stringCodec) Encode(source interface{}) ([]byte, error) {
	var s string
	switch v := source.(type) {
	case nil:
		return nil, nil
	case string:
		s = v
	case *string:
		if v == nil {
			return nil, nil
		}
		s = *v
	default:
		return nil, errCannotEncode(source, c.dataType, ErrWrongGoType)
	}
	if c.asciiOnly {
		for i := 0; i < len(s); i++ {
			if s[i] > 0x7F {
				return nil, errCannotEncode(source, c.dataType, ErrNotASCII)
			}
		}
	}
	return []byte(s), nil
}

func (c *stringCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*string)
	if !ok {
		return false, errCannotDecode(dest, c.dataType, ErrWrongGoType)
	}
	if source == nil {
		*d = ""
		return true, nil
	}
	if !utf8.Valid(source) {
		return false, errCannotDecode(dest, c.dataType, ErrInvalidUTF8)
	}
	*d = string(source)
	return false, nil
}
