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

// Blob is the codec for the CQL blob type. Its Go type is []byte; unlike
// the other codecs, a nil []byte and "no value" are indistinguishable on
// encode, so a non-nil empty slice must be used to send an empty (not null)
// blob.
var Blob Codec = &blobCodec{}

type blobCodec struct{}

func (c *blobCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Blob
}

func (c *blobCodec) Encode(source interface{}) ([]byte, error) {
	switch s := source.(type) {
	case nil:
		return nil, nil
	case []byte:
		return s, nil
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
}

func (c *blobCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*[]byte)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = nil
		return true, nil
	}
	*d = source
	return false, nil
}
