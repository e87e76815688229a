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

package metadata

import (
	"math/big"

	"github.com/cqlstream/cqlv1/datacodec"
	"github.com/cqlstream/cqlv1/datatype"
)

// zeroValueFor returns a pointer to a zero value of the Go type the codec
// registered for d's code expects as a Decode destination, so DecodeRow can
// decode heterogeneous columns without the caller naming a type up front.
func zeroValueFor(d *datatype.Descriptor) interface{} {
	switch d.Code {
	case datatype.Ascii, datatype.Text, datatype.Varchar:
		return new(string)
	case datatype.Blob:
		return new([]byte)
	case datatype.Boolean:
		return new(bool)
	case datatype.Bigint, datatype.Counter:
		return new(int64)
	case datatype.Int:
		return new(int32)
	case datatype.Double:
		return new(float64)
	case datatype.Float:
		return new(float32)
	case datatype.Timestamp:
		return new(float64)
	case datatype.Varint:
		var p *big.Int
		return &p
	case datatype.Decimal:
		return new(datacodec.CqlDecimal)
	default:
		return new(string)
	}
}

// derefPointer returns the value pointed to by a pointer obtained from
// zeroValueFor, as a plain interface{} rather than a typed pointer.
func derefPointer(ptr interface{}) interface{} {
	switch p := ptr.(type) {
	case *string:
		return *p
	case *[]byte:
		return *p
	case *bool:
		return *p
	case *int64:
		return *p
	case *int32:
		return *p
	case *float64:
		return *p
	case *float32:
		return *p
	case **big.Int:
		return *p
	case *datacodec.CqlDecimal:
		return *p
	default:
		return ptr
	}
}
