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
	"encoding/hex"

	"github.com/cqlstream/cqlv1/datatype"
	"github.com/rs/zerolog/log"
)

// Unknown is a forward-compatible pass-through codec for CQL types this
// client does not implement a dedicated codec for (UUID, INET, TIMEUUID,
// the collection types, CUSTOM). Encode requires the caller to already hold
// the raw wire bytes; Decode hands back the raw wire bytes as a hex string
// rather than failing outright, so a caller that only needs to echo an
// opaque column value is not blocked by it.
type Unknown struct {
	dataType *datatype.Descriptor
}

// NewUnknown builds a pass-through codec for d.
func NewUnknown(d *datatype.Descriptor) Codec {
	return &Unknown{dataType: d}
}

func (c *Unknown) DataType() *datatype.Descriptor {
	return c.dataType
}

func (c *Unknown) Encode(source interface{}) ([]byte, error) {
	switch s := source.(type) {
	case nil:
		return nil, nil
	case []byte:
		log.Warn().Stringer("type", c.dataType).Msg("encoding with no dedicated codec; passing through raw bytes")
		return s, nil
	default:
		return nil, errCannotEncode(source, c.dataType, ErrWrongGoType)
	}
}

func (c *Unknown) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(*string)
	if !ok {
		return false, errCannotDecode(dest, c.dataType, ErrWrongGoType)
	}
	log.Warn().Stringer("type", c.dataType).Msg("decoding with no dedicated codec; rendering raw bytes as hex")
	if source == nil {
		*d = ""
		return true, nil
	}
	*d = hex.EncodeToString(source)
	return false, nil
}
