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
	"fmt"

	"github.com/cqlstream/cqlv1/datacodec"
	"github.com/cqlstream/cqlv1/primitive"
)

// EncodeRow encodes one row of heterogeneous positional Go values into the
// [bytes]-per-column wire form described by m, delegating conversion to
// registry per column. len(values) must equal m.Count().
func (m *Metadata) EncodeRow(b *primitive.Buffer, registry *datacodec.Registry, values []interface{}) error {
	if len(values) != m.Count() {
		return fmt.Errorf("row has %d values but metadata has %d columns", len(values), m.Count())
	}
	for i, col := range m.Columns {
		codec := registry.Lookup(col.Type)
		encoded, err := codec.Encode(values[i])
		if err != nil {
			return fmt.Errorf("cannot encode column %d (%s): %w", i, col.ShortName, err)
		}
		b.PackBytes(encoded)
	}
	return nil
}

// DecodeRow reads one row of [bytes]-per-column values from b, returning
// them decoded into native Go values keyed by column index.
func (m *Metadata) DecodeRow(b *primitive.Buffer, registry *datacodec.Registry) ([]interface{}, error) {
	values := make([]interface{}, m.Count())
	for i, col := range m.Columns {
		raw, err := b.UnpackBytes()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack column %d (%s): %w", i, col.ShortName, err)
		}
		values[i], err = decodeOne(registry, col, raw)
		if err != nil {
			return nil, fmt.Errorf("cannot decode column %d (%s): %w", i, col.ShortName, err)
		}
	}
	return values, nil
}

func decodeOne(registry *datacodec.Registry, col *Column, raw []byte) (interface{}, error) {
	codec := registry.Lookup(col.Type)
	dest := zeroValueFor(col.Type)
	if _, err := codec.Decode(raw, dest); err != nil {
		return nil, err
	}
	return derefPointer(dest), nil
}
