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

package datatype

import (
	"fmt"

	"github.com/cqlstream/cqlv1/primitive"
)

// Pack appends the [option] encoding of d: a short type id, followed by
// whatever extra payload the id requires (a string for CUSTOM, nested
// [option] values for LIST/SET/MAP).
func Pack(b *primitive.Buffer, d *Descriptor) error {
	b.PackShort(uint16(d.Code))
	switch d.Code {
	case Custom:
		b.PackString(d.ClassName)
	case List, Set:
		return Pack(b, d.Elem)
	case Map:
		if err := Pack(b, d.Key); err != nil {
			return err
		}
		return Pack(b, d.Value)
	}
	return nil
}

// Unpack removes an [option] encoding from the front of b.
func Unpack(b *primitive.Buffer) (*Descriptor, error) {
	code, err := b.UnpackShort()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack [option] id: %w", err)
	}
	d := &Descriptor{Code: Code(code)}
	switch d.Code {
	case Custom:
		className, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack CUSTOM class name: %w", err)
		}
		d.ClassName = className
	case List, Set:
		elem, err := Unpack(b)
		if err != nil {
			return nil, fmt.Errorf("cannot unpack %s element type: %w", d.Code, err)
		}
		d.Elem = elem
	case Map:
		key, err := Unpack(b)
		if err != nil {
			return nil, fmt.Errorf("cannot unpack MAP key type: %w", err)
		}
		value, err := Unpack(b)
		if err != nil {
			return nil, fmt.Errorf("cannot unpack MAP value type: %w", err)
		}
		d.Key, d.Value = key, value
	}
	return d, nil
}
