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

// Package datatype describes the CQL column type system of protocol
// version 1: the scalar and collection type ids that appear in result and
// prepared-statement metadata, and the [option] encoding used to carry them
// on the wire.
package datatype

import "fmt"

// Code is the wire id of a CQL column type, the [option id] of spec section 3.
type Code uint16

const (
	Custom    Code = 0x0000
	Ascii     Code = 0x0001
	Bigint    Code = 0x0002
	Blob      Code = 0x0003
	Boolean   Code = 0x0004
	Counter   Code = 0x0005
	Decimal   Code = 0x0006
	Double    Code = 0x0007
	Float     Code = 0x0008
	Int       Code = 0x0009
	Text      Code = 0x000A
	Timestamp Code = 0x000B
	Uuid      Code = 0x000C
	Varchar   Code = 0x000D
	Varint    Code = 0x000E
	Timeuuid  Code = 0x000F
	Inet      Code = 0x0010
	List      Code = 0x0020
	Map       Code = 0x0021
	Set       Code = 0x0022
)

func (c Code) String() string {
	switch c {
	case Custom:
		return "CUSTOM"
	case Ascii:
		return "ASCII"
	case Bigint:
		return "BIGINT"
	case Blob:
		return "BLOB"
	case Boolean:
		return "BOOLEAN"
	case Counter:
		return "COUNTER"
	case Decimal:
		return "DECIMAL"
	case Double:
		return "DOUBLE"
	case Float:
		return "FLOAT"
	case Int:
		return "INT"
	case Text:
		return "TEXT"
	case Timestamp:
		return "TIMESTAMP"
	case Uuid:
		return "UUID"
	case Varchar:
		return "VARCHAR"
	case Varint:
		return "VARINT"
	case Timeuuid:
		return "TIMEUUID"
	case Inet:
		return "INET"
	case List:
		return "LIST"
	case Map:
		return "MAP"
	case Set:
		return "SET"
	default:
		return fmt.Sprintf("UNKNOWN(0x%04X)", uint16(c))
	}
}

// Descriptor is the recursive tagged union that describes one column's type:
// a scalar is just a Code, CUSTOM carries a Java class name, and the three
// collection codes carry one or two nested element descriptors.
type Descriptor struct {
	Code Code

	// ClassName holds the Java class name of a CUSTOM type. Empty otherwise.
	ClassName string

	// Elem is the element type of a LIST or SET. Nil otherwise.
	Elem *Descriptor

	// Key and Value are the key and value types of a MAP. Nil otherwise.
	Key   *Descriptor
	Value *Descriptor
}

func (d *Descriptor) String() string {
	if d == nil {
		return "<nil>"
	}
	switch d.Code {
	case Custom:
		return fmt.Sprintf("CUSTOM(%s)", d.ClassName)
	case List:
		return fmt.Sprintf("LIST<%s>", d.Elem)
	case Set:
		return fmt.Sprintf("SET<%s>", d.Elem)
	case Map:
		return fmt.Sprintf("MAP<%s,%s>", d.Key, d.Value)
	default:
		return d.Code.String()
	}
}

// IsCollection reports whether d is LIST, MAP, or SET.
func (d *Descriptor) IsCollection() bool {
	switch d.Code {
	case List, Map, Set:
		return true
	default:
		return false
	}
}

func scalar(c Code) *Descriptor { return &Descriptor{Code: c} }

var (
	Of = struct {
		Ascii     *Descriptor
		Bigint    *Descriptor
		Blob      *Descriptor
		Boolean   *Descriptor
		Counter   *Descriptor
		Decimal   *Descriptor
		Double    *Descriptor
		Float     *Descriptor
		Int       *Descriptor
		Text      *Descriptor
		Timestamp *Descriptor
		Uuid      *Descriptor
		Varchar   *Descriptor
		Varint    *Descriptor
		Timeuuid  *Descriptor
		Inet      *Descriptor
	}{
		Ascii:     scalar(Ascii),
		Bigint:    scalar(Bigint),
		Blob:      scalar(Blob),
		Boolean:   scalar(Boolean),
		Counter:   scalar(Counter),
		Decimal:   scalar(Decimal),
		Double:    scalar(Double),
		Float:     scalar(Float),
		Int:       scalar(Int),
		Text:      scalar(Text),
		Timestamp: scalar(Timestamp),
		Uuid:      scalar(Uuid),
		Varchar:   scalar(Varchar),
		Varint:    scalar(Varint),
		Timeuuid:  scalar(Timeuuid),
		Inet:      scalar(Inet),
	}
)

// NewCustom builds a CUSTOM descriptor carrying the given Java class name.
func NewCustom(className string) *Descriptor {
	return &Descriptor{Code: Custom, ClassName: className}
}

// NewList builds a LIST descriptor with the given element type.
func NewList(elem *Descriptor) *Descriptor {
	return &Descriptor{Code: List, Elem: elem}
}

// NewSet builds a SET descriptor with the given element type.
func NewSet(elem *Descriptor) *Descriptor {
	return &Descriptor{Code: Set, Elem: elem}
}

// NewMap builds a MAP descriptor with the given key and value types.
func NewMap(key, value *Descriptor) *Descriptor {
	return &Descriptor{Code: Map, Key: key, Value: value}
}
