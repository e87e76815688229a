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

// Package metadata describes the column metadata block that accompanies
// ROWS and PREPARED results, and the row-level encode/decode built on top
// of it.
package metadata

import (
	"fmt"

	"github.com/cqlstream/cqlv1/datatype"
	"github.com/cqlstream/cqlv1/primitive"
)

// globalTableSpecFlag is bit 0 of the metadata flags int: when set, every
// column shares one (keyspace, table) pair sent once rather than per column.
const globalTableSpecFlag int32 = 0x0001

// Column is one column descriptor: its fully qualified name, derived short
// name, and CQL type.
type Column struct {
	Keyspace  string
	Table     string
	Name      string
	ShortName string
	Type      *datatype.Descriptor
}

// FullName returns the dotted keyspace.table.column form.
func (c *Column) FullName() string {
	return fmt.Sprintf("%s.%s.%s", c.Keyspace, c.Table, c.Name)
}

// Metadata is an ordered set of column descriptors, as parsed from a ROWS
// or PREPARED result's metadata block.
type Metadata struct {
	Columns []*Column
}

// Decode parses a metadata block from b: int flags, int column count,
// an optional global (keyspace, table) pair, then per-column descriptors.
// Short names are derived in a single pass once every column is read.
func Decode(b *primitive.Buffer) (*Metadata, error) {
	flags, err := b.UnpackInt()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack metadata flags: %w", err)
	}
	count, err := b.UnpackInt()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack metadata column count: %w", err)
	}
	var globalKeyspace, globalTable string
	global := flags&globalTableSpecFlag != 0
	if global {
		if globalKeyspace, err = b.UnpackString(); err != nil {
			return nil, fmt.Errorf("cannot unpack metadata global keyspace: %w", err)
		}
		if globalTable, err = b.UnpackString(); err != nil {
			return nil, fmt.Errorf("cannot unpack metadata global table: %w", err)
		}
	}
	columns := make([]*Column, count)
	for i := range columns {
		col := &Column{}
		if global {
			col.Keyspace, col.Table = globalKeyspace, globalTable
		} else {
			if col.Keyspace, err = b.UnpackString(); err != nil {
				return nil, fmt.Errorf("cannot unpack column %d keyspace: %w", i, err)
			}
			if col.Table, err = b.UnpackString(); err != nil {
				return nil, fmt.Errorf("cannot unpack column %d table: %w", i, err)
			}
		}
		if col.Name, err = b.UnpackString(); err != nil {
			return nil, fmt.Errorf("cannot unpack column %d name: %w", i, err)
		}
		if col.Type, err = datatype.Unpack(b); err != nil {
			return nil, fmt.Errorf("cannot unpack column %d type: %w", i, err)
		}
		columns[i] = col
	}
	m := &Metadata{Columns: columns}
	m.deriveShortNames()
	return m, nil
}

// Encode appends a metadata block in the global-table-spec form whenever
// every column shares one (keyspace, table) pair, and the per-column form
// otherwise.
func Encode(b *primitive.Buffer, m *Metadata) {
	global := haveSameTable(m.Columns)
	var flags int32
	if global {
		flags |= globalTableSpecFlag
	}
	b.PackInt(flags)
	b.PackInt(int32(len(m.Columns)))
	if global && len(m.Columns) > 0 {
		b.PackString(m.Columns[0].Keyspace)
		b.PackString(m.Columns[0].Table)
	}
	for _, col := range m.Columns {
		if !global {
			b.PackString(col.Keyspace)
			b.PackString(col.Table)
		}
		b.PackString(col.Name)
		_ = datatype.Pack(b, col.Type)
	}
}

func haveSameTable(cols []*Column) bool {
	if len(cols) == 0 {
		return false
	}
	first := cols[0]
	for _, c := range cols[1:] {
		if c.Keyspace != first.Keyspace || c.Table != first.Table {
			return false
		}
	}
	return true
}

// deriveShortNames computes each column's short name in a single O(n²)
// disambiguation pass: a bare column name if it is unique in the set,
// else table.column if that pair is unique, else the fully qualified
// keyspace.table.column triple. The resulting short names are unique
// within the metadata set.
func (m *Metadata) deriveShortNames() {
	n := len(m.Columns)
	for _, col := range m.Columns {
		nameCount := 0
		tableColCount := 0
		tableCol := col.Table + "." + col.Name
		for j := 0; j < n; j++ {
			other := m.Columns[j]
			if other.Name == col.Name {
				nameCount++
			}
			if other.Table+"."+other.Name == tableCol {
				tableColCount++
			}
		}
		switch {
		case nameCount == 1:
			col.ShortName = col.Name
		case tableColCount == 1:
			col.ShortName = tableCol
		default:
			col.ShortName = col.FullName()
		}
	}
}

// Count returns the number of columns.
func (m *Metadata) Count() int {
	return len(m.Columns)
}

// ColumnType returns the type descriptor of column i.
func (m *Metadata) ColumnType(i int) *datatype.Descriptor {
	return m.Columns[i].Type
}

// ColumnName returns the fully qualified name of column i.
func (m *Metadata) ColumnName(i int) string {
	return m.Columns[i].FullName()
}

// ColumnShortName returns the derived short name of column i.
func (m *Metadata) ColumnShortName(i int) string {
	return m.Columns[i].ShortName
}

// Find returns the index of the column whose name or short name matches,
// or -1 if none does.
func (m *Metadata) Find(nameOrShortName string) int {
	for i, col := range m.Columns {
		if col.Name == nameOrShortName || col.ShortName == nameOrShortName || col.FullName() == nameOrShortName {
			return i
		}
	}
	return -1
}
