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

package message

import (
	"fmt"

	"github.com/cqlstream/cqlv1/primitive"
)

// Query is a request to execute a CQL statement by text. The only option
// the v1 wire format carries alongside the statement is its consistency
// level; there is no paging state, serial consistency, or bind-value list
// (bind values are an EXECUTE-only concept, issued against a Prepare'd
// statement).
type Query struct {
	CQL         string
	Consistency primitive.Consistency
}

func (m *Query) OpCode() primitive.OpCode { return primitive.OpCodeQuery }

func (m *Query) String() string {
	return fmt.Sprintf("QUERY %q %v", m.CQL, m.Consistency)
}

// Encode appends the QUERY body: a long string followed by a short
// consistency level.
func (m *Query) Encode(b *primitive.Buffer) {
	b.PackLongString(m.CQL)
	b.PackShort(uint16(m.Consistency))
}

// Prepare is a request to prepare a CQL statement for repeated execution.
type Prepare struct {
	CQL string
}

func (m *Prepare) OpCode() primitive.OpCode { return primitive.OpCodePrepare }

func (m *Prepare) String() string { return fmt.Sprintf("PREPARE %q", m.CQL) }

// Encode appends the PREPARE body: a long string.
func (m *Prepare) Encode(b *primitive.Buffer) {
	b.PackLongString(m.CQL)
}

// Execute is a request to run a previously prepared statement, supplying
// already-encoded bind values in positional order.
type Execute struct {
	ID          []byte
	Values      [][]byte
	Consistency primitive.Consistency
}

func (m *Execute) OpCode() primitive.OpCode { return primitive.OpCodeExecute }

func (m *Execute) String() string {
	return fmt.Sprintf("EXECUTE id=%x nvalues=%d %v", m.ID, len(m.Values), m.Consistency)
}

// Encode appends the EXECUTE body: short-bytes id, short value count, each
// value as [bytes], then a short consistency level.
func (m *Execute) Encode(b *primitive.Buffer) {
	b.PackShortBytes(m.ID)
	b.PackShort(uint16(len(m.Values)))
	for _, v := range m.Values {
		b.PackBytes(v)
	}
	b.PackShort(uint16(m.Consistency))
}
