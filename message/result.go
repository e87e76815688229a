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

	"github.com/cqlstream/cqlv1/datacodec"
	"github.com/cqlstream/cqlv1/metadata"
	"github.com/cqlstream/cqlv1/primitive"
)

// Result is any of the five known RESULT body shapes, or Unknown for a
// kind this client does not recognize.
type Result interface {
	OpCode() primitive.OpCode
	String() string
	resultKind() primitive.ResultType
}

// Void is the result of a statement with no data to return (an INSERT,
// UPDATE, or DELETE).
type Void struct{}

func (r *Void) OpCode() primitive.OpCode { return primitive.OpCodeResult }

func (r *Void) String() string { return "RESULT VOID" }

func (r *Void) resultKind() primitive.ResultType { return primitive.ResultTypeVoid }

// Rows is the result of a SELECT: column metadata plus the decoded rows,
// each row a slice of native Go values in column order.
type Rows struct {
	Metadata *metadata.Metadata
	Rows     [][]interface{}
}

func (r *Rows) OpCode() primitive.OpCode { return primitive.OpCodeResult }

func (r *Rows) resultKind() primitive.ResultType { return primitive.ResultTypeRows }

func (r *Rows) String() string {
	return fmt.Sprintf("RESULT ROWS (%d columns, %d rows)", r.Metadata.Count(), len(r.Rows))
}

// SetKeyspace is the result of a USE statement.
type SetKeyspace struct {
	Keyspace string
}

func (r *SetKeyspace) OpCode() primitive.OpCode { return primitive.OpCodeResult }

func (r *SetKeyspace) resultKind() primitive.ResultType { return primitive.ResultTypeSetKeyspace }

func (r *SetKeyspace) String() string { return "RESULT SET_KEYSPACE " + r.Keyspace }

// Prepared is the result of a PREPARE request: the server-assigned
// statement id and the metadata describing its bind parameters.
type Prepared struct {
	ID       []byte
	Metadata *metadata.Metadata
}

func (r *Prepared) OpCode() primitive.OpCode { return primitive.OpCodeResult }

func (r *Prepared) resultKind() primitive.ResultType { return primitive.ResultTypePrepared }

func (r *Prepared) String() string {
	return fmt.Sprintf("RESULT PREPARED id=%x (%d params)", r.ID, r.Metadata.Count())
}

// SchemaChange is the result of a DDL statement (CREATE/ALTER/DROP). The
// v1 wire shape carries only change type, keyspace, and table; the
// Target/Arguments fields of later protocol versions do not exist here.
type SchemaChange struct {
	ChangeType string
	Keyspace   string
	Table      string
}

func (r *SchemaChange) OpCode() primitive.OpCode { return primitive.OpCodeResult }

func (r *SchemaChange) resultKind() primitive.ResultType { return primitive.ResultTypeSchemaChange }

func (r *SchemaChange) String() string {
	return fmt.Sprintf("RESULT SCHEMA_CHANGE %s %s %s", r.ChangeType, r.Keyspace, r.Table)
}

// Unknown is produced when the RESULT body's leading kind int does not
// match any of the five known kinds. The connection treats this as a
// protocol violation: it returns an error rather than a usable result and
// closes the connection with that error. The raw body is retained for
// diagnostics.
type Unknown struct {
	Kind primitive.ResultType
	Body []byte
}

func (r *Unknown) OpCode() primitive.OpCode { return primitive.OpCodeResult }

func (r *Unknown) resultKind() primitive.ResultType { return r.Kind }

func (r *Unknown) String() string {
	return fmt.Sprintf("RESULT UNKNOWN kind=0x%04x (%d bytes)", int32(r.Kind), len(r.Body))
}

// DecodeResult reads an OPCODE_RESULT body: an int kind followed by a
// kind-specific payload. registry supplies the per-column codecs used to
// decode a Rows result's row data.
func DecodeResult(b *primitive.Buffer, registry *datacodec.Registry) (Result, error) {
	kind, err := b.UnpackInt()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack RESULT kind: %w", err)
	}
	switch primitive.ResultType(kind) {
	case primitive.ResultTypeVoid:
		return &Void{}, nil
	case primitive.ResultTypeRows:
		return decodeRows(b, registry)
	case primitive.ResultTypeSetKeyspace:
		ks, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack RESULT SetKeyspace keyspace: %w", err)
		}
		return &SetKeyspace{Keyspace: ks}, nil
	case primitive.ResultTypePrepared:
		return decodePrepared(b)
	case primitive.ResultTypeSchemaChange:
		changeType, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack RESULT SchemaChange change type: %w", err)
		}
		keyspace, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack RESULT SchemaChange keyspace: %w", err)
		}
		table, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack RESULT SchemaChange table: %w", err)
		}
		return &SchemaChange{ChangeType: changeType, Keyspace: keyspace, Table: table}, nil
	default:
		return &Unknown{Kind: primitive.ResultType(kind), Body: b.Bytes()}, nil
	}
}

func decodeRows(b *primitive.Buffer, registry *datacodec.Registry) (*Rows, error) {
	md, err := metadata.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("cannot unpack RESULT Rows metadata: %w", err)
	}
	rowCount, err := b.UnpackInt()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack RESULT Rows row count: %w", err)
	}
	rows := make([][]interface{}, rowCount)
	for i := range rows {
		row, err := md.DecodeRow(b, registry)
		if err != nil {
			return nil, fmt.Errorf("cannot unpack RESULT Rows row %d: %w", i, err)
		}
		rows[i] = row
	}
	return &Rows{Metadata: md, Rows: rows}, nil
}

func decodePrepared(b *primitive.Buffer) (*Prepared, error) {
	id, err := b.UnpackShortBytes()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack RESULT Prepared id: %w", err)
	}
	md, err := metadata.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("cannot unpack RESULT Prepared metadata: %w", err)
	}
	return &Prepared{ID: id, Metadata: md}, nil
}
