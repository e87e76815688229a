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
	"testing"

	"github.com/cqlstream/cqlv1/datacodec"
	"github.com/cqlstream/cqlv1/datatype"
	"github.com/cqlstream/cqlv1/metadata"
	"github.com/cqlstream/cqlv1/primitive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartupEncodeMatchesS1(t *testing.T) {
	m := NewStartup("3.0.0")
	b := primitive.NewBuffer()
	m.Encode(b)
	expected := []byte{
		0x00, 0x01, // one option
		0x00, 0x0b, 'C', 'Q', 'L', '_', 'V', 'E', 'R', 'S', 'I', 'O', 'N',
		0x00, 0x05, '3', '.', '0', '.', '0',
	}
	assert.Equal(t, expected, b.Bytes())
}

func TestDecodeSupportedS2(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackStringMultiMap(map[string][]string{
		"COMPRESSION": {"snappy"},
		"CQL_VERSION": {"3.0.0"},
	})
	supported, err := DecodeSupported(primitive.NewBufferFromBytes(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []string{"snappy"}, supported.Options["COMPRESSION"])
}

func TestQueryEncode(t *testing.T) {
	q := &Query{CQL: "INSERT INTO things (name) VALUES ('thing');", Consistency: primitive.ConsistencyAny}
	b := primitive.NewBuffer()
	q.Encode(b)
	parsed := primitive.NewBufferFromBytes(b.Bytes())
	cql, err := parsed.UnpackLongString()
	require.NoError(t, err)
	assert.Equal(t, q.CQL, cql)
	cl, err := parsed.UnpackShort()
	require.NoError(t, err)
	assert.Equal(t, uint16(primitive.ConsistencyAny), cl)
}

func TestDecodeResultVoid(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackInt(int32(primitive.ResultTypeVoid))
	result, err := DecodeResult(primitive.NewBufferFromBytes(b.Bytes()), datacodec.NewDefaultRegistry())
	require.NoError(t, err)
	_, ok := result.(*Void)
	assert.True(t, ok)
}

func TestDecodeResultSetKeyspace(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackInt(int32(primitive.ResultTypeSetKeyspace))
	b.PackString("test")
	result, err := DecodeResult(primitive.NewBufferFromBytes(b.Bytes()), datacodec.NewDefaultRegistry())
	require.NoError(t, err)
	sk, ok := result.(*SetKeyspace)
	require.True(t, ok)
	assert.Equal(t, "test", sk.Keyspace)
}

func TestDecodeResultSchemaChange(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackInt(int32(primitive.ResultTypeSchemaChange))
	b.PackString("DROPPED")
	b.PackString("test")
	b.PackString("users")
	result, err := DecodeResult(primitive.NewBufferFromBytes(b.Bytes()), datacodec.NewDefaultRegistry())
	require.NoError(t, err)
	sc, ok := result.(*SchemaChange)
	require.True(t, ok)
	assert.Equal(t, "DROPPED", sc.ChangeType)
	assert.Equal(t, "test", sc.Keyspace)
	assert.Equal(t, "users", sc.Table)
}

func TestDecodeResultRowsS4(t *testing.T) {
	md := &metadata.Metadata{Columns: []*metadata.Column{
		{Keyspace: "test", Table: "c", Name: "a", Type: datatype.Of.Varchar},
		{Keyspace: "test", Table: "c", Name: "b", Type: datatype.Of.Int},
	}}
	registry := datacodec.NewDefaultRegistry()

	b := primitive.NewBuffer()
	b.PackInt(int32(primitive.ResultTypeRows))
	metadata.Encode(b, md)
	b.PackInt(1) // row count
	require.NoError(t, md.EncodeRow(b, registry, []interface{}{"hello", int32(100)}))

	result, err := DecodeResult(primitive.NewBufferFromBytes(b.Bytes()), registry)
	require.NoError(t, err)
	rows, ok := result.(*Rows)
	require.True(t, ok)
	require.Len(t, rows.Rows, 1)
	assert.Equal(t, []interface{}{"hello", int32(100)}, rows.Rows[0])
}

func TestDecodeResultUnknownKind(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackInt(0x00FF)
	result, err := DecodeResult(primitive.NewBufferFromBytes(b.Bytes()), datacodec.NewDefaultRegistry())
	require.NoError(t, err)
	u, ok := result.(*Unknown)
	require.True(t, ok)
	assert.Equal(t, primitive.ResultType(0x00FF), u.Kind)
}

func TestExecuteEncodeS7(t *testing.T) {
	registry := datacodec.NewDefaultRegistry()
	keyBytes, err := registry.Lookup(datatype.Of.Varchar).Encode("another-key")
	require.NoError(t, err)
	i1Bytes, err := registry.Lookup(datatype.Of.Int).Encode(int32(123456789))
	require.NoError(t, err)
	assert.Equal(t, []byte{0x07, 0x5B, 0xCD, 0x15}, i1Bytes)

	exec := &Execute{ID: []byte{0x01, 0x02}, Values: [][]byte{keyBytes, i1Bytes}, Consistency: primitive.ConsistencyOne}
	b := primitive.NewBuffer()
	exec.Encode(b)

	parsed := primitive.NewBufferFromBytes(b.Bytes())
	id, err := parsed.UnpackShortBytes()
	require.NoError(t, err)
	assert.Equal(t, exec.ID, id)
	n, err := parsed.UnpackShort()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), n)
}

func TestDecodeEventSchemaChange(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackString(primitive.EventTypeSchemaChange)
	b.PackString("CREATED")
	b.PackString("test")
	ev, err := DecodeEvent(primitive.NewBufferFromBytes(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, primitive.EventTypeSchemaChange, ev.Type)
	assert.Equal(t, []string{"test"}, ev.Targets)
}

func TestDecodeAuthenticate(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackString("org.apache.cassandra.auth.PasswordAuthenticator")
	auth, err := DecodeAuthenticate(primitive.NewBufferFromBytes(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, "org.apache.cassandra.auth.PasswordAuthenticator", auth.Authenticator)
}

func TestDecodeError(t *testing.T) {
	b := primitive.NewBuffer()
	b.PackInt(int32(primitive.ErrorCodeSyntaxError))
	b.PackString("line 1:0 no viable alternative")
	e, err := DecodeError(primitive.NewBufferFromBytes(b.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, primitive.ErrorCodeSyntaxError, e.Code)
	assert.Equal(t, "line 1:0 no viable alternative", e.Message)
}

func TestRegisterEncodeRequiresEventType(t *testing.T) {
	r := &Register{}
	b := primitive.NewBuffer()
	assert.Error(t, r.Encode(b))
}
