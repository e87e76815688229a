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

package prepared

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cqlstream/cqlv1/conn"
	"github.com/cqlstream/cqlv1/datatype"
	"github.com/cqlstream/cqlv1/frame"
	"github.com/cqlstream/cqlv1/message"
	"github.com/cqlstream/cqlv1/metadata"
	"github.com/cqlstream/cqlv1/primitive"
)

func dialAgainstFakeServer(t *testing.T, serve func(t *testing.T, serverConn net.Conn)) *conn.Conn {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	go func() {
		serverConn, err := ln.Accept()
		require.NoError(t, err)
		defer serverConn.Close()
		serve(t, serverConn)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	c, err := conn.Dial(ctx, ln.Addr().String())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func readReq(t *testing.T, r *bufio.Reader) (*primitive.Header, []byte) {
	headerBytes := make([]byte, primitive.HeaderLength)
	_, err := io.ReadFull(r, headerBytes)
	require.NoError(t, err)
	header, err := primitive.NewBufferFromBytes(headerBytes).UnpackHeader()
	require.NoError(t, err)
	body := make([]byte, header.Length)
	if header.Length > 0 {
		_, err = io.ReadFull(r, body)
		require.NoError(t, err)
	}
	return &header, body
}

type versionFlipWriter struct{ io.Writer }

func (w *versionFlipWriter) Write(p []byte) (int, error) {
	if len(p) >= 1 && p[0] == primitive.RequestVersion {
		p = append([]byte(nil), p...)
		p[0] = primitive.ResponseVersion
	}
	return w.Writer.Write(p)
}

func writeResp(t *testing.T, w io.Writer, streamID int8, opCode primitive.OpCode, body []byte) {
	require.NoError(t, frame.WriteFrame(&versionFlipWriter{w}, streamID, opCode, 0, body))
}

func encodePreparedMetadata(t *testing.T, md *metadata.Metadata) []byte {
	b := primitive.NewBuffer()
	metadata.Encode(b, md)
	return b.Bytes()
}

func TestStatementExecutePositional(t *testing.T) {
	md := &metadata.Metadata{Columns: []*metadata.Column{
		{Keyspace: "ks", Table: "t", Name: "k", Type: datatype.Of.Int},
		{Keyspace: "ks", Table: "t", Name: "v", Type: datatype.Of.Varchar},
	}}

	var cache *Cache
	c := dialAgainstFakeServer(t, func(t *testing.T, serverConn net.Conn) {
		r := bufio.NewReader(serverConn)

		header, _ := readReq(t, r)
		writeResp(t, serverConn, header.StreamID, primitive.OpCodeReady, nil)

		header, body := readReq(t, r)
		assert.Equal(t, primitive.OpCodePrepare, header.OpCode)
		cql, err := primitive.NewBufferFromBytes(body).UnpackLongString()
		require.NoError(t, err)
		assert.Equal(t, "SELECT v FROM t WHERE k = ?", cql)

		resultBody := primitive.NewBuffer()
		resultBody.PackInt(int32(primitive.ResultTypePrepared))
		resultBody.PackShortBytes([]byte{0x01, 0x02, 0x03})
		fullBody := append(resultBody.Bytes(), encodePreparedMetadata(t, md)...)
		writeResp(t, serverConn, header.StreamID, primitive.OpCodeResult, fullBody)

		header, body = readReq(t, r)
		assert.Equal(t, primitive.OpCodeExecute, header.OpCode)
		parsed := primitive.NewBufferFromBytes(body)
		id, err := parsed.UnpackShortBytes()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x01, 0x02, 0x03}, id)
		n, err := parsed.UnpackShort()
		require.NoError(t, err)
		require.EqualValues(t, 2, n)
		v1, err := parsed.UnpackBytes()
		require.NoError(t, err)
		assert.Equal(t, []byte{0x00, 0x00, 0x00, 0x2a}, v1)
		v2, err := parsed.UnpackBytes()
		require.NoError(t, err)
		assert.Equal(t, []byte("hi"), v2)

		voidBody := primitive.NewBuffer()
		voidBody.PackInt(int32(primitive.ResultTypeVoid))
		writeResp(t, serverConn, header.StreamID, primitive.OpCodeResult, voidBody.Bytes())
	})

	cache = NewCache(c)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	stmt, err := cache.Prepare(ctx, "SELECT v FROM t WHERE k = ?")
	require.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02, 0x03}, stmt.ID())

	result, err := stmt.Execute(ctx, []interface{}{int32(42), "hi"}, primitive.ConsistencyOne)
	require.NoError(t, err)
	assert.Equal(t, primitive.OpCodeResult, result.OpCode())
}

func TestStatementExecuteBindingErrors(t *testing.T) {
	md := &metadata.Metadata{Columns: []*metadata.Column{
		{Keyspace: "ks", Table: "t", Name: "k", Type: datatype.Of.Int},
		{Keyspace: "ks", Table: "t", Name: "v", Type: datatype.Of.Varchar},
	}}

	c := dialAgainstFakeServer(t, func(t *testing.T, serverConn net.Conn) {
		r := bufio.NewReader(serverConn)
		header, _ := readReq(t, r)
		writeResp(t, serverConn, header.StreamID, primitive.OpCodeReady, nil)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	stmt := New(c, "SELECT v FROM t WHERE k = ?", &message.Prepared{ID: []byte{0x01}, Metadata: md})

	_, err := stmt.Execute(ctx, []interface{}{int32(1)}, primitive.ConsistencyOne)
	var bindErr *BindingError
	require.ErrorAs(t, err, &bindErr)
	assert.Contains(t, bindErr.Error(), "expected 2 bind values, got 1")

	_, err = stmt.Execute(ctx, map[string]interface{}{"nope": 1}, primitive.ConsistencyOne)
	require.ErrorAs(t, err, &bindErr)
	assert.Contains(t, bindErr.Error(), `no bind parameter named "nope"`)

	_, err = stmt.Execute(ctx, map[string]interface{}{"k": int32(1)}, primitive.ConsistencyOne)
	require.ErrorAs(t, err, &bindErr)
	assert.Contains(t, bindErr.Error(), `missing bind value for parameter "v"`)
}
