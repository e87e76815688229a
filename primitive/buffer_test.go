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

package primitive

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PackByte(0x42)
	parsed := NewBufferFromBytes(b.Bytes())
	v, err := parsed.UnpackByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0x42), v)
}

func TestShortIntLongRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PackShort(0xCAFE)
	b.PackInt(-123456)
	b.PackLong(1<<40 + 7)
	parsed := NewBufferFromBytes(b.Bytes())
	s, err := parsed.UnpackShort()
	require.NoError(t, err)
	assert.Equal(t, uint16(0xCAFE), s)
	i, err := parsed.UnpackInt()
	require.NoError(t, err)
	assert.Equal(t, int32(-123456), i)
	l, err := parsed.UnpackLong()
	require.NoError(t, err)
	assert.Equal(t, int64(1<<40+7), l)
}

func TestStringRoundTrip(t *testing.T) {
	for _, s := range []string{"", "hello", "unicode: café"} {
		b := NewBuffer()
		b.PackString(s)
		parsed := NewBufferFromBytes(b.Bytes())
		got, err := parsed.UnpackString()
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
}

func TestLongStringRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PackLongString("a long string")
	parsed := NewBufferFromBytes(b.Bytes())
	got, err := parsed.UnpackLongString()
	require.NoError(t, err)
	assert.Equal(t, "a long string", got)
}

func TestBytesRoundTrip(t *testing.T) {
	cases := [][]byte{nil, {}, {0xde, 0xad, 0xbe, 0xef}}
	for _, c := range cases {
		b := NewBuffer()
		b.PackBytes(c)
		parsed := NewBufferFromBytes(b.Bytes())
		got, err := parsed.UnpackBytes()
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
}

func TestBytesNullMarker(t *testing.T) {
	b := NewBuffer()
	b.PackBytes(nil)
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, b.Bytes())
}

func TestShortBytesRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PackShortBytes([]byte{1, 2, 3})
	parsed := NewBufferFromBytes(b.Bytes())
	got, err := parsed.UnpackShortBytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, got)
}

func TestStringListRoundTrip(t *testing.T) {
	b := NewBuffer()
	b.PackStringList([]string{"a", "bb", "ccc"})
	parsed := NewBufferFromBytes(b.Bytes())
	got, err := parsed.UnpackStringList()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "bb", "ccc"}, got)
}

func TestStringMapRoundTripAndSortedEncoding(t *testing.T) {
	m := map[string]string{"b": "2", "a": "1"}
	b := NewBuffer()
	b.PackStringMap(m)
	expected := NewBuffer()
	expected.PackShort(2)
	expected.PackString("a")
	expected.PackString("1")
	expected.PackString("b")
	expected.PackString("2")
	assert.Equal(t, expected.Bytes(), b.Bytes())

	parsed := NewBufferFromBytes(b.Bytes())
	got, err := parsed.UnpackStringMap()
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestEmptyStringMapIsBareShortZero(t *testing.T) {
	b := NewBuffer()
	b.PackStringMap(map[string]string{})
	assert.Equal(t, []byte{0x00, 0x00}, b.Bytes())
}

func TestStringMultiMapRoundTrip(t *testing.T) {
	m := map[string][]string{"COMPRESSION": {"snappy"}, "CQL_VERSION": {"3.0.0"}}
	b := NewBuffer()
	b.PackStringMultiMap(m)
	parsed := NewBufferFromBytes(b.Bytes())
	got, err := parsed.UnpackStringMultiMap()
	require.NoError(t, err)
	assert.Equal(t, m, got)
}

func TestInetRoundTripV4AndV6(t *testing.T) {
	cases := []net.IP{net.IPv4(127, 0, 0, 1), net.ParseIP("::1")}
	for _, ip := range cases {
		b := NewBuffer()
		require.NoError(t, b.PackInet(ip, 9042))
		parsed := NewBufferFromBytes(b.Bytes())
		addr, port, err := parsed.UnpackInet()
		require.NoError(t, err)
		assert.True(t, addr.Equal(ip))
		assert.Equal(t, int32(9042), port)
	}
}

func TestUnpackUnderflow(t *testing.T) {
	b := NewBufferFromBytes([]byte{0x00})
	_, err := b.UnpackInt()
	assert.Error(t, err)
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{Version: RequestVersion, Flags: 0, StreamID: 5, OpCode: OpCodeQuery, Length: 42}
	b := NewBuffer()
	b.PackHeader(h)
	assert.Len(t, b.Bytes(), HeaderLength)
	parsed := NewBufferFromBytes(b.Bytes())
	got, err := parsed.UnpackHeader()
	require.NoError(t, err)
	assert.Equal(t, h, got)
}
