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
	"errors"
	"math/big"
	"testing"

	"github.com/cqlstream/cqlv1/datatype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrongGoTypeIsEncodingError(t *testing.T) {
	_, err := Boolean.Encode(42)
	require.Error(t, err)
	var encErr *EncodingError
	require.ErrorAs(t, err, &encErr)
	assert.Equal(t, "encode", encErr.Op)
	assert.True(t, errors.Is(err, ErrWrongGoType))
}

func TestStringCodecRoundTrip(t *testing.T) {
	encoded, err := Text.Encode("café")
	require.NoError(t, err)
	var got string
	wasNull, err := Text.Decode(encoded, &got)
	require.NoError(t, err)
	assert.False(t, wasNull)
	assert.Equal(t, "café", got)
}

func TestStringCodecNull(t *testing.T) {
	encoded, err := Varchar.Encode(nil)
	require.NoError(t, err)
	assert.Nil(t, encoded)
	var got string
	wasNull, err := Varchar.Decode(nil, &got)
	require.NoError(t, err)
	assert.True(t, wasNull)
	assert.Equal(t, "", got)
}

func TestAsciiCodecRejectsNonASCII(t *testing.T) {
	_, err := Ascii.Encode("café")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotASCII))
}

func TestTextCodecRejectsInvalidUTF8(t *testing.T) {
	var got string
	_, err := Text.Decode([]byte{0xFF, 0xFE}, &got)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidUTF8))
}

func TestBooleanCodec(t *testing.T) {
	encoded, err := Boolean.Encode(true)
	require.NoError(t, err)
	assert.Equal(t, []byte{1}, encoded)
	var got bool
	_, err = Boolean.Decode(encoded, &got)
	require.NoError(t, err)
	assert.True(t, got)
}

func TestBigintCodecRoundTrip(t *testing.T) {
	encoded, err := Bigint.Encode(int64(-42))
	require.NoError(t, err)
	var got int64
	_, err = Bigint.Decode(encoded, &got)
	require.NoError(t, err)
	assert.Equal(t, int64(-42), got)
}

func TestIntCodecWrongLength(t *testing.T) {
	var got int32
	_, err := Int.Decode([]byte{0x01, 0x02}, &got)
	assert.Error(t, err)
}

func TestDoubleFloatCodecRoundTrip(t *testing.T) {
	encoded, err := Double.Encode(3.14159)
	require.NoError(t, err)
	var gotD float64
	_, err = Double.Decode(encoded, &gotD)
	require.NoError(t, err)
	assert.Equal(t, 3.14159, gotD)

	encodedF, err := Float.Encode(float32(2.5))
	require.NoError(t, err)
	var gotF float32
	_, err = Float.Decode(encodedF, &gotF)
	require.NoError(t, err)
	assert.Equal(t, float32(2.5), gotF)
}

func TestVarintCanonicalForms(t *testing.T) {
	cases := []struct {
		val  int64
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7F}},
		{128, []byte{0x00, 0x80}},
		{129, []byte{0x00, 0x81}},
		{-1, []byte{0xFF}},
		{-128, []byte{0x80}},
		{-129, []byte{0xFF, 0x7F}},
	}
	for _, c := range cases {
		got := writeVarint(big.NewInt(c.val))
		assert.Equal(t, c.want, got, "encode %d", c.val)
		back := readVarint(c.want)
		assert.Equal(t, c.val, back.Int64(), "decode %v", c.want)
	}
}

func TestVarintCodecRoundTrip(t *testing.T) {
	val := new(big.Int)
	val.SetString("123456789012345678901234567890", 10)
	encoded, err := Varint.Encode(val)
	require.NoError(t, err)
	var got *big.Int
	_, err = Varint.Decode(encoded, &got)
	require.NoError(t, err)
	assert.Equal(t, 0, val.Cmp(got))
}

func TestDecimalCodecRoundTrip(t *testing.T) {
	d := CqlDecimal{Unscaled: big.NewInt(12345), Scale: 2}
	encoded, err := Decimal.Encode(d)
	require.NoError(t, err)
	var got CqlDecimal
	_, err = Decimal.Decode(encoded, &got)
	require.NoError(t, err)
	assert.Equal(t, int32(2), got.Scale)
	assert.Equal(t, 0, d.Unscaled.Cmp(got.Unscaled))
}

func TestTimestampCodecRoundTrip(t *testing.T) {
	encoded, err := Timestamp.Encode(1600000000.5)
	require.NoError(t, err)
	var got float64
	_, err = Timestamp.Decode(encoded, &got)
	require.NoError(t, err)
	assert.InDelta(t, 1600000000.5, got, 0.001)
}

func TestBlobCodecNullVsEmpty(t *testing.T) {
	encoded, err := Blob.Encode([]byte{})
	require.NoError(t, err)
	assert.NotNil(t, encoded)
	assert.Len(t, encoded, 0)

	encodedNil, err := Blob.Encode(nil)
	require.NoError(t, err)
	assert.Nil(t, encodedNil)
}

func TestRegistryLookupFallsBackToUnknown(t *testing.T) {
	r := NewDefaultRegistry()
	c := r.Lookup(datatype.Of.Inet)
	_, ok := c.(*Unknown)
	assert.True(t, ok)
}

func TestRegistryLookupKnownType(t *testing.T) {
	r := NewDefaultRegistry()
	c := r.Lookup(datatype.Of.Int)
	assert.Equal(t, Int, c)
}

func TestUnknownCodecDecodeRendersHex(t *testing.T) {
	c := NewUnknown(datatype.Of.Uuid)
	var got string
	wasNull, err := c.Decode([]byte{0xde, 0xad}, &got)
	require.NoError(t, err)
	assert.False(t, wasNull)
	assert.Equal(t, "dead", got)
}
