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
	"math/big"

	"github.com/cqlstream/cqlv1/datatype"
)

// Varint is the codec for the CQL varint type: an arbitrary-precision
// integer encoded as a minimal-length two's-complement big-endian byte
// sequence, the same scheme produced by Java's BigInteger.toByteArray().
// Its Go type is *big.Int.
var Varint Codec = &varintCodec{}

type varintCodec struct{}

func (c *varintCodec) DataType() *datatype.Descriptor {
	return datatype.Of.Varint
}

func (c *varintCodec) Encode(source interface{}) ([]byte, error) {
	var val *big.Int
	switch s := source.(type) {
	case nil:
		return nil, nil
	case *big.Int:
		if s == nil {
			return nil, nil
		}
		val = s
	default:
		return nil, errCannotEncode(source, c.DataType(), ErrWrongGoType)
	}
	return writeVarint(val), nil
}

func (c *varintCodec) Decode(source []byte, dest interface{}) (bool, error) {
	d, ok := dest.(**big.Int)
	if !ok {
		return false, errCannotDecode(dest, c.DataType(), ErrWrongGoType)
	}
	if source == nil {
		*d = nil
		return true, nil
	}
	*d = readVarint(source)
	return false, nil
}

// writeVarint renders val as a minimal-length two's-complement byte
// sequence: non-negative values get a leading zero byte if their top bit
// would otherwise read as negative, negative values are padded with 0xFF.
func writeVarint(val *big.Int) []byte {
	if val.Sign() == 0 {
		return []byte{0}
	}
	if val.Sign() > 0 {
		b := val.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	// Two's complement of a negative value: find the minimal byte width
	// whose top bit, once complemented, can represent val. BitLen operates
	// on the magnitude, so an exact negative power of two (e.g. -128 = -2^7)
	// needs one bit shaved off first, the same adjustment Java's
	// BigInteger.bitLength() makes for such values.
	bitLen := val.BitLen()
	abs := new(big.Int).Abs(val)
	absMinus1 := new(big.Int).Sub(abs, big.NewInt(1))
	if new(big.Int).And(abs, absMinus1).Sign() == 0 {
		bitLen--
	}
	numBytes := bitLen/8 + 1
	twosComplement := new(big.Int).Add(val, new(big.Int).Lsh(big.NewInt(1), uint(numBytes*8)))
	b := twosComplement.Bytes()
	for len(b) < numBytes {
		b = append([]byte{0}, b...)
	}
	return b
}

// readVarint parses a minimal-length two's-complement byte sequence back
// into a signed big.Int.
func readVarint(source []byte) *big.Int {
	if len(source) == 0 {
		return big.NewInt(0)
	}
	val := new(big.Int).SetBytes(source)
	if source[0]&0x80 != 0 {
		val.Sub(val, new(big.Int).Lsh(big.NewInt(1), uint(len(source)*8)))
	}
	return val
}
