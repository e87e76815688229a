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
	"encoding/binary"
	"fmt"
	"net"
	"sort"
)

// Buffer is a mutable byte sequence used both to build outgoing message
// bodies (PackX methods append) and to parse incoming ones (UnpackX methods
// consume from the front). Unpack operations fail with an underflow error if
// insufficient bytes remain; there is no other way to misuse a Buffer.
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty buffer ready for packing.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// NewBufferFromBytes wraps an existing byte slice for unpacking. The slice is
// not copied; callers must not mutate it concurrently.
func NewBufferFromBytes(b []byte) *Buffer {
	return &Buffer{data: b}
}

// Bytes returns the buffer's current contents (the packed body so far, or the
// remaining unparsed tail).
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes remaining to be unpacked.
func (b *Buffer) Len() int {
	return len(b.data)
}

func (b *Buffer) take(n int, what string) ([]byte, error) {
	if len(b.data) < n {
		return nil, fmt.Errorf("cannot unpack %s: need %d bytes, have %d", what, n, len(b.data))
	}
	chunk := b.data[:n]
	b.data = b.data[n:]
	return chunk, nil
}

// PackByte appends a single byte.
func (b *Buffer) PackByte(v byte) {
	b.data = append(b.data, v)
}

// UnpackByte removes a single byte from the front.
func (b *Buffer) UnpackByte() (byte, error) {
	chunk, err := b.take(1, "[byte]")
	if err != nil {
		return 0, err
	}
	return chunk[0], nil
}

// PackShort appends a big-endian uint16.
func (b *Buffer) PackShort(v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	b.data = append(b.data, tmp[:]...)
}

// UnpackShort removes a big-endian uint16 from the front.
func (b *Buffer) UnpackShort() (uint16, error) {
	chunk, err := b.take(2, "[short]")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(chunk), nil
}

// PackInt appends a big-endian int32.
func (b *Buffer) PackInt(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	b.data = append(b.data, tmp[:]...)
}

// UnpackInt removes a big-endian int32 from the front.
func (b *Buffer) UnpackInt() (int32, error) {
	chunk, err := b.take(4, "[int]")
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(chunk)), nil
}

// PackLong appends a big-endian int64.
func (b *Buffer) PackLong(v int64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], uint64(v))
	b.data = append(b.data, tmp[:]...)
}

// UnpackLong removes a big-endian int64 from the front.
func (b *Buffer) UnpackLong() (int64, error) {
	chunk, err := b.take(8, "[long]")
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(chunk)), nil
}

// PackString appends a short-prefixed string. s may be an already-encoded
// byte sequence reinterpreted as a string; this method is UTF-8-agnostic.
func (b *Buffer) PackString(s string) {
	if len(s) > 0xFFFF {
		panic(fmt.Sprintf("[string] too long: %d bytes", len(s)))
	}
	b.PackShort(uint16(len(s)))
	b.data = append(b.data, s...)
}

// UnpackString removes a short-prefixed string from the front.
func (b *Buffer) UnpackString() (string, error) {
	length, err := b.UnpackShort()
	if err != nil {
		return "", fmt.Errorf("cannot unpack [string] length: %w", err)
	}
	chunk, err := b.take(int(length), "[string] content")
	if err != nil {
		return "", err
	}
	return string(chunk), nil
}

// PackLongString appends an int-prefixed string.
func (b *Buffer) PackLongString(s string) {
	if len(s) > 0x7FFFFFFF {
		panic(fmt.Sprintf("[long string] too long: %d bytes", len(s)))
	}
	b.PackInt(int32(len(s)))
	b.data = append(b.data, s...)
}

// UnpackLongString removes an int-prefixed string from the front.
func (b *Buffer) UnpackLongString() (string, error) {
	length, err := b.UnpackInt()
	if err != nil {
		return "", fmt.Errorf("cannot unpack [long string] length: %w", err)
	}
	chunk, err := b.take(int(length), "[long string] content")
	if err != nil {
		return "", err
	}
	return string(chunk), nil
}

// PackBytes appends an int-prefixed byte sequence. A nil slice is encoded as
// length -1 (the CQL null marker); this is distinct from a zero-length slice.
func (b *Buffer) PackBytes(v []byte) {
	if v == nil {
		b.PackInt(-1)
		return
	}
	b.PackInt(int32(len(v)))
	b.data = append(b.data, v...)
}

// UnpackBytes removes an int-prefixed byte sequence from the front, returning
// nil for any negative length (the CQL null marker).
func (b *Buffer) UnpackBytes() ([]byte, error) {
	length, err := b.UnpackInt()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack [bytes] length: %w", err)
	}
	if length < 0 {
		return nil, nil
	}
	chunk, err := b.take(int(length), "[bytes] content")
	if err != nil {
		return nil, err
	}
	cpy := make([]byte, len(chunk))
	copy(cpy, chunk)
	return cpy, nil
}

// PackShortBytes appends a short-prefixed byte sequence. Unlike PackBytes,
// this form is never null.
func (b *Buffer) PackShortBytes(v []byte) {
	if len(v) > 0xFFFF {
		panic(fmt.Sprintf("[short bytes] too long: %d bytes", len(v)))
	}
	b.PackShort(uint16(len(v)))
	b.data = append(b.data, v...)
}

// UnpackShortBytes removes a short-prefixed byte sequence from the front.
func (b *Buffer) UnpackShortBytes() ([]byte, error) {
	length, err := b.UnpackShort()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack [short bytes] length: %w", err)
	}
	chunk, err := b.take(int(length), "[short bytes] content")
	if err != nil {
		return nil, err
	}
	cpy := make([]byte, len(chunk))
	copy(cpy, chunk)
	return cpy, nil
}

// PackStringList appends a short-prefixed sequence of strings.
func (b *Buffer) PackStringList(list []string) {
	b.PackShort(uint16(len(list)))
	for _, s := range list {
		b.PackString(s)
	}
}

// UnpackStringList removes a short-prefixed sequence of strings from the
// front.
func (b *Buffer) UnpackStringList() ([]string, error) {
	length, err := b.UnpackShort()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack [string list] length: %w", err)
	}
	list := make([]string, length)
	for i := range list {
		if list[i], err = b.UnpackString(); err != nil {
			return nil, fmt.Errorf("cannot unpack [string list] element %d: %w", i, err)
		}
	}
	return list, nil
}

// PackStringMap appends a short-prefixed {string,string} map. Keys are
// written in sorted order so that encodings are deterministic (and test
// vectors stable); an empty map is encoded as a bare short=0.
func (b *Buffer) PackStringMap(m map[string]string) {
	keys := sortedKeys(m)
	b.PackShort(uint16(len(keys)))
	for _, k := range keys {
		b.PackString(k)
		b.PackString(m[k])
	}
}

// UnpackStringMap removes a short-prefixed {string,string} map from the
// front.
func (b *Buffer) UnpackStringMap() (map[string]string, error) {
	length, err := b.UnpackShort()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack [string map] length: %w", err)
	}
	m := make(map[string]string, length)
	for i := uint16(0); i < length; i++ {
		key, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack [string map] entry %d key: %w", i, err)
		}
		value, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack [string map] entry %d value: %w", i, err)
		}
		m[key] = value
	}
	return m, nil
}

// PackStringMultiMap appends a short-prefixed {string,[string]} multimap,
// keys written in sorted order.
func (b *Buffer) PackStringMultiMap(m map[string][]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	b.PackShort(uint16(len(keys)))
	for _, k := range keys {
		b.PackString(k)
		b.PackStringList(m[k])
	}
}

// UnpackStringMultiMap removes a short-prefixed {string,[string]} multimap
// from the front.
func (b *Buffer) UnpackStringMultiMap() (map[string][]string, error) {
	length, err := b.UnpackShort()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack [string multimap] length: %w", err)
	}
	m := make(map[string][]string, length)
	for i := uint16(0); i < length; i++ {
		key, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack [string multimap] entry %d key: %w", i, err)
		}
		value, err := b.UnpackStringList()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack [string multimap] entry %d value: %w", i, err)
		}
		m[key] = value
	}
	return m, nil
}

// PackInet appends an [inet] value: a one-byte address length, the raw
// address bytes (4 for IPv4, 16 for IPv6), then a big-endian int32 port.
func (b *Buffer) PackInet(addr net.IP, port int32) error {
	if v4 := addr.To4(); v4 != nil {
		b.PackByte(byte(len(v4)))
		b.data = append(b.data, v4...)
	} else if v6 := addr.To16(); v6 != nil {
		b.PackByte(byte(len(v6)))
		b.data = append(b.data, v6...)
	} else {
		return fmt.Errorf("cannot pack [inet]: invalid address %v", addr)
	}
	b.PackInt(port)
	return nil
}

// UnpackInet removes an [inet] value from the front.
func (b *Buffer) UnpackInet() (net.IP, int32, error) {
	length, err := b.UnpackByte()
	if err != nil {
		return nil, 0, fmt.Errorf("cannot unpack [inet] address length: %w", err)
	}
	addrBytes, err := b.take(int(length), "[inet] address")
	if err != nil {
		return nil, 0, err
	}
	var addr net.IP
	switch length {
	case net.IPv4len:
		addr = net.IPv4(addrBytes[0], addrBytes[1], addrBytes[2], addrBytes[3])
	case net.IPv6len:
		addr = make(net.IP, net.IPv6len)
		copy(addr, addrBytes)
	default:
		return nil, 0, fmt.Errorf("cannot unpack [inet] address: unsupported length %d", length)
	}
	port, err := b.UnpackInt()
	if err != nil {
		return nil, 0, fmt.Errorf("cannot unpack [inet] port: %w", err)
	}
	return addr, port, nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
