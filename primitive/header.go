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

// HeaderLength is the fixed size, in bytes, of a CQL v1 frame header.
const HeaderLength = 8

// Header is the 8-byte fixed frame header described in spec section 3:
// version, flags, a signed stream id, opcode, and a big-endian body length.
type Header struct {
	Version  byte
	Flags    byte
	StreamID int8
	OpCode   OpCode
	Length   int32
}

// PackHeader appends the 8-byte header encoding to the buffer.
func (b *Buffer) PackHeader(h Header) {
	b.PackByte(h.Version)
	b.PackByte(h.Flags)
	b.PackByte(byte(h.StreamID))
	b.PackByte(byte(h.OpCode))
	b.PackInt(h.Length)
}

// UnpackHeader removes the 8-byte header encoding from the front.
func (b *Buffer) UnpackHeader() (Header, error) {
	var h Header
	version, err := b.UnpackByte()
	if err != nil {
		return h, err
	}
	flags, err := b.UnpackByte()
	if err != nil {
		return h, err
	}
	streamID, err := b.UnpackByte()
	if err != nil {
		return h, err
	}
	opCode, err := b.UnpackByte()
	if err != nil {
		return h, err
	}
	length, err := b.UnpackInt()
	if err != nil {
		return h, err
	}
	h.Version = version
	h.Flags = flags
	h.StreamID = int8(streamID)
	h.OpCode = OpCode(opCode)
	h.Length = length
	return h, nil
}
