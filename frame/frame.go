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

// Package frame implements the 8-byte header framing of the CQL native
// protocol v1: header emission on write, and header/body assembly off a
// byte stream on read.
package frame

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cqlstream/cqlv1/primitive"
)

// ProtocolViolation reports a frame whose version byte does not match
// what the direction requires. It is always connection-fatal.
type ProtocolViolation struct {
	Got      byte
	Expected byte
}

func (e *ProtocolViolation) Error() string {
	return fmt.Sprintf("protocol violation: frame version 0x%02x, expected 0x%02x", e.Got, e.Expected)
}

// WriteFrame serializes a request frame: an 8-byte header followed by
// body. The version byte is always primitive.RequestVersion; callers
// never set it themselves.
func WriteFrame(w io.Writer, streamID int8, opCode primitive.OpCode, flags byte, body []byte) error {
	b := primitive.NewBuffer()
	b.PackHeader(primitive.Header{
		Version:  primitive.RequestVersion,
		Flags:    flags,
		StreamID: streamID,
		OpCode:   opCode,
		Length:   int32(len(body)),
	})
	if _, err := w.Write(b.Bytes()); err != nil {
		return fmt.Errorf("cannot write frame header: %w", err)
	}
	if len(body) > 0 {
		if _, err := w.Write(body); err != nil {
			return fmt.Errorf("cannot write frame body: %w", err)
		}
	}
	return nil
}

// ReadFrame blocks on r until a full header and body are available, then
// returns the parsed header and raw body bytes. It enforces
// primitive.ResponseVersion on the header's version byte; any other value
// is a *ProtocolViolation, which the caller must treat as connection-fatal.
func ReadFrame(r *bufio.Reader) (*primitive.Header, []byte, error) {
	headerBytes := make([]byte, primitive.HeaderLength)
	if _, err := io.ReadFull(r, headerBytes); err != nil {
		return nil, nil, fmt.Errorf("cannot read frame header: %w", err)
	}
	header, err := primitive.NewBufferFromBytes(headerBytes).UnpackHeader()
	if err != nil {
		return nil, nil, fmt.Errorf("cannot unpack frame header: %w", err)
	}
	if header.Version != primitive.ResponseVersion {
		return nil, nil, &ProtocolViolation{Got: header.Version, Expected: primitive.ResponseVersion}
	}
	body := make([]byte, header.Length)
	if header.Length > 0 {
		if _, err := io.ReadFull(r, body); err != nil {
			return nil, nil, fmt.Errorf("cannot read frame body (%d bytes): %w", header.Length, err)
		}
	}
	return &header, body, nil
}
