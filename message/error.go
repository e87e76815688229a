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

// Error is an OPCODE_ERROR body: an error code and a human-readable
// message. The v1 wire format carries no further per-code payload (unlike
// later protocol versions, which attach extra fields to e.g. unavailable
// or write-timeout errors).
type Error struct {
	Code    primitive.ErrorCode
	Message string
}

func (m *Error) OpCode() primitive.OpCode { return primitive.OpCodeError }

func (m *Error) String() string {
	return fmt.Sprintf("ERROR %s (0x%04x): %s", m.Code, int32(m.Code), m.Message)
}

// Error satisfies the standard error interface so a decoded server error
// can be returned directly as a Go error.
func (m *Error) Error() string {
	return m.String()
}

// DecodeError parses an ERROR body: an int error code followed by a
// string message.
func DecodeError(b *primitive.Buffer) (*Error, error) {
	code, err := b.UnpackInt()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack ERROR code: %w", err)
	}
	msg, err := b.UnpackString()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack ERROR message: %w", err)
	}
	return &Error{Code: primitive.ErrorCode(code), Message: msg}, nil
}
