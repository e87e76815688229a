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

// Options is a request asking the server to report its supported options.
// Its body is empty.
type Options struct{}

func (m *Options) OpCode() primitive.OpCode { return primitive.OpCodeOptions }

func (m *Options) String() string { return "OPTIONS" }

// Supported is the response to an OPTIONS request.
type Supported struct {
	Options map[string][]string
}

func (m *Supported) OpCode() primitive.OpCode { return primitive.OpCodeSupported }

func (m *Supported) String() string {
	return fmt.Sprintf("SUPPORTED %v", m.Options)
}

// DecodeSupported parses a SUPPORTED body: a string multimap.
func DecodeSupported(b *primitive.Buffer) (*Supported, error) {
	options, err := b.UnpackStringMultiMap()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack SUPPORTED options: %w", err)
	}
	return &Supported{Options: options}, nil
}

// Encode appends the SUPPORTED body: a string multimap.
func (m *Supported) Encode(b *primitive.Buffer) {
	b.PackStringMultiMap(m.Options)
}
