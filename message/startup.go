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

// CQLVersionKey is the Startup.Options key naming the CQL language
// version. It is the only key this client sends; it never sends a
// COMPRESSION key, since compression negotiation is not implemented.
const CQLVersionKey = "CQL_VERSION"

// Startup is the first request sent on a new connection.
type Startup struct {
	Options map[string]string
}

// NewStartup builds a Startup message advertising the given CQL version.
func NewStartup(cqlVersion string) *Startup {
	return &Startup{Options: map[string]string{CQLVersionKey: cqlVersion}}
}

func (m *Startup) OpCode() primitive.OpCode { return primitive.OpCodeStartup }

func (m *Startup) String() string {
	return fmt.Sprintf("STARTUP %v", m.Options)
}

// Encode appends the STARTUP body: a string map.
func (m *Startup) Encode(b *primitive.Buffer) {
	b.PackStringMap(m.Options)
}

// DecodeStartup parses a STARTUP body.
func DecodeStartup(b *primitive.Buffer) (*Startup, error) {
	options, err := b.UnpackStringMap()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack STARTUP options: %w", err)
	}
	return &Startup{Options: options}, nil
}

// Ready is the response confirming a successful STARTUP with no
// authentication required. Its body is empty.
type Ready struct{}

func (m *Ready) OpCode() primitive.OpCode { return primitive.OpCodeReady }

func (m *Ready) String() string { return "READY" }

// Authenticate is the response to STARTUP when the server requires
// authentication. The only authenticator class this client recognizes is
// org.apache.cassandra.auth.PasswordAuthenticator.
type Authenticate struct {
	Authenticator string
}

func (m *Authenticate) OpCode() primitive.OpCode { return primitive.OpCodeAuthenticate }

func (m *Authenticate) String() string {
	return "AUTHENTICATE " + m.Authenticator
}

// DecodeAuthenticate parses an AUTHENTICATE body: a single string.
func DecodeAuthenticate(b *primitive.Buffer) (*Authenticate, error) {
	name, err := b.UnpackString()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack AUTHENTICATE authenticator: %w", err)
	}
	return &Authenticate{Authenticator: name}, nil
}

// Credentials is the v1 CREDENTIALS request: a plain string map carrying
// the username and password. Unlike protocol v2 and later, there is no
// SASL AUTH_RESPONSE/AUTH_CHALLENGE exchange.
type Credentials struct {
	Username string
	Password string
}

func (m *Credentials) OpCode() primitive.OpCode { return primitive.OpCodeCredentials }

func (m *Credentials) String() string { return "CREDENTIALS" }

// Encode appends the CREDENTIALS body: a {username,password} string map.
func (m *Credentials) Encode(b *primitive.Buffer) {
	b.PackStringMap(map[string]string{
		"username": m.Username,
		"password": m.Password,
	})
}
