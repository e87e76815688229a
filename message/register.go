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
	"errors"
	"fmt"

	"github.com/cqlstream/cqlv1/primitive"
)

// Register is a request to subscribe the connection to the named event
// types (TOPOLOGY_CHANGE, STATUS_CHANGE, SCHEMA_CHANGE).
type Register struct {
	EventTypes []string
}

func (m *Register) OpCode() primitive.OpCode { return primitive.OpCodeRegister }

func (m *Register) String() string {
	return fmt.Sprintf("REGISTER %v", m.EventTypes)
}

// Encode appends the REGISTER body: a string list. At least one event
// type must be given.
func (m *Register) Encode(b *primitive.Buffer) error {
	if len(m.EventTypes) == 0 {
		return errors.New("REGISTER requires at least one event type")
	}
	b.PackStringList(m.EventTypes)
	return nil
}

// Event is an unsolicited OPCODE_EVENT message delivered on the event
// stream id (0xFF) for a type the connection registered interest in.
type Event struct {
	Type    string
	Change  string
	Targets []string
}

func (m *Event) OpCode() primitive.OpCode { return primitive.OpCodeEvent }

func (m *Event) String() string {
	return fmt.Sprintf("EVENT %s %s %v", m.Type, m.Change, m.Targets)
}

// DecodeEvent parses an EVENT body: an event type string, then a
// type-specific payload. TOPOLOGY_CHANGE and STATUS_CHANGE carry a change
// string and one inet address; SCHEMA_CHANGE carries a change string, a
// keyspace string and, when the body holds one, a table string. Targets
// holds the keyspace, followed by the table when it is non-empty.
func DecodeEvent(b *primitive.Buffer) (*Event, error) {
	eventType, err := b.UnpackString()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack EVENT type: %w", err)
	}
	change, err := b.UnpackString()
	if err != nil {
		return nil, fmt.Errorf("cannot unpack EVENT change: %w", err)
	}
	ev := &Event{Type: eventType, Change: change}
	switch eventType {
	case primitive.EventTypeTopologyChange, primitive.EventTypeStatusChange:
		addr, port, err := b.UnpackInet()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack EVENT %s address: %w", eventType, err)
		}
		ev.Targets = []string{fmt.Sprintf("%s:%d", addr, port)}
	case primitive.EventTypeSchemaChange:
		keyspace, err := b.UnpackString()
		if err != nil {
			return nil, fmt.Errorf("cannot unpack EVENT SCHEMA_CHANGE keyspace: %w", err)
		}
		ev.Targets = []string{keyspace}
		if b.Len() > 0 {
			table, err := b.UnpackString()
			if err != nil {
				return nil, fmt.Errorf("cannot unpack EVENT SCHEMA_CHANGE table: %w", err)
			}
			if table != "" {
				ev.Targets = append(ev.Targets, table)
			}
		}
	}
	return ev, nil
}
