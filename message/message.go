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

// Package message implements the body codecs for every opcode of the CQL
// native protocol version 1: STARTUP/READY/AUTHENTICATE/CREDENTIALS,
// OPTIONS/SUPPORTED, QUERY/PREPARE/EXECUTE/RESULT, REGISTER/EVENT, and
// ERROR.
package message

import "github.com/cqlstream/cqlv1/primitive"

// Message is any value with a known request or response opcode.
type Message interface {
	OpCode() primitive.OpCode
	String() string
}
