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

// Package prepared wraps a RESULT Prepared response into a reusable handle
// that binds parameters by name or position and executes itself against the
// connection that prepared it.
package prepared

import (
	"context"
	"fmt"
	"runtime"

	"github.com/cqlstream/cqlv1/conn"
	"github.com/cqlstream/cqlv1/message"
	"github.com/cqlstream/cqlv1/metadata"
	"github.com/cqlstream/cqlv1/primitive"
)

// BindingError reports a problem resolving bind values against a
// statement's parameter metadata: a name that does not match any
// parameter, or two names resolving to the same position. It is local to
// the Execute call; the connection is unaffected.
type BindingError struct {
	Reason string
}

func (e *BindingError) Error() string { return "cqlv1: binding error: " + e.Reason }

// Statement is a handle to a previously prepared CQL statement: its
// server-assigned id, the original text, and the metadata describing its
// bind parameters in order.
type Statement struct {
	conn     *conn.Conn
	cql      string
	id       []byte
	metadata *metadata.Metadata
	cache    *Cache
}

// New wraps a RESULT Prepared response for cql against c. It does not
// register with a Cache and arms no finalizer; Cache.Prepare does both.
func New(c *conn.Conn, cql string, result *message.Prepared) *Statement {
	return &Statement{conn: c, cql: cql, id: result.ID, metadata: result.Metadata}
}

// ID returns the server-assigned prepared statement id.
func (s *Statement) ID() []byte { return s.id }

// CQL returns the original statement text.
func (s *Statement) CQL() string { return s.cql }

// Metadata describes the statement's bind parameters in positional order.
func (s *Statement) Metadata() *metadata.Metadata { return s.metadata }

// Execute runs the statement. bindings is either []interface{} (positional,
// must match parameter count and order) or map[string]interface{}
// (name-keyed, resolved via the parameter metadata's short names).
func (s *Statement) Execute(ctx context.Context, bindings interface{}, consistency primitive.Consistency) (message.Result, error) {
	values, err := s.encodeBindings(bindings)
	if err != nil {
		return nil, fmt.Errorf("cqlv1: cannot bind parameters for %q: %w", s.cql, err)
	}
	return s.conn.Execute(ctx, s.id, values, consistency)
}

func (s *Statement) encodeBindings(bindings interface{}) ([][]byte, error) {
	registry := s.conn.Registry()
	switch b := bindings.(type) {
	case []interface{}:
		if len(b) != s.metadata.Count() {
			return nil, &BindingError{Reason: fmt.Sprintf("expected %d bind values, got %d", s.metadata.Count(), len(b))}
		}
		values := make([][]byte, len(b))
		for i, v := range b {
			codec := registry.Lookup(s.metadata.ColumnType(i))
			encoded, err := codec.Encode(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %d (%s): %w", i, s.metadata.ColumnShortName(i), err)
			}
			values[i] = encoded
		}
		return values, nil
	case map[string]interface{}:
		values := make([][]byte, s.metadata.Count())
		bound := make([]bool, s.metadata.Count())
		for name, v := range b {
			idx := s.metadata.Find(name)
			if idx < 0 {
				return nil, &BindingError{Reason: fmt.Sprintf("no bind parameter named %q", name)}
			}
			if bound[idx] {
				return nil, &BindingError{Reason: fmt.Sprintf("parameter %q bound more than once", name)}
			}
			codec := registry.Lookup(s.metadata.ColumnType(idx))
			encoded, err := codec.Encode(v)
			if err != nil {
				return nil, fmt.Errorf("parameter %q: %w", name, err)
			}
			values[idx] = encoded
			bound[idx] = true
		}
		for i, ok := range bound {
			if !ok {
				return nil, &BindingError{Reason: fmt.Sprintf("missing bind value for parameter %q", s.metadata.ColumnShortName(i))}
			}
		}
		return values, nil
	default:
		return nil, fmt.Errorf("bindings must be []interface{} or map[string]interface{}, got %T", bindings)
	}
}

// armFinalizer schedules an eviction notice to s.cache when s becomes
// unreachable, unless the cache is tearing down. Called only by
// Cache.Prepare; a Statement built with New has no cache and no finalizer.
func (s *Statement) armFinalizer() {
	cql := s.cql
	cache := s.cache
	runtime.SetFinalizer(s, func(*Statement) {
		cache.evict(cql)
	})
}
