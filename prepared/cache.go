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

package prepared

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/cqlstream/cqlv1/conn"
)

// Cache keyed by CQL text. Prepare reuses an existing Statement for text
// already prepared on this connection rather than issuing PREPARE again.
// Prepare arms a finalizer on each Statement it stores that calls evict,
// which is a no-op once the cache is closing. byCQL itself holds a
// reference to every stored Statement, so that finalizer does not run
// while the entry is cached; entries leave the cache only through Close.
type Cache struct {
	conn *conn.Conn

	mu      sync.Mutex
	byCQL   map[string]*Statement
	closing bool
}

// NewCache returns an empty cache bound to c.
func NewCache(c *conn.Conn) *Cache {
	return &Cache{conn: c, byCQL: make(map[string]*Statement)}
}

// Prepare returns the cached Statement for cql if one exists, otherwise
// issues PREPARE, wraps the response, and caches it.
func (c *Cache) Prepare(ctx context.Context, cql string) (*Statement, error) {
	c.mu.Lock()
	if stmt, found := c.byCQL[cql]; found {
		c.mu.Unlock()
		return stmt, nil
	}
	c.mu.Unlock()

	result, err := c.conn.Prepare(ctx, cql)
	if err != nil {
		return nil, fmt.Errorf("cqlv1: PREPARE %q failed: %w", cql, err)
	}
	stmt := New(c.conn, cql, result)
	stmt.cache = c

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return stmt, nil
	}
	if existing, found := c.byCQL[cql]; found {
		return existing, nil
	}
	c.byCQL[cql] = stmt
	stmt.armFinalizer()
	return stmt, nil
}

// Close marks the cache as tearing down, suppressing further
// finalizer-driven eviction, and drops all cached entries.
func (c *Cache) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closing = true
	c.byCQL = make(map[string]*Statement)
}

func (c *Cache) evict(cql string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closing {
		return
	}
	if _, found := c.byCQL[cql]; found {
		delete(c.byCQL, cql)
		log.Trace().Str("cql", cql).Msg("cqlv1: evicted prepared statement")
	}
}
