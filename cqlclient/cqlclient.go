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

// Package cqlclient is the public façade of the client: one Config, one
// Client wiring a conn.Conn to a prepared.Cache, and the identifier/value
// quoting helpers callers need to build literal CQL text safely.
package cqlclient

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/cqlstream/cqlv1/conn"
	"github.com/cqlstream/cqlv1/message"
	"github.com/cqlstream/cqlv1/prepared"
	"github.com/cqlstream/cqlv1/primitive"
)

// DefaultPort is the Cassandra Native Binary Protocol's default TCP port.
const DefaultPort = 9042

// Config holds everything needed to dial and authenticate a connection.
type Config struct {
	// Address is a "host:port" pair; a bare host implies DefaultPort.
	Address string

	// Username/Password are sent in CREDENTIALS if the server responds to
	// STARTUP with AUTHENTICATE. Leave both empty if the server requires no
	// authentication.
	Username string
	Password string

	// Keyspace, if non-empty, is switched into with a USE query right
	// after the handshake completes.
	Keyspace string

	// DefaultConsistency is the consistency level QueryDefault uses; Query
	// always takes an explicit level.
	DefaultConsistency primitive.Consistency
}

// Client wires a single conn.Conn to its own prepared-statement cache.
type Client struct {
	cfg   Config
	conn  *conn.Conn
	cache *prepared.Cache
}

// Connect dials cfg.Address, performs the handshake (and CREDENTIALS
// exchange, and USE <keyspace>, as configured), and returns a ready Client.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("cqlclient: Config.Address is required")
	}
	var opts []conn.Option
	if cfg.Username != "" || cfg.Password != "" {
		opts = append(opts, conn.WithCredentials(cfg.Username, cfg.Password))
	}
	if cfg.Keyspace != "" {
		opts = append(opts, conn.WithKeyspace(QuoteIdentifier(cfg.Keyspace)))
	}
	address := cfg.Address
	if _, _, err := net.SplitHostPort(address); err != nil {
		address = net.JoinHostPort(address, strconv.Itoa(DefaultPort))
	}
	c, err := conn.Dial(ctx, address, opts...)
	if err != nil {
		return nil, err
	}
	return &Client{cfg: cfg, conn: c, cache: prepared.NewCache(c)}, nil
}

// Query executes cql at the given consistency level.
func (c *Client) Query(ctx context.Context, cql string, consistency primitive.Consistency) (message.Result, error) {
	return c.conn.Query(ctx, cql, consistency)
}

// QueryDefault executes cql at the Config's DefaultConsistency.
func (c *Client) QueryDefault(ctx context.Context, cql string) (message.Result, error) {
	return c.conn.Query(ctx, cql, c.cfg.DefaultConsistency)
}

// Prepare returns a reusable Statement for cql, preparing it on first use
// and reusing the cached handle for subsequent calls with the same text.
func (c *Client) Prepare(ctx context.Context, cql string) (*prepared.Statement, error) {
	return c.cache.Prepare(ctx, cql)
}

// Options reports the server's supported startup options.
func (c *Client) Options(ctx context.Context) (map[string][]string, error) {
	return c.conn.Options(ctx)
}

// Register subscribes to the named event types; dispatched events reach
// sinks installed via EventSinks.
func (c *Client) Register(ctx context.Context, eventTypes []string) error {
	return c.conn.Register(ctx, eventTypes)
}

// EventSinks exposes the underlying connection's sink registration so
// callers can install handlers before or after Register.
func (c *Client) EventSinks() *conn.Conn { return c.conn }

// Close tears down the prepared-statement cache (suppressing any
// in-flight finalizer evictions) and closes the connection.
func (c *Client) Close() error {
	c.cache.Close()
	return c.conn.Close()
}
