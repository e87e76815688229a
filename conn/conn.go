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

// Package conn implements the CQL native protocol v1 connection state
// machine: handshake, stream-id multiplexing over a single TCP socket, and
// the public request/response operations built on top of it.
package conn

import (
	"bufio"
	"container/list"
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"github.com/cqlstream/cqlv1/datacodec"
	"github.com/cqlstream/cqlv1/frame"
	"github.com/cqlstream/cqlv1/message"
	"github.com/cqlstream/cqlv1/primitive"
)

// Lifecycle states, following spec.md §4.F.
const (
	StateInit = iota
	StateConnecting
	StateAuthenticating
	StateReady
	StateClosed
)

// CQLVersion is the CQL_VERSION advertised in every STARTUP request.
const CQLVersion = "3.0.5"

const passwordAuthenticatorClass = "org.apache.cassandra.auth.PasswordAuthenticator"

// eventStreamID is the wire stream id (0xFF, signed) reserved for
// unsolicited OPCODE_EVENT messages.
const eventStreamID int8 = -1

var errConnClosed error = &TransportClosed{}

// Credentials holds the username/password sent in a v1 CREDENTIALS
// request, used only when the server's STARTUP response is AUTHENTICATE.
type Credentials struct {
	Username string
	Password string
}

// EventSink receives a decoded EVENT message dispatched on the connection's
// reserved event stream.
type EventSink func(*message.Event)

// Conn is a single multiplexed connection to a CQL v1 server. All public
// methods are safe for concurrent use; a single background goroutine
// demultiplexes incoming frames onto the stream table.
type Conn struct {
	netConn net.Conn
	reader  *bufio.Reader
	writeMu sync.Mutex

	mu          sync.Mutex
	streamTable [127]*pendingRequest
	queue       *list.List

	state int32

	credentials *Credentials
	keyspace    string
	registry    *datacodec.Registry

	eventMu     sync.RWMutex
	eventSinks  map[string]EventSink
	genericSink EventSink

	closeOnce sync.Once
	closed    chan struct{}
}

type pendingRequest struct {
	resultCh chan frameResult
	// abandoned is set by cancel when a request whose send already went
	// out is given up on by its caller. The stream id cannot be reused
	// until the server's (possibly still in-flight) response for it
	// actually arrives; deliver discards that response instead of
	// routing it anywhere, then frees and promotes the slot normally.
	abandoned bool
}

type queuedSend struct {
	preq   *pendingRequest
	opCode primitive.OpCode
	body   []byte
}

type frameResult struct {
	header *primitive.Header
	body   []byte
	err    error
}

// Option configures a Conn at Dial time.
type Option func(*Conn)

// WithCredentials configures the username/password used if the server
// requires authentication. Without this option, a connection that receives
// AUTHENTICATE fails.
func WithCredentials(username, password string) Option {
	return func(c *Conn) { c.credentials = &Credentials{Username: username, Password: password} }
}

// WithKeyspace issues a USE <keyspace> query right after the handshake
// completes, before Dial returns.
func WithKeyspace(keyspace string) Option {
	return func(c *Conn) { c.keyspace = keyspace }
}

// WithRegistry overrides the default scalar-codec registry used to decode
// RESULT rows.
func WithRegistry(r *datacodec.Registry) Option {
	return func(c *Conn) { c.registry = r }
}

// Dial opens a TCP connection to address, performs the STARTUP handshake
// (and CREDENTIALS exchange, if required), and optionally switches to a
// keyspace, returning a Conn in the Ready state.
func Dial(ctx context.Context, address string, opts ...Option) (*Conn, error) {
	var d net.Dialer
	netConn, err := d.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, fmt.Errorf("cqlv1: cannot connect to %s: %w", address, err)
	}
	c := &Conn{
		netConn:    netConn,
		reader:     bufio.NewReader(netConn),
		queue:      list.New(),
		registry:   datacodec.NewDefaultRegistry(),
		eventSinks: make(map[string]EventSink),
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	atomic.StoreInt32(&c.state, StateConnecting)
	go c.recvLoop()

	if err := c.startup(ctx); err != nil {
		c.fail(err)
		return nil, err
	}
	if c.keyspace != "" {
		if _, err := c.Query(ctx, "USE "+c.keyspace, primitive.ConsistencyOne); err != nil {
			c.fail(err)
			return nil, fmt.Errorf("cqlv1: cannot switch to keyspace %q: %w", c.keyspace, err)
		}
	}
	atomic.StoreInt32(&c.state, StateReady)
	return c, nil
}

// State returns the connection's current lifecycle state.
func (c *Conn) State() int32 { return atomic.LoadInt32(&c.state) }

// Registry returns the scalar-codec registry this connection decodes RESULT
// rows and encodes EXECUTE bind values with.
func (c *Conn) Registry() *datacodec.Registry { return c.registry }

func (c *Conn) startup(ctx context.Context) error {
	atomic.StoreInt32(&c.state, StateConnecting)
	b := primitive.NewBuffer()
	message.NewStartup(CQLVersion).Encode(b)
	res, err := c.roundTrip(ctx, primitive.OpCodeStartup, b.Bytes())
	if err != nil {
		return fmt.Errorf("cqlv1: STARTUP failed: %w", err)
	}
	switch res.header.OpCode {
	case primitive.OpCodeReady:
		return nil
	case primitive.OpCodeAuthenticate:
		auth, err := message.DecodeAuthenticate(primitive.NewBufferFromBytes(res.body))
		if err != nil {
			return fmt.Errorf("cqlv1: cannot decode AUTHENTICATE: %w", err)
		}
		atomic.StoreInt32(&c.state, StateAuthenticating)
		return c.authenticate(ctx, auth)
	case primitive.OpCodeError:
		return decodeErrorBody(res.body)
	default:
		return fmt.Errorf("cqlv1: expected READY or AUTHENTICATE, got opcode %v", res.header.OpCode)
	}
}

func (c *Conn) authenticate(ctx context.Context, auth *message.Authenticate) error {
	if auth.Authenticator != passwordAuthenticatorClass {
		return &AuthError{Reason: fmt.Sprintf("unrecognised authenticator %q", auth.Authenticator)}
	}
	if c.credentials == nil {
		return &AuthError{Reason: "server requires authentication but no credentials were configured"}
	}
	b := primitive.NewBuffer()
	(&message.Credentials{Username: c.credentials.Username, Password: c.credentials.Password}).Encode(b)
	res, err := c.roundTrip(ctx, primitive.OpCodeCredentials, b.Bytes())
	if err != nil {
		return fmt.Errorf("cqlv1: CREDENTIALS failed: %w", err)
	}
	switch res.header.OpCode {
	case primitive.OpCodeReady:
		return nil
	case primitive.OpCodeError:
		return decodeErrorBody(res.body)
	default:
		return fmt.Errorf("cqlv1: expected READY after CREDENTIALS, got opcode %v", res.header.OpCode)
	}
}

// Options asks the server to report its supported startup options.
func (c *Conn) Options(ctx context.Context) (map[string][]string, error) {
	res, err := c.roundTrip(ctx, primitive.OpCodeOptions, nil)
	if err != nil {
		return nil, err
	}
	if res.header.OpCode == primitive.OpCodeError {
		return nil, decodeErrorBody(res.body)
	}
	supported, err := message.DecodeSupported(primitive.NewBufferFromBytes(res.body))
	if err != nil {
		return nil, fmt.Errorf("cqlv1: cannot decode SUPPORTED: %w", err)
	}
	return supported.Options, nil
}

// Query executes a CQL statement by text at the given consistency level.
func (c *Conn) Query(ctx context.Context, cql string, consistency primitive.Consistency) (message.Result, error) {
	b := primitive.NewBuffer()
	(&message.Query{CQL: cql, Consistency: consistency}).Encode(b)
	res, err := c.roundTrip(ctx, primitive.OpCodeQuery, b.Bytes())
	if err != nil {
		return nil, err
	}
	return c.decodeResult(res)
}

// Prepare asks the server to prepare a CQL statement for repeated
// execution, returning its bind-parameter id and metadata.
func (c *Conn) Prepare(ctx context.Context, cql string) (*message.Prepared, error) {
	b := primitive.NewBuffer()
	(&message.Prepare{CQL: cql}).Encode(b)
	res, err := c.roundTrip(ctx, primitive.OpCodePrepare, b.Bytes())
	if err != nil {
		return nil, err
	}
	result, err := c.decodeResult(res)
	if err != nil {
		return nil, err
	}
	prepared, ok := result.(*message.Prepared)
	if !ok {
		return nil, fmt.Errorf("cqlv1: expected RESULT Prepared, got %v", result)
	}
	return prepared, nil
}

// Execute runs a previously prepared statement, supplying already-encoded
// bind values in positional order.
func (c *Conn) Execute(ctx context.Context, id []byte, values [][]byte, consistency primitive.Consistency) (message.Result, error) {
	b := primitive.NewBuffer()
	(&message.Execute{ID: id, Values: values, Consistency: consistency}).Encode(b)
	res, err := c.roundTrip(ctx, primitive.OpCodeExecute, b.Bytes())
	if err != nil {
		return nil, err
	}
	return c.decodeResult(res)
}

// Register subscribes this connection to the named event types; subsequent
// EVENT messages are dispatched to sinks registered via RegisterEventSink
// or SetDefaultEventSink.
func (c *Conn) Register(ctx context.Context, eventTypes []string) error {
	b := primitive.NewBuffer()
	if err := (&message.Register{EventTypes: eventTypes}).Encode(b); err != nil {
		return err
	}
	res, err := c.roundTrip(ctx, primitive.OpCodeRegister, b.Bytes())
	if err != nil {
		return err
	}
	if res.header.OpCode == primitive.OpCodeError {
		return decodeErrorBody(res.body)
	}
	if res.header.OpCode != primitive.OpCodeReady {
		return fmt.Errorf("cqlv1: expected READY in response to REGISTER, got opcode %v", res.header.OpCode)
	}
	return nil
}

// RegisterEventSink installs a sink for one event type (e.g.
// primitive.EventTypeSchemaChange). Replaces any previously registered sink
// for that type.
func (c *Conn) RegisterEventSink(eventType string, sink EventSink) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()
	c.eventSinks[eventType] = sink
}

// SetDefaultEventSink installs a sink invoked for every dispatched EVENT
// whose type has no type-specific sink registered.
func (c *Conn) SetDefaultEventSink(sink EventSink) {
	c.eventMu.Lock()
	defer c.eventMu.Unlock()
	c.genericSink = sink
}

// Close terminates the connection, failing every in-flight and queued
// request with an error, and closes the underlying socket.
func (c *Conn) Close() error {
	c.fail(errConnClosed)
	return nil
}

func (c *Conn) decodeResult(res frameResult) (message.Result, error) {
	if res.header.OpCode == primitive.OpCodeError {
		return nil, decodeErrorBody(res.body)
	}
	if res.header.OpCode != primitive.OpCodeResult {
		return nil, fmt.Errorf("cqlv1: expected RESULT, got opcode %v", res.header.OpCode)
	}
	result, err := message.DecodeResult(primitive.NewBufferFromBytes(res.body), c.registry)
	if err != nil {
		return nil, err
	}
	if unknown, ok := result.(*message.Unknown); ok {
		err := fmt.Errorf("cqlv1: unrecognized RESULT kind 0x%04x", int32(unknown.Kind))
		c.fail(err)
		return nil, err
	}
	return result, nil
}

func decodeErrorBody(body []byte) error {
	e, err := message.DecodeError(primitive.NewBufferFromBytes(body))
	if err != nil {
		return fmt.Errorf("cqlv1: cannot decode ERROR body: %w", err)
	}
	return e
}

// roundTrip sends a request and blocks until its response arrives, the
// context is cancelled, or the connection closes.
func (c *Conn) roundTrip(ctx context.Context, opCode primitive.OpCode, body []byte) (frameResult, error) {
	if atomic.LoadInt32(&c.state) == StateClosed {
		return frameResult{}, errConnClosed
	}
	preq := &pendingRequest{resultCh: make(chan frameResult, 1)}
	idx := -1
	var elem *list.Element
	if i, ok := c.assignSlot(preq); ok {
		idx = i
		if err := c.writeFrame(int8(idx+1), opCode, body); err != nil {
			c.releaseSlot(idx)
			return frameResult{}, fmt.Errorf("cqlv1: cannot send %v: %w", opCode, err)
		}
	} else {
		elem = c.enqueue(preq, opCode, body)
	}
	select {
	case res := <-preq.resultCh:
		if res.err != nil {
			return frameResult{}, res.err
		}
		return res, nil
	case <-ctx.Done():
		c.cancel(preq, idx, elem)
		return frameResult{}, &Canceled{Err: ctx.Err()}
	case <-c.closed:
		return frameResult{}, errConnClosed
	}
}

func (c *Conn) assignSlot(preq *pendingRequest) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, slot := range c.streamTable {
		if slot == nil {
			c.streamTable[i] = preq
			return i, true
		}
	}
	return -1, false
}

func (c *Conn) releaseSlot(idx int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.streamTable[idx] = nil
}

func (c *Conn) enqueue(preq *pendingRequest, opCode primitive.OpCode, body []byte) *list.Element {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.PushBack(&queuedSend{preq: preq, opCode: opCode, body: body})
}

// promoteLocked must be called with c.mu held and slot idx already vacated.
// It pops the oldest queued request, if any, onto idx and returns it for the
// caller to transmit once the lock is released.
func (c *Conn) promoteLocked(idx int) *queuedSend {
	front := c.queue.Front()
	if front == nil {
		return nil
	}
	next := front.Value.(*queuedSend)
	c.queue.Remove(front)
	c.streamTable[idx] = next.preq
	return next
}

// cancel releases the resources held by a request whose context was
// cancelled before its response arrived. A request still waiting its turn
// in the FIFO queue (never sent) is simply dropped. A request whose send
// already went out cannot safely free its stream slot: the server may
// still answer on it, and reusing the id before that answer arrives would
// hand a stale response to whichever new request took the slot. Such a
// request is instead marked abandoned, so deliver discards its eventual
// response and frees the slot then, not now.
func (c *Conn) cancel(preq *pendingRequest, idx int, elem *list.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem != nil {
		c.queue.Remove(elem)
	}
	if idx >= 0 && c.streamTable[idx] == preq {
		preq.abandoned = true
		return
	}
	if elem != nil {
		for _, p := range c.streamTable {
			if p == preq {
				preq.abandoned = true
				return
			}
		}
	}
}

func (c *Conn) writeFrame(streamID int8, opCode primitive.OpCode, body []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return frame.WriteFrame(c.netConn, streamID, opCode, 0, body)
}

// recvLoop is the single reader goroutine. It owns c.reader exclusively;
// no other goroutine may read from the socket.
func (c *Conn) recvLoop() {
	for {
		header, body, err := frame.ReadFrame(c.reader)
		if err != nil {
			var violation *frame.ProtocolViolation
			if errors.As(err, &violation) {
				c.fail(err)
			} else {
				c.fail(&TransportClosed{Err: err})
			}
			return
		}
		if header.OpCode == primitive.OpCodeEvent && header.StreamID == eventStreamID {
			c.dispatchEvent(body)
			continue
		}
		if header.StreamID == 0 {
			c.fail(fmt.Errorf("cqlv1: fatal frame on stream 0 (opcode %v): %s", header.OpCode, describeFatal(body)))
			return
		}
		c.deliver(header, body)
	}
}

func describeFatal(body []byte) string {
	if e, err := message.DecodeError(primitive.NewBufferFromBytes(body)); err == nil {
		return e.String()
	}
	return "undecodable error body"
}

func (c *Conn) deliver(header *primitive.Header, body []byte) {
	idx := int(header.StreamID) - 1
	if idx < 0 || idx >= len(c.streamTable) {
		log.Warn().Msgf("cqlv1: discarding frame with out-of-range stream id %d", header.StreamID)
		return
	}
	c.mu.Lock()
	preq := c.streamTable[idx]
	c.streamTable[idx] = nil
	abandoned := preq != nil && preq.abandoned
	var next *queuedSend
	if preq != nil {
		next = c.promoteLocked(idx)
	}
	c.mu.Unlock()

	if preq == nil {
		log.Warn().Msgf("cqlv1: discarding frame for unallocated stream id %d", header.StreamID)
		return
	}
	if abandoned {
		log.Debug().Msgf("cqlv1: discarding late response for cancelled request on stream id %d", header.StreamID)
	} else {
		preq.resultCh <- frameResult{header: header, body: body}
	}

	if next != nil {
		if err := c.writeFrame(int8(idx+1), next.opCode, next.body); err != nil {
			next.preq.resultCh <- frameResult{err: fmt.Errorf("cqlv1: cannot send queued request: %w", err)}
		}
	}
}

func (c *Conn) dispatchEvent(body []byte) {
	ev, err := message.DecodeEvent(primitive.NewBufferFromBytes(body))
	if err != nil {
		log.Warn().Err(err).Msg("cqlv1: cannot decode EVENT body")
		return
	}
	c.eventMu.RLock()
	sink, found := c.eventSinks[ev.Type]
	generic := c.genericSink
	c.eventMu.RUnlock()
	if found {
		sink(ev)
	} else if generic != nil {
		generic(ev)
	} else {
		log.Trace().Msgf("cqlv1: dropping %s event with no sink installed", ev.Type)
	}
}

func (c *Conn) fail(err error) {
	c.closeOnce.Do(func() {
		atomic.StoreInt32(&c.state, StateClosed)
		c.mu.Lock()
		for i, preq := range c.streamTable {
			if preq != nil {
				preq.resultCh <- frameResult{err: err}
				c.streamTable[i] = nil
			}
		}
		for e := c.queue.Front(); e != nil; e = e.Next() {
			e.Value.(*queuedSend).preq.resultCh <- frameResult{err: err}
		}
		c.queue.Init()
		c.mu.Unlock()
		close(c.closed)
		if cerr := c.netConn.Close(); cerr != nil {
			log.Debug().Err(cerr).Msg("cqlv1: error closing socket")
		}
		log.Error().Err(err).Msg("cqlv1: connection closed")
	})
}
