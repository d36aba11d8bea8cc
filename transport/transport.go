// Package transport delivers encoded event payloads to their destination.
//
// A transport receives fully encoded msgpack bytes and is not involved in
// serialization; a failed send never corrupts or re-encodes the payload.
package transport

import (
	"context"
	"sync"
)

// Transport delivers one encoded message. Implementations must be safe
// for concurrent use.
type Transport interface {
	Send(ctx context.Context, message []byte) error
	Close() error
}

// Buffer is an in-memory Transport that records every message it is
// given. It backs tests and acts as a staging area for batching.
type Buffer struct {
	mu       sync.Mutex
	messages [][]byte
	closed   bool
}

// NewBuffer returns an empty Buffer.
func NewBuffer() *Buffer {
	return &Buffer{}
}

// Send records a copy of message.
func (b *Buffer) Send(ctx context.Context, message []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	b.messages = append(b.messages, append([]byte(nil), message...))
	return nil
}

// Messages returns the recorded messages in send order.
func (b *Buffer) Messages() [][]byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([][]byte(nil), b.messages...)
}

// Close marks the buffer closed; further sends fail with ErrClosed.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
