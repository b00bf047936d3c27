// Package secret keeps key material outside the Go heap.
//
// A Buffer is an anonymous mmap region locked into RAM and excluded from
// core dumps. Close zeroes, unlocks and unmaps it.
package secret

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

var ErrClosed = errors.New("secret: buffer closed")

// Buffer holds sensitive bytes. It must not be copied after creation.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// New allocates a zeroed, locked buffer of size bytes.
func New(size int) (*Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("secret: buffer size must be positive, got %d", size)
	}

	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("secret: mmap: %w", err)
	}

	if err := unix.Mlock(data); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("secret: mlock: %w", err)
	}

	if err := unix.Madvise(data, unix.MADV_DONTDUMP); err != nil {
		_ = unix.Munlock(data)
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("secret: madvise: %w", err)
	}

	return &Buffer{data: data}, nil
}

// NewFromBytes copies source into a new Buffer and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, errors.New("secret: empty source")
	}

	b, err := New(len(source))
	if err != nil {
		return nil, err
	}
	copy(b.data, source)
	clear(source)

	return b, nil
}

// FromHex decodes a hex string of exactly size bytes into a new Buffer.
// The decoded heap copy is zeroed before returning.
func FromHex(s string, size int) (*Buffer, error) {
	if len(s) != size*2 {
		return nil, fmt.Errorf("secret: expected %d hex characters, got %d", size*2, len(s))
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		clear(raw)
		return nil, fmt.Errorf("secret: invalid hex: %w", err)
	}

	return NewFromBytes(raw)
}

// Bytes returns the protected slice. Callers must not retain it past Close.
// Bytes panics on a closed buffer.
func (b *Buffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		panic(ErrClosed)
	}
	return b.data
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

// Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	clear(b.data)

	var first error
	if err := unix.Munlock(b.data); err != nil {
		first = fmt.Errorf("secret: munlock: %w", err)
	}
	if err := unix.Munmap(b.data); err != nil && first == nil {
		first = fmt.Errorf("secret: munmap: %w", err)
	}
	b.data = nil

	return first
}
