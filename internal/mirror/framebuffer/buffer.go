// Package framebuffer holds the single-slot staging area between a frame
// producer and the render loop. The consumer always gets the latest frame;
// frames overwritten before being consumed are counted as skipped.
package framebuffer

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	// ErrNilFrame is returned by Push when there is no frame to store.
	ErrNilFrame = errors.New("nil frame")
	// ErrNoPendingFrame is returned by Consume when no frame was pushed since
	// the last consume.
	ErrNoPendingFrame = errors.New("no pending frame")
)

// Buffer is safe for one producer goroutine calling Push and one consumer
// goroutine calling Consume.
type Buffer struct {
	mu      sync.Mutex
	pending *Frame
	valid   bool

	// only touched by the producer
	scratch *Frame

	skipped atomic.Uint64
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{
		pending: &Frame{},
		scratch: &Frame{},
	}
}

// Push stores a copy of frame as the pending frame. previousSkipped is true
// when an unconsumed frame was overwritten; in that case the consumer has
// already been notified and must not be woken again.
func (b *Buffer) Push(frame *Frame) (previousSkipped bool, err error) {
	if frame == nil {
		return false, ErrNilFrame
	}

	// copy outside the lock, the scratch frame belongs to the producer
	b.scratch.CopyFrom(frame)

	b.mu.Lock()
	b.pending, b.scratch = b.scratch, b.pending
	previousSkipped = b.valid
	b.valid = true
	b.mu.Unlock()

	if previousSkipped {
		b.skipped.Add(1)
	}
	return previousSkipped, nil
}

// Consume moves the pending frame into dst. The previous content of dst is
// kept by the buffer for reuse.
func (b *Buffer) Consume(dst *Frame) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.valid {
		return ErrNoPendingFrame
	}
	*dst, *b.pending = *b.pending, *dst
	b.pending.Reset()
	b.valid = false
	return nil
}

// HasPending reports whether a frame is waiting to be consumed.
func (b *Buffer) HasPending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.valid
}

// Skipped returns the number of frames overwritten before being consumed. The
// counter is never reset.
func (b *Buffer) Skipped() uint64 {
	return b.skipped.Load()
}
