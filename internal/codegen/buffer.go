package codegen

import "github.com/akkadolang/cedarc/internal/instr"

// MaxBuffers bounds how many DSP buffers one compiled program may use.
const MaxBuffers uint16 = 256

// BufferUnused marks an absent buffer slot, matching instr.UnusedBuffer.
const BufferUnused uint16 = instr.UnusedBuffer

// BufferAllocator hands out buffer indices by simple bump allocation; the
// code generator never reuses or frees a buffer mid-compile.
type BufferAllocator struct {
	next uint16
}

// Allocate returns the next free buffer index, or BufferUnused if the
// pool is exhausted.
func (b *BufferAllocator) Allocate() uint16 {
	if b.next >= MaxBuffers {
		return BufferUnused
	}
	out := b.next
	b.next++
	return out
}

// Count returns how many buffers have been allocated so far.
func (b *BufferAllocator) Count() uint16 { return b.next }

// HasAvailable reports whether another buffer can still be allocated.
func (b *BufferAllocator) HasAvailable() bool { return b.next < MaxBuffers }
