// Package memory provides an Arrow allocator with byte accounting.
package memory

import (
	"sync/atomic"

	"github.com/apache/arrow-go/v18/arrow/memory"
)

// TrackedAllocator wraps a memory.Allocator and tracks current and peak
// allocated bytes. Safe for concurrent use.
type TrackedAllocator struct {
	underlying memory.Allocator
	bytesUsed  atomic.Int64
	peakBytes  atomic.Int64
}

// NewTrackedAllocator creates a new TrackedAllocator.
func NewTrackedAllocator(underlying memory.Allocator) *TrackedAllocator {
	return &TrackedAllocator{
		underlying: underlying,
	}
}

// Allocate implements memory.Allocator interface
func (a *TrackedAllocator) Allocate(size int) []byte {
	a.add(int64(size))
	return a.underlying.Allocate(size)
}

// Reallocate implements memory.Allocator interface
func (a *TrackedAllocator) Reallocate(size int, b []byte) []byte {
	a.add(int64(size - len(b)))
	return a.underlying.Reallocate(size, b)
}

// Free implements memory.Allocator interface
func (a *TrackedAllocator) Free(b []byte) {
	a.add(-int64(len(b)))
	a.underlying.Free(b)
}

func (a *TrackedAllocator) add(delta int64) {
	used := a.bytesUsed.Add(delta)
	for {
		peak := a.peakBytes.Load()
		if used <= peak || a.peakBytes.CompareAndSwap(peak, used) {
			return
		}
	}
}

// BytesUsed returns the current number of bytes allocated.
func (a *TrackedAllocator) BytesUsed() int64 {
	return a.bytesUsed.Load()
}

// PeakBytes returns the high-water mark of allocated bytes.
func (a *TrackedAllocator) PeakBytes() int64 {
	return a.peakBytes.Load()
}

// ResetPeak clears the high-water mark down to current usage, so a caller
// can measure the peak of a single operation.
func (a *TrackedAllocator) ResetPeak() {
	a.peakBytes.Store(a.bytesUsed.Load())
}
