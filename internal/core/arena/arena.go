// Package arena implements a bump-pointer allocator over one fixed buffer,
// typed slices carved from it, and a size-class partitioning of one master
// arena for component storage.
package arena

import (
	"errors"
	"fmt"
	"unsafe"
)

// CacheLine is the alignment used for dense component columns and sub-arenas.
const CacheLine = 64

const defaultAlign = 8

var (
	// ErrOutOfMemory is returned when an allocation does not fit in the
	// remaining buffer. The arena never grows or chains.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrDestroyed is returned by allocations on a destroyed arena.
	ErrDestroyed = errors.New("arena: destroyed")
)

// Checkpoint is a saved bump offset. Restoring it releases everything
// allocated after it was taken.
type Checkpoint int

// Arena is a bump allocator over one fixed, zero-initialized buffer.
// Individual frees are not supported; Reset and Restore release memory in bulk
// and invalidate every slice handed out past the new offset.
// Not safe for concurrent use.
type Arena struct {
	buf       []byte
	base      uintptr // address of buf[0]; heap objects do not move
	offset    int
	destroyed bool
}

// New creates an arena over a buffer of size bytes. The buffer start is
// cache-line aligned so offset alignment and address alignment agree.
func New(size int) (*Arena, error) {
	if size < 0 {
		return nil, fmt.Errorf("arena: invalid size %d", size)
	}
	raw := make([]byte, size+CacheLine)
	start := unsafe.Pointer(unsafe.SliceData(raw))
	pad := int(alignPad(uintptr(start), CacheLine))
	return &Arena{
		buf:  raw[pad : pad+size : pad+size],
		base: uintptr(start) + uintptr(pad),
	}, nil
}

// Alloc reserves size bytes at the default 8-byte alignment.
func (a *Arena) Alloc(size int) ([]byte, error) {
	return a.AllocAligned(size, defaultAlign)
}

// AllocAligned reserves size bytes starting at the next offset rounded up to
// align. align must be a power of two. On exhaustion the offset is left
// untouched and ErrOutOfMemory is returned.
func (a *Arena) AllocAligned(size, align int) ([]byte, error) {
	if align <= 0 || align&(align-1) != 0 {
		panic(fmt.Sprintf("arena: alignment %d is not a power of two", align))
	}
	if size < 0 {
		panic(fmt.Sprintf("arena: negative allocation size %d", size))
	}
	if a.destroyed {
		return nil, ErrDestroyed
	}
	start := a.offset + int(alignPad(a.base+uintptr(a.offset), uintptr(align)))
	if start > len(a.buf) || size > len(a.buf)-start {
		return nil, fmt.Errorf("%w: %d bytes at offset %d, capacity %d", ErrOutOfMemory, size, start, len(a.buf))
	}
	a.offset = start + size
	return a.buf[start:a.offset:a.offset], nil
}

// Sub carves a child arena out of a. The child owns no memory of its own: it
// is invalidated by Reset, Restore or Destroy of the parent.
func (a *Arena) Sub(size, align int) (*Arena, error) {
	b, err := a.AllocAligned(size, align)
	if err != nil {
		return nil, err
	}
	clear(b)
	return &Arena{
		buf:  b,
		base: a.base + uintptr(a.offset-size),
	}, nil
}

// Reset rewinds the arena to empty. Memory is not cleared.
// Use with caution: every slice previously handed out is invalid afterwards.
func (a *Arena) Reset() {
	a.offset = 0
}

func (a *Arena) Checkpoint() Checkpoint {
	return Checkpoint(a.offset)
}

// Restore rewinds to cp. Checkpoints nest like a stack: restoring to a
// checkpoint ahead of the current offset is a programming error and panics.
func (a *Arena) Restore(cp Checkpoint) {
	if cp < 0 || int(cp) > a.offset {
		panic(fmt.Sprintf("arena: restore to %d ahead of offset %d", cp, a.offset))
	}
	a.offset = int(cp)
}

// Destroy releases the buffer. Further allocations return ErrDestroyed.
func (a *Arena) Destroy() {
	a.buf = nil
	a.base = 0
	a.offset = 0
	a.destroyed = true
}

func (a *Arena) Size() int      { return len(a.buf) }
func (a *Arena) Used() int      { return a.offset }
func (a *Arena) Remaining() int { return len(a.buf) - a.offset }

// alignPad returns the number of bytes needed to round addr up to align.
func alignPad(addr, align uintptr) uintptr {
	return (align - addr&(align-1)) & (align - 1)
}
