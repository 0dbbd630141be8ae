package sticker

import "sync/atomic"

// IDAllocator hands out sticker ids 1,2,3... Zero is never produced, so
// callers can use zero to mean "no sticker". Each session owns its own
// allocator; there is no process-wide state.
type IDAllocator struct {
	next atomic.Int32
}

func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

func (a *IDAllocator) Next() int32 {
	n := a.next.Add(1)
	if n <= 0 {
		// Wrapped. Start over rather than handing out negative ids.
		a.next.Store(1)
		n = 1
	}
	return n
}

// Seed makes the next call to Next return seed+1.
// Used when restoring a saved scene, so fresh ids don't collide.
func (a *IDAllocator) Seed(seed int32) {
	a.next.Store(seed)
}

// Last returns the most recently allocated id, or 0 if none have been
// handed out. Saved scenes store this as their allocator seed.
func (a *IDAllocator) Last() int32 {
	return a.next.Load()
}
