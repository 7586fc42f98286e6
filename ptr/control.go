package ptr

import (
	"sync/atomic"
	"unsafe"
)

// control is the shared metadata block behind every Ptr referencing one
// managed value. It owns the lifetime decision: the value is dropped
// exactly once, when the strong count goes 1 -> 0, and the block itself
// is retired exactly once, after both counts have reached zero. The
// block outlives the value while auto-weak holders remain.
//
// All mutation goes through sync/atomic, which gives sequentially
// consistent ordering. That is stronger than the release/acquire
// handoff reference counting needs: every prior holder's writes are
// visible to whichever goroutine observes a count hit zero and runs
// the drop hook.
type control struct {
	strong    atomic.Uint64
	weak      atomic.Uint64
	obj       unsafe.Pointer // atomic; owning slot, nil once the value is dropped
	destroyed atomic.Bool
	retired   atomic.Bool
	drop      func(unsafe.Pointer)
}

func newControl(obj unsafe.Pointer, drop func(unsafe.Pointer)) *control {
	c := &control{drop: drop}
	c.strong.Store(1)
	atomic.StorePointer(&c.obj, obj)
	return c
}

func (c *control) addStrong() {
	c.strong.Add(1)
}

func (c *control) addWeak() {
	c.weak.Add(1)
}

// tryAddStrong increments the strong count only if it is still above
// zero. This is the only path that may raise the count from a possibly
// dead state, and it never succeeds once the count has reached zero,
// so a dropped value can never be promoted back to life.
func (c *control) tryAddStrong() bool {
	for {
		n := c.strong.Load()
		if n == 0 {
			return false
		}
		if c.strong.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

func (c *control) releaseStrong() {
	n := c.strong.Add(^uint64(0))
	if n == ^uint64(0) {
		panic("autoref: strong count underflow")
	}
	if n == 0 {
		c.destroyObject()
		if c.weak.Load() == 0 {
			c.retire()
		}
	}
}

func (c *control) releaseWeak() {
	n := c.weak.Add(^uint64(0))
	if n == ^uint64(0) {
		panic("autoref: weak count underflow")
	}
	if n == 0 && c.strong.Load() == 0 {
		c.retire()
	}
}

// destroyObject drops the managed value. The latch makes it idempotent:
// concurrent last-releasers race the CAS and exactly one runs the hook.
func (c *control) destroyObject() {
	if !c.destroyed.CompareAndSwap(false, true) {
		return
	}
	p := atomic.SwapPointer(&c.obj, nil)
	if p != nil && c.drop != nil {
		c.drop(p)
		c.drop = nil
	}
}

// retire marks the block as dead to the refcounting machinery. The Go
// runtime reclaims the memory once the last Ptr lets go; the latch
// keeps the strong/weak last-release race from retiring twice.
func (c *control) retire() {
	if c.retired.CompareAndSwap(false, true) {
		debugf("control block retired")
	}
}

func (c *control) object() unsafe.Pointer {
	return atomic.LoadPointer(&c.obj)
}

func (c *control) alive() bool {
	return c.strong.Load() > 0
}

func (c *control) strongCount() uint64 {
	return c.strong.Load()
}

func (c *control) weakCount() uint64 {
	return c.weak.Load()
}
