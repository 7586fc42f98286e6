package arena

import (
	"math"
	"sync"

	"go.uber.org/multierr"

	"github.com/wippyai/autoref"
	"github.com/wippyai/autoref/errors"
	"github.com/wippyai/autoref/ptr"
)

// Arena is a handle table for untyped callers: allocations are
// addressed by opaque handles rather than pointers, and each handle
// maps to a separately owned block that is deallocated only when its
// last owner lets go. Free releases the arena's own reference; owners
// obtained with Retain keep the block valid past the Free.
type Arena struct {
	store     *store
	observers []Observer
	obsMu     sync.RWMutex
	closed    bool
	closeMu   sync.RWMutex
}

var _ autoref.Allocator = (*Arena)(nil)

// New creates an empty arena.
func New() *Arena {
	return &Arena{
		store: newStore(),
	}
}

// Malloc allocates a block of size bytes and returns its handle.
// Zero-size allocations are valid and return a live handle.
func (a *Arena) Malloc(size int) (Handle, error) {
	if size < 0 {
		return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Value(size).
			Detail("negative size %d", size).
			Build()
	}
	return a.alloc(size)
}

// Calloc allocates a zeroed block of count elements of size bytes each.
// It rejects products that overflow.
func (a *Arena) Calloc(count, size int) (Handle, error) {
	if count < 0 || size < 0 {
		return 0, errors.Overflow(count, size)
	}
	if size > 0 && count > math.MaxInt/size {
		return 0, errors.Overflow(count, size)
	}
	return a.alloc(count * size)
}

func (a *Arena) alloc(size int) (Handle, error) {
	a.closeMu.RLock()
	if a.closed {
		a.closeMu.RUnlock()
		return 0, errors.Closed("arena")
	}
	a.closeMu.RUnlock()

	handle, ok := a.store.create(size)
	if !ok {
		return 0, errors.Closed("arena")
	}

	a.notify(Event{
		Type:   EventAlloc,
		Handle: handle,
		Size:   size,
	})

	return handle, nil
}

// Bytes returns the backing slice for a live handle. The slice stays
// valid until the block's last owner is released, not merely until
// Free.
func (a *Arena) Bytes(handle Handle) ([]byte, bool) {
	ref, _, ok := a.store.get(handle)
	if !ok {
		return nil, false
	}
	data := ref.Deref().data
	ref.Release()
	return data, true
}

// Retain returns a new strong owner of the block behind handle. The
// caller must release it; the block outlives Free while such owners
// exist. A successful Retain always hands out a live owner: the
// reference is taken under the table's lock, so it cannot race a
// concurrent Free on the same handle.
func (a *Arena) Retain(handle Handle) (*ptr.Ptr[Block], error) {
	owner, size, ok := a.store.get(handle)
	if !ok {
		return nil, errors.InvalidHandle(uint32(handle))
	}

	a.notify(Event{
		Type:   EventRetain,
		Handle: handle,
		Size:   size,
	})
	return owner, nil
}

// Free drops the arena's reference to the block and invalidates the
// handle. The block itself is deallocated once every retained owner
// has released it.
func (a *Arena) Free(handle Handle) error {
	size, ok := a.store.drop(handle)
	if !ok {
		return errors.InvalidHandle(uint32(handle))
	}

	a.notify(Event{
		Type:   EventFree,
		Handle: handle,
		Size:   size,
	})

	return nil
}

// Stats reports the strong and weak counts of a live handle's block.
func (a *Arena) Stats(handle Handle) (strong, weak uint64, ok bool) {
	ref, _, found := a.store.get(handle)
	if !found {
		return 0, 0, false
	}
	// Exclude the lookup's own reference from the reported count.
	strong = ref.RefCount() - 1
	weak = ref.WeakCount()
	ref.Release()
	return strong, weak, true
}

// Len returns the number of live handles.
func (a *Arena) Len() int {
	return a.store.len()
}

// Each iterates over live handles with their sizes.
func (a *Arena) Each(fn func(Handle, int) bool) {
	a.store.each(func(h Handle, size int, _ *ptr.Ptr[Block]) bool {
		return fn(h, size)
	})
}

// Clear frees all live handles.
func (a *Arena) Clear() {
	// Collect handles first to avoid holding the store lock during Free
	var handles []Handle
	a.store.each(func(h Handle, _ int, _ *ptr.Ptr[Block]) bool {
		handles = append(handles, h)
		return true
	})
	for _, h := range handles {
		a.Free(h)
	}
}

// Subscribe adds an observer for lifecycle events.
func (a *Arena) Subscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	a.observers = append(a.observers, o)
}

// Unsubscribe removes an observer.
func (a *Arena) Unsubscribe(o Observer) {
	a.obsMu.Lock()
	defer a.obsMu.Unlock()
	for i, obs := range a.observers {
		if obs == o {
			a.observers = append(a.observers[:i], a.observers[i+1:]...)
			return
		}
	}
}

// Close frees every live handle and stops accepting operations. It
// returns an aggregate error naming each block that is still retained
// by an outside owner; those blocks are deallocated later, when their
// owners release them. Close is idempotent.
func (a *Arena) Close() error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	a.closeMu.Unlock()

	var err error
	a.store.close(func(h Handle, ref *ptr.Ptr[Block]) {
		if ref.RefCount() > 1 {
			err = multierr.Append(err, errors.New(errors.PhaseArena, errors.KindLeaked).
				Value(uint32(h)).
				Detail("handle %d still retained at close", h).
				Build())
		}
		ref.Release()
	})
	return err
}

func (a *Arena) notify(e Event) {
	a.obsMu.RLock()
	defer a.obsMu.RUnlock()
	for _, o := range a.observers {
		o.OnArenaEvent(e)
	}
}
