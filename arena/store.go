package arena

import (
	"sync"

	"github.com/wippyai/autoref/ptr"
)

// store is the in-memory handle table backing an Arena. Each live entry
// holds the table's own strong reference to its block; freeing a handle
// releases that reference, and the block survives until every retained
// owner has released theirs as well.
type store struct {
	entries  []entry
	freeList []Handle
	mu       sync.RWMutex
	closed   bool
}

type entry struct {
	ref   *ptr.Ptr[Block]
	size  int
	valid bool
}

func newStore() *store {
	return &store{
		entries:  make([]entry, 0, 64),
		freeList: make([]Handle, 0, 16),
	}
}

// create allocates a zeroed block of size bytes and registers it.
func (s *store) create(size int) (Handle, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, false
	}

	e := entry{
		ref:   ptr.Adopt(&Block{data: make([]byte, size)}),
		size:  size,
		valid: true,
	}

	if len(s.freeList) > 0 {
		handle := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		s.entries[handle-1] = e
		return handle, true
	}

	s.entries = append(s.entries, e)
	return Handle(len(s.entries)), true
}

// get returns a new owned reference to a live handle's block and its
// size. The clone is taken while the lock is held, so it can never
// observe the table's reference mid-release. The caller must release
// the returned reference.
func (s *store) get(handle Handle) (*ptr.Ptr[Block], int, bool) {
	if handle == 0 {
		return nil, 0, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := handle - 1
	if int(idx) >= len(s.entries) {
		return nil, 0, false
	}

	e := s.entries[idx]
	if !e.valid {
		return nil, 0, false
	}
	return e.ref.Clone(), e.size, true
}

// drop removes a handle and releases the table's strong reference
// under the write lock, excluding any concurrent get. Returns the
// allocation size. Returns (0, false) if the handle is not live.
func (s *store) drop(handle Handle) (int, bool) {
	if handle == 0 {
		return 0, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := handle - 1
	if int(idx) >= len(s.entries) {
		return 0, false
	}

	e := &s.entries[idx]
	if !e.valid {
		return 0, false
	}

	ref := e.ref
	size := e.size
	e.valid = false
	e.ref = nil
	e.size = 0
	s.freeList = append(s.freeList, handle)

	ref.Release()
	return size, true
}

// len counts live handles.
func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// each iterates over live handles.
func (s *store) each(fn func(Handle, int, *ptr.Ptr[Block]) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i, e := range s.entries {
		if e.valid {
			if !fn(Handle(i+1), e.size, e.ref) {
				break
			}
		}
	}
}

// close drains the table and hands every remaining entry to fn. The
// store accepts no operations afterwards.
func (s *store) close(fn func(Handle, *ptr.Ptr[Block])) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	for i := range s.entries {
		if s.entries[i].valid {
			fn(Handle(i+1), s.entries[i].ref)
			s.entries[i].valid = false
			s.entries[i].ref = nil
		}
	}

	s.entries = nil
	s.freeList = nil
}
