// Package arena provides the allocation adapter for untyped callers.
//
// Callers that cannot hold a typed smart pointer address memory by
// opaque handle instead. The arena maps each handle to a byte block
// owned by a strong reference the table holds on the caller's behalf:
//
//	a := arena.New()
//
//	// malloc-style
//	h, err := a.Malloc(64)
//
//	// calloc-style, zeroed, overflow-checked
//	h, err := a.Calloc(16, 8)
//
//	// the raw bytes while the handle is live
//	buf, ok := a.Bytes(h)
//
//	// explicit free releases the table's reference
//	a.Free(h)
//
// # Lifetime Contract
//
// A block stays valid until every owner created on top of it has been
// released. Free drops only the arena's own reference; a caller that
// needs the block past the Free takes its own owner first:
//
//	owner, _ := a.Retain(h)
//	a.Free(h)              // handle dead, block still alive
//	use(owner.Deref().Bytes())
//	owner.Release()        // now the block is deallocated
//
// # Typed Helpers
//
// AllocType and AllocSlice are ordinary generic functions sizing a
// block for a Go type. They carry no independent semantics.
//
// # Observers
//
// Subscribe to watch allocation traffic:
//
//	a.Subscribe(arena.NewLogObserver(logger))
//
// # Shutdown
//
// Close frees every live handle and reports blocks still retained by
// outside owners as an aggregate error; such blocks are deallocated
// when their owners release them.
package arena
