package autoref

// Dropper is optionally implemented by managed values that need cleanup.
// Drop is called exactly once, when the last strong reference to the
// value is released.
type Dropper interface {
	Drop()
}

// Allocator hands out fixed-size byte blocks tracked by opaque handles.
// The returned block stays valid until every owner created on top of
// the handle has been released.
type Allocator interface {
	Malloc(size int) (Handle, error)
	Calloc(count, size int) (Handle, error)
	Free(h Handle) error
}

// Handle is an opaque reference to an allocation in an arena.
// Handle 0 is reserved and always invalid.
type Handle uint32
