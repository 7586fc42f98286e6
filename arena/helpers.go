package arena

import (
	"unsafe"
)

// AllocType allocates one block sized for T. It is the typed
// convenience layer over Malloc with no semantics of its own.
func AllocType[T any](a *Arena) (Handle, error) {
	var zero T
	return a.Malloc(int(unsafe.Sizeof(zero)))
}

// AllocSlice allocates a zeroed block sized for count values of T.
func AllocSlice[T any](a *Arena, count int) (Handle, error) {
	var zero T
	return a.Calloc(count, int(unsafe.Sizeof(zero)))
}
