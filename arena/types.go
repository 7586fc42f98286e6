package arena

import (
	"github.com/wippyai/autoref"
)

// Handle is an opaque reference to an allocation in an arena.
// Handle 0 is reserved and always invalid.
type Handle = autoref.Handle

// Block is a managed byte allocation. The backing slice stays valid
// until every owning reference to the block has been released.
type Block struct {
	data []byte
}

// Bytes returns the backing slice.
func (b *Block) Bytes() []byte {
	return b.data
}

// Size returns the allocation size in bytes.
func (b *Block) Size() int {
	return len(b.data)
}

// Event types for allocation lifecycle notifications.
type EventType uint8

const (
	EventAlloc EventType = iota
	EventFree
	EventRetain
)

// Event represents an allocation lifecycle event.
type Event struct {
	Handle Handle
	Size   int
	Type   EventType
}

// Observer receives notifications about allocation lifecycle events.
type Observer interface {
	OnArenaEvent(Event)
}
