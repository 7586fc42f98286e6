// Package ptr implements the reference-counted smart pointer and its
// control block.
//
// # Reference Modes
//
// A Ptr is in one of three states:
//
//	Null      - no control block
//	Strong    - owns the value, keeps it alive
//	AutoWeak  - does not own the value, promotable with Lock
//
// and moves between them as:
//
//	Null -> Strong(ctrl)  via Adopt/New
//	*    -> AutoWeak(ctrl-of-other)  via Ref
//	AutoWeak(ctrl) -> Strong(ctrl)  via Lock, only while the value lives
//	*    -> Null  via Release
//
// # Control Block
//
// Every managed value gets one control block with a strong count, a
// weak count, an owning object slot, and a destroyed latch. The value
// is dropped exactly once, on the 1 -> 0 strong transition; the block
// is retired after both counts have independently reached zero, so it
// can outlive the value to answer outstanding auto-weak holders.
//
// # Lock-Freedom
//
// No mutex guards the control block. Increments and decrements are
// single atomic instructions; promotion is a bounded compare-and-swap
// loop that refuses to raise the strong count from zero, which is what
// makes resurrection of a dead value impossible. A Ptr's own
// (control block, mode) pair lives behind one atomically swapped
// pointer, so concurrent copy and swap never observe a torn pair.
//
// # Cycles
//
// Nothing here detects cycles. A cycle is broken by convention: call
// Ref on the chosen back edge so it stops owning its target. With the
// back edge auto-weak, the strong reference graph is acyclic and
// normal counting reclaims both sides.
package ptr
