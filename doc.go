// Package autoref provides lock-free, intrusively reference-counted
// smart pointers with promotable auto-weak references.
//
// The library tracks a single heap value through a shared control block
// holding a strong count and a weak count. Strong references own the
// value; auto-weak references do not keep it alive but can be promoted
// back to strong while the value still exists. Converting a reference
// to the auto-weak form is how reference cycles are broken: the
// programmer marks the back edge, the strong reference graph becomes
// acyclic, and ordinary counting reclaims everything. There is no
// cycle-detecting collector.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	autoref/         Root package with the Dropper and Allocator interfaces
//	├── ptr/         Control block and the Ptr[T] smart pointer
//	├── arena/       Handle-table allocation adapter for untyped callers
//	├── errors/      Structured error types for debugging
//	└── cmd/arena/   Interactive arena inspector
//
// # Quick Start
//
// Create a value and share it:
//
//	p := ptr.New(Node{Data: 40})
//	q := p.Clone()          // strong count is now 2
//	defer q.Release()
//	defer p.Release()
//
// Break a cycle with an auto-weak back edge:
//
//	n1 := ptr.New(Node{Data: 40})
//	n2 := ptr.New(Node{Data: 50})
//	n1.Deref().Next.Ref(n2) // auto-weak, does not own n2
//	n2.Deref().Next.Ref(n1) // auto-weak, does not own n1
//	n2.Release()
//	n1.Release()            // both nodes dropped, no leak
//
// Promote an auto-weak reference before use:
//
//	if s := weak.Lock(); s.Valid() {
//		use(s.Deref())
//		s.Release()
//	}
//
// # Concurrency
//
// All control block mutation is performed with atomic instructions and
// bounded compare-and-swap loops; no mutex guards the core. Promotion
// can never resurrect a value whose strong count already reached zero.
//
// # Memory Management
//
// Values are dropped exactly once, when the last strong reference is
// released. Values implementing Dropper get their Drop hook at that
// point. The control block outlives the value while auto-weak holders
// remain, and is retired when the last of either count reaches zero.
package autoref
