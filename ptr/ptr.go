package ptr

import (
	"sync/atomic"
	"unsafe"

	"github.com/wippyai/autoref"
)

// state is the packed (control block, mode, view) unit a Ptr holds.
// It is immutable once published; a Ptr swaps whole *state values, so
// a concurrent reader can never observe a control block paired with
// the wrong mode flag.
type state struct {
	ctrl *control
	view unsafe.Pointer // typed object pointer this Ptr resolves to
	weak bool
}

// Ptr is a thread-safe, reference-counted smart pointer. It is either
// Null, a strong (owning) reference, or an auto-weak reference that can
// be promoted back to strong while the value is alive.
//
// The zero value is a Null pointer and is ready to use, so Ptr works as
// a struct field. Ptr must not be copied by value (go vet flags it);
// share *Ptr and use Clone to create new references.
type Ptr[T any] struct {
	st atomic.Pointer[state]
}

// Adopt wraps a raw pointer in a new strong Ptr with its own control
// block. A nil raw pointer yields a Null Ptr with no control block.
func Adopt[T any](v *T) *Ptr[T] {
	return AdoptWithFinalizer(v, nil)
}

// AdoptWithFinalizer is Adopt with a hook that runs exactly once, when
// the last strong reference is released, after the value's Drop method
// if it implements autoref.Dropper.
func AdoptWithFinalizer[T any](v *T, fin func(*T)) *Ptr[T] {
	p := &Ptr[T]{}
	if v == nil {
		return p
	}
	raw := unsafe.Pointer(v)
	ctrl := newControl(raw, dropHook(fin))
	p.st.Store(&state{ctrl: ctrl, view: raw})
	return p
}

// New constructs a value and wraps it in one strong Ptr.
func New[T any](v T) *Ptr[T] {
	return Adopt(&v)
}

// NewWithFinalizer is New with a last-strong-release hook.
func NewWithFinalizer[T any](v T, fin func(*T)) *Ptr[T] {
	return AdoptWithFinalizer(&v, fin)
}

func dropHook[T any](fin func(*T)) func(unsafe.Pointer) {
	return func(raw unsafe.Pointer) {
		v := (*T)(raw)
		if d, ok := any(v).(autoref.Dropper); ok {
			d.Drop()
		}
		if fin != nil {
			fin(v)
		}
	}
}

// Clone returns a new reference to the same value, in the same mode as
// p. Cloning a Null Ptr yields a Null Ptr.
func (p *Ptr[T]) Clone() *Ptr[T] {
	q := &Ptr[T]{}
	s := p.st.Load()
	if s == nil {
		return q
	}
	if s.weak {
		s.ctrl.addWeak()
	} else {
		s.ctrl.addStrong()
	}
	q.st.Store(s)
	return q
}

// Take steals p's reference, leaving p Null. The counts are unchanged;
// ownership moves to the returned Ptr.
func (p *Ptr[T]) Take() *Ptr[T] {
	q := &Ptr[T]{}
	if s := p.st.Swap(nil); s != nil {
		q.st.Store(s)
	}
	return q
}

// Assign replaces p's reference with a new reference to other's value,
// releasing whatever p held. Construct-then-swap order keeps p in a
// consistent state even when other aliases p.
func (p *Ptr[T]) Assign(other *Ptr[T]) {
	tmp := other.Clone()
	if s := p.st.Swap(tmp.st.Swap(nil)); s != nil {
		releaseState(s)
	}
}

// TakeFrom releases p's reference and steals other's, leaving other
// Null. Taking from itself is a no-op.
func (p *Ptr[T]) TakeFrom(other *Ptr[T]) {
	if p == other {
		return
	}
	if s := p.st.Swap(other.st.Swap(nil)); s != nil {
		releaseState(s)
	}
}

// Ref releases p's current reference and attaches p as an auto-weak
// reference to other's value. This is the cycle-breaking operation: a
// back edge converted with Ref no longer owns its target, so the
// strong reference graph stays acyclic and ordinary counting reclaims
// it. Calling Ref on itself is a no-op; if other is Null or itself
// auto-weak, p is left Null.
func (p *Ptr[T]) Ref(other *Ptr[T]) {
	if p == other {
		return
	}
	p.Release()
	s := other.st.Load()
	if s == nil || s.weak {
		return
	}
	s.ctrl.addWeak()
	p.st.Store(&state{ctrl: s.ctrl, view: s.view, weak: true})
}

// Lock attempts to promote an auto-weak reference to a strong one.
// It returns a Null Ptr if the value has already been dropped; the
// promotion can never resurrect a dead value. On a strong or Null Ptr
// it behaves as Clone.
func (p *Ptr[T]) Lock() *Ptr[T] {
	s := p.st.Load()
	if s == nil || !s.weak {
		return p.Clone()
	}
	if !s.ctrl.tryAddStrong() {
		return &Ptr[T]{}
	}
	q := &Ptr[T]{}
	q.st.Store(&state{ctrl: s.ctrl, view: s.view})
	return q
}

// Safe builds an auto-weak reference from a strong one. It returns a
// Null Ptr if strong is Null or already auto-weak.
func Safe[T any](strong *Ptr[T]) *Ptr[T] {
	s := strong.st.Load()
	if s == nil || s.weak {
		return &Ptr[T]{}
	}
	s.ctrl.addWeak()
	q := &Ptr[T]{}
	q.st.Store(&state{ctrl: s.ctrl, view: s.view, weak: true})
	return q
}

// Alias returns a Ptr to a part of owner's value (an embedded field,
// say) that shares owner's control block, in owner's mode. The whole
// value stays alive as long as the alias does. sel must be a pure
// projection; a nil projection yields a Null Ptr with no count taken.
func Alias[U, T any](owner *Ptr[T], sel func(*T) *U) *Ptr[U] {
	q := &Ptr[U]{}
	s := owner.st.Load()
	if s == nil {
		return q
	}
	v := sel((*T)(s.view))
	if v == nil {
		return q
	}
	if s.weak {
		s.ctrl.addWeak()
	} else {
		s.ctrl.addStrong()
	}
	q.st.Store(&state{ctrl: s.ctrl, view: unsafe.Pointer(v), weak: s.weak})
	return q
}

// Get returns the raw object pointer, or nil. Only a strong reference
// to a live value grants access; auto-weak references always get nil
// and must be promoted with Lock first.
func (p *Ptr[T]) Get() *T {
	s := p.st.Load()
	if s == nil || s.weak {
		return nil
	}
	if s.ctrl.object() == nil {
		return nil
	}
	return (*T)(s.view)
}

// Deref returns the managed value's pointer. It panics on a Null or
// auto-weak Ptr; that is a contract violation, not a recoverable
// condition.
func (p *Ptr[T]) Deref() *T {
	s := p.st.Load()
	if s == nil || s.weak {
		panic("autoref: dereference through null or auto-weak pointer")
	}
	return (*T)(s.view)
}

// Expired reports whether the value is gone: no control block, or no
// strong references left.
func (p *Ptr[T]) Expired() bool {
	s := p.st.Load()
	return s == nil || !s.ctrl.alive()
}

// Valid reports whether p currently resolves to a live value: for an
// auto-weak reference, that the value has not been dropped; for a
// strong reference, that it holds one at all.
func (p *Ptr[T]) Valid() bool {
	s := p.st.Load()
	if s == nil {
		return false
	}
	if s.weak {
		return s.ctrl.alive()
	}
	return s.ctrl.object() != nil
}

// RefCount returns the current strong count, 0 for a Null Ptr.
func (p *Ptr[T]) RefCount() uint64 {
	if s := p.st.Load(); s != nil {
		return s.ctrl.strongCount()
	}
	return 0
}

// WeakCount returns the current auto-weak count, 0 for a Null Ptr.
func (p *Ptr[T]) WeakCount() uint64 {
	if s := p.st.Load(); s != nil {
		return s.ctrl.weakCount()
	}
	return 0
}

// Unique reports whether p is the only strong reference.
func (p *Ptr[T]) Unique() bool {
	return p.RefCount() == 1
}

// IsWeak reports whether p holds an auto-weak reference.
func (p *Ptr[T]) IsWeak() bool {
	s := p.st.Load()
	return s != nil && s.weak
}

// Release drops whatever reference p holds and leaves it Null.
// Releasing a Null Ptr is a no-op. Dropping the last strong reference
// runs the value's drop hook exactly once.
func (p *Ptr[T]) Release() {
	if s := p.st.Swap(nil); s != nil {
		releaseState(s)
	}
}

// Reset is an alias for Release.
func (p *Ptr[T]) Reset() {
	p.Release()
}

// ResetTo releases p's reference and adopts a fresh raw pointer in its
// place.
func (p *Ptr[T]) ResetTo(v *T) {
	tmp := Adopt(v)
	p.SwapWith(tmp)
	tmp.Release()
}

// SwapWith exchanges the references held by p and other. Each Ptr's
// (control block, mode) pair moves as one packed unit, so a concurrent
// reader of either Ptr sees a consistent pre- or post-swap state,
// never a mixture.
func (p *Ptr[T]) SwapWith(other *Ptr[T]) {
	if p == other {
		return
	}
	p.st.Store(other.st.Swap(p.st.Load()))
}

// Equal reports whether p and other resolve to the same object
// identity. Auto-weak references compare by the object they point at,
// whether or not it is still alive; two Null Ptrs are equal.
func (p *Ptr[T]) Equal(other *Ptr[T]) bool {
	return p.identity() == other.identity()
}

func (p *Ptr[T]) identity() unsafe.Pointer {
	if s := p.st.Load(); s != nil {
		return s.view
	}
	return nil
}

func releaseState(s *state) {
	if s.weak {
		s.ctrl.releaseWeak()
	} else {
		s.ctrl.releaseStrong()
	}
}
