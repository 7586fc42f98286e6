package ptr

import (
	"sync"
	"sync/atomic"
	"testing"
	"unsafe"
)

func newTestControl(drops *atomic.Int32) *control {
	v := new(int)
	return newControl(unsafe.Pointer(v), func(unsafe.Pointer) {
		if drops != nil {
			drops.Add(1)
		}
	})
}

func TestControl_InitialState(t *testing.T) {
	c := newTestControl(nil)

	if c.strongCount() != 1 {
		t.Fatalf("Expected strong count 1, got %d", c.strongCount())
	}
	if c.weakCount() != 0 {
		t.Fatalf("Expected weak count 0, got %d", c.weakCount())
	}
	if !c.alive() {
		t.Fatal("Expected fresh control to be alive")
	}
	if c.object() == nil {
		t.Fatal("Expected non-nil object slot")
	}
}

func TestControl_TryAddStrong_NeverResurrects(t *testing.T) {
	var drops atomic.Int32
	c := newTestControl(&drops)

	// Alive: promotion succeeds and bumps the count.
	if !c.tryAddStrong() {
		t.Fatal("tryAddStrong failed on a live control")
	}
	if c.strongCount() != 2 {
		t.Fatalf("Expected strong count 2, got %d", c.strongCount())
	}

	c.releaseStrong()
	c.releaseStrong()

	if drops.Load() != 1 {
		t.Fatalf("Expected 1 drop, got %d", drops.Load())
	}

	// Dead: promotion must refuse, no matter how often it is tried.
	for i := 0; i < 3; i++ {
		if c.tryAddStrong() {
			t.Fatal("tryAddStrong succeeded after strong count reached zero")
		}
	}
}

func TestControl_DropExactlyOnce_Latch(t *testing.T) {
	var drops atomic.Int32
	c := newTestControl(&drops)

	c.destroyObject()
	c.destroyObject()

	if drops.Load() != 1 {
		t.Fatalf("Expected exactly 1 drop, got %d", drops.Load())
	}
	if c.object() != nil {
		t.Fatal("Expected object slot to be nil after destroy")
	}
}

func TestControl_RetireOrder_WeakOutlivesStrong(t *testing.T) {
	var drops atomic.Int32
	c := newTestControl(&drops)
	c.addWeak()

	c.releaseStrong()

	if drops.Load() != 1 {
		t.Fatalf("Expected drop on last strong release, got %d", drops.Load())
	}
	if c.retired.Load() {
		t.Fatal("Control retired while a weak reference is outstanding")
	}

	c.releaseWeak()

	if !c.retired.Load() {
		t.Fatal("Control not retired after last weak release")
	}
}

func TestControl_RetireOrder_StrongOutlivesWeak(t *testing.T) {
	var drops atomic.Int32
	c := newTestControl(&drops)
	c.addWeak()

	c.releaseWeak()

	if c.retired.Load() {
		t.Fatal("Control retired while a strong reference is outstanding")
	}
	if drops.Load() != 0 {
		t.Fatal("Value dropped by a weak release")
	}

	c.releaseStrong()

	if drops.Load() != 1 {
		t.Fatalf("Expected 1 drop, got %d", drops.Load())
	}
	if !c.retired.Load() {
		t.Fatal("Control not retired after last strong release")
	}
}

func TestControl_UnderflowPanics(t *testing.T) {
	c := newTestControl(nil)
	c.releaseStrong()

	defer func() {
		if recover() == nil {
			t.Fatal("Expected panic on strong count underflow")
		}
	}()
	c.releaseStrong()
}

func TestControl_ConcurrentLastRelease_SingleDrop(t *testing.T) {
	const holders = 64

	var drops atomic.Int32
	c := newTestControl(&drops)
	for i := 1; i < holders; i++ {
		c.addStrong()
	}

	var wg sync.WaitGroup
	for i := 0; i < holders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.releaseStrong()
		}()
	}
	wg.Wait()

	if drops.Load() != 1 {
		t.Fatalf("Expected exactly 1 drop, got %d", drops.Load())
	}
	if !c.retired.Load() {
		t.Fatal("Control not retired after all releases")
	}
}

func TestControl_ConcurrentPromoteVsRelease(t *testing.T) {
	const rounds = 200

	for i := 0; i < rounds; i++ {
		var drops atomic.Int32
		c := newTestControl(&drops)

		var wg sync.WaitGroup
		var promoted atomic.Int32

		wg.Add(2)
		go func() {
			defer wg.Done()
			c.releaseStrong()
		}()
		go func() {
			defer wg.Done()
			if c.tryAddStrong() {
				promoted.Add(1)
				c.releaseStrong()
			}
		}()
		wg.Wait()

		// Whether or not the promotion won the race, the value must be
		// dropped exactly once by the time both goroutines are done.
		if drops.Load() != 1 {
			t.Fatalf("round %d: expected 1 drop, got %d (promoted=%d)",
				i, drops.Load(), promoted.Load())
		}
	}
}
