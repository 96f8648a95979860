package swf

import "testing"

func TestHeapAllocResolve(t *testing.T) {
	h := NewHeap()
	obj := NewObject()
	handle := h.Alloc(obj, nil)
	got, ok := h.Resolve(handle)
	if !ok || got != obj {
		t.Fatalf("Resolve(handle) = (%v, %v), want (%v, true)", got, ok, obj)
	}
}

func TestHeapCollectFreesUnreachable(t *testing.T) {
	h := NewHeap()
	root := NewObject()
	rootHandle := h.Alloc(root, nil)
	garbage := NewObject()
	garbageHandle := h.Alloc(garbage, nil)

	h.Collect([]*Object{root})

	if _, ok := h.Resolve(rootHandle); !ok {
		t.Fatal("root object should survive a collection rooted at it")
	}
	if _, ok := h.Resolve(garbageHandle); ok {
		t.Fatal("unreachable object should not survive a collection")
	}
}

func TestHeapCollectKeepsCycleReachableFromRoot(t *testing.T) {
	h := NewHeap()
	a := NewObject()
	b := NewObject()
	a.Set("b", ObjectValue(b))
	b.Set("a", ObjectValue(a))
	aHandle := h.Alloc(a, nil)
	bHandle := h.Alloc(b, nil)

	h.Collect([]*Object{a})

	if _, ok := h.Resolve(aHandle); !ok {
		t.Fatal("a should survive: directly rooted")
	}
	if _, ok := h.Resolve(bHandle); !ok {
		t.Fatal("b should survive: reachable from a via a cycle")
	}
}

func TestHeapCollectBreaksUnreachableCycle(t *testing.T) {
	h := NewHeap()
	a := NewObject()
	b := NewObject()
	a.Set("b", ObjectValue(b))
	b.Set("a", ObjectValue(a))
	aHandle := h.Alloc(a, nil)
	bHandle := h.Alloc(b, nil)

	h.Collect(nil) // no roots: the a<->b cycle is unreachable garbage

	if _, ok := h.Resolve(aHandle); ok {
		t.Fatal("a<->b cycle should be collected when nothing roots it")
	}
	if _, ok := h.Resolve(bHandle); ok {
		t.Fatal("a<->b cycle should be collected when nothing roots it")
	}
}

func TestHeapStaleHandleFailsAfterSlotReuse(t *testing.T) {
	h := NewHeap()
	garbage := NewObject()
	staleHandle := h.Alloc(garbage, nil)

	h.Collect(nil) // frees the slot, bumps its generation

	if _, ok := h.Resolve(staleHandle); ok {
		t.Fatal("a handle to a freed slot must fail Resolve even before the slot is reused")
	}

	// Allocate again; the freed slot is likely reused, but the new handle's
	// generation must differ from the stale one regardless.
	replacement := NewObject()
	newHandle := h.Alloc(replacement, nil)
	if newHandle.Index == staleHandle.Index && newHandle.Gen == staleHandle.Gen {
		t.Fatal("a reused slot must bump its generation so old handles can't alias the new occupant")
	}
}

func TestHeapThresholdGrowsWhenStillOverHalfFull(t *testing.T) {
	h := NewHeap()
	initial := h.threshold
	roots := make([]*Object, 0, initial)
	for i := 0; i < initial+1; i++ {
		o := NewObject()
		roots = append(roots, o)
		h.Alloc(o, roots)
	}
	// A collection triggers at the (initial+1)th allocation with exactly
	// `initial` objects live and rooted; the threshold must become
	// floor(1.5*initial), not some other scale-up of its prior value.
	want := initial * 3 / 2
	if h.threshold != want {
		t.Fatalf("threshold = %v, want %v (floor(1.5 * %v live))", h.threshold, want, initial)
	}
}

func TestHeapThresholdNeverDropsBelowInitialMinimum(t *testing.T) {
	h := NewHeap()
	garbage := NewObject()
	h.Alloc(garbage, nil)
	h.Collect(nil) // live count drops to 0; floor(1.5*0) must still floor at the initial minimum
	if h.threshold != initialGCThreshold {
		t.Fatalf("threshold = %v, want the initial minimum %v", h.threshold, initialGCThreshold)
	}
}
