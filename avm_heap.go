// avm_heap.go - object heap and mark-and-sweep collector (component C7)
//
// The original intrusive-pointer-list heap is replaced, per the
// architectural redesign, by an arena of slots addressed through
// generational handles: a dangling reference to a freed slot is
// detectable (generation mismatch) instead of being a live pointer to
// reused memory, which is the failure mode the redesign specifically
// targets.

package swf

// initialGCThreshold is the floor the collection threshold never drops
// below, regardless of how small the live set gets.
const initialGCThreshold = 256

// Handle is a weak, generation-checked reference into a Heap.
type Handle struct {
	Index uint32
	Gen   uint32
}

type heapSlot struct {
	obj    *Object
	gen    uint32
	marked bool
	free   bool
}

// Heap owns every AVM1 object allocated during script execution: plain
// objects, arrays, string wrappers and function closures all live here so
// the collector can reason about all of them uniformly.
type Heap struct {
	slots     []heapSlot
	freeList  []uint32
	liveCount int
	threshold int // GC runs once liveCount exceeds threshold; recomputed each collection as floor(1.5*live), floored at initialGCThreshold
}

// NewHeap returns an empty heap with an initial collection threshold.
func NewHeap() *Heap {
	return &Heap{threshold: initialGCThreshold}
}

// Alloc installs obj in the heap and returns a handle to it, running a
// collection first if the live count has crossed the current threshold.
func (h *Heap) Alloc(obj *Object, roots []*Object) Handle {
	if h.liveCount >= h.threshold {
		h.Collect(roots)
	}
	var idx uint32
	if n := len(h.freeList); n > 0 {
		idx = h.freeList[n-1]
		h.freeList = h.freeList[:n-1]
		h.slots[idx].obj = obj
		h.slots[idx].free = false
	} else {
		idx = uint32(len(h.slots))
		h.slots = append(h.slots, heapSlot{obj: obj})
	}
	obj.handle = Handle{Index: idx, Gen: h.slots[idx].gen}
	h.liveCount++
	return obj.handle
}

// Resolve dereferences a handle, reporting false if the slot has since
// been freed and reused (generation mismatch) or freed and left empty.
func (h *Heap) Resolve(handle Handle) (*Object, bool) {
	if int(handle.Index) >= len(h.slots) {
		return nil, false
	}
	s := h.slots[handle.Index]
	if s.free || s.gen != handle.Gen {
		return nil, false
	}
	return s.obj, true
}

// Collect runs a mark phase from the caller's roots (Player.gcRoots
// passes the global object and every clip context's scope chain, This and
// operand stack; an allocation inside avm_interp.go passes only the
// executing context's) followed by a sweep that frees every
// unmarked slot and bumps its generation so stale handles fail Resolve.
func (h *Heap) Collect(roots []*Object) {
	for i := range h.slots {
		h.slots[i].marked = false
	}
	visited := make(map[*Object]bool)
	for _, r := range roots {
		markObject(r, visited)
	}
	h.liveCount = 0
	for i := range h.slots {
		if h.slots[i].free {
			continue
		}
		if visited[h.slots[i].obj] {
			h.slots[i].marked = true
			h.liveCount++
		} else {
			h.slots[i].obj = nil
			h.slots[i].free = true
			h.slots[i].gen++
			h.freeList = append(h.freeList, uint32(i))
		}
	}
	// The threshold strictly tracks live count * 1.5 after every
	// collection, not a conditional scale-up of its prior value, floored
	// at initialGCThreshold so a near-empty heap doesn't collect on
	// every single allocation.
	h.threshold = h.liveCount * 3 / 2
	if h.threshold < initialGCThreshold {
		h.threshold = initialGCThreshold
	}
}

func markObject(o *Object, visited map[*Object]bool) {
	if o == nil || visited[o] {
		return
	}
	visited[o] = true
	if o.Prototype != nil {
		markObject(o.Prototype, visited)
	}
	for _, v := range o.Properties {
		if v.Kind == ValueObject && v.Obj != nil {
			markObject(v.Obj, visited)
		}
	}
	for _, v := range o.Elements {
		if v.Kind == ValueObject && v.Obj != nil {
			markObject(v.Obj, visited)
		}
	}
	if o.Closure != nil {
		for _, scope := range o.Closure.ScopeChain {
			markObject(scope, visited)
		}
	}
}
