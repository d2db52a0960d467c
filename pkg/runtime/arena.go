package runtime

// Header is embedded in every heap object. It records the arena slot and the
// slot's epoch at allocation time so a handle that outlived a sweep can be
// told apart from the slot's next occupant.
type Header struct {
	slot   int
	epoch  uint32
	marked bool
	freed  bool
}

func (h *Header) header() *Header { return h }

// Freed reports whether a collection reclaimed the object.
func (h *Header) Freed() bool { return h.freed }

type heapObject interface {
	comparable
	header() *Header
}

// Arena owns every live object of one kind.
type Arena[T heapObject] struct {
	slots  []T
	epochs []uint32
	free   []int
	live   int
}

// Alloc stores obj in a free slot (or a new one) and stamps its header.
func (a *Arena[T]) Alloc(obj T) T {
	var slot int
	if n := len(a.free); n > 0 {
		slot = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		slot = len(a.slots)
		var zero T
		a.slots = append(a.slots, zero)
		a.epochs = append(a.epochs, 0)
	}
	h := obj.header()
	h.slot = slot
	h.epoch = a.epochs[slot]
	h.marked = false
	h.freed = false
	a.slots[slot] = obj
	a.live++
	return obj
}

// Contains reports whether obj still occupies the slot it was allocated in.
func (a *Arena[T]) Contains(obj T) bool {
	var zero T
	if obj == zero {
		return false
	}
	h := obj.header()
	if h.freed || h.slot < 0 || h.slot >= len(a.slots) {
		return false
	}
	return a.slots[h.slot] == obj && a.epochs[h.slot] == h.epoch
}

// Live returns the number of occupied slots.
func (a *Arena[T]) Live() int {
	return a.live
}

// Sweep frees every unmarked slot and clears the mark on survivors. It returns
// the number of objects freed.
func (a *Arena[T]) Sweep() int {
	var zero T
	freed := 0
	for slot, obj := range a.slots {
		if obj == zero {
			continue
		}
		h := obj.header()
		if h.marked {
			h.marked = false
			continue
		}
		h.freed = true
		a.slots[slot] = zero
		a.epochs[slot]++
		a.free = append(a.free, slot)
		a.live--
		freed++
	}
	return freed
}

// Each calls fn for every live object.
func (a *Arena[T]) Each(fn func(T)) {
	var zero T
	for _, obj := range a.slots {
		if obj != zero {
			fn(obj)
		}
	}
}
