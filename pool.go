package hashgrid

import "slices"

// Handle is the opaque capability returned by inserts and consumed by
// removals. Handles are generational: once the object is removed, or the
// structure reset, the handle is dead. Mutating calls panic on a dead
// handle; lookups report absence. The zero Handle is never live.
type Handle struct {
	idx int32
	gen uint32
}

// pool is a free-list slot arena for back-reference records. Slots keep
// their record storage across free/alloc cycles, so the per-frame
// remove/reinsert workload settles to zero allocation, and each slot carries
// a generation counter that makes stale handles detectable instead of
// undefined.
type pool[R any] struct {
	slots []poolSlot[R]
	free  []int32
	live  int
}

type poolSlot[R any] struct {
	gen  uint32
	live bool
	rec  R
}

// alloc reserves a slot and returns its handle. A reused slot's record keeps
// whatever state it held when freed; the caller reinitializes it through at.
func (p *pool[R]) alloc() Handle {
	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		p.slots[idx].live = true
		p.live++
		return Handle{idx: idx, gen: p.slots[idx].gen}
	}
	p.slots = append(p.slots, poolSlot[R]{gen: 1, live: true})
	p.live++
	return Handle{idx: int32(len(p.slots) - 1), gen: 1}
}

// get resolves a handle to its record, or reports false for a handle that is
// stale, foreign, or zero.
func (p *pool[R]) get(h Handle) (*R, bool) {
	if h.idx < 0 || int(h.idx) >= len(p.slots) {
		return nil, false
	}
	s := &p.slots[h.idx]
	if !s.live || s.gen != h.gen {
		return nil, false
	}
	return &s.rec, true
}

// at returns the record at a raw slot index with no liveness check. Only
// bookkeeping that obtained the index from a live slot may use it.
func (p *pool[R]) at(idx int32) *R {
	return &p.slots[idx].rec
}

// release frees the handle's slot and bumps its generation, killing the
// handle and every copy of it.
func (p *pool[R]) release(h Handle) {
	s := &p.slots[h.idx]
	s.live = false
	s.gen++
	p.live--
	p.free = append(p.free, h.idx)
}

// reset frees every slot at once, keeping record storage and capacity.
func (p *pool[R]) reset() {
	p.free = p.free[:0]
	for i := range p.slots {
		s := &p.slots[i]
		if s.live {
			s.live = false
			s.gen++
		}
		p.free = append(p.free, int32(i))
	}
	p.live = 0
}

// reserve grows the arena's capacity to hold at least n records.
func (p *pool[R]) reserve(n int) {
	if d := n - len(p.slots); d > 0 {
		p.slots = slices.Grow(p.slots, d)
	}
	if d := n - len(p.free); d > 0 {
		p.free = slices.Grow(p.free, d)
	}
}
