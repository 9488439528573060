package hashgrid

import (
	"gonum.org/v1/gonum/spatial/r2"
)

// areaSlot is one stored copy: the object's value, the arena index of its
// back-reference group, and the copy's position inside the group's location
// list so a displacement rewrites exactly one group entry.
type areaSlot[T any] struct {
	item   T
	ref    int32
	refPos int32
}

// cellLoc is one {cell, slot} entry of a back-reference group.
type cellLoc struct {
	cell CellIndex
	slot int32
}

// areaGroup is the back-reference group shared by every copy of one logical
// object. locs keeps its capacity across pool reuse.
type areaGroup struct {
	locs []cellLoc
}

// AreaMap is a spatial hash storing one copy of an object in every cell its
// footprint touches: an axis-aligned box covers the full rectangle of cells,
// a polygon outline covers exactly the cells its edges pass through. All
// copies share one pooled back-reference group, so a single Handle removes
// the whole object regardless of insert shape.
//
// Storage is redundant, so area and line queries yield a logical object once
// per visited cell it occupies. That is expected behavior; callers needing
// set semantics deduplicate on their own object identity.
type AreaMap[T any] struct {
	cellSize    int
	invCellSize float64
	cells       map[CellIndex]*bucket[areaSlot[T]]
	refs        pool[areaGroup]
	seen        map[CellIndex]struct{} // outline dedup scratch, reused across inserts
}

// NewAreaMap returns an empty map with the given cell side length.
// Panics if cellSize is not positive.
func NewAreaMap[T any](cellSize int) *AreaMap[T] {
	checkCellSize(cellSize)
	return &AreaMap[T]{
		cellSize:    cellSize,
		invCellSize: 1.0 / float64(cellSize),
		cells:       make(map[CellIndex]*bucket[areaSlot[T]]),
		seen:        make(map[CellIndex]struct{}),
	}
}

// CellSize returns the cell side length configured at construction.
func (m *AreaMap[T]) CellSize() int { return m.cellSize }

// Len returns the number of live logical objects, not per-cell copies.
func (m *AreaMap[T]) Len() int { return m.refs.live }

// Reserve preallocates group storage for about n objects.
func (m *AreaMap[T]) Reserve(n int) {
	m.refs.reserve(n)
}

// InsertArea stores one copy of item in every cell covered by box and
// returns the handle that removes them all. Panics if box is inverted.
// Invalidates live iterators.
func (m *AreaMap[T]) InsertArea(item T, box r2.Box) Handle {
	rng := rangeOf(box, m.invCellSize)
	h := m.refs.alloc()
	g := m.refs.at(h.idx)
	g.locs = g.locs[:0]
	it := rng.Iter()
	for it.Next() {
		m.addCopy(g, h.idx, it.Cell(), item)
	}
	return h
}

// InsertOutline stores one copy of item in every cell crossed by the closed
// polygon outline through verts, walking each edge including the wrap-around
// edge from the last vertex back to the first. A cell crossed by several
// edges, such as a corner shared by two of them, still gets exactly one
// copy. Empty verts yields a live handle with no copies. Invalidates live
// iterators.
func (m *AreaMap[T]) InsertOutline(item T, verts []r2.Vec) Handle {
	h := m.refs.alloc()
	g := m.refs.at(h.idx)
	g.locs = g.locs[:0]
	clear(m.seen)
	for i := range verts {
		li := newLineIterator(verts[i], verts[(i+1)%len(verts)], m.invCellSize)
		for li.Next() {
			ci := li.Cell()
			if _, dup := m.seen[ci]; dup {
				continue
			}
			m.seen[ci] = struct{}{}
			m.addCopy(g, h.idx, ci, item)
		}
	}
	return h
}

// addCopy appends one copy of item to ci's bucket and records it in g.
func (m *AreaMap[T]) addCopy(g *areaGroup, ref int32, ci CellIndex, item T) {
	slot := m.cell(ci).add(areaSlot[T]{item: item, ref: ref, refPos: int32(len(g.locs))})
	g.locs = append(g.locs, cellLoc{cell: ci, slot: slot})
}

// cell returns the bucket for ci, creating it on first use.
func (m *AreaMap[T]) cell(ci CellIndex) *bucket[areaSlot[T]] {
	b := m.cells[ci]
	if b == nil {
		b = &bucket[areaSlot[T]]{}
		m.cells[ci] = b
	}
	return b
}

// Remove deletes every copy of the object behind h and returns its group
// record to the pool. Panics if h is stale or foreign. Handles of other
// objects stay valid: each copy displaced by a swap removal has its one
// affected group entry rewritten before Remove returns. Invalidates live
// iterators.
func (m *AreaMap[T]) Remove(h Handle) {
	g, ok := m.refs.get(h)
	if !ok {
		panic("hashgrid: stale handle")
	}
	m.removeCopies(g)
	m.refs.release(h)
}

// removeCopies swap-removes every location of a group. A group never holds
// two copies in one cell, so a displaced copy always belongs to some other
// group; only its entry for the affected cell is re-pointed.
func (m *AreaMap[T]) removeCopies(g *areaGroup) {
	for _, loc := range g.locs {
		if moved, ok := m.cells[loc.cell].swapRemove(loc.slot); ok {
			m.refs.at(moved.ref).locs[moved.refPos].slot = loc.slot
		}
	}
	g.locs = g.locs[:0]
}

// Update replaces the stored value of the object behind h and moves its
// footprint to box, preserving the handle. This is the steady-state path for
// objects re-indexed every simulation step as they move. Panics if h is
// stale or foreign, or if box is inverted. Invalidates live iterators.
func (m *AreaMap[T]) Update(h Handle, item T, box r2.Box) {
	g, ok := m.refs.get(h)
	if !ok {
		panic("hashgrid: stale handle")
	}
	rng := rangeOf(box, m.invCellSize)
	m.removeCopies(g)
	it := rng.Iter()
	for it.Next() {
		m.addCopy(g, h.idx, it.Cell(), item)
	}
}

// Cells returns the cells currently occupied by the object behind h, in
// insertion order, or false when h is stale.
func (m *AreaMap[T]) Cells(h Handle) ([]CellIndex, bool) {
	g, ok := m.refs.get(h)
	if !ok {
		return nil, false
	}
	cells := make([]CellIndex, len(g.locs))
	for i, loc := range g.locs {
		cells[i] = loc.cell
	}
	return cells, true
}

// Reset empties the map while keeping every allocated cell, slot backing
// array, and pooled group record with its location-list capacity. All
// outstanding handles die.
func (m *AreaMap[T]) Reset() {
	for _, b := range m.cells {
		b.reset()
	}
	m.refs.reset()
}

// Stats returns occupancy counters for the map's cells. Items counts stored
// copies, so one object may contribute several.
func (m *AreaMap[T]) Stats() Stats {
	s := Stats{Cells: len(m.cells)}
	for _, b := range m.cells {
		n := len(b.slots)
		s.Items += n
		if n > 0 {
			s.Occupied++
			if n > s.MaxPerCell {
				s.MaxPerCell = n
			}
		}
	}
	return s
}

// cellSeq enumerates the cells of a query shape; RangeIter and LineIterator
// both satisfy it.
type cellSeq interface {
	Next() bool
	Cell() CellIndex
}

// IterArea returns a read-only iterator over every copy stored in the cells
// covered by box. Panics if box is inverted. Iterators are single-pass and
// invalidated by any mutation of the map performed after their creation.
func (m *AreaMap[T]) IterArea(box r2.Box) AreaIter[T] {
	it := rangeOf(box, m.invCellSize).Iter()
	return AreaIter[T]{m: m, cells: &it, slot: -1}
}

// IterLine returns a read-only iterator over every copy stored in the cells
// crossed by the segment from start to end, in travel order.
func (m *AreaMap[T]) IterLine(start, end r2.Vec) AreaIter[T] {
	it := newLineIterator(start, end, m.invCellSize)
	return AreaIter[T]{m: m, cells: &it, slot: -1}
}

// CollectArea appends the value of every copy stored in the cells covered by
// box to results and returns the extended slice. Pass the previous call's
// slice back in to avoid reallocating between queries.
func (m *AreaMap[T]) CollectArea(box r2.Box, results []T) []T {
	results = results[:0]
	it := m.IterArea(box)
	for it.Next() {
		results = append(results, it.Item())
	}
	return results
}

// CollectLine is CollectArea over the cells crossed by a segment.
func (m *AreaMap[T]) CollectLine(start, end r2.Vec, results []T) []T {
	results = results[:0]
	it := m.IterLine(start, end)
	for it.Next() {
		results = append(results, it.Item())
	}
	return results
}

// AreaIter is a single-pass read-only iterator over the copies stored in
// every cell a query shape touches. The zero value is not usable; obtain
// one from IterArea or IterLine.
type AreaIter[T any] struct {
	m     *AreaMap[T]
	cells cellSeq
	b     *bucket[areaSlot[T]]
	ci    CellIndex
	slot  int32
}

// Next advances to the next stored copy, returning false once every cell of
// the query shape is exhausted. Cells the map never allocated are skipped.
func (it *AreaIter[T]) Next() bool {
	for {
		if it.b == nil {
			if !it.cells.Next() {
				return false
			}
			it.ci = it.cells.Cell()
			b := it.m.cells[it.ci]
			if b == nil || len(b.slots) == 0 {
				continue
			}
			it.b = b
			it.slot = -1
		}
		it.slot++
		if int(it.slot) < len(it.b.slots) {
			return true
		}
		it.b = nil
	}
}

// Item returns the current copy's value.
func (it *AreaIter[T]) Item() T {
	return it.b.slots[it.slot].item
}

// Cell returns the cell holding the current copy.
func (it *AreaIter[T]) Cell() CellIndex {
	return it.ci
}
