package hashgrid

import (
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// pointSlot is one stored object plus the arena index of its back-reference,
// so a slot displaced by swap removal can be traced to the record that must
// be re-pointed.
type pointSlot[T any] struct {
	item T
	ref  int32
}

// pointRef records the cell and slot currently holding a live object.
type pointRef struct {
	cell CellIndex
	slot int32
}

// PointMap is a spatial hash storing each object in exactly one cell, chosen
// by position. Insert returns a Handle for O(1) removal and relocation.
// Cells are created on first use and never freed individually; Reset empties
// the map but keeps all storage.
//
// Iteration visits cells in ascending CellIndex order and objects within a
// cell in slot order, so a walk is fully determined by the operation history
// and never by Go map iteration order.
type PointMap[T any] struct {
	cellSize    int
	invCellSize float64
	cells       map[CellIndex]*bucket[pointSlot[T]]
	order       []CellIndex // every cell ever created; sorted unless dirty
	dirty       bool
	refs        pool[pointRef]
}

// NewPointMap returns an empty map with the given cell side length.
// Panics if cellSize is not positive.
func NewPointMap[T any](cellSize int) *PointMap[T] {
	checkCellSize(cellSize)
	return &PointMap[T]{
		cellSize:    cellSize,
		invCellSize: 1.0 / float64(cellSize),
		cells:       make(map[CellIndex]*bucket[pointSlot[T]]),
	}
}

// CellSize returns the cell side length configured at construction.
func (m *PointMap[T]) CellSize() int { return m.cellSize }

// Len returns the number of stored objects.
func (m *PointMap[T]) Len() int { return m.refs.live }

// Reserve preallocates back-reference storage for about n objects, cutting
// allocation churn while the map first fills.
func (m *PointMap[T]) Reserve(n int) {
	m.refs.reserve(n)
}

// Insert stores item at pos and returns the handle that removes it. The same
// logical object must not be inserted twice. Invalidates live iterators.
func (m *PointMap[T]) Insert(item T, pos r2.Vec) Handle {
	ci := cellAt(pos, m.invCellSize)
	h := m.refs.alloc()
	slot := m.cell(ci).add(pointSlot[T]{item: item, ref: h.idx})
	*m.refs.at(h.idx) = pointRef{cell: ci, slot: slot}
	return h
}

// cell returns the bucket for ci, creating it on first use.
func (m *PointMap[T]) cell(ci CellIndex) *bucket[pointSlot[T]] {
	b := m.cells[ci]
	if b == nil {
		b = &bucket[pointSlot[T]]{}
		m.cells[ci] = b
		m.order = append(m.order, ci)
		m.dirty = true
	}
	return b
}

// Remove deletes the object behind h. Panics if h is stale or foreign.
// Handles of other objects stay valid: when swap removal moves a different
// object into the vacated slot, that object's back-reference is rewritten
// before Remove returns. Invalidates live iterators.
func (m *PointMap[T]) Remove(h Handle) {
	r, ok := m.refs.get(h)
	if !ok {
		panic("hashgrid: stale handle")
	}
	m.removeAt(*r)
	m.refs.release(h)
}

// removeAt swap-removes one slot and re-points the back-reference of
// whatever object got moved into the vacancy.
func (m *PointMap[T]) removeAt(r pointRef) {
	if moved, ok := m.cells[r.cell].swapRemove(r.slot); ok {
		m.refs.at(moved.ref).slot = r.slot
	}
}

// Relocate moves the object behind h to pos, keeping h valid. Moves within
// the object's current cell are free. Panics if h is stale or foreign.
// Invalidates live iterators.
func (m *PointMap[T]) Relocate(h Handle, pos r2.Vec) {
	r, ok := m.refs.get(h)
	if !ok {
		panic("hashgrid: stale handle")
	}
	ci := cellAt(pos, m.invCellSize)
	if ci == r.cell {
		return
	}
	item := m.cells[r.cell].slots[r.slot].item
	m.removeAt(*r)
	slot := m.cell(ci).add(pointSlot[T]{item: item, ref: h.idx})
	*r = pointRef{cell: ci, slot: slot}
}

// Get returns a pointer to the object behind h, valid until the map's next
// mutation, or false when h is stale.
func (m *PointMap[T]) Get(h Handle) (*T, bool) {
	r, ok := m.refs.get(h)
	if !ok {
		return nil, false
	}
	return &m.cells[r.cell].slots[r.slot].item, true
}

// CellOf returns the cell currently holding the object behind h, or false
// when h is stale.
func (m *PointMap[T]) CellOf(h Handle) (CellIndex, bool) {
	r, ok := m.refs.get(h)
	if !ok {
		return CellIndex{}, false
	}
	return r.cell, true
}

// Reset empties the map while keeping every allocated cell, slot backing
// array, and pooled back-reference record. All outstanding handles die.
func (m *PointMap[T]) Reset() {
	for _, b := range m.cells {
		b.reset()
	}
	m.refs.reset()
}

// Stats returns occupancy counters for the map's cells.
func (m *PointMap[T]) Stats() Stats {
	s := Stats{Cells: len(m.cells), Items: m.refs.live}
	for _, b := range m.cells {
		if n := len(b.slots); n > 0 {
			s.Occupied++
			if n > s.MaxPerCell {
				s.MaxPerCell = n
			}
		}
	}
	return s
}

// Iter returns an iterator over every stored object. Iterators are
// single-pass, forward-only, and invalidated by any mutation of the map
// performed after their creation; using an invalidated iterator is
// undefined. Creating an iterator sorts the cell list if inserts disturbed
// it, so several iterators may be live at once as long as nothing mutates.
func (m *PointMap[T]) Iter() PointIter[T] {
	return m.IterStride(0, 0)
}

// IterStride returns an iterator that starts at position offset in the
// sorted cell list and skips stride whole cells between visited cells.
// Offset 0 with stride 0 visits everything; N consumers using offset i and
// stride N-1 partition the cells exactly. Panics on negative offset or
// stride.
func (m *PointMap[T]) IterStride(offset, stride int) PointIter[T] {
	if offset < 0 || stride < 0 {
		panic("hashgrid: negative offset or stride")
	}
	m.sortCells()
	return PointIter[T]{m: m, cellPos: offset, step: stride + 1, slot: -1}
}

func (m *PointMap[T]) sortCells() {
	if m.dirty {
		slices.SortFunc(m.order, CellIndex.Compare)
		m.dirty = false
	}
}

// PointIter is a single-pass iterator over a PointMap. The zero value is
// not usable; obtain one from Iter or IterStride.
type PointIter[T any] struct {
	m       *PointMap[T]
	b       *bucket[pointSlot[T]]
	cellPos int
	step    int
	slot    int32
}

// Next advances to the next object, returning false when the walk is done.
func (it *PointIter[T]) Next() bool {
	for {
		if it.b == nil {
			if it.cellPos >= len(it.m.order) {
				return false
			}
			it.b = it.m.cells[it.m.order[it.cellPos]]
			it.slot = -1
		}
		it.slot++
		if int(it.slot) < len(it.b.slots) {
			return true
		}
		it.b = nil
		it.cellPos += it.step
	}
}

// Item returns a mutable reference to the current object. Only valid after
// a Next call returned true, and only until the map's next mutation.
func (it *PointIter[T]) Item() *T {
	return &it.b.slots[it.slot].item
}

// Cell returns the current object's cell.
func (it *PointIter[T]) Cell() CellIndex {
	return it.m.order[it.cellPos]
}
