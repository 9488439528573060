package hashgrid

import "gonum.org/v1/gonum/spatial/r2"

// CellRange is the inclusive rectangle of cells between Min and Max.
// A valid range has Min <= Max on both axes.
type CellRange struct {
	Min, Max CellIndex
}

// RangeOf returns the range of cells covered by box for the given cell side
// length. Panics if box is inverted (Min exceeding Max on either axis) or if
// cellSize is not positive.
func RangeOf(box r2.Box, cellSize int) CellRange {
	checkCellSize(cellSize)
	return rangeOf(box, 1.0/float64(cellSize))
}

func rangeOf(box r2.Box, invCellSize float64) CellRange {
	if box.Min.X > box.Max.X || box.Min.Y > box.Max.Y {
		panic("hashgrid: box min exceeds box max")
	}
	return CellRange{
		Min: cellAt(box.Min, invCellSize),
		Max: cellAt(box.Max, invCellSize),
	}
}

// NumCells returns how many cells the range covers.
func (r CellRange) NumCells() int {
	return (int(r.Max.X) - int(r.Min.X) + 1) * (int(r.Max.Y) - int(r.Min.Y) + 1)
}

// Overlap returns the number of cells shared by r and o, or 0 when the
// ranges are disjoint on either axis. An overlap of exactly 1 means the
// ranges meet in a single corner cell; incremental range walks use that to
// decide whether an already visited rectangle accounts for the whole
// intersection.
func (r CellRange) Overlap(o CellRange) int {
	minX := max(r.Min.X, o.Min.X)
	maxX := min(r.Max.X, o.Max.X)
	minY := max(r.Min.Y, o.Min.Y)
	maxY := min(r.Max.Y, o.Max.Y)
	if minX > maxX || minY > maxY {
		return 0
	}
	return (int(maxX) - int(minX) + 1) * (int(maxY) - int(minY) + 1)
}

// Contains reports whether c lies inside the range.
func (r CellRange) Contains(c CellIndex) bool {
	return c.X >= r.Min.X && c.X <= r.Max.X && c.Y >= r.Min.Y && c.Y <= r.Max.Y
}

// Iter returns an iterator over the range's cells in row-major order, X
// varying fastest, both bounds inclusive.
func (r CellRange) Iter() RangeIter {
	return RangeIter{rng: r, x: r.Min.X, y: r.Min.Y}
}

// RangeIter enumerates the cells of a CellRange. It is single-pass: call
// Next until it returns false, reading the current cell with Cell.
type RangeIter struct {
	rng     CellRange
	x, y    int32
	started bool
	done    bool
}

// Next advances to the next cell, returning false once the range is
// exhausted.
func (it *RangeIter) Next() bool {
	if it.done {
		return false
	}
	if !it.started {
		it.started = true
		return true
	}
	if it.x == it.rng.Max.X && it.y == it.rng.Max.Y {
		it.done = true
		return false
	}
	if it.x == it.rng.Max.X {
		it.x = it.rng.Min.X
		it.y++
	} else {
		it.x++
	}
	return true
}

// Cell returns the current cell. Only valid after a Next call returned true.
func (it *RangeIter) Cell() CellIndex {
	return CellIndex{X: it.x, Y: it.y}
}
