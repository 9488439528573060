// Package hashgrid implements a fixed-grid spatial hash for 2D proximity
// queries over many movable objects.
//
// World space is partitioned into square cells of a fixed side length.
// Objects live in contiguous per-cell slots with O(1) swap removal, and every
// insert returns an opaque Handle used for later removal. PointMap stores
// each object in exactly one cell, keyed by position; AreaMap stores one copy
// per cell touched by an axis-aligned box or a polygon outline. PointMap
// iteration visits cells in ascending order, and line queries enumerate cells
// with a fixed-point DDA, so both are bit-reproducible across platforms and
// runs.
//
// Structures are single-threaded: callers must serialize all access.
package hashgrid

import (
	"cmp"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// CellIndex identifies one square grid cell by its integer coordinates. Two
// positions share a CellIndex iff they fall inside the same cell.
type CellIndex struct {
	X, Y int32
}

// CellAt returns the cell containing pos for the given cell side length.
// The division floors, so negative coordinates land in the cell they fall in
// rather than being truncated toward cell zero. cellSize must be positive.
func CellAt(pos r2.Vec, cellSize int) CellIndex {
	checkCellSize(cellSize)
	return cellAt(pos, 1.0/float64(cellSize))
}

func cellAt(pos r2.Vec, invCellSize float64) CellIndex {
	return CellIndex{
		X: int32(math.Floor(pos.X * invCellSize)),
		Y: int32(math.Floor(pos.Y * invCellSize)),
	}
}

// Compare orders cells by Y, then X, returning -1, 0 or +1. The ordering is
// only used to establish a canonical traversal order; it says nothing about
// spatial adjacency.
func (c CellIndex) Compare(o CellIndex) int {
	if d := cmp.Compare(c.Y, o.Y); d != 0 {
		return d
	}
	return cmp.Compare(c.X, o.X)
}

func checkCellSize(cellSize int) {
	if cellSize <= 0 {
		panic("hashgrid: cellSize must be positive")
	}
}

// Stats summarizes cell occupancy of a PointMap or AreaMap. Cells counts
// every cell allocated so far; cells are never freed individually and
// survive Reset, so it only grows over a structure's lifetime. Items counts
// stored entries, which for an AreaMap means per-cell copies rather than
// logical objects.
type Stats struct {
	Cells      int
	Occupied   int
	Items      int
	MaxPerCell int
}
