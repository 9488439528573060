package hashgrid

import (
	"math/rand"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"
)

func TestCellAt(t *testing.T) {
	require.Equal(t, CellIndex{0, 0}, CellAt(r2.Vec{X: 0, Y: 0}, 1))
	require.Equal(t, CellIndex{0, 0}, CellAt(r2.Vec{X: 0.999, Y: 0.001}, 1))
	require.Equal(t, CellIndex{1, 0}, CellAt(r2.Vec{X: 1, Y: 0}, 1))
	require.Equal(t, CellIndex{3, 7}, CellAt(r2.Vec{X: 3.5, Y: 7.9}, 1))

	// negative coordinates floor toward minus infinity, they do not truncate
	require.Equal(t, CellIndex{-1, -1}, CellAt(r2.Vec{X: -0.5, Y: -0.001}, 1))
	require.Equal(t, CellIndex{-1, 0}, CellAt(r2.Vec{X: -1, Y: 0}, 1))
	require.Equal(t, CellIndex{-2, 1}, CellAt(r2.Vec{X: -1.1, Y: 1.1}, 1))

	// larger cells
	require.Equal(t, CellIndex{0, 0}, CellAt(r2.Vec{X: 15.9, Y: 0}, 16))
	require.Equal(t, CellIndex{1, 2}, CellAt(r2.Vec{X: 16, Y: 32}, 16))
	require.Equal(t, CellIndex{-1, -1}, CellAt(r2.Vec{X: -0.1, Y: -16}, 16))
}

func TestCellAtSharedCell(t *testing.T) {
	// two positions share a CellIndex iff they fall in the same square
	a := CellAt(r2.Vec{X: 4.2, Y: 9.9}, 5)
	b := CellAt(r2.Vec{X: 0.1, Y: 5.0}, 5)
	c := CellAt(r2.Vec{X: 5.0, Y: 9.9}, 5)
	require.Equal(t, a, b)
	require.NotEqual(t, a, c)
}

func TestCellAtDeterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(0))
	for i := 0; i < 10000; i++ {
		pos := r2.Vec{X: (rng.Float64() - 0.5) * 1e6, Y: (rng.Float64() - 0.5) * 1e6}
		size := 1 + rng.Intn(64)
		require.Equal(t, CellAt(pos, size), CellAt(pos, size))
	}
}

func TestCellAtPanicsOnBadCellSize(t *testing.T) {
	require.Panics(t, func() { CellAt(r2.Vec{}, 0) })
	require.Panics(t, func() { CellAt(r2.Vec{}, -3) })
}

func TestCellIndexCompare(t *testing.T) {
	require.Equal(t, 0, CellIndex{2, 3}.Compare(CellIndex{2, 3}))
	require.Equal(t, -1, CellIndex{9, 1}.Compare(CellIndex{0, 2}))
	require.Equal(t, 1, CellIndex{0, 2}.Compare(CellIndex{9, 1}))
	require.Equal(t, -1, CellIndex{1, 5}.Compare(CellIndex{2, 5}))
	require.Equal(t, 1, CellIndex{2, 5}.Compare(CellIndex{1, 5}))
}

func TestCellIndexSortOrder(t *testing.T) {
	cells := []CellIndex{
		{2, 1}, {0, 0}, {1, 1}, {-1, 2}, {1, 0}, {0, 1}, {-1, 0},
	}
	slices.SortFunc(cells, CellIndex.Compare)

	want := []CellIndex{
		{-1, 0}, {0, 0}, {1, 0}, {0, 1}, {1, 1}, {2, 1}, {-1, 2},
	}
	if diff := cmp.Diff(want, cells); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}
}
