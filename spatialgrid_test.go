package sandbox

import (
	"testing"

	"github.com/akmonengine/sandbox/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(min, max mgl64.Vec3) actor.AABB {
	return actor.AABB{Min: min, Max: max}
}

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)

	tests := []struct {
		name     string
		position mgl64.Vec3
		expected CellKey
	}{
		{"origin", mgl64.Vec3{0, 0, 0}, CellKey{0, 0, 0}},
		{"positive", mgl64.Vec3{1.5, 2.3, 3.7}, CellKey{1, 2, 3}},
		{"negative", mgl64.Vec3{-0.5, -1.5, -2.5}, CellKey{-1, -2, -3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, grid.worldToCell(tt.position))
		})
	}

	coarse := NewSpatialGrid(4.0, 64)
	assert.Equal(t, CellKey{2, -1, 0}, coarse.worldToCell(mgl64.Vec3{8, -0.1, 3.99}))
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0, 0}, 0},
		{"positive", CellKey{1, 2, 3}, 6},
		{"negative", CellKey{-1, -2, -3}, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, grid.hashCell(tt.key))
		})
	}

	for x := -20; x < 20; x++ {
		for z := -20; z < 20; z++ {
			h := grid.hashCell(CellKey{x, 7, z})
			require.GreaterOrEqual(t, h, 0)
			require.Less(t, h, 16)
		}
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	for in, want := range map[int]int{-3: 1, 0: 1, 1: 1, 3: 4, 16: 16, 17: 32, 4000: 4096} {
		assert.Equal(t, want, nextPowerOfTwo(in), "nextPowerOfTwo(%d)", in)
	}
}

func TestSpatialGrid_Query(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	grid.Insert(0, box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}))
	grid.Insert(1, box(mgl64.Vec3{5, 5, 5}, mgl64.Vec3{6, 6, 6}))
	grid.Insert(2, box(mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec3{1.5, 1.5, 1.5}))
	grid.SortCells()

	assert.Equal(t, []int{0, 2}, grid.Query(box(mgl64.Vec3{0.6, 0.6, 0.6}, mgl64.Vec3{0.9, 0.9, 0.9})))
	assert.Equal(t, []int{1}, grid.Query(box(mgl64.Vec3{5.2, 5.2, 5.2}, mgl64.Vec3{8, 8, 8})))
	assert.Empty(t, grid.Query(box(mgl64.Vec3{-10, -10, -10}, mgl64.Vec3{-9, -9, -9})))

	// A region wider than the table falls back to testing every box
	assert.Equal(t, []int{0, 1, 2}, grid.Query(box(mgl64.Vec3{-100, -100, -100}, mgl64.Vec3{100, 100, 100})))
}

func TestSpatialGrid_Oversized(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	grid.Insert(0, box(mgl64.Vec3{-5000, -1, -5000}, mgl64.Vec3{5000, 0, 5000}))
	grid.Insert(1, box(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 1, 1}))

	require.Equal(t, []int{0}, grid.oversized)
	for _, cell := range grid.cells {
		assert.NotContains(t, cell.bodyIndices, 0)
	}

	assert.Equal(t, []int{0, 1}, grid.Query(box(mgl64.Vec3{0.2, -0.5, 0.2}, mgl64.Vec3{0.4, 0.5, 0.4})))
	assert.Equal(t, []int{0}, grid.Query(box(mgl64.Vec3{3000, -0.5, 3000}, mgl64.Vec3{3001, -0.4, 3001})))

	grid.Clear()
	assert.Empty(t, grid.oversized)
	assert.Empty(t, grid.boxes)
}

func TestSpatialGrid_FindPairs(t *testing.T) {
	a := createSphere(t, mgl64.Vec3{0, 0, 0}, 1)
	b := createSphere(t, mgl64.Vec3{1.5, 0, 0}, 1)
	c := createSphere(t, mgl64.Vec3{10, 0, 0}, 1)
	staticA := createBox(t, mgl64.Vec3{20, 0, 0}, mgl64.Vec3{2, 2, 2})
	staticA.BodyType = actor.BodyTypeStatic
	staticB := createBox(t, mgl64.Vec3{21, 0, 0}, mgl64.Vec3{2, 2, 2})
	staticB.BodyType = actor.BodyTypeStatic
	bodies := []*actor.RigidBody{a, b, c, staticA, staticB}

	grid := NewSpatialGrid(1.0, 256)
	for i, body := range bodies {
		grid.Insert(i, body.AABB())
	}
	grid.SortCells()

	pairs := grid.FindPairs(bodies)
	require.Len(t, pairs, 1)
	assert.Same(t, a, pairs[0].BodyA)
	assert.Same(t, b, pairs[0].BodyB)
}

func BenchmarkSpatialGridQuery(b *testing.B) {
	grid := NewSpatialGrid(DEFAULT_CELL_SIZE, DEFAULT_GRID_SIZE)
	i := 0
	for x := -10; x < 10; x++ {
		for z := -10; z < 10; z++ {
			center := mgl64.Vec3{float64(2 * x), 0, float64(2 * z)}
			grid.Insert(i, box(center.Sub(mgl64.Vec3{0.5, 0.5, 0.5}), center.Add(mgl64.Vec3{0.5, 0.5, 0.5})))
			i++
		}
	}
	grid.SortCells()
	region := box(mgl64.Vec3{-3, -1, -3}, mgl64.Vec3{3, 1, 3})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		grid.Query(region)
	}
}
