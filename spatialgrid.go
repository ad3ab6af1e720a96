package sandbox

import (
	"math"
	"sort"

	"github.com/akmonengine/sandbox/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// CellKey is the integer coordinate of a grid cell
type CellKey struct {
	X, Y, Z int
}

// Cell holds the indices of the bodies whose AABB touches it
type Cell struct {
	bodyIndices []int
}

// Pair is two bodies whose bounds overlap
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// SpatialGrid is a uniform hashed grid over body AABBs, used to answer
// region queries and bound-overlap queries without testing every body.
// Bodies spanning more cells than the grid holds (ground slabs) are
// kept aside and tested directly.
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int

	boxes     []actor.AABB
	oversized []int
}

// NewSpatialGrid creates a grid; numCells is rounded up to a power of two.
// A cell size that is not a positive finite number falls back to
// DEFAULT_CELL_SIZE.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
	if !(cellSize > 0) || math.IsInf(cellSize, 0) {
		cellSize = DEFAULT_CELL_SIZE
	}
	numCells = nextPowerOfTwo(numCells)

	cells := make([]Cell, numCells)
	for i := range cells {
		cells[i].bodyIndices = make([]int, 0, 8)
	}

	return &SpatialGrid{
		cellSize: cellSize,
		cells:    cells,
		cellMask: numCells - 1,
	}
}

func nextPowerOfTwo(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}

// Insert records the body at bodyIndex in every cell its AABB covers.
// Indices must be inserted in increasing order starting at 0.
func (sg *SpatialGrid) Insert(bodyIndex int, aabb actor.AABB) {
	sg.boxes = append(sg.boxes, aabb)

	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)
	if sg.cellSpan(minCell, maxCell) > len(sg.cells) {
		sg.oversized = append(sg.oversized, bodyIndex)
		return
	}

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			for z := minCell.Z; z <= maxCell.Z; z++ {
				cellIdx := sg.hashCell(CellKey{x, y, z})

				sg.cells[cellIdx].bodyIndices = append(
					sg.cells[cellIdx].bodyIndices,
					bodyIndex,
				)
			}
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
	sg.boxes = sg.boxes[:0]
	sg.oversized = sg.oversized[:0]
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// Query returns, in increasing order, the indices of the inserted
// bodies whose AABB overlaps region.
func (sg *SpatialGrid) Query(region actor.AABB) []int {
	seen := make([]bool, len(sg.boxes))
	result := make([]int, 0)

	visit := func(idx int) {
		if seen[idx] {
			return
		}
		seen[idx] = true
		if sg.boxes[idx].Overlaps(region) {
			result = append(result, idx)
		}
	}

	for _, idx := range sg.oversized {
		visit(idx)
	}

	minCell := sg.worldToCell(region.Min)
	maxCell := sg.worldToCell(region.Max)
	if sg.cellSpan(minCell, maxCell) > len(sg.cells) {
		// The region covers the whole table anyway
		for idx := range sg.boxes {
			visit(idx)
		}
	} else {
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					for _, idx := range sg.cells[sg.hashCell(CellKey{x, y, z})].bodyIndices {
						visit(idx)
					}
				}
			}
		}
	}

	sort.Ints(result)
	return result
}

// FindPairs returns every pair of bodies whose AABBs overlap, skipping
// pairs where both bodies are static. Pairs are ordered by the index of
// their first body.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))

	for bodyIdx := 0; bodyIdx < len(bodies); bodyIdx++ {
		clear(seen)
		bodyA := bodies[bodyIdx]

		test := func(otherIdx int) {
			// Avoid duplicates (A,B) and (B,A)
			if otherIdx <= bodyIdx || seen[otherIdx] {
				return
			}
			seen[otherIdx] = true

			bodyB := bodies[otherIdx]
			if bodyA.IsImmovable() && bodyB.IsImmovable() {
				return
			}
			if sg.boxes[bodyIdx].Overlaps(sg.boxes[otherIdx]) {
				pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
			}
		}

		for _, otherIdx := range sg.oversized {
			test(otherIdx)
		}

		if sg.isOversized(bodyIdx) {
			for otherIdx := range bodies {
				test(otherIdx)
			}
			continue
		}

		minCell := sg.worldToCell(sg.boxes[bodyIdx].Min)
		maxCell := sg.worldToCell(sg.boxes[bodyIdx].Max)
		for x := minCell.X; x <= maxCell.X; x++ {
			for y := minCell.Y; y <= maxCell.Y; y++ {
				for z := minCell.Z; z <= maxCell.Z; z++ {
					for _, otherIdx := range sg.cells[sg.hashCell(CellKey{x, y, z})].bodyIndices {
						test(otherIdx)
					}
				}
			}
		}
	}

	return pairs
}

func (sg *SpatialGrid) isOversized(bodyIdx int) bool {
	for _, idx := range sg.oversized {
		if idx == bodyIdx {
			return true
		}
	}
	return false
}

// cellSpan counts the cells between two corners, saturating instead of
// overflowing for huge boxes.
func (sg *SpatialGrid) cellSpan(minCell, maxCell CellKey) int {
	span := 1
	for _, d := range [3]int{maxCell.X - minCell.X, maxCell.Y - minCell.Y, maxCell.Z - minCell.Z} {
		if d+1 > len(sg.cells) {
			return len(sg.cells) + 1
		}
		span *= d + 1
		if span > len(sg.cells) {
			return span
		}
	}
	return span
}

// worldToCell converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec3) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
		Z: int(math.Floor(pos.Z() / sg.cellSize)),
	}
}

// hashCell maps a cell to an index in the table
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663) ^ (key.Z * 83492791)
	return h & sg.cellMask
}
