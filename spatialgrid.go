package lamina

import (
	"math"
	"sort"
	"sync"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// ============================================================================
// Types
// ============================================================================

// CellKey - Coordinates of a cell in the 2D grid
type CellKey struct {
	X, Y int
}

// Cell - Indices of the bodies overlapping a cell
type Cell struct {
	bodyIndices []int
}

// Pair - Two bodies whose bounds overlap
type Pair struct {
	BodyA *actor.RigidBody
	BodyB *actor.RigidBody
}

// PairFilter reports whether two bodies may collide at all
type PairFilter func(a, b *actor.RigidBody) bool

// SpatialGrid - Uniform grid with hashing, used as broad phase
type SpatialGrid struct {
	cellSize float64
	cells    []Cell
	cellMask int
}

// ============================================================================
// Constructor
// ============================================================================

// NewSpatialGrid creates a grid of square cells. The number of cells is
// rounded up to a power of two; cells far apart may share a bucket.
func NewSpatialGrid(cellSize float64, numCells int) *SpatialGrid {
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

// nextPowerOfTwo - Rounds up to the next power of two
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

// Insert adds a body to every cell covered by its last computed AABB
func (sg *SpatialGrid) Insert(bodyIndex int, body *actor.RigidBody) {
	aabb := body.AABB()
	minCell := sg.worldToCell(aabb.Min)
	maxCell := sg.worldToCell(aabb.Max)

	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			cellIdx := sg.hashCell(CellKey{x, y})
			sg.cells[cellIdx].bodyIndices = append(sg.cells[cellIdx].bodyIndices, bodyIndex)
		}
	}
}

func (sg *SpatialGrid) Clear() {
	for i := range sg.cells {
		sg.cells[i].bodyIndices = sg.cells[i].bodyIndices[:0]
	}
}

func (sg *SpatialGrid) SortCells() {
	for i := range sg.cells {
		if len(sg.cells[i].bodyIndices) > 1 {
			sort.Ints(sg.cells[i].bodyIndices)
		}
	}
}

// FindPairs returns the pairs of bodies whose AABBs overlap, the body with
// the lower index first. Pairs where neither body can move (static or at
// rest) and pairs rejected by filter are skipped. filter may be nil.
func (sg *SpatialGrid) FindPairs(bodies []*actor.RigidBody, filter PairFilter) []Pair {
	pairs := make([]Pair, 0, len(bodies)/2)
	seen := make([]bool, len(bodies))
	for bodyIdx := range bodies {
		pairs = sg.appendPairs(pairs, bodies, bodyIdx, seen, filter)
	}
	return pairs
}

// FindPairsParallel splits the bodies between workers. Each worker collects
// its own pairs, which are concatenated in worker order: the result is the
// same as FindPairs.
func (sg *SpatialGrid) FindPairsParallel(bodies []*actor.RigidBody, numWorkers int, filter PairFilter) []Pair {
	if numWorkers <= 1 {
		return sg.FindPairs(bodies, filter)
	}

	bodiesPerWorker := (len(bodies) + numWorkers - 1) / numWorkers
	if bodiesPerWorker == 0 {
		bodiesPerWorker = 1
	}

	results := make([][]Pair, numWorkers)
	var wg sync.WaitGroup
	for w := 0; w < numWorkers; w++ {
		startIdx := w * bodiesPerWorker
		endIdx := min(startIdx+bodiesPerWorker, len(bodies))
		if startIdx >= endIdx {
			break
		}

		wg.Add(1)
		go func(w, start, end int) {
			defer wg.Done()

			seen := make([]bool, len(bodies))
			for bodyIdx := start; bodyIdx < end; bodyIdx++ {
				results[w] = sg.appendPairs(results[w], bodies, bodyIdx, seen, filter)
			}
		}(w, startIdx, endIdx)
	}
	wg.Wait()

	var pairs []Pair
	for _, r := range results {
		pairs = append(pairs, r...)
	}
	return pairs
}

// appendPairs adds the pairs made of bodies[bodyIdx] and the bodies of
// higher index sharing one of its cells. seen is scratch space, cleared on return.
func (sg *SpatialGrid) appendPairs(pairs []Pair, bodies []*actor.RigidBody, bodyIdx int, seen []bool, filter PairFilter) []Pair {
	bodyA := bodies[bodyIdx]
	aabbA := bodyA.AABB()
	minCell := sg.worldToCell(aabbA.Min)
	maxCell := sg.worldToCell(aabbA.Max)

	start := len(pairs)
	var visited []int
	for x := minCell.X; x <= maxCell.X; x++ {
		for y := minCell.Y; y <= maxCell.Y; y++ {
			cellIdx := sg.hashCell(CellKey{x, y})

			for _, otherIdx := range sg.cells[cellIdx].bodyIndices {
				// Avoid duplicates (A,B) and (B,A)
				if otherIdx <= bodyIdx || seen[otherIdx] {
					continue
				}
				seen[otherIdx] = true
				visited = append(visited, otherIdx)

				bodyB := bodies[otherIdx]
				// static and resting bodies do not collide with each other
				if !isActive(bodyA, bodyB) {
					continue
				}
				if !aabbA.Overlaps(bodyB.AABB()) {
					continue
				}
				if filter != nil && !filter(bodyA, bodyB) {
					continue
				}
				pairs = append(pairs, Pair{BodyA: bodyA, BodyB: bodyB})
			}
		}
	}

	for _, idx := range visited {
		seen[idx] = false
	}

	// cells are visited in grid order, sort the new pairs by body index
	newPairs := pairs[start:]
	if len(newPairs) > 1 {
		index := make(map[*actor.RigidBody]int, len(newPairs))
		for _, idx := range visited {
			index[bodies[idx]] = idx
		}
		sort.Slice(newPairs, func(i, j int) bool {
			return index[newPairs[i].BodyB] < index[newPairs[j].BodyB]
		})
	}

	return pairs
}

// worldToCell - Converts a world position to cell coordinates
func (sg *SpatialGrid) worldToCell(pos mgl64.Vec2) CellKey {
	return CellKey{
		X: int(math.Floor(pos.X() / sg.cellSize)),
		Y: int(math.Floor(pos.Y() / sg.cellSize)),
	}
}

// hashCell - Hashes a cell to an index of the bucket array
func (sg *SpatialGrid) hashCell(key CellKey) int {
	h := (key.X * 73856093) ^ (key.Y * 19349663)
	return h & sg.cellMask
}
