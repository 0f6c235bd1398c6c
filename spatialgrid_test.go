package lamina

import (
	"sort"
	"testing"

	"github.com/akmonengine/lamina/actor"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorldToCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)

	tests := []struct {
		name     string
		position mgl64.Vec2
		expected CellKey
	}{
		{"origin", mgl64.Vec2{0, 0}, CellKey{0, 0}},
		{"positive", mgl64.Vec2{1.5, 2.3}, CellKey{1, 2}},
		{"negative", mgl64.Vec2{-1.5, -2.3}, CellKey{-2, -3}},
		{"fractional", mgl64.Vec2{0.5, 0.5}, CellKey{0, 0}},
		{"large", mgl64.Vec2{100.7, -200.3}, CellKey{100, -201}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.worldToCell(tt.position)
			if result != tt.expected {
				t.Errorf("worldToCell(%v) = %v, want %v", tt.position, result, tt.expected)
			}
		})
	}
}

func TestHashCell(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16) // 16 cells, mask = 15

	tests := []struct {
		name     string
		key      CellKey
		expected int
	}{
		{"origin", CellKey{0, 0}, 0},
		{"simple", CellKey{1, 2}, 3},
		{"negative", CellKey{-1, -2}, 1},
		{"large", CellKey{100, 200}, 12},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := grid.hashCell(tt.key)
			if result < 0 || result >= len(grid.cells) {
				t.Errorf("hashCell(%v) = %d, out of range [0, %d)", tt.key, result, len(grid.cells))
			}
			if result != tt.expected {
				t.Errorf("hashCell(%v) = %d, want %d", tt.key, result, tt.expected)
			}
		})
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	tests := []struct{ in, want int }{
		{-3, 1}, {0, 1}, {1, 1}, {2, 2}, {3, 4}, {1000, 1024}, {1024, 1024},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPowerOfTwo(tt.in), "nextPowerOfTwo(%d)", tt.in)
	}
}

func createTestBox(t testing.TB, position mgl64.Vec2, width, height float64, bodyType actor.BodyType) *actor.RigidBody {
	t.Helper()
	rectangle, err := actor.NewRectangle(width, height)
	require.NoError(t, err)
	rb, err := actor.NewRigidBody(actor.NewTransformAt(position, 0), rectangle, bodyType, actor.DefaultMaterial())
	require.NoError(t, err)
	return rb
}

func createTestCircle(t testing.TB, position mgl64.Vec2, radius float64, bodyType actor.BodyType) *actor.RigidBody {
	t.Helper()
	circle, err := actor.NewCircle(radius)
	require.NoError(t, err)
	rb, err := actor.NewRigidBody(actor.NewTransformAt(position, 0), circle, bodyType, actor.DefaultMaterial())
	require.NoError(t, err)
	return rb
}

func insertAll(grid *SpatialGrid, bodies []*actor.RigidBody) {
	grid.Clear()
	for i, body := range bodies {
		body.ComputeAABB()
		grid.Insert(i, body)
	}
	grid.SortCells()
}

func TestInsertSingleBody(t *testing.T) {
	grid := NewSpatialGrid(1.0, 64)
	// spans cells x in [0, 1], y in [0, 0]
	body := createTestBox(t, mgl64.Vec2{1, 0.5}, 1.5, 0.5, actor.BodyTypeDynamic)
	insertAll(grid, []*actor.RigidBody{body})

	for _, key := range []CellKey{{0, 0}, {1, 0}} {
		indices := grid.cells[grid.hashCell(key)].bodyIndices
		assert.Contains(t, indices, 0, "cell %v", key)
	}

	total := 0
	for _, cell := range grid.cells {
		total += len(cell.bodyIndices)
	}
	assert.Equal(t, 2, total)
}

func TestClear(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	insertAll(grid, []*actor.RigidBody{
		createTestBox(t, mgl64.Vec2{0, 0}, 3, 3, actor.BodyTypeDynamic),
	})

	grid.Clear()
	for i, cell := range grid.cells {
		if len(cell.bodyIndices) != 0 {
			t.Errorf("cell %d not cleared: %v", i, cell.bodyIndices)
		}
	}
}

func TestSortCells(t *testing.T) {
	grid := NewSpatialGrid(1.0, 16)
	body := createTestBox(t, mgl64.Vec2{0.5, 0.5}, 0.5, 0.5, actor.BodyTypeDynamic)
	body.ComputeAABB()
	for _, i := range []int{5, 2, 9, 1} {
		grid.Insert(i, body)
	}
	grid.SortCells()

	indices := grid.cells[grid.hashCell(CellKey{0, 0})].bodyIndices
	assert.True(t, sort.IntsAreSorted(indices), "indices not sorted: %v", indices)
}

func TestFindPairs(t *testing.T) {
	tests := []struct {
		name   string
		bodies func(t *testing.T) []*actor.RigidBody
		want   [][2]int
	}{
		{
			name: "no overlap",
			bodies: func(t *testing.T) []*actor.RigidBody {
				return []*actor.RigidBody{
					createTestBox(t, mgl64.Vec2{0, 0}, 1, 1, actor.BodyTypeDynamic),
					createTestBox(t, mgl64.Vec2{5, 0}, 1, 1, actor.BodyTypeDynamic),
				}
			},
			want: nil,
		},
		{
			name: "overlap",
			bodies: func(t *testing.T) []*actor.RigidBody {
				return []*actor.RigidBody{
					createTestBox(t, mgl64.Vec2{0, 0}, 1, 1, actor.BodyTypeDynamic),
					createTestBox(t, mgl64.Vec2{0.8, 0}, 1, 1, actor.BodyTypeDynamic),
				}
			},
			want: [][2]int{{0, 1}},
		},
		{
			name: "static bodies",
			bodies: func(t *testing.T) []*actor.RigidBody {
				return []*actor.RigidBody{
					createTestBox(t, mgl64.Vec2{0, 0}, 1, 1, actor.BodyTypeStatic),
					createTestBox(t, mgl64.Vec2{0.8, 0}, 1, 1, actor.BodyTypeStatic),
				}
			},
			want: nil,
		},
		{
			name: "resting body on static ground",
			bodies: func(t *testing.T) []*actor.RigidBody {
				box := createTestBox(t, mgl64.Vec2{0, 0.9}, 1, 1, actor.BodyTypeDynamic)
				box.SetAtRest(true)
				return []*actor.RigidBody{
					createTestBox(t, mgl64.Vec2{0, 0}, 10, 1, actor.BodyTypeStatic),
					box,
				}
			},
			want: nil,
		},
		{
			name: "resting body hit by a moving one",
			bodies: func(t *testing.T) []*actor.RigidBody {
				box := createTestBox(t, mgl64.Vec2{0, 0}, 1, 1, actor.BodyTypeDynamic)
				box.SetAtRest(true)
				return []*actor.RigidBody{
					box,
					createTestBox(t, mgl64.Vec2{0.9, 0}, 1, 1, actor.BodyTypeDynamic),
				}
			},
			want: [][2]int{{0, 1}},
		},
		{
			name: "large ground under a row of boxes",
			bodies: func(t *testing.T) []*actor.RigidBody {
				bodies := []*actor.RigidBody{createTestBox(t, mgl64.Vec2{0, -0.5}, 20, 1, actor.BodyTypeStatic)}
				for i := 0; i < 4; i++ {
					bodies = append(bodies, createTestBox(t, mgl64.Vec2{float64(i) * 3, 0.45}, 1, 1, actor.BodyTypeDynamic))
				}
				return bodies
			},
			want: [][2]int{{0, 1}, {0, 2}, {0, 3}, {0, 4}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodies := tt.bodies(t)
			grid := NewSpatialGrid(1.0, 256)
			insertAll(grid, bodies)

			index := make(map[*actor.RigidBody]int)
			for i, b := range bodies {
				index[b] = i
			}

			for _, workers := range []int{1, 3} {
				pairs := grid.FindPairsParallel(bodies, workers, nil)
				var got [][2]int
				for _, p := range pairs {
					got = append(got, [2]int{index[p.BodyA], index[p.BodyB]})
				}
				assert.Equal(t, tt.want, got, "workers=%d", workers)
			}
		})
	}
}

func TestFindPairsFilter(t *testing.T) {
	a := createTestBox(t, mgl64.Vec2{0, 0}, 1, 1, actor.BodyTypeDynamic)
	b := createTestBox(t, mgl64.Vec2{0.5, 0}, 1, 1, actor.BodyTypeDynamic)
	c := createTestBox(t, mgl64.Vec2{1, 0}, 1, 1, actor.BodyTypeDynamic)
	bodies := []*actor.RigidBody{a, b, c}

	grid := NewSpatialGrid(1.0, 64)
	insertAll(grid, bodies)

	pairs := grid.FindPairs(bodies, func(x, y *actor.RigidBody) bool {
		return !(x == a && y == b)
	})

	require.Len(t, pairs, 2)
	assert.Equal(t, Pair{BodyA: a, BodyB: c}, pairs[0])
	assert.Equal(t, Pair{BodyA: b, BodyB: c}, pairs[1])
}

func TestFindPairsDeterministic(t *testing.T) {
	var bodies []*actor.RigidBody
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			bodies = append(bodies, createTestCircle(t, mgl64.Vec2{float64(x) * 0.9, float64(y) * 0.9}, 0.5, actor.BodyTypeDynamic))
		}
	}
	grid := NewSpatialGrid(1.0, 64)
	insertAll(grid, bodies)

	sequential := grid.FindPairs(bodies, nil)
	require.NotEmpty(t, sequential)
	for _, workers := range []int{2, 4, 7} {
		assert.Equal(t, sequential, grid.FindPairsParallel(bodies, workers, nil), "workers=%d", workers)
	}
}

func BenchmarkFindPairsParallel(b *testing.B) {
	var bodies []*actor.RigidBody
	for x := 0; x < 30; x++ {
		for y := 0; y < 30; y++ {
			bodies = append(bodies, createTestBox(b, mgl64.Vec2{float64(x) * 1.1, float64(y) * 1.1}, 1, 1, actor.BodyTypeDynamic))
		}
	}
	grid := NewSpatialGrid(2.0, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		insertAll(grid, bodies)
		grid.FindPairsParallel(bodies, 4, nil)
	}
}
