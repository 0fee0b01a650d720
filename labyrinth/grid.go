package labyrinth

import "fmt"

// grid stores the wall/path state of all six faces, row-major per face.
type grid struct {
	size  int
	cells [faceCount][]State
}

func newGrid(size int) grid {
	g := grid{size: size}
	for f := range g.cells {
		g.cells[f] = make([]State, size*size)
	}
	return g
}

// Size returns the number of cells along one side of a face.
func (g *grid) Size() int {
	return g.size
}

// InBound reports whether (x, y) lies on a face grid.
func (g *grid) InBound(x, y int) bool {
	return x >= 0 && x < g.size && y >= 0 && y < g.size
}

// index panics when (x, y) is off the grid. Every coordinate the carver and
// the aging queue use is derived from the grid itself, so an out-of-range
// index is a logic error.
func (g *grid) index(f Face, x, y int) int {
	if f < 0 || f >= faceCount || !g.InBound(x, y) {
		panic(fmt.Sprintf("labyrinth: cell %s outside %dx%d grid", Cell{Face: f, X: x, Y: y}, g.size, g.size))
	}
	return y*g.size + x
}

// Get returns the state of cell (x, y) on face f.
func (g *grid) Get(f Face, x, y int) State {
	return g.cells[f][g.index(f, x, y)]
}

// Set overwrites the state of cell (x, y) on face f.
func (g *grid) Set(f Face, x, y int, s State) {
	g.cells[f][g.index(f, x, y)] = s
}

// Face returns a copy of face f as rows of cells, indexed [y][x].
func (g *grid) Face(f Face) [][]State {
	g.index(f, 0, 0)
	rows := make([][]State, g.size)
	for y := range rows {
		rows[y] = make([]State, g.size)
		copy(rows[y], g.cells[f][y*g.size:(y+1)*g.size])
	}
	return rows
}

// Faces returns a copy of every face.
func (g *grid) Faces() [faceCount][][]State {
	var out [faceCount][][]State
	for f := range out {
		out[f] = g.Face(Face(f))
	}
	return out
}

// OpenCells counts the Path cells of face f.
func (g *grid) OpenCells(f Face) int {
	n := 0
	for _, s := range g.cells[f] {
		if s == Path {
			n++
		}
	}
	return n
}
