package labyrinth

import "fmt"

// Face identifies one side of the cube.
type Face int

// Cube faces, in the material order of a box mesh.
const (
	PosX Face = iota // right
	NegX             // left
	PosY             // top
	NegY             // bottom
	PosZ             // front
	NegZ             // back

	faceCount = 6
)

var faceNames = [faceCount]string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"}

func (f Face) String() string {
	if f < 0 || f >= faceCount {
		return fmt.Sprintf("Face(%d)", int(f))
	}
	return faceNames[f]
}

// AllFaces lists every face in index order.
func AllFaces() []Face {
	return []Face{PosX, NegX, PosY, NegY, PosZ, NegZ}
}

// Edge identifies one side of a face grid.
type Edge int

// Grid edges, clockwise from the top.
const (
	Top    Edge = iota // y == 0
	Right              // x == size-1
	Bottom             // y == size-1
	Left               // x == 0

	edgeCount = 4
)

var edgeNames = [edgeCount]string{"top", "right", "bottom", "left"}

func (e Edge) String() string {
	if e < 0 || e >= edgeCount {
		return fmt.Sprintf("Edge(%d)", int(e))
	}
	return edgeNames[e]
}

// State is the content of a single grid cell.
type State uint8

// Cell states. The zero value is Wall so a fresh grid is solid.
const (
	Wall State = iota
	Path
)

func (s State) String() string {
	if s == Path {
		return "path"
	}
	return "wall"
}

// Cell addresses one grid cell on one face.
type Cell struct {
	Face Face
	X, Y int
}

func (c Cell) String() string {
	return fmt.Sprintf("%s(%d,%d)", c.Face, c.X, c.Y)
}

// point is a coordinate within a face whose identity is implied by context.
type point struct {
	X, Y int
}
