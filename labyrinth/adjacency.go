package labyrinth

// Link describes where an edge of one face continues on the neighboring face.
type Link struct {
	Face     Face // neighboring face
	Edge     Edge // edge of the neighbor that touches the source edge
	Reversed bool // the along-edge coordinate runs the other way on the neighbor
}

// adjacency is the cube topology for faces laid out like the materials of a
// box mesh: on the side faces y grows downwards and x grows to the right as
// seen from outside; +Y has +Z at its bottom edge and -Y has +Z at its top.
//
// Every entry has a mirror entry pointing back with the same Reversed flag.
var adjacency = [faceCount][edgeCount]Link{
	PosX: {
		Top:    {Face: PosY, Edge: Right, Reversed: true},
		Right:  {Face: NegZ, Edge: Left},
		Bottom: {Face: NegY, Edge: Right},
		Left:   {Face: PosZ, Edge: Right},
	},
	NegX: {
		Top:    {Face: PosY, Edge: Left},
		Right:  {Face: PosZ, Edge: Left},
		Bottom: {Face: NegY, Edge: Left, Reversed: true},
		Left:   {Face: NegZ, Edge: Right},
	},
	PosY: {
		Top:    {Face: NegZ, Edge: Top, Reversed: true},
		Right:  {Face: PosX, Edge: Top, Reversed: true},
		Bottom: {Face: PosZ, Edge: Top},
		Left:   {Face: NegX, Edge: Top},
	},
	NegY: {
		Top:    {Face: PosZ, Edge: Bottom},
		Right:  {Face: PosX, Edge: Bottom},
		Bottom: {Face: NegZ, Edge: Bottom, Reversed: true},
		Left:   {Face: NegX, Edge: Bottom, Reversed: true},
	},
	PosZ: {
		Top:    {Face: PosY, Edge: Bottom},
		Right:  {Face: PosX, Edge: Left},
		Bottom: {Face: NegY, Edge: Top},
		Left:   {Face: NegX, Edge: Right},
	},
	NegZ: {
		Top:    {Face: PosY, Edge: Top, Reversed: true},
		Right:  {Face: NegX, Edge: Left},
		Bottom: {Face: NegY, Edge: Bottom, Reversed: true},
		Left:   {Face: PosX, Edge: Right},
	},
}

// Neighbor returns the link for edge e of face f.
func Neighbor(f Face, e Edge) Link {
	return adjacency[f][e]
}

// Transform maps the along-edge coordinate t of the source edge onto the
// neighbor, returning the boundary cell on the neighbor's edge.
func (l Link) Transform(size, t int) (x, y int) {
	if l.Reversed {
		t = size - 1 - t
	}
	return EdgePoint(size, l.Edge, t)
}

// Along returns the coordinate of (x, y) measured along edge e.
func Along(e Edge, x, y int) int {
	if e == Top || e == Bottom {
		return x
	}
	return y
}

// EdgePoint returns the boundary cell of edge e at along-edge coordinate t.
func EdgePoint(size int, e Edge, t int) (x, y int) {
	last := size - 1
	switch e {
	case Top:
		return t, 0
	case Right:
		return last, t
	case Bottom:
		return t, last
	default:
		return 0, t
	}
}

// EdgeOf classifies a boundary cell. Corners resolve in the order top, right,
// bottom, left. ok is false for interior cells.
func EdgeOf(size, x, y int) (e Edge, ok bool) {
	last := size - 1
	switch {
	case y == 0:
		return Top, true
	case x == last:
		return Right, true
	case y == last:
		return Bottom, true
	case x == 0:
		return Left, true
	}
	return 0, false
}

// inward returns the cell one step into the face from boundary cell (x, y)
// on edge e.
func inward(size int, e Edge, x, y int) (int, int) {
	switch e {
	case Top:
		return x, 1
	case Right:
		return size - 2, y
	case Bottom:
		return x, size - 2
	default:
		return 1, y
	}
}
