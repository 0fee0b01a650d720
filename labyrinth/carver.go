package labyrinth

// Phase is the carver state after a step.
type Phase int

// Carver phases. A step moves between them as
// Carving -> DeadEnd -> ... -> Exhausted -> Seeded -> Carving.
const (
	Carving   Phase = iota // advanced into a new cell
	DeadEnd                // backtracked, stack still holds cells
	Exhausted              // backtracked off the last cell, next step re-seeds
	Seeded                 // planted a new start cell
)

func (p Phase) String() string {
	switch p {
	case Carving:
		return "carving"
	case DeadEnd:
		return "dead-end"
	case Exhausted:
		return "exhausted"
	case Seeded:
		return "seeded"
	}
	return "unknown"
}

// candidate is one possible move from the cursor.
type candidate struct {
	next  Cell // cell to advance into
	wall  Cell // cell between cursor and next, on the cursor's face
	cross bool // next lies on a neighboring face
	seam  Cell // wall's twin on the neighboring face, set when cross
}

// Step advances the carving by exactly one cell visit and reports the
// resulting phase.
func (g *Generator) Step() Phase {
	if len(g.stack) == 0 {
		g.reseed()
		g.phase = Seeded
		return g.phase
	}

	cur := g.stack[len(g.stack)-1]
	// Aging may have closed the cursor since it was pushed.
	if g.Get(cur.Face, cur.X, cur.Y) == Wall {
		return g.backtrack()
	}

	cands := g.candidates(cur)
	if len(cands) == 0 {
		return g.backtrack()
	}

	c := cands[g.rng.IntN(len(cands))]
	g.carve(c.next)
	g.carve(c.wall)
	if c.cross {
		g.carve(c.seam)
		g.seams = append(g.seams, c.wall, c.seam)
	}
	g.stack = append(g.stack, c.next)
	g.phase = Carving
	return g.phase
}

// StepN runs n steps and returns the phase after the last one.
func (g *Generator) StepN(n int) Phase {
	for range n {
		g.Step()
	}
	return g.phase
}

// reseed plants a new start cell on odd coordinates of a random face.
func (g *Generator) reseed() {
	half := (g.size - 1) / 2
	c := Cell{
		Face: Face(g.rng.IntN(faceCount)),
		X:    g.rng.IntN(half)*2 + 1,
		Y:    g.rng.IntN(half)*2 + 1,
	}
	g.carve(c)
	g.stack = append(g.stack, c)
}

func (g *Generator) backtrack() Phase {
	g.stack = g.stack[:len(g.stack)-1]
	if len(g.stack) == 0 {
		g.phase = Exhausted
	} else {
		g.phase = DeadEnd
	}
	return g.phase
}

// candidates lists the moves from cur: same-face cells two steps away in the
// order left, right, up, down, then cells across the edges the cursor sits
// next to in the order top, right, bottom, left.
func (g *Generator) candidates(cur Cell) []candidate {
	cands := g.scratch[:0]
	last := g.size - 1

	local := func(dx, dy int) {
		nx, ny := cur.X+2*dx, cur.Y+2*dy
		if nx < 1 || nx > last-1 || ny < 1 || ny > last-1 {
			return
		}
		if g.Get(cur.Face, nx, ny) != Wall {
			return
		}
		cands = append(cands, candidate{
			next: Cell{Face: cur.Face, X: nx, Y: ny},
			wall: Cell{Face: cur.Face, X: cur.X + dx, Y: cur.Y + dy},
		})
	}
	local(-1, 0)
	local(1, 0)
	local(0, -1)
	local(0, 1)

	across := func(e Edge) {
		t := Along(e, cur.X, cur.Y)
		wx, wy := EdgePoint(g.size, e, t)
		link := Neighbor(cur.Face, e)
		sx, sy := link.Transform(g.size, t)
		nx, ny := inward(g.size, link.Edge, sx, sy)
		if g.Get(link.Face, nx, ny) != Wall {
			return
		}
		cands = append(cands, candidate{
			next:  Cell{Face: link.Face, X: nx, Y: ny},
			wall:  Cell{Face: cur.Face, X: wx, Y: wy},
			cross: true,
			seam:  Cell{Face: link.Face, X: sx, Y: sy},
		})
	}
	if cur.Y == 1 {
		across(Top)
	}
	if cur.X == last-1 {
		across(Right)
	}
	if cur.Y == last-1 {
		across(Bottom)
	}
	if cur.X == 1 {
		across(Left)
	}

	g.scratch = cands
	return cands
}

// carve opens c and starts tracking it for aging. Cells that are already
// open keep their original place in the queue.
func (g *Generator) carve(c Cell) {
	if g.Get(c.Face, c.X, c.Y) == Path {
		return
	}
	g.Set(c.Face, c.X, c.Y, Path)
	g.queues[c.Face].push(point{X: c.X, Y: c.Y})
	g.dirty[c.Face] = true
}
