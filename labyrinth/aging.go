package labyrinth

import "slices"

// FillStep applies the aging policy once. Every face holding more open cells
// than the queue limit has its oldest cells turned back into walls until it
// is within the limit. Closed cells leave the backtracking stack, and the
// seam ledger is trimmed to its limit.
func (g *Generator) FillStep() {
	closed := false
	for f := range g.queues {
		q := &g.queues[f]
		for q.len() > g.queueLimit {
			p := q.pop()
			g.Set(Face(f), p.X, p.Y, Wall)
			g.dirty[f] = true
			closed = true
		}
	}
	if closed {
		g.compactStack()
	}

	if over := len(g.seams) - g.ledgerLimit; over > 0 {
		g.seams = append(g.seams[:0], g.seams[over:]...)
	}
}

// compactStack drops closed cells from the backtracking stack, so the stack
// never holds more entries than there are open cells after a FillStep.
func (g *Generator) compactStack() {
	if len(g.stack) == 0 {
		return
	}
	g.stack = slices.DeleteFunc(g.stack, func(c Cell) bool {
		return g.Get(c.Face, c.X, c.Y) == Wall
	})
	if len(g.stack) == 0 {
		g.phase = Exhausted
	}
}

// pathQueue is a FIFO of carved coordinates on one face.
type pathQueue struct {
	items []point
	head  int
}

func (q *pathQueue) len() int {
	return len(q.items) - q.head
}

func (q *pathQueue) push(p point) {
	q.items = append(q.items, p)
}

func (q *pathQueue) pop() point {
	p := q.items[q.head]
	q.head++
	// Reclaim the consumed prefix once it dominates the backing array.
	if q.head > 32 && q.head*2 > len(q.items) {
		n := copy(q.items, q.items[q.head:])
		q.items = q.items[:n]
		q.head = 0
	}
	return p
}
