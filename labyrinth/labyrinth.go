// Package labyrinth carves a single maze across the six faces of a cube.
//
// Generation is incremental: every call to Step visits one cell of a
// randomized depth-first walk, and FillStep closes the oldest corridors so
// the maze keeps regenerating instead of filling up. Callers pace both from
// their own loop (a ticker, an animation frame) and poll DirtyFaces to learn
// which faces need redrawing.
//
// A Generator is not safe for concurrent use.
package labyrinth

import (
	"errors"
	"math/rand/v2"
	"slices"
	"time"
)

// Configuration errors.
var (
	ErrSizeTooSmall = errors.New("labyrinth size must be at least 5")
	ErrEvenSize     = errors.New("labyrinth size must be odd")
	ErrInvalidLimit = errors.New("labyrinth limits must not be negative")
)

const minSize = 5

// Rand is the random source the generator draws every choice from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Config holds the generator parameters.
type Config struct {
	// Size is the number of cells along a face side. It must be odd so that
	// corridors on odd coordinates line up across every seam.
	Size int

	// QueueLimit caps the open cells per face before aging closes the
	// oldest. Zero means Size²/4.
	QueueLimit int

	// LedgerLimit caps the remembered seam cells. Zero means Size*6.
	LedgerLimit int

	// Rand drives every random choice. Nil means a time-seeded PCG.
	Rand Rand
}

// Generator owns the six face grids together with the carving and aging
// state that mutates them.
type Generator struct {
	grid

	rng         Rand
	queueLimit  int
	ledgerLimit int

	stack  []Cell               // backtracking history, top is the cursor
	queues [faceCount]pathQueue // open cells per face, oldest first
	seams  []Cell               // boundary cells carved on both sides of an edge
	dirty  [faceCount]bool
	phase  Phase

	scratch []candidate
}

// New validates cfg and returns an empty, all-wall generator. The first Step
// plants the initial seed.
func New(cfg Config) (*Generator, error) {
	if cfg.Size < minSize {
		return nil, ErrSizeTooSmall
	}
	if cfg.Size%2 == 0 {
		return nil, ErrEvenSize
	}
	if cfg.QueueLimit < 0 || cfg.LedgerLimit < 0 {
		return nil, ErrInvalidLimit
	}

	g := &Generator{
		grid:        newGrid(cfg.Size),
		rng:         cfg.Rand,
		queueLimit:  cfg.QueueLimit,
		ledgerLimit: cfg.LedgerLimit,
		phase:       Exhausted,
		scratch:     make([]candidate, 0, 8),
	}
	if g.rng == nil {
		g.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0))
	}
	if g.queueLimit == 0 {
		g.queueLimit = cfg.Size * cfg.Size / 4
	}
	if g.ledgerLimit == 0 {
		g.ledgerLimit = cfg.Size * 6
	}
	return g, nil
}

// QueueLimit returns the effective per-face open cell cap.
func (g *Generator) QueueLimit() int {
	return g.queueLimit
}

// LedgerLimit returns the effective seam ledger cap.
func (g *Generator) LedgerLimit() int {
	return g.ledgerLimit
}

// Phase returns the state the last Step left the carver in.
func (g *Generator) Phase() Phase {
	return g.phase
}

// Cursor returns the cell on top of the backtracking stack.
func (g *Generator) Cursor() (Cell, bool) {
	if len(g.stack) == 0 {
		return Cell{}, false
	}
	return g.stack[len(g.stack)-1], true
}

// StackLen returns the depth of the backtracking stack.
func (g *Generator) StackLen() int {
	return len(g.stack)
}

// QueueLen returns the number of open cells tracked for face f.
func (g *Generator) QueueLen(f Face) int {
	return g.queues[f].len()
}

// Seams returns a copy of the continuity ledger, oldest first.
func (g *Generator) Seams() []Cell {
	return slices.Clone(g.seams)
}

// DirtyFaces returns the faces changed since the last ClearDirty, in index
// order.
func (g *Generator) DirtyFaces() []Face {
	var faces []Face
	for f, d := range g.dirty {
		if d {
			faces = append(faces, Face(f))
		}
	}
	return faces
}

// ClearDirty forgets every pending face change.
func (g *Generator) ClearDirty() {
	g.dirty = [faceCount]bool{}
}

// MarkDirty flags faces for redraw again, typically because an update about
// them could not be delivered.
func (g *Generator) MarkDirty(faces ...Face) {
	for _, f := range faces {
		g.dirty[f] = true
	}
}
