package service

import (
	"errors"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-labyrinth/encoder"
	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"github.com/beka-birhanu/vinom-labyrinth/service/i"
)

// Cube-related errors.
var (
	ErrNilGenerator    = errors.New("generator is nil")
	ErrNilEncoder      = errors.New("encoder is nil")
	ErrEmptyAction     = errors.New("empty action")
	ErrUnknownAction   = errors.New("unknown action type")
	ErrCubeStopped     = errors.New("cube is stopped")
	ErrInvalidSchedule = errors.New("duration and tick must be positive")
)

// Cube constants for configuration and action types.
const (
	snapshotActionType = 3 << iota // Action type for a full snapshot request.
	burstActionType                // Action type for extra carving steps.

	defaultStepsPerTick = 4  // Steps carved per tick.
	stateBufferSize     = 8  // Pending updates before a tick is re-queued.
	actionBufferSize    = 16 // Pending viewer actions.
)

// Cube drives one labyrinth generator on a ticker and publishes the faces
// that change.
type Cube struct {
	gen          *labyrinth.Generator // The labyrinth being carved.
	encoder      i.CubeEncoder        // Encoder for serializing face updates.
	stepsPerTick int                  // Carving steps per tick.
	version      int64                // Update version for synchronization.
	stop         chan struct{}        // stop channel to signal stop.
	stopOnce     sync.Once            // Guards closing stop.
	done         chan struct{}        // Closed once the loop has finished.
	stateChan    chan []byte          // Channel for broadcasting face updates.
	actionChan   chan []byte          // Channel for viewer actions.
	endChan      chan []byte          // Channel to signal cube completion.
	sync.Mutex                        // Lock for the generator and version.
}

// NewCube creates a new Cube around gen.
func NewCube(gen *labyrinth.Generator, e i.CubeEncoder, stepsPerTick int) (*Cube, error) {
	if gen == nil {
		return nil, ErrNilGenerator
	}
	if e == nil {
		return nil, ErrNilEncoder
	}
	if stepsPerTick <= 0 {
		stepsPerTick = defaultStepsPerTick
	}

	return &Cube{
		gen:          gen,
		encoder:      e,
		stepsPerTick: stepsPerTick,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
		stateChan:    make(chan []byte, stateBufferSize),
		actionChan:   make(chan []byte, actionBufferSize),
		endChan:      make(chan []byte, 1),
	}, nil
}

// Start carves on every tick until the duration elapses or Stop is called,
// then sends the final snapshot and closes the channels.
func (c *Cube) Start(duration, tick time.Duration) {
	defer close(c.done)
	if duration <= 0 || tick <= 0 {
		c.finish()
		return
	}

	deadline := time.NewTimer(duration)
	defer deadline.Stop()
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			c.finish()
			return
		case <-deadline.C:
			c.finish()
			return
		case action := <-c.actionChan:
			c.handleAction(action[0], action[1:])
		case <-ticker.C:
			c.advance(c.stepsPerTick)
		}
	}
}

// Stop signals the loop to end. It does not wait for the final snapshot.
func (c *Cube) Stop() {
	c.stopOnce.Do(func() { close(c.stop) })
}

// Act queues a viewer action: a type byte followed by its payload.
func (c *Cube) Act(action []byte) error {
	if len(action) == 0 {
		return ErrEmptyAction
	}
	if action[0] != snapshotActionType && action[0] != burstActionType {
		return ErrUnknownAction
	}
	select {
	case <-c.stop:
		return ErrCubeStopped
	case <-c.done:
		return ErrCubeStopped
	default:
	}

	select {
	case c.actionChan <- action:
		return nil
	case <-c.stop:
		return ErrCubeStopped
	case <-c.done:
		return ErrCubeStopped
	}
}

// handleAction processes incoming actions based on their type.
func (c *Cube) handleAction(t byte, payload []byte) {
	switch t {
	case snapshotActionType:
		snap, err := c.Snapshot()
		if err != nil {
			return
		}
		select {
		case c.stateChan <- snap:
		default:
		}
	case burstActionType:
		steps := c.stepsPerTick
		if len(payload) > 0 && payload[0] > 0 {
			steps = int(payload[0])
		}
		c.advance(steps)
	}
}

// advance carves steps cells, ages the maze once and publishes the faces
// that changed. If the update cannot be queued the faces stay dirty and go
// out with the next tick.
func (c *Cube) advance(steps int) {
	c.Lock()
	c.gen.StepN(steps)
	c.gen.FillStep()
	dirty := c.gen.DirtyFaces()
	if len(dirty) == 0 {
		c.Unlock()
		return
	}
	c.gen.ClearDirty()
	c.version++
	update := c.update(dirty, false)
	c.Unlock()

	payload, err := c.encoder.MarshalUpdate(update)
	if err == nil {
		select {
		case c.stateChan <- payload:
			return
		default:
		}
	}

	c.Lock()
	c.gen.MarkDirty(dirty...)
	c.Unlock()
}

// finish sends the final snapshot and closes the outbound channels.
func (c *Cube) finish() {
	c.Lock()
	update := c.update(labyrinth.AllFaces(), true)
	c.Unlock()

	close(c.stateChan)
	if payload, err := c.encoder.MarshalUpdate(update); err == nil {
		c.endChan <- payload
	}
	close(c.endChan)
}

// Snapshot encodes every face at the current version.
func (c *Cube) Snapshot() ([]byte, error) {
	c.Lock()
	update := c.update(labyrinth.AllFaces(), false)
	c.Unlock()
	return c.encoder.MarshalUpdate(update)
}

// update builds an update for faces. The caller holds the lock.
func (c *Cube) update(faces []labyrinth.Face, final bool) *encoder.Update {
	u := &encoder.Update{
		Version: c.version,
		Size:    c.gen.Size(),
		Final:   final,
		Faces:   make([]encoder.FaceGrid, 0, len(faces)),
		Seams:   c.gen.Seams(),
	}
	for _, f := range faces {
		u.Faces = append(u.Faces, encoder.FaceGrid{Face: f, Cells: c.gen.Face(f)})
	}
	return u
}

// Version returns the number of updates published so far.
func (c *Cube) Version() int64 {
	c.Lock()
	defer c.Unlock()
	return c.version
}

// StateChan returns the state change channel.
func (c *Cube) StateChan() <-chan []byte {
	return c.stateChan
}

// EndChan returns the end channel for the cube.
func (c *Cube) EndChan() <-chan []byte {
	return c.endChan
}
