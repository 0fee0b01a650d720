package i

import (
	"time"
)

// CubeServer defines the interface for a running labyrinth cube.
type CubeServer interface {
	// Start carves the labyrinth on every tick until the duration elapses or
	// Stop is called.
	Start(duration, tick time.Duration)

	// Stop ends the cube; the final snapshot is sent on the end channel.
	Stop()

	// Act queues a viewer action for the cube loop.
	Act(action []byte) error

	// Snapshot returns every face of the cube, encoded.
	Snapshot() ([]byte, error)

	// StateChan returns the channel of encoded face updates.
	StateChan() <-chan []byte

	// EndChan returns the end channel for the cube.
	EndChan() <-chan []byte
}
