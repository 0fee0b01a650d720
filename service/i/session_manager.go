package i

import (
	"github.com/google/uuid"
)

// SessionManager manages cube sessions and provides session-related information.
type SessionManager interface {
	// NewSession starts a cube watched by the given viewers and returns its ID.
	NewSession([]uuid.UUID) (uuid.UUID, error)

	StopAll()

	// SessionInfo returns the public key, socket address.
	SessionInfo(uuid.UUID) ([]byte, string, error)

	// Snapshot returns the encoded state of every face of a session.
	Snapshot(uuid.UUID) ([]byte, error)
}
