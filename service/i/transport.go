package i

import (
	"github.com/beka-birhanu/vinom-labyrinth/encoder"
	"github.com/google/uuid"
)

// Logger is the subset of the vinom logger the services use.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}

// Publisher delivers encoded cube records to viewers.
type Publisher interface {
	PublishState(viewers []uuid.UUID, payload []byte)
	PublishEnd(viewers []uuid.UUID, payload []byte)
}

// Endpoint describes where viewers reach the socket.
type Endpoint interface {
	GetPublicKey() []byte
	GetAddr() string
}

// CubeEncoder serializes face updates.
type CubeEncoder interface {
	MarshalUpdate(*encoder.Update) ([]byte, error)
}
