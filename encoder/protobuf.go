// Package encoder serializes labyrinth face updates for the wire.
//
// Updates are encoded as protobuf messages written field by field with
// protowire:
//
//	message Update {
//	  int64    version = 1;
//	  uint32   size    = 2;
//	  bool     final   = 3;
//	  repeated FaceGrid faces = 4;
//	  repeated Seam     seams = 5;
//	}
//	message FaceGrid { uint32 face = 1; bytes cells = 2; } // bit per cell, 1 = path
//	message Seam     { uint32 face = 1; uint32 x = 2; uint32 y = 3; }
package encoder

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-labyrinth/labyrinth"
	"google.golang.org/protobuf/encoding/protowire"
)

// Encoding errors.
var (
	ErrMalformed = errors.New("malformed update")
	ErrGridShape = errors.New("face grid does not match update size")
)

const (
	updateVersion protowire.Number = 1
	updateSize    protowire.Number = 2
	updateFinal   protowire.Number = 3
	updateFaces   protowire.Number = 4
	updateSeams   protowire.Number = 5

	faceID    protowire.Number = 1
	faceCells protowire.Number = 2

	seamFace protowire.Number = 1
	seamX    protowire.Number = 2
	seamY    protowire.Number = 3

	// Bounds on the decoded face size. The lower one matches the generator.
	minSize = 5
	maxSize = 1 << 12
)

// FaceGrid is the full content of one face, indexed [y][x].
type FaceGrid struct {
	Face  labyrinth.Face
	Cells [][]labyrinth.State
}

// Update carries the faces that changed since the previous update, or every
// face for a snapshot.
type Update struct {
	Version int64
	Size    int
	Final   bool // last update of a session
	Faces   []FaceGrid
	Seams   []labyrinth.Cell
}

// Protobuf encodes updates in protobuf wire format.
type Protobuf struct{}

// MarshalUpdate encodes u.
func (p *Protobuf) MarshalUpdate(u *Update) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, updateVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(u.Version))
	b = protowire.AppendTag(b, updateSize, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(u.Size))
	if u.Final {
		b = protowire.AppendTag(b, updateFinal, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}

	for _, fg := range u.Faces {
		cells, err := pack(fg.Cells, u.Size)
		if err != nil {
			return nil, fmt.Errorf("face %s: %w", fg.Face, err)
		}
		var m []byte
		m = protowire.AppendTag(m, faceID, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(fg.Face))
		m = protowire.AppendTag(m, faceCells, protowire.BytesType)
		m = protowire.AppendBytes(m, cells)

		b = protowire.AppendTag(b, updateFaces, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}

	for _, c := range u.Seams {
		var m []byte
		m = protowire.AppendTag(m, seamFace, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(c.Face))
		m = protowire.AppendTag(m, seamX, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(c.X))
		m = protowire.AppendTag(m, seamY, protowire.VarintType)
		m = protowire.AppendVarint(m, uint64(c.Y))

		b = protowire.AppendTag(b, updateSeams, protowire.BytesType)
		b = protowire.AppendBytes(b, m)
	}
	return b, nil
}

// UnmarshalUpdate decodes an update produced by MarshalUpdate. Unknown
// fields are skipped.
func (p *Protobuf) UnmarshalUpdate(b []byte) (*Update, error) {
	u := &Update{}
	var faces [][]byte

	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == updateVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			u.Version = int64(v)
			return n, nil
		case num == updateSize && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			u.Size = int(min(v, maxSize+1))
			return n, nil
		case num == updateFinal && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			u.Final = protowire.DecodeBool(v)
			return n, nil
		case num == updateFaces && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			faces = append(faces, v)
			return n, nil
		case num == updateSeams && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return n, nil
			}
			c, err := unmarshalSeam(v)
			if err != nil {
				return 0, err
			}
			u.Seams = append(u.Seams, c)
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return nil, err
	}
	if u.Size < minSize || u.Size > maxSize {
		return nil, fmt.Errorf("%w: size %d", ErrMalformed, u.Size)
	}
	for _, c := range u.Seams {
		if !validFace(c.Face) || c.X < 0 || c.X >= u.Size || c.Y < 0 || c.Y >= u.Size {
			return nil, fmt.Errorf("%w: seam %s", ErrMalformed, c)
		}
	}

	// Faces are decoded last since unpacking needs the size.
	for _, m := range faces {
		fg, err := unmarshalFace(m, u.Size)
		if err != nil {
			return nil, err
		}
		u.Faces = append(u.Faces, fg)
	}
	return u, nil
}

func unmarshalFace(b []byte, size int) (FaceGrid, error) {
	var fg FaceGrid
	var cells []byte
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch {
		case num == faceID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			fg.Face = labyrinth.Face(min(v, 255))
			return n, nil
		case num == faceCells && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			cells = v
			return n, nil
		}
		return protowire.ConsumeFieldValue(num, typ, b), nil
	})
	if err != nil {
		return fg, err
	}
	if !validFace(fg.Face) {
		return fg, fmt.Errorf("%w: face %d", ErrMalformed, fg.Face)
	}
	fg.Cells, err = unpack(cells, size)
	return fg, err
}

func unmarshalSeam(b []byte) (labyrinth.Cell, error) {
	var c labyrinth.Cell
	err := walk(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if typ != protowire.VarintType {
			return protowire.ConsumeFieldValue(num, typ, b), nil
		}
		v, n := protowire.ConsumeVarint(b)
		switch num {
		case seamFace:
			c.Face = labyrinth.Face(v)
		case seamX:
			c.X = int(v)
		case seamY:
			c.Y = int(v)
		}
		return n, nil
	})
	return c, err
}

func validFace(f labyrinth.Face) bool {
	return f >= labyrinth.PosX && f <= labyrinth.NegZ
}

// walk calls field for every tag in b. field consumes the value that follows
// the tag and returns its length, negative on a protowire parse error.
func walk(b []byte, field func(protowire.Number, protowire.Type, []byte) (int, error)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]

		n, err := field(num, typ, b)
		if err != nil {
			return err
		}
		if n < 0 {
			return fmt.Errorf("%w: field %d: %v", ErrMalformed, num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

// pack stores one bit per cell, row-major, least significant bit first.
func pack(cells [][]labyrinth.State, size int) ([]byte, error) {
	if len(cells) != size {
		return nil, ErrGridShape
	}
	out := make([]byte, (size*size+7)/8)
	for y, row := range cells {
		if len(row) != size {
			return nil, ErrGridShape
		}
		for x, s := range row {
			if s == labyrinth.Path {
				i := y*size + x
				out[i/8] |= 1 << (i % 8)
			}
		}
	}
	return out, nil
}

func unpack(b []byte, size int) ([][]labyrinth.State, error) {
	if len(b) != (size*size+7)/8 {
		return nil, fmt.Errorf("%w: %d bytes for a %dx%d face", ErrMalformed, len(b), size, size)
	}
	cells := make([][]labyrinth.State, size)
	for y := range cells {
		cells[y] = make([]labyrinth.State, size)
		for x := range cells[y] {
			i := y*size + x
			if b[i/8]&(1<<(i%8)) != 0 {
				cells[y][x] = labyrinth.Path
			}
		}
	}
	return cells, nil
}
