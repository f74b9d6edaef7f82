package points

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrBadFrame is returned when a binary frame cannot be decoded.
var ErrBadFrame = errors.New("points: malformed frame")

// Transform is the group transform applied on top of point positions:
// pointer-driven rotation, offset and scale.
type Transform struct {
	RotationX float64 `json:"rotationX"`
	RotationY float64 `json:"rotationY"`
	RotationZ float64 `json:"rotationZ"`
	OffsetX   float64 `json:"offsetX"`
	OffsetY   float64 `json:"offsetY"`
	Scale     float64 `json:"scale"`
}

// IdentityTransform leaves points where they are.
func IdentityTransform() Transform {
	return Transform{Scale: 1}
}

// Snapshot is a read-only copy of the cloud for a renderer.
// Positions and Colors are flat xyz / rgb triples.
type Snapshot struct {
	State     string    `json:"state"`
	Size      float32   `json:"size"`
	Scale     float32   `json:"scale"`
	Transform Transform `json:"transform"`
	Positions []float32 `json:"positions"`
	Colors    []float32 `json:"colors"`
}

// Len returns the number of points in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.Positions) / 3
}

// Snapshot copies the cloud into a new Snapshot.
func (c *Cloud) Snapshot() *Snapshot {
	s := &Snapshot{}
	c.SnapshotInto(s)
	return s
}

// SnapshotInto copies positions and colors into s, reusing its buffers when
// they are large enough.
func (c *Cloud) SnapshotInto(s *Snapshot) {
	n := c.Len() * 3
	if cap(s.Positions) < n {
		s.Positions = make([]float32, n)
	}
	if cap(s.Colors) < n {
		s.Colors = make([]float32, n)
	}
	s.Positions = s.Positions[:n]
	s.Colors = s.Colors[:n]

	for i, p := range c.positions {
		s.Positions[i*3] = float32(p[0])
		s.Positions[i*3+1] = float32(p[1])
		s.Positions[i*3+2] = float32(p[2])

		col := c.colors[i]
		s.Colors[i*3] = float32(col.R)
		s.Colors[i*3+1] = float32(col.G)
		s.Colors[i*3+2] = float32(col.B)
	}
}

// Frame wire format, little-endian:
// [4 magic "SOUL"][4 N][4 size][4 scale][6x4 transform][3N x4 positions][3N x4 colors]
const (
	frameMagic      = "SOUL"
	frameHeaderSize = 4 + 4 + 4 + 4 + 6*4
)

// EncodeFrame serializes a snapshot for the frame stream.
func EncodeFrame(s *Snapshot) []byte {
	n := s.Len()
	buf := make([]byte, frameHeaderSize+n*3*4*2)

	copy(buf[0:4], frameMagic)
	binary.LittleEndian.PutUint32(buf[4:8], uint32(n))
	putFloat(buf[8:], s.Size)
	putFloat(buf[12:], s.Scale)

	tr := s.Transform
	for k, v := range []float64{tr.RotationX, tr.RotationY, tr.RotationZ, tr.OffsetX, tr.OffsetY, tr.Scale} {
		putFloat(buf[16+k*4:], float32(v))
	}

	off := frameHeaderSize
	for _, v := range s.Positions[:n*3] {
		putFloat(buf[off:], v)
		off += 4
	}
	for _, v := range s.Colors[:n*3] {
		putFloat(buf[off:], v)
		off += 4
	}
	return buf
}

// DecodeFrame parses a frame produced by EncodeFrame. State is not carried
// on the wire.
func DecodeFrame(data []byte) (*Snapshot, error) {
	if len(data) < frameHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrBadFrame, len(data))
	}
	if string(data[0:4]) != frameMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrBadFrame, data[0:4])
	}

	n := int(binary.LittleEndian.Uint32(data[4:8]))
	expected := frameHeaderSize + n*3*4*2
	if len(data) != expected {
		return nil, fmt.Errorf("%w: got %d bytes, need %d", ErrBadFrame, len(data), expected)
	}

	s := &Snapshot{
		Size:  getFloat(data[8:]),
		Scale: getFloat(data[12:]),
		Transform: Transform{
			RotationX: float64(getFloat(data[16:])),
			RotationY: float64(getFloat(data[20:])),
			RotationZ: float64(getFloat(data[24:])),
			OffsetX:   float64(getFloat(data[28:])),
			OffsetY:   float64(getFloat(data[32:])),
			Scale:     float64(getFloat(data[36:])),
		},
		Positions: make([]float32, n*3),
		Colors:    make([]float32, n*3),
	}

	off := frameHeaderSize
	for i := range s.Positions {
		s.Positions[i] = getFloat(data[off:])
		off += 4
	}
	for i := range s.Colors {
		s.Colors[i] = getFloat(data[off:])
		off += 4
	}
	return s, nil
}

func putFloat(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
