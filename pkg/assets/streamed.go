package assets

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrTruncatedStream is returned when a streamed clip ends inside a frame.
var ErrTruncatedStream = errors.New("truncated streamed clip")

// StreamedClip holds the streamed segment as the engine stores it: a packed
// array of 32-bit words.
type StreamedClip struct {
	Data       []uint32
	CurveCount uint32
}

// StreamedCurveKey is one curve sample of a streamed frame.
type StreamedCurveKey struct {
	Index int32
	// Coeff holds the cubic segment coefficients; Coeff[3] is the value.
	Coeff [4]float32
}

// Value returns the sampled curve value.
func (k StreamedCurveKey) Value() float32 { return k.Coeff[3] }

// StreamedFrame lists the curve samples taken at Time.
type StreamedFrame struct {
	Time float32
	Keys []StreamedCurveKey
}

// ReadFrames decodes every frame of the stream. The words are reinterpreted
// as little-endian bytes; each frame is a float32 time, an int32 key count,
// then per key an int32 curve index and four float32 coefficients.
func (c *StreamedClip) ReadFrames() ([]StreamedFrame, error) {
	buf := make([]byte, len(c.Data)*4)
	for i, w := range c.Data {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}

	r := bytes.NewReader(buf)
	var frames []StreamedFrame
	for r.Len() > 0 {
		var hdr struct {
			Time    float32
			NumKeys int32
		}
		if err := binary.Read(r, binary.LittleEndian, &hdr); err != nil {
			return frames, fmt.Errorf("frame %d header: %w", len(frames), ErrTruncatedStream)
		}
		if hdr.NumKeys < 0 || int64(hdr.NumKeys)*20 > int64(r.Len()) {
			return frames, fmt.Errorf("frame %d: %d keys: %w", len(frames), hdr.NumKeys, ErrTruncatedStream)
		}
		frame := StreamedFrame{Time: hdr.Time, Keys: make([]StreamedCurveKey, hdr.NumKeys)}
		if err := binary.Read(r, binary.LittleEndian, frame.Keys); err != nil {
			return frames, fmt.Errorf("frame %d keys: %w", len(frames), ErrTruncatedStream)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
