package assets

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// PackedIntVector stores NumItems unsigned integers of BitSize bits each,
// packed LSB-first across Data.
type PackedIntVector struct {
	NumItems uint32
	BitSize  uint8
	Data     []byte
}

// PackedQuatVector stores NumItems quaternions with the largest component
// dropped and the others quantized to 9 or 10 bits.
type PackedQuatVector struct {
	NumItems uint32
	Data     []byte
}

// bitReader reads LSB-first bit fields. Reads past the end of data yield
// zero bits.
type bitReader struct {
	data   []byte
	index  int
	bitPos int
}

func (r *bitReader) read(size int) uint32 {
	var v uint32
	bits := 0
	for bits < size {
		var b byte
		if r.index < len(r.data) {
			b = r.data[r.index]
		}
		v |= uint32(b>>r.bitPos) << bits
		n := min(size-bits, 8-r.bitPos)
		r.bitPos += n
		bits += n
		if r.bitPos == 8 {
			r.index++
			r.bitPos = 0
		}
	}
	return v & (1<<size - 1)
}

// UnpackInts decodes all items.
func (v *PackedIntVector) UnpackInts() []int32 {
	out := make([]int32, v.NumItems)
	if v.BitSize == 0 {
		return out
	}
	r := bitReader{data: v.Data}
	for i := range out {
		out[i] = int32(r.read(int(v.BitSize)))
	}
	return out
}

// UnpackQuats decodes all items. Each item starts with 3 flag bits: the low
// two select the dropped component (x, y, z, w) and the third negates it.
func (v *PackedQuatVector) UnpackQuats() []mgl32.Quat {
	out := make([]mgl32.Quat, v.NumItems)
	r := bitReader{data: v.Data}
	for i := range out {
		flags := r.read(3)
		dropped := int(flags & 3)

		var c [4]float32
		var sum float32
		for j := 0; j < 4; j++ {
			if j == dropped {
				continue
			}
			size := 10
			if (dropped+1)%4 == j {
				size = 9
			}
			x := r.read(size)
			c[j] = float32(x)/(0.5*float32(uint32(1)<<size-1)) - 1
			sum += c[j] * c[j]
		}
		c[dropped] = float32(gomath.Sqrt(gomath.Max(0, float64(1-sum))))
		if flags&4 != 0 {
			c[dropped] = -c[dropped]
		}
		out[i] = mgl32.Quat{W: c[3], V: mgl32.Vec3{c[0], c[1], c[2]}}
	}
	return out
}
