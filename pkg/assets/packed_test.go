package assets

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// bitWriter packs LSB-first bit fields, mirroring bitReader.
type bitWriter struct {
	data   []byte
	bitPos int
}

func (w *bitWriter) write(v uint32, size int) {
	for i := 0; i < size; i++ {
		if w.bitPos == 0 {
			w.data = append(w.data, 0)
		}
		if v&(1<<i) != 0 {
			w.data[len(w.data)-1] |= 1 << w.bitPos
		}
		w.bitPos = (w.bitPos + 1) % 8
	}
}

func quantize(c float32, size int) uint32 {
	steps := float64(uint32(1)<<size - 1)
	return uint32(gomath.Round((float64(c) + 1) * 0.5 * steps))
}

// packQuat encodes q dropping component drop (0=x .. 3=w).
func packQuat(w *bitWriter, q mgl32.Quat, drop int) {
	c := [4]float32{q.V[0], q.V[1], q.V[2], q.W}
	flags := uint32(drop)
	if c[drop] < 0 {
		flags |= 4
	}
	w.write(flags, 3)
	for j := 0; j < 4; j++ {
		if j == drop {
			continue
		}
		size := 10
		if (drop+1)%4 == j {
			size = 9
		}
		w.write(quantize(c[j], size), size)
	}
}

func TestUnpackInts(t *testing.T) {
	tests := []struct {
		name    string
		bitSize uint8
		values  []uint32
	}{
		{"3 bit", 3, []uint32{1, 2, 3, 7, 0, 5}},
		{"byte aligned", 8, []uint32{0, 255, 17}},
		{"crossing bytes", 12, []uint32{4095, 1, 2048, 300}},
		{"single bits", 1, []uint32{1, 0, 1, 1, 0, 0, 0, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w bitWriter
			for _, v := range tt.values {
				w.write(v, int(tt.bitSize))
			}
			vec := PackedIntVector{NumItems: uint32(len(tt.values)), BitSize: tt.bitSize, Data: w.data}

			got := vec.UnpackInts()
			if len(got) != len(tt.values) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.values))
			}
			for i, want := range tt.values {
				if got[i] != int32(want) {
					t.Errorf("item %d = %d, want %d", i, got[i], want)
				}
			}
		})
	}
}

func TestUnpackIntsZeroBitSize(t *testing.T) {
	vec := PackedIntVector{NumItems: 3}
	got := vec.UnpackInts()
	if len(got) != 3 || got[0] != 0 || got[2] != 0 {
		t.Errorf("UnpackInts() = %v, want three zeros", got)
	}
}

func TestUnpackIntsShortData(t *testing.T) {
	vec := PackedIntVector{NumItems: 4, BitSize: 8, Data: []byte{9}}
	got := vec.UnpackInts()
	if got[0] != 9 || got[3] != 0 {
		t.Errorf("UnpackInts() = %v, want [9 0 0 0]", got)
	}
}

func quatClose(a, b mgl32.Quat, eps float32) bool {
	return mgl32.Abs(a.W-b.W) <= eps &&
		mgl32.Abs(a.V[0]-b.V[0]) <= eps &&
		mgl32.Abs(a.V[1]-b.V[1]) <= eps &&
		mgl32.Abs(a.V[2]-b.V[2]) <= eps
}

func TestUnpackQuats(t *testing.T) {
	s := float32(gomath.Sqrt2 / 2)
	tests := []struct {
		name string
		q    mgl32.Quat
		drop int
	}{
		{"identity drop w", mgl32.QuatIdent(), 3},
		{"90 about Y drop w", mgl32.Quat{W: s, V: mgl32.Vec3{0, s, 0}}, 3},
		{"negative dropped y", mgl32.Quat{W: 0, V: mgl32.Vec3{0, -1, 0}}, 1},
		{"drop x", mgl32.Quat{W: 0.5, V: mgl32.Vec3{0.5, -0.5, 0.5}}, 0},
		{"drop z", mgl32.Quat{W: 0.1, V: mgl32.Vec3{0.3, 0.2, -0.927}}.Normalize(), 2},
	}

	var w bitWriter
	for _, tt := range tests {
		packQuat(&w, tt.q, tt.drop)
	}
	vec := PackedQuatVector{NumItems: uint32(len(tests)), Data: w.data}
	got := vec.UnpackQuats()

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !quatClose(got[i], tt.q, 0.01) {
				t.Errorf("UnpackQuats()[%d] = %v, want %v", i, got[i], tt.q)
			}
		})
	}
}

func TestUnpackQuatsClampsOverflow(t *testing.T) {
	// All three stored components at +1 sum past 1; the dropped one must
	// come back as zero, not NaN.
	var w bitWriter
	w.write(3, 3)
	w.write(511, 9)
	w.write(1023, 10)
	w.write(1023, 10)
	vec := PackedQuatVector{NumItems: 1, Data: w.data}

	got := vec.UnpackQuats()[0]
	if gomath.IsNaN(float64(got.W)) || got.W != 0 {
		t.Errorf("W = %v, want 0", got.W)
	}
}
