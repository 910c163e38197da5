package assets

import "github.com/go-gl/mathgl/mgl32"

// Keyframe is one sample of an explicit curve.
type Keyframe[T any] struct {
	Time     float32
	Value    T
	InSlope  T
	OutSlope T
}

// AnimationClip is either a legacy clip with explicit per-channel curves or
// a generic clip whose samples live in MuscleClip.
type AnimationClip struct {
	Name       string
	Legacy     bool
	SampleRate float32

	CompressedRotationCurves []CompressedAnimationCurve
	RotationCurves           []QuaternionCurve
	PositionCurves           []Vector3Curve
	ScaleCurves              []Vector3Curve
	// EulerCurves is nil for clips from engine versions without them.
	EulerCurves []Vector3Curve
	FloatCurves []FloatCurve

	MuscleClip *ClipMuscleConstant
	Bindings   *AnimationClipBindingConstant
}

// CompressedAnimationCurve stores a rotation curve as packed key times and
// packed quaternions.
type CompressedAnimationCurve struct {
	Path   string
	Times  PackedIntVector
	Values PackedQuatVector
}

// QuaternionCurve animates a rotation.
type QuaternionCurve struct {
	Path  string
	Curve []Keyframe[mgl32.Quat]
}

// Vector3Curve animates a position, scale or Euler rotation.
type Vector3Curve struct {
	Path  string
	Curve []Keyframe[mgl32.Vec3]
}

// FloatCurve animates a single property of a component.
type FloatCurve struct {
	Path      string
	Attribute string
	ClassID   ClassID
	Curve     []Keyframe[float32]
}

// ClipMuscleConstant wraps the generic clip payload.
type ClipMuscleConstant struct {
	StartTime float32
	StopTime  float32
	Clip      Clip
}

// Clip splits the generic curve space into three segments. Curve indices
// number the streamed curves first, then the dense ones, then the constant
// ones.
type Clip struct {
	Streamed StreamedClip
	Dense    DenseClip
	// Constant is nil when the clip has no constant curves.
	Constant *ConstantClip
	// ValueArray describes every curve in index order. It stands in for
	// the binding table of clips that carry none.
	ValueArray []ValueConstant
}

// ValueConstant describes one curve of the value array. TypeID is the
// CRC-32 of the first component name of a transform property, so a
// vector or quaternion starts with one entry per component.
type ValueConstant struct {
	ID     uint32
	TypeID uint32
}

// Type ids of value array entries that start a transform property.
const (
	ValuePositionX   uint32 = 4174552735 // CRC-32 of "PositionX"
	ValueQuaternionX uint32 = 2211994246 // CRC-32 of "QuaternionX"
	ValueScaleX      uint32 = 1512518241 // CRC-32 of "ScaleX"
	ValueEulerX      uint32 = 2553337345 // CRC-32 of "EulerX"
)

// GenericBindings derives a binding table from the value array. Transform
// properties bind the path hash in ID; every other entry is a one-curve
// animator property named by ID.
func (c *Clip) GenericBindings() *AnimationClipBindingConstant {
	bc := &AnimationClipBindingConstant{}
	for i := 0; i < len(c.ValueArray); {
		v := c.ValueArray[i]
		b := GenericBinding{Path: v.ID, TypeID: ClassTransform}
		switch v.TypeID {
		case ValuePositionX:
			b.Attribute = BindTransformPosition
		case ValueQuaternionX:
			b.Attribute = BindTransformRotation
		case ValueScaleX:
			b.Attribute = BindTransformScale
		case ValueEulerX:
			b.Attribute = BindTransformEuler
		default:
			b = GenericBinding{Attribute: v.ID, TypeID: ClassAnimator}
		}
		bc.GenericBindings = append(bc.GenericBindings, b)
		i += b.Width()
	}
	return bc
}

// DenseClip samples every curve at a fixed rate.
type DenseClip struct {
	FrameCount  int32
	CurveCount  uint32
	SampleRate  float32
	BeginTime   float32
	SampleArray []float32
}

// ConstantClip holds curves whose value never changes.
type ConstantClip struct {
	Data []float32
}

// GenericBinding maps a run of curves to the property it animates.
type GenericBinding struct {
	// Path is the CRC-32 of the target's path relative to the animator root.
	Path uint32
	// Attribute is a transform attribute code, or the CRC-32 of a property
	// name for other classes.
	Attribute   uint32
	TypeID      ClassID
	CustomType  uint8
	IsPPtrCurve bool
}

// Transform attribute codes.
const (
	BindTransformPosition uint32 = 1
	BindTransformRotation uint32 = 2
	BindTransformScale    uint32 = 3
	BindTransformEuler    uint32 = 4
)

// AnimationClipBindingConstant is the binding table of a generic clip.
type AnimationClipBindingConstant struct {
	GenericBindings []GenericBinding
}

// Width returns how many consecutive curves b occupies.
func (b GenericBinding) Width() int {
	if b.TypeID != ClassTransform {
		return 1
	}
	switch b.Attribute {
	case BindTransformPosition, BindTransformScale, BindTransformEuler:
		return 3
	case BindTransformRotation:
		return 4
	default:
		return 1
	}
}

// FindBinding returns the binding that owns curve index, walking the table
// and accumulating curve widths. It returns false when index lies past the
// last binding.
func (c *AnimationClipBindingConstant) FindBinding(index int) (GenericBinding, bool) {
	if c == nil || index < 0 {
		return GenericBinding{}, false
	}
	curves := 0
	for _, b := range c.GenericBindings {
		curves += b.Width()
		if curves > index {
			return b, true
		}
	}
	return GenericBinding{}, false
}
