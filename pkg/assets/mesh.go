package assets

import "github.com/go-gl/mathgl/mgl32"

// MaxUVChannels is the number of texture coordinate channels a mesh can carry.
const MaxUVChannels = 8

// SubMesh is a contiguous index range drawn with one material.
type SubMesh struct {
	FirstByte   uint32
	IndexCount  uint32
	FirstVertex uint32
	VertexCount uint32
}

// BoneWeights4 holds up to four bone influences of one vertex.
type BoneWeights4 struct {
	Weight    [4]float32
	BoneIndex [4]int32
}

// Mesh is a decoded mesh with flat attribute arrays.
type Mesh struct {
	Name        string
	VertexCount int

	SubMeshes []SubMesh
	// Indices is the triangle index buffer shared by all submeshes.
	Indices []uint32

	// Vertices holds 3 or 4 floats per vertex.
	Vertices []float32
	Normals  []float32
	Tangents []float32
	Colors   []float32
	// UV holds up to MaxUVChannels channels of 2 or 3 floats per vertex.
	UV   [MaxUVChannels][]float32
	Skin []BoneWeights4

	BindPose       []mgl32.Mat4
	BoneNameHashes []uint32

	// Shapes is nil when the mesh has no blend shapes.
	Shapes *BlendShapeData
}

// GetUV returns UV channel i, or nil when absent or out of range.
func (m *Mesh) GetUV(i int) []float32 {
	if i < 0 || i >= MaxUVChannels {
		return nil
	}
	return m.UV[i]
}

// BlendShapeVertex is one displaced vertex of a blend shape frame.
type BlendShapeVertex struct {
	Vertex  mgl32.Vec3
	Normal  mgl32.Vec3
	Tangent mgl32.Vec3
	Index   uint32
}

// BlendShape is one frame of a channel: a range into BlendShapeData.Vertices.
type BlendShape struct {
	FirstVertex uint32
	VertexCount uint32
	HasNormals  bool
	HasTangents bool
}

// BlendShapeChannel names a run of frames in BlendShapeData.Shapes.
type BlendShapeChannel struct {
	Name       string
	NameHash   uint32
	FrameIndex int
	FrameCount int
}

// BlendShapeData stores all blend shapes of a mesh.
type BlendShapeData struct {
	Vertices    []BlendShapeVertex
	Shapes      []BlendShape
	Channels    []BlendShapeChannel
	FullWeights []float32
}
