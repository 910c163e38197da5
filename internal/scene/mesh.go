package scene

import "github.com/go-gl/mathgl/mgl32"

// UVChannels is the number of texture coordinate sets a vertex carries.
const UVChannels = 8

// Vertex is one converted mesh vertex.
type Vertex struct {
	Position    mgl32.Vec3
	Normal      mgl32.Vec3
	UV          [UVChannels]mgl32.Vec2
	Tangent     mgl32.Vec4
	Color       mgl32.Vec4
	BoneIndices [4]int32
	Weights     [4]float32
}

// Face holds three vertex indices local to the submesh's base vertex.
type Face [3]int

// Submesh is a face list drawn with one material.
type Submesh struct {
	Material   string
	BaseVertex int
	Faces      []Face
}

// Bone binds a frame path to its inverse bind matrix.
type Bone struct {
	Path   string
	Matrix mgl32.Mat4
}

// Mesh is the geometry attached to the frame at Path. The Has* flags tell
// which optional vertex attributes are meaningful.
type Mesh struct {
	Path      string
	Vertices  []Vertex
	Submeshes []Submesh
	// Bones is nil for unskinned meshes.
	Bones []Bone

	HasNormal  bool
	HasUV      [UVChannels]bool
	HasTangent bool
	HasColor   bool
	HasSkin    bool
}

// MorphVertex is a displaced copy of base vertex Index.
type MorphVertex struct {
	Index    uint32
	Position mgl32.Vec3
	Normal   mgl32.Vec3
	Tangent  mgl32.Vec4
}

// MorphKeyframe is one blend shape frame at Weight.
type MorphKeyframe struct {
	Weight      float32
	HasNormals  bool
	HasTangents bool
	Vertices    []MorphVertex
}

// MorphChannel is a named blend shape.
type MorphChannel struct {
	Name      string
	Keyframes []MorphKeyframe
}

// Morph lists the blend shapes of the mesh at Path.
type Morph struct {
	Path     string
	Channels []MorphChannel
}
