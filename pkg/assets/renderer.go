package assets

// Renderer is implemented by *MeshRenderer and *SkinnedMeshRenderer.
// The set is closed; consumers switch on the concrete type.
type Renderer interface {
	Base() *RendererBase
	isRenderer()
}

// StaticBatchInfo describes the submesh range a statically batched renderer
// draws from a combined mesh.
type StaticBatchInfo struct {
	FirstSubMesh uint16
	SubMeshCount uint16
}

// RendererBase holds the fields shared by all renderers.
type RendererBase struct {
	GameObject *GameObject
	// Materials are indexed by submesh slot; entries may be nil.
	Materials []*Material

	// StaticBatch is nil when the renderer is not statically batched.
	StaticBatch *StaticBatchInfo
	// SubsetIndices is the pre-5.5 static batching submesh list.
	SubsetIndices []uint32
}

// MeshRenderer draws the mesh of its game object's MeshFilter.
type MeshRenderer struct {
	RendererBase
}

// Base returns the shared renderer fields.
func (r *MeshRenderer) Base() *RendererBase { return &r.RendererBase }

func (*MeshRenderer) isRenderer() {}

// SkinnedMeshRenderer draws a skinned mesh deformed by bone transforms.
type SkinnedMeshRenderer struct {
	RendererBase
	Mesh *Mesh
	// Bones are parallel to Mesh.BindPose; entries may be nil when the
	// referenced transform was stripped.
	Bones []*Transform
}

// Base returns the shared renderer fields.
func (r *SkinnedMeshRenderer) Base() *RendererBase { return &r.RendererBase }

func (*SkinnedMeshRenderer) isRenderer() {}

var (
	_ Renderer = (*MeshRenderer)(nil)
	_ Renderer = (*SkinnedMeshRenderer)(nil)
)
