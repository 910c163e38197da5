package snapshot

// Document is the on-disk form of a snapshot: flat object lists that refer
// to each other by integer id. Id 0 is the null reference.
type Document struct {
	Name  string  `yaml:"name"`
	Roots []int64 `yaml:"roots,omitempty"`

	GameObjects          []GameObjectDoc `yaml:"gameObjects"`
	Transforms           []TransformDoc  `yaml:"transforms"`
	MeshFilters          []MeshFilterDoc `yaml:"meshFilters,omitempty"`
	MeshRenderers        []RendererDoc   `yaml:"meshRenderers,omitempty"`
	SkinnedMeshRenderers []RendererDoc   `yaml:"skinnedMeshRenderers,omitempty"`
	Meshes               []MeshDoc       `yaml:"meshes,omitempty"`
	Materials            []MaterialDoc   `yaml:"materials,omitempty"`
	Textures             []TextureDoc    `yaml:"textures,omitempty"`
	Avatars              []AvatarDoc     `yaml:"avatars,omitempty"`
	Animators            []AnimatorDoc   `yaml:"animators,omitempty"`
	Controllers          []ControllerDoc `yaml:"controllers,omitempty"`
	Animations           []AnimationDoc  `yaml:"animations,omitempty"`
	Clips                []ClipDoc       `yaml:"clips,omitempty"`
}

type GameObjectDoc struct {
	ID                  int64  `yaml:"id"`
	Name                string `yaml:"name"`
	Transform           int64  `yaml:"transform"`
	MeshFilter          int64  `yaml:"meshFilter,omitempty"`
	MeshRenderer        int64  `yaml:"meshRenderer,omitempty"`
	SkinnedMeshRenderer int64  `yaml:"skinnedMeshRenderer,omitempty"`
	Animator            int64  `yaml:"animator,omitempty"`
	Animation           int64  `yaml:"animation,omitempty"`
}

type TransformDoc struct {
	ID         int64      `yaml:"id"`
	GameObject int64      `yaml:"gameObject"`
	Father     int64      `yaml:"father,omitempty"`
	Children   []int64    `yaml:"children,omitempty"`
	Position   [3]float32 `yaml:"position"`
	// Rotation is x, y, z, w. An all-zero rotation means identity.
	Rotation [4]float32  `yaml:"rotation"`
	Scale    *[3]float32 `yaml:"scale,omitempty"`
}

type MeshFilterDoc struct {
	ID         int64 `yaml:"id"`
	GameObject int64 `yaml:"gameObject"`
	Mesh       int64 `yaml:"mesh"`
}

type StaticBatchDoc struct {
	FirstSubMesh uint16 `yaml:"firstSubMesh"`
	SubMeshCount uint16 `yaml:"subMeshCount"`
}

// RendererDoc describes both renderer kinds. Mesh and Bones are only read for
// skinned mesh renderers.
type RendererDoc struct {
	ID            int64           `yaml:"id"`
	GameObject    int64           `yaml:"gameObject"`
	Materials     []int64         `yaml:"materials,omitempty"`
	StaticBatch   *StaticBatchDoc `yaml:"staticBatch,omitempty"`
	SubsetIndices []uint32        `yaml:"subsetIndices,omitempty"`
	Mesh          int64           `yaml:"mesh,omitempty"`
	Bones         []int64         `yaml:"bones,omitempty"`
}

type SubMeshDoc struct {
	FirstByte   uint32 `yaml:"firstByte"`
	IndexCount  uint32 `yaml:"indexCount"`
	FirstVertex uint32 `yaml:"firstVertex"`
	VertexCount uint32 `yaml:"vertexCount"`
}

type BoneWeightDoc struct {
	Weights [4]float32 `yaml:"weights"`
	Bones   [4]int32   `yaml:"bones"`
}

type MeshDoc struct {
	ID             int64           `yaml:"id"`
	Name           string          `yaml:"name"`
	VertexCount    int             `yaml:"vertexCount"`
	SubMeshes      []SubMeshDoc    `yaml:"subMeshes"`
	Indices        []uint32        `yaml:"indices"`
	Vertices       []float32       `yaml:"vertices"`
	Normals        []float32       `yaml:"normals,omitempty"`
	Tangents       []float32       `yaml:"tangents,omitempty"`
	Colors         []float32       `yaml:"colors,omitempty"`
	UV             [][]float32     `yaml:"uv,omitempty"`
	Skin           []BoneWeightDoc `yaml:"skin,omitempty"`
	BindPose       [][16]float32   `yaml:"bindPose,omitempty"`
	BoneNameHashes []uint32        `yaml:"boneNameHashes,omitempty"`
	Shapes         *BlendShapesDoc `yaml:"shapes,omitempty"`
}

type BlendShapeVertexDoc struct {
	Vertex  [3]float32 `yaml:"vertex"`
	Normal  [3]float32 `yaml:"normal,omitempty"`
	Tangent [3]float32 `yaml:"tangent,omitempty"`
	Index   uint32     `yaml:"index"`
}

type BlendShapeDoc struct {
	FirstVertex uint32 `yaml:"firstVertex"`
	VertexCount uint32 `yaml:"vertexCount"`
	HasNormals  bool   `yaml:"hasNormals,omitempty"`
	HasTangents bool   `yaml:"hasTangents,omitempty"`
}

type BlendShapeChannelDoc struct {
	Name       string `yaml:"name"`
	NameHash   uint32 `yaml:"nameHash,omitempty"`
	FrameIndex int    `yaml:"frameIndex"`
	FrameCount int    `yaml:"frameCount"`
}

type BlendShapesDoc struct {
	Vertices    []BlendShapeVertexDoc  `yaml:"vertices"`
	Shapes      []BlendShapeDoc        `yaml:"shapes"`
	Channels    []BlendShapeChannelDoc `yaml:"channels"`
	FullWeights []float32              `yaml:"fullWeights"`
}

type TexEnvDoc struct {
	Key     string      `yaml:"key"`
	Texture int64       `yaml:"texture"`
	Offset  [2]float32  `yaml:"offset,omitempty"`
	Scale   *[2]float32 `yaml:"scale,omitempty"`
}

type FloatDoc struct {
	Key   string  `yaml:"key"`
	Value float32 `yaml:"value"`
}

type ColorDoc struct {
	Key   string     `yaml:"key"`
	Value [4]float32 `yaml:"value"`
}

type MaterialDoc struct {
	ID       int64       `yaml:"id"`
	Name     string      `yaml:"name"`
	Textures []TexEnvDoc `yaml:"textures,omitempty"`
	Floats   []FloatDoc  `yaml:"floats,omitempty"`
	Colors   []ColorDoc  `yaml:"colors,omitempty"`
}

// TextureDoc is a texture. Class is empty or "Texture2D" for plain 2D
// textures. File is an image path relative to the snapshot.
type TextureDoc struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Class  string `yaml:"class,omitempty"`
	Width  int    `yaml:"width,omitempty"`
	Height int    `yaml:"height,omitempty"`
	File   string `yaml:"file,omitempty"`
}

type TOSEntryDoc struct {
	Hash uint32 `yaml:"hash"`
	Path string `yaml:"path"`
}

type XFormDoc struct {
	T [3]float32  `yaml:"t"`
	Q [4]float32  `yaml:"q"`
	S *[3]float32 `yaml:"s,omitempty"`
}

type AvatarDoc struct {
	ID          int64         `yaml:"id"`
	Name        string        `yaml:"name"`
	TOS         []TOSEntryDoc `yaml:"tos"`
	SkeletonIDs []uint32      `yaml:"skeleton"`
	DefaultPose []XFormDoc    `yaml:"defaultPose,omitempty"`
}

type AnimatorDoc struct {
	ID                    int64 `yaml:"id"`
	GameObject            int64 `yaml:"gameObject"`
	Avatar                int64 `yaml:"avatar,omitempty"`
	Controller            int64 `yaml:"controller,omitempty"`
	HasTransformHierarchy bool  `yaml:"hasTransformHierarchy"`
}

// ControllerDoc is an animator controller, or an override controller when
// Base is set.
type ControllerDoc struct {
	ID    int64   `yaml:"id"`
	Name  string  `yaml:"name"`
	Clips []int64 `yaml:"clips,omitempty"`
	Base  int64   `yaml:"base,omitempty"`
}

type AnimationDoc struct {
	ID         int64   `yaml:"id"`
	GameObject int64   `yaml:"gameObject"`
	Clips      []int64 `yaml:"clips"`
}

type KeyDoc[T any] struct {
	Time     float32 `yaml:"time"`
	Value    T       `yaml:"value"`
	InSlope  T       `yaml:"inSlope,omitempty"`
	OutSlope T       `yaml:"outSlope,omitempty"`
}

type QuatCurveDoc struct {
	Path string               `yaml:"path"`
	Keys []KeyDoc[[4]float32] `yaml:"keys"`
}

type Vec3CurveDoc struct {
	Path string               `yaml:"path"`
	Keys []KeyDoc[[3]float32] `yaml:"keys"`
}

type FloatCurveDoc struct {
	Path      string            `yaml:"path"`
	Attribute string            `yaml:"attribute"`
	ClassID   int32             `yaml:"classID"`
	Keys      []KeyDoc[float32] `yaml:"keys"`
}

type PackedIntsDoc struct {
	NumItems uint32 `yaml:"numItems"`
	BitSize  uint8  `yaml:"bitSize"`
	Data     []byte `yaml:"data"`
}

type PackedQuatsDoc struct {
	NumItems uint32 `yaml:"numItems"`
	Data     []byte `yaml:"data"`
}

type CompressedCurveDoc struct {
	Path   string         `yaml:"path"`
	Times  PackedIntsDoc  `yaml:"times"`
	Values PackedQuatsDoc `yaml:"values"`
}

type StreamedDoc struct {
	Data       []uint32 `yaml:"data,omitempty"`
	CurveCount uint32   `yaml:"curveCount"`
}

type DenseDoc struct {
	FrameCount int32     `yaml:"frameCount"`
	CurveCount uint32    `yaml:"curveCount"`
	SampleRate float32   `yaml:"sampleRate"`
	BeginTime  float32   `yaml:"beginTime"`
	Samples    []float32 `yaml:"samples,omitempty"`
}

type MuscleClipDoc struct {
	StartTime float32     `yaml:"startTime"`
	StopTime  float32     `yaml:"stopTime"`
	Streamed  StreamedDoc `yaml:"streamed"`
	Dense     DenseDoc    `yaml:"dense"`
	Constant  []float32   `yaml:"constant,omitempty"`
	// ValueArray lists one {id, typeID} pair per curve.
	ValueArray []ValueDoc `yaml:"valueArray,omitempty"`
}

type ValueDoc struct {
	ID     uint32 `yaml:"id"`
	TypeID uint32 `yaml:"typeID"`
}

type BindingDoc struct {
	Path        uint32 `yaml:"path"`
	Attribute   uint32 `yaml:"attribute"`
	TypeID      int32  `yaml:"typeID"`
	CustomType  uint8  `yaml:"customType,omitempty"`
	IsPPtrCurve bool   `yaml:"isPPtrCurve,omitempty"`
}

type ClipDoc struct {
	ID         int64   `yaml:"id"`
	Name       string  `yaml:"name"`
	Legacy     bool    `yaml:"legacy,omitempty"`
	SampleRate float32 `yaml:"sampleRate"`

	CompressedRotationCurves []CompressedCurveDoc `yaml:"compressedRotationCurves,omitempty"`
	RotationCurves           []QuatCurveDoc       `yaml:"rotationCurves,omitempty"`
	PositionCurves           []Vec3CurveDoc       `yaml:"positionCurves,omitempty"`
	ScaleCurves              []Vec3CurveDoc       `yaml:"scaleCurves,omitempty"`
	EulerCurves              []Vec3CurveDoc       `yaml:"eulerCurves,omitempty"`
	FloatCurves              []FloatCurveDoc      `yaml:"floatCurves,omitempty"`

	MuscleClip *MuscleClipDoc `yaml:"muscleClip,omitempty"`
	Bindings   []BindingDoc   `yaml:"bindings,omitempty"`
}
