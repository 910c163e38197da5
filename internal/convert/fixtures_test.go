package convert

import (
	gomath "math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

// newObject creates a game object with an identity transform.
func newObject(name string) *assets.GameObject {
	g := &assets.GameObject{Name: name}
	g.Transform = &assets.Transform{
		GameObject:    g,
		LocalRotation: mgl32.QuatIdent(),
		LocalScale:    mgl32.Vec3{1, 1, 1},
	}
	return g
}

// hierarchy creates objects for slash-separated paths. Parents must be
// listed before their children.
func hierarchy(paths ...string) map[string]*assets.GameObject {
	objs := make(map[string]*assets.GameObject, len(paths))
	for _, p := range paths {
		name, parent := p, ""
		for i := len(p) - 1; i >= 0; i-- {
			if p[i] == '/' {
				name, parent = p[i+1:], p[:i]
				break
			}
		}
		g := newObject(name)
		if parent != "" {
			objs[parent].Transform.AddChild(g.Transform)
		}
		objs[p] = g
	}
	return objs
}

// triangleMesh returns a one-triangle mesh with positions at x offsets.
func triangleMesh() *assets.Mesh {
	return &assets.Mesh{
		Name:        "tri",
		VertexCount: 3,
		Vertices:    []float32{5, 0, 0, 0, 1, 0, 0, 0, 1},
		Indices:     []uint32{0, 1, 2},
		SubMeshes:   []assets.SubMesh{{IndexCount: 3, VertexCount: 3}},
	}
}

func attachMeshRenderer(g *assets.GameObject, mesh *assets.Mesh, mats ...*assets.Material) *assets.MeshRenderer {
	g.MeshFilter = &assets.MeshFilter{GameObject: g, Mesh: mesh}
	r := &assets.MeshRenderer{RendererBase: assets.RendererBase{GameObject: g, Materials: mats}}
	g.MeshRenderer = r
	return r
}

func attachSkinned(g *assets.GameObject, mesh *assets.Mesh, bones ...*assets.Transform) *assets.SkinnedMeshRenderer {
	r := &assets.SkinnedMeshRenderer{
		RendererBase: assets.RendererBase{GameObject: g},
		Mesh:         mesh,
		Bones:        bones,
	}
	g.SkinnedMesh = r
	return r
}

func mustConvert(t *testing.T, g *assets.GameObject, opts Options) *Result {
	t.Helper()
	res, err := ConvertGameObject(g, opts)
	if err != nil {
		t.Fatalf("ConvertGameObject() error = %v", err)
	}
	return res
}

func framePaths(tree *scene.Tree) []string {
	var out []string
	for _, id := range tree.PreOrder() {
		out = append(out, tree.Path(id))
	}
	return out
}

func frameByPath(t *testing.T, tree *scene.Tree, path string) *scene.Frame {
	t.Helper()
	for _, id := range tree.PreOrder() {
		if tree.Path(id) == path {
			return tree.Frame(id)
		}
	}
	t.Fatalf("frame %q not found in %v", path, framePaths(tree))
	return nil
}

func vecClose(a, b mgl32.Vec3) bool {
	const eps = 1e-3
	for i := range a {
		if gomath.Abs(float64(a[i]-b[i])) > eps {
			return false
		}
	}
	return true
}

func quatY(deg float64) mgl32.Quat {
	return mgl32.QuatRotate(float32(deg*gomath.Pi/180), mgl32.Vec3{0, 1, 0})
}
