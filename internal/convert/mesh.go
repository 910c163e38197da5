package convert

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
	"github.com/Faultbox/sceneconv/pkg/math"
)

// Bone list sources, in priority order.
const (
	bonesNone = iota
	bonesFromRenderer
	bonesFromHashes
)

func rendererMesh(r assets.Renderer) *assets.Mesh {
	switch r := r.(type) {
	case *assets.SkinnedMeshRenderer:
		return r.Mesh
	case *assets.MeshRenderer:
		if g := r.GameObject; g != nil && g.MeshFilter != nil {
			return g.MeshFilter.Mesh
		}
	}
	return nil
}

// submeshFilter returns the submeshes a batched renderer draws and the first
// of them. A nil set means every submesh.
func submeshFilter(base *assets.RendererBase) (set map[int]bool, first int) {
	if sb := base.StaticBatch; sb != nil && sb.SubMeshCount > 0 {
		set = make(map[int]bool, sb.SubMeshCount)
		for i := int(sb.FirstSubMesh); i < int(sb.FirstSubMesh)+int(sb.SubMeshCount); i++ {
			set[i] = true
		}
		return set, int(sb.FirstSubMesh)
	}
	if len(base.SubsetIndices) > 0 {
		set = make(map[int]bool, len(base.SubsetIndices))
		first = int(base.SubsetIndices[0])
		for _, idx := range base.SubsetIndices {
			set[int(idx)] = true
			first = min(first, int(idx))
		}
		return set, first
	}
	return nil, 0
}

func (c *converter) convertRenderer(r assets.Renderer) {
	mesh := rendererMesh(r)
	if mesh == nil {
		return
	}
	base := r.Base()
	g := base.GameObject
	if g == nil || g.Transform == nil {
		c.log.Debug("renderer without game object skipped", zap.String("mesh", mesh.Name))
		return
	}
	path, ok := c.transformPath(g.Transform)
	if !ok {
		path = g.Transform.PathByFather()
	}

	out := &scene.Mesh{Path: path}
	set, first := submeshFilter(base)
	combine := set != nil

	c.convertSubmeshes(out, mesh, base, set, first)
	c.convertVertices(out, mesh)

	if smr, ok := r.(*assets.SkinnedMeshRenderer); ok {
		out.Bones = c.convertBones(smr, mesh)
		if mesh.Shapes != nil && len(mesh.Shapes.Channels) > 0 {
			c.convertMorph(out, mesh.Shapes)
		}
	}

	if combine {
		c.resetCombinedFrames(g.Name)
	}
	c.meshes = append(c.meshes, out)
}

func (c *converter) convertSubmeshes(out *scene.Mesh, mesh *assets.Mesh, base *assets.RendererBase, set map[int]bool, first int) {
	firstFace := 0
	for i, sm := range mesh.SubMeshes {
		numFaces := int(sm.IndexCount / 3)
		if set != nil && !set[i] {
			firstFace += numFaces
			continue
		}

		var mat *assets.Material
		if slot := i - first; slot >= 0 && slot < len(base.Materials) {
			mat = base.Materials[slot]
		}
		var name string
		if mat == nil {
			c.report(UnresolvedMaterialReference, "submesh without material",
				zap.String("mesh", out.Path), zap.Int("submesh", i))
		} else {
			name = c.convertMaterial(mat).Name
		}

		sub := scene.Submesh{
			Material:   name,
			BaseVertex: int(sm.FirstVertex),
			Faces:      make([]scene.Face, 0, numFaces),
		}
		fv := int(sm.FirstVertex)
		for f := firstFace; f < firstFace+numFaces; f++ {
			if f*3+2 >= len(mesh.Indices) {
				c.report(DroppedFace, "face past index buffer",
					zap.String("mesh", out.Path), zap.Int("face", f))
				continue
			}
			sub.Faces = append(sub.Faces, scene.Face{
				int(mesh.Indices[f*3+2]) - fv,
				int(mesh.Indices[f*3+1]) - fv,
				int(mesh.Indices[f*3]) - fv,
			})
		}
		firstFace += numFaces
		out.Submeshes = append(out.Submeshes, sub)
	}
}

// layout returns the component count of a flat attribute array holding n
// vertices, or 0 when its length fits none of the allowed counts.
func layout(data []float32, n int, allowed ...int) int {
	if n == 0 || len(data) == 0 {
		return 0
	}
	for _, c := range allowed {
		if len(data) == n*c {
			return c
		}
	}
	return 0
}

func (c *converter) convertVertices(out *scene.Mesh, mesh *assets.Mesh) {
	n := mesh.VertexCount
	posC := layout(mesh.Vertices, n, 3, 4)
	normC := layout(mesh.Normals, n, 3, 4)
	tanC := layout(mesh.Tangents, n, 4)
	colC := layout(mesh.Colors, n, 3, 4)
	var uvC [scene.UVChannels]int
	for i := range uvC {
		uvC[i] = layout(mesh.GetUV(i), n, 2, 3)
		out.HasUV[i] = uvC[i] > 0
	}
	out.HasNormal = normC > 0
	out.HasTangent = tanC > 0
	out.HasColor = colC > 0
	out.HasSkin = n > 0 && len(mesh.Skin) >= n

	if posC == 0 && n > 0 {
		c.log.Debug("vertex positions do not match vertex count",
			zap.String("mesh", out.Path), zap.Int("vertices", n), zap.Int("floats", len(mesh.Vertices)))
	}

	out.Vertices = make([]scene.Vertex, n)
	for j := range out.Vertices {
		v := &out.Vertices[j]
		if posC > 0 {
			p := mesh.Vertices[j*posC:]
			v.Position = mgl32.Vec3{-p[0], p[1], p[2]}
		}
		if normC > 0 {
			p := mesh.Normals[j*normC:]
			v.Normal = mgl32.Vec3{-p[0], p[1], p[2]}
		}
		for i, cnt := range uvC {
			if cnt > 0 {
				p := mesh.UV[i][j*cnt:]
				v.UV[i] = mgl32.Vec2{p[0], p[1]}
			}
		}
		if tanC > 0 {
			p := mesh.Tangents[j*4:]
			v.Tangent = mgl32.Vec4{-p[0], p[1], p[2], p[3]}
		}
		switch colC {
		case 3:
			p := mesh.Colors[j*3:]
			v.Color = mgl32.Vec4{p[0], p[1], p[2], 1}
		case 4:
			p := mesh.Colors[j*4:]
			v.Color = mgl32.Vec4{p[0], p[1], p[2], p[3]}
		}
		if out.HasSkin {
			v.BoneIndices = mesh.Skin[j].BoneIndex
			v.Weights = mesh.Skin[j].Weight
		}
	}
}

// convertBones picks the bone source: renderer bone references when they
// match the bind poses, unless the mesh's bone name hashes resolve strictly
// more bones.
func (c *converter) convertBones(smr *assets.SkinnedMeshRenderer, mesh *assets.Mesh) []scene.Bone {
	source := bonesNone
	hashesUsable := len(mesh.BindPose) > 0 && len(mesh.BindPose) == len(mesh.BoneNameHashes)

	if len(smr.Bones) > 0 && len(smr.Bones) == len(mesh.BindPose) {
		verified := 0
		for _, b := range smr.Bones {
			if _, ok := c.frames[b]; b != nil && ok {
				verified++
			}
		}
		if verified > 0 {
			source = bonesFromRenderer
		}
		if verified != len(smr.Bones) && hashesUsable && c.resolvedHashes(mesh.BoneNameHashes) > verified {
			source = bonesFromHashes
		}
	}
	if source == bonesNone && hashesUsable && c.resolvedHashes(mesh.BoneNameHashes) > 0 {
		source = bonesFromHashes
	}

	var bones []scene.Bone
	switch source {
	case bonesFromRenderer:
		bones = make([]scene.Bone, len(smr.Bones))
		for i, tr := range smr.Bones {
			path, ok := c.transformPath(tr)
			if !ok {
				path = c.bonePlaceholder(tr, mesh, i)
				c.report(UnresolvedBonePath, "bone reference not in hierarchy", zap.String("bone", path))
			}
			bones[i] = scene.Bone{Path: path, Matrix: math.ConvertMatrix(mesh.BindPose[i])}
		}
	case bonesFromHashes:
		bones = make([]scene.Bone, len(mesh.BindPose))
		for i, hash := range mesh.BoneNameHashes {
			raw := c.pathFromHash(hash)
			path, ok := c.fixPath(raw)
			if !ok {
				path = raw
				c.report(UnresolvedBonePath, "bone hash not in hierarchy",
					zap.Uint32("hash", hash), zap.String("bone", raw))
			}
			bones[i] = scene.Bone{Path: path, Matrix: math.ConvertMatrix(mesh.BindPose[i])}
		}
	}
	return bones
}

func (c *converter) resolvedHashes(hashes []uint32) int {
	n := 0
	for _, h := range hashes {
		if _, ok := c.fixPath(c.pathFromHash(h)); ok {
			n++
		}
	}
	return n
}

func (c *converter) bonePlaceholder(tr *assets.Transform, mesh *assets.Mesh, i int) string {
	if name := tr.Name(); name != "" {
		return name
	}
	if i < len(mesh.BoneNameHashes) {
		return fmt.Sprintf("unknown %d", mesh.BoneNameHashes[i])
	}
	return fmt.Sprintf("unknown bone %d", i)
}

// resetCombinedFrames gives the frame named name and all its ancestors the
// root's local position and rotation. Statically batched vertices are
// already in root space.
func (c *converter) resetCombinedFrames(name string) {
	root := c.tree.Root()
	id, ok := c.tree.FindDescendant(root, name)
	if !ok {
		return
	}
	rf := c.tree.Frame(root)
	for cur := id; cur != scene.NoFrame; cur = c.tree.Frame(cur).Parent() {
		f := c.tree.Frame(cur)
		f.LocalPosition = rf.LocalPosition
		f.LocalRotation = rf.LocalRotation
	}
}
