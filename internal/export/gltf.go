// Package export writes a converted scene bundle as a glTF 2.0 asset.
//
// Frames become nodes, each submesh becomes a primitive sharing its mesh's
// vertex accessors, and blend shapes become morph targets holding the last
// keyframe of every channel. Euler rotations are turned back into
// quaternions; blend shape weights are rescaled from 0..100 to 0..1.
package export

import (
	"bytes"
	gomath "math"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/imaging"
	"github.com/Faultbox/sceneconv/internal/logger"
	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/math"
)

// Generator is written to the asset header.
const Generator = "sceneconv"

// Options selects what the writer emits.
type Options struct {
	// Binary writes a single .glb with embedded images. Otherwise a .gltf
	// is written with a sibling .bin buffer and image files.
	Binary     bool
	Skins      bool
	Animations bool
	Morphs     bool
	// Scale multiplies the root node's scale. Zero means 1.
	Scale float32
	// Logger receives warnings. Nil uses the package logger.
	Logger *zap.Logger
}

// Writer stores a bundle at path.
type Writer interface {
	Write(b *scene.Bundle, path string) error
}

// GLTF is the glTF 2.0 Writer.
type GLTF struct {
	opts Options
}

var _ Writer = (*GLTF)(nil)

// NewGLTF returns a glTF writer.
func NewGLTF(opts Options) *GLTF {
	return &GLTF{opts: opts}
}

// Write converts b and saves it at path. Image files of a text glTF are
// written next to path.
func (w *GLTF) Write(b *scene.Bundle, path string) error {
	bl := newBuilder(b, w.opts)
	doc, err := bl.build()
	if err != nil {
		return err
	}

	if w.opts.Binary {
		return errors.Wrapf(gltf.SaveBinary(doc, path), "saving %s", path)
	}

	dir := filepath.Dir(path)
	for _, f := range bl.files {
		if err := os.WriteFile(filepath.Join(dir, f.name), f.data, 0644); err != nil {
			return errors.Wrapf(err, "writing image %s", f.name)
		}
	}
	if len(doc.Buffers) > 0 {
		if len(doc.Buffers[0].Data) == 0 {
			doc.Buffers = nil
		} else {
			doc.Buffers[0].URI = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".bin"
		}
	}
	return errors.Wrapf(saveText(doc, path), "saving %s", path)
}

// saveText encodes doc as JSON at path. External buffers go to the
// directory of path.
func saveText(doc *gltf.Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	e := gltf.NewEncoder(f).WithWriteHandler(dirWriter(filepath.Dir(path)))
	e.AsBinary = false
	if err := e.Encode(doc); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// dirWriter writes buffer resources relative to a directory.
type dirWriter string

func (d dirWriter) WriteResource(uri string, data []byte) error {
	name := filepath.Join(string(d), filepath.Clean("/"+filepath.FromSlash(uri)))
	return os.WriteFile(name, data, 0644)
}

// Document builds the glTF document for b without saving it. Images are
// embedded in the buffer.
func (w *GLTF) Document(b *scene.Bundle) (*gltf.Document, error) {
	opts := w.opts
	opts.Binary = true
	return newBuilder(b, opts).build()
}

type imageFile struct {
	name string
	data []byte
}

type builder struct {
	bundle *scene.Bundle
	opts   Options
	log    *zap.Logger
	doc    *gltf.Document

	nodes     map[scene.FrameID]uint32
	textures  map[string]uint32
	materials map[string]uint32
	// targets lists the morph channel names exported per mesh path, in
	// target order.
	targets map[string][]string
	files   []imageFile
}

func newBuilder(b *scene.Bundle, opts Options) *builder {
	log := opts.Logger
	if log == nil {
		log = logger.Log
	}
	if opts.Scale == 0 {
		opts.Scale = 1
	}
	return &builder{
		bundle:    b,
		opts:      opts,
		log:       log.Named("gltf"),
		doc:       gltf.NewDocument(),
		nodes:     make(map[scene.FrameID]uint32),
		textures:  make(map[string]uint32),
		materials: make(map[string]uint32),
		targets:   make(map[string][]string),
	}
}

func (bl *builder) build() (*gltf.Document, error) {
	bl.doc.Asset.Generator = Generator

	bl.writeNodes()
	if err := bl.writeTextures(); err != nil {
		return nil, err
	}
	bl.writeMaterials()
	bl.writeMeshes()
	if bl.opts.Animations {
		bl.writeAnimations()
	}

	bl.log.Debug("gltf document built",
		zap.Int("nodes", len(bl.doc.Nodes)),
		zap.Int("meshes", len(bl.doc.Meshes)),
		zap.Int("skins", len(bl.doc.Skins)),
		zap.Int("animations", len(bl.doc.Animations)),
		zap.Int("images", len(bl.doc.Images)))
	return bl.doc, nil
}

func (bl *builder) writeNodes() {
	tree := bl.bundle.Tree
	if tree == nil {
		return
	}
	ids := tree.PreOrder()
	for _, id := range ids {
		f := tree.Frame(id)
		q := math.EulerToQuat(f.LocalRotation)
		scale := f.LocalScale
		if id == tree.Root() {
			scale = scale.Mul(bl.opts.Scale)
		}
		bl.nodes[id] = uint32(len(bl.doc.Nodes))
		bl.doc.Nodes = append(bl.doc.Nodes, &gltf.Node{
			Name:        f.Name,
			Translation: f.LocalPosition,
			Rotation:    [4]float32{q.V[0], q.V[1], q.V[2], q.W},
			Scale:       scale,
		})
	}
	for _, id := range ids {
		node := bl.doc.Nodes[bl.nodes[id]]
		for _, child := range tree.Frame(id).Children() {
			node.Children = append(node.Children, bl.nodes[child])
		}
	}
	if len(ids) > 0 {
		bl.doc.Scenes[0].Nodes = []uint32{bl.nodes[tree.Root()]}
	}
}

// node returns the node index of the frame at path.
func (bl *builder) node(path string) (uint32, bool) {
	if bl.bundle.Tree == nil {
		return 0, false
	}
	id, ok := bl.bundle.Tree.FindByPath(path)
	if !ok {
		return 0, false
	}
	n, ok := bl.nodes[id]
	return n, ok
}

func (bl *builder) writeTextures() error {
	for _, t := range bl.bundle.Textures {
		if t.Source == nil || t.Source.Image == nil {
			bl.log.Warn("texture has no pixels", zap.String("texture", t.Name))
			continue
		}
		format, err := imaging.ParseFormat(filepath.Ext(t.Name))
		if err != nil {
			return errors.Wrapf(err, "texture %s", t.Name)
		}
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, t.Source.Image, format); err != nil {
			return errors.Wrapf(err, "encoding texture %s", t.Name)
		}

		var img uint32
		if bl.opts.Binary {
			img, err = modeler.WriteImage(bl.doc, t.Name, format.MimeType(), &buf)
			if err != nil {
				return errors.Wrapf(err, "embedding texture %s", t.Name)
			}
		} else {
			img = uint32(len(bl.doc.Images))
			bl.doc.Images = append(bl.doc.Images, &gltf.Image{Name: t.Name, URI: url.PathEscape(t.Name)})
			bl.files = append(bl.files, imageFile{name: t.Name, data: buf.Bytes()})
		}
		bl.textures[t.Name] = uint32(len(bl.doc.Textures))
		bl.doc.Textures = append(bl.doc.Textures, &gltf.Texture{Name: t.Name, Source: gltf.Index(img)})
	}
	return nil
}

func (bl *builder) writeMaterials() {
	for _, m := range bl.bundle.Materials {
		base := [4]float32{m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], m.Diffuse[3] * (1 - m.Transparency)}
		mat := &gltf.Material{
			Name: m.Name,
			PBRMetallicRoughness: &gltf.PBRMetallicRoughness{
				BaseColorFactor: &base,
				MetallicFactor:  gltf.Float(0),
				RoughnessFactor: gltf.Float(roughness(m.Shininess)),
			},
			EmissiveFactor: [3]float32{m.Emissive[0], m.Emissive[1], m.Emissive[2]},
		}
		if base[3] < 1 {
			mat.AlphaMode = gltf.AlphaBlend
		}
		for _, tex := range m.Textures {
			idx, ok := bl.textures[tex.Name]
			if !ok {
				continue
			}
			switch tex.Dest {
			case scene.DestDiffuse:
				if mat.PBRMetallicRoughness.BaseColorTexture == nil {
					mat.PBRMetallicRoughness.BaseColorTexture = &gltf.TextureInfo{Index: idx}
				}
			case scene.DestNormal, scene.DestBump:
				if mat.NormalTexture == nil {
					mat.NormalTexture = &gltf.NormalTexture{Index: gltf.Index(idx)}
				}
			}
		}
		bl.materials[m.Name] = uint32(len(bl.doc.Materials))
		bl.doc.Materials = append(bl.doc.Materials, mat)
	}
}

// roughness maps a Blinn-Phong exponent to a PBR roughness.
func roughness(shininess float32) float32 {
	if shininess <= 0 {
		return 1
	}
	return float32(gomath.Sqrt(2 / (float64(shininess) + 2)))
}

func (bl *builder) writeMeshes() {
	for _, m := range bl.bundle.Meshes {
		nodeIdx, ok := bl.node(m.Path)
		if !ok {
			bl.log.Warn("mesh frame not in hierarchy", zap.String("path", m.Path))
			continue
		}
		if len(m.Vertices) == 0 || len(m.Submeshes) == 0 {
			continue
		}

		attrs := bl.vertexAttributes(m)
		var targets []gltf.Attribute
		var names []string
		if bl.opts.Morphs {
			if morph, ok := bl.bundle.Morph(m.Path); ok {
				targets, names = bl.morphTargets(m, morph)
			}
		}

		mesh := &gltf.Mesh{Name: m.Path}
		for _, sm := range m.Submeshes {
			indices := make([]uint32, 0, len(sm.Faces)*3)
			for _, f := range sm.Faces {
				for _, v := range f {
					indices = append(indices, uint32(sm.BaseVertex+v))
				}
			}
			prim := &gltf.Primitive{
				Attributes: attrs,
				Indices:    gltf.Index(modeler.WriteIndices(bl.doc, indices)),
				Targets:    targets,
			}
			if idx, ok := bl.materials[sm.Material]; ok {
				prim.Material = gltf.Index(idx)
			}
			mesh.Primitives = append(mesh.Primitives, prim)
		}
		if len(names) > 0 {
			mesh.Weights = make([]float32, len(names))
			mesh.Extras = map[string]any{"targetNames": names}
			bl.targets[m.Path] = names
		}

		node := bl.doc.Nodes[nodeIdx]
		node.Mesh = gltf.Index(uint32(len(bl.doc.Meshes)))
		bl.doc.Meshes = append(bl.doc.Meshes, mesh)

		if bl.opts.Skins && m.HasSkin && len(m.Bones) > 0 {
			node.Skin = gltf.Index(bl.writeSkin(m, nodeIdx))
		}
	}
}

// vertexAttributes writes the accessors shared by every primitive of m.
func (bl *builder) vertexAttributes(m *scene.Mesh) gltf.Attribute {
	n := len(m.Vertices)
	positions := make([][3]float32, n)
	for i, v := range m.Vertices {
		positions[i] = v.Position
	}
	attrs := gltf.Attribute{gltf.POSITION: modeler.WritePosition(bl.doc, positions)}

	if m.HasNormal {
		normals := make([][3]float32, n)
		for i, v := range m.Vertices {
			normals[i] = v.Normal
		}
		attrs[gltf.NORMAL] = modeler.WriteNormal(bl.doc, normals)
	}
	if m.HasTangent {
		tangents := make([][4]float32, n)
		for i, v := range m.Vertices {
			tangents[i] = v.Tangent
		}
		attrs[gltf.TANGENT] = modeler.WriteTangent(bl.doc, tangents)
	}
	set := 0
	for ch := 0; ch < scene.UVChannels; ch++ {
		if !m.HasUV[ch] {
			continue
		}
		uvs := make([][2]float32, n)
		for i, v := range m.Vertices {
			// glTF puts the texture origin at the top left.
			uvs[i] = [2]float32{v.UV[ch][0], 1 - v.UV[ch][1]}
		}
		attrs["TEXCOORD_"+strconv.Itoa(set)] = modeler.WriteTextureCoord(bl.doc, uvs)
		set++
	}
	if m.HasColor {
		colors := make([][4]float32, n)
		for i, v := range m.Vertices {
			colors[i] = v.Color
		}
		attrs[gltf.COLOR_0] = modeler.WriteColor(bl.doc, colors)
	}
	if bl.opts.Skins && m.HasSkin && len(m.Bones) > 0 {
		joints := make([][4]uint16, n)
		weights := make([][4]float32, n)
		for i, v := range m.Vertices {
			for k := 0; k < 4; k++ {
				if v.Weights[k] > 0 && v.BoneIndices[k] >= 0 && int(v.BoneIndices[k]) < len(m.Bones) {
					joints[i][k] = uint16(v.BoneIndices[k])
					weights[i][k] = v.Weights[k]
				}
			}
		}
		attrs[gltf.JOINTS_0] = modeler.WriteJoints(bl.doc, joints)
		attrs[gltf.WEIGHTS_0] = modeler.WriteWeights(bl.doc, weights)
	}
	return attrs
}

// morphTargets writes one target per channel from its last keyframe.
// Target attributes hold displacements from the base vertices.
func (bl *builder) morphTargets(m *scene.Mesh, morph *scene.Morph) ([]gltf.Attribute, []string) {
	var targets []gltf.Attribute
	var names []string
	n := len(m.Vertices)
	for _, ch := range morph.Channels {
		if len(ch.Keyframes) == 0 {
			continue
		}
		kf := ch.Keyframes[len(ch.Keyframes)-1]
		positions := make([][3]float32, n)
		var normals [][3]float32
		if kf.HasNormals && m.HasNormal {
			normals = make([][3]float32, n)
		}
		for _, mv := range kf.Vertices {
			if int(mv.Index) >= n {
				continue
			}
			base := m.Vertices[mv.Index]
			positions[mv.Index] = mv.Position.Sub(base.Position)
			if normals != nil {
				normals[mv.Index] = mv.Normal.Sub(base.Normal)
			}
		}
		target := gltf.Attribute{gltf.POSITION: modeler.WritePosition(bl.doc, positions)}
		if normals != nil {
			target[gltf.NORMAL] = modeler.WriteAccessor(bl.doc, gltf.TargetArrayBuffer, normals)
		}
		targets = append(targets, target)
		names = append(names, ch.Name)
	}
	return targets, names
}

func (bl *builder) writeSkin(m *scene.Mesh, meshNode uint32) uint32 {
	joints := make([]uint32, len(m.Bones))
	inverseBinds := make([][4][4]float32, len(m.Bones))
	for i, bone := range m.Bones {
		if idx, ok := bl.node(bone.Path); ok {
			joints[i] = idx
		} else {
			bl.log.Warn("bone frame not in hierarchy",
				zap.String("mesh", m.Path), zap.String("bone", bone.Path))
			joints[i] = meshNode
		}
		inverseBinds[i] = columns(bone.Matrix)
	}
	acc := modeler.WriteAccessor(bl.doc, gltf.TargetNone, inverseBinds)
	bl.doc.Skins = append(bl.doc.Skins, &gltf.Skin{
		Name:                m.Path,
		InverseBindMatrices: gltf.Index(acc),
		Joints:              joints,
	})
	return uint32(len(bl.doc.Skins) - 1)
}

// columns splits a column-major matrix into its columns.
func columns(m mgl32.Mat4) [4][4]float32 {
	var out [4][4]float32
	for c := 0; c < 4; c++ {
		out[c] = m.Col(c)
	}
	return out
}

func (bl *builder) writeAnimations() {
	for _, a := range bl.bundle.Animations {
		anim := &gltf.Animation{Name: a.Name}
		for _, tr := range a.Tracks {
			node, ok := bl.node(tr.Path)
			if !ok {
				bl.log.Debug("track target not in hierarchy",
					zap.String("animation", a.Name), zap.String("path", tr.Path))
				continue
			}

			if keys := uniqueTimes(tr.Translations); len(keys) > 0 {
				out := make([][3]float32, len(keys))
				for i, k := range keys {
					out[i] = k.Value
				}
				bl.channel(anim, node, gltf.TRSTranslation, times(keys), out)
			}
			if keys := uniqueTimes(tr.Rotations); len(keys) > 0 {
				out := make([][4]float32, len(keys))
				prev := math.QuatIdentity()
				for i, k := range keys {
					q := math.EulerToQuat(k.Value)
					// Stay in one hemisphere so samplers take the short arc.
					if i > 0 && prev.Dot(q) < 0 {
						q = q.Scale(-1)
					}
					prev = q
					out[i] = [4]float32{q.V[0], q.V[1], q.V[2], q.W}
				}
				bl.channel(anim, node, gltf.TRSRotation, times(keys), out)
			}
			if keys := uniqueTimes(tr.Scalings); len(keys) > 0 {
				out := make([][3]float32, len(keys))
				for i, k := range keys {
					out[i] = k.Value
				}
				bl.channel(anim, node, gltf.TRSScale, times(keys), out)
			}
			bl.weightsChannel(anim, node, tr)
		}
		if len(anim.Channels) == 0 {
			continue
		}
		bl.doc.Animations = append(bl.doc.Animations, anim)
	}
}

// weightsChannel merges the blend shape tracks of tr into one weights
// channel sampled at the union of their key times.
func (bl *builder) weightsChannel(anim *gltf.Animation, node uint32, tr *scene.Track) {
	names := bl.targets[tr.Path]
	if len(names) == 0 || len(tr.BlendShapes) == 0 {
		return
	}
	perTarget := make([][]scene.Keyframe[float32], len(names))
	seen := make(map[float32]bool)
	var ts []float32
	for _, bs := range tr.BlendShapes {
		i := targetIndex(names, bs.Channel)
		if i < 0 {
			bl.log.Debug("blend shape track without target",
				zap.String("path", tr.Path), zap.String("channel", bs.Channel))
			continue
		}
		perTarget[i] = uniqueTimes(bs.Keyframes)
		for _, k := range perTarget[i] {
			if !seen[k.Time] {
				seen[k.Time] = true
				ts = append(ts, k.Time)
			}
		}
	}
	if len(ts) == 0 {
		return
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })

	out := make([]float32, 0, len(ts)*len(names))
	for _, t := range ts {
		for i := range names {
			out = append(out, sampleWeight(perTarget[i], t)/100)
		}
	}
	bl.channel(anim, node, gltf.TRSWeights, ts, out)
}

func targetIndex(names []string, channel string) int {
	for i, n := range names {
		if n == channel {
			return i
		}
	}
	short := channel[strings.LastIndexByte(channel, '.')+1:]
	for i, n := range names {
		if n == short {
			return i
		}
	}
	return -1
}

// sampleWeight linearly interpolates keys at t, holding the end values.
func sampleWeight(keys []scene.Keyframe[float32], t float32) float32 {
	if len(keys) == 0 {
		return 0
	}
	if t <= keys[0].Time {
		return keys[0].Value
	}
	for i := 1; i < len(keys); i++ {
		k0, k1 := keys[i-1], keys[i]
		if t > k1.Time {
			continue
		}
		span := k1.Time - k0.Time
		if span <= 0 {
			return k1.Value
		}
		return k0.Value + (k1.Value-k0.Value)*(t-k0.Time)/span
	}
	return keys[len(keys)-1].Value
}

func (bl *builder) channel(anim *gltf.Animation, node uint32, path gltf.TRSProperty, ts []float32, output any) {
	in := modeler.WriteAccessor(bl.doc, gltf.TargetNone, ts)
	acc := bl.doc.Accessors[in]
	acc.Min = []float32{ts[0]}
	acc.Max = []float32{ts[len(ts)-1]}
	out := modeler.WriteAccessor(bl.doc, gltf.TargetNone, output)

	anim.Samplers = append(anim.Samplers, &gltf.AnimationSampler{
		Input:         gltf.Index(in),
		Output:        gltf.Index(out),
		Interpolation: gltf.InterpolationLinear,
	})
	anim.Channels = append(anim.Channels, &gltf.Channel{
		Sampler: gltf.Index(uint32(len(anim.Samplers) - 1)),
		Target:  gltf.ChannelTarget{Node: gltf.Index(node), Path: path},
	})
}

// uniqueTimes returns a copy of sorted keys keeping the last key of each
// run of equal times, since sampler inputs must strictly increase.
func uniqueTimes[T any](keys []scene.Keyframe[T]) []scene.Keyframe[T] {
	out := make([]scene.Keyframe[T], 0, len(keys))
	for _, k := range keys {
		if n := len(out); n > 0 && out[n-1].Time >= k.Time {
			if out[n-1].Time == k.Time {
				out[n-1] = k
			}
			continue
		}
		out = append(out, k)
	}
	return out
}

func times[T any](keys []scene.Keyframe[T]) []float32 {
	out := make([]float32, len(keys))
	for i, k := range keys {
		out[i] = k.Time
	}
	return out
}
