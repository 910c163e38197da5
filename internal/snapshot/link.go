package snapshot

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/pkg/assets"
)

// linker turns document ids into pointers. Objects of every kind are
// allocated first so references can point forward.
type linker struct {
	doc *Document
	dir string
	log *zap.Logger

	objects     map[int64]*assets.GameObject
	transforms  map[int64]*assets.Transform
	filters     map[int64]*assets.MeshFilter
	renderers   map[int64]*assets.MeshRenderer
	skinned     map[int64]*assets.SkinnedMeshRenderer
	meshes      map[int64]*assets.Mesh
	materials   map[int64]*assets.Material
	textures    map[int64]assets.Texture
	avatars     map[int64]*assets.Avatar
	animators   map[int64]*assets.Animator
	controllers map[int64]assets.RuntimeController
	animations  map[int64]*assets.Animation
	clips       map[int64]*assets.AnimationClip

	dangling int
	rejected int
}

// register adds v under id, rejecting the null id and duplicates.
func register[T any](m map[int64]T, kind string, id int64, v T) error {
	if id == 0 {
		return fmt.Errorf("%s with id 0: %w", kind, ErrInvalidID)
	}
	if _, ok := m[id]; ok {
		return fmt.Errorf("%s %d: %w", kind, id, ErrDuplicateID)
	}
	m[id] = v
	return nil
}

// ref resolves id in m. A dangling id is logged, counted and yields the zero
// value.
func ref[T any](l *linker, m map[int64]T, kind string, id int64) T {
	var zero T
	if id == 0 {
		return zero
	}
	v, ok := m[id]
	if !ok {
		l.dangling++
		l.log.Warn("dangling reference", zap.String("kind", kind), zap.Int64("id", id))
		return zero
	}
	return v
}

func newLinker(doc *Document, dir string, log *zap.Logger) *linker {
	return &linker{
		doc:         doc,
		dir:         dir,
		log:         log,
		objects:     make(map[int64]*assets.GameObject),
		transforms:  make(map[int64]*assets.Transform),
		filters:     make(map[int64]*assets.MeshFilter),
		renderers:   make(map[int64]*assets.MeshRenderer),
		skinned:     make(map[int64]*assets.SkinnedMeshRenderer),
		meshes:      make(map[int64]*assets.Mesh),
		materials:   make(map[int64]*assets.Material),
		textures:    make(map[int64]assets.Texture),
		avatars:     make(map[int64]*assets.Avatar),
		animators:   make(map[int64]*assets.Animator),
		controllers: make(map[int64]assets.RuntimeController),
		animations:  make(map[int64]*assets.Animation),
		clips:       make(map[int64]*assets.AnimationClip),
	}
}

func (l *linker) allocate() error {
	d := l.doc
	for _, o := range d.GameObjects {
		if err := register(l.objects, "game object", o.ID, &assets.GameObject{Name: o.Name}); err != nil {
			return err
		}
	}
	for _, t := range d.Transforms {
		if err := register(l.transforms, "transform", t.ID, &assets.Transform{}); err != nil {
			return err
		}
	}
	for _, f := range d.MeshFilters {
		if err := register(l.filters, "mesh filter", f.ID, &assets.MeshFilter{}); err != nil {
			return err
		}
	}
	for _, r := range d.MeshRenderers {
		if err := register(l.renderers, "mesh renderer", r.ID, &assets.MeshRenderer{}); err != nil {
			return err
		}
	}
	for _, r := range d.SkinnedMeshRenderers {
		if err := register(l.skinned, "skinned mesh renderer", r.ID, &assets.SkinnedMeshRenderer{}); err != nil {
			return err
		}
	}
	for i := range d.Meshes {
		if err := register(l.meshes, "mesh", d.Meshes[i].ID, meshFromDoc(&d.Meshes[i])); err != nil {
			return err
		}
	}
	for _, m := range d.Materials {
		if err := register(l.materials, "material", m.ID, &assets.Material{Name: m.Name}); err != nil {
			return err
		}
	}
	for _, t := range d.Textures {
		if err := register(l.textures, "texture", t.ID, l.texture(t)); err != nil {
			return err
		}
	}
	for _, a := range d.Avatars {
		if err := register(l.avatars, "avatar", a.ID, avatarFromDoc(a)); err != nil {
			return err
		}
	}
	for _, a := range d.Animators {
		if err := register(l.animators, "animator", a.ID, &assets.Animator{HasTransformHierarchy: a.HasTransformHierarchy}); err != nil {
			return err
		}
	}
	for _, c := range d.Controllers {
		var ctrl assets.RuntimeController
		if c.Base != 0 {
			ctrl = &assets.AnimatorOverrideController{Name: c.Name}
		} else {
			ctrl = &assets.AnimatorController{Name: c.Name}
		}
		if err := register(l.controllers, "controller", c.ID, ctrl); err != nil {
			return err
		}
	}
	for _, a := range d.Animations {
		if err := register(l.animations, "animation", a.ID, &assets.Animation{}); err != nil {
			return err
		}
	}
	for i := range d.Clips {
		if err := register(l.clips, "clip", d.Clips[i].ID, clipFromDoc(&d.Clips[i])); err != nil {
			return err
		}
	}
	return nil
}

func (l *linker) link() {
	d := l.doc
	for _, o := range d.GameObjects {
		g := l.objects[o.ID]
		g.Transform = ref(l, l.transforms, "transform", o.Transform)
		g.MeshFilter = ref(l, l.filters, "mesh filter", o.MeshFilter)
		g.MeshRenderer = ref(l, l.renderers, "mesh renderer", o.MeshRenderer)
		g.SkinnedMesh = ref(l, l.skinned, "skinned mesh renderer", o.SkinnedMeshRenderer)
		g.Animator = ref(l, l.animators, "animator", o.Animator)
		g.Animation = ref(l, l.animations, "animation", o.Animation)
	}
	l.linkTransforms()
	for _, f := range d.MeshFilters {
		mf := l.filters[f.ID]
		mf.GameObject = ref(l, l.objects, "game object", f.GameObject)
		mf.Mesh = ref(l, l.meshes, "mesh", f.Mesh)
	}
	for _, r := range d.MeshRenderers {
		l.renderers[r.ID].RendererBase = l.rendererBase(r)
	}
	for _, r := range d.SkinnedMeshRenderers {
		smr := l.skinned[r.ID]
		smr.RendererBase = l.rendererBase(r)
		smr.Mesh = ref(l, l.meshes, "mesh", r.Mesh)
		for _, id := range r.Bones {
			// Missing bones stay as nil entries so indices match the bind
			// poses.
			smr.Bones = append(smr.Bones, ref(l, l.transforms, "transform", id))
		}
	}
	for _, m := range d.Materials {
		l.linkMaterial(l.materials[m.ID], m)
	}
	for _, a := range d.Animators {
		an := l.animators[a.ID]
		an.GameObject = ref(l, l.objects, "game object", a.GameObject)
		an.Avatar = ref(l, l.avatars, "avatar", a.Avatar)
		an.Controller = ref(l, l.controllers, "controller", a.Controller)
	}
	for _, c := range d.Controllers {
		switch ctrl := l.controllers[c.ID].(type) {
		case *assets.AnimatorController:
			ctrl.AnimationClips = l.clipList(c.Clips)
		case *assets.AnimatorOverrideController:
			base, ok := ref(l, l.controllers, "controller", c.Base).(*assets.AnimatorController)
			if !ok {
				l.log.Warn("override controller base is not a controller", zap.Int64("id", c.ID))
			}
			ctrl.Controller = base
		}
	}
	for _, a := range d.Animations {
		an := l.animations[a.ID]
		an.GameObject = ref(l, l.objects, "game object", a.GameObject)
		an.Animations = l.clipList(a.Clips)
	}
	l.backfillOwners()
}

// backfillOwners points components without an explicit owner back at the
// game object that lists them.
func (l *linker) backfillOwners() {
	for _, o := range l.doc.GameObjects {
		g := l.objects[o.ID]
		if t := g.Transform; t != nil && t.GameObject == nil {
			t.GameObject = g
		}
		if f := g.MeshFilter; f != nil && f.GameObject == nil {
			f.GameObject = g
		}
		if r := g.MeshRenderer; r != nil && r.GameObject == nil {
			r.GameObject = g
		}
		if r := g.SkinnedMesh; r != nil && r.GameObject == nil {
			r.GameObject = g
		}
		if a := g.Animator; a != nil && a.GameObject == nil {
			a.GameObject = g
		}
		if a := g.Animation; a != nil && a.GameObject == nil {
			a.GameObject = g
		}
	}
}

// linkTransforms sets game objects, fathers and children. A child listed by
// its father or naming its father is linked both ways.
func (l *linker) linkTransforms() {
	for _, t := range l.doc.Transforms {
		tr := l.transforms[t.ID]
		tr.GameObject = ref(l, l.objects, "game object", t.GameObject)
		tr.LocalPosition = mgl32.Vec3(t.Position)
		tr.LocalRotation = quat(t.Rotation)
		tr.LocalScale = scale3(t.Scale)
	}
	for _, t := range l.doc.Transforms {
		tr := l.transforms[t.ID]
		for _, id := range t.Children {
			if child := ref(l, l.transforms, "transform", id); child != nil {
				l.adopt(tr, child, t.ID, id)
			}
		}
	}
	for _, t := range l.doc.Transforms {
		tr := l.transforms[t.ID]
		if t.Father == 0 || tr.Father != nil {
			continue
		}
		if father := ref(l, l.transforms, "transform", t.Father); father != nil {
			l.adopt(father, tr, t.Father, t.ID)
		}
	}
}

// adopt links child under father. A second father or a cycle drops the
// link; it is logged and counted.
func (l *linker) adopt(father, child *assets.Transform, fatherID, childID int64) {
	if err := father.AddChild(child); err != nil {
		l.rejected++
		l.log.Warn("transform link dropped",
			zap.Int64("father", fatherID),
			zap.Int64("child", childID),
			zap.Error(err))
	}
}

func (l *linker) rendererBase(r RendererDoc) assets.RendererBase {
	base := assets.RendererBase{
		GameObject:    ref(l, l.objects, "game object", r.GameObject),
		SubsetIndices: r.SubsetIndices,
	}
	for _, id := range r.Materials {
		base.Materials = append(base.Materials, ref(l, l.materials, "material", id))
	}
	if sb := r.StaticBatch; sb != nil {
		base.StaticBatch = &assets.StaticBatchInfo{FirstSubMesh: sb.FirstSubMesh, SubMeshCount: sb.SubMeshCount}
	}
	return base
}

func (l *linker) linkMaterial(m *assets.Material, d MaterialDoc) {
	for _, t := range d.Textures {
		env := assets.TexEnv{
			Texture: ref(l, l.textures, "texture", t.Texture),
			Offset:  mgl32.Vec2(t.Offset),
			Scale:   mgl32.Vec2{1, 1},
		}
		if t.Scale != nil {
			env.Scale = mgl32.Vec2(*t.Scale)
		}
		m.Properties.TexEnvs = append(m.Properties.TexEnvs, assets.TexEnvProperty{Key: t.Key, Value: env})
	}
	for _, f := range d.Floats {
		m.Properties.Floats = append(m.Properties.Floats, assets.FloatProperty{Key: f.Key, Value: f.Value})
	}
	for _, c := range d.Colors {
		m.Properties.Colors = append(m.Properties.Colors, assets.ColorProperty{Key: c.Key, Value: mgl32.Vec4(c.Value)})
	}
}

func (l *linker) clipList(ids []int64) []*assets.AnimationClip {
	var out []*assets.AnimationClip
	for _, id := range ids {
		if c := ref(l, l.clips, "clip", id); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func quat(v [4]float32) mgl32.Quat {
	if v == [4]float32{} {
		return mgl32.QuatIdent()
	}
	return rawQuat(v)
}

func rawQuat(v [4]float32) mgl32.Quat {
	return mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}
}

func scale3(v *[3]float32) mgl32.Vec3 {
	if v == nil {
		return mgl32.Vec3{1, 1, 1}
	}
	return mgl32.Vec3(*v)
}

func meshFromDoc(d *MeshDoc) *assets.Mesh {
	m := &assets.Mesh{
		Name:           d.Name,
		VertexCount:    d.VertexCount,
		Indices:        d.Indices,
		Vertices:       d.Vertices,
		Normals:        d.Normals,
		Tangents:       d.Tangents,
		Colors:         d.Colors,
		BoneNameHashes: d.BoneNameHashes,
	}
	for _, sm := range d.SubMeshes {
		m.SubMeshes = append(m.SubMeshes, assets.SubMesh(sm))
	}
	for i, uv := range d.UV {
		if i < assets.MaxUVChannels {
			m.UV[i] = uv
		}
	}
	for _, w := range d.Skin {
		m.Skin = append(m.Skin, assets.BoneWeights4{Weight: w.Weights, BoneIndex: w.Bones})
	}
	for _, p := range d.BindPose {
		m.BindPose = append(m.BindPose, mgl32.Mat4(p))
	}
	if s := d.Shapes; s != nil {
		shapes := &assets.BlendShapeData{FullWeights: s.FullWeights}
		for _, v := range s.Vertices {
			shapes.Vertices = append(shapes.Vertices, assets.BlendShapeVertex{
				Vertex:  mgl32.Vec3(v.Vertex),
				Normal:  mgl32.Vec3(v.Normal),
				Tangent: mgl32.Vec3(v.Tangent),
				Index:   v.Index,
			})
		}
		for _, sh := range s.Shapes {
			shapes.Shapes = append(shapes.Shapes, assets.BlendShape(sh))
		}
		for _, ch := range s.Channels {
			shapes.Channels = append(shapes.Channels, assets.BlendShapeChannel(ch))
		}
		m.Shapes = shapes
	}
	return m
}

func avatarFromDoc(d AvatarDoc) *assets.Avatar {
	a := &assets.Avatar{
		Name:        d.Name,
		TOS:         make(map[uint32]string, len(d.TOS)),
		SkeletonIDs: d.SkeletonIDs,
	}
	for _, e := range d.TOS {
		a.TOS[e.Hash] = e.Path
	}
	for _, x := range d.DefaultPose {
		a.DefaultPose = append(a.DefaultPose, assets.XForm{T: mgl32.Vec3(x.T), Q: quat(x.Q), S: scale3(x.S)})
	}
	return a
}

func vec3Keys(keys []KeyDoc[[3]float32]) []assets.Keyframe[mgl32.Vec3] {
	out := make([]assets.Keyframe[mgl32.Vec3], len(keys))
	for i, k := range keys {
		out[i] = assets.Keyframe[mgl32.Vec3]{
			Time: k.Time, Value: mgl32.Vec3(k.Value), InSlope: mgl32.Vec3(k.InSlope), OutSlope: mgl32.Vec3(k.OutSlope),
		}
	}
	return out
}

func vec3Curves(curves []Vec3CurveDoc) []assets.Vector3Curve {
	var out []assets.Vector3Curve
	for _, c := range curves {
		out = append(out, assets.Vector3Curve{Path: c.Path, Curve: vec3Keys(c.Keys)})
	}
	return out
}

func clipFromDoc(d *ClipDoc) *assets.AnimationClip {
	c := &assets.AnimationClip{
		Name:           d.Name,
		Legacy:         d.Legacy,
		SampleRate:     d.SampleRate,
		PositionCurves: vec3Curves(d.PositionCurves),
		ScaleCurves:    vec3Curves(d.ScaleCurves),
		EulerCurves:    vec3Curves(d.EulerCurves),
	}
	for _, cc := range d.CompressedRotationCurves {
		c.CompressedRotationCurves = append(c.CompressedRotationCurves, assets.CompressedAnimationCurve{
			Path:   cc.Path,
			Times:  assets.PackedIntVector{NumItems: cc.Times.NumItems, BitSize: cc.Times.BitSize, Data: cc.Times.Data},
			Values: assets.PackedQuatVector{NumItems: cc.Values.NumItems, Data: cc.Values.Data},
		})
	}
	for _, rc := range d.RotationCurves {
		qc := assets.QuaternionCurve{Path: rc.Path}
		for _, k := range rc.Keys {
			qc.Curve = append(qc.Curve, assets.Keyframe[mgl32.Quat]{
				Time: k.Time, Value: quat(k.Value), InSlope: rawQuat(k.InSlope), OutSlope: rawQuat(k.OutSlope),
			})
		}
		c.RotationCurves = append(c.RotationCurves, qc)
	}
	for _, fc := range d.FloatCurves {
		curve := assets.FloatCurve{Path: fc.Path, Attribute: fc.Attribute, ClassID: assets.ClassID(fc.ClassID)}
		for _, k := range fc.Keys {
			curve.Curve = append(curve.Curve, assets.Keyframe[float32]{Time: k.Time, Value: k.Value, InSlope: k.InSlope, OutSlope: k.OutSlope})
		}
		c.FloatCurves = append(c.FloatCurves, curve)
	}

	if mc := d.MuscleClip; mc != nil {
		muscle := &assets.ClipMuscleConstant{
			StartTime: mc.StartTime,
			StopTime:  mc.StopTime,
			Clip: assets.Clip{
				Streamed: assets.StreamedClip{Data: mc.Streamed.Data, CurveCount: mc.Streamed.CurveCount},
				Dense: assets.DenseClip{
					FrameCount:  mc.Dense.FrameCount,
					CurveCount:  mc.Dense.CurveCount,
					SampleRate:  mc.Dense.SampleRate,
					BeginTime:   mc.Dense.BeginTime,
					SampleArray: mc.Dense.Samples,
				},
			},
		}
		if mc.Constant != nil {
			muscle.Clip.Constant = &assets.ConstantClip{Data: mc.Constant}
		}
		for _, v := range mc.ValueArray {
			muscle.Clip.ValueArray = append(muscle.Clip.ValueArray, assets.ValueConstant{ID: v.ID, TypeID: v.TypeID})
		}
		c.MuscleClip = muscle
	}
	if d.Bindings != nil {
		c.Bindings = &assets.AnimationClipBindingConstant{}
		for _, b := range d.Bindings {
			c.Bindings.GenericBindings = append(c.Bindings.GenericBindings, assets.GenericBinding{
				Path:        b.Path,
				Attribute:   b.Attribute,
				TypeID:      assets.ClassID(b.TypeID),
				CustomType:  b.CustomType,
				IsPPtrCurve: b.IsPPtrCurve,
			})
		}
	}
	return c
}
