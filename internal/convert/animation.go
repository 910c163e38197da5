package convert

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
	"github.com/Faultbox/sceneconv/pkg/math"
)

// compressedTimeStep converts packed key time units to seconds.
const compressedTimeStep = 0.01

// uniqueAnimationName suffixes name with _1, _2, ... until no converted
// animation uses it.
func (c *converter) uniqueAnimationName(name string) string {
	taken := func(n string) bool {
		for _, a := range c.animations {
			if a.Name == n {
				return true
			}
		}
		return false
	}
	if !taken(name) {
		return name
	}
	for i := 1; ; i++ {
		if n := fmt.Sprintf("%s_%d", name, i); !taken(n) {
			return n
		}
	}
}

func (c *converter) convertAnimations() {
	for _, clip := range c.clips.list {
		anim := scene.NewAnimation(c.uniqueAnimationName(clip.Name), clip.SampleRate)
		c.animations = append(c.animations, anim)

		if clip.Legacy {
			c.convertLegacyClip(anim, clip)
		} else {
			c.convertGenericClip(anim, clip)
		}
		for _, t := range anim.Tracks {
			t.SortKeyframes()
		}
		c.log.Debug("animation converted",
			zap.String("name", anim.Name),
			zap.Bool("legacy", clip.Legacy),
			zap.Int("tracks", len(anim.Tracks)))
	}
}

// legacyTrack returns the track for a curve path declared relative to the
// clip's bound component, using the raw path as a placeholder when no frame
// matches.
func (c *converter) legacyTrack(anim *scene.Animation, clip *assets.AnimationClip, path string) *scene.Track {
	full, ok := c.legacyPath(clip, path)
	if !ok {
		c.report(UnresolvedBonePath, "curve path not in hierarchy",
			zap.String("clip", clip.Name), zap.String("path", full))
	}
	return anim.FindTrack(full)
}

// legacyPath prefixes path with the clip's bound base path and resolves it.
// It returns the unresolved candidate when no frame matches.
func (c *converter) legacyPath(clip *assets.AnimationClip, path string) (string, bool) {
	if base, ok := c.clips.bound[clip]; ok && base != "" {
		if path == "" {
			path = base
		} else {
			path = base + "/" + path
		}
	}
	if full, ok := c.fixPath(path); ok {
		return full, true
	}
	return path, false
}

func (c *converter) convertLegacyClip(anim *scene.Animation, clip *assets.AnimationClip) {
	for _, curve := range clip.CompressedRotationCurves {
		track := c.legacyTrack(anim, clip, curve.Path)
		deltas := curve.Times.UnpackInts()
		quats := curve.Values.UnpackQuats()
		n := min(len(deltas), len(quats))
		var t int32
		for i := 0; i < n; i++ {
			t += deltas[i]
			track.Rotations = append(track.Rotations, scene.Keyframe[mgl32.Vec3]{
				Time:  float32(t) * compressedTimeStep,
				Value: math.QuatToEuler(math.MirrorQuat(quats[i])),
			})
		}
	}
	for _, curve := range clip.RotationCurves {
		track := c.legacyTrack(anim, clip, curve.Path)
		for _, k := range curve.Curve {
			track.Rotations = append(track.Rotations, scene.Keyframe[mgl32.Vec3]{
				Time: k.Time, Value: math.QuatToEuler(math.MirrorQuat(k.Value)),
			})
		}
	}
	for _, curve := range clip.PositionCurves {
		track := c.legacyTrack(anim, clip, curve.Path)
		for _, k := range curve.Curve {
			track.Translations = append(track.Translations, scene.Keyframe[mgl32.Vec3]{
				Time: k.Time, Value: math.MirrorX(k.Value),
			})
		}
	}
	for _, curve := range clip.ScaleCurves {
		track := c.legacyTrack(anim, clip, curve.Path)
		for _, k := range curve.Curve {
			track.Scalings = append(track.Scalings, scene.Keyframe[mgl32.Vec3]{Time: k.Time, Value: k.Value})
		}
	}
	for _, curve := range clip.EulerCurves {
		track := c.legacyTrack(anim, clip, curve.Path)
		for _, k := range curve.Curve {
			track.Rotations = append(track.Rotations, scene.Keyframe[mgl32.Vec3]{
				Time: k.Time, Value: mgl32.Vec3{k.Value[0], -k.Value[1], -k.Value[2]},
			})
		}
	}
	for _, curve := range clip.FloatCurves {
		if curve.ClassID != assets.ClassSkinnedMeshRenderer {
			continue
		}
		channel := curve.Attribute
		if dot := strings.IndexByte(channel, '.'); dot >= 0 {
			channel = channel[dot+1:]
		}
		path, ok := c.legacyPath(clip, curve.Path)
		if !ok {
			if p, found := c.morphPathByChannel(channel); found {
				path = p
			} else {
				c.report(UnresolvedBonePath, "blend shape curve path not in hierarchy",
					zap.String("clip", clip.Name), zap.String("path", path))
			}
		}
		bs := anim.FindTrack(path).BlendShape(channel)
		for _, k := range curve.Curve {
			bs.Keyframes = append(bs.Keyframes, scene.Keyframe[float32]{Time: k.Time, Value: k.Value})
		}
	}
}

func (c *converter) convertGenericClip(anim *scene.Animation, clip *assets.AnimationClip) {
	mc := clip.MuscleClip
	if mc == nil {
		c.log.Debug("generic clip without muscle data", zap.String("clip", clip.Name))
		return
	}
	bindings := clip.Bindings
	if bindings == nil {
		bindings = mc.Clip.GenericBindings()
	}

	frames, err := mc.Clip.Streamed.ReadFrames()
	if err != nil {
		c.log.Warn("streamed clip decoded partially", zap.String("clip", clip.Name), zap.Error(err))
	}
	// The first and last frames are sentinels.
	for fi := 1; fi < len(frames)-1; fi++ {
		frame := frames[fi]
		values := make([]float32, len(frame.Keys))
		for i, k := range frame.Keys {
			values[i] = k.Value()
		}
		for cursor := 0; cursor < len(frame.Keys); {
			c.readCurve(anim, bindings, int(frame.Keys[cursor].Index), frame.Time, values, 0, &cursor)
		}
	}

	dense := mc.Clip.Dense
	streamCount := int(mc.Clip.Streamed.CurveCount)
	for fi := 0; fi < int(dense.FrameCount); fi++ {
		t := dense.BeginTime
		if dense.SampleRate != 0 {
			t += float32(fi) / dense.SampleRate
		}
		offset := fi * int(dense.CurveCount)
		for cursor := 0; cursor < int(dense.CurveCount); {
			c.readCurve(anim, bindings, streamCount+cursor, t, dense.SampleArray, offset, &cursor)
		}
	}

	if constant := mc.Clip.Constant; constant != nil {
		base := streamCount + int(dense.CurveCount)
		for _, t := range [2]float32{0, mc.StopTime} {
			for cursor := 0; cursor < len(constant.Data); {
				c.readCurve(anim, bindings, base+cursor, t, constant.Data, 0, &cursor)
			}
		}
	}
}

// readCurve dispatches the sample at data[offset+*cursor] for curve index
// and advances the cursor past every value it consumed.
func (c *converter) readCurve(anim *scene.Animation, bindings *assets.AnimationClipBindingConstant, index int, t float32, data []float32, offset int, cursor *int) {
	b, ok := bindings.FindBinding(index)
	if !ok {
		c.report(MalformedCurveBinding, "curve index without binding", zap.Int("index", index))
		*cursor++
		return
	}

	take := func(n int) ([]float32, bool) {
		start := offset + *cursor
		*cursor += n
		if start+n > len(data) {
			c.report(MalformedCurveBinding, "curve data truncated",
				zap.Int("index", index), zap.Int("want", n))
			return nil, false
		}
		return data[start : start+n], true
	}

	switch b.TypeID {
	case assets.ClassSkinnedMeshRenderer:
		channel, ok := c.morphChannels[b.Attribute]
		if !ok {
			c.report(UnknownMorphChannel, "blend shape channel hash unknown", zap.Uint32("attribute", b.Attribute))
			*cursor++
			return
		}
		if dot := strings.IndexByte(channel, '.'); dot >= 0 {
			channel = channel[dot+1:]
		}
		raw := c.pathFromHash(b.Path)
		path, ok := c.fixPath(raw)
		if !ok {
			if path, ok = c.morphPathByChannel(channel); !ok {
				path = raw
				c.report(UnresolvedBonePath, "blend shape binding path not in hierarchy", zap.String("path", raw))
			}
		}
		v, ok := take(1)
		if !ok {
			return
		}
		bs := anim.FindTrack(path).BlendShape(channel)
		bs.Keyframes = append(bs.Keyframes, scene.Keyframe[float32]{Time: t, Value: v[0]})

	case assets.ClassTransform:
		if b.Width() == 1 {
			c.report(MalformedCurveBinding, "unknown transform attribute", zap.Uint32("attribute", b.Attribute))
			*cursor++
			return
		}
		track := c.genericTrack(anim, b.Path)
		switch b.Attribute {
		case assets.BindTransformPosition:
			if v, ok := take(3); ok {
				track.Translations = append(track.Translations, scene.Keyframe[mgl32.Vec3]{
					Time: t, Value: mgl32.Vec3{-v[0], v[1], v[2]},
				})
			}
		case assets.BindTransformRotation:
			if v, ok := take(4); ok {
				q := math.Quat(v[0], -v[1], -v[2], v[3])
				track.Rotations = append(track.Rotations, scene.Keyframe[mgl32.Vec3]{
					Time: t, Value: math.QuatToEuler(q),
				})
			}
		case assets.BindTransformScale:
			if v, ok := take(3); ok {
				track.Scalings = append(track.Scalings, scene.Keyframe[mgl32.Vec3]{
					Time: t, Value: mgl32.Vec3{v[0], v[1], v[2]},
				})
			}
		case assets.BindTransformEuler:
			if v, ok := take(3); ok {
				track.Rotations = append(track.Rotations, scene.Keyframe[mgl32.Vec3]{
					Time: t, Value: mgl32.Vec3{v[0], -v[1], -v[2]},
				})
			}
		}

	default:
		c.report(MalformedCurveBinding, "unsupported binding type", zap.Stringer("class", b.TypeID))
		*cursor++
	}
}

// genericTrack returns the track for a hashed binding path.
func (c *converter) genericTrack(anim *scene.Animation, hash uint32) *scene.Track {
	raw := c.pathFromHash(hash)
	path, ok := c.fixPath(raw)
	if !ok {
		path = raw
		c.report(UnresolvedBonePath, "binding path not in hierarchy",
			zap.Uint32("hash", hash), zap.String("path", raw))
	}
	return anim.FindTrack(path)
}
