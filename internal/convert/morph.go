package convert

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

const blendShapePrefix = "blendShape."

// lastSegment returns the text after the last dot.
func lastSegment(name string) string {
	return name[strings.LastIndexByte(name, '.')+1:]
}

// convertMorph turns the blend shapes of a mesh into a morph on the mesh's
// path. Vertex records are absolute positions: base vertex plus delta.
func (c *converter) convertMorph(mesh *scene.Mesh, shapes *assets.BlendShapeData) {
	morph := &scene.Morph{Path: mesh.Path, Channels: make([]scene.MorphChannel, 0, len(shapes.Channels))}
	c.morphs = append(c.morphs, morph)

	for _, ch := range shapes.Channels {
		full := blendShapePrefix + ch.Name
		c.morphChannels[PathHash(full)] = full

		channel := scene.MorphChannel{Name: lastSegment(ch.Name)}
		for fi := ch.FrameIndex; fi < ch.FrameIndex+ch.FrameCount; fi++ {
			if fi < 0 || fi >= len(shapes.Shapes) || fi >= len(shapes.FullWeights) {
				c.report(DroppedMorphVertex, "blend shape frame out of range",
					zap.String("channel", ch.Name), zap.Int("frame", fi))
				continue
			}
			shape := shapes.Shapes[fi]
			kf := scene.MorphKeyframe{
				Weight:      shapes.FullWeights[fi],
				HasNormals:  shape.HasNormals,
				HasTangents: shape.HasTangents,
				Vertices:    make([]scene.MorphVertex, 0, shape.VertexCount),
			}
			end := int(shape.FirstVertex) + int(shape.VertexCount)
			for j := int(shape.FirstVertex); j < end; j++ {
				if j >= len(shapes.Vertices) || int(shapes.Vertices[j].Index) >= len(mesh.Vertices) {
					c.report(DroppedMorphVertex, "blend shape vertex out of range",
						zap.String("channel", ch.Name), zap.Int("vertex", j))
					continue
				}
				sv := shapes.Vertices[j]
				base := mesh.Vertices[sv.Index]
				mv := scene.MorphVertex{
					Index:    sv.Index,
					Position: base.Position.Add(mgl32.Vec3{-sv.Vertex[0], sv.Vertex[1], sv.Vertex[2]}),
				}
				if shape.HasNormals {
					mv.Normal = mgl32.Vec3{-sv.Normal[0], sv.Normal[1], sv.Normal[2]}
				}
				if shape.HasTangents {
					mv.Tangent = mgl32.Vec4{-sv.Tangent[0], sv.Tangent[1], sv.Tangent[2], 0}
				}
				kf.Vertices = append(kf.Vertices, mv)
			}
			channel.Keyframes = append(channel.Keyframes, kf)
		}
		morph.Channels = append(morph.Channels, channel)
	}
}

// morphPathByChannel returns the path of the first morph with a channel
// whose display name matches the last segment of channel.
func (c *converter) morphPathByChannel(channel string) (string, bool) {
	want := lastSegment(channel)
	for _, m := range c.morphs {
		for _, ch := range m.Channels {
			if ch.Name == want {
				return m.Path, true
			}
		}
	}
	return "", false
}
