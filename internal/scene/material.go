package scene

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneconv/pkg/assets"
)

// TextureDest is the material slot a texture feeds.
type TextureDest int

// Texture destinations.
const (
	DestUnknown  TextureDest = -1
	DestDiffuse  TextureDest = 0
	DestNormal   TextureDest = 1
	DestSpecular TextureDest = 2
	DestBump     TextureDest = 3
)

// MaterialTexture references an exported texture by file name.
type MaterialTexture struct {
	Name   string
	Dest   TextureDest
	Offset mgl32.Vec2
	Scale  mgl32.Vec2
}

// Material is a converted material with classic lighting colours.
type Material struct {
	Name         string
	Diffuse      mgl32.Vec4
	Ambient      mgl32.Vec4
	Emissive     mgl32.Vec4
	Specular     mgl32.Vec4
	Reflection   mgl32.Vec4
	Shininess    float32
	Transparency float32
	Textures     []MaterialTexture
}

// Texture is an output image: its file name and the source texture the
// writer decodes pixels from.
type Texture struct {
	Name   string
	Source *assets.Texture2D
}
