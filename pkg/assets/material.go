package assets

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is a shader instance with its saved property tables.
type Material struct {
	Name       string
	Properties SavedProperties
}

// SavedProperties keeps the property tables in their serialized order.
type SavedProperties struct {
	TexEnvs []TexEnvProperty
	Floats  []FloatProperty
	Colors  []ColorProperty
}

// TexEnvProperty binds a texture to a named shader slot.
type TexEnvProperty struct {
	Key   string
	Value TexEnv
}

// TexEnv is a texture reference with its UV transform.
type TexEnv struct {
	Texture Texture
	Offset  mgl32.Vec2
	Scale   mgl32.Vec2
}

// FloatProperty is a named scalar shader property.
type FloatProperty struct {
	Key   string
	Value float32
}

// ColorProperty is a named RGBA shader property.
type ColorProperty struct {
	Key   string
	Value mgl32.Vec4
}

// Texture is implemented by *Texture2D and *OtherTexture.
type Texture interface {
	TextureName() string
	isTexture()
}

// Texture2D is a plain 2D texture.
type Texture2D struct {
	Name   string
	Width  int
	Height int
	// Image holds the decoded pixels, or nil when they were not provided.
	Image image.Image
}

// TextureName returns the texture's name.
func (t *Texture2D) TextureName() string { return t.Name }

func (*Texture2D) isTexture() {}

// OtherTexture stands for every non-2D texture type (cubemaps, render
// textures, arrays). The converter does not export them.
type OtherTexture struct {
	Name  string
	Class string
}

// TextureName returns the texture's name.
func (t *OtherTexture) TextureName() string { return t.Name }

func (*OtherTexture) isTexture() {}

var (
	_ Texture = (*Texture2D)(nil)
	_ Texture = (*OtherTexture)(nil)
)
