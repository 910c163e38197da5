package convert

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

func defaultMaterial(name string) *scene.Material {
	return &scene.Material{
		Name:       name,
		Diffuse:    mgl32.Vec4{0.8, 0.8, 0.8, 1},
		Ambient:    mgl32.Vec4{0.2, 0.2, 0.2, 1},
		Emissive:   mgl32.Vec4{0, 0, 0, 1},
		Specular:   mgl32.Vec4{0.2, 0.2, 0.2, 1},
		Reflection: mgl32.Vec4{0, 0, 0, 1},
		Shininess:  20,
	}
}

func textureDest(key string) scene.TextureDest {
	switch {
	case key == "_MainTex":
		return scene.DestDiffuse
	case key == "_BumpMap":
		return scene.DestBump
	case strings.Contains(key, "Specular"):
		return scene.DestSpecular
	case strings.Contains(key, "Normal"):
		return scene.DestNormal
	default:
		return scene.DestUnknown
	}
}

// convertMaterial returns the converted material named like mat, converting
// it on first use.
func (c *converter) convertMaterial(mat *assets.Material) *scene.Material {
	for _, m := range c.materials {
		if m.Name == mat.Name {
			return m
		}
	}

	out := defaultMaterial(mat.Name)
	for _, p := range mat.Properties.Colors {
		switch p.Key {
		case "_Color":
			out.Diffuse = p.Value
		case "_SColor":
			out.Ambient = p.Value
		case "_EmissionColor":
			out.Emissive = p.Value
		case "_SpecularColor":
			out.Specular = p.Value
		case "_ReflectColor":
			out.Reflection = p.Value
		}
	}
	for _, p := range mat.Properties.Floats {
		switch p.Key {
		case "_Shininess":
			out.Shininess = p.Value
		case "_Transparency":
			out.Transparency = p.Value
		}
	}

	for _, env := range mat.Properties.TexEnvs {
		tex2D, ok := env.Value.Texture.(*assets.Texture2D)
		if !ok || tex2D == nil {
			continue
		}
		out.Textures = append(out.Textures, scene.MaterialTexture{
			Name:   c.textureName(tex2D),
			Dest:   textureDest(env.Key),
			Offset: env.Value.Offset,
			Scale:  env.Value.Scale,
		})
	}

	c.materials = append(c.materials, out)
	return out
}

// textureName returns the output file name of tex, registering the texture
// on first use. A different texture with a taken name gets " (n)" appended.
func (c *converter) textureName(tex *assets.Texture2D) string {
	if name, ok := c.textureNames[tex]; ok {
		return name
	}
	ext := c.opts.ImageFormat.Ext()
	name := tex.Name + ext
	for i := 1; c.textureTaken(name); i++ {
		name = fmt.Sprintf("%s (%d)%s", tex.Name, i, ext)
	}
	c.textureNames[tex] = name
	c.textures = append(c.textures, &scene.Texture{Name: name, Source: tex})
	if tex.Image == nil {
		c.log.Debug("texture has no pixel data", zap.String("texture", name))
	}
	return name
}

func (c *converter) textureTaken(name string) bool {
	for _, t := range c.textures {
		if t.Name == name {
			return true
		}
	}
	return false
}
