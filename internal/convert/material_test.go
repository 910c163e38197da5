package convert

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneconv/internal/imaging"
	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
)

func convertMaterials(t *testing.T, opts Options, mats ...*assets.Material) *scene.Bundle {
	t.Helper()
	objs := hierarchy("root")
	mesh := triangleMesh()
	for len(mesh.SubMeshes) < len(mats) {
		mesh.SubMeshes = append(mesh.SubMeshes, mesh.SubMeshes[0])
		mesh.Indices = append(mesh.Indices, 0, 1, 2)
	}
	attachMeshRenderer(objs["root"], mesh, mats...)
	return mustConvert(t, objs["root"], opts).Bundle
}

func TestMaterialDefaults(t *testing.T) {
	b := convertMaterials(t, Options{}, &assets.Material{Name: "plain"})
	m, ok := b.Material("plain")
	if !ok {
		t.Fatal("material not converted")
	}
	if m.Diffuse != (mgl32.Vec4{0.8, 0.8, 0.8, 1}) || m.Shininess != 20 || m.Transparency != 0 {
		t.Errorf("defaults = %+v", m)
	}
}

func TestMaterialProperties(t *testing.T) {
	red := mgl32.Vec4{1, 0, 0, 1}
	mat := &assets.Material{
		Name: "shiny",
		Properties: assets.SavedProperties{
			Colors: []assets.ColorProperty{
				{Key: "_Color", Value: red},
				{Key: "_EmissionColor", Value: mgl32.Vec4{0, 1, 0, 1}},
				{Key: "_Unused", Value: mgl32.Vec4{9, 9, 9, 9}},
			},
			Floats: []assets.FloatProperty{
				{Key: "_Shininess", Value: 64},
				{Key: "_Transparency", Value: 0.25},
			},
		},
	}
	m, _ := convertMaterials(t, Options{}, mat).Material("shiny")

	if m.Diffuse != red || m.Emissive != (mgl32.Vec4{0, 1, 0, 1}) {
		t.Errorf("colors = %v %v", m.Diffuse, m.Emissive)
	}
	if m.Ambient != (mgl32.Vec4{0.2, 0.2, 0.2, 1}) {
		t.Errorf("ambient = %v, want default", m.Ambient)
	}
	if m.Shininess != 64 || m.Transparency != 0.25 {
		t.Errorf("shininess = %v, transparency = %v", m.Shininess, m.Transparency)
	}
}

func TestTextureDest(t *testing.T) {
	tests := []struct {
		key  string
		want scene.TextureDest
	}{
		{"_MainTex", scene.DestDiffuse},
		{"_BumpMap", scene.DestBump},
		{"_SpecularMap", scene.DestSpecular},
		{"_NormalMap", scene.DestNormal},
		{"_DetailAlbedoMap", scene.DestUnknown},
	}
	for _, tt := range tests {
		if got := textureDest(tt.key); got != tt.want {
			t.Errorf("textureDest(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func texEnv(key string, tex assets.Texture) assets.TexEnvProperty {
	return assets.TexEnvProperty{Key: key, Value: assets.TexEnv{Texture: tex, Scale: mgl32.Vec2{1, 1}}}
}

func TestTextureNames(t *testing.T) {
	skin := &assets.Texture2D{Name: "skin"}
	other := &assets.Texture2D{Name: "skin"}
	cube := &assets.OtherTexture{Name: "sky", Class: "Cubemap"}

	a := &assets.Material{Name: "a", Properties: assets.SavedProperties{TexEnvs: []assets.TexEnvProperty{
		texEnv("_MainTex", skin),
		texEnv("_BumpMap", other),
		texEnv("_Cube", cube),
		texEnv("_Empty", nil),
	}}}
	b := &assets.Material{Name: "b", Properties: assets.SavedProperties{TexEnvs: []assets.TexEnvProperty{
		texEnv("_MainTex", other),
	}}}

	bundle := convertMaterials(t, Options{ImageFormat: imaging.TGA}, a, b)

	ma, _ := bundle.Material("a")
	if len(ma.Textures) != 2 {
		t.Fatalf("textures of a = %+v, want two 2D textures", ma.Textures)
	}
	if ma.Textures[0].Name != "skin.tga" || ma.Textures[0].Dest != scene.DestDiffuse {
		t.Errorf("texture 0 = %+v", ma.Textures[0])
	}
	if ma.Textures[1].Name != "skin (1).tga" || ma.Textures[1].Dest != scene.DestBump {
		t.Errorf("texture 1 = %+v", ma.Textures[1])
	}

	mb, _ := bundle.Material("b")
	if mb.Textures[0].Name != "skin (1).tga" {
		t.Errorf("same texture renamed to %q", mb.Textures[0].Name)
	}
	if len(bundle.Textures) != 2 {
		t.Errorf("textures = %d, want 2", len(bundle.Textures))
	}
	if tex, ok := bundle.Texture("skin.tga"); !ok || tex.Source != skin {
		t.Error("skin.tga does not point at its source texture")
	}
}

func TestMaterialDedupeByName(t *testing.T) {
	first := &assets.Material{Name: "shared", Properties: assets.SavedProperties{
		Floats: []assets.FloatProperty{{Key: "_Shininess", Value: 1}},
	}}
	second := &assets.Material{Name: "shared", Properties: assets.SavedProperties{
		Floats: []assets.FloatProperty{{Key: "_Shininess", Value: 2}},
	}}
	b := convertMaterials(t, Options{}, first, second)
	if len(b.Materials) != 1 || b.Materials[0].Shininess != 1 {
		t.Errorf("materials = %+v, want the first only", b.Materials)
	}
}
