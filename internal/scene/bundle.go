package scene

// Bundle is the complete result of one conversion pass. It is not modified
// after the pass returns it.
type Bundle struct {
	Tree       *Tree
	Meshes     []*Mesh
	Materials  []*Material
	Textures   []*Texture
	Morphs     []*Morph
	Animations []*Animation
}

// Material returns the material called name.
func (b *Bundle) Material(name string) (*Material, bool) {
	for _, m := range b.Materials {
		if m.Name == name {
			return m, true
		}
	}
	return nil, false
}

// Texture returns the texture with file name name.
func (b *Bundle) Texture(name string) (*Texture, bool) {
	for _, t := range b.Textures {
		if t.Name == name {
			return t, true
		}
	}
	return nil, false
}

// Animation returns the animation called name.
func (b *Bundle) Animation(name string) (*Animation, bool) {
	for _, a := range b.Animations {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

// Mesh returns the mesh attached at path.
func (b *Bundle) Mesh(path string) (*Mesh, bool) {
	for _, m := range b.Meshes {
		if m.Path == path {
			return m, true
		}
	}
	return nil, false
}

// Morph returns the morph attached at path.
func (b *Bundle) Morph(path string) (*Morph, bool) {
	for _, m := range b.Morphs {
		if m.Path == path {
			return m, true
		}
	}
	return nil, false
}
