// Package assets models the already-deserialized engine scene data consumed
// by the converter: game objects, transforms, renderers, meshes, avatars,
// animators, animation clips and materials.
//
// References between objects are plain pointers. A reference that could not
// be resolved by the deserializer is nil.
package assets

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ClassID identifies an engine object type inside animation bindings.
type ClassID int32

// Class IDs referenced by the converter.
const (
	ClassGameObject          ClassID = 1
	ClassTransform           ClassID = 4
	ClassAnimator            ClassID = 95
	ClassAnimation           ClassID = 111
	ClassSkinnedMeshRenderer ClassID = 137
	ClassMeshRenderer        ClassID = 23
)

// String returns a human-readable class name.
func (c ClassID) String() string {
	switch c {
	case ClassGameObject:
		return "GameObject"
	case ClassTransform:
		return "Transform"
	case ClassAnimator:
		return "Animator"
	case ClassAnimation:
		return "Animation"
	case ClassSkinnedMeshRenderer:
		return "SkinnedMeshRenderer"
	case ClassMeshRenderer:
		return "MeshRenderer"
	default:
		return fmt.Sprintf("Unknown(%d)", int32(c))
	}
}

// GameObject is a scene entity with its attached components.
type GameObject struct {
	Name string

	Transform    *Transform
	MeshFilter   *MeshFilter
	MeshRenderer *MeshRenderer
	SkinnedMesh  *SkinnedMeshRenderer
	Animator     *Animator
	Animation    *Animation
}

// Transform is a node of the engine's transform hierarchy.
type Transform struct {
	GameObject *GameObject
	Father     *Transform
	Children   []*Transform

	LocalPosition mgl32.Vec3
	LocalRotation mgl32.Quat
	LocalScale    mgl32.Vec3
}

// Name returns the owning game object's name, or an empty string.
func (t *Transform) Name() string {
	if t == nil || t.GameObject == nil {
		return ""
	}
	return t.GameObject.Name
}

// PathByFather returns the slash-joined names from the topmost ancestor
// down to t.
func (t *Transform) PathByFather() string {
	path := t.Name()
	for f := t.Father; f != nil; f = f.Father {
		path = f.Name() + "/" + path
	}
	return path
}

// Hierarchy link errors returned by AddChild.
var (
	ErrHasFather      = errors.New("transform already has a father")
	ErrTransformCycle = errors.New("transform would become its own ancestor")
)

// AddChild links child under t. A child keeps its first father, and a link
// that would make child an ancestor of itself is refused.
func (t *Transform) AddChild(child *Transform) error {
	if child.Father != nil {
		return ErrHasFather
	}
	for f := t; f != nil; f = f.Father {
		if f == child {
			return ErrTransformCycle
		}
	}
	child.Father = t
	t.Children = append(t.Children, child)
	return nil
}

// MeshFilter holds the mesh rendered by a MeshRenderer.
type MeshFilter struct {
	GameObject *GameObject
	Mesh       *Mesh
}

// XForm is a translation/rotation/scale triple from an avatar pose.
type XForm struct {
	T mgl32.Vec3
	Q mgl32.Quat
	S mgl32.Vec3
}
