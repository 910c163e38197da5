package convert

import (
	"errors"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/sceneconv/pkg/assets"
)

func TestDirectModeHandedness(t *testing.T) {
	objs := hierarchy("root", "root/child")
	child := objs["root/child"].Transform
	child.LocalPosition = mgl32.Vec3{5, 2, 3}
	child.LocalRotation = quatY(90)
	child.LocalScale = mgl32.Vec3{2, 2, 2}

	res := mustConvert(t, objs["root"], Options{})
	f := frameByPath(t, res.Bundle.Tree, "root/child")

	if f.LocalPosition != (mgl32.Vec3{-5, 2, 3}) {
		t.Errorf("LocalPosition = %v, want [-5 2 3]", f.LocalPosition)
	}
	if !vecClose(f.LocalRotation, mgl32.Vec3{0, -90, 0}) {
		t.Errorf("LocalRotation = %v, want [0 -90 0]", f.LocalRotation)
	}
	if f.LocalScale != (mgl32.Vec3{2, 2, 2}) {
		t.Errorf("LocalScale = %v", f.LocalScale)
	}
}

func TestTreeIsDeterministic(t *testing.T) {
	objs := hierarchy("root", "root/a", "root/a/x", "root/b", "root/b/y", "root/b/z")
	first := mustConvert(t, objs["root"], Options{})
	second := mustConvert(t, objs["root"], Options{})

	p1, p2 := framePaths(first.Bundle.Tree), framePaths(second.Bundle.Tree)
	if !reflect.DeepEqual(p1, p2) {
		t.Errorf("paths differ:\n%v\n%v", p1, p2)
	}
	want := []string{"root", "root/a", "root/a/x", "root/b", "root/b/y", "root/b/z"}
	if !reflect.DeepEqual(p1, want) {
		t.Errorf("paths = %v, want %v", p1, want)
	}
	if !reflect.DeepEqual(first.Index.Entries(), second.Index.Entries()) {
		t.Error("bone path index differs between runs")
	}
}

func TestAncestorChain(t *testing.T) {
	objs := hierarchy("world", "world/level", "world/level/hero", "world/level/hero/arm", "world/other")
	res := mustConvert(t, objs["world/level/hero"], Options{})

	got := framePaths(res.Bundle.Tree)
	want := []string{"world", "world/level", "world/level/hero", "world/level/hero/arm"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestNilInputs(t *testing.T) {
	if _, err := ConvertGameObject(nil, Options{}); !errors.Is(err, ErrNilGameObject) {
		t.Errorf("ConvertGameObject(nil) error = %v", err)
	}
	if _, err := ConvertGameObject(&assets.GameObject{Name: "x"}, Options{}); !errors.Is(err, ErrNoTransform) {
		t.Errorf("ConvertGameObject(no transform) error = %v", err)
	}
	if _, err := ConvertAnimator(&assets.Animator{}, Options{}); !errors.Is(err, ErrNilGameObject) {
		t.Errorf("ConvertAnimator(no object) error = %v", err)
	}
	if _, err := ConvertGameObjects("root", []*assets.GameObject{nil}, Options{}); !errors.Is(err, ErrNilGameObject) {
		t.Errorf("ConvertGameObjects(nil) error = %v", err)
	}
}

func deoptAvatar(paths []string, poses []assets.XForm) *assets.Avatar {
	a := &assets.Avatar{TOS: map[uint32]string{}}
	for _, p := range paths {
		h := PathHash(p)
		a.TOS[h] = p
		a.SkeletonIDs = append(a.SkeletonIDs, h)
	}
	a.DefaultPose = poses
	return a
}

func xform(t mgl32.Vec3) assets.XForm {
	return assets.XForm{T: t, Q: mgl32.QuatIdent(), S: mgl32.Vec3{1, 1, 1}}
}

func TestDeoptimization(t *testing.T) {
	root := newObject("root")
	avatar := deoptAvatar(
		[]string{"root", "root/spine", "root/spine/arm"},
		[]assets.XForm{xform(mgl32.Vec3{}), xform(mgl32.Vec3{0, 1, 0}), xform(mgl32.Vec3{2, 0, 0})},
	)
	animator := &assets.Animator{GameObject: root, Avatar: avatar}
	root.Animator = animator

	res, err := ConvertAnimator(animator, Options{})
	if err != nil {
		t.Fatalf("ConvertAnimator() error = %v", err)
	}
	tree := res.Bundle.Tree

	want := []string{"root", "root/spine", "root/spine/arm"}
	if got := framePaths(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if p := frameByPath(t, tree, "root/spine").LocalPosition; p != (mgl32.Vec3{0, 1, 0}) {
		t.Errorf("spine position = %v", p)
	}
	if p := frameByPath(t, tree, "root/spine/arm").LocalPosition; p != (mgl32.Vec3{-2, 0, 0}) {
		t.Errorf("arm position = %v, want X mirrored", p)
	}
	if _, ok := res.Index.Resolve(PathHash("spine/arm")); !ok {
		t.Error("reconstructed frames missing from bone path index")
	}
}

func TestDeoptimizationRootRelativePaths(t *testing.T) {
	objs := hierarchy("body", "body/spine")
	avatar := deoptAvatar(
		[]string{"", "spine", "spine/arm", "spine/arm/hand"},
		[]assets.XForm{xform(mgl32.Vec3{}), xform(mgl32.Vec3{0, 3, 0}), xform(mgl32.Vec3{1, 0, 0}), xform(mgl32.Vec3{1, 0, 0})},
	)
	animator := &assets.Animator{GameObject: objs["body"], Avatar: avatar}

	res, err := ConvertAnimator(animator, Options{})
	if err != nil {
		t.Fatalf("ConvertAnimator() error = %v", err)
	}
	tree := res.Bundle.Tree
	want := []string{"body", "body/spine", "body/spine/arm", "body/spine/arm/hand"}
	if got := framePaths(tree); !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	// The existing spine keeps its frame but takes the pose transform.
	if p := frameByPath(t, tree, "body/spine").LocalPosition; p != (mgl32.Vec3{0, 3, 0}) {
		t.Errorf("spine position = %v, want pose", p)
	}
}

func TestDeoptimizationMovesExposedTransform(t *testing.T) {
	// An optimized hierarchy keeps exposed bones flat under the root.
	objs := hierarchy("body", "body/hand")
	avatar := deoptAvatar(
		[]string{"", "arm", "arm/hand"},
		[]assets.XForm{xform(mgl32.Vec3{}), xform(mgl32.Vec3{}), xform(mgl32.Vec3{0, 0, 4})},
	)
	animator := &assets.Animator{GameObject: objs["body"], Avatar: avatar}

	res, err := ConvertAnimator(animator, Options{})
	if err != nil {
		t.Fatalf("ConvertAnimator() error = %v", err)
	}
	want := []string{"body", "body/arm", "body/arm/hand"}
	if got := framePaths(res.Bundle.Tree); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
}

func TestDeoptimizationErrors(t *testing.T) {
	t.Run("missing avatar", func(t *testing.T) {
		root := newObject("root")
		_, err := ConvertAnimator(&assets.Animator{GameObject: root}, Options{})
		if !errors.Is(err, ErrMissingAvatar) {
			t.Errorf("error = %v, want ErrMissingAvatar", err)
		}
	})
	t.Run("parent out of order", func(t *testing.T) {
		root := newObject("root")
		avatar := deoptAvatar([]string{"", "spine/arm", "spine"}, nil)
		_, err := ConvertAnimator(&assets.Animator{GameObject: root, Avatar: avatar}, Options{})
		if !errors.Is(err, ErrParentFrameMissing) {
			t.Errorf("error = %v, want ErrParentFrameMissing", err)
		}
	})
}

func TestDeoptimizationSkipsUnknownIDs(t *testing.T) {
	root := newObject("root")
	avatar := deoptAvatar([]string{"", "spine"}, nil)
	avatar.SkeletonIDs = append(avatar.SkeletonIDs, 12345)

	res, err := ConvertAnimator(&assets.Animator{GameObject: root, Avatar: avatar}, Options{})
	if err != nil {
		t.Fatalf("ConvertAnimator() error = %v", err)
	}
	if res.Diagnostics.Count(UnresolvedBonePath) != 1 {
		t.Errorf("UnresolvedBonePath = %d, want 1", res.Diagnostics.Count(UnresolvedBonePath))
	}
	if got := framePaths(res.Bundle.Tree); len(got) != 2 {
		t.Errorf("paths = %v", got)
	}
}

func TestConvertGameObjectsSyntheticRoot(t *testing.T) {
	a := hierarchy("a", "a/x")
	b := hierarchy("b")
	res, err := ConvertGameObjects("scene", []*assets.GameObject{a["a"], b["b"]}, Options{})
	if err != nil {
		t.Fatalf("ConvertGameObjects() error = %v", err)
	}
	want := []string{"scene", "scene/a", "scene/a/x", "scene/b"}
	if got := framePaths(res.Bundle.Tree); !reflect.DeepEqual(got, want) {
		t.Errorf("paths = %v, want %v", got, want)
	}
	if p, ok := res.Index.Resolve(PathHash("a/x")); !ok || p != "a/x" {
		t.Errorf("Resolve(a/x) = %q, %v", p, ok)
	}
}
