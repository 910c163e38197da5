package convert

import (
	"testing"

	"github.com/Faultbox/sceneconv/pkg/assets"
)

func TestControllerClips(t *testing.T) {
	walk := &assets.AnimationClip{Name: "walk"}
	base := &assets.AnimatorController{Name: "base", AnimationClips: []*assets.AnimationClip{walk}}

	tests := []struct {
		name string
		ctrl assets.RuntimeController
		want int
	}{
		{"nil", nil, 0},
		{"controller", base, 1},
		{"override", &assets.AnimatorOverrideController{Name: "o", Controller: base}, 1},
		{"override without base", &assets.AnimatorOverrideController{Name: "o"}, 0},
		{"typed nil", (*assets.AnimatorController)(nil), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ControllerClips(tt.ctrl)
			if len(got) != tt.want {
				t.Fatalf("ControllerClips() = %d clips, want %d", len(got), tt.want)
			}
			if tt.want > 0 && got[0] != walk {
				t.Errorf("clip = %v, want walk", got[0].Name)
			}
		})
	}
}

func TestClipsOptionReplacesController(t *testing.T) {
	fromCtrl := &assets.AnimationClip{Name: "ctrl", Legacy: true}
	given := &assets.AnimationClip{Name: "given", Legacy: true}

	objs := hierarchy("root")
	objs["root"].Animator = &assets.Animator{
		GameObject:            objs["root"],
		HasTransformHierarchy: true,
		Avatar:                &assets.Avatar{},
		Controller:            &assets.AnimatorController{AnimationClips: []*assets.AnimationClip{fromCtrl}},
	}

	res := mustConvert(t, objs["root"], Options{Clips: []*assets.AnimationClip{given, given}})
	if len(res.Bundle.Animations) != 1 || res.Bundle.Animations[0].Name != "given" {
		t.Errorf("animations = %+v, want only given", res.Bundle.Animations)
	}

	res = mustConvert(t, objs["root"], Options{})
	if len(res.Bundle.Animations) != 1 || res.Bundle.Animations[0].Name != "ctrl" {
		t.Errorf("animations = %+v, want controller clip", res.Bundle.Animations)
	}
}

func TestClipSetBindFirstWins(t *testing.T) {
	s := newClipSet()
	clip := &assets.AnimationClip{Name: "c"}
	s.bind(clip, "a")
	s.bind(clip, "b")
	s.add(clip)
	s.add(clip)
	s.add(nil)

	if s.bound[clip] != "a" {
		t.Errorf("bound = %q, want a", s.bound[clip])
	}
	if len(s.list) != 1 {
		t.Errorf("list = %d, want 1", len(s.list))
	}
}
