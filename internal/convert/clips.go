package convert

import "github.com/Faultbox/sceneconv/pkg/assets"

// clipSet is an insertion-ordered set of clips. Clips found on legacy
// animation components also remember the path of their component.
type clipSet struct {
	list  []*assets.AnimationClip
	seen  map[*assets.AnimationClip]bool
	bound map[*assets.AnimationClip]string
}

func newClipSet() clipSet {
	return clipSet{
		seen:  make(map[*assets.AnimationClip]bool),
		bound: make(map[*assets.AnimationClip]string),
	}
}

func (s *clipSet) add(clip *assets.AnimationClip) {
	if clip == nil || s.seen[clip] {
		return
	}
	s.seen[clip] = true
	s.list = append(s.list, clip)
}

func (s *clipSet) addAll(clips []*assets.AnimationClip) {
	for _, clip := range clips {
		s.add(clip)
	}
}

// bind records the base path of clip. The first binding wins.
func (s *clipSet) bind(clip *assets.AnimationClip, path string) {
	if _, ok := s.bound[clip]; !ok {
		s.bound[clip] = path
	}
}

// ControllerClips returns the clips referenced by ctrl. An override
// controller contributes the clips of its base controller.
func ControllerClips(ctrl assets.RuntimeController) []*assets.AnimationClip {
	switch ctrl := ctrl.(type) {
	case *assets.AnimatorController:
		if ctrl != nil {
			return ctrl.AnimationClips
		}
	case *assets.AnimatorOverrideController:
		if ctrl != nil && ctrl.Controller != nil {
			return ctrl.Controller.AnimationClips
		}
	}
	return nil
}

func (c *converter) collectAnimator(a *assets.Animator) {
	c.clips.addAll(ControllerClips(a.Controller))
}
