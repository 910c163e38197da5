package assets

// Avatar carries the unstripped skeleton of an animated hierarchy.
type Avatar struct {
	Name string

	// TOS maps path hashes to skeleton paths relative to the animator root.
	TOS map[uint32]string
	// SkeletonIDs lists skeleton node path hashes in pre-order; index 0 is
	// the root.
	SkeletonIDs []uint32
	// DefaultPose holds one local transform per skeleton node, parallel to
	// SkeletonIDs.
	DefaultPose []XForm
}

// FindBonePath returns the path stored for hash, or "" when unknown.
func (a *Avatar) FindBonePath(hash uint32) string {
	if a == nil {
		return ""
	}
	return a.TOS[hash]
}

// Animator drives a hierarchy with an avatar and a controller.
type Animator struct {
	GameObject *GameObject
	Avatar     *Avatar
	Controller RuntimeController
	// HasTransformHierarchy is false when the hierarchy was stripped
	// ("optimize game objects") and must be rebuilt from the avatar.
	HasTransformHierarchy bool
}

// RuntimeController is implemented by *AnimatorController and
// *AnimatorOverrideController.
type RuntimeController interface {
	ControllerName() string
	isController()
}

// AnimatorController lists the clips used by its state machine.
type AnimatorController struct {
	Name           string
	AnimationClips []*AnimationClip
}

// ControllerName returns the controller's name.
func (c *AnimatorController) ControllerName() string { return c.Name }

func (*AnimatorController) isController() {}

// AnimatorOverrideController swaps clips of a base controller.
type AnimatorOverrideController struct {
	Name       string
	Controller *AnimatorController
}

// ControllerName returns the controller's name.
func (c *AnimatorOverrideController) ControllerName() string { return c.Name }

func (*AnimatorOverrideController) isController() {}

var (
	_ RuntimeController = (*AnimatorController)(nil)
	_ RuntimeController = (*AnimatorOverrideController)(nil)
)

// Animation is the legacy animation component.
type Animation struct {
	GameObject *GameObject
	Animations []*AnimationClip
}
