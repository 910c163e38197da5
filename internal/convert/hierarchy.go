package convert

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/sceneconv/internal/scene"
	"github.com/Faultbox/sceneconv/pkg/assets"
	"github.com/Faultbox/sceneconv/pkg/math"
)

var (
	zeroVec = mgl32.Vec3{}
	oneVec  = mgl32.Vec3{1, 1, 1}
)

// frameTRS converts an engine local transform to frame space: X is mirrored
// and the rotation becomes Euler degrees.
func frameTRS(t mgl32.Vec3, q mgl32.Quat, s mgl32.Vec3) (pos, rot, scale mgl32.Vec3) {
	return math.MirrorX(t), math.QuatToEuler(math.MirrorQuat(q)), s
}

func (c *converter) setFrame(id scene.FrameID, t mgl32.Vec3, q mgl32.Quat, s mgl32.Vec3) {
	f := c.tree.Frame(id)
	f.LocalPosition, f.LocalRotation, f.LocalScale = frameTRS(t, q, s)
}

func (c *converter) convertTransform(tr *assets.Transform) scene.FrameID {
	pos, rot, scale := frameTRS(tr.LocalPosition, tr.LocalRotation, tr.LocalScale)
	id := c.tree.NewFrame(tr.Name(), pos, rot, scale)
	c.frames[tr] = id
	return id
}

// convertTransforms mirrors tr and its descendants under parent, or as the
// root when parent is NoFrame. It returns the frame of tr.
func (c *converter) convertTransforms(tr *assets.Transform, parent scene.FrameID) scene.FrameID {
	type item struct {
		tr     *assets.Transform
		parent scene.FrameID
	}
	var top scene.FrameID
	stack := []item{{tr, parent}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id := c.convertTransform(it.tr)
		if it.parent == scene.NoFrame {
			c.tree.SetRoot(id)
		} else {
			c.tree.AddChild(it.parent, id)
		}
		if it.tr == tr {
			top = id
		}
		for i := len(it.tr.Children) - 1; i >= 0; i-- {
			if child := it.tr.Children[i]; child != nil {
				stack = append(stack, item{child, id})
			}
		}
	}
	return top
}

func (c *converter) initWithAnimator(a *assets.Animator) error {
	c.avatar = a.Avatar
	if a.GameObject == nil {
		return fmt.Errorf("animator: %w", ErrNilGameObject)
	}
	return c.initWithGameObject(a.GameObject, a.HasTransformHierarchy)
}

func (c *converter) initWithGameObject(g *assets.GameObject, hasHierarchy bool) error {
	tr := g.Transform
	if tr == nil {
		return fmt.Errorf("object %q: %w", g.Name, ErrNoTransform)
	}

	if !hasHierarchy {
		c.convertTransforms(tr, scene.NoFrame)
		if err := c.deoptimize(); err != nil {
			return err
		}
	} else {
		// Ancestors become a bare chain above the converted subtree.
		parent := scene.NoFrame
		var chain []scene.FrameID
		for f := tr.Father; f != nil; f = f.Father {
			chain = append(chain, c.convertTransform(f))
		}
		if len(chain) > 0 {
			c.tree.SetRoot(chain[len(chain)-1])
			for i := len(chain) - 2; i >= 0; i-- {
				c.tree.AddChild(chain[i+1], chain[i])
			}
			parent = chain[0]
		}
		c.convertTransforms(tr, parent)
	}
	c.index.AddSubtree(c.tree, c.tree.Root())

	c.convertRenderers(tr)
	return nil
}

// deoptimize restores transforms stripped from an optimized hierarchy using
// the avatar skeleton. Skeleton nodes are in pre-order, so every parent is
// placed before its children; node 0 is the existing root.
func (c *converter) deoptimize() error {
	if c.avatar == nil {
		return ErrMissingAvatar
	}
	pose := c.avatar.DefaultPose
	root := c.tree.Root()

	for i := 1; i < len(c.avatar.SkeletonIDs); i++ {
		id := c.avatar.SkeletonIDs[i]
		path := c.avatar.FindBonePath(id)
		if path == "" {
			c.report(UnresolvedBonePath, "skeleton node without path", zap.Uint32("hash", id))
			continue
		}

		name := path
		parent := root
		if slash := strings.LastIndexByte(path, '/'); slash >= 0 {
			name = path[slash+1:]
			parentPath := path[:slash]
			var ok bool
			if parent, ok = c.tree.FindRelative(parentPath); !ok {
				return fmt.Errorf("skeleton node %q: parent %q: %w", path, parentPath, ErrParentFrameMissing)
			}
		}

		xf := assets.XForm{Q: mgl32.QuatIdent(), S: oneVec}
		if i < len(pose) {
			xf = pose[i]
		}

		if frame, ok := c.tree.FindChild(parent, name); ok {
			c.setFrame(frame, xf.T, xf.Q, xf.S)
			continue
		}
		// Exposed transforms of an optimized hierarchy sit directly under
		// the root; move them to their skeleton parent.
		if frame, ok := c.tree.FindChild(root, name); ok && !c.isAncestor(frame, parent) {
			c.setFrame(frame, xf.T, xf.Q, xf.S)
			c.tree.AddChild(parent, frame)
			continue
		}
		pos, rot, scale := frameTRS(xf.T, xf.Q, xf.S)
		c.tree.AddChild(parent, c.tree.NewFrame(name, pos, rot, scale))
	}
	return nil
}

// isAncestor reports whether a is id or one of its ancestors.
func (c *converter) isAncestor(a, id scene.FrameID) bool {
	for cur := id; cur != scene.NoFrame; cur = c.tree.Frame(cur).Parent() {
		if cur == a {
			return true
		}
	}
	return false
}

// transformPath returns the frame path of a converted transform.
func (c *converter) transformPath(tr *assets.Transform) (string, bool) {
	id, ok := c.frames[tr]
	if !ok {
		return "", false
	}
	return c.tree.Path(id), true
}

// fixPath resolves a possibly partial path to the full path of a frame.
func (c *converter) fixPath(path string) (string, bool) {
	id, ok := c.tree.FindByPath(path)
	if !ok {
		return "", false
	}
	return c.tree.Path(id), true
}

// pathFromHash looks hash up in the bone path index, then in the avatar, and
// falls back to a placeholder name.
func (c *converter) pathFromHash(hash uint32) string {
	if p, ok := c.index.Resolve(hash); ok && p != "" {
		return p
	}
	if p := c.avatar.FindBonePath(hash); p != "" {
		return p
	}
	return fmt.Sprintf("unknown %d", hash)
}

// convertRenderers converts the renderers and legacy animations of tr and
// its descendants in pre-order.
func (c *converter) convertRenderers(tr *assets.Transform) {
	stack := []*assets.Transform{tr}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if g := cur.GameObject; g != nil {
			if g.MeshRenderer != nil {
				c.convertRenderer(g.MeshRenderer)
			}
			if g.SkinnedMesh != nil {
				c.convertRenderer(g.SkinnedMesh)
			}
			if g.Animation != nil {
				path, _ := c.transformPath(cur)
				for _, clip := range g.Animation.Animations {
					if clip != nil {
						c.clips.bind(clip, path)
						c.clips.add(clip)
					}
				}
			}
		}
		for i := len(cur.Children) - 1; i >= 0; i-- {
			if child := cur.Children[i]; child != nil {
				stack = append(stack, child)
			}
		}
	}
}
