// Package scene holds the engine-neutral intermediate scene produced by a
// conversion pass: a frame tree plus meshes, materials, textures, morphs and
// keyframed animations.
package scene

import (
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameID indexes a frame inside its Tree.
type FrameID int

// NoFrame is the parent of a root or detached frame.
const NoFrame FrameID = -1

// Frame is a node of the output hierarchy. Rotation is in Euler degrees.
type Frame struct {
	Name          string
	LocalPosition mgl32.Vec3
	LocalRotation mgl32.Vec3
	LocalScale    mgl32.Vec3

	parent   FrameID
	children []FrameID
}

// Parent returns the frame's parent, or NoFrame.
func (f *Frame) Parent() FrameID { return f.parent }

// Children returns the frame's children in insertion order.
func (f *Frame) Children() []FrameID { return f.children }

// Tree owns all frames of a hierarchy. Parent links are ids into the same
// storage so the tree has a single owner.
type Tree struct {
	frames []Frame
	root   FrameID
}

// NewTree returns an empty tree without a root.
func NewTree() *Tree {
	return &Tree{root: NoFrame}
}

// NewFrame stores a detached frame and returns its id.
func (t *Tree) NewFrame(name string, pos, rot, scale mgl32.Vec3) FrameID {
	t.frames = append(t.frames, Frame{
		Name:          name,
		LocalPosition: pos,
		LocalRotation: rot,
		LocalScale:    scale,
		parent:        NoFrame,
	})
	return FrameID(len(t.frames) - 1)
}

// SetRoot makes id the root frame.
func (t *Tree) SetRoot(id FrameID) { t.root = id }

// Root returns the root frame id, or NoFrame for an empty tree.
func (t *Tree) Root() FrameID { return t.root }

// Len returns the number of stored frames, attached or not.
func (t *Tree) Len() int { return len(t.frames) }

// Frame returns the frame stored at id. It panics on an invalid id.
func (t *Tree) Frame(id FrameID) *Frame { return &t.frames[id] }

// Valid reports whether id names a stored frame.
func (t *Tree) Valid(id FrameID) bool { return id >= 0 && int(id) < len(t.frames) }

// AddChild attaches child as the last child of parent, detaching it from its
// previous parent first.
func (t *Tree) AddChild(parent, child FrameID) {
	c := &t.frames[child]
	if c.parent != NoFrame {
		old := &t.frames[c.parent]
		for i, id := range old.children {
			if id == child {
				old.children = append(old.children[:i], old.children[i+1:]...)
				break
			}
		}
	}
	c.parent = parent
	p := &t.frames[parent]
	p.children = append(p.children, child)
}

// Path returns the slash-joined names from the root down to id. It is
// recomputed from ancestry on every call.
func (t *Tree) Path(id FrameID) string {
	var names []string
	for cur := id; cur != NoFrame; cur = t.frames[cur].parent {
		names = append(names, t.frames[cur].Name)
	}
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, "/")
}

// PreOrder returns the ids reachable from the root, parents before
// children, siblings in insertion order.
func (t *Tree) PreOrder() []FrameID {
	if t.root == NoFrame {
		return nil
	}
	return t.Subtree(t.root)
}

// Subtree returns id and its descendants in pre-order.
func (t *Tree) Subtree(id FrameID) []FrameID {
	var out []FrameID
	stack := []FrameID{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		children := t.frames[cur].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return out
}

// FindByPath returns the first frame in pre-order whose path equals path or
// ends with "/" + path.
func (t *Tree) FindByPath(path string) (FrameID, bool) {
	if path == "" {
		return NoFrame, false
	}
	leaf := path[strings.LastIndexByte(path, '/')+1:]
	suffix := "/" + path
	for _, id := range t.PreOrder() {
		if t.frames[id].Name != leaf {
			continue
		}
		p := t.Path(id)
		if p == path || strings.HasSuffix(p, suffix) {
			return id, true
		}
	}
	return NoFrame, false
}

// FindRelative resolves a path relative to the root. The path may start
// below the root or with the root's own name; when neither descent matches,
// the suffix rule of FindByPath applies.
func (t *Tree) FindRelative(path string) (FrameID, bool) {
	if t.root == NoFrame || path == "" {
		return NoFrame, false
	}
	segs := strings.Split(path, "/")
	if id, ok := t.descend(t.root, segs); ok {
		return id, true
	}
	if segs[0] == t.frames[t.root].Name {
		if len(segs) == 1 {
			return t.root, true
		}
		if id, ok := t.descend(t.root, segs[1:]); ok {
			return id, true
		}
	}
	return t.FindByPath(path)
}

// descend matches segs against successive child names below from, trying
// siblings with equal names in order.
func (t *Tree) descend(from FrameID, segs []string) (FrameID, bool) {
	type step struct {
		id    FrameID
		depth int
	}
	stack := []step{{from, 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur.depth == len(segs) {
			return cur.id, true
		}
		children := t.frames[cur.id].children
		for i := len(children) - 1; i >= 0; i-- {
			if t.frames[children[i]].Name == segs[cur.depth] {
				stack = append(stack, step{children[i], cur.depth + 1})
			}
		}
	}
	return NoFrame, false
}

// FindChild returns the direct child of parent called name.
func (t *Tree) FindChild(parent FrameID, name string) (FrameID, bool) {
	for _, id := range t.frames[parent].children {
		if t.frames[id].Name == name {
			return id, true
		}
	}
	return NoFrame, false
}

// FindDescendant returns the first descendant of from (excluding from
// itself) called name, in pre-order.
func (t *Tree) FindDescendant(from FrameID, name string) (FrameID, bool) {
	for _, id := range t.Subtree(from)[1:] {
		if t.frames[id].Name == name {
			return id, true
		}
	}
	return NoFrame, false
}
